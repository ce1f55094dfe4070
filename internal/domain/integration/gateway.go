package integration

import (
	"context"
	"time"
)

// PersonGateway reads and writes AM.net person records
type PersonGateway interface {
	GetPerson(ctx context.Context, namesID string) (*Person, error)
	// CreatePerson posts a new person and returns the Names ID AM.net assigned
	CreatePerson(ctx context.Context, person *Person) (string, error)
	UpdatePerson(ctx context.Context, person *Person) error
	SearchPersons(ctx context.Context, query PersonSearchQuery) ([]PersonSummary, error)
}

// DuesGateway reads a person's dues standing
type DuesGateway interface {
	GetDues(ctx context.Context, namesID string) (*Dues, error)
	GetPaymentPlans(ctx context.Context, namesID string) ([]PaymentPlan, error)
	GetDuesRates(ctx context.Context, fiscalYear int) ([]Rate, error)
}

// LegislativeGateway reads and writes a person's legislative contacts
type LegislativeGateway interface {
	GetLegislativeContacts(ctx context.Context, namesID string) ([]LegislativeContact, error)
	UpdateLegislativeContacts(ctx context.Context, namesID string, contacts []LegislativeContact) error
}

// PeerReviewGateway reads firm peer-review billing
type PeerReviewGateway interface {
	GetFirmPeerReview(ctx context.Context, firmCode string) (*FirmPeerReview, error)
	GetPeerReviewRates(ctx context.Context, fiscalYear int) ([]Rate, error)
}

// ReferenceGateway reads code lists, firm changes and catalog records
type ReferenceGateway interface {
	GetList(ctx context.Context, name string) ([]ListItem, error)
	GetFirmChanges(ctx context.Context, since time.Time) ([]FirmChange, error)
	GetEvent(ctx context.Context, code string) (*Event, error)
	GetProduct(ctx context.Context, code string) (*Product, error)
}

// Client is the full AM.net API surface
type Client interface {
	PersonGateway
	DuesGateway
	LegislativeGateway
	PeerReviewGateway
	ReferenceGateway
}

// PayloadArchive stores raw AM.net payloads for audit
type PayloadArchive interface {
	Archive(ctx context.Context, kind, id string, payload []byte) error
}
