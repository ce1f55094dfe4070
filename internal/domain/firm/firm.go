package firm

import (
	"context"
	"strings"
	"time"

	"github.com/vscpa/backend/internal/domain/integration"
	"github.com/vscpa/backend/internal/domain/shared"
	"github.com/vscpa/backend/internal/domain/shared/valueobject"
)

// ErrFirmNotFound is returned when no firm has the code
var ErrFirmNotFound = shared.NewDomainError("FIRM_NOT_FOUND", "Firm not found")

// Firm is a CPA firm mirrored from AM.net
type Firm struct {
	shared.BaseEntity
	Code         string
	Name         string
	Address      valueobject.Address
	Phone        string
	BillingClass string
	PeerReview   bool
	Active       bool
	ChangedAt    *time.Time
}

// FromChange creates a firm from an AM.net firm change
func FromChange(c integration.FirmChange) *Firm {
	f := &Firm{BaseEntity: shared.NewBaseEntity(), Code: strings.TrimSpace(c.FirmCode)}
	f.Apply(c)
	return f
}

// Apply copies a firm change onto the firm. A deleted firm is deactivated.
// Returns true if anything changed.
func (f *Firm) Apply(c integration.FirmChange) bool {
	next := *f
	next.Name = strings.TrimSpace(c.Name)
	next.Address = valueobject.Address{
		Line1: strings.TrimSpace(c.Address.Line1),
		Line2: strings.TrimSpace(c.Address.Line2),
		City:  strings.TrimSpace(c.Address.City),
		State: strings.ToUpper(strings.TrimSpace(c.Address.State)),
		Zip:   strings.TrimSpace(c.Address.Zip),
	}
	next.Phone = strings.TrimSpace(c.Phone)
	next.BillingClass = strings.TrimSpace(c.BillingClassCode)
	next.PeerReview = c.PeerReview
	next.Active = !c.Deleted
	next.ChangedAt = c.ChangedAt.Ptr()

	if next.Name == f.Name && next.Address == f.Address && next.Phone == f.Phone &&
		next.BillingClass == f.BillingClass && next.PeerReview == f.PeerReview &&
		next.Active == f.Active {
		return false
	}
	next.UpdatedAt = time.Now()
	*f = next
	return true
}

// Repository defines the interface for firm persistence
type Repository interface {
	// FindByCode returns ErrFirmNotFound when the code is unknown
	FindByCode(ctx context.Context, code string) (*Firm, error)
	FindByCodes(ctx context.Context, codes []string) ([]Firm, error)
	// UpsertBatch inserts or updates firms keyed by code
	UpsertBatch(ctx context.Context, firms []*Firm) error
}
