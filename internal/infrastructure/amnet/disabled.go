package amnet

import (
	"context"
	"time"

	"github.com/vscpa/backend/internal/domain/integration"
)

// Disabled stands in for the client when no AM.net environment is
// configured. Every call fails with integration.ErrAMNetNotConfigured, so
// local reads keep working and sync operations record a failure.
type Disabled struct{}

var _ integration.Client = Disabled{}

func (Disabled) GetPerson(context.Context, string) (*integration.Person, error) {
	return nil, integration.ErrAMNetNotConfigured
}

func (Disabled) CreatePerson(context.Context, *integration.Person) (string, error) {
	return "", integration.ErrAMNetNotConfigured
}

func (Disabled) UpdatePerson(context.Context, *integration.Person) error {
	return integration.ErrAMNetNotConfigured
}

func (Disabled) SearchPersons(context.Context, integration.PersonSearchQuery) ([]integration.PersonSummary, error) {
	return nil, integration.ErrAMNetNotConfigured
}

func (Disabled) GetDues(context.Context, string) (*integration.Dues, error) {
	return nil, integration.ErrAMNetNotConfigured
}

func (Disabled) GetPaymentPlans(context.Context, string) ([]integration.PaymentPlan, error) {
	return nil, integration.ErrAMNetNotConfigured
}

func (Disabled) GetDuesRates(context.Context, int) ([]integration.Rate, error) {
	return nil, integration.ErrAMNetNotConfigured
}

func (Disabled) GetLegislativeContacts(context.Context, string) ([]integration.LegislativeContact, error) {
	return nil, integration.ErrAMNetNotConfigured
}

func (Disabled) UpdateLegislativeContacts(context.Context, string, []integration.LegislativeContact) error {
	return integration.ErrAMNetNotConfigured
}

func (Disabled) GetFirmPeerReview(context.Context, string) (*integration.FirmPeerReview, error) {
	return nil, integration.ErrAMNetNotConfigured
}

func (Disabled) GetPeerReviewRates(context.Context, int) ([]integration.Rate, error) {
	return nil, integration.ErrAMNetNotConfigured
}

func (Disabled) GetList(context.Context, string) ([]integration.ListItem, error) {
	return nil, integration.ErrAMNetNotConfigured
}

func (Disabled) GetFirmChanges(context.Context, time.Time) ([]integration.FirmChange, error) {
	return nil, integration.ErrAMNetNotConfigured
}

func (Disabled) GetEvent(context.Context, string) (*integration.Event, error) {
	return nil, integration.ErrAMNetNotConfigured
}

func (Disabled) GetProduct(context.Context, string) (*integration.Product, error) {
	return nil, integration.ErrAMNetNotConfigured
}
