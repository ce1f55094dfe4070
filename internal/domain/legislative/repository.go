package legislative

import (
	"context"

	"github.com/google/uuid"
)

// ContactRepository defines the interface for legislative contact persistence
type ContactRepository interface {
	// FindByMember returns the member's contacts ordered by slot
	FindByMember(ctx context.Context, memberID uuid.UUID) ([]Contact, error)

	// ApplyPlan creates, updates and deletes contacts in one transaction
	ApplyPlan(ctx context.Context, plan Plan) error
}
