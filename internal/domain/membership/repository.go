package membership

import (
	"context"

	"github.com/google/uuid"
	"github.com/vscpa/backend/internal/domain/shared"
)

// MemberRepository defines the interface for member persistence
type MemberRepository interface {
	// FindByID finds a member by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Member, error)

	// FindByAMNetID finds a member by AM.net Names ID.
	// Returns ErrMemberNotFound when no member is linked to it.
	FindByAMNetID(ctx context.Context, namesID string) (*Member, error)

	// FindByEmail finds a member by primary email
	FindByEmail(ctx context.Context, email string) (*Member, error)

	// FindAll finds members matching the filter
	FindAll(ctx context.Context, filter shared.Filter) ([]Member, int64, error)

	// FindLinked returns members that have an AM.net ID, in ID order after the cursor
	FindLinked(ctx context.Context, after uuid.UUID, limit int) ([]Member, error)

	// Save creates or updates a member with an optimistic version check on update
	Save(ctx context.Context, member *Member) error
}

// LicenseRepository defines the interface for license persistence
type LicenseRepository interface {
	// FindMembership returns the member's membership license or ErrLicenseNotFound
	FindMembership(ctx context.Context, memberID uuid.UUID) (*License, error)

	// Save creates or updates a license
	Save(ctx context.Context, license *License) error
}

// UnitOfWork runs fn with repositories bound to one database transaction
type UnitOfWork interface {
	Do(ctx context.Context, fn func(members MemberRepository, licenses LicenseRepository) error) error
}
