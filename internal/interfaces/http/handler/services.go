package handler

import (
	"context"
	"time"

	"github.com/google/uuid"
	legislativeapp "github.com/vscpa/backend/internal/application/legislative"
	membershipapp "github.com/vscpa/backend/internal/application/membership"
	peerreviewapp "github.com/vscpa/backend/internal/application/peerreview"
	profileapp "github.com/vscpa/backend/internal/application/profile"
	referenceapp "github.com/vscpa/backend/internal/application/reference"
	"github.com/vscpa/backend/internal/domain/shared"
)

// MemberService is the member read and membership-state surface used by MemberHandler
type MemberService interface {
	GetMember(ctx context.Context, id uuid.UUID) (*membershipapp.MemberResponse, error)
	ListMembers(ctx context.Context, f membershipapp.MemberListFilter) (*shared.Paginated[membershipapp.MemberResponse], error)
	UpdateProfile(ctx context.Context, id uuid.UUID, req membershipapp.UpdateProfileRequest) (*membershipapp.MemberResponse, error)
	State(ctx context.Context, id uuid.UUID) (*membershipapp.MembershipStateResponse, error)
	Recompute(ctx context.Context, id uuid.UUID) (*membershipapp.MembershipStateResponse, error)
	DuesBalance(ctx context.Context, id uuid.UUID) (*membershipapp.DuesBalanceResponse, error)
	DuesRate(ctx context.Context, id uuid.UUID) (*membershipapp.DuesRateResponse, error)
}

// ProfileSyncService pushes and pulls member profiles to and from AM.net
type ProfileSyncService interface {
	Push(ctx context.Context, memberID uuid.UUID) (*profileapp.SyncResult, error)
	Pull(ctx context.Context, namesID string) (*profileapp.SyncResult, error)
	History(ctx context.Context, memberID uuid.UUID, limit int) (*profileapp.SyncRecordResponse, error)
}

// LegislativeService reads and reconciles a member's legislative contacts
type LegislativeService interface {
	Get(ctx context.Context, memberID uuid.UUID) (*legislativeapp.ContactsResponse, error)
	SyncFromAMNet(ctx context.Context, memberID uuid.UUID) (*legislativeapp.SyncResponse, error)
	PushToAMNet(ctx context.Context, memberID uuid.UUID) error
}

// PeerReviewService computes a firm's peer-review billing
type PeerReviewService interface {
	Info(ctx context.Context, firmCode string) (*peerreviewapp.InfoResponse, error)
}

// TermRefresher reloads the AM.net taxonomy lists
type TermRefresher interface {
	Refresh(ctx context.Context) (*referenceapp.RefreshResult, error)
}

// FirmSyncer pulls changed firms from AM.net
type FirmSyncer interface {
	SyncChanges(ctx context.Context, since *time.Time) (*referenceapp.RefreshResult, error)
}

// CatalogReader reads AM.net events and products
type CatalogReader interface {
	Event(ctx context.Context, code string) (*referenceapp.EventResponse, error)
	Product(ctx context.Context, code string) (*referenceapp.ProductResponse, error)
}

var (
	_ MemberService      = (*membershipapp.Service)(nil)
	_ ProfileSyncService = (*profileapp.Service)(nil)
	_ LegislativeService = (*legislativeapp.Service)(nil)
	_ PeerReviewService  = (*peerreviewapp.Service)(nil)
	_ TermRefresher      = (*referenceapp.TermSyncService)(nil)
	_ FirmSyncer         = (*referenceapp.FirmSyncService)(nil)
	_ CatalogReader      = (*referenceapp.CatalogService)(nil)
)
