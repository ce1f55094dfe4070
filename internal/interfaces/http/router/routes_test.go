package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	legislativeapp "github.com/vscpa/backend/internal/application/legislative"
	membershipapp "github.com/vscpa/backend/internal/application/membership"
	peerreviewapp "github.com/vscpa/backend/internal/application/peerreview"
	profileapp "github.com/vscpa/backend/internal/application/profile"
	referenceapp "github.com/vscpa/backend/internal/application/reference"
	"github.com/vscpa/backend/internal/domain/shared"
	"github.com/vscpa/backend/internal/infrastructure/auth"
	"github.com/vscpa/backend/internal/infrastructure/config"
	"github.com/vscpa/backend/internal/interfaces/http/handler"
	"go.uber.org/zap"
)

// fakeServices answers every service call with an empty success
type fakeServices struct{}

func (fakeServices) GetMember(_ context.Context, id uuid.UUID) (*membershipapp.MemberResponse, error) {
	return &membershipapp.MemberResponse{ID: id}, nil
}

func (fakeServices) ListMembers(context.Context, membershipapp.MemberListFilter) (*shared.Paginated[membershipapp.MemberResponse], error) {
	p := shared.NewPaginated([]membershipapp.MemberResponse{}, 0, 1, 20)
	return &p, nil
}

func (fakeServices) UpdateProfile(_ context.Context, id uuid.UUID, _ membershipapp.UpdateProfileRequest) (*membershipapp.MemberResponse, error) {
	return &membershipapp.MemberResponse{ID: id}, nil
}

func (fakeServices) State(_ context.Context, id uuid.UUID) (*membershipapp.MembershipStateResponse, error) {
	return &membershipapp.MembershipStateResponse{MemberID: id}, nil
}

func (fakeServices) Recompute(_ context.Context, id uuid.UUID) (*membershipapp.MembershipStateResponse, error) {
	return &membershipapp.MembershipStateResponse{MemberID: id}, nil
}

func (fakeServices) DuesBalance(_ context.Context, id uuid.UUID) (*membershipapp.DuesBalanceResponse, error) {
	return &membershipapp.DuesBalanceResponse{MemberID: id}, nil
}

func (fakeServices) DuesRate(_ context.Context, id uuid.UUID) (*membershipapp.DuesRateResponse, error) {
	return &membershipapp.DuesRateResponse{MemberID: id}, nil
}

func (fakeServices) Push(context.Context, uuid.UUID) (*profileapp.SyncResult, error) {
	return &profileapp.SyncResult{Status: "succeeded"}, nil
}

func (fakeServices) Pull(context.Context, string) (*profileapp.SyncResult, error) {
	return &profileapp.SyncResult{Status: "succeeded"}, nil
}

func (fakeServices) History(context.Context, uuid.UUID, int) (*profileapp.SyncRecordResponse, error) {
	return &profileapp.SyncRecordResponse{}, nil
}

func (fakeServices) Get(_ context.Context, id uuid.UUID) (*legislativeapp.ContactsResponse, error) {
	return &legislativeapp.ContactsResponse{MemberID: id}, nil
}

func (fakeServices) SyncFromAMNet(_ context.Context, id uuid.UUID) (*legislativeapp.SyncResponse, error) {
	return &legislativeapp.SyncResponse{}, nil
}

func (fakeServices) PushToAMNet(context.Context, uuid.UUID) error { return nil }

func (fakeServices) Info(_ context.Context, code string) (*peerreviewapp.InfoResponse, error) {
	return &peerreviewapp.InfoResponse{FirmCode: code}, nil
}

func (fakeServices) Refresh(context.Context) (*referenceapp.RefreshResult, error) {
	return &referenceapp.RefreshResult{Kind: "terms"}, nil
}

func (fakeServices) SyncChanges(context.Context, *time.Time) (*referenceapp.RefreshResult, error) {
	return &referenceapp.RefreshResult{Kind: "firms"}, nil
}

func (fakeServices) Event(_ context.Context, code string) (*referenceapp.EventResponse, error) {
	return &referenceapp.EventResponse{Code: code}, nil
}

func (fakeServices) Product(_ context.Context, code string) (*referenceapp.ProductResponse, error) {
	return &referenceapp.ProductResponse{Code: code}, nil
}

func newTestEngine(t *testing.T) (http.Handler, *auth.JWTService) {
	t.Helper()

	jwtSvc := auth.NewJWTService(config.JWTConfig{
		Secret:                "routes-test-secret-0123456789abcd",
		AccessTokenExpiration: time.Hour,
		Issuer:                "vscpa",
	})
	svc := fakeServices{}
	blacklist := auth.NewInMemoryTokenBlacklist()

	engine, err := NewEngine(Deps{
		HTTP:        config.HTTPConfig{MaxBodySize: 1 << 20},
		ServiceName: "vscpa-backend-test",
		Logger:      zap.NewNop(),
		JWT:         jwtSvc,
		Blacklist:   blacklist,
	}, Handlers{
		System:      handler.NewSystemHandler("test", nil, false),
		Auth:        handler.NewAuthHandler(blacklist),
		Member:      handler.NewMemberHandler(svc, svc),
		Legislative: handler.NewLegislativeHandler(svc),
		PeerReview:  handler.NewPeerReviewHandler(svc),
		Reference:   handler.NewReferenceHandler(svc, svc),
		Catalog:     handler.NewCatalogHandler(svc),
	})
	require.NoError(t, err)
	return engine, jwtSvc
}

func TestNewEngine_Authorization(t *testing.T) {
	engine, jwtSvc := newTestEngine(t)

	self := uuid.New()
	token := func(input auth.TokenInput) string {
		tok, err := jwtSvc.IssueAccessToken(input)
		require.NoError(t, err)
		return tok.Token
	}
	staff := token(auth.TokenInput{Subject: "staff-1", Roles: []string{auth.RoleStaff}})
	member := token(auth.TokenInput{Subject: "web-1", Roles: []string{auth.RoleMember}, MemberID: self})

	tests := []struct {
		name   string
		method string
		path   string
		token  string
		status int
	}{
		{"health is public", http.MethodGet, "/health", "", http.StatusOK},
		{"api health is public", http.MethodGet, "/api/v1/health", "", http.StatusOK},
		{"api needs a token", http.MethodGet, "/api/v1/members/" + self.String(), "", http.StatusUnauthorized},
		{"member reads own record", http.MethodGet, "/api/v1/members/" + self.String(), member, http.StatusOK},
		{"member reads own dues", http.MethodGet, "/api/v1/members/" + self.String() + "/dues/balance", member, http.StatusOK},
		{"member cannot read others", http.MethodGet, "/api/v1/members/" + uuid.NewString(), member, http.StatusForbidden},
		{"member cannot list", http.MethodGet, "/api/v1/members", member, http.StatusForbidden},
		{"member cannot force push", http.MethodPost, "/api/v1/members/" + self.String() + "/sync/push", member, http.StatusForbidden},
		{"member pushes own legislators", http.MethodPost, "/api/v1/members/" + self.String() + "/legislators/push", member, http.StatusNoContent},
		{"staff lists members", http.MethodGet, "/api/v1/members", staff, http.StatusOK},
		{"staff pushes", http.MethodPost, "/api/v1/members/" + self.String() + "/sync/push", staff, http.StatusOK},
		{"staff recomputes", http.MethodPost, "/api/v1/members/" + self.String() + "/membership/recompute", staff, http.StatusOK},
		{"staff pulls", http.MethodPost, "/api/v1/sync/persons/000123/pull", staff, http.StatusOK},
		{"staff refreshes terms", http.MethodPost, "/api/v1/sync/terms", staff, http.StatusOK},
		{"member cannot refresh firms", http.MethodPost, "/api/v1/sync/firms", member, http.StatusForbidden},
		{"staff reads peer review", http.MethodGet, "/api/v1/firms/F100/peer-review", staff, http.StatusOK},
		{"staff reads an event", http.MethodGet, "/api/v1/catalog/events/CONF26", staff, http.StatusOK},
		{"staff reads a product", http.MethodGet, "/api/v1/catalog/products/P100", staff, http.StatusOK},
		{"member cannot read the catalog", http.MethodGet, "/api/v1/catalog/events/CONF26", member, http.StatusForbidden},
		{"system info needs auth", http.MethodGet, "/api/v1/system/info", member, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			if tt.token != "" {
				req.Header.Set("Authorization", "Bearer "+tt.token)
			}
			w := httptest.NewRecorder()
			engine.ServeHTTP(w, req)

			assert.Equal(t, tt.status, w.Code)
			assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
		})
	}
}

func TestNewEngine_LogoutRevokesToken(t *testing.T) {
	engine, jwtSvc := newTestEngine(t)

	tok, err := jwtSvc.IssueAccessToken(auth.TokenInput{Subject: "staff-2", Roles: []string{auth.RoleStaff}})
	require.NoError(t, err)

	do := func(method, path string) int {
		req := httptest.NewRequest(method, path, nil)
		req.Header.Set("Authorization", "Bearer "+tok.Token)
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusOK, do(http.MethodGet, "/api/v1/auth/me"))
	assert.Equal(t, http.StatusNoContent, do(http.MethodPost, "/api/v1/auth/logout"))
	assert.Equal(t, http.StatusUnauthorized, do(http.MethodGet, "/api/v1/auth/me"))
}
