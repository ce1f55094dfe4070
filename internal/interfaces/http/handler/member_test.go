package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	membershipapp "github.com/vscpa/backend/internal/application/membership"
	profileapp "github.com/vscpa/backend/internal/application/profile"
	"github.com/vscpa/backend/internal/domain/integration"
	"github.com/vscpa/backend/internal/domain/membership"
	"github.com/vscpa/backend/internal/domain/shared"
	"github.com/vscpa/backend/internal/interfaces/http/dto"
)

// MockMemberService implements MemberService for testing
type MockMemberService struct {
	mock.Mock
}

func (m *MockMemberService) GetMember(ctx context.Context, id uuid.UUID) (*membershipapp.MemberResponse, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*membershipapp.MemberResponse), args.Error(1)
}

func (m *MockMemberService) ListMembers(ctx context.Context, f membershipapp.MemberListFilter) (*shared.Paginated[membershipapp.MemberResponse], error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shared.Paginated[membershipapp.MemberResponse]), args.Error(1)
}

func (m *MockMemberService) UpdateProfile(ctx context.Context, id uuid.UUID, req membershipapp.UpdateProfileRequest) (*membershipapp.MemberResponse, error) {
	args := m.Called(ctx, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*membershipapp.MemberResponse), args.Error(1)
}

func (m *MockMemberService) State(ctx context.Context, id uuid.UUID) (*membershipapp.MembershipStateResponse, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*membershipapp.MembershipStateResponse), args.Error(1)
}

func (m *MockMemberService) Recompute(ctx context.Context, id uuid.UUID) (*membershipapp.MembershipStateResponse, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*membershipapp.MembershipStateResponse), args.Error(1)
}

func (m *MockMemberService) DuesBalance(ctx context.Context, id uuid.UUID) (*membershipapp.DuesBalanceResponse, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*membershipapp.DuesBalanceResponse), args.Error(1)
}

func (m *MockMemberService) DuesRate(ctx context.Context, id uuid.UUID) (*membershipapp.DuesRateResponse, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*membershipapp.DuesRateResponse), args.Error(1)
}

// MockProfileSyncService implements ProfileSyncService for testing
type MockProfileSyncService struct {
	mock.Mock
}

func (m *MockProfileSyncService) Push(ctx context.Context, memberID uuid.UUID) (*profileapp.SyncResult, error) {
	args := m.Called(ctx, memberID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*profileapp.SyncResult), args.Error(1)
}

func (m *MockProfileSyncService) Pull(ctx context.Context, namesID string) (*profileapp.SyncResult, error) {
	args := m.Called(ctx, namesID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*profileapp.SyncResult), args.Error(1)
}

func (m *MockProfileSyncService) History(ctx context.Context, memberID uuid.UUID, limit int) (*profileapp.SyncRecordResponse, error) {
	args := m.Called(ctx, memberID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*profileapp.SyncRecordResponse), args.Error(1)
}

func setupMemberRouter() (*gin.Engine, *MockMemberService, *MockProfileSyncService) {
	members := new(MockMemberService)
	sync := new(MockProfileSyncService)
	h := NewMemberHandler(members, sync)

	router := gin.New()
	router.GET("/members", h.List)
	router.GET("/members/:id", h.Get)
	router.PUT("/members/:id", h.UpdateProfile)
	router.GET("/members/:id/membership", h.State)
	router.POST("/members/:id/membership/recompute", h.Recompute)
	router.GET("/members/:id/dues/balance", h.DuesBalance)
	router.GET("/members/:id/dues/rate", h.DuesRate)
	router.POST("/members/:id/sync/push", h.Push)
	router.GET("/members/:id/sync/history", h.SyncHistory)
	router.POST("/sync/persons/:amnet_id/pull", h.Pull)
	return router, members, sync
}

func serve(router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestMemberHandler_List(t *testing.T) {
	router, members, _ := setupMemberRouter()

	page := shared.NewPaginated([]membershipapp.MemberResponse{{ID: uuid.New(), Email: "a@example.org"}}, 21, 2, 10)
	members.On("ListMembers", mock.Anything, membershipapp.MemberListFilter{Page: 2, PageSize: 10, Status: "M"}).
		Return(&page, nil)

	w := serve(router, http.MethodGet, "/members?page=2&page_size=10&status=M", "")

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decodeResponse(t, w)
	require.NotNil(t, resp.Meta)
	assert.Equal(t, int64(21), resp.Meta.Total)
	assert.Equal(t, 3, resp.Meta.TotalPages)
	members.AssertExpectations(t)
}

func TestMemberHandler_ListRejectsBadFilter(t *testing.T) {
	router, members, _ := setupMemberRouter()

	w := serve(router, http.MethodGet, "/members?status=Z", "")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, dto.ErrCodeValidation, decodeResponse(t, w).Error.Code)
	members.AssertNotCalled(t, "ListMembers", mock.Anything, mock.Anything)
}

func TestMemberHandler_Get(t *testing.T) {
	router, members, _ := setupMemberRouter()
	id := uuid.New()

	members.On("GetMember", mock.Anything, id).Return(&membershipapp.MemberResponse{ID: id, Email: "cpa@example.org", AMNetID: "000123"}, nil)

	w := serve(router, http.MethodGet, "/members/"+id.String(), "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "cpa@example.org")

	missing := uuid.New()
	members.On("GetMember", mock.Anything, missing).Return(nil, shared.ErrNotFound)
	assert.Equal(t, http.StatusNotFound, serve(router, http.MethodGet, "/members/"+missing.String(), "").Code)

	assert.Equal(t, http.StatusBadRequest, serve(router, http.MethodGet, "/members/abc", "").Code)
}

func TestMemberHandler_UpdateProfile(t *testing.T) {
	router, members, _ := setupMemberRouter()
	id := uuid.New()
	first := "Grace"

	members.On("UpdateProfile", mock.Anything, id, mock.MatchedBy(func(r membershipapp.UpdateProfileRequest) bool {
		return r.FirstName != nil && *r.FirstName == first && r.LastName == nil
	})).Return(&membershipapp.MemberResponse{ID: id}, nil)

	w := serve(router, http.MethodPut, "/members/"+id.String(), `{"first_name":"Grace"}`)
	assert.Equal(t, http.StatusOK, w.Code)

	t.Run("stale version", func(t *testing.T) {
		other := uuid.New()
		members.On("UpdateProfile", mock.Anything, other, mock.Anything).Return(nil, shared.ErrConcurrencyConflict)
		w := serve(router, http.MethodPut, "/members/"+other.String(), `{"last_name":"Hopper"}`)
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("malformed body", func(t *testing.T) {
		w := serve(router, http.MethodPut, "/members/"+id.String(), `{"first_name":`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, dto.ErrCodeInvalidJSON, decodeResponse(t, w).Error.Code)
	})
}

func TestMemberHandler_MembershipState(t *testing.T) {
	router, members, _ := setupMemberRouter()
	id := uuid.New()

	state := &membershipapp.MembershipStateResponse{MemberID: id, State: "active", FiscalYear: 2026, DuesPaidThrough: 2026, HasMemberRole: true, Pending: "none"}
	members.On("State", mock.Anything, id).Return(state, nil)
	members.On("Recompute", mock.Anything, id).Return(state, nil)

	w := serve(router, http.MethodGet, "/members/"+id.String()+"/membership", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"pending_license_action":"none"`)

	w = serve(router, http.MethodPost, "/members/"+id.String()+"/membership/recompute", "")
	assert.Equal(t, http.StatusOK, w.Code)
	members.AssertExpectations(t)
}

func TestMemberHandler_Dues(t *testing.T) {
	router, members, _ := setupMemberRouter()
	id := uuid.New()
	balance := decimal.RequireFromString("125.50")
	rate := decimal.RequireFromString("310")

	members.On("DuesBalance", mock.Anything, id).Return(&membershipapp.DuesBalanceResponse{MemberID: id, FiscalYear: 2026, Known: true, Balance: &balance}, nil)
	members.On("DuesRate", mock.Anything, id).Return(&membershipapp.DuesRateResponse{MemberID: id, FiscalYear: 2026, BillingClass: "REG", Amount: &rate}, nil)

	w := serve(router, http.MethodGet, "/members/"+id.String()+"/dues/balance", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"balance":"125.5"`)

	w = serve(router, http.MethodGet, "/members/"+id.String()+"/dues/rate", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"billing_class":"REG"`)

	down := uuid.New()
	members.On("DuesBalance", mock.Anything, down).Return(nil, integration.ErrAMNetUnavailable)
	w = serve(router, http.MethodGet, "/members/"+down.String()+"/dues/balance", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestMemberHandler_PushAndPull(t *testing.T) {
	router, _, sync := setupMemberRouter()
	id := uuid.New()

	sync.On("Push", mock.Anything, id).Return(&profileapp.SyncResult{Direction: "push", Status: "succeeded", AMNetID: "000777", Created: true}, nil)
	w := serve(router, http.MethodPost, "/members/"+id.String()+"/sync/push", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"created":true`)

	locked := uuid.New()
	sync.On("Push", mock.Anything, locked).Return(&profileapp.SyncResult{Status: "skipped"}, profileapp.ErrSyncInProgress)
	w = serve(router, http.MethodPost, "/members/"+locked.String()+"/sync/push", "")
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, dto.ErrCodeSyncInProgress, decodeResponse(t, w).Error.Code)

	sync.On("Pull", mock.Anything, "000777").Return(&profileapp.SyncResult{Direction: "pull", Status: "succeeded"}, nil)
	assert.Equal(t, http.StatusOK, serve(router, http.MethodPost, "/sync/persons/000777/pull", "").Code)

	sync.On("Pull", mock.Anything, "000888").Return(&profileapp.SyncResult{Status: "skipped"}, integration.ErrRecordExcluded)
	w = serve(router, http.MethodPost, "/sync/persons/000888/pull", "")
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	sync.On("Pull", mock.Anything, "000999").Return(&profileapp.SyncResult{Status: "failed"}, membership.ErrMemberNotFound)
	assert.Equal(t, http.StatusNotFound, serve(router, http.MethodPost, "/sync/persons/000999/pull", "").Code)
}

func TestMemberHandler_SyncHistory(t *testing.T) {
	router, _, sync := setupMemberRouter()
	id := uuid.New()

	sync.On("History", mock.Anything, id, 5).Return(&profileapp.SyncRecordResponse{Records: []profileapp.SyncResult{{Status: "succeeded"}}}, nil)
	sync.On("History", mock.Anything, id, 20).Return(&profileapp.SyncRecordResponse{Records: []profileapp.SyncResult{}}, nil)

	assert.Equal(t, http.StatusOK, serve(router, http.MethodGet, "/members/"+id.String()+"/sync/history?limit=5", "").Code)
	assert.Equal(t, http.StatusOK, serve(router, http.MethodGet, "/members/"+id.String()+"/sync/history", "").Code)
	sync.AssertExpectations(t)
}
