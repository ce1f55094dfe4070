package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	membershipapp "github.com/vscpa/backend/internal/application/membership"
	"github.com/vscpa/backend/internal/interfaces/http/middleware"
)

// MemberHandler serves member profiles and derived membership state
type MemberHandler struct {
	BaseHandler
	members MemberService
	sync    ProfileSyncService
}

// NewMemberHandler creates a new MemberHandler
func NewMemberHandler(members MemberService, sync ProfileSyncService) *MemberHandler {
	return &MemberHandler{members: members, sync: sync}
}

// List godoc
// @Summary      List members
// @Tags         members
// @Produce      json
// @Param        page      query int    false "Page number" default(1)
// @Param        page_size query int    false "Page size" default(20)
// @Param        search    query string false "Name or email search"
// @Param        status    query string false "Member status" Enums(M, A, T, N)
// @Success      200 {object} dto.Response
// @Router       /members [get]
func (h *MemberHandler) List(c *gin.Context) {
	var filter membershipapp.MemberListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	page, err := h.members.ListMembers(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}

// Get godoc
// @Summary      Get a member
// @Tags         members
// @Produce      json
// @Param        id path string true "Member ID" format(uuid)
// @Success      200 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Router       /members/{id} [get]
func (h *MemberHandler) Get(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}
	member, err := h.members.GetMember(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, member)
}

// UpdateProfile godoc
// @Summary      Update a member's local profile
// @Description  Applies the non-null fields. With push-on-update enabled the change is sent to AM.net afterwards.
// @Tags         members
// @Accept       json
// @Produce      json
// @Param        id      path string                              true "Member ID" format(uuid)
// @Param        request body membershipapp.UpdateProfileRequest true "Profile fields"
// @Success      200 {object} dto.Response
// @Failure      409 {object} dto.Response
// @Router       /members/{id} [put]
func (h *MemberHandler) UpdateProfile(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req membershipapp.UpdateProfileRequest
	if !middleware.BindJSON(c, &req) {
		return
	}

	member, err := h.members.UpdateProfile(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, member)
}

// State godoc
// @Summary      Get derived membership state
// @Tags         membership
// @Produce      json
// @Param        id path string true "Member ID" format(uuid)
// @Success      200 {object} dto.Response
// @Router       /members/{id}/membership [get]
func (h *MemberHandler) State(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}
	state, err := h.members.State(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, state)
}

// Recompute godoc
// @Summary      Recompute membership license and role
// @Tags         membership
// @Produce      json
// @Param        id path string true "Member ID" format(uuid)
// @Success      200 {object} dto.Response
// @Router       /members/{id}/membership/recompute [post]
func (h *MemberHandler) Recompute(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}
	state, err := h.members.Recompute(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, state)
}

// DuesBalance godoc
// @Summary      Get the member's dues balance from AM.net
// @Tags         membership
// @Produce      json
// @Param        id path string true "Member ID" format(uuid)
// @Success      200 {object} dto.Response
// @Failure      503 {object} dto.Response
// @Router       /members/{id}/dues/balance [get]
func (h *MemberHandler) DuesBalance(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}
	balance, err := h.members.DuesBalance(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, balance)
}

// DuesRate godoc
// @Summary      Get the dues rate for the member's billing class
// @Tags         membership
// @Produce      json
// @Param        id path string true "Member ID" format(uuid)
// @Success      200 {object} dto.Response
// @Router       /members/{id}/dues/rate [get]
func (h *MemberHandler) DuesRate(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}
	rate, err := h.members.DuesRate(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, rate)
}

// Push godoc
// @Summary      Push the member's profile to AM.net
// @Tags         sync
// @Produce      json
// @Param        id path string true "Member ID" format(uuid)
// @Success      200 {object} dto.Response
// @Failure      409 {object} dto.Response "Another sync holds the member's lock"
// @Failure      502 {object} dto.Response
// @Router       /members/{id}/sync/push [post]
func (h *MemberHandler) Push(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}
	result, err := h.sync.Push(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// Pull godoc
// @Summary      Pull an AM.net person into the matching member
// @Tags         sync
// @Produce      json
// @Param        amnet_id path string true "AM.net names ID"
// @Success      200 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Failure      422 {object} dto.Response "The person is excluded from web sync"
// @Router       /sync/persons/{amnet_id}/pull [post]
func (h *MemberHandler) Pull(c *gin.Context) {
	namesID := c.Param("amnet_id")
	if namesID == "" {
		h.BadRequest(c, "AM.net ID is required")
		return
	}
	result, err := h.sync.Pull(c.Request.Context(), namesID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// SyncHistory godoc
// @Summary      List the member's recent sync records
// @Tags         sync
// @Produce      json
// @Param        id    path  string true  "Member ID" format(uuid)
// @Param        limit query int    false "Max records" default(20)
// @Success      200 {object} dto.Response
// @Router       /members/{id}/sync/history [get]
func (h *MemberHandler) SyncHistory(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	history, err := h.sync.History(c.Request.Context(), id, limit)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, history)
}
