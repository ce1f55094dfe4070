package handler

import (
	"github.com/gin-gonic/gin"
)

// LegislativeHandler serves a member's legislative contacts
type LegislativeHandler struct {
	BaseHandler
	contacts LegislativeService
}

// NewLegislativeHandler creates a new LegislativeHandler
func NewLegislativeHandler(contacts LegislativeService) *LegislativeHandler {
	return &LegislativeHandler{contacts: contacts}
}

// Get godoc
// @Summary      Get the member's senator, delegate and other legislative contacts
// @Tags         legislative
// @Produce      json
// @Param        id path string true "Member ID" format(uuid)
// @Success      200 {object} dto.Response
// @Router       /members/{id}/legislators [get]
func (h *LegislativeHandler) Get(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}
	contacts, err := h.contacts.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, contacts)
}

// Sync godoc
// @Summary      Reconcile local legislative contacts with AM.net
// @Tags         legislative
// @Produce      json
// @Param        id path string true "Member ID" format(uuid)
// @Success      200 {object} dto.Response
// @Failure      422 {object} dto.Response "The member has no AM.net record"
// @Router       /members/{id}/legislators/sync [post]
func (h *LegislativeHandler) Sync(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}
	result, err := h.contacts.SyncFromAMNet(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// Push godoc
// @Summary      Send local legislative contacts to AM.net
// @Tags         legislative
// @Param        id path string true "Member ID" format(uuid)
// @Success      204
// @Failure      422 {object} dto.Response "The member has no AM.net record"
// @Router       /members/{id}/legislators/push [post]
func (h *LegislativeHandler) Push(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.contacts.PushToAMNet(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
