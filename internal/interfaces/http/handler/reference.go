package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/vscpa/backend/internal/interfaces/http/dto"
)

// ReferenceHandler triggers reference-data refreshes from AM.net
type ReferenceHandler struct {
	BaseHandler
	terms TermRefresher
	firms FirmSyncer
}

// NewReferenceHandler creates a new ReferenceHandler
func NewReferenceHandler(terms TermRefresher, firms FirmSyncer) *ReferenceHandler {
	return &ReferenceHandler{terms: terms, firms: firms}
}

// RefreshTerms godoc
// @Summary      Reload the AM.net taxonomy lists
// @Tags         sync
// @Produce      json
// @Success      200 {object} dto.Response
// @Failure      503 {object} dto.Response
// @Router       /sync/terms [post]
func (h *ReferenceHandler) RefreshTerms(c *gin.Context) {
	result, err := h.terms.Refresh(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// SyncFirms godoc
// @Summary      Pull firms changed in AM.net
// @Description  Without since, continues from the last successful firm sync.
// @Tags         sync
// @Produce      json
// @Param        since query string false "RFC 3339 timestamp"
// @Success      200 {object} dto.Response
// @Router       /sync/firms [post]
func (h *ReferenceHandler) SyncFirms(c *gin.Context) {
	var since *time.Time
	if raw := c.Query("since"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			h.ErrorWithCode(c, dto.ErrCodeInvalidInput, "since must be an RFC 3339 timestamp")
			return
		}
		since = &t
	}

	result, err := h.firms.SyncChanges(c.Request.Context(), since)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}
