package handler

import (
	"strings"

	"github.com/gin-gonic/gin"
)

// PeerReviewHandler serves firm peer-review billing
type PeerReviewHandler struct {
	BaseHandler
	peerReview PeerReviewService
}

// NewPeerReviewHandler creates a new PeerReviewHandler
func NewPeerReviewHandler(peerReview PeerReviewService) *PeerReviewHandler {
	return &PeerReviewHandler{peerReview: peerReview}
}

// Info godoc
// @Summary      Get a firm's netted peer-review balance and current rate
// @Tags         firms
// @Produce      json
// @Param        code path string true "Firm code"
// @Success      200 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Router       /firms/{code}/peer-review [get]
func (h *PeerReviewHandler) Info(c *gin.Context) {
	code := strings.TrimSpace(c.Param("code"))
	if code == "" {
		h.BadRequest(c, "Firm code is required")
		return
	}
	info, err := h.peerReview.Info(c.Request.Context(), code)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, info)
}
