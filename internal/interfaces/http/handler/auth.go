package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/vscpa/backend/internal/infrastructure/auth"
	"github.com/vscpa/backend/internal/infrastructure/logger"
	"github.com/vscpa/backend/internal/interfaces/http/middleware"
	"go.uber.org/zap"
)

// AuthHandler exposes the caller's identity and token revocation.
// Tokens are issued by the web front end; this API only validates them.
type AuthHandler struct {
	BaseHandler
	blacklist auth.TokenBlacklist
	now       func() time.Time
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(blacklist auth.TokenBlacklist) *AuthHandler {
	return &AuthHandler{blacklist: blacklist, now: time.Now}
}

// CurrentUserResponse describes the authenticated caller
type CurrentUserResponse struct {
	Subject   string    `json:"subject"`
	Username  string    `json:"username,omitempty"`
	Roles     []string  `json:"roles"`
	MemberID  string    `json:"member_id,omitempty"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Me godoc
// @Summary      Describe the authenticated caller
// @Tags         auth
// @Produce      json
// @Success      200 {object} dto.Response
// @Failure      401 {object} dto.Response
// @Router       /auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	claims := middleware.GetJWTClaims(c)
	if claims == nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	resp := CurrentUserResponse{
		Subject:  claims.Subject,
		Username: claims.Username,
		Roles:    claims.Roles,
		MemberID: claims.MemberID,
	}
	if resp.Roles == nil {
		resp.Roles = []string{}
	}
	if claims.ExpiresAt != nil {
		resp.ExpiresAt = claims.ExpiresAt.Time
	}
	h.Success(c, resp)
}

// Logout godoc
// @Summary      Revoke the caller's access token
// @Description  The token stays revoked until it would have expired.
// @Tags         auth
// @Success      204
// @Failure      401 {object} dto.Response
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	claims := middleware.GetJWTClaims(c)
	if claims == nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	if claims.ID != "" {
		ttl := claims.RemainingTTL(h.now())
		if err := h.blacklist.AddToBlacklist(c.Request.Context(), claims.ID, ttl); err != nil {
			h.HandleError(c, err)
			return
		}
		logger.L(c.Request.Context()).Info("Access token revoked",
			zap.String("subject", claims.Subject),
			zap.Duration("ttl", ttl))
	}
	h.NoContent(c)
}
