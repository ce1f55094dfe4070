package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vscpa/backend/internal/infrastructure/auth"
	"github.com/vscpa/backend/internal/interfaces/http/middleware"
)

func TestAuthHandler_Logout(t *testing.T) {
	bl := auth.NewInMemoryTokenBlacklist()
	h := NewAuthHandler(bl)
	now := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)
	h.now = func() time.Time { return now }

	claims := &auth.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        "jti-1",
			Subject:   "staff-3",
			ExpiresAt: jwt.NewNumericDate(now.Add(10 * time.Minute)),
		},
		Roles: []string{auth.RoleStaff},
	}

	router := gin.New()
	router.POST("/auth/logout", func(c *gin.Context) {
		if c.GetHeader("X-Anonymous") == "" {
			c.Set(middleware.JWTClaimsKey, claims)
		}
		c.Next()
	}, h.Logout)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/auth/logout", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)

	revoked, err := bl.IsBlacklisted(context.Background(), "jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)

	req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	req.Header.Set("X-Anonymous", "1")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthHandler_Me(t *testing.T) {
	h := NewAuthHandler(auth.NewInMemoryTokenBlacklist())
	exp := time.Date(2026, 10, 1, 13, 0, 0, 0, time.UTC)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	c.Set(middleware.JWTClaimsKey, &auth.Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "web-55", ExpiresAt: jwt.NewNumericDate(exp)},
		Username:         "jdoe",
		MemberID:         "3f1b5f0e-5d4b-4a53-8a0e-1d6b0b8d7c11",
	})

	h.Me(c)

	assert.Equal(t, http.StatusOK, w.Code)
	data := decodeResponse(t, w).Data.(map[string]any)
	assert.Equal(t, "web-55", data["subject"])
	assert.Equal(t, "3f1b5f0e-5d4b-4a53-8a0e-1d6b0b8d7c11", data["member_id"])
	assert.Equal(t, []any{}, data["roles"])
}
