package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vscpa/backend/internal/infrastructure/config"
)

func TestInMemoryTokenBlacklist_AddToBlacklist(t *testing.T) {
	blacklist := NewInMemoryTokenBlacklist()
	ctx := context.Background()

	require.NoError(t, blacklist.AddToBlacklist(ctx, "jti-1", time.Hour))

	revoked, err := blacklist.IsBlacklisted(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)

	revoked, err = blacklist.IsBlacklisted(ctx, "jti-2")
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestInMemoryTokenBlacklist_Expiry(t *testing.T) {
	blacklist := NewInMemoryTokenBlacklist()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	blacklist.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, blacklist.AddToBlacklist(ctx, "jti-expire", time.Minute))

	now = now.Add(2 * time.Minute)
	revoked, err := blacklist.IsBlacklisted(ctx, "jti-expire")
	require.NoError(t, err)
	assert.False(t, revoked)
	assert.Empty(t, blacklist.entries)
}

func TestInMemoryTokenBlacklist_IgnoresExpiredTokens(t *testing.T) {
	blacklist := NewInMemoryTokenBlacklist()
	ctx := context.Background()

	require.NoError(t, blacklist.AddToBlacklist(ctx, "jti-dead", 0))

	revoked, err := blacklist.IsBlacklisted(ctx, "jti-dead")
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestNewTokenBlacklist_WithoutRedis(t *testing.T) {
	bl, closeFn, err := NewTokenBlacklist(config.RedisConfig{})
	require.NoError(t, err)
	require.NotNil(t, closeFn)
	assert.IsType(t, &InMemoryTokenBlacklist{}, bl)
	assert.NoError(t, closeFn())
}

func TestNewTokenBlacklist_UnreachableRedisFallsBack(t *testing.T) {
	bl, closeFn, err := NewTokenBlacklist(config.RedisConfig{Host: "127.0.0.1", Port: 1})
	assert.Error(t, err)
	assert.IsType(t, &InMemoryTokenBlacklist{}, bl)
	assert.NoError(t, closeFn())
}
