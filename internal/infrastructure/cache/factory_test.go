package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vscpa/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

func TestLockerFactory_CreateLocker(t *testing.T) {
	t.Run("unconfigured redis uses in-memory", func(t *testing.T) {
		f := NewLockerFactory(config.RedisConfig{}, WithLogger(zap.NewNop()))
		locker, closeFn, err := f.CreateLocker()
		require.NoError(t, err)
		defer closeFn()
		assert.IsType(t, &InMemoryLocker{}, locker)
	})

	t.Run("unreachable redis falls back", func(t *testing.T) {
		f := NewLockerFactory(config.RedisConfig{Host: "127.0.0.1", Port: 1})
		locker, closeFn, err := f.CreateLocker()
		require.NoError(t, err)
		defer closeFn()
		assert.IsType(t, &InMemoryLocker{}, locker)
	})

	t.Run("fallback disabled", func(t *testing.T) {
		f := NewLockerFactory(config.RedisConfig{Host: "127.0.0.1", Port: 1}, WithInMemoryFallback(false))
		_, _, err := f.CreateLocker()
		assert.Error(t, err)

		f = NewLockerFactory(config.RedisConfig{}, WithInMemoryFallback(false))
		_, _, err = f.CreateLocker()
		assert.Error(t, err)
	})
}
