package cache

import (
	"fmt"

	"github.com/vscpa/backend/internal/domain/shared"
	"github.com/vscpa/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// LockerFactory creates sync lockers based on configuration
type LockerFactory struct {
	redisConfig           config.RedisConfig
	logger                *zap.Logger
	allowInMemoryFallback bool
}

// LockerFactoryOption is a functional option for configuring the factory
type LockerFactoryOption func(*LockerFactory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) LockerFactoryOption {
	return func(f *LockerFactory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether to fall back to an in-memory locker when Redis is unavailable.
// Default is true.
func WithInMemoryFallback(allow bool) LockerFactoryOption {
	return func(f *LockerFactory) {
		f.allowInMemoryFallback = allow
	}
}

// NewLockerFactory creates a new factory
func NewLockerFactory(cfg config.RedisConfig, opts ...LockerFactoryOption) *LockerFactory {
	f := &LockerFactory{
		redisConfig:           cfg,
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// CreateLocker returns a Redis locker, or an in-memory one when Redis is unconfigured or
// unreachable and fallback is allowed.
// The returned close function releases the locker's resources.
func (f *LockerFactory) CreateLocker() (shared.Locker, func() error, error) {
	if f.redisConfig.Host == "" {
		if !f.allowInMemoryFallback {
			return nil, nil, fmt.Errorf("redis host is not configured")
		}
		f.logger.Info("Redis not configured, using in-memory sync locker")
		l := NewInMemoryLocker()
		return l, l.Close, nil
	}

	locker, err := NewRedisLocker(RedisConfig{
		Host:     f.redisConfig.Host,
		Port:     f.redisConfig.Port,
		Password: f.redisConfig.Password,
		DB:       f.redisConfig.DB,
	})
	if err == nil {
		f.logger.Info("using Redis sync locker")
		return locker, locker.Close, nil
	}

	if !f.allowInMemoryFallback {
		return nil, nil, fmt.Errorf("Redis required for sync locks but unavailable: %w", err)
	}

	f.logger.Warn("Redis unavailable, falling back to in-memory sync locker. "+
		"Concurrent instances may sync the same member at once.",
		zap.Error(err),
	)
	l := NewInMemoryLocker()
	return l, l.Close, nil
}
