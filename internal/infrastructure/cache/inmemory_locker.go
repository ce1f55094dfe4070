package cache

import (
	"context"
	"sync"
	"time"

	"github.com/vscpa/backend/internal/domain/shared"
)

// InMemoryLocker implements shared.Locker with a map of expiry times.
// Locks are local to the process; use RedisLocker when running more than one instance.
type InMemoryLocker struct {
	mu        sync.Mutex
	locks     map[string]time.Time
	now       func() time.Time
	stopChan  chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewInMemoryLocker creates a locker and starts its expiry sweeper
func NewInMemoryLocker() *InMemoryLocker {
	l := &InMemoryLocker{
		locks:    make(map[string]time.Time),
		now:      time.Now,
		stopChan: make(chan struct{}),
	}

	l.wg.Add(1)
	go l.cleanupLoop()

	return l
}

// Acquire takes the lock unless an unexpired holder exists
func (l *InMemoryLocker) Acquire(_ context.Context, key string, ttl time.Duration) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if expiresAt, held := l.locks[key]; held && now.Before(expiresAt) {
		return false, nil
	}
	l.locks[key] = now.Add(ttl)
	return true, nil
}

// Release drops the lock
func (l *InMemoryLocker) Release(_ context.Context, key string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.locks, key)
	return nil
}

// IsLocked reports whether the key is held and unexpired
func (l *InMemoryLocker) IsLocked(_ context.Context, key string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	expiresAt, held := l.locks[key]
	return held && l.now().Before(expiresAt), nil
}

// Close stops the sweeper. Safe to call multiple times.
func (l *InMemoryLocker) Close() error {
	l.closeOnce.Do(func() {
		close(l.stopChan)
		l.wg.Wait()
	})
	return nil
}

func (l *InMemoryLocker) cleanupLoop() {
	defer l.wg.Done()

	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-l.stopChan:
			return
		case <-ticker.C:
			l.cleanup()
		}
	}
}

func (l *InMemoryLocker) cleanup() {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	for key, expiresAt := range l.locks {
		if !now.Before(expiresAt) {
			delete(l.locks, key)
		}
	}
}

// Size returns the number of tracked keys, expired or not
func (l *InMemoryLocker) Size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}

var _ shared.Locker = (*InMemoryLocker)(nil)
