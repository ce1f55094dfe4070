package event

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/vscpa/backend/internal/domain/membership"
	"github.com/vscpa/backend/internal/domain/shared"
)

// testEvent implements DomainEvent for testing
type testEvent struct {
	shared.BaseDomainEvent
}

func newTestEvent(eventType string) *testEvent {
	return &testEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, membership.AggregateTypeMember, uuid.New()),
	}
}

// testHandler implements EventHandler for testing
type testHandler struct {
	eventTypes []string
	handled    []shared.DomainEvent
	err        error
	panicWith  any
	mu         sync.Mutex
}

func newTestHandler(eventTypes ...string) *testHandler {
	return &testHandler{eventTypes: eventTypes}
}

func (h *testHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.panicWith != nil {
		panic(h.panicWith)
	}
	h.handled = append(h.handled, event)
	return h.err
}

func (h *testHandler) EventTypes() []string {
	return h.eventTypes
}

func (h *testHandler) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.handled)
}

// ===================== Dispatch Tests =====================

func TestInMemoryEventBus_RoutesByEventType(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	updated := newTestHandler(membership.EventTypeMemberUpdated)
	status := newTestHandler(membership.EventTypeMemberStatusChanged)
	all := newTestHandler()
	bus.Subscribe(updated)
	bus.Subscribe(status)
	bus.Subscribe(all)

	err := bus.Publish(context.Background(),
		newTestEvent(membership.EventTypeMemberUpdated),
		newTestEvent(membership.EventTypeMemberUpdated),
		newTestEvent(membership.EventTypeLicenseChanged),
	)

	require.NoError(t, err)
	assert.Equal(t, 2, updated.count())
	assert.Equal(t, 0, status.count())
	assert.Equal(t, 3, all.count())
}

func TestInMemoryEventBus_ExplicitTypesOverrideHandler(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	h := newTestHandler(membership.EventTypeMemberUpdated)
	bus.Subscribe(h, membership.EventTypeLicenseChanged)

	require.NoError(t, bus.Publish(context.Background(), newTestEvent(membership.EventTypeMemberUpdated)))
	require.NoError(t, bus.Publish(context.Background(), newTestEvent(membership.EventTypeLicenseChanged)))

	assert.Equal(t, 1, h.count())
}

func TestInMemoryEventBus_SubscribeTwiceDeliversOnce(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	h := newTestHandler(membership.EventTypeMemberUpdated)
	bus.Subscribe(h)
	bus.Subscribe(h)

	require.NoError(t, bus.Publish(context.Background(), newTestEvent(membership.EventTypeMemberUpdated)))

	assert.Equal(t, 1, h.count())
}

func TestInMemoryEventBus_Unsubscribe(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	h := newTestHandler(membership.EventTypeMemberUpdated)
	bus.Subscribe(h)
	bus.Unsubscribe(h)

	require.NoError(t, bus.Publish(context.Background(), newTestEvent(membership.EventTypeMemberUpdated)))

	assert.Equal(t, 0, h.count())
	assert.Empty(t, bus.registry.GetHandlers(membership.EventTypeMemberUpdated))
}

// ===================== Failure Tests =====================

func TestInMemoryEventBus_HandlerErrorsAreJoined(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	pushErr := errors.New("AM.net unavailable")
	failing := newTestHandler(membership.EventTypeMemberUpdated)
	failing.err = pushErr
	ok := newTestHandler(membership.EventTypeMemberUpdated)
	bus.Subscribe(failing)
	bus.Subscribe(ok)

	err := bus.Publish(context.Background(), newTestEvent(membership.EventTypeMemberUpdated))

	assert.ErrorIs(t, err, pushErr)
	assert.Equal(t, 1, ok.count())
}

func TestInMemoryEventBus_RecoversPanics(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	panicking := newTestHandler(membership.EventTypeMemberUpdated)
	panicking.panicWith = "boom"
	ok := newTestHandler(membership.EventTypeMemberUpdated)
	bus.Subscribe(panicking)
	bus.Subscribe(ok)

	err := bus.Publish(context.Background(), newTestEvent(membership.EventTypeMemberUpdated))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
	assert.Equal(t, 1, ok.count())
}
