package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/vscpa/backend/internal/domain/membership"
	"github.com/vscpa/backend/internal/infrastructure/event"
)

func TestMockEventHandler(t *testing.T) {
	handler := NewMockEventHandler("test.happened")
	assert.Equal(t, []string{"test.happened"}, handler.EventTypes())

	aggID := uuid.New()
	evt := NewTestEvent("test.happened", aggID)
	require.NoError(t, handler.Handle(context.Background(), evt))
	assert.Equal(t, 1, handler.HandledCount())
	assert.Equal(t, aggID, handler.Handled()[0].AggregateID())

	handler.SetError(assert.AnError)
	assert.ErrorIs(t, handler.Handle(context.Background(), evt), assert.AnError)

	handler.Reset()
	assert.Equal(t, 0, handler.HandledCount())
	assert.NoError(t, handler.Handle(context.Background(), evt))
}

func TestNewTestEvent(t *testing.T) {
	aggID := uuid.New()
	evt := NewTestEvent("test.happened", aggID)

	assert.NotEqual(t, uuid.Nil, evt.EventID())
	assert.Equal(t, "test.happened", evt.EventType())
	assert.Equal(t, "TestAggregate", evt.AggregateType())
	assert.WithinDuration(t, time.Now(), evt.OccurredAt(), time.Second)
}

func TestMockEventHandler_OnEventBus(t *testing.T) {
	bus := event.NewInMemoryEventBus(zap.NewNop())
	handler := NewMockEventHandler(membership.EventTypeMemberUpdated)
	bus.Subscribe(handler)

	m := NewMember(t, "bus@example.com", "Bus", "Rider")
	require.NoError(t, bus.Publish(context.Background(),
		membership.NewMemberUpdatedEvent(m, membership.OriginLocal),
		NewTestEvent("test.ignored", m.ID),
	))

	require.True(t, WaitForEventCount(handler, 1, time.Second))
	assert.Equal(t, 1, handler.HandledCount())

	updated, ok := handler.Handled()[0].(*membership.MemberUpdatedEvent)
	require.True(t, ok)
	assert.Equal(t, m.ID, updated.MemberID)
	assert.Equal(t, membership.OriginLocal, updated.Origin)
}
