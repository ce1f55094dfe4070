package profile

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/vscpa/backend/internal/domain/integration"
	"github.com/vscpa/backend/internal/domain/membership"
	"github.com/vscpa/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// Pusher pushes one member to AM.net
type Pusher interface {
	Push(ctx context.Context, memberID uuid.UUID) (*SyncResult, error)
}

// MemberUpdatedHandler pushes local profile edits to AM.net.
// Saves made by a pull carry the AM.net origin, and happen while the
// member's sync lock is held; both are skipped so a pull never echoes back.
type MemberUpdatedHandler struct {
	pusher Pusher
	locker shared.Locker
	logger *zap.Logger
}

// NewMemberUpdatedHandler creates a MemberUpdatedHandler
func NewMemberUpdatedHandler(pusher Pusher, locker shared.Locker, logger *zap.Logger) *MemberUpdatedHandler {
	return &MemberUpdatedHandler{pusher: pusher, locker: locker, logger: logger}
}

// EventTypes returns the event types this handler is interested in
func (h *MemberUpdatedHandler) EventTypes() []string {
	return []string{membership.EventTypeMemberUpdated}
}

// Handle processes a MemberUpdatedEvent
func (h *MemberUpdatedHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	updated, ok := event.(*membership.MemberUpdatedEvent)
	if !ok {
		return fmt.Errorf("unexpected event type: expected %s, got %s",
			membership.EventTypeMemberUpdated, event.EventType())
	}
	if updated.Origin == membership.OriginAMNet {
		return nil
	}

	locked, err := h.locker.IsLocked(ctx, membership.SyncLockKey(updated.MemberID))
	if err != nil {
		return fmt.Errorf("check sync lock: %w", err)
	}
	if locked {
		h.logger.Debug("member sync in progress, push skipped",
			zap.String("member_id", updated.MemberID.String()),
		)
		return nil
	}

	if _, err := h.pusher.Push(ctx, updated.MemberID); err != nil {
		if errors.Is(err, ErrSyncInProgress) || errors.Is(err, integration.ErrRecordExcluded) {
			return nil
		}
		return err
	}
	return nil
}
