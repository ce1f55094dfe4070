package scheduler

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/vscpa/backend/internal/domain/integration"
	"github.com/vscpa/backend/internal/domain/membership"
	"go.uber.org/zap"
)

// SyncTasks are the application operations the executor runs
type SyncTasks struct {
	PullMember      func(ctx context.Context, namesID string) error
	RefreshTerms    func(ctx context.Context) error
	SyncFirmChanges func(ctx context.Context, since *time.Time) error
}

// PullSubmitter queues member pulls found by a changed-persons sweep
type PullSubmitter interface {
	SubmitPull(namesID string) error
}

// SyncExecutor runs sync jobs against the application services
type SyncExecutor struct {
	tasks     SyncTasks
	persons   integration.PersonGateway
	submitter PullSubmitter
	logger    *zap.Logger
	now       func() time.Time

	mu        sync.Mutex
	lastSweep time.Time
}

// NewSyncExecutor creates a SyncExecutor. The first changed-persons sweep
// looks back one lookback period.
func NewSyncExecutor(tasks SyncTasks, persons integration.PersonGateway, lookback time.Duration, logger *zap.Logger) *SyncExecutor {
	return &SyncExecutor{
		tasks:     tasks,
		persons:   persons,
		logger:    logger,
		now:       time.Now,
		lastSweep: time.Now().Add(-lookback),
	}
}

// SetSubmitter sets where pulls found by a sweep are queued
func (e *SyncExecutor) SetSubmitter(s PullSubmitter) {
	e.submitter = s
}

// Execute runs the job
func (e *SyncExecutor) Execute(ctx context.Context, job *Job) error {
	switch job.Type {
	case JobTypePullMember:
		return e.pullMember(ctx, job.NamesID)
	case JobTypeRefreshTerms:
		if e.tasks.RefreshTerms == nil {
			return nil
		}
		return e.tasks.RefreshTerms(ctx)
	case JobTypeFirmChanges:
		if e.tasks.SyncFirmChanges == nil {
			return nil
		}
		return e.tasks.SyncFirmChanges(ctx, job.Since)
	case JobTypeChangedPersons:
		return e.sweepChangedPersons(ctx, job.Since)
	default:
		return fmt.Errorf("%w: %s", ErrUnknownJobType, job.Type)
	}
}

// pullMember treats excluded persons, persons whose email is taken by another
// linked member and persons without a usable email as done; retrying cannot
// change those outcomes.
func (e *SyncExecutor) pullMember(ctx context.Context, namesID string) error {
	if e.tasks.PullMember == nil || strings.TrimSpace(namesID) == "" {
		return nil
	}
	err := e.tasks.PullMember(ctx, namesID)
	if errors.Is(err, integration.ErrRecordExcluded) ||
		errors.Is(err, membership.ErrEmailLinkedElsewhere) ||
		errors.Is(err, membership.ErrInvalidEmail) {
		return nil
	}
	return err
}

func (e *SyncExecutor) sweepChangedPersons(ctx context.Context, since *time.Time) error {
	startedAt := e.now()
	e.mu.Lock()
	from := e.lastSweep
	e.mu.Unlock()
	if since != nil {
		from = *since
	}

	found, err := e.persons.SearchPersons(ctx, integration.PersonSearchQuery{ChangedSince: integration.NewDate(from)})
	if err != nil {
		return err
	}

	seen := make(map[string]bool, len(found))
	queued := 0
	for _, p := range found {
		id := strings.TrimSpace(p.NamesID)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		if e.submitter != nil {
			if err := e.submitter.SubmitPull(id); err != nil {
				// the next sweep starts from the same point
				return fmt.Errorf("queue pull %s: %w", id, err)
			}
		} else if err := e.pullMember(ctx, id); err != nil {
			e.logger.Warn("changed person pull failed", zap.String("amnet_id", id), zap.Error(err))
		}
		queued++
	}

	e.mu.Lock()
	if startedAt.After(e.lastSweep) {
		e.lastSweep = startedAt
	}
	e.mu.Unlock()

	e.logger.Info("changed persons swept",
		zap.Time("since", from),
		zap.Int("found", len(found)),
		zap.Int("queued", queued),
	)
	return nil
}
