package reference

import (
	"context"
	"strings"
	"time"

	"github.com/vscpa/backend/internal/domain/firm"
	"github.com/vscpa/backend/internal/domain/integration"
	"go.uber.org/zap"
)

// DefaultFirmLookback is how far back the first firm sync reaches
const DefaultFirmLookback = 30 * 24 * time.Hour

// FirmSyncService mirrors AM.net firm changes into local firms
type FirmSyncService struct {
	firmRepo firm.Repository
	syncRepo integration.SyncRecordRepository
	gateway  integration.ReferenceGateway
	logger   *zap.Logger
	now      func() time.Time
}

// NewFirmSyncService creates a new FirmSyncService
func NewFirmSyncService(
	firmRepo firm.Repository,
	syncRepo integration.SyncRecordRepository,
	gateway integration.ReferenceGateway,
	logger *zap.Logger,
) *FirmSyncService {
	return &FirmSyncService{firmRepo: firmRepo, syncRepo: syncRepo, gateway: gateway, logger: logger, now: time.Now}
}

// SetClock overrides the time source
func (s *FirmSyncService) SetClock(now func() time.Time) {
	s.now = now
}

// SyncChanges applies /FirmChanges since the given time. A nil since means
// the start of the last successful firm sync, or DefaultFirmLookback ago.
func (s *FirmSyncService) SyncChanges(ctx context.Context, since *time.Time) (*RefreshResult, error) {
	record := integration.StartSync(integration.SyncDirectionFirms, nil, "")
	res := &RefreshResult{Kind: "firms"}

	from, err := s.resolveSince(ctx, since)
	if err != nil {
		return s.finish(ctx, record, res, err)
	}
	res.Since = &from

	changes, err := s.gateway.GetFirmChanges(ctx, from)
	if err != nil {
		return s.finish(ctx, record, res, err)
	}

	// last change per firm wins
	latest := make(map[string]integration.FirmChange, len(changes))
	order := make([]string, 0, len(changes))
	for _, c := range changes {
		code := strings.TrimSpace(c.FirmCode)
		if code == "" {
			continue
		}
		res.Fetched++
		if _, seen := latest[code]; !seen {
			order = append(order, code)
		}
		latest[code] = c
	}
	if len(order) == 0 {
		return s.finish(ctx, record, res, nil)
	}

	existing, err := s.firmRepo.FindByCodes(ctx, order)
	if err != nil {
		return s.finish(ctx, record, res, err)
	}
	byCode := make(map[string]*firm.Firm, len(existing))
	for i := range existing {
		byCode[existing[i].Code] = &existing[i]
	}

	var batch []*firm.Firm
	for _, code := range order {
		c := latest[code]
		if f, ok := byCode[code]; ok {
			if f.Apply(c) {
				batch = append(batch, f)
				res.Updated++
			} else {
				res.Unchanged++
			}
			continue
		}
		batch = append(batch, firm.FromChange(c))
		res.Created++
	}
	if len(batch) > 0 {
		if err := s.firmRepo.UpsertBatch(ctx, batch); err != nil {
			return s.finish(ctx, record, res, err)
		}
	}
	return s.finish(ctx, record, res, nil)
}

func (s *FirmSyncService) resolveSince(ctx context.Context, since *time.Time) (time.Time, error) {
	if since != nil {
		return *since, nil
	}
	last, err := s.syncRepo.LastSucceededAt(ctx, integration.SyncDirectionFirms)
	if err != nil {
		return time.Time{}, err
	}
	if last != nil {
		return *last, nil
	}
	return s.now().Add(-DefaultFirmLookback), nil
}

func (s *FirmSyncService) finish(ctx context.Context, record *integration.SyncRecord, res *RefreshResult, cause error) (*RefreshResult, error) {
	if cause != nil {
		record.Fail(cause)
		res.Error = cause.Error()
	} else {
		record.Succeed()
	}
	res.Status = string(record.Status)
	if err := s.syncRepo.Save(context.WithoutCancel(ctx), record); err != nil {
		s.logger.Error("failed to save sync record", zap.Error(err))
	}
	s.logger.Info("firm changes synced",
		zap.Int("fetched", res.Fetched),
		zap.Int("created", res.Created),
		zap.Int("updated", res.Updated),
		zap.Error(cause),
	)
	return res, cause
}
