package telemetry

import (
	"context"
	"sync"
	"time"

	"github.com/vscpa/backend/internal/domain/integration"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// MemberStatsProvider reports member counts for the periodic gauge collector.
type MemberStatsProvider interface {
	CountByStatus(ctx context.Context) (map[string]int64, error)
}

// SyncMetricsConfig holds configuration for sync metrics.
type SyncMetricsConfig struct {
	Meter           metric.Meter
	Logger          *zap.Logger
	CollectInterval time.Duration // Default: 5 minutes
	MemberStats     MemberStatsProvider
}

// SyncMetrics records AM.net traffic, sync outcomes and member counts.
type SyncMetrics struct {
	logger *zap.Logger

	amnetRequests *Counter
	amnetDuration *Histogram
	syncTotal     *Counter
	syncDuration  *Histogram
	members       *Gauge

	memberStats     MemberStatsProvider
	collectInterval time.Duration
	stopChan        chan struct{}
	stopOnce        sync.Once
	startOnce       sync.Once
	wg              sync.WaitGroup
}

// NewSyncMetrics creates the instruments
func NewSyncMetrics(cfg SyncMetricsConfig) (*SyncMetrics, error) {
	if cfg.Meter == nil {
		return nil, ErrMeterNil
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	interval := cfg.CollectInterval
	if interval <= 0 {
		interval = 5 * time.Minute
	}

	m := &SyncMetrics{
		logger:          logger,
		memberStats:     cfg.MemberStats,
		collectInterval: interval,
		stopChan:        make(chan struct{}),
	}

	var err error
	if m.amnetRequests, err = NewCounter(cfg.Meter, "amnet_requests_total",
		"AM.net API requests by endpoint and outcome", "{requests}"); err != nil {
		return nil, err
	}
	if m.amnetDuration, err = NewHistogram(cfg.Meter, "amnet_request_duration_seconds",
		"AM.net API request latency", RemoteDurationBuckets); err != nil {
		return nil, err
	}
	if m.syncTotal, err = NewCounter(cfg.Meter, "member_sync_total",
		"Sync attempts by direction and status", "{syncs}"); err != nil {
		return nil, err
	}
	if m.syncDuration, err = NewHistogram(cfg.Meter, "member_sync_duration_seconds",
		"Sync attempt duration", RemoteDurationBuckets); err != nil {
		return nil, err
	}
	if m.members, err = NewGauge(cfg.Meter, "members",
		"Members by AM.net status", "{members}"); err != nil {
		return nil, err
	}
	return m, nil
}

// ObserveAMNetRequest records one AM.net HTTP exchange. A zero status means
// the request never got a response.
func (m *SyncMetrics) ObserveAMNetRequest(ctx context.Context, endpoint string, status int, elapsed time.Duration, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.amnetRequests.Inc(ctx,
		AttrEndpoint.String(endpoint),
		AttrStatusCode.Int(status),
		AttrOutcome.String(outcome),
	)
	m.amnetDuration.RecordDuration(ctx, elapsed, AttrEndpoint.String(endpoint))
}

// RecordSync records a finished sync attempt; open records are ignored
func (m *SyncMetrics) RecordSync(ctx context.Context, record *integration.SyncRecord) {
	if record == nil || record.FinishedAt == nil {
		return
	}
	direction := AttrDirection.String(string(record.Direction))
	m.syncTotal.Inc(ctx, direction, AttrSyncStatus.String(string(record.Status)))
	m.syncDuration.RecordDuration(ctx, record.Duration(), direction)
}

// StartCollector periodically records member counts. It is a no-op without a
// MemberStatsProvider and runs at most once.
func (m *SyncMetrics) StartCollector(ctx context.Context) {
	if m.memberStats == nil {
		return
	}
	m.startOnce.Do(func() {
		m.wg.Add(1)
		go func() {
			defer m.wg.Done()
			ticker := time.NewTicker(m.collectInterval)
			defer ticker.Stop()

			m.collect(ctx)
			for {
				select {
				case <-ctx.Done():
					return
				case <-m.stopChan:
					return
				case <-ticker.C:
					m.collect(ctx)
				}
			}
		}()
	})
}

// Stop halts the collector. Safe to call multiple times.
func (m *SyncMetrics) Stop() {
	m.stopOnce.Do(func() {
		close(m.stopChan)
	})
	m.wg.Wait()
}

func (m *SyncMetrics) collect(ctx context.Context) {
	counts, err := m.memberStats.CountByStatus(ctx)
	if err != nil {
		m.logger.Warn("Failed to collect member counts", zap.Error(err))
		return
	}
	for status, n := range counts {
		m.members.Record(ctx, n, AttrMemberStatus.String(status))
	}
}

// MeteredSyncRecordRepository records sync metrics whenever a finished
// record is saved.
type MeteredSyncRecordRepository struct {
	integration.SyncRecordRepository
	metrics *SyncMetrics
}

// NewMeteredSyncRecordRepository wraps repo
func NewMeteredSyncRecordRepository(repo integration.SyncRecordRepository, metrics *SyncMetrics) *MeteredSyncRecordRepository {
	return &MeteredSyncRecordRepository{SyncRecordRepository: repo, metrics: metrics}
}

// Save persists the record, then records it when the save succeeded
func (r *MeteredSyncRecordRepository) Save(ctx context.Context, record *integration.SyncRecord) error {
	if err := r.SyncRecordRepository.Save(ctx, record); err != nil {
		return err
	}
	r.metrics.RecordSync(ctx, record)
	return nil
}

var _ integration.SyncRecordRepository = (*MeteredSyncRecordRepository)(nil)
