package telemetry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vscpa/backend/internal/domain/integration"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func newTestMeter(t *testing.T) (*sdkmetric.ManualReader, *sdkmetric.MeterProvider) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })
	return reader, provider
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Metrics {
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	out := make(map[string]metricdata.Metrics)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m
		}
	}
	return out
}

func sumFor(t *testing.T, m metricdata.Metrics, attrs ...attribute.KeyValue) int64 {
	sum, ok := m.Data.(metricdata.Sum[int64])
	require.True(t, ok, "%s is not an int64 sum", m.Name)
	want := attribute.NewSet(attrs...)
	for _, dp := range sum.DataPoints {
		if dp.Attributes.Equals(&want) {
			return dp.Value
		}
	}
	return 0
}

type stubMemberStats struct {
	counts map[string]int64
	err    error
	calls  chan struct{}
}

func (s *stubMemberStats) CountByStatus(context.Context) (map[string]int64, error) {
	select {
	case s.calls <- struct{}{}:
	default:
	}
	return s.counts, s.err
}

func TestNewSyncMetrics_RequiresMeter(t *testing.T) {
	_, err := NewSyncMetrics(SyncMetricsConfig{})
	assert.ErrorIs(t, err, ErrMeterNil)
}

func TestSyncMetrics_ObserveAMNetRequest(t *testing.T) {
	reader, provider := newTestMeter(t)
	m, err := NewSyncMetrics(SyncMetricsConfig{Meter: provider.Meter("test")})
	require.NoError(t, err)

	ctx := context.Background()
	m.ObserveAMNetRequest(ctx, "GET /Person", 200, 120*time.Millisecond, nil)
	m.ObserveAMNetRequest(ctx, "GET /Person", 200, 80*time.Millisecond, nil)
	m.ObserveAMNetRequest(ctx, "PUT /Person", 503, time.Second, errors.New("unavailable"))

	metrics := collect(t, reader)
	requests := metrics["amnet_requests_total"]
	assert.Equal(t, int64(2), sumFor(t, requests,
		AttrEndpoint.String("GET /Person"), AttrStatusCode.Int(200), AttrOutcome.String("ok")))
	assert.Equal(t, int64(1), sumFor(t, requests,
		AttrEndpoint.String("PUT /Person"), AttrStatusCode.Int(503), AttrOutcome.String("error")))

	hist, ok := metrics["amnet_request_duration_seconds"].Data.(metricdata.Histogram[float64])
	require.True(t, ok)
	var count uint64
	for _, dp := range hist.DataPoints {
		count += dp.Count
	}
	assert.Equal(t, uint64(3), count)
}

type memorySyncRepo struct {
	integration.SyncRecordRepository
	saved []*integration.SyncRecord
	err   error
}

func (r *memorySyncRepo) Save(_ context.Context, record *integration.SyncRecord) error {
	if r.err != nil {
		return r.err
	}
	r.saved = append(r.saved, record)
	return nil
}

func TestMeteredSyncRecordRepository_Save(t *testing.T) {
	reader, provider := newTestMeter(t)
	m, err := NewSyncMetrics(SyncMetricsConfig{Meter: provider.Meter("test")})
	require.NoError(t, err)

	inner := &memorySyncRepo{}
	repo := NewMeteredSyncRecordRepository(inner, m)
	ctx := context.Background()

	open := integration.StartSync(integration.SyncDirectionPull, nil, "1")
	require.NoError(t, repo.Save(ctx, open))

	done := integration.StartSync(integration.SyncDirectionPull, nil, "1")
	done.Succeed()
	require.NoError(t, repo.Save(ctx, done))

	failed := integration.StartSync(integration.SyncDirectionPush, nil, "2")
	failed.Fail(errors.New("boom"))
	inner.err = errors.New("db down")
	assert.Error(t, repo.Save(ctx, failed))

	assert.Len(t, inner.saved, 2)
	total := collect(t, reader)["member_sync_total"]
	assert.Equal(t, int64(1), sumFor(t, total,
		AttrDirection.String("pull"), AttrSyncStatus.String("succeeded")))
	assert.Equal(t, int64(0), sumFor(t, total,
		AttrDirection.String("push"), AttrSyncStatus.String("failed")))
}

func TestSyncMetrics_Collector(t *testing.T) {
	reader, provider := newTestMeter(t)
	stats := &stubMemberStats{
		counts: map[string]int64{"M": 40, "N": 7},
		calls:  make(chan struct{}, 1),
	}
	m, err := NewSyncMetrics(SyncMetricsConfig{
		Meter:           provider.Meter("test"),
		CollectInterval: time.Hour,
		MemberStats:     stats,
	})
	require.NoError(t, err)

	m.StartCollector(context.Background())
	m.StartCollector(context.Background())
	select {
	case <-stats.calls:
	case <-time.After(2 * time.Second):
		t.Fatal("collector did not run")
	}
	m.Stop()
	m.Stop()

	gauge, ok := collect(t, reader)["members"].Data.(metricdata.Gauge[int64])
	require.True(t, ok)
	values := map[string]int64{}
	for _, dp := range gauge.DataPoints {
		status, _ := dp.Attributes.Value(AttrMemberStatus)
		values[status.AsString()] = dp.Value
	}
	assert.Equal(t, map[string]int64{"M": 40, "N": 7}, values)
}

func TestSyncMetrics_CollectorWithoutProvider(t *testing.T) {
	_, provider := newTestMeter(t)
	m, err := NewSyncMetrics(SyncMetricsConfig{Meter: provider.Meter("test")})
	require.NoError(t, err)

	m.StartCollector(context.Background())
	m.Stop()
}
