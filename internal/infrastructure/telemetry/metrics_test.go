package telemetry_test

import (
	"context"
	"testing"
	"time"

	"github.com/openledger/backend/internal/infrastructure/telemetry"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.uber.org/zap/zaptest"
)

// newTestMeter returns a meter whose measurements are read back with reader
func newTestMeter(t *testing.T) (*sdkmetric.ManualReader, *sdkmetric.MeterProvider) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })
	return reader, provider
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Aggregation {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	out := make(map[string]metricdata.Aggregation)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m.Data
		}
	}
	return out
}

func sumOf(t *testing.T, data metricdata.Aggregation, attrs ...attribute.KeyValue) int64 {
	t.Helper()
	sum, ok := data.(metricdata.Sum[int64])
	require.True(t, ok, "expected an int64 sum, got %T", data)

	want := attribute.NewSet(attrs...)
	var total int64
	for _, dp := range sum.DataPoints {
		if len(attrs) == 0 || dp.Attributes.Equals(&want) {
			total += dp.Value
		}
	}
	return total
}

func TestNewMeterProvider_Disabled(t *testing.T) {
	ctx := context.Background()
	mp, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{ServiceName: "ledger-test"}, zaptest.NewLogger(t))
	require.NoError(t, err)

	assert.False(t, mp.IsEnabled())
	assert.NotNil(t, mp.Meter("test"))
	assert.NoError(t, mp.Shutdown(ctx))
}

func TestCounterAndHistogram(t *testing.T) {
	reader, provider := newTestMeter(t)
	meter := provider.Meter("test")
	ctx := context.Background()

	counter, err := telemetry.NewCounter(meter, "test_total", "test counter", "1")
	require.NoError(t, err)
	counter.Inc(ctx, attribute.String("kind", "a"))
	counter.Add(ctx, 4, attribute.String("kind", "a"))

	histogram, err := telemetry.NewHistogram(meter, telemetry.HistogramOpts{
		Name:       "test_seconds",
		Unit:       "s",
		Boundaries: telemetry.DBDurationBuckets,
	})
	require.NoError(t, err)
	histogram.RecordDuration(ctx, 20*time.Millisecond)

	data := collect(t, reader)
	assert.Equal(t, int64(5), sumOf(t, data["test_total"], attribute.String("kind", "a")))

	hist, ok := data["test_seconds"].(metricdata.Histogram[float64])
	require.True(t, ok)
	require.Len(t, hist.DataPoints, 1)
	assert.Equal(t, uint64(1), hist.DataPoints[0].Count)
	assert.Equal(t, telemetry.DBDurationBuckets, hist.DataPoints[0].Bounds)
}

func TestLedgerMetrics(t *testing.T) {
	reader, provider := newTestMeter(t)
	ctx := context.Background()

	m, err := telemetry.NewLedgerMetrics(provider.Meter("ledger"))
	require.NoError(t, err)

	m.RecordPosting(ctx, "INVOICE", telemetry.OutcomeSuccess, 3, 5*time.Millisecond)
	m.RecordPosting(ctx, "INVOICE", telemetry.OutcomeRejected, 0, time.Millisecond)
	m.RecordAssignment(ctx, "TRANSACTION", telemetry.OutcomeSuccess, decimal.NewFromInt(40))
	m.RecordUnassignment(ctx, "TRANSACTION")

	data := collect(t, reader)
	assert.Equal(t, int64(1), sumOf(t, data["ledger_postings_total"],
		telemetry.AttrTransactionKind.String("INVOICE"), telemetry.AttrOutcome.String(telemetry.OutcomeSuccess)))
	assert.Equal(t, int64(1), sumOf(t, data["ledger_postings_total"],
		telemetry.AttrTransactionKind.String("INVOICE"), telemetry.AttrOutcome.String(telemetry.OutcomeRejected)))
	assert.Equal(t, int64(3), sumOf(t, data["ledger_entries_posted_total"]))
	assert.Equal(t, int64(1), sumOf(t, data["ledger_assignments_total"]))
	assert.Equal(t, int64(1), sumOf(t, data["ledger_assignments_removed_total"]))

	amounts, ok := data["ledger_assigned_amount"].(metricdata.Histogram[float64])
	require.True(t, ok)
	assert.Equal(t, float64(40), amounts.DataPoints[0].Sum)
}

func TestLedgerMetrics_NilIsNoop(t *testing.T) {
	var m *telemetry.LedgerMetrics
	assert.NotPanics(t, func() {
		m.RecordPosting(context.Background(), "INVOICE", telemetry.OutcomeSuccess, 1, time.Millisecond)
		m.RecordAssignment(context.Background(), "BALANCE", telemetry.OutcomeError, decimal.Zero)
		m.RecordUnassignment(context.Background(), "BALANCE")
	})

	_, err := telemetry.NewLedgerMetrics(nil)
	assert.ErrorIs(t, err, telemetry.ErrMeterNil)
}
