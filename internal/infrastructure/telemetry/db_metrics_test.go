package telemetry

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func collectMetrics(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Aggregation {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	out := map[string]metricdata.Aggregation{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m.Data
		}
	}
	return out
}

func TestDBMetrics_PluginCountsStatements(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	db := setupTestDB(t)
	sqlDB, err := db.DB()
	require.NoError(t, err)

	m, err := NewDBMetrics(provider.Meter("db"), sqlDB, 0, nil)
	require.NoError(t, err)
	defer m.Stop()
	require.NoError(t, db.Use(m))

	require.NoError(t, db.Create(&probeModel{Name: "bank"}).Error)
	var rows []probeModel
	require.NoError(t, db.Find(&rows).Error)

	data := collectMetrics(t, reader)

	queries, ok := data["db_query_total"].(metricdata.Sum[int64])
	require.True(t, ok)
	byOp := map[string]int64{}
	for _, dp := range queries.DataPoints {
		op, _ := dp.Attributes.Value(AttrDBOperation)
		byOp[op.AsString()] += dp.Value
	}
	assert.Equal(t, int64(1), byOp["INSERT"])
	assert.Equal(t, int64(1), byOp["SELECT"])

	pool, ok := data["db_pool_connections"].(metricdata.Gauge[int64])
	require.True(t, ok)
	states := map[string]bool{}
	for _, dp := range pool.DataPoints {
		state, _ := dp.Attributes.Value(AttrDBPoolState)
		states[state.AsString()] = true
	}
	assert.True(t, states["in_use"])
	assert.True(t, states["idle"])
}

func TestDBMetrics_RecordQuerySlow(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	m, err := NewDBMetrics(provider.Meter("db"), nil, 10*time.Millisecond, nil)
	require.NoError(t, err)

	m.RecordQuery(context.Background(), "SELECT", "", time.Second)
	m.RecordQuery(context.Background(), "SELECT", "accounts", time.Millisecond)

	slow, ok := collectMetrics(t, reader)["db_slow_query_total"].(metricdata.Sum[int64])
	require.True(t, ok)
	require.Len(t, slow.DataPoints, 1)
	table, _ := slow.DataPoints[0].Attributes.Value(AttrDBTable)
	assert.Equal(t, "unknown", table.AsString())
	assert.Equal(t, attribute.STRING, table.Type())
}

func TestNewDBMetrics_NilMeter(t *testing.T) {
	_, err := NewDBMetrics(nil, nil, 0, nil)
	assert.ErrorIs(t, err, ErrMeterNil)
}
