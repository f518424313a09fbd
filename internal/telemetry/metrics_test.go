package telemetry

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Metrics {
	t.Helper()

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	out := map[string]metricdata.Metrics{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m
		}
	}
	return out
}

func sumWith(t *testing.T, m metricdata.Metrics, key, value string) int64 {
	t.Helper()

	sum, ok := m.Data.(metricdata.Sum[int64])
	require.True(t, ok, "metric %s is not an int64 sum", m.Name)

	var total int64
	for _, dp := range sum.DataPoints {
		if v, ok := dp.Attributes.Value(attribute.Key(key)); ok && v.AsString() == value {
			total += dp.Value
		}
	}
	return total
}

func TestMetrics_Record(t *testing.T) {
	ctx := context.Background()
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	m := NewMetrics(provider)

	m.RecordLogin(ctx, true)
	m.RecordLogin(ctx, false)
	m.RecordLogin(ctx, false)
	m.RecordSignup(ctx, "traveler", "success")
	m.RecordDecision(ctx, "admin", "forbidden")
	m.RecordSweep(ctx, 3, 2)
	m.RecordAuditWriteError(ctx, "login_failure")
	m.RecordPasswordHash(ctx, "verify", 5*time.Millisecond)
	m.RecordLogout(ctx)

	got := collect(t, reader)

	require.Equal(t, int64(1), sumWith(t, got["moontravel.auth.logins.total"], "outcome", "success"))
	require.Equal(t, int64(2), sumWith(t, got["moontravel.auth.logins.total"], "outcome", "failure"))
	require.Equal(t, int64(1), sumWith(t, got["moontravel.auth.signups.total"], "role", "traveler"))
	require.Equal(t, int64(1), sumWith(t, got["moontravel.authz.decisions.total"], "outcome", "forbidden"))
	require.Equal(t, int64(1), sumWith(t, got["moontravel.audit.write_errors.total"], "event_type", "login_failure"))

	swept, ok := got["moontravel.sweeper.sessions.total"].Data.(metricdata.Sum[int64])
	require.True(t, ok)
	require.Equal(t, int64(3), swept.DataPoints[0].Value)

	require.Contains(t, got, "moontravel.auth.password_hash.duration")
	require.Contains(t, got, "moontravel.auth.logouts.total")
}

func TestGetMetrics_singleton(t *testing.T) {
	require.Same(t, GetMetrics(), GetMetrics())
}

func TestSampler(t *testing.T) {
	require.Contains(t, sampler(0).Description(), "AlwaysOnSampler")
	require.Contains(t, sampler(1).Description(), "AlwaysOnSampler")
	require.Contains(t, sampler(0.25).Description(), "TraceIDRatioBased")
}
