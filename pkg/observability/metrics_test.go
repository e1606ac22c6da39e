package observability

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func collect(t *testing.T, r *sdkmetric.ManualReader) map[string]int64 {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, r.Collect(context.Background(), &rm))

	out := map[string]int64{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if sum, ok := m.Data.(metricdata.Sum[int64]); ok {
				for _, dp := range sum.DataPoints {
					out[m.Name] += dp.Value
				}
			}
		}
	}
	return out
}

func TestMetricsRecord(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	m, err := NewMetrics(mp)
	require.NoError(t, err)

	ctx := context.Background()
	m.AppointmentEvent(ctx, "Pending")
	m.AppointmentEvent(ctx, "Accepted")
	m.DocumentRendered(ctx, "invoice", nil)
	m.DocumentRendered(ctx, "invoice", errors.New("upload failed"))
	m.NotificationSent(ctx, "email", nil)

	got := collect(t, reader)
	assert.Equal(t, int64(2), got["hospital_appointments_total"])
	assert.Equal(t, int64(2), got["hospital_documents_rendered_total"])
	assert.Equal(t, int64(1), got["hospital_notifications_total"])
}

func TestNilMetricsAreNoops(t *testing.T) {
	var m *Metrics
	m.AppointmentEvent(context.Background(), "Pending")
	m.PaymentRecorded(context.Background(), "Cash", 10)
}
