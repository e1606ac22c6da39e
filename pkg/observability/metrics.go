package observability

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics are the business counters exported next to the HTTP metrics.
type Metrics struct {
	appointments  metric.Int64Counter
	documents     metric.Int64Counter
	notifications metric.Int64Counter
	payments      metric.Float64Counter
}

// NewMetrics registers the counters on mp; nil uses the global provider.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	if mp == nil {
		mp = otel.GetMeterProvider()
	}
	meter := mp.Meter(tracerName)

	var m Metrics
	var err error
	if m.appointments, err = meter.Int64Counter("hospital_appointments_total",
		metric.WithDescription("Appointment lifecycle events by status")); err != nil {
		return nil, err
	}
	if m.documents, err = meter.Int64Counter("hospital_documents_rendered_total",
		metric.WithDescription("PDF render attempts by kind and outcome")); err != nil {
		return nil, err
	}
	if m.notifications, err = meter.Int64Counter("hospital_notifications_total",
		metric.WithDescription("Outgoing notifications by channel and outcome")); err != nil {
		return nil, err
	}
	if m.payments, err = meter.Float64Counter("hospital_payments_amount_total",
		metric.WithDescription("Sum of recorded invoice payments by method")); err != nil {
		return nil, err
	}
	return &m, nil
}

// The recorders are nil-safe so tests can pass a nil *Metrics.

func (m *Metrics) AppointmentEvent(ctx context.Context, status string) {
	if m == nil {
		return
	}
	m.appointments.Add(ctx, 1, metric.WithAttributes(attribute.String("status", status)))
}

func (m *Metrics) DocumentRendered(ctx context.Context, kind string, err error) {
	if m == nil {
		return
	}
	m.documents.Add(ctx, 1, metric.WithAttributes(
		attribute.String("kind", kind),
		attribute.String("outcome", outcome(err)),
	))
}

func (m *Metrics) NotificationSent(ctx context.Context, channel string, err error) {
	if m == nil {
		return
	}
	m.notifications.Add(ctx, 1, metric.WithAttributes(
		attribute.String("channel", channel),
		attribute.String("outcome", outcome(err)),
	))
}

func (m *Metrics) PaymentRecorded(ctx context.Context, method string, amount float64) {
	if m == nil {
		return
	}
	m.payments.Add(ctx, amount, metric.WithAttributes(attribute.String("method", method)))
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
