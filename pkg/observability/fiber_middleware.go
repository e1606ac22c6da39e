package observability

import (
	"errors"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v3"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/imedbrahmi/hospital_backend/pkg/authorize"
)

const tracerName = "github.com/imedbrahmi/hospital_backend/pkg/observability"

type httpInstruments struct {
	requests metric.Int64Counter
	latency  metric.Float64Histogram
}

func newHTTPInstruments(m metric.Meter) httpInstruments {
	var in httpInstruments
	in.requests, _ = m.Int64Counter("http_server_request_count",
		metric.WithDescription("Total number of HTTP requests"),
		metric.WithUnit("{request}"),
	)
	in.latency, _ = m.Float64Histogram("http_server_request_duration_ms",
		metric.WithDescription("HTTP request duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	return in
}

// FiberMiddleware opens a server span per request and records request
// count and latency by route pattern and caller role. Spans of
// authenticated requests also carry the user and clinic.
func FiberMiddleware() fiber.Handler {
	tracer := otel.Tracer(tracerName)
	in := newHTTPInstruments(otel.Meter(tracerName))

	return func(c fiber.Ctx) error {
		ctx := otel.GetTextMapPropagator().Extract(c.Context(), propagation.HeaderCarrier(c.GetReqHeaders()))
		ctx, span := tracer.Start(ctx, c.Method(),
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(
				attribute.String("http.method", c.Method()),
				attribute.String("http.target", c.Path()),
				attribute.String("http.client_ip", c.IP()),
				attribute.String("http.user_agent", c.Get(fiber.HeaderUserAgent)),
			),
		)
		defer span.End()

		c.SetContext(ctx)
		if sc := span.SpanContext(); sc.HasTraceID() {
			c.Set("X-Trace-Id", sc.TraceID().String())
		}

		start := time.Now()
		err := c.Next()
		elapsed := float64(time.Since(start).Microseconds()) / 1000

		status := responseStatus(c, err)
		route := c.Route().Path
		role := "anonymous"

		// The auth middleware replaces the request context, so the
		// identity is read from c rather than ctx.
		if id, ok := authorize.IdentityFromContext(c.Context()); ok {
			role = string(id.Role)
			span.SetAttributes(attribute.String("hospital.user_id", id.UserID.String()))
			if id.HasClinic() {
				span.SetAttributes(attribute.String("hospital.clinic_id", id.ClinicID.String()))
			}
		}

		span.SetName(c.Method() + " " + route)
		span.SetAttributes(
			attribute.String("http.route", route),
			attribute.Int("http.status_code", status),
			attribute.String("hospital.role", role),
		)

		attrs := metric.WithAttributes(
			attribute.String("http.method", c.Method()),
			attribute.String("http.route", route),
			attribute.Int("http.status_code", status),
			attribute.String("hospital.role", role),
		)
		in.requests.Add(ctx, 1, attrs)
		in.latency.Record(ctx, elapsed, attrs)

		if status >= fiber.StatusInternalServerError {
			span.SetStatus(codes.Error, "HTTP "+strconv.Itoa(status))
			if err != nil {
				span.RecordError(err)
			}
		}
		return err
	}
}

// responseStatus predicts the code the ErrorHandler will write for err.
// Service errors reach it unmapped only on programming mistakes, so an
// unknown error counts as 500.
func responseStatus(c fiber.Ctx, err error) int {
	if err == nil {
		return c.Response().StatusCode()
	}
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return fe.Code
	}
	return fiber.StatusInternalServerError
}
