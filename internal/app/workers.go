package app

import (
	"context"
	"log/slog"

	"github.com/nats-io/nats.go"
	"go.uber.org/fx"

	"github.com/imedbrahmi/hospital_backend/internal/events"
	"github.com/imedbrahmi/hospital_backend/internal/service/document"
	"github.com/imedbrahmi/hospital_backend/internal/service/notification"
	"github.com/imedbrahmi/hospital_backend/pkg/observability"
)

// WorkerModule registers all NATS event workers.
var WorkerModule = fx.Module("workers",
	fx.Invoke(RegisterWorkers),
)

const (
	queueDocuments     = "documents"
	queueNotifications = "notifications"
)

type WorkerParams struct {
	fx.In

	Lc        fx.Lifecycle
	NC        *nats.Conn
	Subjects  events.Subjects
	Documents document.Service
	Notifier  *notification.Notifier
	Metrics   *observability.Metrics `optional:"true"`
	Logger    *slog.Logger
}

func RegisterWorkers(p WorkerParams) {
	var subs []*nats.Subscription

	p.Lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			var err error
			subs, err = startWorkers(p)
			return err
		},
		OnStop: func(ctx context.Context) error {
			for _, s := range subs {
				if err := s.Unsubscribe(); err != nil {
					p.Logger.Warn("unsubscribe failed", "subject", s.Subject, "error", err)
				}
			}
			return nil
		},
	})
}

func startWorkers(p WorkerParams) ([]*nats.Subscription, error) {
	log := p.Logger.With("component", "workers")
	var subs []*nats.Subscription

	add := func(s *nats.Subscription, err error) error {
		if err != nil {
			return err
		}
		subs = append(subs, s)
		log.Info("worker subscribed", "subject", s.Subject, "queue", s.Queue)
		return nil
	}

	renderer := func(ctx context.Context, _ string, job events.RenderJob) error {
		err := p.Documents.Render(ctx, job)
		p.Metrics.DocumentRendered(ctx, string(job.Kind), err)
		return err
	}

	created := func(ctx context.Context, subject string, ev events.AppointmentEvent) error {
		p.Metrics.AppointmentEvent(ctx, ev.Status)
		err := p.Notifier.AppointmentCreated(ctx, subject, ev)
		p.Metrics.NotificationSent(ctx, "appointment_created", err)
		return err
	}

	status := func(ctx context.Context, subject string, ev events.AppointmentEvent) error {
		p.Metrics.AppointmentEvent(ctx, ev.Status)
		err := p.Notifier.AppointmentStatus(ctx, subject, ev)
		p.Metrics.NotificationSent(ctx, "appointment_status", err)
		return err
	}

	received := func(ctx context.Context, subject string, ev events.MessageEvent) error {
		err := p.Notifier.MessageReceived(ctx, subject, ev)
		p.Metrics.NotificationSent(ctx, "contact_message", err)
		return err
	}

	steps := []func() error{
		func() error {
			return add(events.Subscribe[events.RenderJob](p.NC, p.Subjects.DocumentRender(), queueDocuments, log, renderer))
		},
		func() error {
			return add(events.Subscribe[events.AppointmentEvent](p.NC, p.Subjects.AppointmentCreatedAll(), queueNotifications, log, created))
		},
		func() error {
			return add(events.Subscribe[events.AppointmentEvent](p.NC, p.Subjects.AppointmentStatusAll(), queueNotifications, log, status))
		},
		func() error {
			return add(events.Subscribe[events.MessageEvent](p.NC, p.Subjects.MessageReceived(), queueNotifications, log, received))
		},
	}
	for _, step := range steps {
		if err := step(); err != nil {
			for _, s := range subs {
				_ = s.Unsubscribe()
			}
			return nil, err
		}
	}
	return subs, nil
}
