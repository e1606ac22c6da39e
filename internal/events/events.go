// Package events publishes and consumes the domain events carried over
// NATS. Subjects are "<prefix>.<domain>.<event>[.<id>]".
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
)

// DocumentKind names what a render job produces.
type DocumentKind string

const (
	KindPrescription DocumentKind = "prescription"
	KindInvoice      DocumentKind = "invoice"
)

// RenderJob asks the document worker to (re)render a PDF. Revision is the
// document revision the job was queued for.
type RenderJob struct {
	Kind     DocumentKind `json:"kind"`
	ID       uuid.UUID    `json:"id"`
	Revision int64        `json:"revision"`
}

// AppointmentEvent is emitted on creation and on every status change.
type AppointmentEvent struct {
	AppointmentID uuid.UUID `json:"appointmentId"`
	Status        string    `json:"status"`
	Previous      string    `json:"previous,omitempty"`
}

// MessageEvent is emitted when a public contact message is stored.
type MessageEvent struct {
	MessageID uuid.UUID `json:"messageId"`
}

// Subjects builds subject names under a configurable prefix.
type Subjects struct {
	Prefix string
}

func (s Subjects) join(parts ...string) string {
	return strings.Join(append([]string{s.Prefix}, parts...), ".")
}

func (s Subjects) DocumentRender() string { return s.join("document", "render") }

func (s Subjects) AppointmentCreated(id uuid.UUID) string {
	return s.join("appointment", "created", id.String())
}

func (s Subjects) AppointmentStatus(id uuid.UUID) string {
	return s.join("appointment", "status", id.String())
}

// AppointmentCreatedAll and AppointmentStatusAll are subscription wildcards.
func (s Subjects) AppointmentCreatedAll() string { return s.join("appointment", "created", "*") }
func (s Subjects) AppointmentStatusAll() string  { return s.join("appointment", "status", "*") }

func (s Subjects) MessageReceived() string { return s.join("message", "received") }

// Publisher is what services emit events through.
type Publisher interface {
	Publish(ctx context.Context, subject string, payload any) error
}

type NATSPublisher struct {
	nc *nats.Conn
}

func NewNATSPublisher(nc *nats.Conn) *NATSPublisher {
	return &NATSPublisher{nc: nc}
}

func (p *NATSPublisher) Publish(ctx context.Context, subject string, payload any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode %s: %w", subject, err)
	}
	if err := p.nc.Publish(subject, data); err != nil {
		return fmt.Errorf("publish %s: %w", subject, err)
	}
	return nil
}

// Handler processes one decoded message.
type Handler[T any] func(ctx context.Context, subject string, payload T) error

// Subscribe decodes JSON payloads into T and calls h in a queue group so
// that each event is handled by one instance. Failures are logged; NATS
// core delivery is at-most-once.
func Subscribe[T any](nc *nats.Conn, subject, queue string, log *slog.Logger, h Handler[T]) (*nats.Subscription, error) {
	return nc.QueueSubscribe(subject, queue, func(msg *nats.Msg) {
		var payload T
		if err := json.Unmarshal(msg.Data, &payload); err != nil {
			log.Warn("events: undecodable message", "subject", msg.Subject, "error", err)
			return
		}
		if err := h(context.Background(), msg.Subject, payload); err != nil {
			log.Warn("events: handler failed", "subject", msg.Subject, "queue", queue, "error", err)
		}
	})
}
