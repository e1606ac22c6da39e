// Package notification turns domain events into e-mail and SMS messages.
package notification

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/imedbrahmi/hospital_backend/internal/events"
	"github.com/imedbrahmi/hospital_backend/internal/repo"
	"github.com/imedbrahmi/hospital_backend/pkg/email"
	"github.com/imedbrahmi/hospital_backend/pkg/sms"
)

// ---------------------------------------------------------------------------
// Dependencies
// ---------------------------------------------------------------------------

type AppointmentStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*repo.Appointment, error)
}

type ClinicStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*repo.Clinic, error)
}

type MessageStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*repo.ContactMessage, error)
}

// ---------------------------------------------------------------------------
// Implementation
// ---------------------------------------------------------------------------

type Notifier struct {
	appointments AppointmentStore
	clinics      ClinicStore
	messages     MessageStore
	mail         email.Sender
	mailCfg      email.Config
	sms          sms.Notifier
	logger       *slog.Logger
}

func New(
	appointments AppointmentStore,
	clinics ClinicStore,
	messages MessageStore,
	mail email.Sender,
	mailCfg email.Config,
	texts sms.Notifier,
	logger *slog.Logger,
) *Notifier {
	return &Notifier{
		appointments: appointments,
		clinics:      clinics,
		messages:     messages,
		mail:         mail,
		mailCfg:      mailCfg,
		sms:          texts,
		logger:       logger,
	}
}

func (n *Notifier) appointmentData(ctx context.Context, id uuid.UUID) (*repo.Appointment, email.AppointmentEmailData, error) {
	a, err := n.appointments.GetByID(ctx, id)
	if err != nil {
		return nil, email.AppointmentEmailData{}, fmt.Errorf("get appointment: %w", err)
	}
	data := email.AppointmentEmailData{
		PatientName: a.FirstName + " " + a.LastName,
		Email:       a.Email,
		DoctorName:  a.Doctor.FullName(),
		Department:  a.Department,
		Date:        a.AppointmentDate,
		Time:        a.AppointmentTime,
		Status:      string(a.Status),
	}
	if c, err := n.clinics.GetByID(ctx, a.ClinicID); err == nil {
		data.ClinicName = c.Name
	} else if !repo.IsNotFound(err) {
		return nil, data, fmt.Errorf("get clinic: %w", err)
	}
	return a, data, nil
}

// AppointmentCreated confirms a booking to the patient.
func (n *Notifier) AppointmentCreated(ctx context.Context, _ string, ev events.AppointmentEvent) error {
	a, data, err := n.appointmentData(ctx, ev.AppointmentID)
	if err != nil {
		if repo.IsNotFound(err) {
			return nil
		}
		return err
	}
	msg, err := email.BuildAppointmentCreatedEmail(n.mailCfg, data)
	if err != nil {
		return err
	}
	return errors.Join(n.sendMail(ctx, msg), n.sendSMS(ctx, a, data))
}

// AppointmentStatus tells the patient about a status change. The stored
// status wins over the event payload when they differ.
func (n *Notifier) AppointmentStatus(ctx context.Context, _ string, ev events.AppointmentEvent) error {
	a, data, err := n.appointmentData(ctx, ev.AppointmentID)
	if err != nil {
		if repo.IsNotFound(err) {
			return nil
		}
		return err
	}
	if data.Status == ev.Previous {
		return nil
	}
	msg, err := email.BuildAppointmentStatusEmail(n.mailCfg, data)
	if err != nil {
		return err
	}
	return errors.Join(n.sendMail(ctx, msg), n.sendSMS(ctx, a, data))
}

// MessageReceived forwards a contact message to the support inbox.
func (n *Notifier) MessageReceived(ctx context.Context, _ string, ev events.MessageEvent) error {
	m, err := n.messages.GetByID(ctx, ev.MessageID)
	if err != nil {
		if repo.IsNotFound(err) {
			return nil
		}
		return fmt.Errorf("get message: %w", err)
	}
	msg, err := email.BuildContactEmail(n.mailCfg, email.ContactEmailData{
		FirstName: m.FirstName,
		LastName:  m.LastName,
		Email:     m.Email,
		Phone:     m.Phone,
		Message:   m.Message,
	})
	if err != nil {
		return err
	}
	return n.sendMail(ctx, msg)
}

func (n *Notifier) sendMail(ctx context.Context, msg email.Message) error {
	if !n.mail.Enabled() {
		n.logger.Debug("notification: email disabled", "subject", msg.Subject)
		return nil
	}
	if err := n.mail.Send(ctx, msg); err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	return nil
}

func (n *Notifier) sendSMS(ctx context.Context, a *repo.Appointment, data email.AppointmentEmailData) error {
	if !n.sms.IsEnabled() || a.Phone == "" {
		return nil
	}
	err := n.sms.SendAppointmentNotice(ctx, a.Phone, sms.AppointmentNotice{
		PatientName: data.PatientName,
		DoctorName:  data.DoctorName,
		Date:        data.Date,
		Time:        data.Time,
		Status:      data.Status,
	})
	if err != nil {
		return fmt.Errorf("send sms: %w", err)
	}
	return nil
}
