package sms

import (
	"context"
	"errors"
	"fmt"

	"github.com/arsmn/go-smsir/smsir"

	"github.com/imedbrahmi/hospital_backend/config"
)

// Notifier is implemented by *Client.
type Notifier interface {
	SendAppointmentNotice(ctx context.Context, phone string, n AppointmentNotice) error
	IsEnabled() bool
}

// AppointmentNotice fills the sms.ir template. The template must declare
// the parameters "name", "doctor", "date", "time" and "status".
type AppointmentNotice struct {
	PatientName string
	DoctorName  string
	Date        string
	Time        string
	Status      string
}

func (n AppointmentNotice) parameters() []smsir.UltraFastParameter {
	return []smsir.UltraFastParameter{
		{Key: "name", Value: n.PatientName},
		{Key: "doctor", Value: n.DoctorName},
		{Key: "date", Value: n.Date},
		{Key: "time", Value: n.Time},
		{Key: "status", Value: n.Status},
	}
}

type Client struct {
	client     *smsir.Client
	templateID string
	enabled    bool
}

// NewFromConfig returns a client that no-ops when SMS is disabled.
func NewFromConfig(cfg config.SMSConfig) (*Client, error) {
	if !cfg.Enabled {
		return &Client{}, nil
	}
	if cfg.SMSIR.APIKey == "" {
		return nil, errors.New("sms.ir API key required when SMS enabled")
	}
	if cfg.SMSIR.TemplateID == "" {
		return nil, errors.New("sms.ir template id required when SMS enabled")
	}

	return &Client{
		client:     smsir.NewClient().WithAuthentication(cfg.SMSIR.APIKey, cfg.SMSIR.SecretKey),
		templateID: cfg.SMSIR.TemplateID,
		enabled:    true,
	}, nil
}

// SendAppointmentNotice sends the templated appointment message to an
// E.164 number. It is a no-op on a disabled client.
func (c *Client) SendAppointmentNotice(ctx context.Context, phone string, n AppointmentNotice) error {
	if !c.enabled {
		return nil
	}
	if phone == "" {
		return errors.New("phone number is required")
	}
	if n.Status == "" {
		return errors.New("appointment status is required")
	}

	req := &smsir.UltraFastSendRequest{
		Mobile:     phone,
		TemplateID: c.templateID,
		Parameters: n.parameters(),
	}
	if _, err := c.client.Verification.UltraFastSend(ctx, req); err != nil {
		return fmt.Errorf("sms.ir send failed: %w", err)
	}
	return nil
}

func (c *Client) IsEnabled() bool {
	return c.enabled
}
