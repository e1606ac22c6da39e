package email

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"
)

func TestBuildAppointmentCreatedEmailEscapesHTML(t *testing.T) {
	cfg := DefaultConfig()
	msg, err := BuildAppointmentCreatedEmail(cfg, AppointmentEmailData{
		PatientName: "<b>Sami</b>",
		Email:       "sami@example.com",
		DoctorName:  "Amal Ben Ali",
		Department:  "Cardiology",
		ClinicName:  "Clinique Carthage",
		Date:        "2025-03-03",
		Time:        "09:30",
		Status:      "Pending",
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"sami@example.com"}, msg.To)
	assert.Contains(t, msg.HTMLBody, "&lt;b&gt;Sami&lt;/b&gt;")
	assert.Contains(t, msg.TextBody, "2025-03-03 at 09:30")
	assert.Contains(t, msg.Subject, "Hospital")
}

func TestBuildContactEmailNeedsSupportAddress(t *testing.T) {
	_, err := BuildContactEmail(DefaultConfig(), ContactEmailData{FirstName: "Ali"})
	var invalid ErrInvalidMessage
	assert.True(t, errors.As(err, &invalid))

	cfg := DefaultConfig()
	cfg.SupportAddress = "support@hospital.tn"
	msg, err := BuildContactEmail(cfg, ContactEmailData{FirstName: "Ali", LastName: "Ben", Email: "ali@example.com", Message: "Hello there"})
	require.NoError(t, err)
	assert.Equal(t, []string{"support@hospital.tn"}, msg.To)
	assert.Equal(t, "ali@example.com", msg.ReplyTo)
}

func TestSendDisabled(t *testing.T) {
	c, err := New(DefaultConfig())
	require.NoError(t, err)
	assert.ErrorIs(t, c.Send(context.Background(), Message{}), ErrDisabled{})
}

func TestSendUsesDialer(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Enabled = true
	cfg.SMTPHost = "smtp.example.com"
	cfg.From = "noreply@hospital.tn"
	c, err := New(cfg)
	require.NoError(t, err)

	var sent *gomail.Message
	c.dial = func(m *gomail.Message) error { sent = m; return nil }

	err = c.Send(context.Background(), Message{To: []string{"a@b.c"}, Subject: "s", TextBody: "t"})
	require.NoError(t, err)
	require.NotNil(t, sent)
	assert.Equal(t, []string{"a@b.c"}, sent.GetHeader("To"))

	c.dial = func(*gomail.Message) error { time.Sleep(time.Second); return nil }
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.Error(t, c.Send(ctx, Message{To: []string{"a@b.c"}, Subject: "s", TextBody: "t"}))
}

func TestBuildMessageValidation(t *testing.T) {
	tests := []struct {
		name string
		from string
		msg  Message
	}{
		{"no from", "", Message{To: []string{"a@b.c"}, Subject: "s", TextBody: "t"}},
		{"no recipient", "f@x.y", Message{To: []string{" "}, Subject: "s", TextBody: "t"}},
		{"no subject", "f@x.y", Message{To: []string{"a@b.c"}, TextBody: "t"}},
		{"no body", "f@x.y", Message{To: []string{"a@b.c"}, Subject: "s"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := buildMessage(tt.from, tt.msg)
			assert.Error(t, err)
		})
	}
}
