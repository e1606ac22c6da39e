package sms

import (
	"context"
	"testing"

	"github.com/imedbrahmi/hospital_backend/config"
)

func TestNewFromConfig_Disabled(t *testing.T) {
	client, err := NewFromConfig(config.SMSConfig{Enabled: false})
	if err != nil {
		t.Fatalf("NewFromConfig failed: %v", err)
	}
	if client.IsEnabled() {
		t.Error("Expected client to be disabled")
	}
}

func TestNewFromConfig_Validation(t *testing.T) {
	tests := []struct {
		name        string
		cfg         config.SMSIRConfig
		expectError bool
	}{
		{"missing api key", config.SMSIRConfig{TemplateID: "100"}, true},
		{"missing template", config.SMSIRConfig{APIKey: "key"}, true},
		{"complete", config.SMSIRConfig{APIKey: "key", SecretKey: "secret", TemplateID: "100"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := NewFromConfig(config.SMSConfig{Enabled: true, SMSIR: tt.cfg})
			if tt.expectError && err == nil {
				t.Error("Expected error but got nil")
			}
			if !tt.expectError {
				if err != nil {
					t.Fatalf("Expected no error but got: %v", err)
				}
				if !client.IsEnabled() {
					t.Error("Expected client to be enabled")
				}
			}
		})
	}
}

func TestSendAppointmentNotice_DisabledClient(t *testing.T) {
	client := &Client{}
	if err := client.SendAppointmentNotice(context.Background(), "+21620123456", AppointmentNotice{}); err != nil {
		t.Errorf("Expected no error for disabled client, got: %v", err)
	}
}

func TestSendAppointmentNotice_Validation(t *testing.T) {
	client := &Client{enabled: true, templateID: "100"}

	tests := []struct {
		name   string
		phone  string
		notice AppointmentNotice
	}{
		{"empty phone number", "", AppointmentNotice{Status: "Accepted"}},
		{"empty status", "+21620123456", AppointmentNotice{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := client.SendAppointmentNotice(context.Background(), tt.phone, tt.notice); err == nil {
				t.Error("Expected error but got nil")
			}
		})
	}
}

func TestAppointmentNoticeParameters(t *testing.T) {
	params := AppointmentNotice{PatientName: "Sami", DoctorName: "Amal", Date: "2025-03-03", Time: "09:00", Status: "Accepted"}.parameters()
	if len(params) != 5 {
		t.Fatalf("Expected 5 parameters, got %d", len(params))
	}
	if params[4].Key != "status" || params[4].Value != "Accepted" {
		t.Errorf("Unexpected status parameter: %+v", params[4])
	}
}
