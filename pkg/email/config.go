package email

import (
	"time"

	"github.com/imedbrahmi/hospital_backend/config"
)

type Config struct {
	Enabled bool
	From    string

	SMTPHost           string
	SMTPPort           int
	SMTPUsername       string
	SMTPPassword       string
	SMTPUseTLS         bool
	SMTPTimeoutSeconds int

	AppName        string
	SupportAddress string
	PrimaryColor   string
}

func DefaultConfig() Config {
	return Config{
		SMTPPort:           587,
		SMTPUseTLS:         true,
		SMTPTimeoutSeconds: 30,
		AppName:            "Hospital",
		PrimaryColor:       "#2563eb",
	}
}

func (c Config) SMTPTimeout() time.Duration {
	if c.SMTPTimeoutSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.SMTPTimeoutSeconds) * time.Second
}

// FromCentralConfig overlays the central settings on DefaultConfig.
func FromCentralConfig(c config.EmailConfig) Config {
	out := DefaultConfig()
	out.Enabled = c.Enabled
	out.From = c.From
	out.SupportAddress = c.SupportAddress
	if c.AppName != "" {
		out.AppName = c.AppName
	}
	out.SMTPHost = c.SMTP.Host
	if c.SMTP.Port != 0 {
		out.SMTPPort = c.SMTP.Port
	}
	out.SMTPUsername = c.SMTP.Username
	out.SMTPPassword = c.SMTP.Password
	out.SMTPUseTLS = c.SMTP.UseTLS
	out.SMTPTimeoutSeconds = c.SMTP.TimeoutSeconds
	return out
}
