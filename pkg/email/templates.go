package email

import (
	"bytes"
	"fmt"
	htmltemplate "html/template"
	texttemplate "text/template"
)

// AppointmentEmailData feeds the appointment templates.
type AppointmentEmailData struct {
	PatientName string
	Email       string
	DoctorName  string
	Department  string
	ClinicName  string
	Date        string
	Time        string
	Status      string
}

// ContactEmailData feeds the support inbox template.
type ContactEmailData struct {
	FirstName string
	LastName  string
	Email     string
	Phone     string
	Message   string
}

type brand struct {
	AppName string
	Color   string
}

const layoutHTML = `<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"></head>
<body style="font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px;">
{{template "content" .}}
<p style="color: #6b7280; font-size: 14px; margin-top: 30px;">The {{.Brand.AppName}} Team</p>
</body>
</html>`

var (
	appointmentCreatedHTML = mustHTML("appointment_created", `{{define "content"}}
<h2 style="color: {{.Brand.Color}};">Hi {{.Data.PatientName}},</h2>
<p>We received your appointment request with <strong>Dr. {{.Data.DoctorName}}</strong> ({{.Data.Department}}) at {{.Data.ClinicName}}.</p>
<p style="background-color: #f3f4f6; padding: 10px 15px; border-radius: 4px;">{{.Data.Date}} at {{.Data.Time}}</p>
<p>Current status: <strong>{{.Data.Status}}</strong>. You will be notified when the clinic reviews it.</p>
{{end}}`)

	appointmentCreatedText = mustText("appointment_created", `Hi {{.Data.PatientName}},

We received your appointment request with Dr. {{.Data.DoctorName}} ({{.Data.Department}}) at {{.Data.ClinicName}} on {{.Data.Date}} at {{.Data.Time}}.
Current status: {{.Data.Status}}.

The {{.Brand.AppName}} Team`)

	appointmentStatusHTML = mustHTML("appointment_status", `{{define "content"}}
<h2 style="color: {{.Brand.Color}};">Hi {{.Data.PatientName}},</h2>
<p>Your appointment with <strong>Dr. {{.Data.DoctorName}}</strong> on {{.Data.Date}} at {{.Data.Time}} is now <strong>{{.Data.Status}}</strong>.</p>
{{end}}`)

	appointmentStatusText = mustText("appointment_status", `Hi {{.Data.PatientName}},

Your appointment with Dr. {{.Data.DoctorName}} on {{.Data.Date}} at {{.Data.Time}} is now {{.Data.Status}}.

The {{.Brand.AppName}} Team`)

	contactHTML = mustHTML("contact", `{{define "content"}}
<h2 style="color: {{.Brand.Color}};">New contact message</h2>
<p><strong>{{.Data.FirstName}} {{.Data.LastName}}</strong> &lt;{{.Data.Email}}&gt; {{.Data.Phone}}</p>
<p style="white-space: pre-wrap;">{{.Data.Message}}</p>
{{end}}`)

	contactText = mustText("contact", `New contact message from {{.Data.FirstName}} {{.Data.LastName}} <{{.Data.Email}}> {{.Data.Phone}}

{{.Data.Message}}`)
)

func mustHTML(name, content string) *htmltemplate.Template {
	t := htmltemplate.Must(htmltemplate.New(name).Parse(layoutHTML))
	return htmltemplate.Must(t.Parse(content))
}

func mustText(name, body string) *texttemplate.Template {
	return texttemplate.Must(texttemplate.New(name).Parse(body))
}

type view struct {
	Brand brand
	Data  any
}

func render(cfg Config, data any, h *htmltemplate.Template, t *texttemplate.Template) (string, string, error) {
	v := view{Brand: brand{AppName: cfg.AppName, Color: cfg.PrimaryColor}, Data: data}
	var hb, tb bytes.Buffer
	if err := h.Execute(&hb, v); err != nil {
		return "", "", fmt.Errorf("render %s html: %w", h.Name(), err)
	}
	if err := t.Execute(&tb, v); err != nil {
		return "", "", fmt.Errorf("render %s text: %w", t.Name(), err)
	}
	return hb.String(), tb.String(), nil
}

// BuildAppointmentCreatedEmail confirms a new booking to the patient.
func BuildAppointmentCreatedEmail(cfg Config, data AppointmentEmailData) (Message, error) {
	h, t, err := render(cfg, data, appointmentCreatedHTML, appointmentCreatedText)
	if err != nil {
		return Message{}, err
	}
	return Message{
		To:       []string{data.Email},
		Subject:  fmt.Sprintf("%s: appointment request received", cfg.AppName),
		TextBody: t,
		HTMLBody: h,
	}, nil
}

// BuildAppointmentStatusEmail tells the patient their appointment changed state.
func BuildAppointmentStatusEmail(cfg Config, data AppointmentEmailData) (Message, error) {
	h, t, err := render(cfg, data, appointmentStatusHTML, appointmentStatusText)
	if err != nil {
		return Message{}, err
	}
	return Message{
		To:       []string{data.Email},
		Subject:  fmt.Sprintf("%s: your appointment is %s", cfg.AppName, data.Status),
		TextBody: t,
		HTMLBody: h,
	}, nil
}

// BuildContactEmail forwards a public contact message to the support inbox.
func BuildContactEmail(cfg Config, data ContactEmailData) (Message, error) {
	if cfg.SupportAddress == "" {
		return Message{}, ErrInvalidMessage{Reason: "email.support_address is not configured"}
	}
	h, t, err := render(cfg, data, contactHTML, contactText)
	if err != nil {
		return Message{}, err
	}
	return Message{
		To:       []string{cfg.SupportAddress},
		ReplyTo:  data.Email,
		Subject:  fmt.Sprintf("%s: message from %s %s", cfg.AppName, data.FirstName, data.LastName),
		TextBody: t,
		HTMLBody: h,
	}, nil
}
