package email

import (
	"bytes"
	"fmt"
	"html/template"
	"log/slog"
	"net/smtp"
	"os"
	"strconv"
)

// Service handles email sending via Brevo SMTP
type Service struct {
	host     string
	port     int
	username string
	password string
	from     string
}

// NewService creates a new email service configured with Brevo SMTP
func NewService() *Service {
	port, err := strconv.Atoi(os.Getenv("BREVO_SMTP_PORT"))
	if err != nil {
		port = 587 // default
	}

	return &Service{
		host:     os.Getenv("BREVO_SMTP_HOST"),
		port:     port,
		username: os.Getenv("BREVO_SMTP_LOGIN"),
		password: os.Getenv("BREVO_SMTP_KEY"),
		from:     os.Getenv("EMAIL_FROM"),
	}
}

// Enabled reports whether the SMTP credentials are configured. Alerts are
// skipped silently when they are not.
func (s *Service) Enabled() bool {
	return s.host != "" && s.password != "" && s.from != ""
}

// Email represents a single outbound message.
type Email struct {
	To      []string
	Subject string
	Body    string
	ReplyTo string
	IsHTML  bool
}

// Send delivers an email via SMTP.
func (s *Service) Send(email *Email) error {
	if !s.Enabled() {
		return fmt.Errorf("email service not configured: missing BREVO_SMTP_HOST, BREVO_SMTP_KEY, or EMAIL_FROM")
	}

	var msg bytes.Buffer
	msg.WriteString(fmt.Sprintf("From: %s\r\n", s.from))
	msg.WriteString(fmt.Sprintf("To: %s\r\n", email.To[0]))
	if email.ReplyTo != "" {
		msg.WriteString(fmt.Sprintf("Reply-To: %s\r\n", email.ReplyTo))
	}
	msg.WriteString(fmt.Sprintf("Subject: %s\r\n", email.Subject))

	if email.IsHTML {
		msg.WriteString("MIME-Version: 1.0\r\n")
		msg.WriteString("Content-Type: text/html; charset=\"utf-8\"\r\n")
	}

	msg.WriteString("\r\n")
	msg.WriteString(email.Body)

	auth := smtp.PlainAuth("", s.username, s.password, s.host)

	addr := fmt.Sprintf("%s:%d", s.host, s.port)
	err := smtp.SendMail(addr, auth, s.from, email.To, msg.Bytes())
	if err != nil {
		slog.Error("failed to send email", "error", err, "to", email.To)
		return fmt.Errorf("failed to send email: %w", err)
	}

	slog.Info("email sent successfully", "to", email.To, "subject", email.Subject)
	return nil
}

// VoicemailAlertData contains the data for a new-voicemail alert email.
type VoicemailAlertData struct {
	RecipientName string
	CallerName    string
	CallerNumber  string
	Duration      string
	ReceivedAt    string
	Excerpt       string
	DashboardURL  string
}

// SendVoicemailAlert notifies a user that a new voicemail was transcribed.
func (s *Service) SendVoicemailAlert(to string, data *VoicemailAlertData) error {
	html, err := RenderVoicemailAlertEmail(data)
	if err != nil {
		return err
	}

	caller := data.CallerName
	if caller == "" {
		caller = data.CallerNumber
	}

	return s.Send(&Email{
		To:      []string{to},
		Subject: fmt.Sprintf("New voicemail from %s", caller),
		Body:    html,
		IsHTML:  true,
	})
}

// RenderVoicemailAlertEmail renders the voicemail alert email for testing/preview.
func RenderVoicemailAlertEmail(data *VoicemailAlertData) (string, error) {
	tmpl := template.Must(template.New("voicemail").Parse(voicemailAlertTemplate))

	var content bytes.Buffer
	if err := tmpl.Execute(&content, data); err != nil {
		return "", fmt.Errorf("failed to render voicemail alert email: %w", err)
	}

	return WrapEmailContent(content.String(), "New voicemail")
}

// ContactData contains the data for a contact form notification email.
type ContactData struct {
	Name    string
	Email   string
	Phone   string
	Message string
}

// SendContactNotification forwards a contact form submission to the team inbox.
func (s *Service) SendContactNotification(data *ContactData) error {
	adminEmail := os.Getenv("ADMIN_EMAIL")
	if adminEmail == "" {
		adminEmail = s.from
	}

	html, err := RenderContactEmail(data)
	if err != nil {
		return err
	}

	return s.Send(&Email{
		To:      []string{adminEmail},
		Subject: fmt.Sprintf("Contact form: %s", data.Name),
		Body:    html,
		ReplyTo: data.Email,
		IsHTML:  true,
	})
}

// RenderContactEmail renders the contact notification email for testing/preview.
func RenderContactEmail(data *ContactData) (string, error) {
	tmpl := template.Must(template.New("contact").Parse(contactTemplate))

	var content bytes.Buffer
	if err := tmpl.Execute(&content, data); err != nil {
		return "", fmt.Errorf("failed to render contact email: %w", err)
	}

	return WrapEmailContent(content.String(), "Contact form submission")
}
