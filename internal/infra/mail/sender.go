package mail

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"

	"gopkg.in/gomail.v2"
)

//go:embed templates/*.html
var templateFS embed.FS

var leadAlertTmpl = template.Must(template.ParseFS(templateFS, "templates/lead_alert.html"))

func NewEmailSender(host string, port int, user, password, from, to string) *EmailSender {
	return &EmailSender{
		Host:     host,
		Port:     port,
		User:     user,
		Password: password,
		From:     from,
		To:       to,
		dialer:   gomail.NewDialer(host, port, user, password),
	}
}

// SendLeadAlert emails the sales inbox about a lead that scored high.
func (s *EmailSender) SendLeadAlert(alert LeadAlert) error {
	subject, body, err := RenderLeadAlert(alert)
	if err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.From)
	m.SetHeader("To", s.To)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("send lead alert: %w", err)
	}
	return nil
}

func RenderLeadAlert(alert LeadAlert) (subject, body string, err error) {
	var buf bytes.Buffer
	if err := leadAlertTmpl.Execute(&buf, alert); err != nil {
		return "", "", fmt.Errorf("render lead alert: %w", err)
	}
	subject = fmt.Sprintf("Hot lead (%.0f/100): %s", alert.Score, alert.Name)
	return subject, buf.String(), nil
}
