package mailer

import (
	"fmt"
	"html"

	"gopkg.in/gomail.v2"
)

type IEmailService interface {
	SendWelcome(toEmail string) error
}

type emailService struct {
	dialer      *gomail.Dialer
	senderEmail string
	senderName  string
}

func NewEmailService(host string, port int, username, password, senderName string) IEmailService {
	return &emailService{
		dialer:      gomail.NewDialer(host, port, username, password),
		senderEmail: username,
		senderName:  senderName,
	}
}

func (s *emailService) SendWelcome(toEmail string) error {
	m := gomail.NewMessage()
	m.SetAddressHeader("From", s.senderEmail, s.senderName)
	m.SetHeader("To", toEmail)
	m.SetHeader("Subject", "Welcome to "+s.senderName)
	m.SetBody("text/html", welcomeBody(s.senderName, toEmail))

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("send welcome email to %s: %w", toEmail, err)
	}
	return nil
}

func welcomeBody(appName, email string) string {
	return fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; padding: 20px; color: #333;">
			<h2>Welcome to %s!</h2>
			<p>Your account <strong>%s</strong> is ready.</p>
			<p>Log in to assess student dropout and graduation risk.</p>
		</div>
	`, html.EscapeString(appName), html.EscapeString(email))
}

// noopEmailService is used when SMTP is not configured.
type noopEmailService struct{}

func NewNoopEmailService() IEmailService {
	return noopEmailService{}
}

func (noopEmailService) SendWelcome(string) error { return nil }
