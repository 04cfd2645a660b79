// FILE: internal/pkg/mailer/email_service.go
package mailer

import (
	"fmt"
	"time"

	"gopkg.in/gomail.v2"
)

type IEmailService interface {
	SendGracePeriodStarted(toEmail string, graceEndsAt time.Time) error
	SendAccountSuspended(toEmail string) error
}

type emailService struct {
	dialer       *gomail.Dialer
	senderEmail  string
	senderName   string
	dashboardURL string
}

func NewEmailService(host string, port int, username, password, senderName, dashboardURL string) IEmailService {
	d := gomail.NewDialer(host, port, username, password)

	return &emailService{
		dialer:       d,
		senderEmail:  username,
		senderName:   senderName,
		dashboardURL: dashboardURL,
	}
}

func (s *emailService) newMessage(toEmail, subject, body string) *gomail.Message {
	m := gomail.NewMessage()
	m.SetAddressHeader("From", s.senderEmail, s.senderName)
	m.SetHeader("To", toEmail)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)
	return m
}

func (s *emailService) SendGracePeriodStarted(toEmail string, graceEndsAt time.Time) error {
	body := fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; padding: 20px; color: #333;">
			<h2>Your welcome book credits have run out</h2>
			<p>Your guests can still open your welcome book until <strong>%s</strong>.</p>
			<p>Add credits before then to keep it online:</p>
			<a href="%s/credits" style="background-color: #007BFF; color: white; padding: 10px 20px; text-decoration: none; border-radius: 5px; display: inline-block;">Add credits</a>
		</div>
	`, graceEndsAt.UTC().Format("January 2, 2006 15:04 MST"), s.dashboardURL)

	m := s.newMessage(toEmail, "Your welcome book credits have run out", body)
	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("send grace period email to %s: %w", toEmail, err)
	}
	return nil
}

func (s *emailService) SendAccountSuspended(toEmail string) error {
	body := fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; padding: 20px; color: #333;">
			<h2>Your welcome book is suspended</h2>
			<p>The 7 day grace period ended and your welcome book is no longer visible to guests.</p>
			<p>Add credits to bring it back online:</p>
			<a href="%s/credits" style="background-color: #007BFF; color: white; padding: 10px 20px; text-decoration: none; border-radius: 5px; display: inline-block;">Reactivate</a>
		</div>
	`, s.dashboardURL)

	m := s.newMessage(toEmail, "Your welcome book is suspended", body)
	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("send suspension email to %s: %w", toEmail, err)
	}
	return nil
}
