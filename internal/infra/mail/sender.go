package mail

import (
	"context"
	"fmt"
	"log"

	"gopkg.in/gomail.v2"

	"github.com/xavierca1/sitm-outreach/internal/entity"
)

type dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

// EmailSender delivers outreach emails over SMTP.
type EmailSender struct {
	From     string
	FromName string
	dialer   dialer
}

func NewEmailSender(host string, port int, user, password, from, fromName string) *EmailSender {
	return &EmailSender{
		From:     from,
		FromName: fromName,
		dialer:   gomail.NewDialer(host, port, user, password),
	}
}

func (s *EmailSender) Send(ctx context.Context, msg entity.OutboundMessage) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if msg.ToEmail == "" {
		return fmt.Errorf("email sem destinatário (lead %s)", msg.LeadID)
	}

	m := gomail.NewMessage()
	m.SetAddressHeader("From", s.From, s.FromName)
	m.SetAddressHeader("To", msg.ToEmail, msg.ToName)
	m.SetHeader("Subject", msg.Subject)
	if msg.CampaignID != "" {
		m.SetHeader("X-Campaign-ID", msg.CampaignID)
	}
	m.SetBody("text/plain", msg.Body)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("erro ao enviar email SMTP: %w", err)
	}

	log.Printf("📧 Email enviado para %s (campanha %s)", msg.ToEmail, msg.CampaignID)
	return nil
}
