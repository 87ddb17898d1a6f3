package mail

import (
	"context"
	"fmt"
	"log"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/xavierca1/sitm-outreach/internal/entity"
)

type SendGridConfig struct {
	APIKey    string
	FromEmail string
	FromName  string
}

// SendGridSender delivers outreach emails through the SendGrid v3 API.
type SendGridSender struct {
	client    *sendgrid.Client
	fromEmail string
	fromName  string
}

// NewSendGridSender returns nil when no API key is configured.
func NewSendGridSender(cfg SendGridConfig) *SendGridSender {
	if cfg.APIKey == "" {
		return nil
	}
	if cfg.FromName == "" {
		cfg.FromName = "SolidITMinds"
	}
	return &SendGridSender{
		client:    sendgrid.NewSendClient(cfg.APIKey),
		fromEmail: cfg.FromEmail,
		fromName:  cfg.FromName,
	}
}

func (s *SendGridSender) Send(ctx context.Context, msg entity.OutboundMessage) error {
	if s == nil || s.client == nil {
		return fmt.Errorf("sendgrid não configurado")
	}

	message := buildSendGridMessage(s.fromName, s.fromEmail, msg)
	response, err := s.client.SendWithContext(ctx, message)
	if err != nil {
		return fmt.Errorf("sendgrid: falha no envio: %w", err)
	}
	if response.StatusCode >= 400 {
		return fmt.Errorf("sendgrid: status %d: %s", response.StatusCode, response.Body)
	}

	log.Printf("📧 SendGrid: email enviado para %s (status %d)", msg.ToEmail, response.StatusCode)
	return nil
}

func buildSendGridMessage(fromName, fromEmail string, msg entity.OutboundMessage) *sgmail.SGMailV3 {
	from := sgmail.NewEmail(fromName, fromEmail)
	to := sgmail.NewEmail(msg.ToName, msg.ToEmail)
	message := sgmail.NewSingleEmailPlainText(from, msg.Subject, to, msg.Body)
	if msg.CampaignID != "" {
		message.SetCustomArg("campaign_id", msg.CampaignID)
	}
	return message
}
