// Package whatsapp delivers the SMS channel as plain text messages through
// the WhatsApp Cloud API.
package whatsapp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/xavierca1/sitm-outreach/internal/entity"
)

const DefaultBaseURL = "https://graph.facebook.com/v18.0"

type Client struct {
	accessToken string
	phoneID     string
	baseURL     string
	httpClient  *http.Client
}

func NewClient(accessToken, phoneID, baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		accessToken: accessToken,
		phoneID:     phoneID,
		baseURL:     strings.TrimRight(baseURL, "/"),
		httpClient:  &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *Client) Configured() bool {
	return c.accessToken != "" && c.phoneID != ""
}

// Send delivers msg.Body to msg.ToPhone.
func (c *Client) Send(ctx context.Context, msg entity.OutboundMessage) error {
	if !c.Configured() {
		log.Println("⚠️ WhatsApp: ACCESS_TOKEN ou PHONE_ID não configurados")
		return fmt.Errorf("whatsapp não configurado")
	}
	to := normalizePhone(msg.ToPhone)
	if to == "" {
		return fmt.Errorf("whatsapp: lead %s sem telefone", msg.LeadID)
	}

	body, err := json.Marshal(textMessage{
		MessagingProduct: "whatsapp",
		RecipientType:    "individual",
		To:               to,
		Type:             "text",
		Text:             textBody{Body: msg.Body},
	})
	if err != nil {
		return fmt.Errorf("whatsapp: erro ao serializar payload: %w", err)
	}

	url := fmt.Sprintf("%s/%s/messages", c.baseURL, c.phoneID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Printf("❌ WhatsApp: Erro ao enviar mensagem: %v", err)
		return err
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)

	var result sendResponse
	_ = json.Unmarshal(respBody, &result)

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		if result.Error != nil {
			return fmt.Errorf("whatsapp api error %d: %s", resp.StatusCode, result.Error.Message)
		}
		return fmt.Errorf("whatsapp api error: %d", resp.StatusCode)
	}
	if result.Error != nil {
		return fmt.Errorf("whatsapp: %s", result.Error.Message)
	}

	log.Printf("✅ WhatsApp: Mensagem enviada para %s", to)
	return nil
}

// normalizePhone keeps only the digits, which is what the API expects.
func normalizePhone(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
