// Package social publishes rendered posts to social platforms through a
// webhook relay.
package social

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"
)

type Post struct {
	Platform string `json:"platform"`
	Content  string `json:"content"`
}

// WebhookPublisher POSTs each post as JSON to a single relay URL.
type WebhookPublisher struct {
	url        string
	token      string
	httpClient *http.Client
}

func NewWebhookPublisher(url, token string) *WebhookPublisher {
	return &WebhookPublisher{
		url:        url,
		token:      token,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

func (p *WebhookPublisher) Publish(ctx context.Context, content, platform string) error {
	if p.url == "" {
		return fmt.Errorf("social webhook não configurado")
	}

	payload, err := json.Marshal(Post{Platform: platform, Content: content})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.url, bytes.NewBuffer(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if p.token != "" {
		req.Header.Set("Authorization", "Bearer "+p.token)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("erro ao publicar em %s: %d - %s", platform, resp.StatusCode, string(body))
	}

	log.Printf("📣 Post publicado em %s", platform)
	return nil
}

// LogPublisher only logs posts. Used when no webhook is configured.
type LogPublisher struct{}

func (LogPublisher) Publish(ctx context.Context, content, platform string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	log.Printf("📣 [simulado] %s: %s", platform, content)
	return nil
}
