package alerts

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"text/template"
	"time"
)

// DefaultTemplate renders a low-stock notification.
const DefaultTemplate = `[Low Stock]
Product: {{.ProductName}}
Store: {{.StoreName}}
Quantity: {{.Quantity}}
Threshold: {{.Threshold}}`

// Notifier delivers low-stock findings.
type Notifier interface {
	Notify(ctx context.Context, finding Finding) error
}

// WebhookNotifier posts findings to an operator webhook.
type WebhookNotifier struct {
	url    string
	tpl    *template.Template
	client *http.Client
}

type webhookPayload struct {
	MsgType string      `json:"msgtype"`
	Text    webhookText `json:"text"`
}

type webhookText struct {
	Content string `json:"content"`
}

// NewWebhookNotifier constructs a notifier. An empty tpl uses
// DefaultTemplate.
func NewWebhookNotifier(url, tpl string) (*WebhookNotifier, error) {
	if url == "" {
		return nil, errors.New("alerts: empty webhook url")
	}
	if tpl == "" {
		tpl = DefaultTemplate
	}
	parsed, err := template.New("low-stock").Parse(tpl)
	if err != nil {
		return nil, err
	}
	return &WebhookNotifier{
		url:    url,
		tpl:    parsed,
		client: &http.Client{Timeout: 10 * time.Second},
	}, nil
}

// Notify renders and posts one finding.
func (n *WebhookNotifier) Notify(ctx context.Context, finding Finding) error {
	if n == nil || n.url == "" {
		return errors.New("alerts: notifier not configured")
	}
	var content bytes.Buffer
	if err := n.tpl.Execute(&content, finding); err != nil {
		return err
	}
	payload := webhookPayload{
		MsgType: "text",
		Text:    webhookText{Content: content.String()},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := n.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return errors.New("alerts: webhook non-2xx")
	}
	return nil
}
