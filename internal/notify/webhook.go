package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/pkg/errors"
)

type WebhookConfig struct {
	URL string
}

// WebhookChannel posts the summary as structured JSON to an arbitrary
// endpoint.
type WebhookChannel struct {
	cfg        WebhookConfig
	httpClient *http.Client
}

func NewWebhookChannel(cfg WebhookConfig) *WebhookChannel {
	return &WebhookChannel{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

func (c *WebhookChannel) Name() string {
	return "webhook"
}

func (c *WebhookChannel) Validate() error {
	return validateWebhookURL(c.cfg.URL)
}

func (c *WebhookChannel) Send(ctx context.Context, summary Summary) error {

	payload := struct {
		Preference   string        `json:"preference"`
		Repositories []RepoSummary `json:"repositories"`
	}{
		Preference:   summary.PreferenceName,
		Repositories: summary.Repositories,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return errors.Wrap(err, "marshal webhook payload")
	}
	return postJSON(ctx, c.httpClient, c.cfg.URL, body)
}

func validateWebhookURL(raw string) error {
	parsed, err := url.Parse(raw)
	if err != nil || parsed.Host == "" || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return errors.Wrapf(ErrInvalidConfig, "malformed webhook url %q", raw)
	}
	return nil
}

func postJSON(ctx context.Context, client *http.Client, url string, body []byte) error {

	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(body))
	if err != nil {
		return errors.Wrap(err, "create webhook request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return Transient(errors.Wrap(err, "post webhook"))
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return Transient(fmt.Errorf("webhook responded with status %v", resp.StatusCode))
	}
	if resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("webhook responded with status %v, body: %s", resp.StatusCode, respBody)
	}
	return nil
}
