package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"
)

type SlackConfig struct {
	WebhookURL string
}

// SlackChannel posts an mrkdwn digest to an incoming-webhook URL.
type SlackChannel struct {
	cfg        SlackConfig
	httpClient *http.Client
}

func NewSlackChannel(cfg SlackConfig) *SlackChannel {
	return &SlackChannel{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

func (c *SlackChannel) Name() string {
	return "slack"
}

func (c *SlackChannel) Validate() error {
	return validateWebhookURL(c.cfg.WebhookURL)
}

func (c *SlackChannel) Send(ctx context.Context, summary Summary) error {

	var text strings.Builder
	text.WriteString(fmt.Sprintf("*Repository recommendations: %s*\n", summary.PreferenceName))
	for _, repo := range summary.Repositories {
		text.WriteString(fmt.Sprintf("• <%s|%s> ⭐ %d | %s | score %.2f",
			repo.URL, repo.FullName, repo.Stars, repo.Language, repo.Score))
		if repo.Reason != "" {
			text.WriteString(" (" + repo.Reason + ")")
		}
		text.WriteString("\n")
	}

	payload, err := json.Marshal(map[string]string{"text": text.String()})
	if err != nil {
		return errors.Wrap(err, "marshal slack payload")
	}
	return postJSON(ctx, c.httpClient, c.cfg.WebhookURL, payload)
}
