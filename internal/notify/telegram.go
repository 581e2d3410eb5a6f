package notify

import (
	"context"
	"fmt"
	"strings"
	"sync"

	botApi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/pkg/errors"
)

type TelegramConfig struct {
	Token  string
	ChatID int64
}

// TelegramChannel sends a markdown digest via the bot API. The API handle is
// created on first use so a misconfigured token fails the send, not the
// service start; initialization is serialized since Send runs concurrently.
type TelegramChannel struct {
	cfg      TelegramConfig
	endpoint string

	mu  sync.Mutex
	api *botApi.BotAPI
}

func NewTelegramChannel(cfg TelegramConfig) *TelegramChannel {
	return &TelegramChannel{cfg: cfg, endpoint: botApi.APIEndpoint}
}

func (c *TelegramChannel) SetAPIEndpoint(endpoint string) {
	c.endpoint = endpoint
}

func (c *TelegramChannel) Name() string {
	return "telegram"
}

func (c *TelegramChannel) Validate() error {
	if c.cfg.Token == "" {
		return errors.Wrap(ErrInvalidConfig, "telegram token is empty")
	}
	if c.cfg.ChatID == 0 {
		return errors.Wrap(ErrInvalidConfig, "telegram chat id is empty")
	}
	return nil
}

func (c *TelegramChannel) Send(ctx context.Context, summary Summary) error {

	api, err := c.authorize()
	if err != nil {
		return Transient(errors.Wrap(err, "telegram authorize"))
	}

	msg := botApi.NewMessage(c.cfg.ChatID, buildTelegramMessage(summary))
	msg.ParseMode = botApi.ModeMarkdown
	msg.DisableWebPagePreview = true

	if _, err := api.Send(msg); err != nil {
		var apiErr *botApi.Error
		if errors.As(err, &apiErr) && apiErr.Code >= 400 && apiErr.Code < 500 {
			return errors.Wrap(err, "telegram send")
		}
		return Transient(errors.Wrap(err, "telegram send"))
	}
	return nil
}

// authorize creates the shared API handle at most once; a failed attempt
// leaves it unset so the next send retries.
func (c *TelegramChannel) authorize() (*botApi.BotAPI, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.api != nil {
		return c.api, nil
	}

	api, err := botApi.NewBotAPIWithAPIEndpoint(c.cfg.Token, c.endpoint)
	if err != nil {
		return nil, err
	}
	c.api = api
	return api, nil
}

func buildTelegramMessage(summary Summary) string {

	var msg strings.Builder
	msg.WriteString(fmt.Sprintf("*Repository recommendations: %s*\n\n", summary.PreferenceName))

	for i, repo := range summary.Repositories {
		msg.WriteString(fmt.Sprintf("%d. [%s](%s)\n", i+1, repo.FullName, repo.URL))
		msg.WriteString(fmt.Sprintf("   ⭐ %d | %s | score %.2f\n", repo.Stars, repo.Language, repo.Score))
		if repo.Reason != "" {
			msg.WriteString(fmt.Sprintf("   %s\n", repo.Reason))
		}
		msg.WriteString("\n")
	}
	return msg.String()
}
