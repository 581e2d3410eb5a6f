package config

import "github.com/spf13/viper"

// NotifyConfig carries service-level channel settings. Channels without
// configuration are simply absent from the dispatcher; per-preference channel
// selection happens at run time.
type NotifyConfig struct {
	SmtpHost       string `mapstructure:"smtp_host"`
	SmtpPort       int    `mapstructure:"smtp_port"`
	SmtpUsername   string `mapstructure:"smtp_username"`
	SmtpPassword   string `mapstructure:"smtp_password"`
	SmtpFrom       string `mapstructure:"smtp_from"`
	SmtpTo         string `mapstructure:"smtp_to"`
	SmtpUseTLS     bool   `mapstructure:"smtp_use_tls"`
	TelegramToken  string `mapstructure:"telegram_token"`
	TelegramChatID int64  `mapstructure:"telegram_chat_id"`
	SlackWebhook   string `mapstructure:"slack_webhook"`
	WebhookURL     string `mapstructure:"webhook_url"`
}

func (config NotifyConfig) bindEnvironmentVariables() error {
	var errs []error

	if err := viper.BindEnv("notify.smtp_password", "SMTP_PASSWORD"); err != nil {
		errs = append(errs, err)
	}

	if err := viper.BindEnv("notify.telegram_token", "TELEGRAM_TOKEN"); err != nil {
		errs = append(errs, err)
	}

	if err := viper.BindEnv("notify.slack_webhook", "SLACK_WEBHOOK"); err != nil {
		errs = append(errs, err)
	}

	if err := viper.BindEnv("notify.webhook_url", "WEBHOOK_URL"); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return createMultiError(errs)
	}

	return nil
}
