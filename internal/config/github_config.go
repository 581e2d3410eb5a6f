package config

import (
	"fmt"

	"github.com/spf13/viper"
)

type GithubConfig struct {
	Token                string  `mapstructure:"token"`
	MaxRequestsPerSecond float32 `mapstructure:"max_requests_per_second"`
	MaxSearchPages       int     `mapstructure:"max_search_pages"`
	PerPage              int     `mapstructure:"per_page"`
	RateLimitFloor       int     `mapstructure:"rate_limit_floor"`
}

func (config GithubConfig) validate() error {

	if config.Token == "" {
		return fmt.Errorf("missing required variable: token")
	}

	if config.MaxSearchPages < 1 {
		return fmt.Errorf("max search pages must be at least 1")
	}

	if config.PerPage < 1 || config.PerPage > 100 {
		return fmt.Errorf("per page must be between 1 and 100")
	}

	if config.RateLimitFloor < 0 {
		return fmt.Errorf("rate limit floor must be non-negative")
	}

	return nil
}

func (config GithubConfig) bindEnvironmentVariables() error {
	var errs []error

	if err := viper.BindEnv("github.token", "GITHUB_TOKEN"); err != nil {
		errs = append(errs, err)
	}

	if err := viper.BindEnv("github.max_requests_per_second", "GITHUB_MAX_REQUESTS_PER_SECOND"); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return createMultiError(errs)
	}

	return nil
}
