package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// RecommenderConfig holds the run-level policy knobs: cache freshness, how
// far back history-based dedup looks, and the hard per-run timeout.
type RecommenderConfig struct {
	CacheTTL       time.Duration `mapstructure:"cache_ttl"`
	CacheRetention time.Duration `mapstructure:"cache_retention"`
	DedupWindow    time.Duration `mapstructure:"dedup_window"`
	RunTimeout     time.Duration `mapstructure:"run_timeout"`
	RetentionDays  int           `mapstructure:"retention_days"`
	DefaultCron    string        `mapstructure:"default_cron"`
}

func (config RecommenderConfig) validate() error {

	if config.CacheTTL <= 0 {
		return fmt.Errorf("cache ttl must be positive")
	}

	if config.CacheRetention < config.CacheTTL {
		return fmt.Errorf("cache retention must be at least the cache ttl")
	}

	if config.DedupWindow <= 0 {
		return fmt.Errorf("dedup window must be positive")
	}

	if config.RunTimeout <= 0 {
		return fmt.Errorf("run timeout must be positive")
	}

	if config.RetentionDays <= 0 {
		return fmt.Errorf("retention days must be positive")
	}

	return nil
}

func (config RecommenderConfig) bindEnvironmentVariables() error {
	var errs []error

	if err := viper.BindEnv("recommender.cache_ttl", "CACHE_TTL"); err != nil {
		errs = append(errs, err)
	}

	if err := viper.BindEnv("recommender.dedup_window", "DEDUP_WINDOW"); err != nil {
		errs = append(errs, err)
	}

	if err := viper.BindEnv("recommender.run_timeout", "RUN_TIMEOUT"); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return createMultiError(errs)
	}

	return nil
}
