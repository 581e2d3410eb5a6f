package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func Test_Config_LoadsFromFile(t *testing.T) {
	os.Setenv("CONFIG_PATH", "../../configs/config.yaml")
	os.Setenv("GITHUB_TOKEN", "file-test-token")
	defer os.Unsetenv("GITHUB_TOKEN")

	cfg := Get()

	assert.Equal(t, time.Hour, cfg.Recommender.CacheTTL)
	assert.Equal(t, 720*time.Hour, cfg.Recommender.DedupWindow)
	assert.Equal(t, 10*time.Minute, cfg.Recommender.RunTimeout)
	assert.Equal(t, 3, cfg.Github.MaxSearchPages)
	assert.Equal(t, 50, cfg.Github.PerPage)
	assert.NotEmpty(t, cfg.DB.ConnectionString)
}

func Test_Config_EnvironmentOverrideWorksCorrect(t *testing.T) {
	os.Setenv("CONFIG_PATH", "../../configs/config.yaml")
	os.Setenv("GITHUB_TOKEN", "overrideToken")
	os.Setenv("GITHUB_MAX_REQUESTS_PER_SECOND", "2.5")
	os.Setenv("CACHE_TTL", "30m")
	os.Setenv("DEDUP_WINDOW", "168h")
	os.Setenv("RUN_TIMEOUT", "5m")
	os.Setenv("DB_CONNECTION_STRING", "newConnectionString")
	os.Setenv("SMTP_PASSWORD", "overridePassword")
	defer func() {
		for _, key := range []string{"GITHUB_TOKEN", "GITHUB_MAX_REQUESTS_PER_SECOND",
			"CACHE_TTL", "DEDUP_WINDOW", "RUN_TIMEOUT", "DB_CONNECTION_STRING", "SMTP_PASSWORD"} {
			os.Unsetenv(key)
		}
	}()

	cfg := Get()

	assert.Equal(t, "overrideToken", cfg.Github.Token)
	assert.Equal(t, float32(2.5), cfg.Github.MaxRequestsPerSecond)
	assert.Equal(t, 30*time.Minute, cfg.Recommender.CacheTTL)
	assert.Equal(t, 168*time.Hour, cfg.Recommender.DedupWindow)
	assert.Equal(t, 5*time.Minute, cfg.Recommender.RunTimeout)
	assert.Equal(t, "newConnectionString", cfg.DB.ConnectionString)
	assert.Equal(t, "overridePassword", cfg.Notify.SmtpPassword)
}

func Test_RecommenderConfig_Validation(t *testing.T) {

	valid := RecommenderConfig{
		CacheTTL:       time.Hour,
		CacheRetention: 24 * time.Hour,
		DedupWindow:    720 * time.Hour,
		RunTimeout:     10 * time.Minute,
		RetentionDays:  90,
	}
	assert.NoError(t, valid.validate())

	shortRetention := valid
	shortRetention.CacheRetention = time.Minute
	assert.Error(t, shortRetention.validate())

	noTimeout := valid
	noTimeout.RunTimeout = 0
	assert.Error(t, noTimeout.validate())
}

func Test_DBConfig_Validation(t *testing.T) {

	assert.NoError(t, DBConfig{ConnectionString: "./data/reposcout.db"}.validate())
	assert.NoError(t, DBConfig{ConnectionString: ":memory:"}.validate())
	assert.Error(t, DBConfig{}.validate())
	assert.Error(t, DBConfig{ConnectionString: "./data/"}.validate())
}

func Test_GithubConfig_Validation(t *testing.T) {

	valid := GithubConfig{Token: "token", MaxSearchPages: 3, PerPage: 50}
	assert.NoError(t, valid.validate())

	missingToken := valid
	missingToken.Token = ""
	assert.Error(t, missingToken.validate())

	badPerPage := valid
	badPerPage.PerPage = 200
	assert.Error(t, badPerPage.validate())
}
