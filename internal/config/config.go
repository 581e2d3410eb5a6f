package config

import (
	"errors"
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

type Config struct {
	Logger      LoggerConfig      `mapstructure:"logger"`
	Github      GithubConfig      `mapstructure:"github"`
	Recommender RecommenderConfig `mapstructure:"recommender"`
	Notify      NotifyConfig      `mapstructure:"notify"`
	DB          DBConfig          `mapstructure:"db"`
}

var configFile = "./configs/config.yaml"

func Get() *Config {

	if value, _ := os.LookupEnv("CONFIG_PATH"); value != "" {
		configFile = value
	}

	config, err := loadConfig(configFile)
	if err != nil {
		log.Fatal(err)
	}

	return config
}

func loadConfig(file string) (*Config, error) {

	viper.SetConfigFile(file)
	viper.AutomaticEnv()

	err := bindEnvironmentVariables()
	if err != nil {
		return nil, err
	}

	if err := viper.ReadInConfig(); err != nil {
		log.Fatalf("Error reading config file, %s", err)
	}

	config := Config{}
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	err = config.validate()
	if err != nil {
		return nil, err
	}

	return &config, nil
}

func bindEnvironmentVariables() error {
	var errs []error

	github, recommender, notify := GithubConfig{}, RecommenderConfig{}, NotifyConfig{}
	db, logger := DBConfig{}, LoggerConfig{}

	if err := github.bindEnvironmentVariables(); err != nil {
		errs = append(errs, fmt.Errorf("GithubConfig: %w", err))
	}

	if err := recommender.bindEnvironmentVariables(); err != nil {
		errs = append(errs, fmt.Errorf("RecommenderConfig: %w", err))
	}

	if err := notify.bindEnvironmentVariables(); err != nil {
		errs = append(errs, fmt.Errorf("NotifyConfig: %w", err))
	}

	if err := db.bindEnvironmentVariables(); err != nil {
		errs = append(errs, fmt.Errorf("DBConfig: %w", err))
	}

	if err := logger.bindEnvironmentVariables(); err != nil {
		errs = append(errs, fmt.Errorf("LoggerConfig: %w", err))
	}

	if len(errs) > 0 {
		return createMultiError(errs)
	}

	return nil
}

func (config Config) validate() error {
	var errs []error

	if err := config.Github.validate(); err != nil {
		errs = append(errs, fmt.Errorf("GithubConfig: %w", err))
	}

	if err := config.Recommender.validate(); err != nil {
		errs = append(errs, fmt.Errorf("RecommenderConfig: %w", err))
	}

	if err := config.DB.validate(); err != nil {
		errs = append(errs, fmt.Errorf("DBConfig: %w", err))
	}

	if err := config.Logger.validate(); err != nil {
		errs = append(errs, fmt.Errorf("LoggerConfig: %w", err))
	}

	if len(errs) > 0 {
		return createMultiError(errs)
	}

	return nil
}

func createMultiError(errs []error) error {
	return fmt.Errorf("multiple errors occurred: %w", errors.Join(errs...))
}
