package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// DBConfig names the sqlite database file. ":memory:" is accepted for
// ephemeral runs; anything else must look like a file path, since a directory
// makes the sqlite driver fail at first write rather than at startup.
type DBConfig struct {
	ConnectionString string `mapstructure:"connection_string"`
}

func (config DBConfig) validate() error {

	if config.ConnectionString == "" {
		return fmt.Errorf("missing variable: db connection string")
	}

	if config.ConnectionString == ":memory:" {
		return nil
	}

	if strings.HasSuffix(config.ConnectionString, "/") {
		return fmt.Errorf("db connection string must name a file, got directory %q", config.ConnectionString)
	}

	return nil
}

func (config DBConfig) bindEnvironmentVariables() error {
	return viper.BindEnv("db.connection_string", "DB_CONNECTION_STRING")
}
