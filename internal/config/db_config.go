package config

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type DBConfig struct {
	ConnectionString string        `mapstructure:"connection_string"`
	BusyTimeout      time.Duration `mapstructure:"busy_timeout"`
}

func (config DBConfig) validate() error {
	if config.ConnectionString == "" {
		return fmt.Errorf("missing variable: db connection string")
	}
	if config.BusyTimeout < 0 {
		return fmt.Errorf("busy_timeout can't be negative")
	}
	return nil
}

func (config DBConfig) bindEnvironmentVariables(v *viper.Viper) error {
	return bindAll(v, map[string]string{
		"db.connection_string": "DB_CONNECTION_STRING",
		"db.busy_timeout":      "DB_BUSY_TIMEOUT",
	})
}

// DSN appends the busy timeout pragma unless the connection string already sets one.
func (config DBConfig) DSN() string {
	if config.BusyTimeout == 0 || strings.Contains(config.ConnectionString, "busy_timeout") {
		return config.ConnectionString
	}

	separator := "?"
	if strings.Contains(config.ConnectionString, "?") {
		separator = "&"
	}
	pragma := "busy_timeout(" + strconv.FormatInt(config.BusyTimeout.Milliseconds(), 10) + ")"
	return config.ConnectionString + separator + "_pragma=" + url.QueryEscape(pragma)
}
