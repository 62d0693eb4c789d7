package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type APIConfig struct {
	BaseURL              string        `mapstructure:"base_url"`
	Key                  string        `mapstructure:"key"`
	Host                 string        `mapstructure:"host"`
	Timeout              time.Duration `mapstructure:"timeout"`
	MaxRequestsPerSecond float32       `mapstructure:"max_requests_per_second"`
	MaxAttempts          int           `mapstructure:"max_attempts"`
	RetryDelay           time.Duration `mapstructure:"retry_delay"`
	LocaleSuffix         string        `mapstructure:"locale_suffix"`
}

func (config APIConfig) validate() error {

	var missingFields []string

	if config.BaseURL == "" {
		missingFields = append(missingFields, "base_url")
	}

	if config.Key == "" {
		missingFields = append(missingFields, "key")
	}

	if config.Host == "" {
		missingFields = append(missingFields, "host")
	}

	if len(missingFields) > 0 {
		return fmt.Errorf("missing required variables: %s", strings.Join(missingFields, ", "))
	}

	if config.MaxRequestsPerSecond <= 0 {
		return fmt.Errorf("max_requests_per_second must be positive")
	}

	if config.MaxAttempts < 1 {
		return fmt.Errorf("max_attempts must be at least 1")
	}

	return nil
}

func (config APIConfig) bindEnvironmentVariables(v *viper.Viper) error {
	return bindAll(v, map[string]string{
		"api.key":                     "JSEARCH_API_KEY",
		"api.host":                    "JSEARCH_API_HOST",
		"api.base_url":                "JSEARCH_BASE_URL",
		"api.max_requests_per_second": "JSEARCH_MAX_REQUESTS_PER_SECOND",
		"api.max_attempts":            "JSEARCH_MAX_ATTEMPTS",
	})
}
