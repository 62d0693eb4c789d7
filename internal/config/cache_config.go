package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type CacheConfig struct {
	Freshness       time.Duration `mapstructure:"freshness"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
	RedisURL        string        `mapstructure:"redis_url"`
}

func (config CacheConfig) validate() error {
	if config.Freshness <= 0 {
		return fmt.Errorf("freshness must be positive")
	}
	return nil
}

func (config CacheConfig) bindEnvironmentVariables(v *viper.Viper) error {
	return bindAll(v, map[string]string{
		"cache.redis_url": "REDIS_URL",
		"cache.freshness": "CACHE_FRESHNESS",
	})
}
