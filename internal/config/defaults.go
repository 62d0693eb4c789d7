package config

import (
	"time"

	"github.com/spf13/viper"
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("logger.log_level", string(LevelInfo))
	v.SetDefault("logger.app_name", "job-finder")
	v.SetDefault("logger.output_file", "./logs/errors.log")

	v.SetDefault("db.connection_string", "favorites.db")
	v.SetDefault("db.busy_timeout", 5*time.Second)

	v.SetDefault("api.base_url", "https://jsearch.p.rapidapi.com")
	v.SetDefault("api.host", "jsearch.p.rapidapi.com")
	v.SetDefault("api.timeout", 15*time.Second)
	v.SetDefault("api.max_requests_per_second", 2)
	v.SetDefault("api.max_attempts", 1)
	v.SetDefault("api.retry_delay", time.Second)
	v.SetDefault("api.locale_suffix", "USA")

	v.SetDefault("cache.freshness", 5*time.Minute)
	v.SetDefault("cache.cleanup_interval", 10*time.Minute)

	v.SetDefault("server.address", ":8080")

	v.SetDefault("popular.schedule", "0 */6 * * *")
}
