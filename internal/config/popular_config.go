package config

import "github.com/spf13/viper"

// PopularConfig lists searches refreshed in the background. Empty Queries disables the refresher.
type PopularConfig struct {
	Queries  []string `mapstructure:"queries"`
	Schedule string   `mapstructure:"schedule"`
}

func (config PopularConfig) validate() error {
	return nil
}

func (config PopularConfig) bindEnvironmentVariables(v *viper.Viper) error {
	return v.BindEnv("popular.schedule", "POPULAR_SCHEDULE")
}
