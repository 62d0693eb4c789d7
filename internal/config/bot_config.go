package config

import "github.com/spf13/viper"

// BotConfig enables the Telegram bot when Token is set.
type BotConfig struct {
	Token string `mapstructure:"token"`
}

func (config BotConfig) Enabled() bool {
	return config.Token != ""
}

func (config BotConfig) validate() error {
	return nil
}

func (config BotConfig) bindEnvironmentVariables(v *viper.Viper) error {
	return v.BindEnv("bot.token", "TG_TOKEN")
}
