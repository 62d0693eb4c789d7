package config

import (
	"fmt"

	"github.com/spf13/viper"
)

type ServerConfig struct {
	Address string `mapstructure:"address"`
}

func (config ServerConfig) validate() error {
	if config.Address == "" {
		return fmt.Errorf("missing variable: address")
	}
	return nil
}

func (config ServerConfig) bindEnvironmentVariables(v *viper.Viper) error {
	return v.BindEnv("server.address", "SERVER_ADDRESS")
}
