package config

import (
	"time"

	"github.com/jusunglee/penzgtu-go/pkg/penzgtu"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig   `mapstructure:"server" validate:"required"`
	Upstream UpstreamConfig `mapstructure:"upstream" validate:"required"`
}

// ServerConfig contains the HTTP listener and logging settings.
type ServerConfig struct {
	Port      int    `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel  string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
	LogFormat string `mapstructure:"log_format" validate:"required,oneof=json text"`
}

// UpstreamConfig identifies the PenzGTU API endpoint and this integration's credentials.
type UpstreamConfig struct {
	URL     string        `mapstructure:"url" validate:"required,url"`
	AppKey  string        `mapstructure:"app_key" validate:"required"`
	AppCode string        `mapstructure:"app_code" validate:"required"`
	Timeout time.Duration `mapstructure:"timeout" validate:"gte=0"`
}

// Client returns the client configuration for the upstream settings.
func (u UpstreamConfig) Client() penzgtu.Config {
	return penzgtu.Config{
		URL:     u.URL,
		AppKey:  u.AppKey,
		AppCode: u.AppCode,
		Timeout: u.Timeout,
	}
}
