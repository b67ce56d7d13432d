package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/jusunglee/penzgtu-go/pkg/penzgtu"
)

// EnvPrefix is prepended to every environment variable Load reads
const EnvPrefix = "TIMETABLE"

// Load configuration from defaults, an optional YAML file and environment
// variables, in increasing order of precedence. An empty path skips the file;
// a non-empty path must name a readable file.
func Load(path string) (*Config, error) {
	v := viper.New()

	client := penzgtu.DefaultConfig()
	v.SetDefault("server.port", 3000)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("server.log_format", "json")
	v.SetDefault("upstream.url", client.URL)
	v.SetDefault("upstream.app_key", client.AppKey)
	v.SetDefault("upstream.app_code", client.AppCode)
	v.SetDefault("upstream.timeout", client.Timeout)

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}
