// Package config handles client configuration loading and validation.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config is the root configuration structure for the client.
type Config struct {
	API     APIConfig     `mapstructure:"api"`
	Channel ChannelConfig `mapstructure:"channel"`
	Chat    ChatConfig    `mapstructure:"chat"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// APIConfig locates the REST collaborator.
type APIConfig struct {
	// BaseURL is the REST API root, e.g. https://chat.example.com/api/v1.
	BaseURL string `mapstructure:"base_url"`
}

// ChannelConfig locates the push channel.
type ChannelConfig struct {
	// URL is the websocket endpoint, e.g. wss://chat.example.com/comms.
	URL string `mapstructure:"url"`
}

// ChatConfig contains engine tunables.
type ChatConfig struct {
	// PageSize is the message-history page length.
	PageSize int `mapstructure:"page_size"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	// Level is the minimum log level (debug, info, warn, error).
	Level string `mapstructure:"level"`

	// Format is the output format (json, console).
	Format string `mapstructure:"format"`
}

// Default returns the built-in defaults.
func Default() *Config {
	return &Config{
		API:     APIConfig{BaseURL: "http://localhost:8000"},
		Channel: ChannelConfig{URL: "ws://localhost:8000/comms"},
		Chat:    ChatConfig{PageSize: 30},
		Logging: LoggingConfig{Level: "info", Format: "console"},
	}
}

// Load loads configuration with precedence: defaults < config file <
// environment variables (BABEL_ prefix, dots as underscores). The config
// file is optional unless explicitly specified.
func Load(configFile string) (*Config, error) {
	cfg := Default()

	v := viper.New()
	v.SetDefault("api.base_url", cfg.API.BaseURL)
	v.SetDefault("channel.url", cfg.Channel.URL)
	v.SetDefault("chat.page_size", cfg.Chat.PageSize)
	v.SetDefault("logging.level", cfg.Logging.Level)
	v.SetDefault("logging.format", cfg.Logging.Format)

	v.SetEnvPrefix("BABEL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("babel-client")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/babel-client")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// Validate checks the configuration for usable values.
func (c *Config) Validate() error {
	if c.API.BaseURL == "" {
		return errors.New("api.base_url must be set")
	}
	if c.Channel.URL == "" {
		return errors.New("channel.url must be set")
	}
	if c.Chat.PageSize <= 0 {
		return fmt.Errorf("chat.page_size must be positive, got %d", c.Chat.PageSize)
	}
	return nil
}
