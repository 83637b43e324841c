package config

import (
	"os"

	"github.com/spf13/viper"
)

// Config holds the application configuration.
type Config struct {
	Server  ServerConfig
	Line    LineConfig
	LLM     LLMConfig
	History HistoryConfig
	Log     LogConfig
}

// ServerConfig holds the HTTP server configuration.
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port string `mapstructure:"port"`
}

// LineConfig holds the LINE Messaging API credentials.
type LineConfig struct {
	ChannelSecret      string `mapstructure:"channel_secret"`
	ChannelAccessToken string `mapstructure:"channel_access_token"`
	APIBase            string `mapstructure:"api_base"`
}

// LLMConfig holds the completion provider configuration. SystemPrompts are
// prepended to every completion request and are never persisted as history.
type LLMConfig struct {
	BaseURL       string   `mapstructure:"base_url"`
	APIKey        string   `mapstructure:"api_key"`
	Model         string   `mapstructure:"model"`
	SystemPrompts []string `mapstructure:"system_prompts"`
}

// HistoryConfig holds the message store configuration. WindowSize is the
// number of prior messages retained per user; everything older is pruned.
type HistoryConfig struct {
	Backend    string `mapstructure:"backend"`
	Path       string `mapstructure:"path"`
	WindowSize int    `mapstructure:"window_size"`
}

// LogConfig holds the logging configuration.
type LogConfig struct {
	Level string `mapstructure:"level"`
}

// Load loads the configuration from config.yaml, or from the file named by
// the CONFIG_PATH environment variable when set.
func Load() (*Config, error) {
	if path := os.Getenv("CONFIG_PATH"); path != "" {
		viper.SetConfigFile(path)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
	}

	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", "8080")
	viper.SetDefault("line.api_base", "https://api.line.me")
	viper.SetDefault("llm.model", "gpt-3.5-turbo")
	viper.SetDefault("history.backend", "sqlite")
	viper.SetDefault("history.path", "history.db")
	viper.SetDefault("history.window_size", 3)
	viper.SetDefault("log.level", "info")

	if err := viper.ReadInConfig(); err != nil {
		return nil, err
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}
