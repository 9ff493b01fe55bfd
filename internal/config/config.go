// Package config loads server configuration from defaults, an optional YAML
// file, and environment variables (environment wins).
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Storage StorageConfig `mapstructure:"storage"`
	OpenAI  OpenAIConfig  `mapstructure:"openai"`
	Session SessionConfig `mapstructure:"session"`
	Log     LogConfig     `mapstructure:"log"`
}

type ServerConfig struct {
	Port int `mapstructure:"port"`
}

type StorageConfig struct {
	DataDir string `mapstructure:"data_dir"`
}

type OpenAIConfig struct {
	APIKey      string  `mapstructure:"api_key"`
	Model       string  `mapstructure:"model"`
	MaxTokens   int     `mapstructure:"max_tokens"`
	Temperature float64 `mapstructure:"temperature"`
}

type SessionConfig struct {
	MaxSessions int           `mapstructure:"max_sessions"`
	TTL         time.Duration `mapstructure:"ttl"`
	StaleAfter  time.Duration `mapstructure:"stale_after"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

// Load reads configuration. When path is empty, only defaults and
// environment variables apply; otherwise the file at path is required.
// Recognized environment variables: OPENAI_API_KEY, STOKBOT_PORT,
// STOKBOT_DATA_DIR, STOKBOT_LOG_LEVEL.
func Load(path string) (Config, error) {
	v := viper.New()

	v.SetDefault("server.port", 3080)
	v.SetDefault("storage.data_dir", "data")
	v.SetDefault("openai.model", "gpt-4o")
	v.SetDefault("openai.max_tokens", 600)
	v.SetDefault("openai.temperature", 0.7)
	v.SetDefault("session.max_sessions", 1000)
	v.SetDefault("session.ttl", 30*time.Minute)
	v.SetDefault("session.stale_after", 5*time.Minute)
	v.SetDefault("log.level", "info")

	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}

	if key := v.GetString("OPENAI_API_KEY"); key != "" {
		cfg.OpenAI.APIKey = key
	}
	if port := v.GetInt("STOKBOT_PORT"); port != 0 {
		cfg.Server.Port = port
	}
	if dir := v.GetString("STOKBOT_DATA_DIR"); dir != "" {
		cfg.Storage.DataDir = dir
	}
	if level := v.GetString("STOKBOT_LOG_LEVEL"); level != "" {
		cfg.Log.Level = level
	}

	if cfg.OpenAI.APIKey == "" {
		return Config{}, fmt.Errorf("missing required config: OpenAI API key (set OPENAI_API_KEY)")
	}

	return cfg, nil
}
