// Copyright 2026 The Handyman Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Load reads the configuration. path may be empty, in which case config.yaml
// is looked up in the working directory and ./configs and is optional.
// Environment variables override file values using the upper-cased key with
// dots replaced by underscores (DATABASE_DSN, LOG_LEVEL, ...).
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	v.SetConfigType("yaml")

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Names used by the hosting platform.
	if err := v.BindEnv("geocoding.api_key", "GEOCODING_API_KEY", "GOOGLE_MAPS_API_KEY"); err != nil {
		return nil, err
	}

	if err := v.BindEnv("database.dsn", "DATABASE_DSN", "DATABASE_URL"); err != nil {
		return nil, err
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", "localhost:8080")
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 60*time.Second)

	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.dsn", "")
	v.SetDefault("database.max_connections", 10)
	v.SetDefault("database.max_idle", 5)
	v.SetDefault("database.conn_max_lifetime", 5*time.Minute)

	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.ttl", 10*time.Minute)

	v.SetDefault("geocoding.api_key", "")
	v.SetDefault("geocoding.base_url", "https://maps.googleapis.com/maps/api/geocode/json")
	v.SetDefault("geocoding.timeout", 10*time.Second)
	v.SetDefault("geocoding.user_agent", "handyman/1.0")
	v.SetDefault("geocoding.trace", false)
	v.SetDefault("geocoding.key_display_name", "Handyman Geocoding Key")
	v.SetDefault("geocoding.project_id", "")

	v.SetDefault("assistant.base_url", "")
	v.SetDefault("assistant.chat.model", "gemini-2.0-flash")
	v.SetDefault("assistant.chat.temperature", 0.7)
	v.SetDefault("assistant.chat.max_output_tokens", 2048)
	v.SetDefault("assistant.structured.model", "gemini-2.0-flash")
	v.SetDefault("assistant.structured.temperature", 0.2)
	v.SetDefault("assistant.structured.max_output_tokens", 8192)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "auto")
}

// Validate checks the settings that have a closed set of values. Settings
// only some commands need, like the database DSN, are checked where used.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "postgres", "duckdb":
	default:
		return fmt.Errorf("unsupported database.driver %q", c.Database.Driver)
	}

	switch c.Log.Format {
	case "auto", "json", "console":
	default:
		return fmt.Errorf("unsupported log.format %q", c.Log.Format)
	}

	if c.Redis.Addr != "" && c.Redis.TTL <= 0 {
		return errors.New("redis.ttl must be positive")
	}

	for name, m := range map[string]ModelConfig{"chat": c.Assistant.Chat, "structured": c.Assistant.Structured} {
		if m.Temperature != nil && (*m.Temperature < 0 || *m.Temperature > 2) {
			return fmt.Errorf("assistant.%s.temperature must be between 0 and 2 (got %g)", name, *m.Temperature)
		}
	}

	return nil
}

// Validate checks that the database can be opened with these settings.
func (c DatabaseConfig) Validate() error {
	if c.Driver == "postgres" && c.DSN == "" {
		return errors.New("database.dsn is required for the postgres driver")
	}

	return nil
}
