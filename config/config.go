// Copyright 2026 The Handyman Authors
// SPDX-License-Identifier: Apache-2.0

// Package config loads the service configuration from an optional YAML file,
// a .env file and the environment.
package config

import "time"

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Geocoding GeocodingConfig `mapstructure:"geocoding"`
	Assistant AssistantConfig `mapstructure:"assistant"`
	Log       LogConfig       `mapstructure:"log"`
}

type ServerConfig struct {
	Addr         string        `mapstructure:"addr"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// DatabaseConfig selects the SQL driver. "postgres" talks to the hosted
// database; "duckdb" opens a local file (or memory when DSN is empty).
type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver"`
	DSN             string        `mapstructure:"dsn"`
	MaxConnections  int           `mapstructure:"max_connections"`
	MaxIdle         int           `mapstructure:"max_idle"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// RedisConfig enables the featured designs cache when Addr is set.
type RedisConfig struct {
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	TTL      time.Duration `mapstructure:"ttl"`
}

type GeocodingConfig struct {
	APIKey    string        `mapstructure:"api_key"`
	BaseURL   string        `mapstructure:"base_url"`
	Timeout   time.Duration `mapstructure:"timeout"`
	UserAgent string        `mapstructure:"user_agent"`

	// Trace dumps provider requests and responses to stderr, with the key redacted.
	Trace bool `mapstructure:"trace"`

	// Used to look the key up through Application Default Credentials when
	// APIKey is empty.
	KeyDisplayName string `mapstructure:"key_display_name"`
	ProjectID      string `mapstructure:"project_id"`
}

// AssistantConfig holds the generation settings of both model handles. The
// API key is deliberately absent: it is read from the environment the first
// time a handle is needed.
type AssistantConfig struct {
	BaseURL    string      `mapstructure:"base_url"`
	Chat       ModelConfig `mapstructure:"chat"`
	Structured ModelConfig `mapstructure:"structured"`
}

// ModelConfig overrides the defaults of a model handle. Temperature is a
// pointer because 0 is a meaningful setting.
type ModelConfig struct {
	Model           string   `mapstructure:"model"`
	Temperature     *float32 `mapstructure:"temperature"`
	MaxOutputTokens int32    `mapstructure:"max_output_tokens"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // auto, json, console
}
