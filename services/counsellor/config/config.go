// Copyright (C) 2025 Prime Edutech (dev@primeedutech.com)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package config loads counsellor service configuration from an optional
// counsellor.yaml file and COUNSELLOR_* environment variables, with the
// environment taking precedence.
package config

import (
	"errors"
	"fmt"

	"github.com/spf13/viper"
)

// Config is the full counsellor service configuration.
type Config struct {
	// Port the HTTP server listens on.
	Port string `mapstructure:"port"`

	// DataDir is the BadgerDB directory for leads, conversations and
	// knowledge source records.
	DataDir string `mapstructure:"data_dir"`

	// AdminToken guards /v1/admin. Empty disables the check (local dev).
	AdminToken string `mapstructure:"admin_token"`

	// WeaviateURL is the vector index endpoint, e.g. "http://weaviate:8080".
	// Empty runs the service without retrieval (chat answers unassisted).
	WeaviateURL string `mapstructure:"weaviate_url"`

	// OpenAIAPIKey authenticates completion and embedding calls. Required.
	OpenAIAPIKey string `mapstructure:"openai_api_key"`

	// ChatModel is the completion model.
	ChatModel string `mapstructure:"chat_model"`

	// EmbeddingModel is the embedding model.
	EmbeddingModel string `mapstructure:"embedding_model"`

	// EmbeddingDimensions is the requested vector width.
	EmbeddingDimensions int `mapstructure:"embedding_dimensions"`

	// OTLPEndpoint is the OpenTelemetry collector gRPC endpoint.
	// Empty disables tracing export.
	OTLPEndpoint string `mapstructure:"otlp_endpoint"`

	// LogLevel is the minimum log level: debug, info, warn or error.
	LogLevel string `mapstructure:"log_level"`

	// LogDir, when set, additionally writes logs to a daily file there.
	LogDir string `mapstructure:"log_dir"`
}

// Load reads configuration.
//
// # Description
//
//	Defaults, then an optional counsellor.yaml in the working directory,
//	then COUNSELLOR_* environment variables (COUNSELLOR_OPENAI_API_KEY,
//	COUNSELLOR_WEAVIATE_URL, ...), highest last.
//
// # Outputs
//
//   - *Config: The resolved configuration.
//   - error: Non-nil when the config file is malformed or a required
//     value is missing.
func Load() (*Config, error) {
	v := viper.New()

	v.SetDefault("port", "8080")
	v.SetDefault("data_dir", "./data")
	v.SetDefault("admin_token", "")
	v.SetDefault("weaviate_url", "")
	v.SetDefault("openai_api_key", "")
	v.SetDefault("chat_model", "gpt-4o-mini")
	v.SetDefault("embedding_model", "text-embedding-3-small")
	v.SetDefault("embedding_dimensions", 512)
	v.SetDefault("otlp_endpoint", "")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_dir", "")

	v.SetConfigName("counsellor")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	v.SetEnvPrefix("COUNSELLOR")
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.OpenAIAPIKey == "" {
		return nil, errors.New("COUNSELLOR_OPENAI_API_KEY is required")
	}
	return &cfg, nil
}
