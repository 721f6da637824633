// Copyright (C) 2025 Prime Edutech (dev@primeedutech.com)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Command counsellor starts the Prime Edutech counsellor HTTP server.
//
// This is the main entry point for the containerized counsellor service.
// It reads configuration from an optional counsellor.yaml and COUNSELLOR_*
// environment variables, then starts the server.
//
// # Environment Variables
//
//   - COUNSELLOR_PORT: HTTP server port (default: 8080)
//   - COUNSELLOR_DATA_DIR: BadgerDB data directory (default: ./data)
//   - COUNSELLOR_OPENAI_API_KEY: OpenAI API key (required)
//   - COUNSELLOR_WEAVIATE_URL: Weaviate vector DB URL (optional)
//   - COUNSELLOR_ADMIN_TOKEN: Bearer token for /v1/admin (optional)
//   - COUNSELLOR_OTLP_ENDPOINT: OpenTelemetry collector (optional)
//   - COUNSELLOR_LOG_LEVEL: Minimum log level (default: info)
//   - COUNSELLOR_LOG_DIR: Daily log file directory (optional)
//
// # Usage
//
//	# Build
//	go build -o counsellor ./cmd/counsellor
//
//	# Run
//	COUNSELLOR_OPENAI_API_KEY=sk-... ./counsellor
package main

import (
	"log"
	"log/slog"

	"github.com/primeedutech/counsellor/pkg/logging"
	"github.com/primeedutech/counsellor/services/counsellor"
	"github.com/primeedutech/counsellor/services/counsellor/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Setup structured logging
	logger, closeLogs := logging.New(logging.Config{
		Level:   cfg.LogLevel,
		Service: "counsellor",
		LogDir:  cfg.LogDir,
	})
	defer closeLogs()
	slog.SetDefault(logger)

	slog.Info("Starting counsellor",
		"port", cfg.Port,
		"data_dir", cfg.DataDir,
		"weaviate_url", cfg.WeaviateURL,
		"chat_model", cfg.ChatModel,
	)

	svc, err := counsellor.New(cfg)
	if err != nil {
		log.Fatalf("Failed to create counsellor service: %v", err)
	}

	// Run the server (blocks until shutdown)
	if err := svc.Run(); err != nil {
		log.Fatalf("Counsellor error: %v", err)
	}
}
