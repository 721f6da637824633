// Copyright (C) 2025 Prime Edutech (dev@primeedutech.com)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package logging configures structured logging for counsellor components.
//
// The service logs JSON to stdout for container log collectors, with an
// optional daily log file. Built on the standard library slog package.
//
// # Usage
//
//	logger, closeFn := logging.New(logging.Config{
//	    Level:   "info",
//	    Service: "counsellor",
//	    LogDir:  "/var/log/counsellor",
//	})
//	defer closeFn()
//	slog.SetDefault(logger)
//
// # Security Considerations
//
// This package does NOT redact sensitive data. Callers must ensure lead
// PII, tokens and API keys are not logged.
package logging

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

// Config configures logging behavior. A zero-value Config logs Info and
// above as JSON to stdout.
type Config struct {
	// Level is the minimum level: "debug", "info", "warn" or "error".
	// Unknown values fall back to "info".
	Level string

	// Service is attached to every entry as the "service" attribute.
	Service string

	// LogDir, when set, additionally writes entries to a daily file
	// {Service}_{YYYY-MM-DD}.log in that directory. The directory is
	// created if missing. File setup failure is not fatal; logging
	// continues on stdout alone.
	LogDir string
}

// ParseLevel maps a level name to its slog level, defaulting to Info.
func ParseLevel(name string) slog.Level {
	switch name {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// New builds a logger from cfg.
//
// # Outputs
//
//   - *slog.Logger: The configured logger.
//   - func(): Closes the log file, if one was opened. Never nil.
func New(cfg Config) (*slog.Logger, func()) {
	opts := &slog.HandlerOptions{Level: ParseLevel(cfg.Level)}

	handlers := []slog.Handler{slog.NewJSONHandler(os.Stdout, opts)}
	closeFn := func() {}

	if cfg.LogDir != "" {
		if file, err := openLogFile(cfg.LogDir, cfg.Service); err != nil {
			slog.Warn("file logging disabled", "log_dir", cfg.LogDir, "error", err)
		} else {
			handlers = append(handlers, slog.NewJSONHandler(file, opts))
			closeFn = func() { _ = file.Close() }
		}
	}

	var handler slog.Handler
	if len(handlers) == 1 {
		handler = handlers[0]
	} else {
		handler = &teeHandler{handlers: handlers}
	}

	if cfg.Service != "" {
		handler = handler.WithAttrs([]slog.Attr{slog.String("service", cfg.Service)})
	}

	return slog.New(handler), closeFn
}

// openLogFile opens today's log file for appending, creating the
// directory as needed.
func openLogFile(dir, service string) (*os.File, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}
	if service == "" {
		service = "counsellor"
	}
	name := fmt.Sprintf("%s_%s.log", service, time.Now().Format("2006-01-02"))
	file, err := os.OpenFile(filepath.Join(dir, name), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o640)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	return file, nil
}
