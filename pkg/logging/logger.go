// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package logging provides structured logging for budgetd.
//
// The logger is built on Go's standard library slog package. By default
// it writes to stderr (text for humans, JSON when configured); setting
// LogDir additionally writes JSON log files named {service}_{date}.log,
// which is what a daemon deployment scrapes.
package logging

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

// Config configures the logger. The zero value writes Info+ text to
// stderr only.
type Config struct {
	// Level is the minimum level: "debug", "info", "warn" or "error".
	// Unknown values fall back to info.
	Level string

	// Service is attached to every entry as the "service" attribute.
	Service string

	// JSON switches stderr output to JSON.
	JSON bool

	// LogDir enables file logging in the given directory. Files are
	// always JSON, named {service}_{YYYY-MM-DD}.log. The directory is
	// created if needed.
	LogDir string
}

// Logger wraps slog.Logger with optional file output.
type Logger struct {
	slog *slog.Logger
	file *os.File
}

// New creates a logger from the config. Call Close when done if LogDir
// is set.
func New(config Config) *Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(config.Level)}

	var stderrHandler slog.Handler
	if config.JSON {
		stderrHandler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		stderrHandler = slog.NewTextHandler(os.Stderr, opts)
	}

	logger := &Logger{}
	handler := stderrHandler
	if config.LogDir != "" {
		if file, err := openLogFile(config.LogDir, config.Service); err == nil {
			logger.file = file
			handler = &multiHandler{handlers: []slog.Handler{
				stderrHandler,
				slog.NewJSONHandler(file, opts),
			}}
		}
	}
	if config.Service != "" {
		handler = handler.WithAttrs([]slog.Attr{slog.String("service", config.Service)})
	}
	logger.slog = slog.New(handler)
	return logger
}

// Slog returns the underlying slog.Logger, suitable for
// slog.SetDefault.
func (l *Logger) Slog() *slog.Logger { return l.slog }

// Close syncs and closes the log file, if any.
func (l *Logger) Close() error {
	if l.file == nil {
		return nil
	}
	if err := l.file.Sync(); err != nil {
		return fmt.Errorf("sync log file: %w", err)
	}
	return l.file.Close()
}

func parseLevel(level string) slog.Level {
	switch level {
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

func openLogFile(dir, service string) (*os.File, error) {
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, err
	}
	if service == "" {
		service = "budgetd"
	}
	name := fmt.Sprintf("%s_%s.log", service, time.Now().Format("2006-01-02"))
	return os.OpenFile(filepath.Join(dir, name), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0640)
}

// multiHandler fans out records to stderr and the log file.
type multiHandler struct {
	handlers []slog.Handler
}

func (h *multiHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, handler := range h.handlers {
		if handler.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (h *multiHandler) Handle(ctx context.Context, r slog.Record) error {
	for _, handler := range h.handlers {
		if handler.Enabled(ctx, r.Level) {
			if err := handler.Handle(ctx, r); err != nil {
				return err
			}
		}
	}
	return nil
}

func (h *multiHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	handlers := make([]slog.Handler, len(h.handlers))
	for i, handler := range h.handlers {
		handlers[i] = handler.WithAttrs(attrs)
	}
	return &multiHandler{handlers: handlers}
}

func (h *multiHandler) WithGroup(name string) slog.Handler {
	handlers := make([]slog.Handler, len(h.handlers))
	for i, handler := range h.handlers {
		handlers[i] = handler.WithGroup(name)
	}
	return &multiHandler{handlers: handlers}
}
