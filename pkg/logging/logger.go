// Copyright (C) 2025 Veritas Law Tools (engineering@veritaslaw.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package logging provides structured logging for CiteGate components.
//
// The logger is built on the standard library slog package with a layered
// output model:
//
//   - Default: stderr output for CLI compatibility
//   - Optional: file logging with automatic directory creation
//   - Extension: LogExporter for forwarding to aggregation systems
//
// # Basic Usage
//
//	logger := logging.Default()
//	logger.Info("verification complete", "request_id", reqID, "citations", n)
//	logger.Error("search backend unreachable", "error", err)
//
// # File Logging
//
//	logger := logging.New(logging.Config{
//	    Level:   logging.LevelInfo,
//	    LogDir:  "~/.citegate/logs", // supports ~ expansion
//	    Service: "verifier",
//	})
//	defer logger.Close()
//
// File logs are named "{service}_{date}.log" and always JSON.
//
// # Security Considerations
//
// This package does NOT automatically redact sensitive data. Document text
// and prompts may contain privileged client material; log metadata (lengths,
// counts, request IDs) rather than content:
//
//	// BAD: logs privileged document text
//	logger.Info("gating", "text", doc)
//
//	// GOOD: log metadata only
//	logger.Info("gating", "text_bytes", len(doc))
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// =============================================================================
// Log Levels
// =============================================================================

// Level represents log severity, ordered Debug < Info < Warn < Error.
// Setting a minimum level filters out everything below it.
type Level int

const (
	// LevelDebug is for development troubleshooting.
	LevelDebug Level = iota

	// LevelInfo is for normal operational events.
	LevelInfo

	// LevelWarn is for recoverable issues: retries, degraded mode, a search
	// outage downgrading verification to offline-only.
	LevelWarn

	// LevelError is for operation failures where the system continues.
	LevelError
)

// String returns "DEBUG", "INFO", "WARN", "ERROR", or "UNKNOWN".
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

func (l Level) toSlogLevel() slog.Level {
	switch l {
	case LevelDebug:
		return slog.LevelDebug
	case LevelInfo:
		return slog.LevelInfo
	case LevelWarn:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// =============================================================================
// Configuration
// =============================================================================

// Config configures the Logger. A zero-value Config creates a logger that
// writes Info+ messages to stderr in text format.
type Config struct {
	// Level sets the minimum log level. Default: LevelInfo.
	Level Level

	// LogDir enables file logging to the given directory. When set, logs are
	// written to both stderr and a "{Service}_{YYYY-MM-DD}.log" JSON file.
	// The directory is created with 0750 permissions when missing.
	// Supports ~ expansion. Default: "" (file logging disabled).
	LogDir string

	// Service identifies the component and is attached to every entry as the
	// "service" attribute. Recommended values: "verifier", "cli".
	// Default: "" (no service attribute).
	Service string

	// JSON switches stderr output from human-readable text to JSON. File
	// logs are always JSON regardless. Default: false.
	JSON bool

	// Quiet disables stderr output, leaving only file and exporter
	// destinations. Default: false.
	Quiet bool

	// Exporter is an optional extension that receives every entry
	// asynchronously, for forwarding to log aggregation systems. Export
	// failures are silently ignored so they cannot disrupt logging.
	// Default: nil.
	Exporter LogExporter
}

// =============================================================================
// Exporter Extension Interface
// =============================================================================

// LogExporter forwards log entries to an external system (object storage,
// Loki, an OpenTelemetry collector).
//
// # Implementation Requirements
//
//  1. Export must not block; buffer internally and flush in batches.
//  2. Handle backpressure by dropping oldest entries rather than blocking.
//  3. Flush sends all buffered entries; it runs during graceful shutdown.
//  4. Close releases resources after Flush.
type LogExporter interface {
	// Export sends one entry. Called asynchronously per entry with a
	// short-timeout context; errors are logged but never propagated.
	Export(ctx context.Context, entry LogEntry) error

	// Flush blocks until all pending entries are delivered.
	Flush(ctx context.Context) error

	// Close releases resources held by the exporter.
	Close() error
}

// LogEntry is the structured form passed to LogExporter implementations.
type LogEntry struct {
	Timestamp time.Time
	Level     Level
	Message   string
	Service   string
	Attrs     map[string]any
}

// =============================================================================
// Logger
// =============================================================================

// Logger wraps slog.Logger with multi-destination output and an export hook.
//
// # Thread Safety
//
// Safe for concurrent use. Mutable state is protected by a mutex; the
// underlying slog.Logger is itself thread-safe.
//
// # Resource Management
//
// Call Close when done with a logger that has file logging or an exporter
// configured; it flushes the exporter and syncs the file.
type Logger struct {
	slog     *slog.Logger
	config   Config
	file     *os.File
	exporter LogExporter
	mu       sync.Mutex
}

// New creates a Logger with the given configuration. The returned Logger
// should be closed with Close to release resources.
func New(config Config) *Logger {
	var handlers []slog.Handler

	opts := &slog.HandlerOptions{
		Level: config.Level.toSlogLevel(),
	}

	if !config.Quiet {
		var stderrHandler slog.Handler
		if config.JSON {
			stderrHandler = slog.NewJSONHandler(os.Stderr, opts)
		} else {
			stderrHandler = slog.NewTextHandler(os.Stderr, opts)
		}
		handlers = append(handlers, stderrHandler)
	}

	logger := &Logger{
		config:   config,
		exporter: config.Exporter,
	}

	if config.LogDir != "" {
		logDir := expandPath(config.LogDir)
		if err := os.MkdirAll(logDir, 0750); err == nil {
			serviceName := config.Service
			if serviceName == "" {
				serviceName = "citegate"
			}
			filename := fmt.Sprintf("%s_%s.log", serviceName, time.Now().Format("2006-01-02"))
			logPath := filepath.Join(logDir, filename)

			file, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0640)
			if err == nil {
				logger.file = file
				// File logs are machine-processed, so always JSON.
				handlers = append(handlers, slog.NewJSONHandler(file, opts))
			}
		}
	}

	var handler slog.Handler
	switch len(handlers) {
	case 0:
		// Quiet mode with no file still needs somewhere to put errors.
		handler = slog.NewTextHandler(os.Stderr, opts)
	case 1:
		handler = handlers[0]
	default:
		handler = &multiHandler{handlers: handlers}
	}

	if config.Service != "" {
		handler = handler.WithAttrs([]slog.Attr{
			slog.String("service", config.Service),
		})
	}

	logger.slog = slog.New(handler)
	return logger
}

// Default returns a text-format stderr logger at Info level with the
// "citegate" service attribute.
func Default() *Logger {
	return New(Config{
		Level:   LevelInfo,
		Service: "citegate",
	})
}

// Debug logs a message at Debug level with key-value attributes.
func (l *Logger) Debug(msg string, args ...any) {
	l.log(LevelDebug, msg, args...)
}

// Info logs a message at Info level with key-value attributes.
func (l *Logger) Info(msg string, args ...any) {
	l.log(LevelInfo, msg, args...)
}

// Warn logs a message at Warn level with key-value attributes.
func (l *Logger) Warn(msg string, args ...any) {
	l.log(LevelWarn, msg, args...)
}

// Error logs a message at Error level with key-value attributes.
func (l *Logger) Error(msg string, args ...any) {
	l.log(LevelError, msg, args...)
}

// With returns a new Logger carrying additional attributes. The parent is
// not modified; the file handle and exporter are shared.
//
//	reqLogger := logger.With("request_id", reqID)
//	reqLogger.Info("gating document")
func (l *Logger) With(args ...any) *Logger {
	return &Logger{
		slog:     l.slog.With(args...),
		config:   l.config,
		file:     l.file,
		exporter: l.exporter,
	}
}

// Slog returns the underlying slog.Logger for features this wrapper does not
// expose, such as LogAttrs.
func (l *Logger) Slog() *slog.Logger {
	return l.slog
}

// Close flushes the exporter, closes it, syncs the log file and closes it.
// Returns the first error encountered.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	var errs []error

	if l.exporter != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := l.exporter.Flush(ctx); err != nil {
			errs = append(errs, fmt.Errorf("flush exporter: %w", err))
		}
		if err := l.exporter.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close exporter: %w", err))
		}
	}

	if l.file != nil {
		if err := l.file.Sync(); err != nil {
			errs = append(errs, fmt.Errorf("sync log file: %w", err))
		}
		if err := l.file.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close log file: %w", err))
		}
	}

	if len(errs) > 0 {
		return errs[0]
	}
	return nil
}

// log writes to slog and fans out to the exporter asynchronously.
func (l *Logger) log(level Level, msg string, args ...any) {
	switch level {
	case LevelDebug:
		l.slog.Debug(msg, args...)
	case LevelInfo:
		l.slog.Info(msg, args...)
	case LevelWarn:
		l.slog.Warn(msg, args...)
	case LevelError:
		l.slog.Error(msg, args...)
	}

	if l.exporter != nil && level >= l.config.Level {
		entry := LogEntry{
			Timestamp: time.Now(),
			Level:     level,
			Message:   msg,
			Service:   l.config.Service,
			Attrs:     argsToMap(args),
		}
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			_ = l.exporter.Export(ctx, entry)
		}()
	}
}

// =============================================================================
// Multi-Handler (Internal)
// =============================================================================

// multiHandler fans out log records to multiple slog handlers, enabling
// simultaneous stderr text and file JSON output.
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

// =============================================================================
// Helper Functions
// =============================================================================

// expandPath expands a leading ~ to the user's home directory.
func expandPath(path string) string {
	if len(path) > 0 && path[0] == '~' {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}

// argsToMap converts slog-style key-value args to a map for LogEntry.Attrs.
func argsToMap(args []any) map[string]any {
	result := make(map[string]any)
	for i := 0; i < len(args)-1; i += 2 {
		if key, ok := args[i].(string); ok {
			result[key] = args[i+1]
		}
	}
	return result
}

// =============================================================================
// Built-in Exporters
// =============================================================================

// NopExporter discards all entries. Useful when export is disabled.
type NopExporter struct{}

// Export discards the entry.
func (e *NopExporter) Export(ctx context.Context, entry LogEntry) error { return nil }

// Flush is a no-op.
func (e *NopExporter) Flush(ctx context.Context) error { return nil }

// Close is a no-op.
func (e *NopExporter) Close() error { return nil }

var _ LogExporter = (*NopExporter)(nil)

// BufferedExporter collects entries in memory, for tests that verify log
// output:
//
//	exporter := logging.NewBufferedExporter()
//	logger := logging.New(logging.Config{Exporter: exporter})
//	logger.Info("gated", "status", "accepted")
//	entries := exporter.Entries()
type BufferedExporter struct {
	mu      sync.Mutex
	entries []LogEntry
}

// NewBufferedExporter creates an empty BufferedExporter.
func NewBufferedExporter() *BufferedExporter {
	return &BufferedExporter{
		entries: make([]LogEntry, 0, 100),
	}
}

// Export appends the entry to the buffer.
func (e *BufferedExporter) Export(ctx context.Context, entry LogEntry) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.entries = append(e.entries, entry)
	return nil
}

// Flush is a no-op; entries are already in memory.
func (e *BufferedExporter) Flush(ctx context.Context) error {
	return nil
}

// Close is a no-op.
func (e *BufferedExporter) Close() error {
	return nil
}

// Entries returns a copy of all collected entries.
func (e *BufferedExporter) Entries() []LogEntry {
	e.mu.Lock()
	defer e.mu.Unlock()
	result := make([]LogEntry, len(e.entries))
	copy(result, e.entries)
	return result
}

// WriterExporter writes entries to an io.Writer, one line per entry.
type WriterExporter struct {
	w  io.Writer
	mu sync.Mutex
}

// NewWriterExporter creates a WriterExporter over w.
func NewWriterExporter(w io.Writer) *WriterExporter {
	return &WriterExporter{w: w}
}

// Export writes the entry to the writer.
func (e *WriterExporter) Export(ctx context.Context, entry LogEntry) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	_, err := fmt.Fprintf(e.w, "[%s] %s: %s %v\n",
		entry.Timestamp.Format(time.RFC3339),
		entry.Level,
		entry.Message,
		entry.Attrs,
	)
	return err
}

// Flush is a no-op; writes are immediate.
func (e *WriterExporter) Flush(ctx context.Context) error { return nil }

// Close is a no-op; the exporter does not own the writer.
func (e *WriterExporter) Close() error { return nil }
