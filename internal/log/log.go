// Package log provides the global logger for crowdcontrol. It writes
// warnings and errors to stderr (everything when verbose) and keeps a
// full JSON debug log on disk with daily rotation.
package log

import (
	"context"
	"io"
	"log/slog"
	"os"
)

var logger *slog.Logger
var debugLog *debugFile

// Options configures the logger.
type Options struct {
	// Verbose enables debug/info output to stderr
	Verbose bool
	// JSONFormat uses JSON output format for stderr
	JSONFormat bool
	// DebugDir is the directory for debug log files. If empty, file logging is disabled.
	DebugDir string
	// RetentionDays is how many days to keep log files (0 = no cleanup)
	RetentionDays int
	// Stderr is the writer for stderr output (defaults to os.Stderr)
	Stderr io.Writer
}

// Init initializes the global logger with the given options.
func Init(opts Options) error {
	stderr := opts.Stderr
	if stderr == nil {
		stderr = os.Stderr
	}

	var handlers []slog.Handler

	stderrLevel := slog.LevelWarn
	if opts.Verbose {
		stderrLevel = slog.LevelDebug
	}

	stderrOpts := &slog.HandlerOptions{
		Level: stderrLevel,
	}

	if opts.JSONFormat {
		handlers = append(handlers, slog.NewJSONHandler(stderr, stderrOpts))
	} else {
		handlers = append(handlers, slog.NewTextHandler(stderr, stderrOpts))
	}

	// File handler: always all levels, always JSON
	if opts.DebugDir != "" {
		if opts.RetentionDays > 0 {
			pruneOldLogs(opts.DebugDir, opts.RetentionDays)
		}

		df, err := openDebugFile(opts.DebugDir)
		if err != nil {
			return err
		}
		debugLog = df

		fileOpts := &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}
		handlers = append(handlers, slog.NewJSONHandler(debugLog, fileOpts))
	}

	logger = slog.New(&multiHandler{handlers: handlers})
	slog.SetDefault(logger)
	return nil
}

// Close closes the debug log file if one was opened.
func Close() {
	if debugLog != nil {
		debugLog.Close()
		debugLog = nil
	}
}

// multiHandler fans out log records to multiple handlers.
type multiHandler struct {
	handlers []slog.Handler
}

func (m *multiHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range m.handlers {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (m *multiHandler) Handle(ctx context.Context, r slog.Record) error {
	for _, h := range m.handlers {
		if h.Enabled(ctx, r.Level) {
			if err := h.Handle(ctx, r); err != nil {
				return err
			}
		}
	}
	return nil
}

func (m *multiHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	newHandlers := make([]slog.Handler, len(m.handlers))
	for i, h := range m.handlers {
		newHandlers[i] = h.WithAttrs(attrs)
	}
	return &multiHandler{handlers: newHandlers}
}

func (m *multiHandler) WithGroup(name string) slog.Handler {
	newHandlers := make([]slog.Handler, len(m.handlers))
	for i, h := range m.handlers {
		newHandlers[i] = h.WithGroup(name)
	}
	return &multiHandler{handlers: newHandlers}
}

// Debug logs a debug message.
func Debug(msg string, args ...any) {
	logger.Debug(msg, args...)
}

// Info logs an info message.
func Info(msg string, args ...any) {
	logger.Info(msg, args...)
}

// Warn logs a warning message.
func Warn(msg string, args ...any) {
	logger.Warn(msg, args...)
}

// Error logs an error message.
func Error(msg string, args ...any) {
	logger.Error(msg, args...)
}

// With returns a logger with additional context.
func With(args ...any) *slog.Logger {
	return logger.With(args...)
}

// SetOutput sets the output writer (for testing).
func SetOutput(w io.Writer) {
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug})
	logger = slog.New(handler)
	slog.SetDefault(logger)
}

func init() {
	// Default logger until Init is called
	logger = slog.Default()
}
