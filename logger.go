package prefixindex

import (
	"context"
	"io"
	"log/slog"
	"os"
	"time"
)

// Logger wraps slog.Logger with index-specific context.
// This provides structured logging with consistent field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses default text handler to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
// level sets the minimum log level (e.g., slog.LevelDebug, slog.LevelInfo).
func NewJSONLogger(level slog.Level) *Logger {
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NoopLogger creates a Logger that discards all log output.
// Use this to disable logging entirely.
func NoopLogger() *Logger {
	return &Logger{
		Logger: slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{
			Level: slog.Level(1000), // Unreachable level
		})),
	}
}

// WithIndex adds the index name to the logger.
func (l *Logger) WithIndex(name string) *Logger {
	return &Logger{
		Logger: l.Logger.With("index", name),
	}
}

// LogIndex logs an index operation.
func (l *Logger) LogIndex(ctx context.Context, rowKey string, terms int, elapsed time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "index failed",
			"row_key", rowKey,
			"terms", terms,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "index completed",
			"row_key", rowKey,
			"terms", terms,
			"elapsed", elapsed,
		)
	}
}

// LogDelete logs a delete operation.
func (l *Logger) LogDelete(ctx context.Context, rowKey string, terms int, elapsed time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "delete failed",
			"row_key", rowKey,
			"terms", terms,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "delete completed",
			"row_key", rowKey,
			"terms", terms,
			"elapsed", elapsed,
		)
	}
}

// LogReindex logs a reindex operation.
func (l *Logger) LogReindex(ctx context.Context, rowKey string, elapsed time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "reindex failed",
			"row_key", rowKey,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "reindex completed",
			"row_key", rowKey,
			"elapsed", elapsed,
		)
	}
}

// LogFind logs a find operation.
func (l *Logger) LogFind(ctx context.Context, term string, pageSize, results int, elapsed time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "find failed",
			"term", term,
			"page_size", pageSize,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "find completed",
			"term", term,
			"page_size", pageSize,
			"results", results,
			"elapsed", elapsed,
		)
	}
}

// LogSkipped logs a store outcome that was deliberately ignored, such as a
// conflict on Index or a missing entry on Delete.
func (l *Logger) LogSkipped(ctx context.Context, op, term, rowKey string, reason error) {
	l.DebugContext(ctx, op+" skipped",
		"term", term,
		"row_key", rowKey,
		"reason", reason,
	)
}
