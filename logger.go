package homcubes

import (
	"context"
	"log/slog"
	"os"
	"time"
)

// Logger wraps slog.Logger with homcubes-specific context.
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
func NoopLogger() *Logger {
	return &Logger{
		Logger: slog.New(slog.DiscardHandler),
	}
}

// WithShape adds the grid shape to the logger.
func (l *Logger) WithShape(shape []int) *Logger {
	return &Logger{
		Logger: l.Logger.With("shape", shape),
	}
}

// WithDimension adds a homological dimension field to the logger.
func (l *Logger) WithDimension(dim int) *Logger {
	return &Logger{
		Logger: l.Logger.With("dimension", dim),
	}
}

// WithName adds an archive run name to the logger.
func (l *Logger) WithName(name string) *Logger {
	return &Logger{
		Logger: l.Logger.With("name", name),
	}
}

// LogCompute logs a finished computation.
func (l *Logger) LogCompute(ctx context.Context, vertices, pairs int, duration time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "compute failed",
			"vertices", vertices,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "compute completed",
			"vertices", vertices,
			"pairs", pairs,
			"duration", duration,
		)
	}
}

// LogStage logs one reduction stage.
func (l *Logger) LogStage(ctx context.Context, s StageStats) {
	l.DebugContext(ctx, "stage completed",
		"dimension", s.Dim,
		"columns", s.Columns,
		"pairs", s.Pairs,
		"essential", s.Essential,
		"survivors", s.Survivors,
		"merges", s.Merges,
		"cache_hits", s.CacheHits,
		"duration", s.Duration,
	)
}

// LogBatch logs a batch computation.
func (l *Logger) LogBatch(ctx context.Context, count, failed int) {
	if failed > 0 {
		l.WarnContext(ctx, "batch completed with failures",
			"total", count,
			"failed", failed,
			"success", count-failed,
		)
	} else {
		l.InfoContext(ctx, "batch completed",
			"count", count,
		)
	}
}

// LogArchive logs an archive operation.
func (l *Logger) LogArchive(ctx context.Context, op, name string, bytes int64, err error) {
	if err != nil {
		l.ErrorContext(ctx, "archive "+op+" failed",
			"name", name,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "archive "+op+" completed",
			"name", name,
			"bytes", bytes,
		)
	}
}
