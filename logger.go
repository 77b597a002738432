package ux

import (
	"context"
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with dictionary-specific context, giving
// consistent field names across build and query logging.
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
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.Level(1000), // Unreachable level
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// WithKeyCount adds a key-count field to the logger.
func (l *Logger) WithKeyCount(n int) *Logger {
	return &Logger{Logger: l.Logger.With("key_count", n)}
}

// WithNodeCount adds a trie node-count field to the logger.
func (l *Logger) WithNodeCount(n int) *Logger {
	return &Logger{Logger: l.Logger.With("node_count", n)}
}

// WithQuery adds a query-string field to the logger, truncated so long
// predictive-search prefixes don't blow up log lines.
func (l *Logger) WithQuery(q []byte) *Logger {
	s := string(q)
	if len(s) > 64 {
		s = s[:64] + "..."
	}
	return &Logger{Logger: l.Logger.With("query", s)}
}

// LogBuild logs a dictionary build operation.
func (l *Logger) LogBuild(ctx context.Context, keyCount, nodeCount int, dur float64, err error) {
	if l == nil {
		return
	}
	if err != nil {
		l.ErrorContext(ctx, "build failed",
			"key_count", keyCount,
			"error", err,
		)
		return
	}
	l.InfoContext(ctx, "build completed",
		"key_count", keyCount,
		"node_count", nodeCount,
		"duration_ms", dur,
	)
}

// LogDegrade logs a build-time degradation from a nested tail
// dictionary to a flat one, because a configured resource.Controller
// budget could not cover the nested build's estimated footprint.
func (l *Logger) LogDegrade(ctx context.Context, requestedBytes int64, err error) {
	if l == nil {
		return
	}
	l.WarnContext(ctx, "nested tail build degraded to flat",
		"requested_bytes", requestedBytes,
		"error", err,
	)
}

// LogQuery logs a single query-engine operation (prefixSearch, decode, ...).
func (l *Logger) LogQuery(ctx context.Context, op string, query []byte, hits int, err error) {
	if l == nil {
		return
	}
	if err != nil {
		l.ErrorContext(ctx, "query failed",
			"op", op,
			"query", string(query),
			"error", err,
		)
		return
	}
	l.DebugContext(ctx, "query completed",
		"op", op,
		"query", string(query),
		"hits", hits,
	)
}

// LogSave logs a Dictionary.Save operation. filename is empty when
// Save was given an io.Writer with no associated path.
func (l *Logger) LogSave(ctx context.Context, filename string, err error) {
	if l == nil {
		return
	}
	if err != nil {
		l.ErrorContext(ctx, "save failed",
			"filename", filename,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "save completed",
			"filename", filename,
		)
	}
}

// LogLoad logs a dictionary load, including a Registry's hot-reload of
// a rebuilt snapshot.
func (l *Logger) LogLoad(ctx context.Context, path string, keyCount int, err error) {
	if l == nil {
		return
	}
	if err != nil {
		l.ErrorContext(ctx, "load failed",
			"path", path,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "load completed",
			"path", path,
			"key_count", keyCount,
		)
	}
}
