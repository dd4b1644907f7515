package slogx

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Config shapes the logger handed back by New.
type Config struct {
	Service string
	Version string
	Env     string // e.g. "dev", "cli", "prod"
	Level   string // "debug", "info", "warn", "error"; anything else means info
	Format  string // "text" for humans, otherwise JSON

	// Writer receives log output. Defaults to os.Stdout; the CLI points
	// this at stderr so token output stays pipeable.
	Writer io.Writer
}

// New builds a slog.Logger carrying the service identity on every record and
// installs it as the process default, so code without a context still logs
// through it.
func New(cfg Config) *slog.Logger {
	w := cfg.Writer
	if w == nil {
		w = os.Stdout
	}

	opts := &slog.HandlerOptions{
		AddSource: cfg.Env == "dev",
		Level:     parseLevel(cfg.Level),
	}

	var handler slog.Handler
	if strings.EqualFold(cfg.Format, "text") {
		handler = slog.NewTextHandler(w, opts)
	} else {
		handler = slog.NewJSONHandler(w, opts)
	}

	logger := slog.New(handler).With(
		"service", cfg.Service,
		"version", cfg.Version,
		"env", cfg.Env,
	)

	slog.SetDefault(logger)
	return logger
}

func parseLevel(lvl string) slog.Level {
	switch strings.ToLower(lvl) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

type ctxKey struct{}

// WithContext stashes logger in ctx for FromContext to find further down the
// call chain.
func WithContext(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, logger)
}

// FromContext returns the logger stashed by WithContext, or the process
// default when the context carries none.
func FromContext(ctx context.Context) *slog.Logger {
	l, ok := ctx.Value(ctxKey{}).(*slog.Logger)
	if !ok {
		return slog.Default()
	}
	return l
}
