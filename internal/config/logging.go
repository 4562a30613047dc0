package config

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func NewLogger(cfg LoggingConfig) zerolog.Logger {
	return newLogger(cfg, os.Stdout)
}

// NewStderrLogger is for commands whose stdout carries data (import,
// access-code, token, mcp).
func NewStderrLogger(cfg LoggingConfig) zerolog.Logger {
	return newLogger(cfg, os.Stderr)
}

func newLogger(cfg LoggingConfig, out io.Writer) zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339Nano

	level := zerolog.InfoLevel
	if parsed, err := zerolog.ParseLevel(strings.ToLower(cfg.Level)); err == nil && cfg.Level != "" {
		level = parsed
	}
	if strings.EqualFold(cfg.Format, "console") {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}

	logger := zerolog.New(out).Level(level).With().Timestamp().Logger()
	log.Logger = logger
	return logger
}

// SlogBridge adapts logger for libraries that only take *slog.Logger
// (River, rivermigrate). Records become native zerolog events tagged with
// component.
func SlogBridge(logger zerolog.Logger, component string) *slog.Logger {
	return slog.New(&zerologHandler{logger: logger.With().Str("component", component).Logger()})
}

type zerologHandler struct {
	logger zerolog.Logger
	group  string
}

func zerologLevel(l slog.Level) zerolog.Level {
	switch {
	case l >= slog.LevelError:
		return zerolog.ErrorLevel
	case l >= slog.LevelWarn:
		return zerolog.WarnLevel
	case l >= slog.LevelInfo:
		return zerolog.InfoLevel
	}
	return zerolog.DebugLevel
}

func (h *zerologHandler) Enabled(_ context.Context, l slog.Level) bool {
	return zerologLevel(l) >= h.logger.GetLevel()
}

func (h *zerologHandler) Handle(_ context.Context, rec slog.Record) error {
	event := h.logger.WithLevel(zerologLevel(rec.Level))
	rec.Attrs(func(a slog.Attr) bool {
		event = event.Interface(h.key(a.Key), a.Value.Resolve().Any())
		return true
	})
	event.Msg(rec.Message)
	return nil
}

func (h *zerologHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	ctx := h.logger.With()
	for _, a := range attrs {
		ctx = ctx.Interface(h.key(a.Key), a.Value.Resolve().Any())
	}
	return &zerologHandler{logger: ctx.Logger(), group: h.group}
}

func (h *zerologHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	return &zerologHandler{logger: h.logger, group: h.key(name)}
}

func (h *zerologHandler) key(k string) string {
	if h.group == "" {
		return k
	}
	return h.group + "." + k
}
