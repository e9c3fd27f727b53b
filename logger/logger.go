package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"MediChain/config"

	"gopkg.in/natefinch/lumberjack.v2"
)

// New builds the application logger. Development uses the text handler,
// everything else JSON unless LOG_FORMAT says otherwise.
func New(cfg *config.AppConfig) *slog.Logger {
	writers := []io.Writer{os.Stdout}
	if cfg.LogFile != "" {
		writers = append(writers, &lumberjack.Logger{
			Filename:   cfg.LogFile,
			MaxSize:    50,
			MaxBackups: 5,
			MaxAge:     28,
			Compress:   true,
		})
	}
	return newWithWriter(cfg, io.MultiWriter(writers...))
}

func newWithWriter(cfg *config.AppConfig, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level:     parseLevel(cfg.LogLevel),
		AddSource: cfg.IsDevelopment(),
	}

	var h slog.Handler
	switch {
	case strings.EqualFold(cfg.LogFormat, "json"):
		h = slog.NewJSONHandler(w, opts)
	case strings.EqualFold(cfg.LogFormat, "text"), cfg.IsDevelopment():
		h = slog.NewTextHandler(w, opts)
	default:
		h = slog.NewJSONHandler(w, opts)
	}

	return slog.New(h).With(
		slog.String("service", "medichain"),
		slog.String("env", cfg.Env),
	)
}

// Discard returns a logger that drops every record. Used by tests.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
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
