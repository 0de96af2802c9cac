package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"shorts-studio/internal/config"
)

// Options describes logger construction parameters.
type Options struct {
	Level  string
	Format string
	// Path is a log file opened for appending. When empty, output goes to
	// Fallback, and to nowhere if Fallback is nil as well.
	Path     string
	Fallback io.Writer
}

// New constructs a slog logger. The returned closer releases the log file
// and is safe to call when no file was opened.
func New(opts Options) (*slog.Logger, io.Closer, error) {
	levelVar := new(slog.LevelVar)
	levelVar.Set(parseLevel(opts.Level))

	writer, closer, err := openWriter(opts.Path, opts.Fallback)
	if err != nil {
		return nil, nopCloser{}, err
	}

	format := strings.ToLower(strings.TrimSpace(opts.Format))
	var handler slog.Handler
	switch format {
	case "json":
		handler = slog.NewJSONHandler(writer, &slog.HandlerOptions{Level: levelVar, ReplaceAttr: replaceJSONAttr})
	case "", "console", "text":
		handler = slog.NewTextHandler(writer, &slog.HandlerOptions{Level: levelVar, ReplaceAttr: replaceConsoleAttr})
	default:
		_ = closer.Close()
		return nil, nopCloser{}, fmt.Errorf("log format: unsupported value %q", opts.Format)
	}
	return slog.New(handler), closer, nil
}

// NewFromConfig builds a logger from the [logging] section; fallback receives
// output when no file is configured.
func NewFromConfig(cfg *config.Config, fallback io.Writer) (*slog.Logger, io.Closer, error) {
	if cfg == nil {
		return New(Options{Level: "info", Format: "console", Fallback: fallback})
	}
	return New(Options{
		Level:    cfg.Logging.Level,
		Format:   cfg.Logging.Format,
		Path:     cfg.Logging.File,
		Fallback: fallback,
	})
}

// Discard returns a logger that drops everything.
func Discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
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

func openWriter(path string, fallback io.Writer) (io.Writer, io.Closer, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		if fallback == nil {
			return io.Discard, nopCloser{}, nil
		}
		return fallback, nopCloser{}, nil
	}
	if dir := filepath.Dir(trimmed); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, nil, fmt.Errorf("ensure log directory: %w", err)
		}
	}
	file, err := os.OpenFile(trimmed, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file %s: %w", trimmed, err)
	}
	return file, file, nil
}

func replaceJSONAttr(groups []string, attr slog.Attr) slog.Attr {
	switch attr.Key {
	case slog.TimeKey:
		attr.Key = "ts"
		if attr.Value.Kind() == slog.KindTime {
			attr.Value = slog.StringValue(attr.Value.Time().UTC().Format(time.RFC3339))
		}
	case slog.LevelKey:
		attr.Value = slog.StringValue(strings.ToLower(attr.Value.String()))
	}
	return attr
}

func replaceConsoleAttr(groups []string, attr slog.Attr) slog.Attr {
	if attr.Key == slog.TimeKey && attr.Value.Kind() == slog.KindTime && len(groups) == 0 {
		attr.Value = slog.StringValue(attr.Value.Time().Format("2006-01-02 15:04:05"))
	}
	return attr
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
