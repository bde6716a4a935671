// Package logr builds the logger used throughout spellbook: a logr.Logger
// backed by a log/slog handler.
package logr

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/go-logr/logr"
	"github.com/spf13/pflag"
)

const (
	TextFormat Format = "text"
	JSONFormat Format = "json"
)

type (
	Config struct {
		Verbosity int    `toml:"verbosity"`
		Format    string `toml:"format"`
	}

	Format string
)

// AddFlags adds logging flags to the given flagset; once the flagset is parsed
// the flags populate cfg.
func AddFlags(flags *pflag.FlagSet, cfg *Config) {
	flags.IntVarP(&cfg.Verbosity, "v", "v", 0, "Logging level")
	flags.StringVar(&cfg.Format, "log-format", string(TextFormat), "Logging format: text or json")
}

// New constructs a logger writing to w.
func New(w io.Writer, cfg Config) (logr.Logger, error) {
	opts := &slog.HandlerOptions{
		Level:       toSlogLevel(cfg.Verbosity),
		ReplaceAttr: replaceLevel,
	}

	var h slog.Handler
	switch Format(cfg.Format) {
	case TextFormat, "":
		h = slog.NewTextHandler(w, opts)
	case JSONFormat:
		h = slog.NewJSONHandler(w, opts)
	default:
		return logr.Logger{}, fmt.Errorf("unrecognised logging format: %s", cfg.Format)
	}
	return logr.FromSlogHandler(h), nil
}

func Discard() logr.Logger { return logr.Discard() }

// toSlogLevel converts a verbosity to the slog level logr uses for V(verbosity).
func toSlogLevel(verbosity int) slog.Level {
	if verbosity <= 0 {
		return slog.LevelInfo
	}
	return slog.Level(-verbosity)
}

// replaceLevel reports every V-level above zero as DEBUG rather than slog's
// DEBUG+3, DEBUG+2, ...
func replaceLevel(groups []string, a slog.Attr) slog.Attr {
	if a.Key != slog.LevelKey || len(groups) > 0 {
		return a
	}
	if level, ok := a.Value.Any().(slog.Level); ok && level < slog.LevelInfo {
		a.Value = slog.StringValue(slog.LevelDebug.String())
	}
	return a
}
