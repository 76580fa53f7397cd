// Package logging builds the process logger: colored text for dev builds and
// JSON for anything released.
package logging

import (
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"

	"watchcore/internal/config"
)

func New(cfg config.Config, version string, appName string) *slog.Logger {
	return newLogger(os.Stdout, cfg, version, appName)
}

func newLogger(w io.Writer, cfg config.Config, version string, appName string) *slog.Logger {
	if version == "dev" {
		h := tint.NewHandler(w, &tint.Options{
			Level:      cfg.LogLevel,
			AddSource:  true,
			TimeFormat: time.Kitchen,
		})
		return slog.New(h).With("app", appName, "watch_id", cfg.WatchID)
	}

	h := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level:       cfg.LogLevel,
		ReplaceAttr: utcTime,
	})
	return slog.New(h).With(
		"app", appName,
		"version", version,
		"env", cfg.AppEnv,
		"watch_id", cfg.WatchID,
		"variant", cfg.Variant,
	)
}

// utcTime rewrites the top-level record time to UTC.
func utcTime(groups []string, a slog.Attr) slog.Attr {
	if len(groups) == 0 && a.Key == slog.TimeKey && a.Value.Kind() == slog.KindTime {
		a.Value = slog.TimeValue(a.Value.Time().UTC())
	}
	return a
}
