// Command watchcore runs one watchface against the companion channel.
//
//	watchcore            run the watchface selected by WATCHFACE_VARIANT
//	watchcore variants   list the built-in watchfaces and what they draw
//	watchcore version    print the build version
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"watchcore/internal/app"
	"watchcore/internal/config"
	"watchcore/internal/logging"
	"watchcore/internal/watchface"
)

var version = "dev"
var appName = "watchcore"

func main() {
	cmd := "run"
	if len(os.Args) > 1 {
		cmd = os.Args[1]
	}

	switch cmd {
	case "run":
		os.Exit(run())
	case "variants":
		listVariants(os.Stdout)
	case "version":
		fmt.Println(appName, version)
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q (want run, variants or version)\n", cmd)
		os.Exit(2)
	}
}

func run() int {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		return 1
	}

	logger := logging.New(cfg, version, appName)
	slog.SetDefault(logger)

	slog.Info("starting",
		"version", version,
		"env", cfg.AppEnv,
		"log_level", cfg.LogLevel.String(),
		"variant", cfg.Variant,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.Run(ctx, cfg, logger); err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("run failed", "err", err)
		return 1
	}

	slog.Info("shutting down")
	return 0
}

func listVariants(w io.Writer) {
	for _, name := range watchface.VariantNames() {
		v, err := watchface.LookupVariant(name)
		if err != nil {
			continue
		}
		elems := make([]string, 0, 8)
		for _, e := range v.Elements() {
			elems = append(elems, e.String())
		}
		fmt.Fprintf(w, "%-14s %s\n", name, strings.Join(elems, ", "))
	}
}
