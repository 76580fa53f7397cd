// Command migrate applies the journal schema without starting the watchface.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"watchcore/internal/config"
	"watchcore/internal/db"
	"watchcore/internal/logging"
	"watchcore/internal/migrate"
)

var version = "dev"
var appName = "watchcore-migrate"

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "usage: %s <command>\n  migrate  apply pending journal migrations\n", os.Args[0])
		os.Exit(1)
	}

	cfg, err := config.LoadFromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}
	logger := logging.New(cfg, version, appName)

	conn, err := db.Open(cfg, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "db open: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		if closeErr := db.Close(conn); closeErr != nil {
			slog.Error("db close", "err", closeErr)
		}
	}()

	switch os.Args[1] {
	case "migrate":
		applied, err := migrate.Run(context.Background(), conn, logger)
		if err != nil {
			fmt.Fprintf(os.Stderr, "migrate: %v\n", err)
			_ = db.Close(conn)
			os.Exit(1)
		}
		fmt.Printf("migrations applied: %d\n", len(applied))
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", os.Args[1])
		_ = db.Close(conn)
		os.Exit(1)
	}
}
