package db

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"watchcore/internal/config"
)

// Open opens the journal database. At debug level every statement is logged.
func Open(cfg config.Config, logger *slog.Logger) (*sql.DB, error) {
	dsn, err := buildDSN(cfg.SQLitePath)
	if err != nil {
		return nil, err
	}

	var db *sql.DB
	if cfg.LogLevel <= slog.LevelDebug {
		db = sql.OpenDB(NewLoggingConnector(dsn, logger))
	} else {
		db, err = sql.Open("sqlite3", dsn)
		if err != nil {
			return nil, fmt.Errorf("db open: %w", err)
		}
	}

	// one writer; also keeps ":memory:" databases on a single connection
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db ping: %w", err)
	}

	return db, nil
}

func Close(db *sql.DB) error {
	if db == nil {
		return nil
	}
	return db.Close()
}

func buildDSN(path string) (string, error) {
	if path == ":memory:" {
		return "file::memory:?_foreign_keys=on", nil
	}

	params := []string{
		"_foreign_keys=on",
		"_busy_timeout=5000",
		"_journal_mode=WAL",
	}

	if strings.HasPrefix(path, "file:") {
		sep := "?"
		if strings.Contains(path, "?") {
			sep = "&"
		}
		return path + sep + strings.Join(params, "&"), nil
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("mkdir %s: %w", dir, err)
		}
	}
	return fmt.Sprintf("file:%s?%s", path, strings.Join(params, "&")), nil
}
