package db

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"watchcore/internal/config"
)

type captureHandler struct {
	mu      sync.Mutex
	records []map[string]slog.Value
}

func (h *captureHandler) Enabled(context.Context, slog.Level) bool { return true }

func (h *captureHandler) Handle(_ context.Context, r slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	m := map[string]slog.Value{"msg": slog.StringValue(r.Message)}
	r.Attrs(func(a slog.Attr) bool {
		m[a.Key] = a.Value
		return true
	})
	h.records = append(h.records, m)
	return nil
}

func (h *captureHandler) WithAttrs([]slog.Attr) slog.Handler { return h }
func (h *captureHandler) WithGroup(string) slog.Handler      { return h }

func (h *captureHandler) statements(op string) []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	var out []string
	for _, m := range h.records {
		if m["msg"].String() == "sql" && m["op"].String() == op {
			out = append(out, m["sql"].String())
		}
	}
	return out
}

func openLogged(t *testing.T) (*sql.DB, *captureHandler) {
	t.Helper()
	h := &captureHandler{}
	db := sql.OpenDB(NewLoggingConnector("file::memory:", slog.New(h)))
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })
	return db, h
}

func TestLoggingConnector_MultiStatementExec(t *testing.T) {
	db, h := openLogged(t)

	script := `CREATE TABLE a (id INTEGER); CREATE TABLE b (id INTEGER);`
	if _, err := db.Exec(script); err != nil {
		t.Fatalf("exec script: %v", err)
	}
	if _, err := db.Exec(`INSERT INTO b (id) VALUES (?)`, 7); err != nil {
		t.Fatalf("second table missing: %v", err)
	}

	execs := h.statements("exec")
	if len(execs) != 2 || execs[0] != script {
		t.Fatalf("exec statements = %q", execs)
	}
}

func TestLoggingConnector_QueryLogged(t *testing.T) {
	db, h := openLogged(t)

	var n int
	if err := db.QueryRow(`SELECT ? + 1`, 41).Scan(&n); err != nil {
		t.Fatalf("query: %v", err)
	}
	if n != 42 {
		t.Fatalf("n = %d, want 42", n)
	}
	queries := h.statements("query")
	if len(queries) != 1 || queries[0] != `SELECT ? + 1` {
		t.Fatalf("query statements = %q", queries)
	}
}

func TestLoggingConnector_PreparedStatementLogged(t *testing.T) {
	db, h := openLogged(t)
	if _, err := db.Exec(`CREATE TABLE t (name TEXT)`); err != nil {
		t.Fatalf("create: %v", err)
	}

	stmt, err := db.Prepare(`INSERT INTO t (name) VALUES (?)`)
	if err != nil {
		t.Fatalf("prepare: %v", err)
	}
	defer func() { _ = stmt.Close() }()
	if _, err := stmt.Exec("alice"); err != nil {
		t.Fatalf("exec: %v", err)
	}

	execs := h.statements("exec")
	if execs[len(execs)-1] != `INSERT INTO t (name) VALUES (?)` {
		t.Fatalf("exec statements = %q", execs)
	}
}

func TestFormatArgs(t *testing.T) {
	got := formatArgs(toNamed([]driver.Value{nil, []byte{0x01, 0xff}, int64(3), "x"}))
	want := []string{"NULL", "01 ff", "3", "x"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("formatArgs = %q, want %q", got, want)
		}
	}
}

func TestBuildDSN(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name string
		path string
		want string
	}{
		{name: "memory", path: ":memory:", want: "file::memory:?_foreign_keys=on"},
		{name: "file uri", path: "file:/data/w.db?mode=rwc", want: "file:/data/w.db?mode=rwc&_foreign_keys=on&_busy_timeout=5000&_journal_mode=WAL"},
		{name: "plain path", path: filepath.Join(dir, "sub", "w.db"), want: "file:" + filepath.Join(dir, "sub", "w.db") + "?_foreign_keys=on&_busy_timeout=5000&_journal_mode=WAL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := buildDSN(tt.path)
			if err != nil {
				t.Fatalf("buildDSN: %v", err)
			}
			if got != tt.want {
				t.Fatalf("buildDSN(%q) = %q, want %q", tt.path, got, tt.want)
			}
		})
	}
}

func TestOpen(t *testing.T) {
	for _, level := range []slog.Level{slog.LevelDebug, slog.LevelInfo} {
		t.Run(level.String(), func(t *testing.T) {
			cfg := config.Config{LogLevel: level, SQLitePath: filepath.Join(t.TempDir(), "w.db")}
			db, err := Open(cfg, slog.New(&captureHandler{}))
			if err != nil {
				t.Fatalf("Open: %v", err)
			}
			defer func() { _ = Close(db) }()

			var mode string
			if err := db.QueryRow(`PRAGMA journal_mode`).Scan(&mode); err != nil {
				t.Fatalf("pragma: %v", err)
			}
			if !strings.EqualFold(mode, "wal") {
				t.Fatalf("journal_mode = %q, want wal", mode)
			}
		})
	}
}
