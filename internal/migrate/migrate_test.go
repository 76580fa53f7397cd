package migrate

import (
	"context"
	"database/sql"
	"io"
	"io/fs"
	"log/slog"
	"slices"
	"testing"
	"testing/fstest"

	_ "github.com/mattn/go-sqlite3"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

func openMemory(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestRun_EmbeddedMigrations(t *testing.T) {
	db := openMemory(t)
	ctx := context.Background()

	applied, err := Run(ctx, db, discard)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	want := []string{"0001", "0002", "0003", "0004"}
	if !slices.Equal(applied, want) {
		t.Fatalf("applied = %v, want %v", applied, want)
	}

	if _, err := db.Exec(`INSERT INTO exchanges (watch_id, at, kind) VALUES ('w', '2026-10-17T09:00:00Z', 'requested')`); err != nil {
		t.Fatalf("exchanges table not usable: %v", err)
	}

	again, err := Run(ctx, db, discard)
	if err != nil {
		t.Fatalf("second Run: %v", err)
	}
	if len(again) != 0 {
		t.Fatalf("second Run applied %v, want none", again)
	}
}

func TestRun_NormalizesLegacyTimestamps(t *testing.T) {
	db := openMemory(t)
	ctx := context.Background()

	legacy := fstest.MapFS{}
	for _, name := range []string{"0001_exchanges.sql", "0002_exchanges_kind_index.sql", "0003_exchanges_session.sql"} {
		body, err := fs.ReadFile(sqlFS, "sql/"+name)
		if err != nil {
			t.Fatalf("read %s: %v", name, err)
		}
		legacy["sql/"+name] = &fstest.MapFile{Data: body}
	}
	if _, err := run(ctx, db, legacy, discard); err != nil {
		t.Fatalf("run legacy: %v", err)
	}

	for _, at := range []string{"2026-10-17T10:00:00Z", "2026-10-17T10:00:00.1Z", "2026-10-17T10:00:00.12Z", "2026-10-17T10:00:00.123456789Z"} {
		if _, err := db.Exec(`INSERT INTO exchanges (watch_id, at, kind) VALUES ('w', ?, 'sent')`, at); err != nil {
			t.Fatalf("insert %s: %v", at, err)
		}
	}

	applied, err := Run(ctx, db, discard)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !slices.Equal(applied, []string{"0004"}) {
		t.Fatalf("applied = %v, want [0004]", applied)
	}

	rows, err := db.Query(`SELECT at FROM exchanges ORDER BY at DESC`)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	defer func() { _ = rows.Close() }()

	var got []string
	for rows.Next() {
		var at string
		if err := rows.Scan(&at); err != nil {
			t.Fatalf("scan: %v", err)
		}
		got = append(got, at)
	}
	want := []string{
		"2026-10-17T10:00:00.123456789Z",
		"2026-10-17T10:00:00.120000000Z",
		"2026-10-17T10:00:00.100000000Z",
		"2026-10-17T10:00:00.000000000Z",
	}
	if !slices.Equal(got, want) {
		t.Fatalf("at = %v, want %v", got, want)
	}
}

func TestRun_FailedMigrationRollsBack(t *testing.T) {
	db := openMemory(t)
	fsys := fstest.MapFS{
		"sql/0001_ok.sql":    {Data: []byte(`CREATE TABLE a (id INTEGER);`)},
		"sql/0002_bad.sql":   {Data: []byte(`CREATE TABLE b (id INTEGER); INSERT INTO missing VALUES (1);`)},
		"sql/readme.txt":     {Data: []byte(`ignored`)},
		"sql/03_invalid.sql": {Data: []byte(`ignored`)},
	}

	applied, err := run(context.Background(), db, fsys, discard)
	if err == nil {
		t.Fatal("run error = nil, want failure from 0002")
	}
	if len(applied) != 1 || applied[0] != "0001" {
		t.Fatalf("applied = %v, want [0001]", applied)
	}

	var n int
	if err := db.QueryRow(`SELECT count(*) FROM sqlite_master WHERE type = 'table' AND name = 'b'`).Scan(&n); err != nil {
		t.Fatalf("query: %v", err)
	}
	if n != 0 {
		t.Fatal("table b exists after rolled back migration")
	}
	if err := db.QueryRow(`SELECT count(*) FROM ` + tableName).Scan(&n); err != nil {
		t.Fatalf("query: %v", err)
	}
	if n != 1 {
		t.Fatalf("recorded migrations = %d, want 1", n)
	}
}

func TestParseMigrationFilename(t *testing.T) {
	tests := []struct {
		in      string
		version string
		name    string
		ok      bool
	}{
		{in: "0001_exchanges.sql", version: "0001", name: "exchanges", ok: true},
		{in: "0010_add_index.sql", version: "0010", name: "add_index", ok: true},
		{in: "1_short.sql", ok: false},
		{in: "0001_exchanges.txt", ok: false},
	}
	for _, tt := range tests {
		v, n, ok := parseMigrationFilename(tt.in)
		if ok != tt.ok || v != tt.version || n != tt.name {
			t.Errorf("parseMigrationFilename(%q) = %q, %q, %v", tt.in, v, n, ok)
		}
	}
}
