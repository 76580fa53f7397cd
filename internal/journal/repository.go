// Package journal persists weather exchange records for diagnostics. It is
// write-mostly; nothing reads it back into the display state.
package journal

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"watchcore/internal/appmsg"
	"watchcore/internal/watchface"
)

// timeLayout is fixed width so that text order in SQLite is time order.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

//go:embed sql/insert-exchange.sql
var insertExchangeSQL string

//go:embed sql/recent-exchanges.sql
var recentExchangesSQL string

//go:embed sql/count-by-kind.sql
var countByKindSQL string

// Entry is a stored exchange record.
type Entry struct {
	ID          int64     `json:"id"`
	Session     string    `json:"session"`
	At          time.Time `json:"at"`
	Kind        string    `json:"kind"`
	Reason      string    `json:"reason,omitempty"`
	Detail      string    `json:"detail,omitempty"`
	Temperature *int32    `json:"temperature,omitempty"`
	Conditions  *string   `json:"conditions,omitempty"`
}

// Repository stores records for one watch. Every repository tags its rows
// with a fresh session id so restarts can be told apart.
type Repository interface {
	Session() string
	Insert(ctx context.Context, r watchface.Record) error
	Recent(ctx context.Context, limit int) ([]Entry, error)
	CountByKind(ctx context.Context) (map[string]int, error)
}

type repositoryImpl struct {
	db      *sql.DB
	watchID string
	session string
}

func NewRepository(db *sql.DB, watchID string) Repository {
	return &repositoryImpl{db: db, watchID: watchID, session: uuid.NewString()}
}

func (r *repositoryImpl) Session() string { return r.session }

func (r *repositoryImpl) Insert(ctx context.Context, rec watchface.Record) error {
	reason := ""
	if rec.Reason != appmsg.ResultOK {
		reason = rec.Reason.String()
	}

	var temp, cond any
	if rec.Temperature != nil {
		temp = *rec.Temperature
	}
	if rec.Conditions != nil {
		cond = *rec.Conditions
	}

	_, err := r.db.ExecContext(ctx, insertExchangeSQL,
		r.watchID,
		r.session,
		rec.At.UTC().Format(timeLayout),
		string(rec.Kind),
		reason,
		rec.Detail,
		temp,
		cond,
	)
	if err != nil {
		return fmt.Errorf("insert exchange: %w", err)
	}
	return nil
}

func (r *repositoryImpl) Recent(ctx context.Context, limit int) ([]Entry, error) {
	rows, err := r.db.QueryContext(ctx, recentExchangesSQL, r.watchID, limit)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := rows.Close(); err != nil {
			slog.Error("close exchanges rows", "error", err)
		}
	}()

	out := []Entry{}
	for rows.Next() {
		var (
			e    Entry
			at   string
			temp sql.NullInt32
			cond sql.NullString
		)
		if err := rows.Scan(&e.ID, &e.Session, &at, &e.Kind, &e.Reason, &e.Detail, &temp, &cond); err != nil {
			return nil, err
		}
		t, err := time.Parse(timeLayout, at)
		if err != nil {
			return nil, fmt.Errorf("parse timestamp %q: %w", at, err)
		}
		e.At = t
		if temp.Valid {
			v := temp.Int32
			e.Temperature = &v
		}
		if cond.Valid {
			v := cond.String
			e.Conditions = &v
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *repositoryImpl) CountByKind(ctx context.Context) (map[string]int, error) {
	rows, err := r.db.QueryContext(ctx, countByKindSQL, r.watchID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	out := make(map[string]int)
	for rows.Next() {
		var (
			kind string
			n    int
		)
		if err := rows.Scan(&kind, &n); err != nil {
			return nil, err
		}
		out[kind] = n
	}
	return out, rows.Err()
}
