package db

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"log/slog"
	"time"

	sqlite3 "github.com/mattn/go-sqlite3"
)

// loggingConnector opens sqlite3 connections whose statements are logged at
// debug level with their arguments, duration and error.
type loggingConnector struct {
	dsn    string
	logger *slog.Logger
}

// NewLoggingConnector returns a connector for sql.OpenDB. A nil logger means slog.Default().
func NewLoggingConnector(dsn string, logger *slog.Logger) driver.Connector {
	if logger == nil {
		logger = slog.Default()
	}
	return &loggingConnector{dsn: dsn, logger: logger.With("component", "sqlite")}
}

func (c *loggingConnector) Driver() driver.Driver {
	return unsupportedDriver{}
}

func (c *loggingConnector) Connect(_ context.Context) (driver.Conn, error) {
	conn, err := (&sqlite3.SQLiteDriver{}).Open(c.dsn)
	if err != nil {
		return nil, err
	}
	return &loggingConn{Conn: conn, logger: c.logger}, nil
}

type unsupportedDriver struct{}

func (unsupportedDriver) Open(string) (driver.Conn, error) {
	return nil, errors.New("sqlite logging driver: open through sql.OpenDB(NewLoggingConnector(...))")
}

type loggingConn struct {
	driver.Conn
	logger *slog.Logger
}

func (c *loggingConn) Prepare(query string) (driver.Stmt, error) {
	return c.PrepareContext(context.Background(), query)
}

func (c *loggingConn) PrepareContext(ctx context.Context, query string) (driver.Stmt, error) {
	var (
		stmt driver.Stmt
		err  error
	)
	if p, ok := c.Conn.(driver.ConnPrepareContext); ok {
		stmt, err = p.PrepareContext(ctx, query)
	} else {
		stmt, err = c.Conn.Prepare(query)
	}
	if err != nil {
		c.logger.Debug("sql", "op", "prepare", "sql", query, "error", err)
		return nil, err
	}
	return &loggingStmt{stmt: stmt, query: query, logger: c.logger}, nil
}

func (c *loggingConn) BeginTx(ctx context.Context, opts driver.TxOptions) (driver.Tx, error) {
	if b, ok := c.Conn.(driver.ConnBeginTx); ok {
		return b.BeginTx(ctx, opts)
	}
	//nolint:staticcheck // SA1019 fallback for drivers without BeginTx
	return c.Conn.Begin()
}

// ExecContext lets database/sql run multi-statement scripts, which a
// prepared statement would truncate to its first statement.
func (c *loggingConn) ExecContext(ctx context.Context, query string, args []driver.NamedValue) (driver.Result, error) {
	e, ok := c.Conn.(driver.ExecerContext)
	if !ok {
		return nil, driver.ErrSkip
	}
	start := time.Now()
	res, err := e.ExecContext(ctx, query, args)
	logStatement(c.logger, "exec", query, args, time.Since(start), err)
	return res, err
}

func (c *loggingConn) QueryContext(ctx context.Context, query string, args []driver.NamedValue) (driver.Rows, error) {
	q, ok := c.Conn.(driver.QueryerContext)
	if !ok {
		return nil, driver.ErrSkip
	}
	start := time.Now()
	rows, err := q.QueryContext(ctx, query, args)
	logStatement(c.logger, "query", query, args, time.Since(start), err)
	return rows, err
}

type loggingStmt struct {
	stmt   driver.Stmt
	query  string
	logger *slog.Logger
}

func (s *loggingStmt) Close() error  { return s.stmt.Close() }
func (s *loggingStmt) NumInput() int { return s.stmt.NumInput() }

func (s *loggingStmt) Exec(args []driver.Value) (driver.Result, error) {
	return s.ExecContext(context.Background(), toNamed(args))
}

func (s *loggingStmt) Query(args []driver.Value) (driver.Rows, error) {
	return s.QueryContext(context.Background(), toNamed(args))
}

func (s *loggingStmt) ExecContext(ctx context.Context, args []driver.NamedValue) (driver.Result, error) {
	start := time.Now()
	var (
		res driver.Result
		err error
	)
	if e, ok := s.stmt.(driver.StmtExecContext); ok {
		res, err = e.ExecContext(ctx, args)
	} else {
		//nolint:staticcheck // SA1019 fallback for statements without ExecContext
		res, err = s.stmt.Exec(toValues(args))
	}
	s.log("exec", args, time.Since(start), err)
	return res, err
}

func (s *loggingStmt) QueryContext(ctx context.Context, args []driver.NamedValue) (driver.Rows, error) {
	start := time.Now()
	var (
		rows driver.Rows
		err  error
	)
	if q, ok := s.stmt.(driver.StmtQueryContext); ok {
		rows, err = q.QueryContext(ctx, args)
	} else {
		//nolint:staticcheck // SA1019 fallback for statements without QueryContext
		rows, err = s.stmt.Query(toValues(args))
	}
	s.log("query", args, time.Since(start), err)
	return rows, err
}

func (s *loggingStmt) log(op string, args []driver.NamedValue, took time.Duration, err error) {
	logStatement(s.logger, op, s.query, args, took, err)
}

func logStatement(logger *slog.Logger, op, query string, args []driver.NamedValue, took time.Duration, err error) {
	attrs := []any{
		"op", op,
		"sql", query,
		"args", formatArgs(args),
		"took", took,
	}
	if err != nil {
		attrs = append(attrs, "error", err)
	}
	logger.Debug("sql", attrs...)
}

func toNamed(args []driver.Value) []driver.NamedValue {
	out := make([]driver.NamedValue, len(args))
	for i, v := range args {
		out[i] = driver.NamedValue{Ordinal: i + 1, Value: v}
	}
	return out
}

func toValues(args []driver.NamedValue) []driver.Value {
	out := make([]driver.Value, len(args))
	for i := range args {
		out[i] = args[i].Value
	}
	return out
}

func formatArgs(args []driver.NamedValue) []string {
	out := make([]string, len(args))
	for i, a := range args {
		v := "NULL"
		switch t := a.Value.(type) {
		case nil:
		case []byte:
			v = fmt.Sprintf("% x", t)
		default:
			v = fmt.Sprint(t)
		}
		if a.Name != "" {
			v = a.Name + "=" + v
		}
		out[i] = v
	}
	return out
}
