package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"
	"unicode"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/lib/pq"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var dbTracer = otel.Tracer("dynamite.db")

// Supported database/sql driver names
const (
	DriverPQ  = "postgres"
	DriverPGX = "pgx"
)

// PoolConfig sizes the connection pool
type PoolConfig struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// DB wraps sql.DB with tracing
type DB struct {
	*sql.DB
	driver string
}

// New opens and pings a PostgreSQL database through driver
func New(driver, connStr string, pool PoolConfig) (*DB, error) {
	if driver != DriverPQ && driver != DriverPGX {
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	db, err := sql.Open(driver, connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if pool.MaxOpenConns > 0 {
		db.SetMaxOpenConns(pool.MaxOpenConns)
	}
	if pool.MaxIdleConns > 0 {
		db.SetMaxIdleConns(pool.MaxIdleConns)
	}
	if pool.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(pool.ConnMaxLifetime)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{DB: db, driver: driver}, nil
}

// Driver returns the database/sql driver name in use
func (db *DB) Driver() string {
	return db.driver
}

// querier is satisfied by both DB and Tx
type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *tracedRow
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func startSpan(ctx context.Context, name, query string) (context.Context, trace.Span) {
	return dbTracer.Start(ctx, name, trace.WithAttributes(
		attribute.String("db.system", "postgresql"),
		attribute.String("db.operation", extractSQLVerb(query)),
		attribute.String("db.statement", sanitizeQuery(query)),
	))
}

func endSpan(span trace.Span, err error) {
	if err != nil && err != sql.ErrNoRows {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// tracedRow keeps the span open until Scan, where sql.Row reports its errors
type tracedRow struct {
	row  *sql.Row
	span trace.Span
}

func (r *tracedRow) Scan(dest ...any) error {
	err := r.row.Scan(dest...)
	if r.span != nil {
		endSpan(r.span, err)
		r.span = nil
	}
	return err
}

// QueryContext wraps sql.DB.QueryContext with tracing.
func (db *DB) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	ctx, span := startSpan(ctx, "db.Query", query)
	rows, err := db.DB.QueryContext(ctx, query, args...)
	endSpan(span, err)
	return rows, err
}

// QueryRowContext wraps sql.DB.QueryRowContext with tracing.
func (db *DB) QueryRowContext(ctx context.Context, query string, args ...any) *tracedRow {
	ctx, span := startSpan(ctx, "db.QueryRow", query)
	return &tracedRow{row: db.DB.QueryRowContext(ctx, query, args...), span: span}
}

// ExecContext wraps sql.DB.ExecContext with tracing.
func (db *DB) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	ctx, span := startSpan(ctx, "db.Exec", query)
	result, err := db.DB.ExecContext(ctx, query, args...)
	endSpan(span, err)
	return result, err
}

// Tx wraps sql.Tx with the same tracing as DB. The span covers the whole transaction.
type Tx struct {
	tx   *sql.Tx
	span trace.Span
	done bool
}

// BeginTx starts a traced transaction
func (db *DB) BeginTx(ctx context.Context, opts *sql.TxOptions) (*Tx, context.Context, error) {
	ctx, span := dbTracer.Start(ctx, "db.Tx", trace.WithAttributes(attribute.String("db.system", "postgresql")))
	tx, err := db.DB.BeginTx(ctx, opts)
	if err != nil {
		endSpan(span, err)
		return nil, ctx, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return &Tx{tx: tx, span: span}, ctx, nil
}

func (t *Tx) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	ctx, span := startSpan(ctx, "db.Query", query)
	rows, err := t.tx.QueryContext(ctx, query, args...)
	endSpan(span, err)
	return rows, err
}

func (t *Tx) QueryRowContext(ctx context.Context, query string, args ...any) *tracedRow {
	ctx, span := startSpan(ctx, "db.QueryRow", query)
	return &tracedRow{row: t.tx.QueryRowContext(ctx, query, args...), span: span}
}

func (t *Tx) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	ctx, span := startSpan(ctx, "db.Exec", query)
	result, err := t.tx.ExecContext(ctx, query, args...)
	endSpan(span, err)
	return result, err
}

// Commit commits and ends the transaction span
func (t *Tx) Commit() error {
	err := t.tx.Commit()
	t.finish(err)
	return err
}

// Rollback is a no-op after Commit, so it can always be deferred
func (t *Tx) Rollback() error {
	if t.done {
		return nil
	}
	err := t.tx.Rollback()
	if err == sql.ErrTxDone {
		err = nil
	}
	t.finish(err)
	return err
}

func (t *Tx) finish(err error) {
	if t.done {
		return
	}
	t.done = true
	endSpan(t.span, err)
}

// sanitizeQuery masks string and numeric literals so values never reach traces.
// $N placeholders are kept.
func sanitizeQuery(q string) string {
	var b strings.Builder
	b.Grow(len(q))

	for i := 0; i < len(q); {
		ch := q[i]
		switch {
		case ch == '\'':
			b.WriteString("'?'")
			i = skipStringLiteral(q, i+1)
		case unicode.IsDigit(rune(ch)) && (i == 0 || !isIdentChar(q[i-1])):
			b.WriteByte('?')
			for i < len(q) && (unicode.IsDigit(rune(q[i])) || q[i] == '.') {
				i++
			}
		default:
			b.WriteByte(ch)
			i++
		}
	}

	s := strings.Join(strings.Fields(b.String()), " ")
	if len(s) > 256 {
		return s[:256] + "..."
	}
	return s
}

// skipStringLiteral returns the index after the closing quote, honouring '' escapes
func skipStringLiteral(q string, i int) int {
	for i < len(q) {
		if q[i] == '\'' {
			if i+1 < len(q) && q[i+1] == '\'' {
				i += 2
				continue
			}
			return i + 1
		}
		i++
	}
	return i
}

func isIdentChar(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c == '_' || c == '$'
}

func extractSQLVerb(q string) string {
	fields := strings.Fields(q)
	if len(fields) == 0 {
		return ""
	}
	return strings.ToUpper(fields[0])
}
