package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"strings"
	"time"

	_ "github.com/lib/pq"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	maxOpenConns    = 25
	maxIdleConns    = 5
	connMaxLifetime = 5 * time.Minute
	pingTimeout     = 5 * time.Second

	// maxStatementLen caps db.statement so large upserts don't bloat spans.
	maxStatementLen = 256
)

var dbTracer = otel.Tracer("finsync/postgres")

// DB is the handle every repository shares. Query, QueryRow and Exec each
// open a client span named after the SQL verb.
type DB struct {
	*sql.DB
}

// New opens the pool, applies the connection limits and pings the server.
func New(ctx context.Context, connStr string) (*DB, error) {
	pool, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	pool.SetMaxOpenConns(maxOpenConns)
	pool.SetMaxIdleConns(maxIdleConns)
	pool.SetConnMaxLifetime(connMaxLifetime)

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := pool.PingContext(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return &DB{pool}, nil
}

// Wrap adapts an already open *sql.DB, typically a sqlmock in tests.
func Wrap(db *sql.DB) *DB {
	return &DB{db}
}

func (db *DB) Close() error {
	return db.DB.Close()
}

func (db *DB) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	ctx, span := startSpan(ctx, query)
	defer span.End()

	rows, err := db.DB.QueryContext(ctx, query, args...)
	markFailed(span, err)
	return rows, err
}

// QueryRowContext defers ending the span to Scan, where sql.Row reports
// its error.
func (db *DB) QueryRowContext(ctx context.Context, query string, args ...any) *spanRow {
	ctx, span := startSpan(ctx, query)
	return &spanRow{row: db.DB.QueryRowContext(ctx, query, args...), span: span}
}

func (db *DB) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	ctx, span := startSpan(ctx, query)
	defer span.End()

	res, err := db.DB.ExecContext(ctx, query, args...)
	markFailed(span, err)
	return res, err
}

type spanRow struct {
	row  *sql.Row
	span trace.Span
}

// Scan may be called once; the span is closed on the first call.
func (r *spanRow) Scan(dest ...any) error {
	err := r.row.Scan(dest...)
	if r.span != nil {
		markFailed(r.span, err)
		r.span.End()
		r.span = nil
	}
	return err
}

func startSpan(ctx context.Context, query string) (context.Context, trace.Span) {
	verb := statementVerb(query)
	return dbTracer.Start(ctx, "postgres "+verb,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("db.system", "postgresql"),
			attribute.String("db.operation", verb),
			attribute.String("db.statement", redactStatement(query)),
		))
}

// markFailed records err on span. sql.ErrNoRows counts as a failure too;
// repositories turn it into a not_found error.
func markFailed(span trace.Span, err error) {
	if err == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

var (
	stringLiteral  = regexp.MustCompile(`'(?:[^']|'')*'`)
	numericLiteral = regexp.MustCompile(`\$?\b\d+(?:\.\d+)?\b`)
)

// redactStatement blanks quoted strings and bare numbers so tokens and
// account data never reach a trace backend. $N placeholders are kept.
func redactStatement(q string) string {
	q = stringLiteral.ReplaceAllString(q, "'?'")
	q = numericLiteral.ReplaceAllStringFunc(q, func(m string) string {
		if strings.HasPrefix(m, "$") {
			return m
		}
		return "?"
	})
	if len(q) > maxStatementLen {
		return q[:maxStatementLen] + "..."
	}
	return q
}

func statementVerb(q string) string {
	fields := strings.Fields(q)
	if len(fields) == 0 {
		return ""
	}
	return strings.ToUpper(fields[0])
}
