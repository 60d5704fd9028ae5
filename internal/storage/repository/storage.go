// Package repository is the single persistence backend of the marketplace. One
// implementation serves both PostgreSQL and MySQL; the dialect is chosen at startup
// and only affects placeholders, duplicate-key detection and insert-or-ignore syntax.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	// Registers the pgx driver for database/sql.
	_ "github.com/jackc/pgx/v5/stdlib"
)

// Dialect names a supported SQL backend.
type Dialect string

const (
	Postgres Dialect = "postgres"
	MySQL    Dialect = "mysql"
)

var (
	// ErrNotFound is returned when a row does not exist or is not visible to the caller.
	ErrNotFound = errors.New("not found")
	// ErrDuplicate is returned when a unique constraint rejects a write.
	ErrDuplicate = errors.New("duplicate")
)

// Storage wraps the connection pool.
type Storage struct {
	DB      *sql.DB
	dialect Dialect
}

// New opens and pings a connection pool for driver ("postgres" or "mysql").
func New(driver, dsn string) (*Storage, error) {
	const op = "storage.New"

	var (
		db  *sql.DB
		err error
	)
	switch Dialect(driver) {
	case Postgres:
		db, err = sql.Open("pgx", dsn)
	case MySQL:
		db, err = openMySQL(dsn)
	default:
		return nil, fmt.Errorf("%s: unsupported driver %q", op, driver)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err = db.PingContext(context.Background()); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Storage{DB: db, dialect: Dialect(driver)}, nil
}

// NewWithDB wraps an already opened pool.
func NewWithDB(db *sql.DB, dialect Dialect) *Storage {
	return &Storage{DB: db, dialect: dialect}
}

// openMySQL forces time parsing in UTC so DATETIME columns scan into time.Time.
func openMySQL(dsn string) (*sql.DB, error) {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return nil, err
	}
	cfg.ParseTime = true
	cfg.Loc = time.UTC
	// Report matched rather than changed rows so no-op updates are not mistaken for misses.
	cfg.ClientFoundRows = true
	// Migration files hold several statements each.
	cfg.MultiStatements = true
	connector, err := mysql.NewConnector(cfg)
	if err != nil {
		return nil, err
	}
	return sql.OpenDB(connector), nil
}

// Dialect returns the backend the storage talks to.
func (s *Storage) Dialect() Dialect {
	return s.dialect
}

// Ping checks the pool can reach the database.
func (s *Storage) Ping(ctx context.Context) error {
	return s.DB.PingContext(ctx)
}

// Close closes the pool.
func (s *Storage) Close() error {
	return s.DB.Close()
}

// CheckDatabaseReady reports an error until migrations have created the deals table.
func CheckDatabaseReady(storage *Storage) error {
	var n int
	err := storage.DB.QueryRow(`SELECT COUNT(*) FROM deals WHERE 1 = 0`).Scan(&n)
	if err != nil {
		return fmt.Errorf("required table deals missing or query error: %w", err)
	}
	return nil
}

type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type txKey struct{}

// conn returns the transaction bound to ctx by WithTx, or the pool.
func (s *Storage) conn(ctx context.Context) querier {
	if tx, ok := ctx.Value(txKey{}).(*sql.Tx); ok {
		return tx
	}
	return s.DB
}

// WithTx runs fn inside a transaction carried by the context passed to fn. Every
// repository call made with that context joins the transaction. Nested calls reuse
// the outer transaction. The transaction commits when fn returns nil and rolls back
// otherwise.
func (s *Storage) WithTx(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	const op = "storage.WithTx"
	if _, ok := ctx.Value(txKey{}).(*sql.Tx); ok {
		return fn(ctx)
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: begin: %w", op, err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("%s: commit: %w", op, err)
	}
	return nil
}

// rebind rewrites ? placeholders into $n for PostgreSQL.
func (s *Storage) rebind(query string) string {
	if s.dialect != Postgres {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 16)
	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteByte(query[i])
	}
	return b.String()
}

func (s *Storage) exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return s.conn(ctx).ExecContext(ctx, s.rebind(query), args...)
}

func (s *Storage) query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return s.conn(ctx).QueryContext(ctx, s.rebind(query), args...)
}

func (s *Storage) queryRow(ctx context.Context, query string, args ...any) *sql.Row {
	return s.conn(ctx).QueryRowContext(ctx, s.rebind(query), args...)
}

// insertIgnore builds a multi-row insert that silently skips rows violating a unique key.
func (s *Storage) insertIgnore(table string, columns []string, rows int) string {
	placeholders := "(" + strings.TrimSuffix(strings.Repeat("?, ", len(columns)), ", ") + ")"
	values := strings.TrimSuffix(strings.Repeat(placeholders+", ", rows), ", ")
	cols := strings.Join(columns, ", ")
	if s.dialect == MySQL {
		return fmt.Sprintf("INSERT IGNORE INTO %s (%s) VALUES %s", table, cols, values)
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES %s ON CONFLICT DO NOTHING", table, cols, values)
}

// isDuplicate recognises unique violations of both backends.
func isDuplicate(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == 1062
	}
	return false
}

// expectOne maps an update that touched no rows to ErrNotFound.
func expectOne(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullStringPtr(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	v := ns.String
	return &v
}

func timePtr(nt sql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}
	v := nt.Time.UTC()
	return &v
}

func pageArgs(limit, offset int) (int, int) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
