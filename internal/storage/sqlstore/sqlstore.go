// Package sqlstore provides a SQL-backed implementation of the storage.Store
// interface. SQLite (pure Go, no CGO) and PostgreSQL are supported.
package sqlstore

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // PostgreSQL driver
	"modernc.org/sqlite"  // Pure Go SQLite driver (no CGO)

	"github.com/Sanket3107/Rupaya/internal/storage"
)

// Supported driver names.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Ensure Store implements storage.Store
var _ storage.Store = (*Store)(nil)

func init() {
	sqlx.BindDriver(DriverSQLite, sqlx.QUESTION)

	// SQLite's LOWER only folds ASCII.
	sqlite.MustRegisterDeterministicScalarFunction("unicode_lower", 1, func(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
		switch v := args[0].(type) {
		case string:
			return strings.ToLower(v), nil
		case []byte:
			return strings.ToLower(string(v)), nil
		}
		return args[0], nil
	})
}

// dialect holds what differs between backends.
type dialect struct {
	schema string
	viewTx *sql.TxOptions
	rwTx   *sql.TxOptions

	// lower is the Unicode-aware lowercase function.
	lower string
	// forUpdate is appended to selects that must lock their rows.
	forUpdate string
}

var dialects = map[string]dialect{
	DriverSQLite: {
		// SQLite serializes writers itself; the single connection below does the rest.
		schema: sqliteSchema,
		lower:  "unicode_lower",
	},
	DriverPostgres: {
		schema:    postgresSchema,
		viewTx:    &sql.TxOptions{Isolation: sql.LevelReadCommitted, ReadOnly: true},
		rwTx:      &sql.TxOptions{Isolation: sql.LevelReadCommitted},
		lower:     "LOWER",
		forUpdate: " FOR UPDATE",
	},
}

// Store implements storage.Store on top of database/sql.
type Store struct {
	db      *sqlx.DB
	dialect dialect
}

// New creates a new SQLite-backed Store with the given database path.
// It creates the parent directories and runs migrations automatically.
func New(dbPath string) (*Store, error) {
	// Create parent directory if it doesn't exist
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	dsn := dbPath + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	return Open(context.Background(), DriverSQLite, dsn)
}

// Open connects to the database identified by driver and dsn and runs
// migrations.
func Open(ctx context.Context, driver, dsn string) (*Store, error) {
	d, ok := dialects[driver]
	if !ok {
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if driver == DriverSQLite {
		db.SetMaxOpenConns(1)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := runMigrations(ctx, db, d.schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &Store{db: db, dialect: d}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping checks database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// View runs fn in a read transaction that is always rolled back.
func (s *Store) View(ctx context.Context, fn func(tx storage.Tx) error) error {
	t, err := s.db.BeginTxx(ctx, s.dialect.viewTx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer t.Rollback()

	return fn(&tx{tx: t, dialect: s.dialect})
}

// Update runs fn in a read-write transaction and commits if fn succeeds.
func (s *Store) Update(ctx context.Context, fn func(tx storage.Tx) error) error {
	t, err := s.db.BeginTxx(ctx, s.dialect.rwTx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer t.Rollback()

	if err := fn(&tx{tx: t, dialect: s.dialect}); err != nil {
		return err
	}

	if err := t.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// tx implements storage.Tx. Queries are written with ? placeholders and
// rebound for the driver.
type tx struct {
	tx      *sqlx.Tx
	dialect dialect
}

var _ storage.Tx = (*tx)(nil)

func (t *tx) exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return t.tx.ExecContext(ctx, t.tx.Rebind(query), args...)
}

func (t *tx) get(ctx context.Context, dest any, query string, args ...any) error {
	return t.tx.GetContext(ctx, dest, t.tx.Rebind(query), args...)
}

func (t *tx) list(ctx context.Context, dest any, query string, args ...any) error {
	return t.tx.SelectContext(ctx, dest, t.tx.Rebind(query), args...)
}

// listIn expands slice arguments into IN (...) lists before selecting.
func (t *tx) listIn(ctx context.Context, dest any, query string, args ...any) error {
	query, args, err := sqlx.In(query, args...)
	if err != nil {
		return err
	}
	return t.list(ctx, dest, query, args...)
}

// insert runs a named INSERT against arg's db tags.
func (t *tx) insert(ctx context.Context, query string, arg any) error {
	_, err := t.tx.NamedExecContext(ctx, query, arg)
	return err
}

// tombstone marks the matching active rows deleted and reports how many changed.
func (t *tx) tombstone(ctx context.Context, table, column, value, actorID string) (int64, error) {
	query := fmt.Sprintf(
		"UPDATE %s SET deleted_at = ?, deleted_by = ? WHERE %s = ? AND %s",
		table, column, active(""),
	)
	res, err := t.exec(ctx, query, nowMillis(), actorID, value)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// active is the single soft-delete predicate every read goes through.
func active(alias string) string {
	if alias == "" {
		return "deleted_at IS NULL"
	}
	return alias + ".deleted_at IS NULL"
}

// likeEscaper escapes LIKE metacharacters so search text matches literally.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// likePattern builds the argument for a contains() predicate.
func likePattern(search string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(search)) + "%"
}

// contains is a case-insensitive substring predicate on column, taking one
// likePattern argument.
func (t *tx) contains(column string) string {
	return fmt.Sprintf(`%s(%s) LIKE ? ESCAPE '\'`, t.dialect.lower, column)
}

func nowMillis() int64 {
	return time.Now().UnixMilli()
}
