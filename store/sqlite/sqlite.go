/*
Package sqlite provides the SQLite-backed store for employees, time off, PTO
history, settings, job codes, store hours and shift templates.

PURPOSE:
  Implements timeoff.TxStore and storehours.Store plus the CRUD the API and
  cloud sync need. The store is plain persistence: it enforces no time-off
  rules (no check constraints, no overlap indexes). Rules live in the
  timeoff package and run before every write.

KEY TABLES:
  employees:         id, name, job_code, vacation weeks allowed/used
  time_off:          one row per day off, grouped by vacation_group_id
  pto_history:       banked carryover, unique per (employee, trimester_start)
  settings:          single-row PTO rules
  job_code_settings: per-code settings, stored with the casing entered
  store_hours:       one row per weekday
  shift_templates:   reusable shifts, referenced by job code

DATES:
  Calendar days are TEXT "YYYY-MM-DD" so range queries compare as strings.

CONCURRENCY:
  The pool is limited to one connection. Writes are serialized by SQLite and
  ":memory:" databases stay a single database across calls. WithTx callbacks
  must only use the Store they are handed.

MIGRATION:
  Schema changes are ordered, additive migrations keyed by PRAGMA
  user_version (see migrations.go). New() applies whatever is pending.

USAGE:
  store, err := sqlite.New("./data/schedule.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

  accrual := timeoff.NewAccrualService(store)
*/
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"
	"github.com/sirupsen/logrus"

	"github.com/schedulehq/schedule-engine/storehours"
	"github.com/schedulehq/schedule-engine/timeoff"
)

// dbtx is satisfied by *sql.DB and *sql.Tx.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// queries holds every statement. Store runs them on the pool, WithTx on a
// transaction.
type queries struct {
	db dbtx
}

// Store implements timeoff.TxStore and storehours.Store using SQLite.
type Store struct {
	*queries
	sqlDB  *sql.DB
	logger logrus.FieldLogger
}

var (
	_ timeoff.TxStore  = (*Store)(nil)
	_ timeoff.Store    = (*queries)(nil)
	_ storehours.Store = (*Store)(nil)
)

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used for migration and maintenance messages.
func WithLogger(logger logrus.FieldLogger) Option {
	return func(s *Store) { s.logger = logger }
}

// New opens (creating if needed) the database at dbPath and migrates it.
// Use ":memory:" for an in-memory database.
func New(dbPath string, opts ...Option) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	store := &Store{queries: &queries{db: db}, sqlDB: db, logger: logrus.StandardLogger()}
	for _, opt := range opts {
		opt(store)
	}

	if err := store.migrate(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.sqlDB.Close()
}

// =============================================================================
// TRANSACTIONS (timeoff.TxStore)
// =============================================================================

// WithTx executes fn within a database transaction.
func (s *Store) WithTx(ctx context.Context, fn func(timeoff.Store) error) error {
	return s.inTx(ctx, func(q *queries) error { return fn(q) })
}

func (s *Store) inTx(ctx context.Context, fn func(q *queries) error) error {
	sqlTx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer sqlTx.Rollback()

	if err := fn(&queries{db: sqlTx}); err != nil {
		return err
	}
	return sqlTx.Commit()
}

// =============================================================================
// HELPERS
// =============================================================================

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func isUniqueConstraintError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func notFound(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
