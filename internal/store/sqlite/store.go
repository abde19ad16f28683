// Package sqlite implements the genre graph store contracts on SQLite.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/listenupapp/genregraph/internal/store"

	_ "modernc.org/sqlite"
)

// Store provides SQLite-backed persistence for the genre graph.
//
// Write transactions start with BEGIN IMMEDIATE, so at most one command holds
// the write lock at a time and the tree it loaded cannot change underneath it.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

// Open creates or opens the database at path and applies pending migrations.
func Open(path string, logger *slog.Logger) (*Store, error) {
	db, err := sql.Open("sqlite", dsn(path))
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(time.Hour)

	if err := runMigrations(context.Background(), db, logger); err != nil {
		db.Close()
		return nil, err
	}

	if logger != nil {
		logger.Info("SQLite database opened successfully", "path", path)
	}

	return &Store{db: db, logger: logger}, nil
}

// dsn applies the pragmas on every pooled connection, not just the first.
func dsn(path string) string {
	q := url.Values{}
	q.Add("_pragma", "journal_mode(WAL)")
	q.Add("_pragma", "synchronous(NORMAL)")
	q.Add("_pragma", "foreign_keys(1)")
	q.Add("_pragma", "busy_timeout(5000)")
	q.Set("_txlock", "immediate")
	return "file:" + path + "?" + q.Encode()
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s.logger != nil {
		s.logger.Info("Closing database connection")
	}
	return s.db.Close()
}

// InTx implements store.Transactor.
func (s *Store) InTx(ctx context.Context, fn func(tx store.Tx) error) error {
	return s.withTx(ctx, fn)
}

// ReadTx implements store.Transactor. Reads share the immediate lock mode of the
// DSN; the transaction is always rolled back.
func (s *Store) ReadTx(ctx context.Context, fn func(tx store.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()
	return fn(&sqlTx{tx: tx})
}

func (s *Store) withTx(ctx context.Context, fn func(tx store.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := fn(&sqlTx{tx: tx}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// sqlTx hands out repositories bound to one database transaction.
type sqlTx struct {
	tx *sql.Tx
}

func (t *sqlTx) Genres() store.GenreRepository {
	return &genreRepo{tx: t.tx}
}

func (t *sqlTx) GenreTree() store.GenreTreeRepository {
	return &genreTreeRepo{tx: t.tx}
}

func (t *sqlTx) GenreHistory() store.GenreHistoryRepository {
	return &genreHistoryRepo{tx: t.tx}
}

func (t *sqlTx) GenreRelevanceVotes() store.GenreRelevanceVoteRepository {
	return &genreVoteRepo{tx: t.tx}
}

func (t *sqlTx) Permissions() store.PermissionRepository {
	return &permissionRepo{tx: t.tx}
}

var (
	_ store.Backend = (*Store)(nil)
	_ store.Tx      = (*sqlTx)(nil)
)

// formatTime formats a time.Time to RFC3339Nano for storage.
func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// parseTime parses a RFC3339Nano string back to time.Time.
func parseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}

// nullableString returns a sql.NullString from a *string.
func nullableString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

// stringPtr is the inverse of nullableString.
func stringPtr(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	v := s.String
	return &v
}

func nullableInt(i *int) sql.NullInt64 {
	if i == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*i), Valid: true}
}

func intPtr(i sql.NullInt64) *int {
	if !i.Valid {
		return nil
	}
	v := int(i.Int64)
	return &v
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
