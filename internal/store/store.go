package store

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dgraph-io/badger/v4"
)

// Store wraps a Badger database instance.
//
// Every command runs in one Badger transaction. Badger transactions are
// serializable snapshots: when two commands touch overlapping keys the later
// commit fails with ErrConflict and writes nothing.
type Store struct {
	db     *badger.DB
	logger *slog.Logger
}

// New opens (or creates) a Badger database at path.
func New(path string, logger *slog.Logger) (*Store, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil            // Disable Badger's internal logging
	opts.SyncWrites = true       // Ensure writes are synced to disk to prevent corruption on crashes
	opts.CompactL0OnClose = true // Compact L0 tables on close for faster startup

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger db: %w", err)
	}

	if logger != nil {
		logger.Info("Badger database opened successfully", "path", path)
	}

	return &Store{db: db, logger: logger}, nil
}

// Close gracefully closes the database connection.
func (s *Store) Close() error {
	if s.logger != nil {
		s.logger.Info("Closing database connection")
	}
	return s.db.Close()
}

// InTx implements Transactor.
func (s *Store) InTx(ctx context.Context, fn func(tx Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := s.db.Update(func(txn *badger.Txn) error {
		return fn(&badgerTx{txn: txn})
	})
	return translate(err)
}

// ReadTx implements Transactor.
func (s *Store) ReadTx(ctx context.Context, fn func(tx Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.View(func(txn *badger.Txn) error {
		return fn(&badgerTx{txn: txn})
	})
}

// badgerTx hands out repositories bound to one Badger transaction.
type badgerTx struct {
	txn *badger.Txn
}

func (t *badgerTx) Genres() GenreRepository {
	return &genreRepo{txn: t.txn}
}

func (t *badgerTx) GenreTree() GenreTreeRepository {
	return &genreTreeRepo{txn: t.txn}
}

func (t *badgerTx) GenreHistory() GenreHistoryRepository {
	return &genreHistoryRepo{txn: t.txn}
}

func (t *badgerTx) GenreRelevanceVotes() GenreRelevanceVoteRepository {
	return &genreVoteRepo{txn: t.txn}
}

func (t *badgerTx) Permissions() PermissionRepository {
	return &permissionRepo{txn: t.txn}
}

var (
	_ Backend = (*Store)(nil)
	_ Tx      = (*badgerTx)(nil)
)
