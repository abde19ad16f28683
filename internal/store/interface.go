// Package store defines the persistence contracts for the genre graph and the
// Badger-backed implementation of them. The SQLite implementation lives in
// store/sqlite.
package store

import (
	"context"

	"github.com/listenupapp/genregraph/internal/domain"
)

// GenreRepository persists genre attribute rows.
type GenreRepository interface {
	// FindByID returns ErrNotFound when no genre has the ID.
	FindByID(ctx context.Context, id int) (*domain.Genre, error)
	// List returns every genre in ascending ID order.
	List(ctx context.Context) ([]*domain.Genre, error)
	// Save inserts a genre whose ID is zero, or overwrites an existing one,
	// and returns the persisted ID.
	Save(ctx context.Context, g *domain.Genre) (int, error)
	// Delete removes the genre and its relevance votes.
	Delete(ctx context.Context, id int) error
}

// GenreTreeRepository loads and flushes the relation graph as a whole.
type GenreTreeRepository interface {
	// Get builds a tree holding every genre and its outgoing edges.
	Get(ctx context.Context) (*domain.GenreTree, error)
	// Save writes every node the tree reports through Changes. Unchanged nodes
	// are not written, except that edges pointing at a deleted node are removed.
	Save(ctx context.Context, tree *domain.GenreTree) error
}

// GenreHistoryRepository is the append-only log of genre snapshots.
type GenreHistoryRepository interface {
	// Create assigns the entry an ID and appends it.
	Create(ctx context.Context, h *domain.GenreHistory) error
	// FindLatestByGenreID returns nil without error when the genre has no history.
	FindLatestByGenreID(ctx context.Context, genreID int) (*domain.GenreHistory, error)
	// FindByGenreID returns the genre's snapshots, oldest first.
	FindByGenreID(ctx context.Context, genreID int) ([]*domain.GenreHistory, error)
	// ListLatest returns up to limit entries across all genres, newest first.
	ListLatest(ctx context.Context, limit int) ([]*domain.GenreHistory, error)
}

// GenreRelevanceVoteRepository stores per-account relevance votes and the
// aggregated relevance on the genre.
type GenreRelevanceVoteRepository interface {
	// Save inserts or replaces the account's vote. CreatedAt of an existing vote is kept.
	Save(ctx context.Context, v *domain.GenreRelevanceVote) error
	Delete(ctx context.Context, genreID, accountID int) error
	// FindByGenreID returns the genre's votes in ascending account order.
	FindByGenreID(ctx context.Context, genreID int) ([]*domain.GenreRelevanceVote, error)
	// FindByGenreAndAccount returns ErrNotFound when the account has not voted.
	FindByGenreAndAccount(ctx context.Context, genreID, accountID int) (*domain.GenreRelevanceVote, error)
	// SaveRelevance stores the aggregated value, UnsetGenreRelevance included.
	SaveRelevance(ctx context.Context, genreID, relevance int) error
}

// PermissionRepository records which accounts hold which permissions.
type PermissionRepository interface {
	Grant(ctx context.Context, accountID int, p domain.Permission) error
	Revoke(ctx context.Context, accountID int, p domain.Permission) error
	Has(ctx context.Context, accountID int, p domain.Permission) (bool, error)
	List(ctx context.Context, accountID int) ([]domain.Permission, error)
}

// Tx exposes the repositories bound to one transaction.
type Tx interface {
	Genres() GenreRepository
	GenreTree() GenreTreeRepository
	GenreHistory() GenreHistoryRepository
	GenreRelevanceVotes() GenreRelevanceVoteRepository
	Permissions() PermissionRepository
}

// Transactor runs work inside a transaction. When fn returns an error nothing it
// wrote is visible to other readers.
type Transactor interface {
	// InTx runs fn in a read-write transaction and commits when fn returns nil.
	InTx(ctx context.Context, fn func(tx Tx) error) error
	// ReadTx runs fn against a consistent read-only snapshot.
	ReadTx(ctx context.Context, fn func(tx Tx) error) error
}

// Backend is an opened store that can be shut down.
type Backend interface {
	Transactor
	Close() error
}
