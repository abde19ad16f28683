package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"

	"github.com/listenupapp/genregraph/internal/domain"
)

type genreVoteRepo struct {
	txn *badger.Txn
}

// Save upserts a vote, keeping the original CreatedAt.
func (r *genreVoteRepo) Save(ctx context.Context, v *domain.GenreRelevanceVote) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	key := genreVoteKey(v.GenreID, v.AccountID)

	vote := *v
	prev, err := getJSON[domain.GenreRelevanceVote](r.txn, key)
	switch {
	case errors.Is(err, ErrNotFound):
	case err != nil:
		return err
	default:
		vote.CreatedAt = prev.CreatedAt
	}

	if err := setJSON(r.txn, key, &vote); err != nil {
		return fmt.Errorf("save vote: %w", err)
	}
	return nil
}

// Delete removes a vote. Deleting a vote that does not exist is not an error.
func (r *genreVoteRepo) Delete(ctx context.Context, genreID, accountID int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return r.txn.Delete(genreVoteKey(genreID, accountID))
}

// FindByGenreID returns the votes on a genre ordered by account.
func (r *genreVoteRepo) FindByGenreID(ctx context.Context, genreID int) ([]*domain.GenreRelevanceVote, error) {
	return scanJSON[domain.GenreRelevanceVote](ctx, r.txn, genreVoteGenrePrefix(genreID), false, 0)
}

// FindByGenreAndAccount returns one account's vote.
func (r *genreVoteRepo) FindByGenreAndAccount(ctx context.Context, genreID, accountID int) (*domain.GenreRelevanceVote, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return getJSON[domain.GenreRelevanceVote](r.txn, genreVoteKey(genreID, accountID))
}

// SaveRelevance rewrites the aggregated relevance on the genre record.
func (r *genreVoteRepo) SaveRelevance(ctx context.Context, genreID, relevance int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	g, err := getJSON[domain.Genre](r.txn, genreKey(genreID))
	if err != nil {
		return err
	}
	g.Relevance = relevance
	return setJSON(r.txn, genreKey(genreID), g)
}
