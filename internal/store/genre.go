package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"

	"github.com/listenupapp/genregraph/internal/domain"
)

type genreRepo struct {
	txn *badger.Txn
}

// FindByID retrieves a genre by ID.
func (r *genreRepo) FindByID(ctx context.Context, id int) (*domain.Genre, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	g, err := getJSON[domain.Genre](r.txn, genreKey(id))
	if errors.Is(err, ErrNotFound) {
		return nil, ErrNotFound.WithDetails(map[string]int{"genre_id": id})
	}
	return g, err
}

// List returns all genres ordered by ID.
func (r *genreRepo) List(ctx context.Context) ([]*domain.Genre, error) {
	return scanJSON[domain.Genre](ctx, r.txn, []byte(genrePrefix), false, 0)
}

// Save creates or overwrites a genre. New genres draw their ID from the genre sequence.
func (r *genreRepo) Save(ctx context.Context, g *domain.Genre) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	id := g.ID
	if id == 0 {
		seq, err := nextSequence(r.txn, []byte(genreSeqKey))
		if err != nil {
			return 0, fmt.Errorf("next genre id: %w", err)
		}
		id = int(seq)
	} else {
		ok, err := exists(r.txn, genreKey(id))
		if err != nil {
			return 0, err
		}
		if !ok {
			return 0, ErrNotFound.WithDetails(map[string]int{"genre_id": id})
		}
	}

	if err := setJSON(r.txn, genreKey(id), g.WithID(id)); err != nil {
		return 0, fmt.Errorf("save genre: %w", err)
	}
	return id, nil
}

// Delete removes a genre and every relevance vote cast on it.
// Tree edges and history are left to their own repositories.
func (r *genreRepo) Delete(ctx context.Context, id int) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	voteKeys, err := collectKeys(ctx, r.txn, genreVoteGenrePrefix(id))
	if err != nil {
		return err
	}
	for _, key := range voteKeys {
		if err := r.txn.Delete(key); err != nil {
			return fmt.Errorf("delete vote: %w", err)
		}
	}
	return r.txn.Delete(genreKey(id))
}
