package store

import (
	"context"
	"fmt"

	"github.com/dgraph-io/badger/v4"

	"github.com/listenupapp/genregraph/internal/domain"
	"github.com/listenupapp/genregraph/internal/id"
)

type genreHistoryRepo struct {
	txn *badger.Txn
}

// Create appends a snapshot under the next global sequence number.
func (r *genreHistoryRepo) Create(ctx context.Context, h *domain.GenreHistory) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if h.ID == "" {
		historyID, err := id.NewGenreHistoryID()
		if err != nil {
			return err
		}
		h.ID = historyID
	}

	seq, err := nextSequence(r.txn, []byte(genreHistorySeqKey))
	if err != nil {
		return fmt.Errorf("next history sequence: %w", err)
	}

	key := genreHistoryKey(h.GenreID, seq)
	if err := setJSON(r.txn, key, h); err != nil {
		return fmt.Errorf("save history: %w", err)
	}
	return r.txn.Set(genreHistorySeqIndexKey(seq), key)
}

// FindLatestByGenreID returns the most recent snapshot, or nil if there is none.
func (r *genreHistoryRepo) FindLatestByGenreID(ctx context.Context, genreID int) (*domain.GenreHistory, error) {
	entries, err := scanJSON[domain.GenreHistory](ctx, r.txn, genreHistoryGenrePrefix(genreID), true, 1)
	if err != nil || len(entries) == 0 {
		return nil, err
	}
	return entries[0], nil
}

// FindByGenreID returns a genre's snapshots, oldest first.
func (r *genreHistoryRepo) FindByGenreID(ctx context.Context, genreID int) ([]*domain.GenreHistory, error) {
	return scanJSON[domain.GenreHistory](ctx, r.txn, genreHistoryGenrePrefix(genreID), false, 0)
}

// ListLatest walks the sequence index backwards.
func (r *genreHistoryRepo) ListLatest(ctx context.Context, limit int) ([]*domain.GenreHistory, error) {
	if limit <= 0 {
		return nil, nil
	}

	var keys [][]byte
	err := scanKeys(ctx, r.txn, []byte(genreHistoryBySeqPrefix), true, func(item *badger.Item) (bool, error) {
		key, err := item.ValueCopy(nil)
		if err != nil {
			return false, err
		}
		keys = append(keys, key)
		return len(keys) < limit, nil
	})
	if err != nil {
		return nil, err
	}

	out := make([]*domain.GenreHistory, 0, len(keys))
	for _, key := range keys {
		h, err := getJSON[domain.GenreHistory](r.txn, key)
		if err != nil {
			return nil, fmt.Errorf("load history %s: %w", key, err)
		}
		out = append(out, h)
	}
	return out, nil
}
