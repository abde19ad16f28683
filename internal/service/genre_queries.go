package service

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/listenupapp/genregraph/internal/domain"
	"github.com/listenupapp/genregraph/internal/store"
)

// DefaultLatestUpdatesLimit caps the latest updates feed when no limit is given.
const DefaultLatestUpdatesLimit = 20

// GenreUpdate is one entry of the latest updates feed, paired with the entry it
// superseded and the fields that differ between them.
type GenreUpdate struct {
	Entry    *domain.GenreHistory `json:"entry"`
	Previous *domain.GenreHistory `json:"previous,omitempty"`
	Changes  []domain.FieldChange `json:"changes"`
}

// GetGenre returns a genre by ID.
func (s *GenreService) GetGenre(ctx context.Context, genreID int) (*domain.Genre, error) {
	var g *domain.Genre
	err := s.tx.ReadTx(ctx, func(tx store.Tx) error {
		var err error
		g, err = findGenre(ctx, tx, genreID)
		return err
	})
	return g, err
}

// ListGenres returns every genre in ID order.
func (s *GenreService) ListGenres(ctx context.Context) ([]*domain.Genre, error) {
	var genres []*domain.Genre
	err := s.tx.ReadTx(ctx, func(tx store.Tx) error {
		var err error
		genres, err = tx.Genres().List(ctx)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("list genres: %w", err)
	}
	return genres, nil
}

// GetGenreTree returns every node of the relation graph in ID order.
func (s *GenreService) GetGenreTree(ctx context.Context) ([]*domain.GenreTreeNode, error) {
	tree, err := s.loadTree(ctx)
	if err != nil {
		return nil, err
	}
	return tree.Nodes(), nil
}

// GetGenreChildren returns the direct children of a genre.
func (s *GenreService) GetGenreChildren(ctx context.Context, genreID int) ([]*domain.Genre, error) {
	return s.relatedGenres(ctx, genreID, (*domain.GenreTree).Children)
}

// GetGenreAncestors returns every genre reachable through parent edges,
// nearest first.
func (s *GenreService) GetGenreAncestors(ctx context.Context, genreID int) ([]*domain.Genre, error) {
	return s.relatedGenres(ctx, genreID, (*domain.GenreTree).Ancestors)
}

func (s *GenreService) relatedGenres(ctx context.Context, genreID int, related func(*domain.GenreTree, int) []int) ([]*domain.Genre, error) {
	var genres []*domain.Genre
	err := s.tx.ReadTx(ctx, func(tx store.Tx) error {
		tree, err := tx.GenreTree().Get(ctx)
		if err != nil {
			return fmt.Errorf("load genre tree: %w", err)
		}
		if !tree.Has(genreID) {
			return &domain.GenreNotFoundError{ID: genreID}
		}
		ids := related(tree, genreID)
		genres = make([]*domain.Genre, 0, len(ids))
		for _, id := range ids {
			g, err := findGenre(ctx, tx, id)
			if err != nil {
				return err
			}
			genres = append(genres, g)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return genres, nil
}

// GetGenreHistory returns a genre's history, oldest first. History is kept
// after deletion, so a deleted genre still has entries.
func (s *GenreService) GetGenreHistory(ctx context.Context, genreID int) ([]*domain.GenreHistory, error) {
	var entries []*domain.GenreHistory
	err := s.tx.ReadTx(ctx, func(tx store.Tx) error {
		var err error
		entries, err = tx.GenreHistory().FindByGenreID(ctx, genreID)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("load genre history: %w", err)
	}
	return entries, nil
}

// GetLatestUpdates returns the most recent history entries across all genres,
// newest first, each with the field changes against its predecessor.
func (s *GenreService) GetLatestUpdates(ctx context.Context, limit int) ([]*GenreUpdate, error) {
	if limit <= 0 {
		limit = DefaultLatestUpdatesLimit
	}

	var updates []*GenreUpdate
	err := s.tx.ReadTx(ctx, func(tx store.Tx) error {
		entries, err := tx.GenreHistory().ListLatest(ctx, limit)
		if err != nil {
			return fmt.Errorf("list latest history: %w", err)
		}

		// Per-genre history, loaded once per genre.
		byGenre := make(map[int][]*domain.GenreHistory)
		updates = make([]*GenreUpdate, 0, len(entries))
		for _, entry := range entries {
			all, ok := byGenre[entry.GenreID]
			if !ok {
				all, err = tx.GenreHistory().FindByGenreID(ctx, entry.GenreID)
				if err != nil {
					return fmt.Errorf("load genre history: %w", err)
				}
				byGenre[entry.GenreID] = all
			}

			var prev *domain.GenreHistory
			if i := slices.IndexFunc(all, func(h *domain.GenreHistory) bool { return h.ID == entry.ID }); i > 0 {
				prev = all[i-1]
			}
			updates = append(updates, &GenreUpdate{
				Entry:    entry,
				Previous: prev,
				Changes:  entry.Diff(prev),
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updates, nil
}

// GetRelevanceVotes returns every vote cast on a genre.
func (s *GenreService) GetRelevanceVotes(ctx context.Context, genreID int) ([]*domain.GenreRelevanceVote, error) {
	var votes []*domain.GenreRelevanceVote
	err := s.tx.ReadTx(ctx, func(tx store.Tx) error {
		if _, err := findGenre(ctx, tx, genreID); err != nil {
			return err
		}
		var err error
		votes, err = tx.GenreRelevanceVotes().FindByGenreID(ctx, genreID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return votes, nil
}

// GetAccountRelevanceVote returns the account's vote on a genre, or nil when
// the account has not voted.
func (s *GenreService) GetAccountRelevanceVote(ctx context.Context, accountID, genreID int) (*domain.GenreRelevanceVote, error) {
	var vote *domain.GenreRelevanceVote
	err := s.tx.ReadTx(ctx, func(tx store.Tx) error {
		v, err := tx.GenreRelevanceVotes().FindByGenreAndAccount(ctx, genreID, accountID)
		if errors.Is(err, store.ErrNotFound) {
			return nil
		}
		vote = v
		return err
	})
	if err != nil {
		return nil, err
	}
	return vote, nil
}

func (s *GenreService) loadTree(ctx context.Context) (*domain.GenreTree, error) {
	var tree *domain.GenreTree
	err := s.tx.ReadTx(ctx, func(tx store.Tx) error {
		var err error
		tree, err = tx.GenreTree().Get(ctx)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("load genre tree: %w", err)
	}
	return tree, nil
}
