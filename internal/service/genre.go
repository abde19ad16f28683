// Package service orchestrates genre graph commands and queries over a store.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/listenupapp/genregraph/internal/domain"
	"github.com/listenupapp/genregraph/internal/store"
	"github.com/listenupapp/genregraph/internal/validation"
)

// Authorizer answers whether an account holds a permission.
type Authorizer interface {
	HasPermission(ctx context.Context, accountID int, p domain.Permission) (bool, error)
}

// GenreService orchestrates genre operations.
//
// Every command checks the caller's permission first, then loads what it needs,
// validates, and writes inside a single store transaction. Commands fail with one
// of the domain.GenreError types, a validation error from the request shape, or
// a wrapped infrastructure error; a failed command writes nothing.
type GenreService struct {
	tx        store.Transactor
	authz     Authorizer
	logger    *slog.Logger
	validator *validation.Validator
}

// NewGenreService creates a new genre service.
func NewGenreService(tx store.Transactor, authz Authorizer, logger *slog.Logger) *GenreService {
	return &GenreService{
		tx:        tx,
		authz:     authz,
		logger:    logger,
		validator: validation.New(),
	}
}

// CreateGenre creates a genre with its relations and writes a CREATE history entry.
func (s *GenreService) CreateGenre(ctx context.Context, accountID int, req CreateGenreRequest) (*domain.Genre, error) {
	if err := s.authorize(ctx, accountID, domain.PermissionEditGenre); err != nil {
		return nil, err
	}
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	g, err := domain.NewGenre(req.fields())
	if err != nil {
		return nil, err
	}
	node, err := domain.NewGenreTreeNode(domain.NewGenreID, g.Name,
		domain.NewIDSet(req.ParentIDs...),
		domain.NewIDSet(req.DerivedFromIDs...),
		domain.NewIDSet(req.InfluenceIDs...))
	if err != nil {
		return nil, err
	}

	var created *domain.Genre
	err = s.tx.InTx(ctx, func(tx store.Tx) error {
		tree, err := tx.GenreTree().Get(ctx)
		if err != nil {
			return fmt.Errorf("load genre tree: %w", err)
		}
		if err := requireTargets(tree, node); err != nil {
			return err
		}

		id, err := tx.Genres().Save(ctx, g)
		if err != nil {
			return fmt.Errorf("save genre: %w", err)
		}
		created = g.WithID(id)
		node = node.WithID(id)

		tree.InsertGenre(node)
		if err := tx.GenreTree().Save(ctx, tree); err != nil {
			return fmt.Errorf("save genre tree: %w", err)
		}

		h := domain.NewGenreHistory(id, created, node.Parents, node.DerivedFrom, node.Influences,
			domain.HistoryOperationCreate, &accountID)
		if err := tx.GenreHistory().Create(ctx, h); err != nil {
			return fmt.Errorf("write history: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("genre created",
		"id", created.ID,
		"name", created.Name,
		"account_id", accountID,
		"parents", node.Parents.Sorted(),
	)
	return created, nil
}

// UpdateGenre applies a partial update. When the result matches the latest
// history entry the genre is returned as stored and nothing is written.
func (s *GenreService) UpdateGenre(ctx context.Context, accountID, genreID int, req UpdateGenreRequest) (*domain.Genre, error) {
	if err := s.authorize(ctx, accountID, domain.PermissionEditGenre); err != nil {
		return nil, err
	}
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	var (
		result  *domain.Genre
		changed bool
	)
	err := s.tx.InTx(ctx, func(tx store.Tx) error {
		current, err := findGenre(ctx, tx, genreID)
		if err != nil {
			return err
		}
		updated, err := current.WithUpdate(req.patch())
		if err != nil {
			return err
		}

		tree, err := tx.GenreTree().Get(ctx)
		if err != nil {
			return fmt.Errorf("load genre tree: %w", err)
		}
		parents := relationOr(req.ParentIDs, tree.Parents(genreID))
		derivedFrom := relationOr(req.DerivedFromIDs, tree.DerivedFrom(genreID))
		influences := relationOr(req.InfluenceIDs, tree.Influences(genreID))

		last, err := tx.GenreHistory().FindLatestByGenreID(ctx, genreID)
		if err != nil {
			return fmt.Errorf("load latest history: %w", err)
		}
		if !updated.IsChangedFrom(parents, derivedFrom, influences, last) {
			result = current
			return nil
		}

		node, err := domain.NewGenreTreeNode(genreID, updated.Name, parents, derivedFrom, influences)
		if err != nil {
			return err
		}
		if err := requireTargets(tree, node); err != nil {
			return err
		}
		if err := tree.UpdateGenre(node); err != nil {
			return err
		}

		if _, err := tx.Genres().Save(ctx, updated); err != nil {
			return fmt.Errorf("save genre: %w", err)
		}
		if err := tx.GenreTree().Save(ctx, tree); err != nil {
			return fmt.Errorf("save genre tree: %w", err)
		}
		h := domain.NewGenreHistory(genreID, updated, parents, derivedFrom, influences,
			domain.HistoryOperationUpdate, &accountID)
		if err := tx.GenreHistory().Create(ctx, h); err != nil {
			return fmt.Errorf("write history: %w", err)
		}

		result = updated
		changed = true
		return nil
	})
	if err != nil {
		return nil, err
	}

	if changed {
		s.logger.Info("genre updated", "id", genreID, "name", result.Name, "account_id", accountID)
	} else {
		s.logger.Debug("genre update skipped, no changes", "id", genreID, "account_id", accountID)
	}
	return result, nil
}

// DeleteGenre removes a genre. Its children move up to the deleted genre's
// parents, and each receives an UPDATE history entry recording its new parents.
func (s *GenreService) DeleteGenre(ctx context.Context, accountID, genreID int) error {
	if err := s.authorize(ctx, accountID, domain.PermissionEditGenre); err != nil {
		return err
	}

	var (
		deleted  *domain.Genre
		children []int
	)
	err := s.tx.InTx(ctx, func(tx store.Tx) error {
		g, err := findGenre(ctx, tx, genreID)
		if err != nil {
			return err
		}
		deleted = g

		tree, err := tx.GenreTree().Get(ctx)
		if err != nil {
			return fmt.Errorf("load genre tree: %w", err)
		}
		deletion, err := tree.DeleteGenre(genreID)
		if err != nil {
			return err
		}

		if err := tx.GenreTree().Save(ctx, tree); err != nil {
			return fmt.Errorf("save genre tree: %w", err)
		}
		if err := tx.Genres().Delete(ctx, genreID); err != nil {
			return fmt.Errorf("delete genre: %w", err)
		}

		removed := deletion.Node
		h := domain.NewGenreHistory(genreID, g, removed.Parents, removed.DerivedFrom, removed.Influences,
			domain.HistoryOperationDelete, &accountID)
		if err := tx.GenreHistory().Create(ctx, h); err != nil {
			return fmt.Errorf("write history: %w", err)
		}

		children = children[:0]
		for _, childID := range deletion.Children {
			child, err := tx.Genres().FindByID(ctx, childID)
			if errors.Is(err, store.ErrNotFound) {
				s.logger.Warn("re-parented genre has no record, skipping history",
					"id", childID, "deleted_id", genreID)
				continue
			}
			if err != nil {
				return fmt.Errorf("load child genre %d: %w", childID, err)
			}

			ch := domain.NewGenreHistory(childID, child,
				tree.Parents(childID), tree.DerivedFrom(childID), tree.Influences(childID),
				domain.HistoryOperationUpdate, &accountID)
			if err := tx.GenreHistory().Create(ctx, ch); err != nil {
				return fmt.Errorf("write child history: %w", err)
			}
			children = append(children, childID)
		}
		return nil
	})
	if err != nil {
		return err
	}

	for _, childID := range children {
		s.logger.Debug("genre re-parented", "id", childID, "deleted_id", genreID)
	}
	s.logger.Info("genre deleted",
		"id", genreID,
		"name", deleted.Name,
		"account_id", accountID,
		"children", len(children),
	)
	return nil
}

// VoteGenreRelevance records the account's relevance vote, or retracts it when
// relevance is domain.UnsetGenreRelevance, and returns the genre's new
// aggregated relevance.
func (s *GenreService) VoteGenreRelevance(ctx context.Context, accountID, genreID, relevance int) (int, error) {
	if err := s.authorize(ctx, accountID, domain.PermissionVoteGenreRelevance); err != nil {
		return 0, err
	}
	if err := domain.ValidateGenreRelevance(relevance); err != nil {
		return 0, err
	}

	var aggregated int
	err := s.tx.InTx(ctx, func(tx store.Tx) error {
		if _, err := findGenre(ctx, tx, genreID); err != nil {
			return err
		}

		votes := tx.GenreRelevanceVotes()
		if relevance == domain.UnsetGenreRelevance {
			if err := votes.Delete(ctx, genreID, accountID); err != nil {
				return fmt.Errorf("delete vote: %w", err)
			}
		} else {
			if err := votes.Save(ctx, domain.NewGenreRelevanceVote(genreID, accountID, relevance)); err != nil {
				return fmt.Errorf("save vote: %w", err)
			}
		}

		all, err := votes.FindByGenreID(ctx, genreID)
		if err != nil {
			return fmt.Errorf("load votes: %w", err)
		}
		aggregated = domain.MedianGenreRelevance(all)
		if err := votes.SaveRelevance(ctx, genreID, aggregated); err != nil {
			return fmt.Errorf("save relevance: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	s.logger.Info("genre relevance voted",
		"id", genreID,
		"account_id", accountID,
		"vote", relevance,
		"relevance", aggregated,
	)
	return aggregated, nil
}

func (s *GenreService) authorize(ctx context.Context, accountID int, p domain.Permission) error {
	ok, err := s.authz.HasPermission(ctx, accountID, p)
	if err != nil {
		return fmt.Errorf("authorize: %w", err)
	}
	if !ok {
		s.logger.Warn("permission denied", "account_id", accountID, "permission", p)
		return &domain.UnauthorizedError{AccountID: accountID, Permission: p}
	}
	return nil
}

// findGenre maps a missing row onto the domain error.
func findGenre(ctx context.Context, tx store.Tx, id int) (*domain.Genre, error) {
	g, err := tx.Genres().FindByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, &domain.GenreNotFoundError{ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("load genre %d: %w", id, err)
	}
	return g, nil
}

// requireTargets rejects relations to genres that are not in the tree.
func requireTargets(tree *domain.GenreTree, node *domain.GenreTreeNode) error {
	if missing := tree.Missing(node.RelationIDs()); len(missing) > 0 {
		return &domain.GenreNotFoundError{ID: missing[0]}
	}
	return nil
}
