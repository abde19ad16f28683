package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"

	"github.com/listenupapp/genregraph/internal/domain"
)

// treeRecord is the stored form of one node's outgoing edges.
type treeRecord struct {
	Parents     []int `json:"parents"`
	DerivedFrom []int `json:"derived_from"`
	Influences  []int `json:"influences"`
}

func newTreeRecord(n *domain.GenreTreeNode) treeRecord {
	return treeRecord{
		Parents:     n.Parents.Sorted(),
		DerivedFrom: n.DerivedFrom.Sorted(),
		Influences:  n.Influences.Sorted(),
	}
}

// without reports the record minus id, and whether id was present at all.
func (r treeRecord) without(id int) (treeRecord, bool) {
	parents := domain.NewIDSet(r.Parents...)
	derived := domain.NewIDSet(r.DerivedFrom...)
	influences := domain.NewIDSet(r.Influences...)
	if !parents.Has(id) && !derived.Has(id) && !influences.Has(id) {
		return r, false
	}
	parents.Remove(id)
	derived.Remove(id)
	influences.Remove(id)
	return treeRecord{
		Parents:     parents.Sorted(),
		DerivedFrom: derived.Sorted(),
		Influences:  influences.Sorted(),
	}, true
}

type genreTreeRepo struct {
	txn *badger.Txn
}

// Get loads every genre name and its edges into a tree.
func (r *genreTreeRepo) Get(ctx context.Context) (*domain.GenreTree, error) {
	genres, err := scanJSON[domain.Genre](ctx, r.txn, []byte(genrePrefix), false, 0)
	if err != nil {
		return nil, fmt.Errorf("load genres: %w", err)
	}

	nodes := make([]*domain.GenreTreeNode, 0, len(genres))
	for _, g := range genres {
		rec, err := getJSON[treeRecord](r.txn, genreTreeKey(g.ID))
		if errors.Is(err, ErrNotFound) {
			rec = &treeRecord{}
		} else if err != nil {
			return nil, fmt.Errorf("load edges of genre %d: %w", g.ID, err)
		}
		nodes = append(nodes, &domain.GenreTreeNode{
			ID:          g.ID,
			Name:        g.Name,
			Parents:     domain.NewIDSet(rec.Parents...),
			DerivedFrom: domain.NewIDSet(rec.DerivedFrom...),
			Influences:  domain.NewIDSet(rec.Influences...),
		})
	}
	return domain.NewGenreTree(nodes...), nil
}

// Save flushes the tree's changes. Deleting a node also strips its ID from the
// edge lists of every other stored node.
func (r *genreTreeRepo) Save(ctx context.Context, tree *domain.GenreTree) error {
	var deleted []int
	for state, n := range tree.Changes() {
		if err := ctx.Err(); err != nil {
			return err
		}
		switch state {
		case domain.NodeCreated, domain.NodeUpdated:
			if n.ID <= 0 {
				return fmt.Errorf("tree node %q has no persisted id", n.Name)
			}
			if err := setJSON(r.txn, genreTreeKey(n.ID), newTreeRecord(n)); err != nil {
				return fmt.Errorf("save edges of genre %d: %w", n.ID, err)
			}
		case domain.NodeDeleted:
			if err := r.txn.Delete(genreTreeKey(n.ID)); err != nil {
				return fmt.Errorf("delete edges of genre %d: %w", n.ID, err)
			}
			deleted = append(deleted, n.ID)
		}
	}

	for _, id := range deleted {
		if err := r.stripReferences(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

func (r *genreTreeRepo) stripReferences(ctx context.Context, id int) error {
	keys, err := collectKeys(ctx, r.txn, []byte(genreTreePrefix))
	if err != nil {
		return err
	}
	for _, key := range keys {
		rec, err := getJSON[treeRecord](r.txn, key)
		if err != nil {
			return err
		}
		next, changed := rec.without(id)
		if !changed {
			continue
		}
		if err := setJSON(r.txn, key, next); err != nil {
			return fmt.Errorf("strip genre %d from %s: %w", id, key, err)
		}
	}
	return nil
}
