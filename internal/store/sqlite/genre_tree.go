package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/listenupapp/genregraph/internal/domain"
)

// edgeTable describes one relation table. The "from" column names the genre
// that owns the edge in the tree; the "to" column names the related genre.
type edgeTable struct {
	name string
	from string
	to   string
	set  func(n *domain.GenreTreeNode) domain.IDSet
}

var edgeTables = []edgeTable{
	{
		name: "genre_parents", from: "child_id", to: "parent_id",
		set: func(n *domain.GenreTreeNode) domain.IDSet { return n.Parents },
	},
	{
		name: "genre_derived_from", from: "genre_id", to: "derived_from_id",
		set: func(n *domain.GenreTreeNode) domain.IDSet { return n.DerivedFrom },
	},
	{
		name: "genre_influences", from: "influenced_id", to: "influencer_id",
		set: func(n *domain.GenreTreeNode) domain.IDSet { return n.Influences },
	},
}

type genreTreeRepo struct {
	tx *sql.Tx
}

// Get loads every genre and its three edge sets.
func (r *genreTreeRepo) Get(ctx context.Context) (*domain.GenreTree, error) {
	rows, err := r.tx.QueryContext(ctx, `SELECT id, name FROM genres ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("load tree genres: %w", err)
	}
	defer rows.Close()

	var nodes []*domain.GenreTreeNode
	byID := make(map[int]*domain.GenreTreeNode)
	for rows.Next() {
		n := &domain.GenreTreeNode{
			Parents:     domain.NewIDSet(),
			DerivedFrom: domain.NewIDSet(),
			Influences:  domain.NewIDSet(),
		}
		if err := rows.Scan(&n.ID, &n.Name); err != nil {
			return nil, fmt.Errorf("scan tree genre: %w", err)
		}
		nodes = append(nodes, n)
		byID[n.ID] = n
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	rows.Close()

	for _, t := range edgeTables {
		if err := r.loadEdges(ctx, t, byID); err != nil {
			return nil, err
		}
	}
	return domain.NewGenreTree(nodes...), nil
}

func (r *genreTreeRepo) loadEdges(ctx context.Context, t edgeTable, byID map[int]*domain.GenreTreeNode) error {
	rows, err := r.tx.QueryContext(ctx, `SELECT `+t.from+`, `+t.to+` FROM `+t.name)
	if err != nil {
		return fmt.Errorf("load %s: %w", t.name, err)
	}
	defer rows.Close()

	for rows.Next() {
		var from, to int
		if err := rows.Scan(&from, &to); err != nil {
			return fmt.Errorf("scan %s: %w", t.name, err)
		}
		if n, ok := byID[from]; ok {
			t.set(n).Add(to)
		}
	}
	return rows.Err()
}

// Save applies the tree's changes: created nodes get their edges inserted,
// updated nodes have their outgoing edges replaced, deleted nodes lose every
// edge touching them in either direction.
func (r *genreTreeRepo) Save(ctx context.Context, tree *domain.GenreTree) error {
	for state, n := range tree.Changes() {
		switch state {
		case domain.NodeCreated:
			if err := r.insertEdges(ctx, n); err != nil {
				return err
			}
		case domain.NodeUpdated:
			if err := r.deleteEdges(ctx, n.ID, false); err != nil {
				return err
			}
			if err := r.insertEdges(ctx, n); err != nil {
				return err
			}
		case domain.NodeDeleted:
			if err := r.deleteEdges(ctx, n.ID, true); err != nil {
				return err
			}
		}
	}
	return nil
}

func (r *genreTreeRepo) insertEdges(ctx context.Context, n *domain.GenreTreeNode) error {
	if n.ID <= 0 {
		return fmt.Errorf("tree node %q has no persisted id", n.Name)
	}
	for _, t := range edgeTables {
		for _, to := range t.set(n).Sorted() {
			_, err := r.tx.ExecContext(ctx,
				`INSERT INTO `+t.name+` (`+t.from+`, `+t.to+`) VALUES (?, ?)`, n.ID, to)
			if err != nil {
				return fmt.Errorf("insert %s edge %d -> %d: %w", t.name, n.ID, to, err)
			}
		}
	}
	return nil
}

func (r *genreTreeRepo) deleteEdges(ctx context.Context, id int, bothDirections bool) error {
	for _, t := range edgeTables {
		query := `DELETE FROM ` + t.name + ` WHERE ` + t.from + ` = ?`
		args := []any{id}
		if bothDirections {
			query += ` OR ` + t.to + ` = ?`
			args = append(args, id)
		}
		if _, err := r.tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("delete %s edges of genre %d: %w", t.name, id, err)
		}
	}
	return nil
}
