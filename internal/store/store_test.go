package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/listenupapp/genregraph/internal/domain"
)

func setupTestStore(t *testing.T) (*Store, func()) {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "genregraph-badger-*")
	require.NoError(t, err)

	s, err := New(filepath.Join(tmpDir, "badger"), nil)
	require.NoError(t, err)

	cleanup := func() {
		_ = s.Close()
		_ = os.RemoveAll(tmpDir)
	}
	return s, cleanup
}

func mustGenre(t *testing.T, name string) *domain.Genre {
	t.Helper()
	g, err := domain.NewGenre(domain.GenreFields{Name: name})
	require.NoError(t, err)
	return g
}

// createGenre saves a genre and its tree node, returning the new ID.
func createGenre(t *testing.T, s *Store, name string, parents ...int) int {
	t.Helper()
	ctx := context.Background()
	var id int
	err := s.InTx(ctx, func(tx Tx) error {
		var err error
		id, err = tx.Genres().Save(ctx, mustGenre(t, name))
		if err != nil {
			return err
		}
		tree, err := tx.GenreTree().Get(ctx)
		if err != nil {
			return err
		}
		node, err := domain.NewGenreTreeNode(id, name, domain.NewIDSet(parents...), nil, nil)
		if err != nil {
			return err
		}
		tree.InsertGenre(node)
		return tx.GenreTree().Save(ctx, tree)
	})
	require.NoError(t, err)
	return id
}

func TestInTx_RollsBackOnError(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()
	boom := errors.New("boom")

	err := s.InTx(ctx, func(tx Tx) error {
		_, err := tx.Genres().Save(ctx, mustGenre(t, "Rock"))
		require.NoError(t, err)
		return boom
	})
	assert.ErrorIs(t, err, boom)

	err = s.ReadTx(ctx, func(tx Tx) error {
		genres, err := tx.Genres().List(ctx)
		assert.Empty(t, genres)
		return err
	})
	require.NoError(t, err)
}

func TestInTx_ConflictingWriters(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()
	id := createGenre(t, s, "Rock")

	// A second transaction commits a write to a key the first one read.
	err := s.InTx(ctx, func(tx Tx) error {
		if _, err := tx.GenreTree().Get(ctx); err != nil {
			return err
		}
		inner := s.InTx(ctx, func(tx Tx) error {
			g, err := tx.Genres().FindByID(ctx, id)
			if err != nil {
				return err
			}
			_, err = tx.Genres().Save(ctx, g)
			return err
		})
		require.NoError(t, inner)

		_, err := tx.Genres().Save(ctx, mustGenre(t, "Jazz"))
		return err
	})
	assert.ErrorIs(t, err, ErrConflict)
}

func TestGenres_SaveFindList(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	first := createGenre(t, s, "Rock")
	second := createGenre(t, s, "Jazz")
	assert.Equal(t, 1, first)
	assert.Equal(t, 2, second)

	err := s.ReadTx(ctx, func(tx Tx) error {
		g, err := tx.Genres().FindByID(ctx, second)
		require.NoError(t, err)
		assert.Equal(t, "Jazz", g.Name)
		assert.Equal(t, second, g.ID)
		assert.Equal(t, domain.UnsetGenreRelevance, g.Relevance)

		all, err := tx.Genres().List(ctx)
		require.NoError(t, err)
		require.Len(t, all, 2)
		assert.Equal(t, "Rock", all[0].Name)

		_, err = tx.Genres().FindByID(ctx, 99)
		assert.ErrorIs(t, err, ErrNotFound)
		return nil
	})
	require.NoError(t, err)
}

func TestGenres_SaveUnknownID(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	err := s.InTx(ctx, func(tx Tx) error {
		_, err := tx.Genres().Save(ctx, mustGenre(t, "Ghost").WithID(5))
		return err
	})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGenreTree_DeleteStripsReferences(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	parent := createGenre(t, s, "Parent")
	child := createGenre(t, s, "Child", parent)
	grandchild := createGenre(t, s, "Grandchild", child)
	derived := createGenre(t, s, "Derived")

	err := s.InTx(ctx, func(tx Tx) error {
		tree, err := tx.GenreTree().Get(ctx)
		require.NoError(t, err)
		node, err := domain.NewGenreTreeNode(derived, "Derived", nil, domain.NewIDSet(child), nil)
		require.NoError(t, err)
		require.NoError(t, tree.UpdateGenre(node))
		return tx.GenreTree().Save(ctx, tree)
	})
	require.NoError(t, err)

	err = s.InTx(ctx, func(tx Tx) error {
		tree, err := tx.GenreTree().Get(ctx)
		require.NoError(t, err)
		_, err = tree.DeleteGenre(child)
		require.NoError(t, err)
		require.NoError(t, tx.GenreTree().Save(ctx, tree))
		return tx.Genres().Delete(ctx, child)
	})
	require.NoError(t, err)

	err = s.ReadTx(ctx, func(tx Tx) error {
		tree, err := tx.GenreTree().Get(ctx)
		require.NoError(t, err)
		assert.False(t, tree.Has(child))
		assert.Equal(t, []int{parent}, tree.Parents(grandchild).Sorted())
		assert.Equal(t, []int{grandchild}, tree.Children(parent))
		assert.Empty(t, tree.DerivedFrom(derived).Sorted())
		return nil
	})
	require.NoError(t, err)
}

func TestGenreHistory_OrderAndFeed(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	rock := mustGenre(t, "Rock").WithID(1)
	jazz := mustGenre(t, "Jazz").WithID(2)
	entries := []*domain.GenreHistory{
		domain.NewGenreHistory(1, rock, nil, nil, nil, domain.HistoryOperationCreate, nil),
		domain.NewGenreHistory(2, jazz, nil, nil, nil, domain.HistoryOperationCreate, nil),
		domain.NewGenreHistory(1, rock, domain.NewIDSet(2), nil, nil, domain.HistoryOperationUpdate, nil),
	}

	err := s.InTx(ctx, func(tx Tx) error {
		for _, h := range entries {
			require.NoError(t, tx.GenreHistory().Create(ctx, h))
			assert.NotEmpty(t, h.ID)
		}
		return nil
	})
	require.NoError(t, err)

	err = s.ReadTx(ctx, func(tx Tx) error {
		latest, err := tx.GenreHistory().FindLatestByGenreID(ctx, 1)
		require.NoError(t, err)
		require.NotNil(t, latest)
		assert.Equal(t, entries[2].ID, latest.ID)
		assert.Equal(t, []int{2}, latest.ParentIDs)

		all, err := tx.GenreHistory().FindByGenreID(ctx, 1)
		require.NoError(t, err)
		require.Len(t, all, 2)
		assert.Equal(t, entries[0].ID, all[0].ID)

		feed, err := tx.GenreHistory().ListLatest(ctx, 2)
		require.NoError(t, err)
		require.Len(t, feed, 2)
		assert.Equal(t, entries[2].ID, feed[0].ID)
		assert.Equal(t, entries[1].ID, feed[1].ID)

		none, err := tx.GenreHistory().FindLatestByGenreID(ctx, 3)
		assert.NoError(t, err)
		assert.Nil(t, none)
		return nil
	})
	require.NoError(t, err)
}

func TestRelevanceVotes(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()
	id := createGenre(t, s, "Dub")

	err := s.InTx(ctx, func(tx Tx) error {
		votes := tx.GenreRelevanceVotes()
		require.NoError(t, votes.Save(ctx, domain.NewGenreRelevanceVote(id, 11, 3)))
		require.NoError(t, votes.Save(ctx, domain.NewGenreRelevanceVote(id, 10, 6)))
		require.NoError(t, votes.Save(ctx, domain.NewGenreRelevanceVote(id, 11, 4)))

		all, err := votes.FindByGenreID(ctx, id)
		require.NoError(t, err)
		require.Len(t, all, 2)
		assert.Equal(t, 10, all[0].AccountID)
		assert.Equal(t, 4, all[1].Relevance)

		require.NoError(t, votes.Delete(ctx, id, 10))
		_, err = votes.FindByGenreAndAccount(ctx, id, 10)
		assert.ErrorIs(t, err, ErrNotFound)

		return votes.SaveRelevance(ctx, id, 4)
	})
	require.NoError(t, err)

	err = s.InTx(ctx, func(tx Tx) error {
		g, err := tx.Genres().FindByID(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, 4, g.Relevance)

		require.NoError(t, tx.Genres().Delete(ctx, id))
		votes, err := tx.GenreRelevanceVotes().FindByGenreID(ctx, id)
		require.NoError(t, err)
		assert.Empty(t, votes)
		return nil
	})
	require.NoError(t, err)
}

func TestPermissionAuthorizer(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()
	authz := NewPermissionAuthorizer(s)

	err := s.InTx(ctx, func(tx Tx) error {
		require.NoError(t, tx.Permissions().Grant(ctx, 1, domain.PermissionEditGenre))
		return tx.Permissions().Grant(ctx, 1, domain.PermissionVoteGenreRelevance)
	})
	require.NoError(t, err)

	ok, err := authz.HasPermission(ctx, 1, domain.PermissionEditGenre)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = authz.HasPermission(ctx, 2, domain.PermissionEditGenre)
	require.NoError(t, err)
	assert.False(t, ok)

	err = s.InTx(ctx, func(tx Tx) error {
		require.NoError(t, tx.Permissions().Revoke(ctx, 1, domain.PermissionEditGenre))
		perms, err := tx.Permissions().List(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, []domain.Permission{domain.PermissionVoteGenreRelevance}, perms)
		return nil
	})
	require.NoError(t, err)
}
