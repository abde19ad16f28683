package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/listenupapp/genregraph/internal/domain"
	"github.com/listenupapp/genregraph/internal/genre"
)

func TestSeedDefaultGenres(t *testing.T) {
	svc, _ := setupTestGenreService(t)
	ctx := context.Background()

	n, err := svc.SeedDefaultGenres(ctx, testEditor, genre.DefaultGenres)
	require.NoError(t, err)
	assert.Equal(t, len(genre.Flatten(genre.DefaultGenres)), n)

	genres, err := svc.ListGenres(ctx)
	require.NoError(t, err)
	require.Len(t, genres, n)

	byName := make(map[string]*domain.Genre, len(genres))
	for _, g := range genres {
		byName[g.Name] = g
	}
	assert.Equal(t, domain.GenreTypeMeta, byName["Rock"].Type)
	assert.Equal(t, []string{"DnB", "Drum & Bass", "D&B"}, byName["Drum and Bass"].Akas.Primary)

	nodes, err := svc.GetGenreTree(ctx)
	require.NoError(t, err)
	nodeByID := make(map[int]*domain.GenreTreeNode, len(nodes))
	for _, node := range nodes {
		nodeByID[node.ID] = node
	}

	trap := nodeByID[byName["Trap"].ID]
	assert.Equal(t, []int{byName["Hip Hop"].ID}, trap.Parents.Sorted())
	assert.Equal(t, []int{byName["Drum and Bass"].ID}, trap.Influences.Sorted(), "alias resolved")

	jungle := nodeByID[byName["Jungle"].ID]
	assert.Equal(t, []int{byName["Breakbeat Hardcore"].ID}, jungle.DerivedFrom.Sorted())

	// Relations land as a second history entry.
	history, err := svc.GetGenreHistory(ctx, byName["Jungle"].ID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, domain.HistoryOperationUpdate, history[1].Operation)

	again, err := svc.SeedDefaultGenres(ctx, testEditor, genre.DefaultGenres)
	require.NoError(t, err)
	assert.Zero(t, again)
}

func TestSeedDefaultGenres_UnknownReference(t *testing.T) {
	svc, _ := setupTestGenreService(t)

	seeds := []genre.GenreSeed{
		{Name: "Grime", Slug: "grime", Influences: []string{"garage"}},
	}
	_, err := svc.SeedDefaultGenres(context.Background(), testEditor, seeds)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown genre "garage"`)
}
