package service

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/listenupapp/genregraph/internal/domain"
	apperrors "github.com/listenupapp/genregraph/internal/errors"
	"github.com/listenupapp/genregraph/internal/store"
	"github.com/listenupapp/genregraph/internal/store/sqlite"
)

const (
	testEditor = 1
	testNobody = 2
)

// testBackends lists the stores the command flow scenarios run against.
var testBackends = []string{"sqlite", "badger"}

// setupTestGenreService creates a genre service over a temporary SQLite store.
// testEditor holds every permission; testNobody holds none.
func setupTestGenreService(t *testing.T) (*GenreService, store.Backend) {
	t.Helper()
	return setupTestGenreServiceOn(t, "sqlite")
}

// setupTestGenreServiceOn is setupTestGenreService for the named backend.
func setupTestGenreServiceOn(t *testing.T, backend string) (*GenreService, store.Backend) {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "genregraph-service-test-*")
	require.NoError(t, err)

	var s store.Backend
	switch backend {
	case "badger":
		s, err = store.New(filepath.Join(tmpDir, "badger"), nil)
	default:
		s, err = sqlite.Open(filepath.Join(tmpDir, "test.db"), nil)
	}
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = s.Close()
		_ = os.RemoveAll(tmpDir)
	})

	ctx := context.Background()
	err = s.InTx(ctx, func(tx store.Tx) error {
		for _, p := range []domain.Permission{domain.PermissionEditGenre, domain.PermissionVoteGenreRelevance} {
			if err := tx.Permissions().Grant(ctx, testEditor, p); err != nil {
				return err
			}
		}
		return nil
	})
	require.NoError(t, err)

	logger := slog.New(slog.DiscardHandler)
	return NewGenreService(s, store.NewPermissionAuthorizer(s), logger), s
}

func createTestGenre(t *testing.T, svc *GenreService, name string, parents ...int) int {
	t.Helper()
	g, err := svc.CreateGenre(context.Background(), testEditor, CreateGenreRequest{Name: name, ParentIDs: parents})
	require.NoError(t, err)
	return g.ID
}

func countHistory(t *testing.T, s store.Transactor) int {
	t.Helper()
	var n int
	err := s.ReadTx(context.Background(), func(tx store.Tx) error {
		entries, err := tx.GenreHistory().ListLatest(context.Background(), 1000)
		n = len(entries)
		return err
	})
	require.NoError(t, err)
	return n
}

func ptr[T any](v T) *T { return &v }

func TestCreateGenre(t *testing.T) {
	svc, _ := setupTestGenreService(t)
	ctx := context.Background()

	rock := createTestGenre(t, svc, "Rock")
	g, err := svc.CreateGenre(ctx, testEditor, CreateGenreRequest{
		Name:      "  Hard   Rock ",
		Type:      domain.GenreTypeStyle,
		Akas:      GenreAkasInput{Primary: []string{"Heavy Rock"}},
		ParentIDs: []int{rock},
	})
	require.NoError(t, err)
	assert.Equal(t, "Hard Rock", g.Name)
	assert.Equal(t, domain.UnsetGenreRelevance, g.Relevance)

	nodes, err := svc.GetGenreTree(ctx)
	require.NoError(t, err)
	require.Len(t, nodes, 2)
	assert.Equal(t, []int{rock}, nodes[1].Parents.Sorted())

	history, err := svc.GetGenreHistory(ctx, g.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, domain.HistoryOperationCreate, history[0].Operation)
	assert.Equal(t, []int{rock}, history[0].ParentIDs)
	assert.Equal(t, []string{"Heavy Rock"}, history[0].Akas.Primary)
	require.NotNil(t, history[0].AccountID)
	assert.Equal(t, testEditor, *history[0].AccountID)
}

func TestCreateGenre_DuplicateAkaPersistsNothing(t *testing.T) {
	svc, s := setupTestGenreService(t)
	ctx := context.Background()

	_, err := svc.CreateGenre(ctx, testEditor, CreateGenreRequest{
		Name: "Dub",
		Akas: GenreAkasInput{
			Primary:   []string{"Dub Reggae"},
			Secondary: []string{"Dub Reggae"},
		},
	})
	var dup *domain.DuplicateAkaError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, "Dub Reggae", dup.Alias)

	genres, err := svc.ListGenres(ctx)
	require.NoError(t, err)
	assert.Empty(t, genres)
	assert.Zero(t, countHistory(t, s))
}

func TestCreateGenre_MissingRelationTarget(t *testing.T) {
	svc, s := setupTestGenreService(t)
	ctx := context.Background()

	_, err := svc.CreateGenre(ctx, testEditor, CreateGenreRequest{Name: "Orphan", DerivedFromIDs: []int{42}})
	var nf *domain.GenreNotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, 42, nf.ID)
	assert.Zero(t, countHistory(t, s))
}

func TestCreateGenre_RelationRules(t *testing.T) {
	svc, _ := setupTestGenreService(t)
	ctx := context.Background()
	a := createTestGenre(t, svc, "A")

	_, err := svc.CreateGenre(ctx, testEditor, CreateGenreRequest{
		Name:           "B",
		ParentIDs:      []int{a},
		DerivedFromIDs: []int{a},
	})
	var derivedChild *domain.DerivedChildError
	assert.ErrorAs(t, err, &derivedChild)

	_, err = svc.CreateGenre(ctx, testEditor, CreateGenreRequest{
		Name:           "B",
		DerivedFromIDs: []int{a},
		InfluenceIDs:   []int{a},
	})
	var derivedInfluence *domain.DerivedInfluenceError
	assert.ErrorAs(t, err, &derivedInfluence)
}

func TestCreateGenre_InvalidRequest(t *testing.T) {
	svc, _ := setupTestGenreService(t)

	_, err := svc.CreateGenre(context.Background(), testEditor, CreateGenreRequest{Name: "X", ParentIDs: []int{0}})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestCommands_Unauthorized(t *testing.T) {
	svc, s := setupTestGenreService(t)
	ctx := context.Background()
	id := createTestGenre(t, svc, "Rock")
	before := countHistory(t, s)

	var unauthorized *domain.UnauthorizedError

	_, err := svc.CreateGenre(ctx, testNobody, CreateGenreRequest{Name: "Jazz"})
	require.ErrorAs(t, err, &unauthorized)
	assert.Equal(t, domain.PermissionEditGenre, unauthorized.Permission)
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)

	// Authorization runs before validation.
	_, err = svc.CreateGenre(ctx, testNobody, CreateGenreRequest{})
	assert.ErrorAs(t, err, &unauthorized)

	_, err = svc.UpdateGenre(ctx, testNobody, id, UpdateGenreRequest{Name: ptr("Roll")})
	assert.ErrorAs(t, err, &unauthorized)

	err = svc.DeleteGenre(ctx, testNobody, id)
	assert.ErrorAs(t, err, &unauthorized)

	_, err = svc.VoteGenreRelevance(ctx, testNobody, id, 3)
	require.ErrorAs(t, err, &unauthorized)
	assert.Equal(t, domain.PermissionVoteGenreRelevance, unauthorized.Permission)

	assert.Equal(t, before, countHistory(t, s))
}

func TestUpdateGenre(t *testing.T) {
	svc, _ := setupTestGenreService(t)
	ctx := context.Background()
	rock := createTestGenre(t, svc, "Rock")
	metal := createTestGenre(t, svc, "Metal")
	sub, err := svc.CreateGenre(ctx, testEditor, CreateGenreRequest{
		Name:      "Doom",
		Subtitle:  ptr("slow"),
		ParentIDs: []int{rock},
	})
	require.NoError(t, err)

	updated, err := svc.UpdateGenre(ctx, testEditor, sub.ID, UpdateGenreRequest{
		Subtitle:  ptr(""),
		Nsfw:      ptr(true),
		ParentIDs: &[]int{metal},
	})
	require.NoError(t, err)
	assert.Equal(t, "Doom", updated.Name)
	assert.Nil(t, updated.Subtitle)
	assert.True(t, updated.Nsfw)

	stored, err := svc.GetGenre(ctx, sub.ID)
	require.NoError(t, err)
	assert.True(t, stored.Nsfw)

	ancestors, err := svc.GetGenreAncestors(ctx, sub.ID)
	require.NoError(t, err)
	require.Len(t, ancestors, 1)
	assert.Equal(t, "Metal", ancestors[0].Name)

	history, err := svc.GetGenreHistory(ctx, sub.ID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, domain.HistoryOperationUpdate, history[1].Operation)
	assert.Equal(t, []int{metal}, history[1].ParentIDs)

	// Omitted relations are kept.
	_, err = svc.UpdateGenre(ctx, testEditor, sub.ID, UpdateGenreRequest{Name: ptr("Doom Metal")})
	require.NoError(t, err)
	history, err = svc.GetGenreHistory(ctx, sub.ID)
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, []int{metal}, history[2].ParentIDs)
}

func TestUpdateGenre_IdenticalUpdateWritesNothing(t *testing.T) {
	for _, backend := range testBackends {
		t.Run(backend, func(t *testing.T) {
			svc, s := setupTestGenreServiceOn(t, backend)
			ctx := context.Background()
			g, err := svc.CreateGenre(ctx, testEditor, CreateGenreRequest{
				Name: "Shoegaze",
				Akas: GenreAkasInput{Primary: []string{"Shoegazing"}},
			})
			require.NoError(t, err)

			same, err := svc.UpdateGenre(ctx, testEditor, g.ID, UpdateGenreRequest{
				Name:      ptr("Shoegaze"),
				Akas:      &GenreAkasInput{Primary: []string{"Shoegazing"}},
				ParentIDs: &[]int{},
			})
			require.NoError(t, err)
			assert.True(t, g.UpdatedAt.Equal(same.UpdatedAt))

			history, err := svc.GetGenreHistory(ctx, g.ID)
			require.NoError(t, err)
			require.Len(t, history, 1)
			assert.Equal(t, domain.HistoryOperationCreate, history[0].Operation)
			assert.Equal(t, 1, countHistory(t, s))
		})
	}
}

func TestUpdateGenre_Cycles(t *testing.T) {
	for _, backend := range testBackends {
		t.Run(backend, func(t *testing.T) {
			svc, s := setupTestGenreServiceOn(t, backend)
			ctx := context.Background()
			a := createTestGenre(t, svc, "A")
			b := createTestGenre(t, svc, "B", a)
			before := countHistory(t, s)

			tests := []struct {
				name    string
				id      int
				parents []int
				path    string
			}{
				{"self parent", a, []int{a}, "A → A"},
				{"two step loop", a, []int{b}, "A → B → A"},
			}
			for _, tt := range tests {
				t.Run(tt.name, func(t *testing.T) {
					_, err := svc.UpdateGenre(ctx, testEditor, tt.id, UpdateGenreRequest{ParentIDs: &tt.parents})
					var cycle *domain.GenreCycleError
					require.ErrorAs(t, err, &cycle)
					assert.Equal(t, tt.path, cycle.Path)
					assert.ErrorIs(t, err, apperrors.ErrValidation)
				})
			}

			nodes, err := svc.GetGenreTree(ctx)
			require.NoError(t, err)
			assert.Empty(t, nodes[0].Parents.Sorted())
			assert.Equal(t, before, countHistory(t, s))
		})
	}
}

func TestUpdateGenre_NotFound(t *testing.T) {
	svc, _ := setupTestGenreService(t)

	_, err := svc.UpdateGenre(context.Background(), testEditor, 7, UpdateGenreRequest{Name: ptr("Ghost")})
	var nf *domain.GenreNotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, 7, nf.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestDeleteGenre_PromotesChildren(t *testing.T) {
	for _, backend := range testBackends {
		t.Run(backend, func(t *testing.T) {
			svc, s := setupTestGenreServiceOn(t, backend)
			ctx := context.Background()
			parent := createTestGenre(t, svc, "Parent")
			child := createTestGenre(t, svc, "Child", parent)
			grandchild := createTestGenre(t, svc, "Grandchild", child)

			require.NoError(t, svc.DeleteGenre(ctx, testEditor, child))

			_, err := svc.GetGenre(ctx, child)
			var nf *domain.GenreNotFoundError
			assert.ErrorAs(t, err, &nf)

			children, err := svc.GetGenreChildren(ctx, parent)
			require.NoError(t, err)
			require.Len(t, children, 1)
			assert.Equal(t, grandchild, children[0].ID)

			deleted, err := svc.GetGenreHistory(ctx, child)
			require.NoError(t, err)
			require.Len(t, deleted, 2)
			assert.Equal(t, domain.HistoryOperationDelete, deleted[1].Operation)
			assert.Equal(t, []int{parent}, deleted[1].ParentIDs)

			promoted, err := svc.GetGenreHistory(ctx, grandchild)
			require.NoError(t, err)
			require.Len(t, promoted, 2)
			assert.Equal(t, domain.HistoryOperationUpdate, promoted[1].Operation)
			assert.Equal(t, []int{parent}, promoted[1].ParentIDs)

			// Three creates, one delete, one re-parent.
			assert.Equal(t, 5, countHistory(t, s))
		})
	}
}

func TestDeleteGenre_StripsRelations(t *testing.T) {
	svc, _ := setupTestGenreService(t)
	ctx := context.Background()
	dub := createTestGenre(t, svc, "Dub")
	jungle, err := svc.CreateGenre(ctx, testEditor, CreateGenreRequest{Name: "Jungle", InfluenceIDs: []int{dub}})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteGenre(ctx, testEditor, dub))

	nodes, err := svc.GetGenreTree(ctx)
	require.NoError(t, err)
	require.Len(t, nodes, 1)
	assert.Equal(t, jungle.ID, nodes[0].ID)
	assert.Empty(t, nodes[0].Influences.Sorted())

	// Not a child, so no history of its own for the removal.
	history, err := svc.GetGenreHistory(ctx, jungle.ID)
	require.NoError(t, err)
	assert.Len(t, history, 1)
}

func TestDeleteGenre_NotFound(t *testing.T) {
	svc, _ := setupTestGenreService(t)

	err := svc.DeleteGenre(context.Background(), testEditor, 3)
	var nf *domain.GenreNotFoundError
	assert.ErrorAs(t, err, &nf)
}

func TestVoteGenreRelevance(t *testing.T) {
	tests := []struct {
		name  string
		votes []int
		want  int
	}{
		{"odd count", []int{1, 2, 3, 4, 5}, 3},
		{"even count rounds half up", []int{1, 2, 3, 4}, 3},
		{"single vote", []int{6}, 6},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, s := setupTestGenreService(t)
			ctx := context.Background()
			id := createTestGenre(t, svc, "Trip Hop")

			var got int
			for i, v := range tt.votes {
				account := 100 + i
				grant(t, s, account, domain.PermissionVoteGenreRelevance)
				var err error
				got, err = svc.VoteGenreRelevance(ctx, account, id, v)
				require.NoError(t, err)
			}
			assert.Equal(t, tt.want, got)

			g, err := svc.GetGenre(ctx, id)
			require.NoError(t, err)
			assert.Equal(t, tt.want, g.Relevance)
		})
	}
}

func TestVoteGenreRelevance_Retract(t *testing.T) {
	svc, s := setupTestGenreService(t)
	ctx := context.Background()
	id := createTestGenre(t, svc, "Vaporwave")
	grant(t, s, 10, domain.PermissionVoteGenreRelevance)

	got, err := svc.VoteGenreRelevance(ctx, testEditor, id, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, got)
	got, err = svc.VoteGenreRelevance(ctx, 10, id, 6)
	require.NoError(t, err)
	assert.Equal(t, 4, got)

	vote, err := svc.GetAccountRelevanceVote(ctx, 10, id)
	require.NoError(t, err)
	require.NotNil(t, vote)
	assert.Equal(t, 6, vote.Relevance)

	got, err = svc.VoteGenreRelevance(ctx, 10, id, domain.UnsetGenreRelevance)
	require.NoError(t, err)
	assert.Equal(t, 2, got)
	got, err = svc.VoteGenreRelevance(ctx, testEditor, id, domain.UnsetGenreRelevance)
	require.NoError(t, err)
	assert.Equal(t, domain.UnsetGenreRelevance, got)

	vote, err = svc.GetAccountRelevanceVote(ctx, 10, id)
	require.NoError(t, err)
	assert.Nil(t, vote)

	votes, err := svc.GetRelevanceVotes(ctx, id)
	require.NoError(t, err)
	assert.Empty(t, votes)

	// Votes never write history.
	history, err := svc.GetGenreHistory(ctx, id)
	require.NoError(t, err)
	assert.Len(t, history, 1)
}

func TestVoteGenreRelevance_Invalid(t *testing.T) {
	svc, _ := setupTestGenreService(t)
	ctx := context.Background()
	id := createTestGenre(t, svc, "Grime")

	for _, v := range []int{-1, 8, 98} {
		_, err := svc.VoteGenreRelevance(ctx, testEditor, id, v)
		var invalid *domain.InvalidGenreRelevanceError
		require.ErrorAs(t, err, &invalid)
		assert.Equal(t, v, invalid.Value)
	}

	_, err := svc.VoteGenreRelevance(ctx, testEditor, 999, 3)
	var nf *domain.GenreNotFoundError
	assert.ErrorAs(t, err, &nf)
}

func TestGetLatestUpdates(t *testing.T) {
	svc, _ := setupTestGenreService(t)
	ctx := context.Background()
	a := createTestGenre(t, svc, "Ambient")
	b := createTestGenre(t, svc, "Drone")
	_, err := svc.UpdateGenre(ctx, testEditor, a, UpdateGenreRequest{Nsfw: ptr(true)})
	require.NoError(t, err)

	updates, err := svc.GetLatestUpdates(ctx, 0)
	require.NoError(t, err)
	require.Len(t, updates, 3)

	latest := updates[0]
	assert.Equal(t, a, latest.Entry.GenreID)
	require.NotNil(t, latest.Previous)
	assert.Equal(t, domain.HistoryOperationCreate, latest.Previous.Operation)
	assert.Equal(t, []domain.FieldChange{{Field: "nsfw", Before: "false", After: "true"}}, latest.Changes)

	assert.Equal(t, b, updates[1].Entry.GenreID)
	assert.Nil(t, updates[1].Previous)
	assert.NotEmpty(t, updates[1].Changes)

	limited, err := svc.GetLatestUpdates(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestGetGenreChildren_Unknown(t *testing.T) {
	svc, _ := setupTestGenreService(t)

	_, err := svc.GetGenreChildren(context.Background(), 5)
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
}

func grant(t *testing.T, s store.Transactor, accountID int, p domain.Permission) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, s.InTx(ctx, func(tx store.Tx) error {
		return tx.Permissions().Grant(ctx, accountID, p)
	}))
}
