package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGenreHistory_SnapshotsRelations(t *testing.T) {
	g, err := NewGenre(GenreFields{Name: "Acid House", Notes: ptr("303")})
	require.NoError(t, err)
	g = g.WithID(4)
	account := 12

	h := NewGenreHistory(4, g, NewIDSet(3, 1), nil, NewIDSet(9), HistoryOperationCreate, &account)
	account = 13

	assert.Equal(t, 4, h.GenreID)
	assert.Equal(t, "Acid House", h.Name)
	assert.Equal(t, []int{1, 3}, h.ParentIDs)
	assert.Equal(t, []int{}, h.DerivedFromIDs)
	assert.Equal(t, []int{9}, h.InfluenceIDs)
	assert.Equal(t, HistoryOperationCreate, h.Operation)
	require.NotNil(t, h.AccountID)
	assert.Equal(t, 12, *h.AccountID)
	assert.False(t, h.CreatedAt.IsZero())

	// The snapshot does not alias the genre.
	*g.Notes = "changed"
	assert.Equal(t, "303", *h.Notes)
}

func TestGenreHistory_Diff(t *testing.T) {
	g, err := NewGenre(GenreFields{Name: "Jungle", Akas: GenreAkas{Primary: []string{"Junglist"}}})
	require.NoError(t, err)
	before := NewGenreHistory(1, g, NewIDSet(2), NewIDSet(), NewIDSet(), HistoryOperationCreate, nil)

	next, err := g.WithUpdate(GenrePatch{
		Subtitle: ptr("UK"),
		Nsfw:     ptr(true),
	})
	require.NoError(t, err)
	after := NewGenreHistory(1, next, NewIDSet(2, 5), NewIDSet(), NewIDSet(), HistoryOperationUpdate, nil)

	assert.Equal(t, []FieldChange{
		{Field: "subtitle", Before: "", After: "UK"},
		{Field: "nsfw", Before: "false", After: "true"},
		{Field: "parents", Before: "2", After: "2, 5"},
	}, after.Diff(before))

	assert.Empty(t, after.Diff(after))
}

func TestGenreHistory_Diff_NoPrevious(t *testing.T) {
	g, err := NewGenre(GenreFields{Name: "Dub", Akas: GenreAkas{Secondary: []string{"Dub Reggae"}}})
	require.NoError(t, err)
	h := NewGenreHistory(1, g, NewIDSet(), NewIDSet(), NewIDSet(), HistoryOperationCreate, nil)

	assert.Equal(t, []FieldChange{
		{Field: "name", Before: "", After: "Dub"},
		{Field: "type", Before: "", After: "STYLE"},
		{Field: "akas", Before: "", After: " | Dub Reggae | "},
	}, h.Diff(nil))
}

func TestGenreHistory_Diff_AliasOrderIgnored(t *testing.T) {
	g, err := NewGenre(GenreFields{Name: "Jungle", Akas: GenreAkas{Primary: []string{"Ragga", "Darkside"}}})
	require.NoError(t, err)
	prev := NewGenreHistory(1, g.WithID(1), nil, nil, nil, HistoryOperationCreate, nil)

	next, err := g.WithUpdate(GenrePatch{
		Name: ptr("Jungle Music"),
		Akas: &GenreAkas{Primary: []string{"Darkside", "Ragga"}},
	})
	require.NoError(t, err)
	h := NewGenreHistory(1, next.WithID(1), nil, nil, nil, HistoryOperationUpdate, nil)

	changes := h.Diff(prev)
	require.Len(t, changes, 1)
	assert.Equal(t, "name", changes[0].Field)
}
