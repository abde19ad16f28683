package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// HistoryOperation is the kind of mutation a history snapshot records.
type HistoryOperation string

// History operations.
const (
	HistoryOperationCreate HistoryOperation = "CREATE"
	HistoryOperationUpdate HistoryOperation = "UPDATE"
	HistoryOperationDelete HistoryOperation = "DELETE"
)

// GenreHistory is an append-only snapshot of a genre's full state at one
// mutation. Snapshots outlive the genre they describe.
type GenreHistory struct {
	ID               string           `json:"id"` // assigned by the store on create
	GenreID          int              `json:"genre_id"`
	Name             string           `json:"name"`
	Subtitle         *string          `json:"subtitle,omitempty"`
	Type             GenreType        `json:"type"`
	Nsfw             bool             `json:"nsfw"`
	ShortDescription *string          `json:"short_description,omitempty"`
	LongDescription  *string          `json:"long_description,omitempty"`
	Notes            *string          `json:"notes,omitempty"`
	Akas             GenreAkas        `json:"akas"`
	ParentIDs        []int            `json:"parent_ids"`
	DerivedFromIDs   []int            `json:"derived_from_ids"`
	InfluenceIDs     []int            `json:"influence_ids"`
	Operation        HistoryOperation `json:"operation"`
	AccountID        *int             `json:"account_id,omitempty"` // nil once the account is gone
	CreatedAt        time.Time        `json:"created_at"`
}

// NewGenreHistory snapshots a genre and its relations. The timestamp is always
// the moment of the call, independent of the genre's own timestamps, so history
// order follows real mutation order.
func NewGenreHistory(genreID int, g *Genre, parents, derivedFrom, influences IDSet, op HistoryOperation, accountID *int) *GenreHistory {
	akas := g.Akas.clone()
	return &GenreHistory{
		GenreID:          genreID,
		Name:             g.Name,
		Subtitle:         copyOptional(g.Subtitle),
		Type:             g.Type,
		Nsfw:             g.Nsfw,
		ShortDescription: copyOptional(g.ShortDescription),
		LongDescription:  copyOptional(g.LongDescription),
		Notes:            copyOptional(g.Notes),
		Akas:             akas,
		ParentIDs:        orEmpty(parents).Sorted(),
		DerivedFromIDs:   orEmpty(derivedFrom).Sorted(),
		InfluenceIDs:     orEmpty(influences).Sorted(),
		Operation:        op,
		AccountID:        copyOptionalInt(accountID),
		CreatedAt:        time.Now(),
	}
}

// FieldChange is one attribute that differs between two snapshots.
type FieldChange struct {
	Field  string `json:"field"`
	Before string `json:"before"`
	After  string `json:"after"`
}

// Diff lists the fields that changed from prev to h, in a fixed field order.
// With a nil prev every non-empty field of h is reported.
func (h *GenreHistory) Diff(prev *GenreHistory) []FieldChange {
	if prev == nil {
		prev = &GenreHistory{}
	}
	var changes []FieldChange
	add := func(field, before, after string) {
		if before != after {
			changes = append(changes, FieldChange{Field: field, Before: before, After: after})
		}
	}

	add("name", prev.Name, h.Name)
	add("subtitle", renderOptional(prev.Subtitle), renderOptional(h.Subtitle))
	add("type", string(prev.Type), string(h.Type))
	if prev.Nsfw != h.Nsfw {
		changes = append(changes, FieldChange{Field: "nsfw", Before: strconv.FormatBool(prev.Nsfw), After: strconv.FormatBool(h.Nsfw)})
	}
	add("shortDescription", renderOptional(prev.ShortDescription), renderOptional(h.ShortDescription))
	add("longDescription", renderOptional(prev.LongDescription), renderOptional(h.LongDescription))
	add("notes", renderOptional(prev.Notes), renderOptional(h.Notes))
	if !prev.Akas.Equal(h.Akas) {
		changes = append(changes, FieldChange{Field: "akas", Before: renderAkas(prev.Akas), After: renderAkas(h.Akas)})
	}
	add("parents", renderIDs(prev.ParentIDs), renderIDs(h.ParentIDs))
	add("derivedFrom", renderIDs(prev.DerivedFromIDs), renderIDs(h.DerivedFromIDs))
	add("influences", renderIDs(prev.InfluenceIDs), renderIDs(h.InfluenceIDs))
	return changes
}

func renderOptional(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func renderIDs(ids []int) string {
	sorted := NewIDSet(ids...).Sorted()
	parts := make([]string, len(sorted))
	for i, id := range sorted {
		parts[i] = strconv.Itoa(id)
	}
	return strings.Join(parts, ", ")
}

func renderAkas(a GenreAkas) string {
	if a.IsEmpty() {
		return ""
	}
	return fmt.Sprintf("%s | %s | %s",
		strings.Join(a.Primary, ", "),
		strings.Join(a.Secondary, ", "),
		strings.Join(a.Tertiary, ", "))
}

func copyOptional(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

func copyOptionalInt(i *int) *int {
	if i == nil {
		return nil
	}
	v := *i
	return &v
}
