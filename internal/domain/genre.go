package domain

import (
	"slices"
	"time"

	apperrors "github.com/listenupapp/genregraph/internal/errors"
	"github.com/listenupapp/genregraph/internal/genre"
)

// GenreType classifies what kind of thing a genre describes.
type GenreType string

// Genre types.
const (
	GenreTypeMeta     GenreType = "META"
	GenreTypeMovement GenreType = "MOVEMENT"
	GenreTypeScene    GenreType = "SCENE"
	GenreTypeStyle    GenreType = "STYLE"
	GenreTypeTrend    GenreType = "TREND"
)

// DefaultGenreType is used when a genre is created without a type.
const DefaultGenreType = GenreTypeStyle

// Valid reports whether t is one of the known genre types.
func (t GenreType) Valid() bool {
	switch t {
	case GenreTypeMeta, GenreTypeMovement, GenreTypeScene, GenreTypeStyle, GenreTypeTrend:
		return true
	default:
		return false
	}
}

// Relevance bounds. UnsetGenreRelevance marks a genre nobody has voted on.
const (
	MinGenreRelevance   = 0
	MaxGenreRelevance   = 7
	UnsetGenreRelevance = 99
)

// AkaTier names one of the three alias lists.
type AkaTier string

// AKA tiers, in scan order.
const (
	AkaTierPrimary   AkaTier = "primary"
	AkaTierSecondary AkaTier = "secondary"
	AkaTierTertiary  AkaTier = "tertiary"
)

// GenreAkas holds a genre's alternative names, most common first.
type GenreAkas struct {
	Primary   []string `json:"primary"`
	Secondary []string `json:"secondary"`
	Tertiary  []string `json:"tertiary"`
}

// Tier returns the aliases stored under tier.
func (a GenreAkas) Tier(tier AkaTier) []string {
	switch tier {
	case AkaTierPrimary:
		return a.Primary
	case AkaTierSecondary:
		return a.Secondary
	case AkaTierTertiary:
		return a.Tertiary
	default:
		return nil
	}
}

// Equal compares tier by tier. Order within a tier does not matter; an alias
// moved to another tier does.
func (a GenreAkas) Equal(other GenreAkas) bool {
	return sameAliases(a.Primary, other.Primary) &&
		sameAliases(a.Secondary, other.Secondary) &&
		sameAliases(a.Tertiary, other.Tertiary)
}

func sameAliases(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	return slices.Equal(slices.Sorted(slices.Values(a)), slices.Sorted(slices.Values(b)))
}

// IsEmpty reports whether no tier holds an alias.
func (a GenreAkas) IsEmpty() bool {
	return len(a.Primary) == 0 && len(a.Secondary) == 0 && len(a.Tertiary) == 0
}

func (a GenreAkas) clone() GenreAkas {
	return GenreAkas{
		Primary:   slices.Clone(a.Primary),
		Secondary: slices.Clone(a.Secondary),
		Tertiary:  slices.Clone(a.Tertiary),
	}
}

// normalized trims every alias and drops the ones left empty.
func (a GenreAkas) normalized() GenreAkas {
	return GenreAkas{
		Primary:   normalizeAliases(a.Primary),
		Secondary: normalizeAliases(a.Secondary),
		Tertiary:  normalizeAliases(a.Tertiary),
	}
}

// firstDuplicate scans primary, secondary, then tertiary and reports the first
// alias already seen in this or an earlier tier.
func (a GenreAkas) firstDuplicate() *DuplicateAkaError {
	seen := make(map[string]struct{})
	for _, tier := range []AkaTier{AkaTierPrimary, AkaTierSecondary, AkaTierTertiary} {
		for _, alias := range a.Tier(tier) {
			if _, dup := seen[alias]; dup {
				return &DuplicateAkaError{Alias: alias, Tier: tier}
			}
			seen[alias] = struct{}{}
		}
	}
	return nil
}

func normalizeAliases(aliases []string) []string {
	out := make([]string, 0, len(aliases))
	for _, alias := range aliases {
		if alias = genre.Normalize(alias); alias != "" {
			out = append(out, alias)
		}
	}
	return out
}

// Genre is a catalogued music style. Values are treated as immutable:
// updates go through WithUpdate, which returns a new Genre.
type Genre struct {
	ID               int       `json:"id"` // 0 until persisted
	Name             string    `json:"name"`
	Subtitle         *string   `json:"subtitle,omitempty"`
	Type             GenreType `json:"type"`
	Nsfw             bool      `json:"nsfw"`
	ShortDescription *string   `json:"short_description,omitempty"`
	LongDescription  *string   `json:"long_description,omitempty"`
	Notes            *string   `json:"notes,omitempty"`
	Akas             GenreAkas `json:"akas"`
	Relevance        int       `json:"relevance"` // UnsetGenreRelevance until voted on
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// GenreFields are the user-editable attributes of a genre.
type GenreFields struct {
	Name             string
	Subtitle         *string
	Type             GenreType
	Nsfw             bool
	ShortDescription *string
	LongDescription  *string
	Notes            *string
	Akas             GenreAkas
}

// NewGenre builds a validated, unpersisted genre.
// Returns *DuplicateAkaError when an alias repeats across the tiers.
func NewGenre(fields GenreFields) (*Genre, error) {
	now := time.Now()
	g := &Genre{
		Name:             fields.Name,
		Subtitle:         fields.Subtitle,
		Type:             fields.Type,
		Nsfw:             fields.Nsfw,
		ShortDescription: fields.ShortDescription,
		LongDescription:  fields.LongDescription,
		Notes:            fields.Notes,
		Akas:             fields.Akas,
		Relevance:        UnsetGenreRelevance,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := g.normalize(); err != nil {
		return nil, err
	}
	return g, nil
}

// GenrePatch is a partial update. Nil fields keep the current value; a pointer to
// an empty string clears an optional field.
type GenrePatch struct {
	Name             *string
	Subtitle         *string
	Type             *GenreType
	Nsfw             *bool
	ShortDescription *string
	LongDescription  *string
	Notes            *string
	Akas             *GenreAkas
}

// WithUpdate returns a copy of g with the patch applied and revalidated.
// CreatedAt is kept; UpdatedAt is stamped with the current time.
func (g *Genre) WithUpdate(patch GenrePatch) (*Genre, error) {
	next := g.clone()
	if patch.Name != nil {
		next.Name = *patch.Name
	}
	if patch.Subtitle != nil {
		next.Subtitle = patch.Subtitle
	}
	if patch.Type != nil {
		next.Type = *patch.Type
	}
	if patch.Nsfw != nil {
		next.Nsfw = *patch.Nsfw
	}
	if patch.ShortDescription != nil {
		next.ShortDescription = patch.ShortDescription
	}
	if patch.LongDescription != nil {
		next.LongDescription = patch.LongDescription
	}
	if patch.Notes != nil {
		next.Notes = patch.Notes
	}
	if patch.Akas != nil {
		next.Akas = patch.Akas.clone()
	}
	next.UpdatedAt = time.Now()

	if err := next.normalize(); err != nil {
		return nil, err
	}
	return next, nil
}

// WithID returns a copy of g carrying the persisted ID.
func (g *Genre) WithID(id int) *Genre {
	next := g.clone()
	next.ID = id
	return next
}

// IsChangedFrom reports whether g and the given relations differ from the last
// history snapshot. Relation sets and alias tiers compare without regard to order.
// A missing snapshot always counts as a change.
func (g *Genre) IsChangedFrom(parents, derivedFrom, influences IDSet, last *GenreHistory) bool {
	if last == nil {
		return true
	}
	return g.Name != last.Name ||
		!equalOptional(g.Subtitle, last.Subtitle) ||
		g.Type != last.Type ||
		g.Nsfw != last.Nsfw ||
		!equalOptional(g.ShortDescription, last.ShortDescription) ||
		!equalOptional(g.LongDescription, last.LongDescription) ||
		!equalOptional(g.Notes, last.Notes) ||
		!g.Akas.Equal(last.Akas) ||
		!parents.Equal(NewIDSet(last.ParentIDs...)) ||
		!derivedFrom.Equal(NewIDSet(last.DerivedFromIDs...)) ||
		!influences.Equal(NewIDSet(last.InfluenceIDs...))
}

func (g *Genre) normalize() error {
	g.Name = genre.Normalize(g.Name)
	if g.Name == "" {
		return apperrors.ValidationWithDetails("validation failed", map[string]string{"name": "is required"})
	}
	if g.Type == "" {
		g.Type = DefaultGenreType
	}
	if !g.Type.Valid() {
		return apperrors.ValidationWithDetails("validation failed", map[string]string{"type": "is invalid"})
	}
	g.Subtitle = normalizeOptional(g.Subtitle)
	g.ShortDescription = normalizeOptional(g.ShortDescription)
	g.LongDescription = normalizeOptional(g.LongDescription)
	g.Notes = normalizeOptional(g.Notes)
	g.Akas = g.Akas.normalized()

	if dup := g.Akas.firstDuplicate(); dup != nil {
		return dup
	}
	return nil
}

func (g *Genre) clone() *Genre {
	next := *g
	next.Akas = g.Akas.clone()
	return &next
}

func normalizeOptional(s *string) *string {
	if s == nil {
		return nil
	}
	v := genre.Normalize(*s)
	if v == "" {
		return nil
	}
	return &v
}

func equalOptional(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
