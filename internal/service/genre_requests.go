package service

import (
	"github.com/listenupapp/genregraph/internal/domain"
)

// GenreAkasInput carries the three alias tiers of a request.
type GenreAkasInput struct {
	Primary   []string `json:"primary" validate:"max=50,dive,max=100"`
	Secondary []string `json:"secondary" validate:"max=50,dive,max=100"`
	Tertiary  []string `json:"tertiary" validate:"max=50,dive,max=100"`
}

func (a GenreAkasInput) toDomain() domain.GenreAkas {
	return domain.GenreAkas{
		Primary:   a.Primary,
		Secondary: a.Secondary,
		Tertiary:  a.Tertiary,
	}
}

// CreateGenreRequest contains fields for creating a genre.
type CreateGenreRequest struct {
	Name             string           `json:"name" validate:"required,max=100"`
	Subtitle         *string          `json:"subtitle,omitempty" validate:"omitnil,max=100"`
	Type             domain.GenreType `json:"type,omitempty" validate:"genretype"`
	Nsfw             bool             `json:"nsfw"`
	ShortDescription *string          `json:"short_description,omitempty" validate:"omitnil,max=500"`
	LongDescription  *string          `json:"long_description,omitempty" validate:"omitnil,max=10000"`
	Notes            *string          `json:"notes,omitempty" validate:"omitnil,max=10000"`
	Akas             GenreAkasInput   `json:"akas"`
	ParentIDs        []int            `json:"parent_genre_ids" validate:"dive,gt=0"`
	DerivedFromIDs   []int            `json:"derived_from_genre_ids" validate:"dive,gt=0"`
	InfluenceIDs     []int            `json:"influenced_by_genre_ids" validate:"dive,gt=0"`
}

func (r CreateGenreRequest) fields() domain.GenreFields {
	return domain.GenreFields{
		Name:             r.Name,
		Subtitle:         r.Subtitle,
		Type:             r.Type,
		Nsfw:             r.Nsfw,
		ShortDescription: r.ShortDescription,
		LongDescription:  r.LongDescription,
		Notes:            r.Notes,
		Akas:             r.Akas.toDomain(),
	}
}

// UpdateGenreRequest is a partial update. Nil fields are left unchanged; a
// pointer to an empty string clears an optional text field, and a pointer to an
// empty slice clears a relation.
type UpdateGenreRequest struct {
	Name             *string           `json:"name,omitempty" validate:"omitnil,max=100"`
	Subtitle         *string           `json:"subtitle,omitempty" validate:"omitnil,max=100"`
	Type             *domain.GenreType `json:"type,omitempty" validate:"omitnil,genretype"`
	Nsfw             *bool             `json:"nsfw,omitempty"`
	ShortDescription *string           `json:"short_description,omitempty" validate:"omitnil,max=500"`
	LongDescription  *string           `json:"long_description,omitempty" validate:"omitnil,max=10000"`
	Notes            *string           `json:"notes,omitempty" validate:"omitnil,max=10000"`
	Akas             *GenreAkasInput   `json:"akas,omitempty"`
	ParentIDs        *[]int            `json:"parent_genre_ids,omitempty" validate:"omitnil,dive,gt=0"`
	DerivedFromIDs   *[]int            `json:"derived_from_genre_ids,omitempty" validate:"omitnil,dive,gt=0"`
	InfluenceIDs     *[]int            `json:"influenced_by_genre_ids,omitempty" validate:"omitnil,dive,gt=0"`
}

func (r UpdateGenreRequest) patch() domain.GenrePatch {
	p := domain.GenrePatch{
		Name:             r.Name,
		Subtitle:         r.Subtitle,
		Type:             r.Type,
		Nsfw:             r.Nsfw,
		ShortDescription: r.ShortDescription,
		LongDescription:  r.LongDescription,
		Notes:            r.Notes,
	}
	if r.Akas != nil {
		akas := r.Akas.toDomain()
		p.Akas = &akas
	}
	return p
}

// relationOr returns the requested set when present, else the current one.
func relationOr(requested *[]int, current domain.IDSet) domain.IDSet {
	if requested == nil {
		return current
	}
	return domain.NewIDSet(*requested...)
}
