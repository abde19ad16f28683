package domain

import (
	"fmt"

	apperrors "github.com/listenupapp/genregraph/internal/errors"
)

// GenreError is implemented by every failure a genre command can report.
// The set is closed: only types in this package satisfy it.
type GenreError interface {
	error
	genreError()
}

// UnauthorizedError reports that the acting account lacks a permission.
type UnauthorizedError struct {
	AccountID  int
	Permission Permission
}

func (e *UnauthorizedError) Error() string {
	return fmt.Sprintf("account %d lacks permission %s", e.AccountID, e.Permission)
}

func (e *UnauthorizedError) Unwrap() error { return apperrors.ErrUnauthorized }
func (*UnauthorizedError) genreError()     {}

// GenreNotFoundError reports a genre ID that does not resolve to a genre.
type GenreNotFoundError struct {
	ID int
}

func (e *GenreNotFoundError) Error() string {
	return fmt.Sprintf("genre %d not found", e.ID)
}

func (e *GenreNotFoundError) Unwrap() error { return apperrors.ErrNotFound }
func (*GenreNotFoundError) genreError()     {}

// DuplicateAkaError reports an alias that appears more than once across the AKA tiers.
// Tier is where the repeated occurrence was found.
type DuplicateAkaError struct {
	Alias string
	Tier  AkaTier
}

func (e *DuplicateAkaError) Error() string {
	return fmt.Sprintf("duplicate AKA %q in %s AKAs", e.Alias, e.Tier)
}

func (e *DuplicateAkaError) Unwrap() error { return apperrors.ErrValidation }
func (*DuplicateAkaError) genreError()     {}

// DerivedChildError reports an ID present in both the parents and derived-from sets.
type DerivedChildError struct {
	ID int
}

func (e *DerivedChildError) Error() string {
	return fmt.Sprintf("genre %d cannot be both a parent and derived-from", e.ID)
}

func (e *DerivedChildError) Unwrap() error { return apperrors.ErrValidation }
func (*DerivedChildError) genreError()     {}

// DerivedInfluenceError reports an ID present in both the derived-from and influences sets.
type DerivedInfluenceError struct {
	ID int
}

func (e *DerivedInfluenceError) Error() string {
	return fmt.Sprintf("genre %d cannot be both derived-from and an influence", e.ID)
}

func (e *DerivedInfluenceError) Unwrap() error { return apperrors.ErrValidation }
func (*DerivedInfluenceError) genreError()     {}

// SelfInfluenceError reports a genre listed among its own influences.
type SelfInfluenceError struct {
	ID int
}

func (e *SelfInfluenceError) Error() string {
	return fmt.Sprintf("genre %d cannot influence itself", e.ID)
}

func (e *SelfInfluenceError) Unwrap() error { return apperrors.ErrValidation }
func (*SelfInfluenceError) genreError()     {}

// GenreCycleError reports a proposed parent set that closes a loop in the hierarchy.
// Path reads from the mutated genre up through its ancestors and back, e.g. "A → B → A".
type GenreCycleError struct {
	Path string
}

func (e *GenreCycleError) Error() string {
	return "cycle detected: " + e.Path
}

func (e *GenreCycleError) Unwrap() error { return apperrors.ErrValidation }
func (*GenreCycleError) genreError()     {}

// InvalidGenreRelevanceError reports a relevance vote outside the accepted range.
type InvalidGenreRelevanceError struct {
	Value int
}

func (e *InvalidGenreRelevanceError) Error() string {
	return fmt.Sprintf("invalid genre relevance %d (must be %d-%d or %d to unset)",
		e.Value, MinGenreRelevance, MaxGenreRelevance, UnsetGenreRelevance)
}

func (e *InvalidGenreRelevanceError) Unwrap() error { return apperrors.ErrValidation }
func (*InvalidGenreRelevanceError) genreError()     {}
