package domain

import (
	"slices"
	"time"
)

// GenreRelevanceVote is one account's opinion of how relevant a genre is.
type GenreRelevanceVote struct {
	GenreID   int       `json:"genre_id"`
	AccountID int       `json:"account_id"`
	Relevance int       `json:"relevance"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewGenreRelevanceVote creates a vote stamped with the current time.
func NewGenreRelevanceVote(genreID, accountID, relevance int) *GenreRelevanceVote {
	now := time.Now()
	return &GenreRelevanceVote{
		GenreID:   genreID,
		AccountID: accountID,
		Relevance: relevance,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// ValidateGenreRelevance accepts values in MinGenreRelevance..MaxGenreRelevance
// and UnsetGenreRelevance, which retracts a vote.
func ValidateGenreRelevance(value int) error {
	if value == UnsetGenreRelevance {
		return nil
	}
	if value < MinGenreRelevance || value > MaxGenreRelevance {
		return &InvalidGenreRelevanceError{Value: value}
	}
	return nil
}

// MedianGenreRelevance aggregates votes into a genre's relevance: the median,
// with an even count averaging the two middle values and rounding half up.
// No votes yields UnsetGenreRelevance.
func MedianGenreRelevance(votes []*GenreRelevanceVote) int {
	if len(votes) == 0 {
		return UnsetGenreRelevance
	}
	values := make([]int, len(votes))
	for i, v := range votes {
		values[i] = v.Relevance
	}
	slices.Sort(values)

	mid := len(values) / 2
	if len(values)%2 == 1 {
		return values[mid]
	}
	// Values are non-negative, so integer division after +1 rounds half up.
	return (values[mid-1] + values[mid] + 1) / 2
}
