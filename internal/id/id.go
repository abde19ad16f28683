// Package id generates string identifiers for records that are not keyed by
// the genre sequence.
package id

import (
	"fmt"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// GenreHistoryPrefix marks history entry IDs.
const GenreHistoryPrefix = "ghist"

// Generate returns prefix-<nanoid>, e.g. "ghist-V1StGXR8_Z5jdHi6B-myT".
func Generate(prefix string) (string, error) {
	id, err := gonanoid.New()
	if err != nil {
		return "", fmt.Errorf("generate nanoid: %w", err)
	}
	return prefix + "-" + id, nil
}

// NewGenreHistoryID returns an ID for a genre history entry.
func NewGenreHistoryID() (string, error) {
	return Generate(GenreHistoryPrefix)
}
