package store

import (
	"errors"

	"github.com/dgraph-io/badger/v4"

	apperrors "github.com/listenupapp/genregraph/internal/errors"
)

// Sentinel errors. Both match the coded application errors through errors.Is.
var (
	ErrNotFound = apperrors.NotFound("resource not found")
	ErrConflict = apperrors.Conflict("concurrent modification, retry the command")
)

// translate maps Badger failures onto the store sentinels.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, badger.ErrKeyNotFound):
		return ErrNotFound.WithCause(err)
	case errors.Is(err, badger.ErrConflict):
		return ErrConflict.WithCause(err)
	default:
		return err
	}
}
