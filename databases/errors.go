package databases

import (
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"
)

var (
	// ErrNotFound means the addressed record does not exist
	ErrNotFound = errors.New("record not found")
	// ErrParentMissing means a child record names a case that does not exist.
	// It matches ErrNotFound under errors.Is.
	ErrParentMissing = fmt.Errorf("parent case missing: %w", ErrNotFound)
	// ErrStorageUnavailable means MongoDB could not be reached
	ErrStorageUnavailable = errors.New("storage unavailable")
)

// wrapStorageErr tags connectivity failures with ErrStorageUnavailable and
// maps a missing document onto ErrNotFound. Other errors pass through.
func wrapStorageErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	case mongo.IsNetworkError(err), mongo.IsTimeout(err), errors.Is(err, mongo.ErrClientDisconnected):
		return fmt.Errorf("%w: %w", ErrStorageUnavailable, err)
	}
	return err
}
