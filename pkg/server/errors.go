package server

import "errors"

// Server errors.
var (
	// ErrListNotMounted is returned when a list verb names a path with no
	// iterable scope mounted on it.
	ErrListNotMounted = errors.New("server: no list mounted at path")

	// ErrUnknownListVerb is returned for a list verb outside push, pop,
	// splice, move and delete.
	ErrUnknownListVerb = errors.New("server: unknown list verb")

	// ErrSnapshotsDisabled is returned when snapshot endpoints are hit
	// without a configured store.
	ErrSnapshotsDisabled = errors.New("server: snapshot store not configured")
)
