package snapshot

import (
	"context"
	"errors"
	"time"

	"github.com/vmihailenco/msgpack/v5"
)

// Store errors.
var (
	// ErrNotFound is returned when no snapshot exists under the given ID.
	ErrNotFound = errors.New("snapshot: not found")
)

// Snapshot is one persisted document state: the reference graph and the
// rendered tree as of capture time.
type Snapshot struct {
	ID        string         `msgpack:"id"`
	CreatedAt time.Time      `msgpack:"created_at"`
	Graph     map[string]any `msgpack:"graph"`
	HTML      string         `msgpack:"html"`
}

// Store persists document snapshots.
type Store interface {
	// Save persists the snapshot under its ID.
	Save(ctx context.Context, s *Snapshot) error

	// Load retrieves the snapshot with the given ID.
	// Returns ErrNotFound if it does not exist.
	Load(ctx context.Context, id string) (*Snapshot, error)

	// Delete removes the snapshot with the given ID.
	// Deleting a missing snapshot is not an error.
	Delete(ctx context.Context, id string) error
}

// Encode serializes the snapshot.
func Encode(s *Snapshot) ([]byte, error) {
	return msgpack.Marshal(s)
}

// Decode deserializes a snapshot.
func Decode(data []byte) (*Snapshot, error) {
	var s Snapshot
	if err := msgpack.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	return &s, nil
}
