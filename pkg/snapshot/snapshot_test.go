package snapshot

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sample() *Snapshot {
	return &Snapshot{
		ID:        "snap-1",
		CreatedAt: time.Date(2025, 3, 9, 12, 30, 0, 0, time.UTC),
		Graph: map[string]any{
			"title": "rocks",
			"user":  map[string]any{"name": "ada"},
			"tags":  []any{"a", "b"},
		},
		HTML: `<div data-rid="n1">rocks</div>`,
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	data, err := Encode(sample())
	require.NoError(t, err)

	got, err := Decode(data)
	require.NoError(t, err)

	assert.Equal(t, "snap-1", got.ID)
	assert.True(t, got.CreatedAt.Equal(sample().CreatedAt))
	assert.Equal(t, sample().HTML, got.HTML)
	assert.Equal(t, "rocks", got.Graph["title"])
	user, ok := got.Graph["user"].(map[string]any)
	require.True(t, ok, "nested map type: %T", got.Graph["user"])
	assert.Equal(t, "ada", user["name"])
	assert.Len(t, got.Graph["tags"], 2)
}

func TestDecodeGarbage(t *testing.T) {
	_, err := Decode([]byte{0xC1, 0xFF})
	assert.Error(t, err)
}

func TestMemoryStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	require.NoError(t, store.Save(ctx, sample()))
	assert.Equal(t, 1, store.Len())

	got, err := store.Load(ctx, "snap-1")
	require.NoError(t, err)
	assert.Equal(t, sample().HTML, got.HTML)
}

func TestMemoryStoreMissing(t *testing.T) {
	_, err := NewMemoryStore().Load(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStoreDelete(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	require.NoError(t, store.Save(ctx, sample()))

	require.NoError(t, store.Delete(ctx, "snap-1"))
	assert.Equal(t, 0, store.Len())

	// Deleting again is not an error.
	require.NoError(t, store.Delete(ctx, "snap-1"))
}

func TestMemoryStoreOverwrite(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	require.NoError(t, store.Save(ctx, sample()))

	s := sample()
	s.HTML = "<p></p>"
	require.NoError(t, store.Save(ctx, s))

	got, err := store.Load(ctx, "snap-1")
	require.NoError(t, err)
	assert.Equal(t, "<p></p>", got.HTML)
	assert.Equal(t, 1, store.Len())
}
