package storage

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStorage_SaveDeleteRoundTrip(t *testing.T) {
	store := NewMemoryStorage()
	ctx := context.Background()

	key, err := store.Save(ctx, "notes.txt", "text/plain", strings.NewReader("hello"))
	require.NoError(t, err)
	assert.NotEmpty(t, key)
	assert.Equal(t, 1, store.Len())

	url, err := store.DownloadURL(ctx, key, time.Minute)
	require.NoError(t, err)
	assert.Contains(t, url, key)

	require.NoError(t, store.Delete(ctx, key))
	assert.Zero(t, store.Len())

	_, err = store.DownloadURL(ctx, key, time.Minute)
	assert.Error(t, err)
}

func TestMemoryStorage_UniqueKeys(t *testing.T) {
	store := NewMemoryStorage()
	ctx := context.Background()

	a, err := store.Save(ctx, "same.txt", "text/plain", strings.NewReader("a"))
	require.NoError(t, err)
	b, err := store.Save(ctx, "same.txt", "text/plain", strings.NewReader("b"))
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
	assert.Equal(t, 2, store.Len())
}

func TestMemoryStorage_FailDelete(t *testing.T) {
	store := NewMemoryStorage()
	ctx := context.Background()

	key, err := store.Save(ctx, "stuck.txt", "text/plain", strings.NewReader("x"))
	require.NoError(t, err)

	store.FailDelete = true
	assert.Error(t, store.Delete(ctx, key))
	assert.Equal(t, 1, store.Len())
}
