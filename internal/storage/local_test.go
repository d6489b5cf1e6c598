package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorageRoundTrip(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	ctx := context.Background()
	key := "documents/doc-1/report.txt"

	require.NoError(t, store.Upload(ctx, key, []byte("hello"), "text/plain"))

	data, err := store.Download(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), data)

	require.NoError(t, store.Delete(ctx, key))

	_, err = store.Download(ctx, key)
	assert.Error(t, err)
}

func TestLocalStorageRejectsEscapingKeys(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	ctx := context.Background()

	err = store.Upload(ctx, "../outside.txt", []byte("x"), "text/plain")
	assert.Error(t, err)

	_, err = store.Download(ctx, "../../etc/passwd")
	assert.Error(t, err)
}

func TestLocalStorageOverwrite(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	ctx := context.Background()
	key := "documents/doc-1/a.txt"

	require.NoError(t, store.Upload(ctx, key, []byte("first"), "text/plain"))
	require.NoError(t, store.Upload(ctx, key, []byte("second"), "text/plain"))

	data, err := store.Download(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, []byte("second"), data)
}
