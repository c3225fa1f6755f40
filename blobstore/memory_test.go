package blobstore

import (
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	data := []byte("persistence diagram bytes")
	require.NoError(t, store.Put(ctx, "diagrams/a.pd", data))
	data[0] = 'X'

	got, err := ReadAll(ctx, store, "diagrams/a.pd")
	require.NoError(t, err)
	assert.Equal(t, "persistence diagram bytes", string(got))

	w, err := store.Create(ctx, "diagrams/b.pd")
	require.NoError(t, err)
	_, err = io.WriteString(w, "streamed")
	require.NoError(t, err)
	require.NoError(t, w.Sync())

	ok, err := Exists(ctx, store, "diagrams/b.pd")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, w.Close())
	ok, err = Exists(ctx, store, "diagrams/b.pd")
	require.NoError(t, err)
	assert.True(t, ok)

	blob, err := store.Open(ctx, "diagrams/b.pd")
	require.NoError(t, err)
	buf := make([]byte, 16)
	n, err := blob.ReadAt(ctx, buf, 2)
	assert.ErrorIs(t, err, io.EOF)
	assert.Equal(t, "reamed", string(buf[:n]))
	require.NoError(t, blob.Close())

	require.NoError(t, store.Put(ctx, "grids/g", nil))
	names, err := store.List(ctx, "diagrams/")
	require.NoError(t, err)
	assert.Equal(t, []string{"diagrams/a.pd", "diagrams/b.pd"}, names)
	assert.Equal(t, 3, store.Len())

	require.NoError(t, store.Delete(ctx, "diagrams/a.pd"))
	_, err = store.Open(ctx, "diagrams/a.pd")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore_Abort(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	w, err := store.Create(ctx, "partial")
	require.NoError(t, err)
	_, err = w.Write([]byte("half"))
	require.NoError(t, err)
	require.NoError(t, Abort(w))
	require.NoError(t, w.Close())

	exists, err := Exists(ctx, store, "partial")
	require.NoError(t, err)
	assert.False(t, exists)
}
