package minio

import (
	"context"
	"io"
	"os"
	"testing"

	"github.com/hupe1980/homcubes/blobstore"
	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_KeyMapping(t *testing.T) {
	s := NewStore(nil, "bucket", "homcubes/")

	assert.Equal(t, "homcubes/runs/a/diagram.pd", s.key("runs/a/diagram.pd"))
	assert.Equal(t, "homcubes", s.key(""))
	assert.Equal(t, "runs/a/diagram.pd", s.name("homcubes/runs/a/diagram.pd"))
	assert.Equal(t, "bucket", s.Bucket())
}

func TestBlob_Clamp(t *testing.T) {
	b := &minioBlob{size: 10}

	assert.Equal(t, int64(4), b.clamp(0, 5))
	assert.Equal(t, int64(9), b.clamp(7, 8))
}

func TestBlob_ReadOutOfRange(t *testing.T) {
	b := &minioBlob{size: 4}
	ctx := context.Background()

	n, err := b.ReadAt(ctx, make([]byte, 2), 4)
	assert.Zero(t, n)
	assert.ErrorIs(t, err, io.EOF)

	rc, err := b.ReadRange(ctx, 4, 3)
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Empty(t, data)
}

// TestStore_Integration needs a running MinIO; set HOMCUBES_MINIO_ENDPOINT
// (for example localhost:9000) to enable it.
func TestStore_Integration(t *testing.T) {
	endpoint := os.Getenv("HOMCUBES_MINIO_ENDPOINT")
	if endpoint == "" {
		t.Skip("HOMCUBES_MINIO_ENDPOINT not set")
	}

	ctx := context.Background()
	const bucket = "test-homcubes"

	store, err := New(endpoint, bucket,
		WithCredentials("minioadmin", "minioadmin"),
		WithPrefix("test-prefix/"),
	)
	require.NoError(t, err)

	if _, err := store.client.ListBuckets(ctx); err != nil {
		t.Skipf("MinIO not available: %v", err)
	}
	exists, err := store.client.BucketExists(ctx, bucket)
	require.NoError(t, err)
	if !exists {
		require.NoError(t, store.client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}))
	}

	data := []byte("hello minio world")
	require.NoError(t, store.Put(ctx, "runs/a/diagram.pd", data))

	got, err := blobstore.ReadAll(ctx, store, "runs/a/diagram.pd")
	require.NoError(t, err)
	assert.Equal(t, data, got)

	blob, err := store.Open(ctx, "runs/a/diagram.pd")
	require.NoError(t, err)
	rc, err := blob.ReadRange(ctx, 6, 5)
	require.NoError(t, err)
	part, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "minio", string(part))
	require.NoError(t, rc.Close())
	require.NoError(t, blob.Close())

	names, err := store.List(ctx, "runs/")
	require.NoError(t, err)
	assert.Contains(t, names, "runs/a/diagram.pd")

	require.NoError(t, store.Delete(ctx, "runs/a/diagram.pd"))
	_, err = store.Open(ctx, "runs/a/diagram.pd")
	assert.ErrorIs(t, err, blobstore.ErrNotFound)

	wb, err := store.Create(ctx, "stream.bin")
	require.NoError(t, err)
	_, err = wb.Write([]byte("streamed data"))
	require.NoError(t, err)
	require.NoError(t, wb.Close())

	blob, err = store.Open(ctx, "stream.bin")
	require.NoError(t, err)
	assert.Equal(t, int64(13), blob.Size())
	require.NoError(t, blob.Close())

	_ = store.Delete(ctx, "stream.bin")
}
