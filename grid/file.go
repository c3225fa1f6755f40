package grid

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/hupe1980/homcubes/blobstore"
	"github.com/hupe1980/homcubes/internal/mmap"
)

// LoadFile reads a DIPHA image file through a read-only memory mapping.
func LoadFile(path string) (*Grid, error) {
	m, err := mmap.Open(path)
	if err != nil {
		return nil, fmt.Errorf("grid: open %s: %w", path, err)
	}
	defer m.Close()

	shape, off, err := decodeHeader(m.Bytes())
	if err != nil {
		return nil, fmt.Errorf("grid: %s: %w", path, err)
	}
	n := numVertices(shape)
	if m.Len()-off != 8*n {
		return nil, fmt.Errorf("grid: %s: %w: %d value bytes for %d values", path, ErrCorrupt, m.Len()-off, n)
	}

	raw, err := m.View(off, 8*n, mmap.Sequential)
	if err != nil {
		return nil, fmt.Errorf("grid: %s: %w", path, err)
	}
	return &Grid{Shape: shape, Values: decodeValues(raw, n)}, nil
}

// SaveFile writes g as a DIPHA image file. The file appears atomically.
func SaveFile(path string, g *Grid) error {
	store := blobstore.NewLocalStore(filepath.Dir(path))
	return Save(context.Background(), store, filepath.Base(path), g)
}

// Load reads the DIPHA image stored under name.
func Load(ctx context.Context, store blobstore.BlobStore, name string) (*Grid, error) {
	data, err := blobstore.ReadAll(ctx, store, name)
	if err != nil {
		return nil, fmt.Errorf("grid: load %s: %w", name, err)
	}
	g := &Grid{}
	if err := g.UnmarshalBinary(data); err != nil {
		return nil, fmt.Errorf("grid: load %s: %w", name, err)
	}
	return g, nil
}

// Save streams g as a DIPHA image into store under name.
func Save(ctx context.Context, store blobstore.BlobStore, name string, g *Grid) error {
	w, err := store.Create(ctx, name)
	if err != nil {
		return fmt.Errorf("grid: save %s: %w", name, err)
	}
	if _, err := g.WriteTo(w); err != nil {
		return errors.Join(fmt.Errorf("grid: save %s: %w", name, err), blobstore.Abort(w))
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("grid: save %s: %w", name, err)
	}
	return nil
}
