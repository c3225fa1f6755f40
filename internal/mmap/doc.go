// Package mmap maps DIPHA files read-only into memory so the grid loader
// decodes values straight from the page cache.
//
//	m, err := mmap.Open("image.dipha")
//	if err != nil { ... }
//	defer m.Close()
//	values, err := m.View(off, 8*n, mmap.Sequential)
//
// Views are plain byte slices and become invalid after Close.
package mmap
