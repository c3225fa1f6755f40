package mmap

import (
	"errors"
	"fmt"
	"os"
	"sync/atomic"
)

// Advice is a hint about how a view will be read.
type Advice int

const (
	// Normal gives no hint.
	Normal Advice = iota
	// Sequential announces a single front-to-back pass.
	Sequential
	// WillNeed asks the kernel to start reading ahead.
	WillNeed
)

var (
	// ErrClosed is returned by views of a closed mapping.
	ErrClosed = errors.New("mmap: mapping is closed")
	// ErrOutOfBounds is returned for views outside the mapping.
	ErrOutOfBounds = errors.New("mmap: view out of bounds")
)

// Mapping is a read-only memory-mapped file.
type Mapping struct {
	data   []byte
	closed atomic.Bool
	unmap  func([]byte) error
}

// Open maps the file at path read-only. Empty files yield an empty mapping.
func Open(path string) (*Mapping, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return nil, err
	}
	size := fi.Size()
	if size == 0 {
		return &Mapping{}, nil
	}
	if int64(int(size)) != size {
		return nil, fmt.Errorf("mmap: %s: %d bytes do not fit the address space", path, size)
	}

	data, unmap, err := osMap(f, int(size))
	if err != nil {
		return nil, fmt.Errorf("mmap: %s: %w", path, err)
	}
	return &Mapping{data: data, unmap: unmap}, nil
}

// Close unmaps the file. It is idempotent.
func (m *Mapping) Close() error {
	if m.closed.Swap(true) || m.unmap == nil {
		return nil
	}
	return m.unmap(m.data)
}

// Len returns the size of the file in bytes.
func (m *Mapping) Len() int { return len(m.data) }

// Bytes returns the whole mapping, or nil after Close.
func (m *Mapping) Bytes() []byte {
	if m.closed.Load() {
		return nil
	}
	return m.data
}

// View returns n bytes starting at off and passes advice for the pages
// they span. The slice is valid until Close.
func (m *Mapping) View(off, n int, advice Advice) ([]byte, error) {
	if m.closed.Load() {
		return nil, ErrClosed
	}
	if off < 0 || n < 0 || off > len(m.data)-n {
		return nil, fmt.Errorf("%w: [%d,%d) of %d bytes", ErrOutOfBounds, off, off+n, len(m.data))
	}
	if n > 0 && advice != Normal {
		// madvise needs a page-aligned start.
		start := off &^ (os.Getpagesize() - 1)
		if err := osAdvise(m.data[start:off+n], advice); err != nil {
			return nil, fmt.Errorf("mmap: advise: %w", err)
		}
	}
	return m.data[off : off+n], nil
}
