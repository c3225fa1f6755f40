package homcubes

import (
	"errors"
	"fmt"

	"github.com/hupe1980/homcubes/blobstore"
	"github.com/hupe1980/homcubes/grid"
	"github.com/hupe1980/homcubes/internal/bitmap"
	"github.com/hupe1980/homcubes/internal/cube"
	"github.com/hupe1980/homcubes/internal/geometry"
	"github.com/hupe1980/homcubes/internal/reducer"
	"github.com/hupe1980/homcubes/resource"
)

var (
	// ErrInvalidShape is returned for grids that are not 2D or 3D or have an
	// axis with a non-positive extent.
	ErrInvalidShape = errors.New("homcubes: invalid shape")

	// ErrNonFinite is returned when a grid value is NaN or infinite.
	ErrNonFinite = errors.New("homcubes: value is not finite")

	// ErrInvariant is returned when the reduction reaches a state a correct
	// computation never produces. It indicates a bug, not bad input.
	ErrInvariant = errors.New("homcubes: internal invariant violated")

	// ErrOutOfMemory is returned when the estimated memory of a computation
	// exceeds the budget of the resource controller.
	ErrOutOfMemory = errors.New("homcubes: out of memory")

	// ErrNotFound is returned when an archived run does not exist.
	ErrNotFound = errors.New("homcubes: not found")
)

// ErrShapeTooLarge indicates a shape whose cubes cannot be identified with
// 64 bits or whose vertices cannot be ranked with 32-bit levels.
//
// The original underlying error can be accessed via errors.Unwrap.
type ErrShapeTooLarge struct {
	// Axis is the first axis that does not fit, or -1 when the vertex
	// count is the limit.
	Axis   int
	Extent int
	// Bits is the identifier width needed up to and including Axis.
	Bits  int
	cause error
}

func (e *ErrShapeTooLarge) Error() string {
	if e.Axis < 0 {
		return fmt.Sprintf("shape too large: more than %d vertices", maxVertices)
	}
	return fmt.Sprintf("shape too large: axis %d with extent %d needs %d identifier bits, at most 64 are available", e.Axis, e.Extent, e.Bits)
}

func (e *ErrShapeTooLarge) Unwrap() error { return e.cause }

// ErrPeriodicityMismatch indicates a periodicity flag list whose length is
// neither zero nor the rank.
//
// The original underlying error can be accessed via errors.Unwrap.
type ErrPeriodicityMismatch struct {
	Rank  int
	Flags int
	cause error
}

func (e *ErrPeriodicityMismatch) Error() string {
	return fmt.Sprintf("periodicity mismatch: %d flags for rank %d", e.Flags, e.Rank)
}

func (e *ErrPeriodicityMismatch) Unwrap() error { return e.cause }

// ErrValueCount indicates a value list whose length is not the product of
// the extents.
//
// The original underlying error can be accessed via errors.Unwrap.
type ErrValueCount struct {
	Expected int
	Actual   int
	cause    error
}

func (e *ErrValueCount) Error() string {
	return fmt.Sprintf("value count mismatch: expected %d, got %d", e.Expected, e.Actual)
}

func (e *ErrValueCount) Unwrap() error { return e.cause }

const maxVertices = 1<<32 - 2

func translateError(err error) error {
	if err == nil {
		return nil
	}

	// Shape and configuration errors.
	var bw *cube.ErrBitWidth
	if errors.As(err, &bw) {
		return &ErrShapeTooLarge{Axis: bw.Axis, Extent: bw.Extent, Bits: int(bw.Bits), cause: err}
	}
	if errors.Is(err, geometry.ErrTooManyVertices) {
		return &ErrShapeTooLarge{Axis: -1, cause: err}
	}
	var pm *grid.ErrPeriodicityMismatch
	if errors.As(err, &pm) {
		return &ErrPeriodicityMismatch{Rank: pm.Rank, Flags: pm.Flags, cause: err}
	}
	if errors.Is(err, grid.ErrInvalidShape) || errors.Is(err, cube.ErrInvalidShape) || errors.Is(err, geometry.ErrUnsupportedRank) {
		return fmt.Errorf("%w: %w", ErrInvalidShape, err)
	}

	// Value errors.
	var gvc *grid.ErrValueCount
	if errors.As(err, &gvc) {
		return &ErrValueCount{Expected: gvc.Expected, Actual: gvc.Actual, cause: err}
	}
	var bvc *bitmap.ErrValueCount
	if errors.As(err, &bvc) {
		return &ErrValueCount{Expected: bvc.Expected, Actual: bvc.Actual, cause: err}
	}
	if errors.Is(err, grid.ErrNonFinite) || errors.Is(err, bitmap.ErrNonFinite) {
		return fmt.Errorf("%w: %w", ErrNonFinite, err)
	}

	// Computation and storage.
	if errors.Is(err, reducer.ErrInvariant) {
		return fmt.Errorf("%w: %w", ErrInvariant, err)
	}
	if errors.Is(err, resource.ErrOutOfMemory) {
		return fmt.Errorf("%w: %w", ErrOutOfMemory, err)
	}
	if errors.Is(err, blobstore.ErrNotFound) {
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	}

	return err
}
