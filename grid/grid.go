// Package grid holds the scalar grids that persistent homology is computed
// on, and reads and writes them in the DIPHA image format.
//
// Values are stored with axis 0 varying fastest: the vertex at position
// (x, y, z) of a grid with shape (nx, ny, nz) is Values[x + nx*(y + ny*z)].
package grid

import (
	"errors"
	"fmt"
	"math"
	"slices"
)

// MinRank and MaxRank bound the number of axes a grid may have.
const (
	MinRank = 2
	MaxRank = 3
)

var (
	// ErrInvalidShape is returned for unsupported ranks and non-positive
	// extents.
	ErrInvalidShape = errors.New("grid: invalid shape")
	// ErrNonFinite is returned when a value is NaN or infinite.
	ErrNonFinite = errors.New("grid: value is not finite")
)

// ErrPeriodicityMismatch is returned when the periodicity flags do not match
// the rank.
type ErrPeriodicityMismatch struct {
	Rank  int
	Flags int
}

func (e *ErrPeriodicityMismatch) Error() string {
	return fmt.Sprintf("grid: %d periodicity flags for rank %d", e.Flags, e.Rank)
}

// ErrValueCount is returned when the number of values is not the product of
// the extents.
type ErrValueCount struct {
	Expected int
	Actual   int
}

func (e *ErrValueCount) Error() string {
	return fmt.Sprintf("grid: expected %d values, got %d", e.Expected, e.Actual)
}

// Grid is a scalar field sampled on a regular 2D or 3D lattice.
type Grid struct {
	// Shape holds the extent of every axis.
	Shape []int
	// Periodic marks axes that wrap around. Nil means no axis wraps.
	Periodic []bool
	// Values holds one value per vertex, axis 0 fastest.
	Values []float64
}

// New returns a non-periodic grid.
func New(shape []int, values []float64) *Grid {
	return &Grid{Shape: shape, Values: values}
}

// NewPeriodic returns a grid with the given periodicity flags.
func NewPeriodic(shape []int, periodic []bool, values []float64) *Grid {
	return &Grid{Shape: shape, Periodic: periodic, Values: values}
}

// Rank returns the number of axes.
func (g *Grid) Rank() int { return len(g.Shape) }

// IsPeriodic reports whether axis wraps around.
func (g *Grid) IsPeriodic(axis int) bool {
	return axis < len(g.Periodic) && g.Periodic[axis]
}

// PeriodicFlags returns one flag per axis.
func (g *Grid) PeriodicFlags() []bool {
	out := make([]bool, len(g.Shape))
	for i := range out {
		out[i] = g.IsPeriodic(i)
	}
	return out
}

// NumVertices returns the product of the extents, or -1 if it overflows.
func (g *Grid) NumVertices() int {
	return numVertices(g.Shape)
}

func numVertices(shape []int) int {
	n := 1
	for _, s := range shape {
		if s <= 0 {
			return 0
		}
		if n > math.MaxInt/s {
			return -1
		}
		n *= s
	}
	return n
}

// Index returns the flat index of the vertex at pos.
func (g *Grid) Index(pos ...int) int {
	idx, stride := 0, 1
	for i, p := range pos {
		idx += p * stride
		stride *= g.Shape[i]
	}
	return idx
}

// At returns the value of the vertex at pos.
func (g *Grid) At(pos ...int) float64 {
	return g.Values[g.Index(pos...)]
}

// Validate checks rank, extents, periodicity flags and values without
// allocating.
func (g *Grid) Validate() error {
	if err := g.ValidateShape(); err != nil {
		return err
	}
	n := g.NumVertices()
	if len(g.Values) != n {
		return &ErrValueCount{Expected: n, Actual: len(g.Values)}
	}
	for i, v := range g.Values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: index %d holds %v", ErrNonFinite, i, v)
		}
	}
	return nil
}

// ValidateShape checks rank, extents and periodicity flags but not the
// values.
func (g *Grid) ValidateShape() error {
	if r := len(g.Shape); r < MinRank || r > MaxRank {
		return fmt.Errorf("%w: rank %d not in [%d,%d]", ErrInvalidShape, r, MinRank, MaxRank)
	}
	for axis, s := range g.Shape {
		if s < 1 {
			return fmt.Errorf("%w: axis %d has extent %d", ErrInvalidShape, axis, s)
		}
	}
	if len(g.Periodic) != 0 && len(g.Periodic) != len(g.Shape) {
		return &ErrPeriodicityMismatch{Rank: len(g.Shape), Flags: len(g.Periodic)}
	}
	if g.NumVertices() < 0 {
		return fmt.Errorf("%w: vertex count overflows", ErrInvalidShape)
	}
	return nil
}

// Clone returns a deep copy of g.
func (g *Grid) Clone() *Grid {
	return &Grid{
		Shape:    slices.Clone(g.Shape),
		Periodic: slices.Clone(g.Periodic),
		Values:   slices.Clone(g.Values),
	}
}

// MinMax returns the smallest and the largest value.
func (g *Grid) MinMax() (lo, hi float64) {
	if len(g.Values) == 0 {
		return 0, 0
	}
	return slices.Min(g.Values), slices.Max(g.Values)
}
