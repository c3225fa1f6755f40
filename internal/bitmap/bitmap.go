package bitmap

import (
	"cmp"
	"errors"
	"fmt"
	"math"
	"slices"

	"github.com/hupe1980/homcubes/internal/cube"
	"github.com/hupe1980/homcubes/internal/geometry"
)

// ErrNonFinite is returned when a value is NaN or infinite.
var ErrNonFinite = errors.New("bitmap: value is not finite")

// ErrValueCount is returned when the number of values does not match the
// number of vertices of the grid.
type ErrValueCount struct {
	Expected int
	Actual   int
}

func (e *ErrValueCount) Error() string {
	return fmt.Sprintf("bitmap: expected %d values, got %d", e.Expected, e.Actual)
}

// Bitmap is a filtered cubical grid.
type Bitmap struct {
	geo         geometry.Strategy
	values      []float64
	levels      []cube.Level
	level2value []float64
}

// New derives the filtration of values over the grid described by geo.
// values is referenced, not copied.
func New(values []float64, geo geometry.Strategy) (*Bitmap, error) {
	n := geo.NumVertices()
	if len(values) != n {
		return nil, &ErrValueCount{Expected: n, Actual: len(values)}
	}
	for i, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("%w: index %d holds %v", ErrNonFinite, i, v)
		}
	}

	sorted := make([]uint32, n)
	for i := range sorted {
		sorted[i] = uint32(i)
	}
	slices.SortStableFunc(sorted, func(a, b uint32) int {
		return cmp.Compare(values[a], values[b])
	})

	b := &Bitmap{
		geo:         geo,
		values:      values,
		levels:      make([]cube.Level, n),
		level2value: make([]float64, n),
	}
	for rank, idx := range sorted {
		b.levels[idx] = cube.Level(rank)
		b.level2value[rank] = values[idx]
	}
	return b, nil
}

// Geometry returns the strategy of the grid.
func (b *Bitmap) Geometry() geometry.Strategy { return b.geo }

// Encoder returns the cube encoder of the grid.
func (b *Bitmap) Encoder() *cube.Encoder { return b.geo.Encoder() }

// NumVertices returns the number of vertices.
func (b *Bitmap) NumVertices() int { return len(b.values) }

// VertexLevel returns the level of the vertex with flat index idx.
func (b *Bitmap) VertexLevel(idx int) cube.Level { return b.levels[idx] }

// Levels returns the vertex levels by flat index. The slice must not be
// modified.
func (b *Bitmap) Levels() []cube.Level { return b.levels }

// Level returns the filtration level of a cell.
func (b *Bitmap) Level(id cube.ID) cube.Level {
	return b.geo.LevelOf(id, b.levels)
}

// LevelAt returns the level of the vertex at pos.
func (b *Bitmap) LevelAt(pos [cube.MaxRank]int) cube.Level {
	return b.levels[b.geo.IndexOfVertex(pos)]
}

// Cube pairs id with its level.
func (b *Bitmap) Cube(id cube.ID) cube.Cube {
	return cube.Cube{ID: id, Level: b.Level(id)}
}

// Value returns the original value at a filtration level.
func (b *Bitmap) Value(level cube.Level) float64 {
	return b.level2value[level]
}

// LevelToValue returns the level to value table. The slice must not be
// modified.
func (b *Bitmap) LevelToValue() []float64 { return b.level2value }

// Cofaces appends the cofaces of c, with levels, to dst.
func (b *Bitmap) Cofaces(c cube.Cube, ids []cube.ID, dst []cube.Cube) ([]cube.ID, []cube.Cube) {
	ids = b.geo.Cofaces(c.ID, ids[:0])
	for _, id := range ids {
		dst = append(dst, b.Cube(id))
	}
	return ids, dst
}

// ForEachCube calls fn for every cell of dimension dim with its level.
func (b *Bitmap) ForEachCube(dim int, fn func(cube.Cube)) {
	b.geo.ForEachCell(dim, func(id cube.ID) {
		fn(b.Cube(id))
	})
}

// Endpoints returns the flat vertex indices of an edge.
func (b *Bitmap) Endpoints(edge cube.ID) (int, int) {
	var buf [2]int
	v := b.geo.Vertices(edge, buf[:0])
	return v[0], v[1]
}
