// Package reducer computes persistence pairs of dimension >= 1 by reducing
// coboundary columns over the two-element field.
//
// The cubes handed over by the previous stage are processed from the
// highest to the lowest in cube order. The column of a cube starts as its
// sorted coboundary; while its lowest entry (the pivot) is already claimed
// by an earlier cube, the claimer's column is added (symmetric difference).
// An unclaimed pivot is recorded as claimed by the cube and yields a pair,
// an empty column yields an essential class. Every claimed cube is removed
// from the input of the next dimension.
package reducer

import (
	"errors"
	"fmt"
	"slices"

	"github.com/RoaringBitmap/roaring/v2/roaring64"
	"github.com/hupe1980/homcubes/internal/bitmap"
	"github.com/hupe1980/homcubes/internal/cube"
	"github.com/hupe1980/homcubes/internal/pd"
)

// ErrInvariant is returned when the reduction observes a state that a
// correct run can never produce.
var ErrInvariant = errors.New("reducer: invariant violated")

// DefaultCacheThreshold is the number of column additions after which a
// reduced column is kept for later reuse.
const DefaultCacheThreshold = 1

// Options tunes a Reducer.
type Options struct {
	// CacheThreshold is the number of column additions a cube needs before
	// its reduced column is cached. Negative disables the cache.
	CacheThreshold int

	// ApparentPairs pairs a cube with its lowest coface without building the
	// sorted column when that coface has the same level and is unclaimed.
	// The output is identical either way.
	ApparentPairs bool
}

// DefaultOptions returns the options used when none are given.
func DefaultOptions() Options {
	return Options{CacheThreshold: DefaultCacheThreshold}
}

// Stats summarizes a run.
type Stats struct {
	Dim       int
	Columns   int
	Pairs     int
	Essential int
	Apparent  int
	Merges    int
	CacheHits int
	Cached    int
	Survivors int
}

// Reducer reduces the cubes of one dimension. It is single use and not safe
// for concurrent use.
type Reducer struct {
	dim  int
	bm   *bitmap.Bitmap
	opts Options

	record  map[cube.ID]cube.Cube   // (dim+1)-cube -> dim-cube that claimed it
	claimed *roaring64.Bitmap       // (dim+1)-cubes no longer surviving
	cache   map[cube.ID][]cube.Cube // dim-cube -> reduced column

	ids   []cube.ID
	cols  [3][]cube.Cube
	stats Stats
}

// New returns a reducer for cubes of dimension dim (>= 1) of bm.
func New(dim int, bm *bitmap.Bitmap, opts Options) *Reducer {
	return &Reducer{
		dim:     dim,
		bm:      bm,
		opts:    opts,
		record:  make(map[cube.ID]cube.Cube),
		claimed: roaring64.New(),
		cache:   make(map[cube.ID][]cube.Cube),
		stats:   Stats{Dim: dim},
	}
}

// Dim returns the dimension of the cubes reduced.
func (r *Reducer) Dim() int { return r.dim }

// Stats returns the counters of the last run.
func (r *Reducer) Stats() Stats { return r.stats }

// Owner returns the cube that claimed the (dim+1)-cube id.
func (r *Reducer) Owner(id cube.ID) (cube.Cube, bool) {
	c, ok := r.record[id]
	return c, ok
}

// Run reduces cubes, which must be sorted by cube order, emits the pairs of
// dimension dim into sink and returns the sorted (dim+1)-cubes that were
// never claimed.
func (r *Reducer) Run(cubes []cube.Cube, sink pd.Sink) ([]cube.Cube, error) {
	if !slices.IsSortedFunc(cubes, cube.Compare) {
		return nil, fmt.Errorf("%w: input of dimension %d is not sorted", ErrInvariant, r.dim)
	}
	for i := len(cubes) - 1; i >= 0; i-- {
		if err := r.reduce(cubes[i], sink); err != nil {
			return nil, err
		}
	}
	upper := r.survivors()
	r.stats.Survivors = len(upper)
	return upper, nil
}

func (r *Reducer) reduce(c cube.Cube, sink pd.Sink) error {
	r.stats.Columns++

	column := r.coboundary(c, r.cols[0][:0])
	r.cols[0] = column

	if r.opts.ApparentPairs && len(column) > 0 {
		low := slices.MinFunc(column, cube.Compare)
		if low.Level == c.Level && !r.claimed.Contains(low.ID.Uint64()) {
			r.stats.Apparent++
			return r.pair(c, low, sink)
		}
	}

	slices.SortFunc(column, cube.Compare)
	spare := r.cols[1][:0]
	merges := 0

	for {
		if len(column) == 0 {
			r.stats.Essential++
			sink.AddEssential(r.dim, c.Level)
			return nil
		}

		pivot := column[0]
		owner, taken := r.record[pivot.ID]
		if !taken {
			if err := r.pair(c, pivot, sink); err != nil {
				return err
			}
			if r.opts.CacheThreshold >= 0 && merges >= r.opts.CacheThreshold {
				r.cache[c.ID] = slices.Clone(column)
				r.stats.Cached++
			}
			r.cols[0], r.cols[1] = column[:0], spare[:0]
			return nil
		}

		other, hit := r.cache[owner.ID]
		if hit {
			r.stats.CacheHits++
		} else {
			other = r.coboundary(owner, r.cols[2][:0])
			slices.SortFunc(other, cube.Compare)
			r.cols[2] = other
		}

		spare = symmetricDifference(spare[:0], column, other)
		column, spare = spare, column
		merges++
		r.stats.Merges++
	}
}

// pair records that c claims pivot and emits the pair.
func (r *Reducer) pair(c, pivot cube.Cube, sink pd.Sink) error {
	if pivot.Level < c.Level {
		return fmt.Errorf("%w: coface level %d below cube level %d", ErrInvariant, pivot.Level, c.Level)
	}
	if !r.claimed.CheckedAdd(pivot.ID.Uint64()) {
		return fmt.Errorf("%w: cube %d of dimension %d claimed twice", ErrInvariant, pivot.ID.Uint64(), r.dim+1)
	}
	r.record[pivot.ID] = c
	r.stats.Pairs++
	sink.AddPair(r.dim, c.Level, pivot.Level)
	return nil
}

func (r *Reducer) coboundary(c cube.Cube, dst []cube.Cube) []cube.Cube {
	r.ids, dst = r.bm.Cofaces(c, r.ids, dst)
	return dst
}

func (r *Reducer) survivors() []cube.Cube {
	if r.dim+1 > r.bm.Geometry().MaxDim() {
		return nil
	}
	out := make([]cube.Cube, 0, r.bm.Geometry().CountCells(r.dim+1)-int(r.claimed.GetCardinality()))
	r.bm.ForEachCube(r.dim+1, func(c cube.Cube) {
		if !r.claimed.Contains(c.ID.Uint64()) {
			out = append(out, c)
		}
	})
	slices.SortFunc(out, cube.Compare)
	return out
}

// symmetricDifference merges two sorted columns; entries present in both
// cancel.
func symmetricDifference(dst, a, b []cube.Cube) []cube.Cube {
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch c := cube.Compare(a[i], b[j]); {
		case c < 0:
			dst = append(dst, a[i])
			i++
		case c > 0:
			dst = append(dst, b[j])
			j++
		default:
			i++
			j++
		}
	}
	dst = append(dst, a[i:]...)
	return append(dst, b[j:]...)
}
