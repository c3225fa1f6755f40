package homcubes

import (
	"context"
	"fmt"
	"time"

	"github.com/hupe1980/homcubes/diagram"
	"github.com/hupe1980/homcubes/grid"
	"github.com/hupe1980/homcubes/internal/bitmap"
	"github.com/hupe1980/homcubes/internal/geometry"
	"github.com/hupe1980/homcubes/internal/linkfind"
	"github.com/hupe1980/homcubes/internal/pd"
	"github.com/hupe1980/homcubes/internal/reducer"
)

// StageStats describes one stage of a computation. Stage 0 is the
// union-find over edges, stage d >= 1 reduces the d-cubes.
type StageStats struct {
	Dim int
	// Columns is the number of cubes processed.
	Columns int
	// Pairs is the number of (d+1)-cubes claimed, degenerate pairs included.
	Pairs     int
	Essential int
	Apparent  int
	Merges    int
	CacheHits int
	Cached    int
	// Survivors is the number of (d+1)-cubes handed to the next stage.
	Survivors int
	Duration  time.Duration
}

// Stats describes a computation.
type Stats struct {
	Vertices int
	// MaxDim is the dimension of the largest cells with a non-trivial
	// extent on every spanned axis.
	MaxDim int
	Stages []StageStats
	// Dropped counts pairs discarded for being born and dying at the same
	// level.
	Dropped int
	// MemoryEstimate is the number of bytes reserved on the resource
	// controller.
	MemoryEstimate int64
	Duration       time.Duration
}

// Result is the outcome of a computation.
type Result struct {
	Shape    []int
	Periodic []bool
	Diagram  *diagram.Diagram
	Stats    Stats
}

// Betti returns the Betti numbers of the whole complex, indexed by
// dimension.
func (r *Result) Betti() []int {
	out := make([]int, r.Stats.MaxDim+1)
	for dim := range out {
		out[dim] = r.Diagram.Betti(dim)
	}
	return out
}

// Engine computes persistence diagrams of scalar grids. It holds no state
// between computations and is safe for concurrent use.
type Engine struct {
	opts options
}

// New returns an engine configured by optFns.
func New(optFns ...Option) *Engine {
	return &Engine{opts: applyOptions(optFns)}
}

// Compute returns the persistence diagram of g under the lower-star
// filtration. The computation is sequential and deterministic: equal inputs
// and options give byte-identical DIPHA output.
func Compute(g *grid.Grid, optFns ...Option) (*Result, error) {
	return New(optFns...).Compute(g)
}

// Compute returns the persistence diagram of g.
//
// Configuration errors are reported before any cell table is allocated.
// When a resource controller is configured, the estimated memory is
// reserved up front and ErrOutOfMemory is returned if it does not fit.
func (e *Engine) Compute(g *grid.Grid) (*Result, error) {
	return e.compute(context.Background(), g, false)
}

// compute runs the whole chain. With wait set, the memory reservation
// blocks until other computations release enough memory.
func (e *Engine) compute(ctx context.Context, g *grid.Grid, wait bool) (res *Result, err error) {
	start := time.Now()
	vertices := 0
	defer func() {
		duration := time.Since(start)
		pairs := 0
		if res != nil {
			pairs = res.Diagram.Len()
		}
		e.opts.metricsCollector.RecordCompute(vertices, duration, err)
		e.opts.logger.LogCompute(ctx, vertices, pairs, duration, err)
	}()

	geo, err := e.check(g)
	if err != nil {
		return nil, err
	}
	vertices = geo.NumVertices()

	estimate := EstimateMemory(g.Shape)
	release, err := e.reserve(ctx, estimate, wait)
	if err != nil {
		return nil, translateError(err)
	}
	defer release()

	bm, err := bitmap.New(g.Values, geo)
	if err != nil {
		return nil, translateError(err)
	}

	acc := pd.NewAccumulator()
	stats, err := e.run(ctx, bm, acc)
	if err != nil {
		return nil, translateError(err)
	}
	stats.Vertices = vertices
	stats.MemoryEstimate = estimate
	stats.Dropped = acc.Dropped()
	stats.Duration = time.Since(start)

	return &Result{
		Shape:    append([]int(nil), g.Shape...),
		Periodic: g.PeriodicFlags(),
		Diagram:  acc.Resolve(bm.LevelToValue()),
		Stats:    stats,
	}, nil
}

// check validates g and builds its geometry. Shape limits are checked
// before the values.
func (e *Engine) check(g *grid.Grid) (geometry.Strategy, error) {
	if g == nil {
		return nil, fmt.Errorf("%w: nil grid", ErrInvalidShape)
	}
	if err := g.ValidateShape(); err != nil {
		return nil, translateError(err)
	}
	geo, err := geometry.New(g.Shape, g.PeriodicFlags())
	if err != nil {
		return nil, translateError(err)
	}
	if err := g.Validate(); err != nil {
		return nil, translateError(err)
	}
	return geo, nil
}

func (e *Engine) reserve(ctx context.Context, bytes int64, wait bool) (func(), error) {
	rc := e.opts.controller
	if !wait {
		return rc.Reserve(bytes)
	}
	if err := rc.AcquireMemory(ctx, bytes); err != nil {
		return nil, err
	}
	return func() { rc.ReleaseMemory(bytes) }, nil
}

// run executes LinkFind and the reducers in increasing dimension. The
// cubes surviving the top dimension become its essential classes.
func (e *Engine) run(ctx context.Context, bm *bitmap.Bitmap, acc *pd.Accumulator) (Stats, error) {
	top := bm.Geometry().MaxDim()
	stats := Stats{MaxDim: top}

	t := time.Now()
	cubes, lf := linkfind.Run(bm, acc)
	e.stage(ctx, &stats, StageStats{
		Dim:       0,
		Columns:   lf.Edges,
		Pairs:     lf.Merges,
		Essential: 1,
		Survivors: lf.Survivors,
		Duration:  time.Since(t),
	})

	for dim := 1; dim < top; dim++ {
		t = time.Now()
		r := reducer.New(dim, bm, e.opts.reducerOptions())
		var err error
		cubes, err = r.Run(cubes, acc)
		if err != nil {
			return stats, err
		}
		rs := r.Stats()
		e.stage(ctx, &stats, StageStats{
			Dim:       rs.Dim,
			Columns:   rs.Columns,
			Pairs:     rs.Pairs,
			Essential: rs.Essential,
			Apparent:  rs.Apparent,
			Merges:    rs.Merges,
			CacheHits: rs.CacheHits,
			Cached:    rs.Cached,
			Survivors: rs.Survivors,
			Duration:  time.Since(t),
		})
	}

	if top > 0 {
		for _, c := range cubes {
			acc.AddEssential(top, c.Level)
		}
	}
	return stats, nil
}

func (e *Engine) stage(ctx context.Context, stats *Stats, s StageStats) {
	stats.Stages = append(stats.Stages, s)
	e.opts.metricsCollector.RecordStage(s.Dim, s.Pairs, s.Survivors, s.Duration)
	e.opts.logger.LogStage(ctx, s)
}

// EstimateMemory returns a rough upper bound of the bytes a computation on
// a grid of the given shape allocates: vertex levels and the union-find
// arena, plus one sorted cube and one record entry per cell.
func EstimateMemory(shape []int) int64 {
	const (
		perVertex = 4 + 8 + 8 // level, level2value, union-find arena
		perCell   = 16 + 48   // sorted cube, record map entry
	)
	n := int64(1)
	for _, s := range shape {
		n *= int64(max(s, 1))
	}
	cells := n << len(shape)
	return n*perVertex + cells*perCell
}
