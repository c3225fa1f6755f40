package homcubes

import (
	"context"
	"testing"

	"github.com/hupe1980/homcubes/grid"
	"github.com/hupe1980/homcubes/resource"
	"github.com/hupe1980/homcubes/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func randomGrids(seed int64, count int) []*grid.Grid {
	rng := testutil.NewRNG(seed)
	grids := make([]*grid.Grid, count)
	for i := range grids {
		if i%2 == 0 {
			grids[i] = grid.NewPeriodic([]int{8, 7}, []bool{true, false}, rng.QuantizedGrid(56, 5))
		} else {
			grids[i] = grid.New([]int{5, 4, 3}, rng.Grid(60))
		}
	}
	return grids
}

func TestComputeBatch_MatchesSequential(t *testing.T) {
	grids := randomGrids(12, 9)
	rc := resource.NewController(resource.Config{MaxWorkers: 3, MemoryLimitBytes: 1 << 30})
	metrics := &BasicMetricsCollector{}
	eng := New(WithResourceController(rc), WithMetricsCollector(metrics))

	results, err := eng.ComputeBatch(context.Background(), grids)
	require.NoError(t, err)
	require.Len(t, results, len(grids))

	for i, g := range grids {
		want, err := Compute(g)
		require.NoError(t, err)
		assert.True(t, want.Diagram.Equal(results[i].Diagram), "grid %d", i)
	}

	stats := metrics.GetStats()
	assert.Equal(t, int64(1), stats.BatchCount)
	assert.Equal(t, int64(9), stats.BatchItems)
	assert.Zero(t, stats.BatchFailed)
	assert.Equal(t, int64(9), stats.ComputeCount)
	assert.Zero(t, rc.MemoryUsage())
}

func TestComputeBatch_Error(t *testing.T) {
	grids := randomGrids(3, 4)
	grids[2] = grid.New([]int{4, 4}, make([]float64, 3))

	results, err := New().ComputeBatch(context.Background(), grids)
	require.Error(t, err)

	var vc *ErrValueCount
	require.ErrorAs(t, err, &vc)
	assert.Equal(t, 16, vc.Expected)
	assert.ErrorContains(t, err, "grid 2")
	assert.Nil(t, results[2])
}

func TestComputeBatch_OversizedGrid(t *testing.T) {
	rc := resource.NewController(resource.Config{MaxWorkers: 2, MemoryLimitBytes: 4096})
	grids := []*grid.Grid{grid.New([]int{16, 16}, testutil.NewRNG(1).Grid(256))}

	_, err := New(WithResourceController(rc)).ComputeBatch(context.Background(), grids)
	assert.ErrorIs(t, err, ErrOutOfMemory)
}

func TestComputeBatch_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New().ComputeBatch(ctx, randomGrids(5, 3))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestComputeBatch_Empty(t *testing.T) {
	results, err := New().ComputeBatch(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, results)
}
