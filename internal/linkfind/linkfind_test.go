package linkfind

import (
	"slices"
	"testing"

	"github.com/hupe1980/homcubes/internal/bitmap"
	"github.com/hupe1980/homcubes/internal/cube"
	"github.com/hupe1980/homcubes/internal/geometry"
	"github.com/hupe1980/homcubes/internal/pd"
	"github.com/hupe1980/homcubes/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBitmap(t *testing.T, shape []int, periodic []bool, values []float64) *bitmap.Bitmap {
	t.Helper()
	geo, err := geometry.New(shape, periodic)
	require.NoError(t, err)
	bm, err := bitmap.New(values, geo)
	require.NoError(t, err)
	return bm
}

func TestRun_Path(t *testing.T) {
	bm := newBitmap(t, []int{3, 1}, nil, []float64{0, 2, 1})
	acc := pd.NewAccumulator()

	survivors, stats := Run(bm, acc)

	assert.Empty(t, survivors)
	assert.Equal(t, Stats{Edges: 2, Merges: 2, Survivors: 0}, stats)
	assert.Equal(t, []pd.Pair{
		{Dim: 0, Birth: 0, Death: cube.Infinity},
		{Dim: 0, Birth: 1, Death: 2},
	}, acc.Pairs())
}

func TestRun_TwoBasins(t *testing.T) {
	// Basins at 0 and 1 separated by a ridge at 5. The younger basin
	// (value 1, level 1) dies when the second ridge edge enters at level 4.
	bm := newBitmap(t, []int{5, 1}, nil, []float64{0, 3, 5, 2, 1})
	acc := pd.NewAccumulator()

	_, _ = Run(bm, acc)

	finite, essential := acc.Count(0)
	assert.Equal(t, 1, essential)
	assert.Contains(t, acc.Pairs(), pd.Pair{Dim: 0, Birth: 1, Death: 4})
	assert.Equal(t, 1, finite)
}

func TestRun_Ring(t *testing.T) {
	bm := newBitmap(t, []int{4, 1}, []bool{true, true}, []float64{1, 1, 1, 1})
	acc := pd.NewAccumulator()

	survivors, stats := Run(bm, acc)

	require.Len(t, survivors, 1)
	assert.Equal(t, 4, stats.Edges)
	assert.Equal(t, 3, stats.Merges)
}

func TestRun_Accounting(t *testing.T) {
	rng := testutil.NewRNG(99)
	cases := []struct {
		shape    []int
		periodic []bool
	}{
		{[]int{9, 7}, nil},
		{[]int{6, 6}, []bool{true, true}},
		{[]int{5, 4, 3}, nil},
		{[]int{4, 4, 4}, []bool{true, false, true}},
	}

	for _, tc := range cases {
		n := 1
		for _, s := range tc.shape {
			n *= s
		}
		bm := newBitmap(t, tc.shape, tc.periodic, rng.QuantizedGrid(n, 5))
		acc := pd.NewAccumulator()

		survivors, stats := Run(bm, acc)

		// Connected grid: V-1 merges, every other edge survives.
		assert.Equal(t, n-1, stats.Merges)
		assert.Equal(t, stats.Edges, stats.Merges+len(survivors))
		assert.Equal(t, bm.Geometry().CountCells(1), stats.Edges)
		assert.LessOrEqual(t, acc.Len()-1, stats.Merges)
		assert.True(t, slices.IsSortedFunc(survivors, cube.Compare))

		for _, p := range acc.Pairs() {
			assert.NotEqual(t, p.Birth, p.Death)
			if !p.Essential() {
				assert.Less(t, p.Birth, p.Death)
			}
		}
	}
}
