package pd

import (
	"testing"

	"github.com/hupe1980/homcubes/diagram"
	"github.com/hupe1980/homcubes/internal/cube"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccumulator(t *testing.T) {
	a := NewAccumulator()
	a.AddEssential(0, 0)
	a.AddPair(0, 2, 5)
	a.AddPair(0, 3, 3)
	a.AddPair(1, 4, 6)
	a.AddEssential(1, 1)

	assert.Equal(t, 4, a.Len())
	assert.Equal(t, 1, a.Dropped())

	finite, essential := a.Count(0)
	assert.Equal(t, 1, finite)
	assert.Equal(t, 1, essential)

	assert.True(t, a.Pairs()[0].Essential())
	assert.Equal(t, Pair{Dim: 1, Birth: 4, Death: 6}, a.Pairs()[2])
	assert.Equal(t, cube.Infinity, a.Pairs()[3].Death)
}

func TestResolve_KeepsValueTies(t *testing.T) {
	a := NewAccumulator()
	a.AddEssential(0, 0)
	a.AddPair(0, 1, 2) // distinct levels, both 0.5
	a.AddPair(1, 2, 3)

	d := a.Resolve([]float64{0, 0.5, 0.5, 1})
	assert.Equal(t, []diagram.Pair{
		diagram.Essential(0, 0),
		diagram.Finite(0, 0.5, 0.5),
		diagram.Finite(1, 0.5, 1),
	}, d.Pairs)
	assert.Zero(t, a.Dropped())
}
