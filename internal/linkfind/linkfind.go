// Package linkfind computes dimension-0 persistence with a union-find over
// the edges of a filtered grid.
//
// Edges are processed in cube order. An edge joining two components kills
// the younger one (elder rule); an edge inside a component closes a cycle
// and survives into the dimension-1 reduction.
package linkfind

import (
	"slices"

	"github.com/hupe1980/homcubes/internal/bitmap"
	"github.com/hupe1980/homcubes/internal/cube"
	"github.com/hupe1980/homcubes/internal/pd"
)

// Stats summarizes a run.
type Stats struct {
	Edges     int
	Merges    int
	Survivors int
}

// forest is an arena of vertex records addressed by flat vertex index.
type forest struct {
	parent []uint32
	birth  []cube.Level // valid at roots: the oldest level of the component
}

func newForest(levels []cube.Level) *forest {
	f := &forest{
		parent: make([]uint32, len(levels)),
		birth:  slices.Clone(levels),
	}
	for i := range f.parent {
		f.parent[i] = uint32(i)
	}
	return f
}

// find returns the root of x and points every vertex on the path at it.
func (f *forest) find(x uint32) uint32 {
	root := x
	for f.parent[root] != root {
		root = f.parent[root]
	}
	for f.parent[x] != root {
		next := f.parent[x]
		f.parent[x] = root
		x = next
	}
	return root
}

// Run emits the dimension-0 pairs of bm into sink and returns the edges that
// closed a cycle, sorted by cube order.
func Run(bm *bitmap.Bitmap, sink pd.Sink) ([]cube.Cube, Stats) {
	geo := bm.Geometry()
	edges := make([]cube.Cube, 0, geo.CountCells(1))
	bm.ForEachCube(1, func(c cube.Cube) {
		edges = append(edges, c)
	})
	slices.SortFunc(edges, cube.Compare)

	// The global component is born with the minimum, which has level 0.
	sink.AddEssential(0, 0)

	f := newForest(bm.Levels())
	stats := Stats{Edges: len(edges)}
	var survivors []cube.Cube

	for _, e := range edges {
		u, v := bm.Endpoints(e.ID)
		ru, rv := f.find(uint32(u)), f.find(uint32(v))
		if ru == rv {
			survivors = append(survivors, e)
			continue
		}

		older, younger := ru, rv
		if f.birth[rv] < f.birth[ru] {
			older, younger = rv, ru
		}
		f.parent[younger] = older
		stats.Merges++

		if f.birth[younger] != e.Level {
			sink.AddPair(0, f.birth[younger], e.Level)
		}
	}

	stats.Survivors = len(survivors)
	return survivors, stats
}
