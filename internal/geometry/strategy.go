package geometry

import (
	"errors"
	"fmt"
	"math"

	"github.com/hupe1980/homcubes/internal/cube"
)

// ErrUnsupportedRank is returned for grids that are neither 2D nor 3D.
var ErrUnsupportedRank = errors.New("geometry: only 2D and 3D grids are supported")

// ErrTooManyVertices is returned when the vertex count does not fit the
// level type.
var ErrTooManyVertices = errors.New("geometry: too many vertices")

// Kind identifies a strategy variant.
type Kind uint8

const (
	// Plane is a 2D grid with open boundaries.
	Plane Kind = iota
	// PlanePeriodic is a 2D grid with at least one wrapping axis.
	PlanePeriodic
	// Volume is a 3D grid with open boundaries.
	Volume
	// VolumePeriodic is a 3D grid with at least one wrapping axis.
	VolumePeriodic
)

func (k Kind) String() string {
	switch k {
	case Plane:
		return "plane"
	case PlanePeriodic:
		return "plane-periodic"
	case Volume:
		return "volume"
	case VolumePeriodic:
		return "volume-periodic"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Strategy answers the grid-shape dependent questions of the reduction.
type Strategy interface {
	Kind() Kind
	Encoder() *cube.Encoder
	Rank() int
	// MaxDim is the largest dimension of a cell present in the grid.
	MaxDim() int
	NumVertices() int
	// IndexOfVertex returns the flat array index of the vertex at pos.
	IndexOfVertex(pos [cube.MaxRank]int) int
	// IndexOfOffset returns the flat index of pos+offset, wrapping periodic
	// axes. ok is false when an open axis leaves the grid.
	IndexOfOffset(pos, offset [cube.MaxRank]int) (idx int, ok bool)
	// Vertices appends the flat indices of the 2^dim vertices of id.
	Vertices(id cube.ID, dst []int) []int
	// LevelOf returns the maximum level over the vertices of id.
	LevelOf(id cube.ID, levels []cube.Level) cube.Level
	// Cofaces appends the cells of dimension dim(id)+1 having id as a facet.
	Cofaces(id cube.ID, dst []cube.ID) []cube.ID
	// ForEachCell calls fn for every cell of dimension dim exactly once.
	ForEachCell(dim int, fn func(cube.ID))
	// CountCells returns the number of cells of dimension dim.
	CountCells(dim int) int
}

// New selects the strategy for shape. periodic may be nil.
func New(shape []int, periodic []bool) (Strategy, error) {
	if len(shape) != 2 && len(shape) != 3 {
		return nil, fmt.Errorf("%w: rank %d", ErrUnsupportedRank, len(shape))
	}
	enc, err := cube.NewEncoder(shape, periodic)
	if err != nil {
		return nil, err
	}
	l, err := newLattice(enc)
	if err != nil {
		return nil, err
	}
	if l.rank == 2 {
		l.kind = Plane
		if l.anyWrap() {
			l.kind = PlanePeriodic
		}
		return &plane{lattice: l}, nil
	}
	l.kind = Volume
	if l.anyWrap() {
		l.kind = VolumePeriodic
	}
	return &volume{lattice: l}, nil
}

// lattice holds what all variants share: extents, strides and the coface
// relation, which only depends on the per-axis wrap flags.
type lattice struct {
	kind   Kind
	enc    *cube.Encoder
	rank   int
	extent [cube.MaxRank]int
	stride [cube.MaxRank]int
	wrap   [cube.MaxRank]bool
	usable cube.Orientation // axes with extent > 1
	n      int
}

func newLattice(enc *cube.Encoder) (lattice, error) {
	l := lattice{enc: enc, rank: enc.Rank(), n: 1}
	for i := 0; i < l.rank; i++ {
		l.extent[i] = enc.Extent(i)
		l.stride[i] = l.n
		if l.extent[i] > 1 {
			l.usable = l.usable.With(i)
			l.wrap[i] = enc.Periodic(i)
		}
		if int64(l.n)*int64(l.extent[i]) > math.MaxUint32-1 {
			return lattice{}, fmt.Errorf("%w: shape exceeds %d vertices", ErrTooManyVertices, uint32(math.MaxUint32-1))
		}
		l.n *= l.extent[i]
	}
	return l, nil
}

func (l *lattice) anyWrap() bool {
	for i := 0; i < l.rank; i++ {
		if l.wrap[i] {
			return true
		}
	}
	return false
}

func (l *lattice) Kind() Kind             { return l.kind }
func (l *lattice) Encoder() *cube.Encoder { return l.enc }
func (l *lattice) Rank() int              { return l.rank }
func (l *lattice) NumVertices() int       { return l.n }
func (l *lattice) MaxDim() int            { return l.usable.Dim() }

func (l *lattice) IndexOfVertex(pos [cube.MaxRank]int) int {
	idx := 0
	for i := 0; i < l.rank; i++ {
		idx += pos[i] * l.stride[i]
	}
	return idx
}

func (l *lattice) IndexOfOffset(pos, offset [cube.MaxRank]int) (int, bool) {
	idx := 0
	for i := 0; i < l.rank; i++ {
		x := pos[i] + offset[i]
		if x < 0 || x >= l.extent[i] {
			if !l.wrap[i] {
				return 0, false
			}
			x %= l.extent[i]
			if x < 0 {
				x += l.extent[i]
			}
		}
		idx += x * l.stride[i]
	}
	return idx, true
}

// step is the flat-index distance from the vertex at x to the next vertex
// along axis, folding back to 0 at the far end of a wrapping axis.
func (l *lattice) step(axis, x int) int {
	if x+1 < l.extent[axis] {
		return l.stride[axis]
	}
	return -x * l.stride[axis]
}

// spans returns the anchor index of c and the per-axis steps of its
// non-degenerate axes.
func (l *lattice) spans(c cube.Coord) (base int, steps [cube.MaxRank]int) {
	for i := 0; i < l.rank; i++ {
		base += c.Pos[i] * l.stride[i]
		if c.Orient.Has(i) {
			steps[i] = l.step(i, c.Pos[i])
		}
	}
	return base, steps
}

func (l *lattice) Vertices(id cube.ID, dst []int) []int {
	c := l.enc.Decode(id)
	base, steps := l.spans(c)
	o := c.Orient
	for s := o; ; s = (s - 1) & o {
		off := 0
		for i := 0; i < l.rank; i++ {
			if s.Has(i) {
				off += steps[i]
			}
		}
		dst = append(dst, base+off)
		if s == 0 {
			break
		}
	}
	return dst
}

func (l *lattice) Cofaces(id cube.ID, dst []cube.ID) []cube.ID {
	c := l.enc.Decode(id)
	for i := 0; i < l.rank; i++ {
		if c.Orient.Has(i) || !l.usable.Has(i) {
			continue
		}
		x := c.Pos[i]
		up := c
		up.Orient = c.Orient.With(i)

		if x+1 < l.extent[i] || l.wrap[i] {
			dst = append(dst, l.enc.Encode(up))
		}
		switch {
		case x > 0:
			up.Pos[i] = x - 1
			dst = append(dst, l.enc.Encode(up))
		case l.wrap[i]:
			up.Pos[i] = l.extent[i] - 1
			dst = append(dst, l.enc.Encode(up))
		}
	}
	return dst
}

// anchorLimit is the exclusive upper bound of anchors along axis for cells
// with orientation o.
func (l *lattice) anchorLimit(axis int, o cube.Orientation) int {
	if o.Has(axis) && !l.wrap[axis] {
		return l.extent[axis] - 1
	}
	return l.extent[axis]
}

// orientations returns every orientation of dimension dim built from
// usable axes, in increasing order.
func (l *lattice) orientations(dim int) []cube.Orientation {
	var out []cube.Orientation
	for o := cube.Orientation(0); o < 1<<l.rank; o++ {
		if o.Dim() == dim && o&^l.usable == 0 {
			out = append(out, o)
		}
	}
	return out
}

func (l *lattice) CountCells(dim int) int {
	total := 0
	for _, o := range l.orientations(dim) {
		n := 1
		for i := 0; i < l.rank; i++ {
			n *= l.anchorLimit(i, o)
		}
		total += n
	}
	return total
}
