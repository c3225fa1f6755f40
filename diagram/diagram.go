package diagram

import (
	"math"
	"slices"
)

// Pair is a persistence pair. Essential pairs have Death = +Inf.
type Pair struct {
	Dim   int
	Birth float64
	Death float64
}

// Finite returns a pair that dies at death.
func Finite(dim int, birth, death float64) Pair {
	return Pair{Dim: dim, Birth: birth, Death: death}
}

// Essential returns a pair that never dies.
func Essential(dim int, birth float64) Pair {
	return Pair{Dim: dim, Birth: birth, Death: math.Inf(1)}
}

// IsEssential reports whether p never dies.
func (p Pair) IsEssential() bool { return math.IsInf(p.Death, 1) }

// Persistence returns death - birth (+Inf for essential pairs).
func (p Pair) Persistence() float64 { return p.Death - p.Birth }

// Diagram is an ordered list of pairs of all dimensions.
type Diagram struct {
	Pairs []Pair
}

// New returns an empty diagram with room for capacity pairs.
func New(capacity int) *Diagram {
	return &Diagram{Pairs: make([]Pair, 0, capacity)}
}

// Add appends p.
func (d *Diagram) Add(p Pair) { d.Pairs = append(d.Pairs, p) }

// Len returns the number of pairs.
func (d *Diagram) Len() int { return len(d.Pairs) }

// MaxDim returns the largest dimension present, or -1 for an empty diagram.
func (d *Diagram) MaxDim() int {
	m := -1
	for _, p := range d.Pairs {
		m = max(m, p.Dim)
	}
	return m
}

// Dim returns the pairs of dimension k in diagram order.
func (d *Diagram) Dim(k int) []Pair {
	var out []Pair
	for _, p := range d.Pairs {
		if p.Dim == k {
			out = append(out, p)
		}
	}
	return out
}

// Finite returns the finite pairs of dimension k.
func (d *Diagram) Finite(k int) []Pair {
	var out []Pair
	for _, p := range d.Pairs {
		if p.Dim == k && !p.IsEssential() {
			out = append(out, p)
		}
	}
	return out
}

// Essential returns the essential pairs of dimension k.
func (d *Diagram) Essential(k int) []Pair {
	var out []Pair
	for _, p := range d.Pairs {
		if p.Dim == k && p.IsEssential() {
			out = append(out, p)
		}
	}
	return out
}

// Betti returns the number of essential classes of dimension k, the k-th
// Betti number of the whole complex.
func (d *Diagram) Betti(k int) int {
	n := 0
	for _, p := range d.Pairs {
		if p.Dim == k && p.IsEssential() {
			n++
		}
	}
	return n
}

// Clone returns a deep copy of d.
func (d *Diagram) Clone() *Diagram {
	return &Diagram{Pairs: slices.Clone(d.Pairs)}
}

// Prune returns a copy of d without the finite pairs whose persistence is
// at most threshold. Prune(0) removes the zero-length pairs that ties in the
// input produce.
func (d *Diagram) Prune(threshold float64) *Diagram {
	out := New(len(d.Pairs))
	for _, p := range d.Pairs {
		if p.IsEssential() || p.Persistence() > threshold {
			out.Add(p)
		}
	}
	return out
}

// Equal reports whether both diagrams hold the same pairs in the same order.
func (d *Diagram) Equal(o *Diagram) bool {
	return slices.Equal(d.Pairs, o.Pairs)
}
