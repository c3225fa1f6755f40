// Package pd accumulates persistence pairs in filtration levels and resolves
// them into value diagrams.
package pd

import (
	"github.com/hupe1980/homcubes/diagram"
	"github.com/hupe1980/homcubes/internal/cube"
)

// Sink receives pairs from the reduction stages.
type Sink interface {
	AddPair(dim int, birth, death cube.Level)
	AddEssential(dim int, birth cube.Level)
}

// Pair is a persistence pair in filtration levels. Essential pairs die at
// cube.Infinity.
type Pair struct {
	Dim   int
	Birth cube.Level
	Death cube.Level
}

// Essential reports whether p never dies.
func (p Pair) Essential() bool { return p.Death == cube.Infinity }

// Accumulator collects pairs in emission order.
type Accumulator struct {
	pairs   []Pair
	dropped int
}

// NewAccumulator returns an empty accumulator.
func NewAccumulator() *Accumulator {
	return &Accumulator{}
}

// AddPair records a finite pair. Pairs with birth == death are dropped.
func (a *Accumulator) AddPair(dim int, birth, death cube.Level) {
	if birth == death {
		a.dropped++
		return
	}
	a.pairs = append(a.pairs, Pair{Dim: dim, Birth: birth, Death: death})
}

// AddEssential records a class that never dies.
func (a *Accumulator) AddEssential(dim int, birth cube.Level) {
	a.pairs = append(a.pairs, Pair{Dim: dim, Birth: birth, Death: cube.Infinity})
}

// Pairs returns the recorded pairs. The slice must not be modified.
func (a *Accumulator) Pairs() []Pair { return a.pairs }

// Len returns the number of recorded pairs.
func (a *Accumulator) Len() int { return len(a.pairs) }

// Dropped returns the number of pairs discarded for having equal levels.
func (a *Accumulator) Dropped() int { return a.dropped }

// Count returns the number of finite and essential pairs of dimension dim.
func (a *Accumulator) Count(dim int) (finite, essential int) {
	for _, p := range a.pairs {
		if p.Dim != dim {
			continue
		}
		if p.Essential() {
			essential++
		} else {
			finite++
		}
	}
	return finite, essential
}

// Resolve translates levels into values through level2value. Pairs with
// distinct levels are kept even when ties in the input give them equal
// values.
func (a *Accumulator) Resolve(level2value []float64) *diagram.Diagram {
	d := diagram.New(len(a.pairs))
	for _, p := range a.pairs {
		birth := level2value[p.Birth]
		if p.Essential() {
			d.Add(diagram.Essential(p.Dim, birth))
			continue
		}
		d.Add(diagram.Finite(p.Dim, birth, level2value[p.Death]))
	}
	return d
}
