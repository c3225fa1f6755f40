package geometry

import "github.com/hupe1980/homcubes/internal/cube"

// volume covers Volume and VolumePeriodic.
type volume struct {
	lattice
}

func (v *volume) LevelOf(id cube.ID, levels []cube.Level) cube.Level {
	c := v.enc.Decode(id)
	base, steps := v.spans(c)
	lvl := levels[base]
	if c.Orient == 0 {
		return lvl
	}

	// Walk the non-empty subsets of the orientation; at most 7 lookups.
	o := c.Orient
	for s := o; s != 0; s = (s - 1) & o {
		off := 0
		if s.Has(0) {
			off += steps[0]
		}
		if s.Has(1) {
			off += steps[1]
		}
		if s.Has(2) {
			off += steps[2]
		}
		lvl = max(lvl, levels[base+off])
	}
	return lvl
}

func (v *volume) ForEachCell(dim int, fn func(cube.ID)) {
	for _, o := range v.orientations(dim) {
		nx, ny, nz := v.anchorLimit(0, o), v.anchorLimit(1, o), v.anchorLimit(2, o)
		c := cube.Coord{Orient: o}
		for z := 0; z < nz; z++ {
			c.Pos[2] = z
			for y := 0; y < ny; y++ {
				c.Pos[1] = y
				for x := 0; x < nx; x++ {
					c.Pos[0] = x
					fn(v.enc.Encode(c))
				}
			}
		}
	}
}
