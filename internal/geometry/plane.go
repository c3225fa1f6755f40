package geometry

import "github.com/hupe1980/homcubes/internal/cube"

// plane covers Plane and PlanePeriodic.
type plane struct {
	lattice
}

func (p *plane) LevelOf(id cube.ID, levels []cube.Level) cube.Level {
	c := p.enc.Decode(id)
	x, y := c.Pos[0], c.Pos[1]
	base := x + y*p.stride[1]

	switch c.Orient {
	case 0b00:
		return levels[base]
	case 0b01:
		return max(levels[base], levels[base+p.step(0, x)])
	case 0b10:
		return max(levels[base], levels[base+p.step(1, y)])
	default:
		dx, dy := p.step(0, x), p.step(1, y)
		return max(levels[base], levels[base+dx], levels[base+dy], levels[base+dx+dy])
	}
}

func (p *plane) ForEachCell(dim int, fn func(cube.ID)) {
	for _, o := range p.orientations(dim) {
		nx, ny := p.anchorLimit(0, o), p.anchorLimit(1, o)
		c := cube.Coord{Orient: o}
		for y := 0; y < ny; y++ {
			c.Pos[1] = y
			for x := 0; x < nx; x++ {
				c.Pos[0] = x
				fn(p.enc.Encode(c))
			}
		}
	}
}
