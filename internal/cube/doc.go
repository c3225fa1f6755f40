// Package cube packs cubical cells into integer identifiers.
//
// A cell is an anchor vertex plus an orientation: bit i of the orientation
// says the cell spans [x_i, x_i+1] along axis i, otherwise it is degenerate
// on that axis. The cell dimension is the population count of the
// orientation.
//
// Every axis owns a bit field of RequiredBits(extent) bits holding
// (coordinate<<1 | flag). Axis 0 occupies the least significant field:
//
//	┌──────────────┬──────────────┬──────────────┐
//	│ axis 2 field │ axis 1 field │ axis 0 field │
//	│  x2 │ flag2  │  x1 │ flag1  │  x0 │ flag0  │
//	└──────────────┴──────────────┴──────────────┘
//
// IDs are only produced by an Encoder, so a value of type ID is always a
// well-formed packing for the encoder that made it.
package cube
