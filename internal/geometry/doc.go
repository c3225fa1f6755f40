// Package geometry implements the dimension-specific combinatorics of a
// cubical grid on top of the cube encoder.
//
// A Strategy is selected once per grid from a closed set of kinds (plane,
// periodic plane, volume, periodic volume) and answers four questions:
// where a vertex lives in the flat value array, which vertices bound a cell
// (and hence its filtration level), which cells are cofaces of a cell, and
// which cells of a given dimension exist.
//
// Axes of extent 1 carry no edges. A periodic flag on such an axis is
// ignored, so a (n, 1) periodic grid is a ring rather than a torus.
package geometry
