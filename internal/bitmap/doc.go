// Package bitmap holds the scalar grid of a computation and the integer
// filtration derived from it.
//
// Vertex levels are the ranks of the vertex values in a stable ascending
// sort, so equal values are ordered by array position and every level is
// used exactly once. A cell of dimension >= 1 takes the maximum level of its
// vertices (lower-star filtration). The level to value table maps levels
// back to the original units when a diagram is reported.
package bitmap
