// Package testutil provides testing utilities for homcubes.
//
// This package is intended for use in tests and benchmarks only.
// It provides reproducible random scalar grids.
//
// # Random Grid Generation
//
//	rng := testutil.NewRNG(seed)
//	values := rng.Grid(16 * 16)          // uniform [0, 1)
//	values = rng.QuantizedGrid(256, 4)   // many ties
//	values = rng.GaussianGrid(256)       // standard normal
package testutil
