// Package homcubes computes persistent homology of scalar fields sampled on
// 2D and 3D cubical grids.
//
// A grid assigns a real value to every vertex. Cells (edges, squares,
// cubes) take the maximum of their vertices, which defines the lower-star
// filtration. The engine reports every topological feature born and killed
// along that filtration as a persistence pair, grouped by dimension:
// connected components (0), loops (1) and voids (2).
//
// # Quick Start
//
//	g := grid.New([]int{3, 3}, []float64{
//	    0, 1, 0,
//	    1, 2, 1,
//	    0, 1, 0,
//	})
//	res, _ := homcubes.Compute(g)
//	for _, p := range res.Diagram.Pairs {
//	    fmt.Println(p.Dim, p.Birth, p.Death)
//	}
//
// Axes may wrap around:
//
//	g := grid.NewPeriodic([]int{64, 64}, []bool{true, true}, values) // torus
//
// # Pipeline
//
// Dimension 0 is computed with a union-find over edges. Every higher
// dimension reduces the coboundary columns of the cubes the previous stage
// left unpaired, over the two-element field. Cubes that survive the top
// dimension are its essential classes. Pairs born and dying at the same
// filtration level are dropped; ties in the input can still leave pairs of
// zero persistence, which Diagram.Prune removes.
//
// A single computation is sequential and deterministic. Independent grids
// run concurrently with ComputeBatch:
//
//	rc := resource.NewController(resource.Config{MaxWorkers: 8, MemoryLimitBytes: 8 << 30})
//	eng := homcubes.New(homcubes.WithResourceController(rc))
//	results, err := eng.ComputeBatch(ctx, grids)
//
// # Archives
//
// Diagrams are stored in DIPHA format in any blobstore.BlobStore (local
// directory, memory, S3, MinIO), next to a manifest describing the run:
//
//	a := homcubes.NewArchive(blobstore.NewLocalStore("./runs"),
//	    homcubes.WithCompression(diagram.CompressionZSTD))
//	_, err := a.Save(ctx, "2026-10-18/field", res)
//	d, m, err := a.LoadLatest(ctx)
//
// # Errors
//
// Invalid inputs are reported before any cell table is allocated:
//
//	_, err := homcubes.Compute(g)
//	var tooLarge *homcubes.ErrShapeTooLarge
//	switch {
//	case errors.As(err, &tooLarge):
//	case errors.Is(err, homcubes.ErrNonFinite):
//	case errors.Is(err, homcubes.ErrOutOfMemory):
//	}
package homcubes
