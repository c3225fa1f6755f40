package homcubes

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like Prometheus.
//
// Example Prometheus integration:
//
//	type PrometheusCollector struct {
//	    computeCounter   prometheus.Counter
//	    computeHistogram prometheus.Histogram
//	}
//
//	func (p *PrometheusCollector) RecordCompute(vertices int, duration time.Duration, err error) {
//	    p.computeCounter.Inc()
//	    p.computeHistogram.Observe(duration.Seconds())
//	}
type MetricsCollector interface {
	// RecordCompute is called after each computation with the vertex count
	// of the grid.
	RecordCompute(vertices int, duration time.Duration, err error)

	// RecordStage is called after each reduction stage. Dimension 0 is the
	// union-find stage.
	RecordStage(dim, pairs, survivors int, duration time.Duration)

	// RecordBatch is called after each batch computation.
	RecordBatch(count, failed int, duration time.Duration)

	// RecordArchive is called after each archive save or load.
	RecordArchive(bytes int64, duration time.Duration, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordCompute(int, time.Duration, error)   {}
func (NoopMetricsCollector) RecordStage(int, int, int, time.Duration)  {}
func (NoopMetricsCollector) RecordBatch(int, int, time.Duration)       {}
func (NoopMetricsCollector) RecordArchive(int64, time.Duration, error) {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	ComputeCount      atomic.Int64
	ComputeErrors     atomic.Int64
	ComputeVertices   atomic.Int64
	ComputeTotalNanos atomic.Int64
	StageCount        atomic.Int64
	StagePairs        atomic.Int64
	StageTotalNanos   atomic.Int64
	BatchCount        atomic.Int64
	BatchItems        atomic.Int64
	BatchFailed       atomic.Int64
	ArchiveCount      atomic.Int64
	ArchiveErrors     atomic.Int64
	ArchiveBytes      atomic.Int64
}

// RecordCompute implements MetricsCollector.
func (b *BasicMetricsCollector) RecordCompute(vertices int, duration time.Duration, err error) {
	b.ComputeCount.Add(1)
	b.ComputeTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.ComputeErrors.Add(1)
		return
	}
	b.ComputeVertices.Add(int64(vertices))
}

// RecordStage implements MetricsCollector.
func (b *BasicMetricsCollector) RecordStage(dim, pairs, survivors int, duration time.Duration) {
	b.StageCount.Add(1)
	b.StagePairs.Add(int64(pairs))
	b.StageTotalNanos.Add(duration.Nanoseconds())
}

// RecordBatch implements MetricsCollector.
func (b *BasicMetricsCollector) RecordBatch(count, failed int, duration time.Duration) {
	b.BatchCount.Add(1)
	b.BatchItems.Add(int64(count))
	b.BatchFailed.Add(int64(failed))
}

// RecordArchive implements MetricsCollector.
func (b *BasicMetricsCollector) RecordArchive(bytes int64, duration time.Duration, err error) {
	b.ArchiveCount.Add(1)
	if err != nil {
		b.ArchiveErrors.Add(1)
		return
	}
	b.ArchiveBytes.Add(bytes)
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		ComputeCount:    b.ComputeCount.Load(),
		ComputeErrors:   b.ComputeErrors.Load(),
		ComputeVertices: b.ComputeVertices.Load(),
		ComputeAvgNanos: avg(b.ComputeTotalNanos.Load(), b.ComputeCount.Load()),
		StageCount:      b.StageCount.Load(),
		StagePairs:      b.StagePairs.Load(),
		StageAvgNanos:   avg(b.StageTotalNanos.Load(), b.StageCount.Load()),
		BatchCount:      b.BatchCount.Load(),
		BatchItems:      b.BatchItems.Load(),
		BatchFailed:     b.BatchFailed.Load(),
		ArchiveCount:    b.ArchiveCount.Load(),
		ArchiveErrors:   b.ArchiveErrors.Load(),
		ArchiveBytes:    b.ArchiveBytes.Load(),
	}
}

func avg(total, count int64) int64 {
	if count == 0 {
		return 0
	}
	return total / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	ComputeCount    int64
	ComputeErrors   int64
	ComputeVertices int64
	ComputeAvgNanos int64
	StageCount      int64
	StagePairs      int64
	StageAvgNanos   int64
	BatchCount      int64
	BatchItems      int64
	BatchFailed     int64
	ArchiveCount    int64
	ArchiveErrors   int64
	ArchiveBytes    int64
}
