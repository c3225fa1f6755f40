package homcubes

import (
	"log/slog"

	"github.com/hupe1980/homcubes/codec"
	"github.com/hupe1980/homcubes/diagram"
	"github.com/hupe1980/homcubes/internal/reducer"
	"github.com/hupe1980/homcubes/resource"
)

type options struct {
	cacheThreshold   int
	apparentPairs    bool
	controller       *resource.Controller
	metricsCollector MetricsCollector
	logger           *Logger
	codec            codec.Codec
	compression      diagram.Compression
	updateLatest     bool
}

// Option configures an Engine or an Archive.
type Option func(*options)

// WithCacheThreshold sets the number of column additions after which a
// reduced column is cached for reuse. Zero caches every column, a negative
// value disables the cache. The default is 1.
//
// The diagram does not depend on this setting; only time and memory do.
func WithCacheThreshold(n int) Option {
	return func(o *options) {
		o.cacheThreshold = n
	}
}

// WithApparentPairs pairs a cube with its lowest coface without building
// the coboundary column whenever both have the same level and the coface is
// still free. The diagram does not depend on this setting.
func WithApparentPairs(enabled bool) Option {
	return func(o *options) {
		o.apparentPairs = enabled
	}
}

// WithResourceController shares memory, worker and IO budgets between
// engines and archives.
//
// Example:
//
//	rc := resource.NewController(resource.Config{
//	    MemoryLimitBytes: 8 << 30,
//	    MaxWorkers:       4,
//	})
//	eng := homcubes.New(homcubes.WithResourceController(rc))
func WithResourceController(rc *resource.Controller) Option {
	return func(o *options) {
		o.controller = rc
	}
}

// WithMetricsCollector configures a metrics collector for monitoring operations.
// Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &homcubes.BasicMetricsCollector{}
//	eng := homcubes.New(homcubes.WithMetricsCollector(metrics))
//	// ... compute ...
//	stats := metrics.GetStats()
//	fmt.Printf("Computations: %d, Avg latency: %dns\n", stats.ComputeCount, stats.ComputeAvgNanos)
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metricsCollector = mc
	}
}

// WithLogger configures structured logging for operations.
// Pass nil to disable logging.
//
// Example with JSON logging:
//
//	logger := homcubes.NewJSONLogger(slog.LevelInfo)
//	eng := homcubes.New(homcubes.WithLogger(logger))
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		if logger == nil {
			logger = NoopLogger()
		}
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

// WithCodec configures the codec used for archive manifests.
//
// If nil is passed, codec.Default is used. Manifests record the codec name,
// so archives written with another codec stay readable.
func WithCodec(c codec.Codec) Option {
	return func(o *options) {
		if c == nil {
			c = codec.Default
		}
		o.codec = c
	}
}

// WithCompression selects how archived diagrams are compressed. The default
// stores plain DIPHA files.
func WithCompression(c diagram.Compression) Option {
	return func(o *options) {
		o.compression = c
	}
}

// WithLatestPointer controls whether Archive.Save moves the LATEST pointer
// to the saved run. Enabled by default.
func WithLatestPointer(enabled bool) Option {
	return func(o *options) {
		o.updateLatest = enabled
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		cacheThreshold:   reducer.DefaultCacheThreshold,
		metricsCollector: NoopMetricsCollector{},
		logger:           NoopLogger(),
		codec:            codec.Default,
		compression:      diagram.CompressionNone,
		updateLatest:     true,
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	return o
}

func (o options) reducerOptions() reducer.Options {
	return reducer.Options{
		CacheThreshold: o.cacheThreshold,
		ApparentPairs:  o.apparentPairs,
	}
}
