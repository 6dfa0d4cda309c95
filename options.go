package prefixindex

import (
	"log/slog"

	"github.com/hupe1980/prefixindex/codec"
)

type options struct {
	indexOptions     IndexOptions
	codec            codec.Codec
	metricsCollector MetricsCollector
	logger           *Logger
}

// Option configures a Single index.
type Option func(*options)

// WithIndexOptions sets the term generation and policy options.
// They are validated by NewSingle.
func WithIndexOptions(o IndexOptions) Option {
	return func(opts *options) {
		opts.indexOptions = o
	}
}

// WithCodec configures the codec used to encode entities into entries.
//
// If nil is passed, codec.Default is used. All indexes sharing a namespace
// must use the same codec.
func WithCodec(c codec.Codec) Option {
	return func(o *options) {
		if c == nil {
			c = codec.Default
		}
		o.codec = c
	}
}

// WithMetricsCollector configures a metrics collector for monitoring operations.
// Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &prefixindex.BasicMetricsCollector{}
//	idx, _ := prefixindex.NewSingle("people", store, rowKey, prefixindex.WithMetricsCollector(metrics))
//	// ... use idx ...
//	stats := metrics.GetStats()
//	fmt.Printf("Finds: %d, Avg latency: %dns\n", stats.FindCount, stats.FindAvgNanos)
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
//	logger := prefixindex.NewJSONLogger(slog.LevelInfo)
//	idx, _ := prefixindex.NewSingle("people", store, rowKey, prefixindex.WithLogger(logger))
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

func applyOptions(optFns []Option) options {
	o := options{
		indexOptions:     DefaultIndexOptions(),
		codec:            codec.Default,
		metricsCollector: NoopMetricsCollector{},
		logger:           NoopLogger(),
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	return o
}
