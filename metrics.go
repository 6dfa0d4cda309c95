package prefixindex

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
//	    termsWritten prometheus.Counter
//	    findLatency  prometheus.Histogram
//	}
//
//	func (p *PrometheusCollector) RecordIndex(terms int, duration time.Duration, err error) {
//	    p.termsWritten.Add(float64(terms))
//	    // ... record error state, duration, etc.
//	}
type MetricsCollector interface {
	// RecordIndex is called after each Index call.
	// terms is the number of terms generated, err is nil if successful.
	RecordIndex(terms int, duration time.Duration, err error)

	// RecordDelete is called after each Delete call.
	RecordDelete(terms int, duration time.Duration, err error)

	// RecordReindex is called after each Reindex call.
	RecordReindex(duration time.Duration, err error)

	// RecordFind is called after each Find call.
	// results is the number of entities returned.
	RecordFind(results int, duration time.Duration, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordIndex(int, time.Duration, error)  {}
func (NoopMetricsCollector) RecordDelete(int, time.Duration, error) {}
func (NoopMetricsCollector) RecordReindex(time.Duration, error)     {}
func (NoopMetricsCollector) RecordFind(int, time.Duration, error)   {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	IndexCount     atomic.Int64
	IndexErrors    atomic.Int64
	TermsWritten   atomic.Int64
	DeleteCount    atomic.Int64
	DeleteErrors   atomic.Int64
	TermsDeleted   atomic.Int64
	ReindexCount   atomic.Int64
	ReindexErrors  atomic.Int64
	FindCount      atomic.Int64
	FindErrors     atomic.Int64
	FindResults    atomic.Int64
	FindTotalNanos atomic.Int64
}

// RecordIndex implements MetricsCollector.
func (b *BasicMetricsCollector) RecordIndex(terms int, duration time.Duration, err error) {
	b.IndexCount.Add(1)
	if err != nil {
		b.IndexErrors.Add(1)
		return
	}
	b.TermsWritten.Add(int64(terms))
}

// RecordDelete implements MetricsCollector.
func (b *BasicMetricsCollector) RecordDelete(terms int, duration time.Duration, err error) {
	b.DeleteCount.Add(1)
	if err != nil {
		b.DeleteErrors.Add(1)
		return
	}
	b.TermsDeleted.Add(int64(terms))
}

// RecordReindex implements MetricsCollector.
func (b *BasicMetricsCollector) RecordReindex(duration time.Duration, err error) {
	b.ReindexCount.Add(1)
	if err != nil {
		b.ReindexErrors.Add(1)
	}
}

// RecordFind implements MetricsCollector.
func (b *BasicMetricsCollector) RecordFind(results int, duration time.Duration, err error) {
	b.FindCount.Add(1)
	b.FindTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.FindErrors.Add(1)
		return
	}
	b.FindResults.Add(int64(results))
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		IndexCount:    b.IndexCount.Load(),
		IndexErrors:   b.IndexErrors.Load(),
		TermsWritten:  b.TermsWritten.Load(),
		DeleteCount:   b.DeleteCount.Load(),
		DeleteErrors:  b.DeleteErrors.Load(),
		TermsDeleted:  b.TermsDeleted.Load(),
		ReindexCount:  b.ReindexCount.Load(),
		ReindexErrors: b.ReindexErrors.Load(),
		FindCount:     b.FindCount.Load(),
		FindErrors:    b.FindErrors.Load(),
		FindResults:   b.FindResults.Load(),
		FindAvgNanos:  b.getAvgFindNanos(),
	}
}

func (b *BasicMetricsCollector) getAvgFindNanos() int64 {
	count := b.FindCount.Load()
	if count == 0 {
		return 0
	}
	return b.FindTotalNanos.Load() / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	IndexCount    int64
	IndexErrors   int64
	TermsWritten  int64
	DeleteCount   int64
	DeleteErrors  int64
	TermsDeleted  int64
	ReindexCount  int64
	ReindexErrors int64
	FindCount     int64
	FindErrors    int64
	FindResults   int64
	FindAvgNanos  int64
}
