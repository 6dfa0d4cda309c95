package prefixindex

import (
	"context"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/hupe1980/prefixindex/codec"
	"github.com/hupe1980/prefixindex/kv"
	"golang.org/x/sync/errgroup"
)

// Indexer is the contract Multi composes. Single implements it; any other
// implementation can be mixed into a Multi as a sub-index.
type Indexer[T any] interface {
	// Name identifies the index.
	Name() string

	// Index writes one entry per term of searchable.
	Index(ctx context.Context, entity T, searchable string) error

	// Reindex removes the terms of oldSearchable and writes those of
	// newSearchable. oldSearchable must not be empty.
	Reindex(ctx context.Context, entity T, oldSearchable, newSearchable string) error

	// Delete removes every entry searchable could have produced for entity.
	Delete(ctx context.Context, searchable string, entity T) error

	// Find returns up to pageSize entities indexed under term. A pageSize of
	// 0 returns none.
	Find(ctx context.Context, term string, pageSize int) ([]T, error)
}

// Entry is a decoded index entry as returned by Single.Entries.
type Entry[T any] struct {
	Term   string
	RowKey string
	Value  T
}

// Single is one prefix index stored in one namespace of a kv.Store.
//
// It holds no mutable state; every method is safe for concurrent use and all
// state lives in the store.
type Single[T any] struct {
	name    string
	store   kv.Store
	rowKey  func(T) string
	opts    IndexOptions
	codec   codec.Codec
	logger  *Logger
	metrics MetricsCollector
}

var _ Indexer[struct{}] = (*Single[struct{}])(nil)

// NewSingle creates an index named name on store. rowKey extracts the string
// that identifies an entity among others sharing a term.
//
// The name and the IndexOptions are validated here and trusted afterwards.
func NewSingle[T any](name string, store kv.Store, rowKey func(T) string, optFns ...Option) (*Single[T], error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	if store == nil {
		return nil, invalid("store", "must not be nil")
	}
	if rowKey == nil {
		return nil, invalid("rowKey", "accessor must not be nil")
	}

	o := applyOptions(optFns)
	if err := o.indexOptions.Validate(); err != nil {
		return nil, err
	}

	return &Single[T]{
		name:    name,
		store:   store,
		rowKey:  rowKey,
		opts:    o.indexOptions,
		codec:   o.codec,
		logger:  o.logger.WithIndex(name),
		metrics: o.metricsCollector,
	}, nil
}

// Name returns the index name, which is also its store namespace.
func (s *Single[T]) Name() string { return s.name }

// Options returns the index options.
func (s *Single[T]) Options() IndexOptions { return s.opts }

// Index writes an entry for every term of searchable.
//
// Strings shorter than MinLength are skipped, or rejected with a BoundError if
// ThrowOnMinNotMet is set. Strings longer than MaxLength are indexed up to
// MaxLength, or rejected without writing anything if ThrowOnMaxExceeded is set.
// Term writes run concurrently; an existing entry is ignored unless
// ThrowOnConflict is set, in which case the first ConflictError is returned
// once every write has finished.
func (s *Single[T]) Index(ctx context.Context, entity T, searchable string) (err error) {
	start := time.Now()
	rowKey := s.rowKey(entity)
	written := 0
	defer func() {
		elapsed := time.Since(start)
		s.metrics.RecordIndex(written, elapsed, err)
		s.logger.LogIndex(ctx, rowKey, written, elapsed, err)
	}()

	if rowKey == "" {
		return invalid("rowKey", "must not be empty")
	}

	terms, err := GenerateTerms(searchable, s.opts, true)
	if err != nil {
		return err
	}

	if terms.BelowMin {
		if s.opts.ThrowOnMinNotMet {
			return &BoundError{Index: s.name, Bound: BoundMin, Length: terms.Length, Limit: s.opts.MinLength}
		}
		return nil
	}
	if terms.Exceeded && s.opts.ThrowOnMaxExceeded {
		return &BoundError{Index: s.name, Bound: BoundMax, Length: terms.Length, Limit: s.opts.MaxLength}
	}

	value, err := s.codec.Marshal(entity)
	if err != nil {
		return fmt.Errorf("index %s: encode entity %q: %w", s.name, rowKey, err)
	}

	written = len(terms.Keys)

	var g errgroup.Group
	for _, term := range terms.Keys {
		g.Go(func() error {
			err := s.store.Put(ctx, s.name, kv.Record{PartitionKey: term, RowKey: rowKey, Value: value})
			if errors.Is(err, kv.ErrConflict) {
				if s.opts.ThrowOnConflict {
					return &ConflictError{Index: s.name, Term: term, RowKey: rowKey, cause: err}
				}
				s.logger.LogSkipped(ctx, "put", term, rowKey, err)
				return nil
			}
			return err
		})
	}
	return g.Wait()
}

// IndexFunc indexes entity under the string project derives from it.
func (s *Single[T]) IndexFunc(ctx context.Context, entity T, project func(T) string) error {
	if project == nil {
		return invalid("projection", "must not be nil")
	}
	return s.Index(ctx, entity, project(entity))
}

// Reindex deletes the terms of oldSearchable and then indexes newSearchable.
//
// The two steps are not atomic: if Index fails after Delete succeeded, the
// entity is left unindexed until the call is repeated. Both strings are
// checked before any store call; an empty oldSearchable is a ValidationError
// like it is for Delete. Use Index for entities that were never indexed.
func (s *Single[T]) Reindex(ctx context.Context, entity T, oldSearchable, newSearchable string) (err error) {
	start := time.Now()
	defer func() {
		elapsed := time.Since(start)
		s.metrics.RecordReindex(elapsed, err)
		s.logger.LogReindex(ctx, s.rowKey(entity), elapsed, err)
	}()

	if oldSearchable == "" {
		return invalid("oldSearchString", "must not be empty")
	}
	if n := utf8.RuneCountInString(normalize(newSearchable, s.opts)); n > MaxKeyLength {
		return invalid("newSearchString", "length %d exceeds the maximum key length %d", n, MaxKeyLength)
	}

	if err := s.Delete(ctx, oldSearchable, entity); err != nil {
		return err
	}
	return s.Index(ctx, entity, newSearchable)
}

// Delete removes the entries of entity for every prefix of searchable.
func (s *Single[T]) Delete(ctx context.Context, searchable string, entity T) error {
	return s.DeleteKey(ctx, searchable, s.rowKey(entity))
}

// DeleteKey removes the entries stored under rowKey for every prefix of
// searchable that is at least MinLength long. Prefixes are not capped at
// MaxLength, so entries written before MaxLength was lowered are removed too.
// Missing entries are ignored, which makes DeleteKey idempotent.
func (s *Single[T]) DeleteKey(ctx context.Context, searchable, rowKey string) (err error) {
	start := time.Now()
	deleted := 0
	defer func() {
		elapsed := time.Since(start)
		s.metrics.RecordDelete(deleted, elapsed, err)
		s.logger.LogDelete(ctx, rowKey, deleted, elapsed, err)
	}()

	if searchable == "" {
		return invalid("searchString", "must not be empty")
	}
	if rowKey == "" {
		return invalid("rowKey", "must not be empty")
	}

	terms, err := GenerateTerms(searchable, s.opts, false)
	if err != nil {
		return err
	}

	deleted = len(terms.Keys)

	var g errgroup.Group
	for _, term := range terms.Keys {
		g.Go(func() error {
			err := s.store.Delete(ctx, s.name, term, rowKey)
			if errors.Is(err, kv.ErrNotFound) {
				s.logger.LogSkipped(ctx, "delete", term, rowKey, err)
				return nil
			}
			return err
		})
	}
	return g.Wait()
}

// Find returns the entities indexed under term, at most pageSize of them.
// A pageSize of 0 returns no entities without querying the store, and terms
// longer than MaxKeyLength are rejected before any store call.
//
// term is case folded like indexed strings and looked up as an exact
// partition key, so the cost depends on the number of matches only.
func (s *Single[T]) Find(ctx context.Context, term string, pageSize int) (results []T, err error) {
	start := time.Now()
	defer func() {
		elapsed := time.Since(start)
		s.metrics.RecordFind(len(results), elapsed, err)
		s.logger.LogFind(ctx, term, pageSize, len(results), elapsed, err)
	}()

	if term == "" {
		return nil, invalid("term", "must not be empty")
	}
	if pageSize < 0 {
		return nil, invalid("pageSize", "must not be negative, got %d", pageSize)
	}

	normalized := normalize(term, s.opts)
	if n := utf8.RuneCountInString(normalized); n > MaxKeyLength {
		return nil, invalid("term", "length %d exceeds the maximum key length %d", n, MaxKeyLength)
	}
	if pageSize == 0 {
		return []T{}, nil
	}

	recs, err := s.store.Query(ctx, s.name, normalized, pageSize)
	if err != nil {
		return nil, err
	}
	if len(recs) > pageSize {
		recs = recs[:pageSize]
	}

	results = make([]T, 0, len(recs))
	for _, rec := range recs {
		v, err := s.decode(rec)
		if err != nil {
			return nil, err
		}
		results = append(results, v)
	}
	return results, nil
}

// Size returns the number of entries in the index. It counts across every
// partition and is meant for administration, not the request path.
func (s *Single[T]) Size(ctx context.Context) (int64, error) {
	return s.store.Count(ctx, s.name)
}

// Entries returns every entry of the index. Like Size it scans every partition.
func (s *Single[T]) Entries(ctx context.Context) ([]Entry[T], error) {
	recs, err := s.store.Scan(ctx, s.name)
	if err != nil {
		return nil, err
	}

	entries := make([]Entry[T], 0, len(recs))
	for _, rec := range recs {
		v, err := s.decode(rec)
		if err != nil {
			return nil, err
		}
		entries = append(entries, Entry[T]{Term: rec.PartitionKey, RowKey: rec.RowKey, Value: v})
	}
	return entries, nil
}

// Drop deletes the whole index from the store.
func (s *Single[T]) Drop(ctx context.Context) error {
	if err := s.store.Drop(ctx, s.name); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "index dropped")
	return nil
}

func (s *Single[T]) decode(rec kv.Record) (T, error) {
	var v T
	if err := s.codec.Unmarshal(rec.Value, &v); err != nil {
		return v, fmt.Errorf("index %s: decode entry %q/%q with codec %s: %w", s.name, rec.PartitionKey, rec.RowKey, s.codec.Name(), err)
	}
	return v, nil
}
