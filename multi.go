package prefixindex

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Binding pairs a sub-index with the projection producing its searchable string.
type Binding[T any] struct {
	Index   Indexer[T]
	Project func(T) string
}

// Bind is shorthand for Binding[T]{Index: idx, Project: project}.
func Bind[T any](idx Indexer[T], project func(T) string) Binding[T] {
	return Binding[T]{Index: idx, Project: project}
}

// Multi presents several independently configured indexes as one.
//
// Every operation fans out to all sub-indexes concurrently and waits for all
// of them. The first error is returned, but sub-indexes that already
// succeeded are not rolled back, so a failed write may leave the sub-indexes
// out of step with each other.
type Multi[T any] struct {
	bindings []Binding[T]
}

// NewMulti creates a Multi over bindings. Sub-index names must be unique.
func NewMulti[T any](bindings ...Binding[T]) (*Multi[T], error) {
	if len(bindings) == 0 {
		return nil, invalid("bindings", "at least one sub-index is required")
	}

	seen := make(map[string]struct{}, len(bindings))
	for _, b := range bindings {
		if b.Index == nil {
			return nil, invalid("bindings", "sub-index must not be nil")
		}
		if b.Project == nil {
			return nil, invalid("bindings", "projection of %s must not be nil", b.Index.Name())
		}
		if _, dup := seen[b.Index.Name()]; dup {
			return nil, invalid("bindings", "duplicate sub-index %s", b.Index.Name())
		}
		seen[b.Index.Name()] = struct{}{}
	}

	return &Multi[T]{bindings: append([]Binding[T](nil), bindings...)}, nil
}

// Indexes returns the sub-indexes in binding order.
func (m *Multi[T]) Indexes() []Indexer[T] {
	out := make([]Indexer[T], len(m.bindings))
	for i, b := range m.bindings {
		out[i] = b.Index
	}
	return out
}

// each runs fn for every binding concurrently and returns the first error
// once all of them have finished. Siblings are never canceled.
func (m *Multi[T]) each(fn func(i int, b Binding[T]) error) error {
	var g errgroup.Group
	for i, b := range m.bindings {
		g.Go(func() error { return fn(i, b) })
	}
	return g.Wait()
}

// Index indexes entity in every sub-index under its projection.
func (m *Multi[T]) Index(ctx context.Context, entity T) error {
	return m.each(func(_ int, b Binding[T]) error {
		return b.Index.Index(ctx, entity, b.Project(entity))
	})
}

// Delete removes entity from every sub-index.
func (m *Multi[T]) Delete(ctx context.Context, entity T) error {
	return m.each(func(_ int, b Binding[T]) error {
		return b.Index.Delete(ctx, b.Project(entity), entity)
	})
}

// Reindex moves an entity from the projections of oldEntity to those of
// newEntity in every sub-index. Each sub-index deletes before it indexes.
func (m *Multi[T]) Reindex(ctx context.Context, oldEntity, newEntity T) error {
	return m.each(func(_ int, b Binding[T]) error {
		return b.Index.Reindex(ctx, newEntity, b.Project(oldEntity), b.Project(newEntity))
	})
}

// Find queries every sub-index for term with the same pageSize, concatenates
// the results in binding order, applies dedupe and truncates to pageSize.
// A pageSize of 0 returns no entities without querying any sub-index.
//
// Paging happens per sub-index before merging: an entity matched by several
// sub-indexes takes a page slot in each, so fewer than pageSize distinct
// results may be returned even when more exist.
func (m *Multi[T]) Find(ctx context.Context, term string, dedupe func([]T) []T, pageSize int) ([]T, error) {
	if term == "" {
		return nil, invalid("term", "must not be empty")
	}
	if pageSize < 0 {
		return nil, invalid("pageSize", "must not be negative, got %d", pageSize)
	}
	if dedupe == nil {
		return nil, invalid("dedupe", "must not be nil")
	}
	if pageSize == 0 {
		return []T{}, nil
	}

	partial := make([][]T, len(m.bindings))
	err := m.each(func(i int, b Binding[T]) error {
		found, err := b.Index.Find(ctx, term, pageSize)
		if err != nil {
			return err
		}
		partial[i] = found
		return nil
	})
	if err != nil {
		return nil, err
	}

	var all []T
	for _, p := range partial {
		all = append(all, p...)
	}

	results := dedupe(all)
	if len(results) > pageSize {
		results = results[:pageSize]
	}
	return results, nil
}

// DedupeBy returns a dedupe function for Multi.Find that keeps the first
// entity of every key, preserving order.
func DedupeBy[T any, K comparable](key func(T) K) func([]T) []T {
	return func(in []T) []T {
		seen := make(map[K]struct{}, len(in))
		out := make([]T, 0, len(in))
		for _, v := range in {
			k := key(v)
			if _, ok := seen[k]; ok {
				continue
			}
			seen[k] = struct{}{}
			out = append(out, v)
		}
		return out
	}
}
