package kv

import (
	"context"
	"errors"
)

var (
	// ErrConflict is returned by Put when a record already exists at the
	// (partition key, row key) pair.
	ErrConflict = errors.New("kv: record already exists")

	// ErrNotFound is returned by Delete when no record exists at the
	// (partition key, row key) pair.
	ErrNotFound = errors.New("kv: record not found")
)

// Record is a single stored value addressed by partition and row key.
type Record struct {
	PartitionKey string
	RowKey       string
	Value        []byte
}

// Store is a partitioned key-value store.
type Store interface {
	// Put inserts rec into namespace. It fails with ErrConflict if a record
	// with the same partition and row key exists.
	Put(ctx context.Context, namespace string, rec Record) error

	// Delete removes a record. It may return ErrNotFound if the record is absent.
	Delete(ctx context.Context, namespace, partitionKey, rowKey string) error

	// Query returns up to limit records stored under partitionKey, in the
	// store's order. A limit of 0 returns every record in the partition;
	// callers that page always pass a positive limit.
	Query(ctx context.Context, namespace, partitionKey string, limit int) ([]Record, error)

	// Count returns the number of records in namespace. Crosses partitions.
	Count(ctx context.Context, namespace string) (int64, error)

	// Scan returns every record in namespace. Crosses partitions.
	Scan(ctx context.Context, namespace string) ([]Record, error)

	// Drop deletes every record in namespace.
	Drop(ctx context.Context, namespace string) error
}
