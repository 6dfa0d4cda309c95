// Package kv defines the partitioned key-value store that prefix indexes are
// materialized into.
//
// A Store groups records by namespace (one per index), partition key (one per
// term) and row key (one per entity). Implementations must be safe for
// concurrent use.
//
// # Built-in Implementations
//
//   - MemoryStore: in-process maps, for tests and examples
//   - dynamodb.Store: one DynamoDB table per namespace
//   - s3.Store: one object per record on Amazon S3
//   - minio.Store: one object per record on MinIO and other S3-compatible servers
//
// # Custom Implementations
//
//	type Store interface {
//	    Put(ctx, namespace, rec) error                       // ErrConflict if present
//	    Delete(ctx, namespace, pk, rk) error                 // ErrNotFound if absent
//	    Query(ctx, namespace, pk, limit) ([]Record, error)   // limit 0 = everything
//	    Count(ctx, namespace) (int64, error)
//	    Scan(ctx, namespace) ([]Record, error)
//	    Drop(ctx, namespace) error
//	}
//
// Retries, connection pooling and table provisioning are left to the backend's
// client configuration.
package kv
