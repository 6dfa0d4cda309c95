package minio

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/hupe1980/prefixindex/kv"
	"github.com/minio/minio-go/v7"
)

// Store implements kv.Store for MinIO.
type Store struct {
	client *minio.Client
	bucket string
	prefix string
}

// NewStore creates a new MinIO store.
// bucket is the MinIO bucket name.
// rootPrefix is prepended to all keys (e.g. "indexes/").
func NewStore(client *minio.Client, bucket, rootPrefix string) *Store {
	return &Store{
		client: client,
		bucket: bucket,
		prefix: rootPrefix,
	}
}

func isNotFound(err error) bool {
	errResp := minio.ToErrorResponse(err)
	return errResp.Code == "NoSuchKey" || errResp.Code == "NotFound"
}

// Put writes the record unless an object already exists at its key.
func (s *Store) Put(ctx context.Context, namespace string, rec kv.Record) error {
	key := kv.ObjectKey(s.prefix, namespace, rec.PartitionKey, rec.RowKey)

	_, err := s.client.StatObject(ctx, s.bucket, key, minio.StatObjectOptions{})
	if err == nil {
		return kv.ErrConflict
	}
	if !isNotFound(err) {
		return err
	}

	_, err = s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(rec.Value), int64(len(rec.Value)), minio.PutObjectOptions{
		ContentType: "application/octet-stream",
	})
	return err
}

// Delete removes the record, returning kv.ErrNotFound if it is absent.
func (s *Store) Delete(ctx context.Context, namespace, partitionKey, rowKey string) error {
	key := kv.ObjectKey(s.prefix, namespace, partitionKey, rowKey)

	if _, err := s.client.StatObject(ctx, s.bucket, key, minio.StatObjectOptions{}); err != nil {
		if isNotFound(err) {
			return kv.ErrNotFound
		}
		return err
	}

	return s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{})
}

// Query returns up to limit records of the partition in key order.
func (s *Store) Query(ctx context.Context, namespace, partitionKey string, limit int) ([]kv.Record, error) {
	return s.collect(ctx, namespace, kv.PartitionPrefix(s.prefix, namespace, partitionKey), limit)
}

// Count returns the number of objects in the namespace.
func (s *Store) Count(ctx context.Context, namespace string) (int64, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var n int64
	for obj := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{
		Prefix:    kv.NamespacePrefix(s.prefix, namespace),
		Recursive: true,
	}) {
		if obj.Err != nil {
			return 0, obj.Err
		}
		n++
	}
	return n, nil
}

// Scan returns every record of the namespace.
func (s *Store) Scan(ctx context.Context, namespace string) ([]kv.Record, error) {
	return s.collect(ctx, namespace, kv.NamespacePrefix(s.prefix, namespace), 0)
}

// Drop removes every object of the namespace.
func (s *Store) Drop(ctx context.Context, namespace string) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	objects := s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{
		Prefix:    kv.NamespacePrefix(s.prefix, namespace),
		Recursive: true,
	})

	var errs []error
	for rerr := range s.client.RemoveObjects(ctx, s.bucket, objects, minio.RemoveObjectsOptions{}) {
		errs = append(errs, fmt.Errorf("failed to remove %s: %w", rerr.ObjectName, rerr.Err))
	}
	return errors.Join(errs...)
}

func (s *Store) collect(ctx context.Context, namespace, prefix string, limit int) ([]kv.Record, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var recs []kv.Record
	for obj := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
	}) {
		if obj.Err != nil {
			return nil, obj.Err
		}

		pk, rk, err := kv.ParseObjectKey(s.prefix, namespace, obj.Key)
		if err != nil {
			return nil, err
		}

		value, err := s.get(ctx, obj.Key)
		if err != nil {
			if isNotFound(err) {
				continue // deleted after listing
			}
			return nil, err
		}

		recs = append(recs, kv.Record{PartitionKey: pk, RowKey: rk, Value: value})
		if limit > 0 && len(recs) == limit {
			break
		}
	}
	return recs, nil
}

func (s *Store) get(ctx context.Context, key string) ([]byte, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, err
	}
	defer obj.Close()

	return io.ReadAll(obj)
}
