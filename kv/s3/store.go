package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/hupe1980/prefixindex/kv"
	"golang.org/x/sync/errgroup"
)

// deleteBatchSize is the DeleteObjects per-request key limit.
const deleteBatchSize = 1000

// fetchConcurrency bounds parallel GetObject calls of a single Query or Scan.
const fetchConcurrency = 16

// Client is the subset of the S3 API used by Store.
type Client interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
	DeleteObjects(ctx context.Context, params *s3.DeleteObjectsInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectsOutput, error)
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
}

// Store implements kv.Store for S3.
type Store struct {
	client Client
	bucket string
	prefix string
}

// NewStore creates a new S3 store.
// rootPrefix is prepended to all keys (e.g. "indexes/").
func NewStore(client Client, bucket, rootPrefix string) *Store {
	return &Store{
		client: client,
		bucket: bucket,
		prefix: rootPrefix,
	}
}

// Put writes the record unless an object already exists at its key.
func (s *Store) Put(ctx context.Context, namespace string, rec kv.Record) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(kv.ObjectKey(s.prefix, namespace, rec.PartitionKey, rec.RowKey)),
		Body:        bytes.NewReader(rec.Value),
		IfNoneMatch: aws.String("*"),
	})
	if err != nil {
		var apiErr smithy.APIError
		if errors.As(err, &apiErr) {
			switch apiErr.ErrorCode() {
			case "PreconditionFailed", "ConditionalRequestConflict":
				return kv.ErrConflict
			}
		}
		return err
	}
	return nil
}

// Delete removes the record. S3 deletes are idempotent, so a missing
// object is never reported as kv.ErrNotFound.
func (s *Store) Delete(ctx context.Context, namespace, partitionKey, rowKey string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(kv.ObjectKey(s.prefix, namespace, partitionKey, rowKey)),
	})
	return err
}

// Query lists up to limit objects of the partition and fetches their bodies.
func (s *Store) Query(ctx context.Context, namespace, partitionKey string, limit int) ([]kv.Record, error) {
	keys, err := s.list(ctx, kv.PartitionPrefix(s.prefix, namespace, partitionKey), limit)
	if err != nil {
		return nil, err
	}
	return s.fetch(ctx, namespace, keys)
}

// Count lists the namespace and returns the number of objects.
func (s *Store) Count(ctx context.Context, namespace string) (int64, error) {
	keys, err := s.list(ctx, kv.NamespacePrefix(s.prefix, namespace), 0)
	if err != nil {
		return 0, err
	}
	return int64(len(keys)), nil
}

// Scan fetches every object of the namespace.
func (s *Store) Scan(ctx context.Context, namespace string) ([]kv.Record, error) {
	keys, err := s.list(ctx, kv.NamespacePrefix(s.prefix, namespace), 0)
	if err != nil {
		return nil, err
	}
	return s.fetch(ctx, namespace, keys)
}

// Drop deletes every object of the namespace in batches.
func (s *Store) Drop(ctx context.Context, namespace string) error {
	keys, err := s.list(ctx, kv.NamespacePrefix(s.prefix, namespace), 0)
	if err != nil {
		return err
	}

	for start := 0; start < len(keys); start += deleteBatchSize {
		end := min(start+deleteBatchSize, len(keys))

		objects := make([]types.ObjectIdentifier, 0, end-start)
		for _, k := range keys[start:end] {
			objects = append(objects, types.ObjectIdentifier{Key: aws.String(k)})
		}

		out, err := s.client.DeleteObjects(ctx, &s3.DeleteObjectsInput{
			Bucket: aws.String(s.bucket),
			Delete: &types.Delete{Objects: objects, Quiet: aws.Bool(true)},
		})
		if err != nil {
			return err
		}
		if len(out.Errors) > 0 {
			e := out.Errors[0]
			return fmt.Errorf("failed to delete %s: %s", aws.ToString(e.Key), aws.ToString(e.Message))
		}
	}
	return nil
}

// list returns object keys under prefix in key order, stopping after limit keys if limit > 0.
func (s *Store) list(ctx context.Context, prefix string, limit int) ([]string, error) {
	input := &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(prefix),
	}
	if limit > 0 && limit < 1000 {
		input.MaxKeys = aws.Int32(int32(limit))
	}

	var keys []string

	paginator := s3.NewListObjectsV2Paginator(s.client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		for _, obj := range page.Contents {
			keys = append(keys, aws.ToString(obj.Key))
			if limit > 0 && len(keys) == limit {
				return keys, nil
			}
		}
	}
	return keys, nil
}

// fetch reads the bodies of keys concurrently, preserving key order.
// Objects deleted after the listing are skipped.
func (s *Store) fetch(ctx context.Context, namespace string, keys []string) ([]kv.Record, error) {
	recs := make([]kv.Record, len(keys))
	found := make([]bool, len(keys))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(fetchConcurrency)

	for i, k := range keys {
		g.Go(func() error {
			pk, rk, err := kv.ParseObjectKey(s.prefix, namespace, k)
			if err != nil {
				return err
			}

			resp, err := s.client.GetObject(gctx, &s3.GetObjectInput{
				Bucket: aws.String(s.bucket),
				Key:    aws.String(k),
			})
			if err != nil {
				var nsk *types.NoSuchKey
				if errors.As(err, &nsk) {
					return nil
				}
				return err
			}
			defer func() { _ = resp.Body.Close() }()

			value, err := io.ReadAll(resp.Body)
			if err != nil {
				return err
			}

			recs[i] = kv.Record{PartitionKey: pk, RowKey: rk, Value: value}
			found[i] = true
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := recs[:0]
	for i, rec := range recs {
		if found[i] {
			out = append(out, rec)
		}
	}
	return out, nil
}
