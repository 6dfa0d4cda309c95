package dynamodb

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/hupe1980/prefixindex/kv"
)

const (
	attrPartitionKey = "pk"
	attrRowKey       = "rk"
	attrPayload      = "payload"
)

// Client is the subset of the DynamoDB API used by Store.
type Client interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
	DeleteTable(ctx context.Context, params *dynamodb.DeleteTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteTableOutput, error)
}

// Options configures a Store.
type Options struct {
	// TablePrefix is prepended to every namespace to form the table name.
	TablePrefix string

	// ConsistentRead requests strongly consistent reads for Query, Count and Scan.
	ConsistentRead bool
}

// Store implements kv.Store on DynamoDB.
//
// Table schema:
//   - Partition key: pk (string) - the term
//   - Sort key: rk (string) - the entity row key
//   - payload (binary) - the encoded entity
type Store struct {
	client Client
	opts   Options
}

// New creates a new DynamoDB store.
func New(client Client, optFns ...func(o *Options)) *Store {
	opts := Options{}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Store{client: client, opts: opts}
}

func (s *Store) table(namespace string) *string {
	return aws.String(s.opts.TablePrefix + namespace)
}

// Put inserts a record, failing with kv.ErrConflict if it exists.
func (s *Store) Put(ctx context.Context, namespace string, rec kv.Record) error {
	_, err := s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: s.table(namespace),
		Item: map[string]types.AttributeValue{
			attrPartitionKey: &types.AttributeValueMemberS{Value: rec.PartitionKey},
			attrRowKey:       &types.AttributeValueMemberS{Value: rec.RowKey},
			attrPayload:      &types.AttributeValueMemberB{Value: rec.Value},
		},
		ConditionExpression: aws.String("attribute_not_exists(" + attrPartitionKey + ")"),
	})
	if err != nil {
		var condErr *types.ConditionalCheckFailedException
		if errors.As(err, &condErr) {
			return kv.ErrConflict
		}
		return fmt.Errorf("failed to put item into DynamoDB: %w", err)
	}
	return nil
}

// Delete removes a record, returning kv.ErrNotFound if it is absent.
func (s *Store) Delete(ctx context.Context, namespace, partitionKey, rowKey string) error {
	_, err := s.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:           s.table(namespace),
		Key:                 key(partitionKey, rowKey),
		ConditionExpression: aws.String("attribute_exists(" + attrPartitionKey + ")"),
	})
	if err != nil {
		var condErr *types.ConditionalCheckFailedException
		if errors.As(err, &condErr) {
			return kv.ErrNotFound
		}
		return fmt.Errorf("failed to delete item from DynamoDB: %w", err)
	}
	return nil
}

// Query returns up to limit records of a partition in sort key order.
func (s *Store) Query(ctx context.Context, namespace, partitionKey string, limit int) ([]kv.Record, error) {
	input := &dynamodb.QueryInput{
		TableName:              s.table(namespace),
		KeyConditionExpression: aws.String(attrPartitionKey + " = :pk"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk": &types.AttributeValueMemberS{Value: partitionKey},
		},
		ConsistentRead: aws.Bool(s.opts.ConsistentRead),
	}
	if limit > 0 {
		input.Limit = aws.Int32(int32(limit))
	}

	var recs []kv.Record

	paginator := dynamodb.NewQueryPaginator(s.client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to query DynamoDB: %w", err)
		}
		for _, item := range page.Items {
			rec, err := decodeItem(item)
			if err != nil {
				return nil, err
			}
			recs = append(recs, rec)
			if limit > 0 && len(recs) == limit {
				return recs, nil
			}
		}
	}

	return recs, nil
}

// Count returns the number of items in the namespace table.
// It scans the whole table.
func (s *Store) Count(ctx context.Context, namespace string) (int64, error) {
	var n int64

	paginator := dynamodb.NewScanPaginator(s.client, &dynamodb.ScanInput{
		TableName:      s.table(namespace),
		Select:         types.SelectCount,
		ConsistentRead: aws.Bool(s.opts.ConsistentRead),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return 0, fmt.Errorf("failed to count DynamoDB items: %w", err)
		}
		n += int64(page.Count)
	}

	return n, nil
}

// Scan returns every record in the namespace table.
func (s *Store) Scan(ctx context.Context, namespace string) ([]kv.Record, error) {
	var recs []kv.Record

	paginator := dynamodb.NewScanPaginator(s.client, &dynamodb.ScanInput{
		TableName:      s.table(namespace),
		ConsistentRead: aws.Bool(s.opts.ConsistentRead),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to scan DynamoDB: %w", err)
		}
		for _, item := range page.Items {
			rec, err := decodeItem(item)
			if err != nil {
				return nil, err
			}
			recs = append(recs, rec)
		}
	}

	return recs, nil
}

// Drop deletes the namespace table. A missing table is not an error.
func (s *Store) Drop(ctx context.Context, namespace string) error {
	_, err := s.client.DeleteTable(ctx, &dynamodb.DeleteTableInput{
		TableName: s.table(namespace),
	})
	if err != nil {
		var nf *types.ResourceNotFoundException
		if errors.As(err, &nf) {
			return nil
		}
		return fmt.Errorf("failed to delete DynamoDB table: %w", err)
	}
	return nil
}

func key(partitionKey, rowKey string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		attrPartitionKey: &types.AttributeValueMemberS{Value: partitionKey},
		attrRowKey:       &types.AttributeValueMemberS{Value: rowKey},
	}
}

func decodeItem(item map[string]types.AttributeValue) (kv.Record, error) {
	pk, ok := item[attrPartitionKey].(*types.AttributeValueMemberS)
	if !ok {
		return kv.Record{}, errors.New("invalid pk attribute in DynamoDB")
	}
	rk, ok := item[attrRowKey].(*types.AttributeValueMemberS)
	if !ok {
		return kv.Record{}, errors.New("invalid rk attribute in DynamoDB")
	}

	rec := kv.Record{PartitionKey: pk.Value, RowKey: rk.Value}
	if payload, ok := item[attrPayload].(*types.AttributeValueMemberB); ok {
		rec.Value = payload.Value
	}
	return rec, nil
}
