package main

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/hupe1980/prefixindex/internal/config"
	"github.com/hupe1980/prefixindex/kv"
	kvddb "github.com/hupe1980/prefixindex/kv/dynamodb"
	kvminio "github.com/hupe1980/prefixindex/kv/minio"
	kvs3 "github.com/hupe1980/prefixindex/kv/s3"
)

// openStore builds the configured kv.Store, throttled if limits are set.
func openStore(ctx context.Context, cfg *config.Config) (kv.Store, error) {
	store, err := openBackend(ctx, cfg.Store)
	if err != nil {
		return nil, err
	}

	t := cfg.Store.Throttle
	if t.MaxInFlight > 0 || t.OpsPerSecond > 0 {
		store = kv.Throttle(store, kv.ThrottleConfig{
			MaxInFlight:  t.MaxInFlight,
			OpsPerSecond: t.OpsPerSecond,
			Burst:        t.Burst,
		})
	}
	return store, nil
}

func openBackend(ctx context.Context, cfg config.StoreConfig) (kv.Store, error) {
	switch cfg.Backend {
	case config.BackendMemory:
		return kv.NewMemoryStore(), nil
	case config.BackendDynamoDB:
		awsCfg, err := loadAWSConfig(ctx, cfg.Region)
		if err != nil {
			return nil, err
		}
		return kvddb.New(dynamodb.NewFromConfig(awsCfg), func(o *kvddb.Options) {
			o.TablePrefix = cfg.DynamoDB.TablePrefix
			o.ConsistentRead = cfg.DynamoDB.ConsistentRead
		}), nil
	case config.BackendS3:
		awsCfg, err := loadAWSConfig(ctx, cfg.Region)
		if err != nil {
			return nil, err
		}
		return kvs3.NewStore(s3.NewFromConfig(awsCfg), cfg.S3.Bucket, cfg.S3.Prefix), nil
	case config.BackendMinio:
		client, err := minio.New(cfg.Minio.Endpoint, &minio.Options{
			Creds:  credentials.NewStaticV4(cfg.Minio.AccessKey, cfg.Minio.SecretKey, ""),
			Secure: cfg.Minio.Secure,
			Region: cfg.Region,
		})
		if err != nil {
			return nil, fmt.Errorf("create minio client: %w", err)
		}
		return kvminio.NewStore(client, cfg.Minio.Bucket, cfg.Minio.Prefix), nil
	default:
		return nil, fmt.Errorf("unknown backend %q", cfg.Backend)
	}
}

func loadAWSConfig(ctx context.Context, region string) (aws.Config, error) {
	var optFns []func(*awsconfig.LoadOptions) error
	if region != "" {
		optFns = append(optFns, awsconfig.WithRegion(region))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, optFns...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("load AWS config: %w", err)
	}
	return awsCfg, nil
}
