// Package config loads the configuration of the prefixindex command.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/hupe1980/prefixindex"
	"github.com/hupe1980/prefixindex/codec"
)

// Backend names a kv.Store implementation.
type Backend string

const (
	BackendMemory   Backend = "memory"
	BackendDynamoDB Backend = "dynamodb"
	BackendS3       Backend = "s3"
	BackendMinio    Backend = "minio"
)

// Config is the complete configuration of the prefixindex command.
type Config struct {
	Store    StoreConfig `yaml:"store"`
	Index    IndexConfig `yaml:"index"`
	Codec    string      `yaml:"codec"`
	LogLevel string      `yaml:"log_level"`
}

// StoreConfig selects and configures the backing store.
type StoreConfig struct {
	Backend  Backend        `yaml:"backend"`
	Region   string         `yaml:"region"`
	DynamoDB DynamoDBConfig `yaml:"dynamodb"`
	S3       BucketConfig   `yaml:"s3"`
	Minio    MinioConfig    `yaml:"minio"`
	Throttle ThrottleConfig `yaml:"throttle"`
}

// DynamoDBConfig configures the DynamoDB backend.
type DynamoDBConfig struct {
	TablePrefix    string `yaml:"table_prefix"`
	ConsistentRead bool   `yaml:"consistent_read"`
}

// BucketConfig locates records in an object store.
type BucketConfig struct {
	Bucket string `yaml:"bucket"`
	Prefix string `yaml:"prefix"`
}

// MinioConfig configures the MinIO backend.
type MinioConfig struct {
	BucketConfig `yaml:",inline"`
	Endpoint     string `yaml:"endpoint"`
	AccessKey    string `yaml:"access_key"`
	SecretKey    string `yaml:"secret_key"`
	Secure       bool   `yaml:"secure"`
}

// ThrottleConfig bounds calls to the store. Zero values mean unlimited.
type ThrottleConfig struct {
	MaxInFlight  int64   `yaml:"max_in_flight"`
	OpsPerSecond float64 `yaml:"ops_per_second"`
	Burst        int     `yaml:"burst"`
}

// IndexConfig mirrors prefixindex.IndexOptions.
type IndexConfig struct {
	MinLength     int  `yaml:"min_length"`
	MaxLength     int  `yaml:"max_length"`
	CaseSensitive bool `yaml:"case_sensitive"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	opts := prefixindex.DefaultIndexOptions()
	return &Config{
		Store: StoreConfig{Backend: BackendDynamoDB},
		Index: IndexConfig{
			MinLength:     opts.MinLength,
			MaxLength:     opts.MaxLength,
			CaseSensitive: opts.CaseSensitive,
		},
		Codec:    codec.Default.Name(),
		LogLevel: "info",
	}
}

// Load reads path over the defaults and applies environment overrides.
// An empty path loads the defaults only.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv applies PREFIXINDEX_* environment overrides.
func (c *Config) applyEnv() {
	if v := os.Getenv("PREFIXINDEX_BACKEND"); v != "" {
		c.Store.Backend = Backend(strings.ToLower(v))
	}
	if v := os.Getenv("PREFIXINDEX_REGION"); v != "" {
		c.Store.Region = v
	}
	if v := os.Getenv("PREFIXINDEX_CODEC"); v != "" {
		c.Codec = v
	}
	if v := os.Getenv("PREFIXINDEX_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	var errs []error

	switch c.Store.Backend {
	case BackendMemory, BackendDynamoDB:
	case BackendS3:
		if c.Store.S3.Bucket == "" {
			errs = append(errs, errors.New("store.s3.bucket is required"))
		}
	case BackendMinio:
		if c.Store.Minio.Endpoint == "" {
			errs = append(errs, errors.New("store.minio.endpoint is required"))
		}
		if c.Store.Minio.Bucket == "" {
			errs = append(errs, errors.New("store.minio.bucket is required"))
		}
	default:
		errs = append(errs, fmt.Errorf("store.backend %q is not one of memory, dynamodb, s3, minio", c.Store.Backend))
	}

	if err := c.IndexOptions().Validate(); err != nil {
		errs = append(errs, err)
	}

	if _, ok := codec.ByName(c.Codec); !ok {
		errs = append(errs, fmt.Errorf("codec %q is unknown", c.Codec))
	}

	if _, err := c.Level(); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

// IndexOptions converts the index section.
func (c *Config) IndexOptions() prefixindex.IndexOptions {
	return prefixindex.IndexOptions{
		MinLength:     c.Index.MinLength,
		MaxLength:     c.Index.MaxLength,
		CaseSensitive: c.Index.CaseSensitive,
	}
}

// Level parses LogLevel.
func (c *Config) Level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("log_level: %w", err)
	}
	return level, nil
}
