package config

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/aws/retry"
	awsConfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/mitchellh/mapstructure"

	"github.com/pathstore/pathstore/internal/logger"
	"github.com/pathstore/pathstore/pkg/filestore"
	badgerStore "github.com/pathstore/pathstore/pkg/filestore/badger"
	fsStore "github.com/pathstore/pathstore/pkg/filestore/fs"
	memoryStore "github.com/pathstore/pathstore/pkg/filestore/memory"
	s3Store "github.com/pathstore/pathstore/pkg/filestore/s3"
)

// CreateStore creates a filestore based on configuration.
//
// This factory function uses the Type field to determine which store
// implementation to create, then decodes the type-specific configuration
// from the corresponding map and passes it to the store's constructor.
//
// Supported types:
//   - "filesystem": Uses pkg/filestore/fs (local filesystem storage)
//   - "memory": Uses pkg/filestore/memory (in-memory storage, ephemeral)
//   - "s3": Uses pkg/filestore/s3 (Amazon S3 or compatible storage)
//   - "badger": Uses pkg/filestore/badger (BadgerDB storage, persistent)
//
// Parameters:
//   - ctx: Context for initialization operations
//   - cfg: Store configuration
//   - m: Metrics sink for stores that support instrumentation (nil disables)
//
// Returns:
//   - filestore.Store: Initialized store
//   - error: Configuration or initialization error
func CreateStore(ctx context.Context, cfg *StoreConfig, m filestore.Metrics) (filestore.Store, error) {
	switch cfg.Type {
	case "filesystem":
		return createFilesystemStore(ctx, cfg.Filesystem, m)
	case "memory":
		return memoryStore.New(), nil
	case "s3":
		return createS3Store(ctx, cfg.S3)
	case "badger":
		return createBadgerStore(ctx, cfg.Badger)
	default:
		return nil, fmt.Errorf("unknown store type: %q (supported: filesystem, memory, s3, badger)", cfg.Type)
	}
}

// createFilesystemStore creates a filesystem-backed store.
func createFilesystemStore(ctx context.Context, options map[string]any, m filestore.Metrics) (filestore.Store, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	type FilesystemStoreConfig struct {
		Path string `mapstructure:"path"`
	}

	var storeCfg FilesystemStoreConfig
	if err := mapstructure.Decode(options, &storeCfg); err != nil {
		return nil, fmt.Errorf("failed to decode filesystem store config: %w", err)
	}

	if storeCfg.Path == "" {
		return nil, fmt.Errorf("filesystem store: path is required")
	}

	var opts []fsStore.Option
	if m != nil {
		opts = append(opts, fsStore.WithMetrics(m))
	}

	return fsStore.New(storeCfg.Path, opts...), nil
}

// createS3Store creates an S3-backed store.
func createS3Store(ctx context.Context, options map[string]any) (filestore.Store, error) {
	type S3StoreConfig struct {
		Region          string `mapstructure:"region"`
		Bucket          string `mapstructure:"bucket"`
		KeyPrefix       string `mapstructure:"key_prefix"`
		Endpoint        string `mapstructure:"endpoint"`
		AccessKeyID     string `mapstructure:"access_key_id"`
		SecretAccessKey string `mapstructure:"secret_access_key"`
		MaxRetries      int    `mapstructure:"max_retries"`
	}

	var storeCfg S3StoreConfig
	if err := mapstructure.Decode(options, &storeCfg); err != nil {
		return nil, fmt.Errorf("failed to decode S3 store config: %w", err)
	}

	if storeCfg.Bucket == "" {
		return nil, fmt.Errorf("S3 store: bucket is required")
	}
	if storeCfg.Region == "" {
		return nil, fmt.Errorf("S3 store: region is required")
	}

	var configOptions []func(*awsConfig.LoadOptions) error

	configOptions = append(configOptions, awsConfig.WithRegion(storeCfg.Region))

	// Custom endpoint for MinIO, Localstack, etc.
	if storeCfg.Endpoint != "" {
		//nolint:staticcheck // TODO: migrate to BaseEndpoint when AWS SDK v2 stabilizes the new API
		customResolver := aws.EndpointResolverWithOptionsFunc(
			func(service, region string, options ...interface{}) (aws.Endpoint, error) {
				//nolint:staticcheck // TODO: migrate to BaseEndpoint when AWS SDK v2 stabilizes the new API
				return aws.Endpoint{
					URL:               storeCfg.Endpoint,
					HostnameImmutable: true,
					Source:            aws.EndpointSourceCustom,
				}, nil
			},
		)
		//nolint:staticcheck // TODO: migrate to BaseEndpoint when AWS SDK v2 stabilizes the new API
		configOptions = append(configOptions, awsConfig.WithEndpointResolverWithOptions(customResolver))
	}

	// Static credentials if provided, otherwise the default credential chain
	if storeCfg.AccessKeyID != "" && storeCfg.SecretAccessKey != "" {
		credProvider := credentials.NewStaticCredentialsProvider(
			storeCfg.AccessKeyID,
			storeCfg.SecretAccessKey,
			"",
		)
		configOptions = append(configOptions, awsConfig.WithCredentialsProvider(credProvider))
	}

	maxRetries := storeCfg.MaxRetries
	if maxRetries == 0 {
		maxRetries = 10
	}
	configOptions = append(configOptions, awsConfig.WithRetryer(func() aws.Retryer {
		return retry.NewStandard(func(o *retry.StandardOptions) {
			o.MaxAttempts = maxRetries
		})
	}))

	cfg, err := awsConfig.LoadDefaultConfig(ctx, configOptions...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		// Path-style addressing for compatibility with MinIO/Localstack
		if storeCfg.Endpoint != "" {
			o.UsePathStyle = true
		}
	})

	store, err := s3Store.New(s3Store.Config{
		Client:    client,
		Bucket:    storeCfg.Bucket,
		KeyPrefix: storeCfg.KeyPrefix,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create S3 store: %w", err)
	}

	logger.Info("S3 store initialized: bucket=%s, region=%s, prefix=%s",
		storeCfg.Bucket, storeCfg.Region, storeCfg.KeyPrefix)

	return store, nil
}

// createBadgerStore creates a BadgerDB-backed persistent store.
func createBadgerStore(ctx context.Context, options map[string]any) (filestore.Store, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var storeCfg badgerStore.Config
	if err := mapstructure.Decode(options, &storeCfg); err != nil {
		return nil, fmt.Errorf("failed to decode badger store config: %w", err)
	}

	if !storeCfg.InMemory && storeCfg.DBPath == "" {
		return nil, fmt.Errorf("badger store: db_path is required unless in_memory is true")
	}

	store, err := badgerStore.New(ctx, storeCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create badger store: %w", err)
	}

	return store, nil
}
