//go:build integration
// +build integration

package s3_test

import (
	"context"
	"fmt"
	"os"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsConfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/require"

	"github.com/pathstore/pathstore/pkg/filestore"
	"github.com/pathstore/pathstore/pkg/filestore/s3"
	storetesting "github.com/pathstore/pathstore/pkg/filestore/testing"
)

// TestS3Store_Integration runs the filestore test suite against a real
// S3-compatible service.
//
// Prerequisites:
//   - MinIO or Localstack running on localhost:4566
//   - Run with: go test -tags=integration ./pkg/filestore/s3/...
//
// To start Localstack:
//
//	docker run --rm -p 4566:4566 localstack/localstack
func TestS3Store_Integration(t *testing.T) {
	ctx := context.Background()

	endpoint := os.Getenv("PATHSTORE_S3_ENDPOINT")
	if endpoint == "" {
		endpoint = "http://localhost:4566"
	}

	cfg, err := awsConfig.LoadDefaultConfig(ctx,
		awsConfig.WithRegion("us-east-1"),
		awsConfig.WithEndpointResolverWithOptions(aws.EndpointResolverWithOptionsFunc(
			func(service, region string, options ...interface{}) (aws.Endpoint, error) {
				return aws.Endpoint{
					URL:               endpoint,
					HostnameImmutable: true,
					Source:            aws.EndpointSourceCustom,
				}, nil
			},
		)),
		awsConfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			"test", "test", "",
		)),
	)
	require.NoError(t, err, "failed to load AWS config")

	client := awss3.NewFromConfig(cfg, func(o *awss3.Options) {
		o.UsePathStyle = true
	})

	bucketName := "pathstore-test-bucket"

	_, err = client.CreateBucket(ctx, &awss3.CreateBucketInput{
		Bucket: aws.String(bucketName),
	})
	require.NoError(t, err, "failed to create test bucket")

	defer func() {
		listResp, _ := client.ListObjectsV2(ctx, &awss3.ListObjectsV2Input{
			Bucket: aws.String(bucketName),
		})
		if listResp != nil {
			for _, obj := range listResp.Contents {
				client.DeleteObject(ctx, &awss3.DeleteObjectInput{
					Bucket: aws.String(bucketName),
					Key:    obj.Key,
				})
			}
		}
		client.DeleteBucket(ctx, &awss3.DeleteBucketInput{
			Bucket: aws.String(bucketName),
		})
	}()

	// Each subtest gets its own key prefix so leftover entries from one
	// subtest never leak into another's search results.
	var storeCount int
	suite := storetesting.Suite{
		NewStore: func(t *testing.T) filestore.Store {
			storeCount++
			store, err := s3.New(s3.Config{
				Client:    client,
				Bucket:    bucketName,
				KeyPrefix: fmt.Sprintf("test-%d/", storeCount),
			})
			require.NoError(t, err)
			return store
		},
	}
	suite.Run(t)
}
