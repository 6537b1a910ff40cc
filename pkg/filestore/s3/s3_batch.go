// Package s3 implements a filestore backed by S3-compatible storage.
//
// This file contains batch operations: bulk deletion of entries matching a
// glob pattern, used to prune whole subtrees without one request per key.
package s3

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/sourcegraph/conc/pool"
)

// maxDeleteBatchSize is the S3 limit on objects per DeleteObjects request.
const maxDeleteBatchSize = 1000

// DeleteMatching removes every entry whose key matches the ant-style glob
// pattern. Deletes are chunked into DeleteObjects batches and the batches
// run concurrently.
//
// Returns a map of per-key failures (empty when everything succeeded) and
// an error for listing failures or context cancellation.
func (s *Store) DeleteMatching(ctx context.Context, pattern string) (map[string]error, error) {
	entries, err := s.Search(ctx, pattern)
	if err != nil {
		return nil, err
	}

	keys := make([]string, len(entries))
	for i, entry := range entries {
		keys[i] = entry.Key()
	}

	var mu sync.Mutex
	failures := make(map[string]error)

	p := pool.New().WithContext(ctx).WithMaxGoroutines(4)

	for i := 0; i < len(keys); i += maxDeleteBatchSize {
		end := i + maxDeleteBatchSize
		if end > len(keys) {
			end = len(keys)
		}
		batch := keys[i:end]

		p.Go(func(ctx context.Context) error {
			batchFailures, err := s.deleteBatch(ctx, batch)
			if err != nil {
				return err
			}
			if len(batchFailures) > 0 {
				mu.Lock()
				for key, keyErr := range batchFailures {
					failures[key] = keyErr
				}
				mu.Unlock()
			}
			return nil
		})
	}

	if err := p.Wait(); err != nil {
		return failures, err
	}
	return failures, nil
}

// deleteBatch issues a single DeleteObjects request for up to
// maxDeleteBatchSize keys and reports per-key failures.
func (s *Store) deleteBatch(ctx context.Context, keys []string) (map[string]error, error) {
	objects := make([]types.ObjectIdentifier, len(keys))
	for i, key := range keys {
		objects[i] = types.ObjectIdentifier{
			Key: aws.String(s.objectKey(key)),
		}
	}

	result, err := s.client.DeleteObjects(ctx, &s3.DeleteObjectsInput{
		Bucket: aws.String(s.bucket),
		Delete: &types.Delete{
			Objects: objects,
			Quiet:   aws.Bool(true),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to delete batch: %w", err)
	}

	failures := make(map[string]error)
	for _, deleteErr := range result.Errors {
		if deleteErr.Key == nil {
			continue
		}

		key := *deleteErr.Key
		if s.keyPrefix != "" && len(key) > len(s.keyPrefix) {
			key = key[len(s.keyPrefix):]
		}

		errMsg := "unknown error"
		if deleteErr.Code != nil && deleteErr.Message != nil {
			errMsg = fmt.Sprintf("%s: %s", *deleteErr.Code, *deleteErr.Message)
		}
		failures[key] = errors.New(errMsg)
	}
	return failures, nil
}
