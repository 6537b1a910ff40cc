// Package s3 implements a filestore backed by Amazon S3 or S3-compatible
// storage (MinIO, Localstack, etc.).
//
// Keys map directly to object keys under an optional configured prefix, so
// the bucket layout mirrors the store layout and stays human-readable. S3
// object writes are atomic, so there is no in-progress marker protocol here;
// an interrupted upload never becomes visible.
//
// Thread Safety:
// This implementation is safe for concurrent use. Concurrent writes to the
// same key are last-write-wins, per S3 semantics.
package s3

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/bmatcuk/doublestar/v4"

	"github.com/pathstore/pathstore/pkg/filestore"
)

// Config contains configuration for the S3 filestore.
type Config struct {
	// Client is the configured S3 client.
	Client *s3.Client

	// Bucket is the S3 bucket name. The bucket must already exist.
	Bucket string

	// KeyPrefix is an optional prefix for all object keys, e.g.
	// "pathstore/" results in objects like "pathstore/libs/core.jar".
	KeyPrefix string
}

// Store is an S3-backed filestore.
type Store struct {
	client    *s3.Client
	bucket    string
	keyPrefix string
}

// New creates an S3 filestore. The bucket is not created or verified here;
// the first operation surfaces access problems.
func New(cfg Config) (*Store, error) {
	if cfg.Client == nil {
		return nil, fmt.Errorf("s3 filestore: client is required")
	}
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("s3 filestore: bucket is required")
	}

	return &Store{
		client:    cfg.Client,
		bucket:    cfg.Bucket,
		keyPrefix: cfg.KeyPrefix,
	}, nil
}

// objectKey returns the S3 object key for a store key.
func (s *Store) objectKey(key string) string {
	return s.keyPrefix + path.Clean(filepath.ToSlash(key))
}

// Add stores an entry under key. The write action runs against a staging
// file and the result is uploaded with a single PutObject, so a failed
// action never becomes visible in the bucket.
func (s *Store) Add(ctx context.Context, key string, action filestore.WriteAction) (filestore.Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	staging, err := os.MkdirTemp("", "pathstore-staging-*")
	if err != nil {
		return nil, &filestore.WriteError{Verb: "add", Destination: key, Err: err}
	}
	defer os.RemoveAll(staging)

	dest := filepath.Join(staging, "entry")
	if err := action(dest); err != nil {
		return nil, &filestore.WriteError{Verb: "add", Destination: key, Err: err}
	}

	if err := s.upload(ctx, key, dest); err != nil {
		return nil, &filestore.WriteError{Verb: "add", Destination: key, Err: err}
	}
	return s.entryAt(key), nil
}

// Move uploads the file at source under key and removes the source.
func (s *Store) Move(ctx context.Context, key string, source string) (filestore.Entry, error) {
	entry, err := s.ingest(ctx, "move", key, source)
	if err != nil {
		return nil, err
	}
	if err := os.Remove(source); err != nil {
		return nil, &filestore.WriteError{Verb: "move", Source: source, Destination: key, Err: err}
	}
	return entry, nil
}

// Copy uploads the file at source under key, leaving the source intact.
func (s *Store) Copy(ctx context.Context, key string, source string) (filestore.Entry, error) {
	return s.ingest(ctx, "copy", key, source)
}

func (s *Store) ingest(ctx context.Context, verb, key, source string) (filestore.Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if _, err := os.Stat(source); err != nil {
		return nil, &filestore.SourceNotFoundError{Verb: verb, Source: source, Destination: key}
	}

	if err := s.upload(ctx, key, source); err != nil {
		return nil, &filestore.WriteError{Verb: verb, Source: source, Destination: key, Err: err}
	}
	return s.entryAt(key), nil
}

func (s *Store) upload(ctx context.Context, key, file string) error {
	f, err := os.Open(file)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.objectKey(key)),
		Body:   f,
	})
	if err != nil {
		return fmt.Errorf("failed to upload object: %w", err)
	}
	return nil
}

// Get returns the entry for key, or (nil, nil) when absent.
func (s *Store) Get(ctx context.Context, key string) (filestore.Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.objectKey(key)),
	})
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to stat entry %q: %w", key, err)
	}
	return s.entryAt(key), nil
}

// Delete removes the entry for key. S3 DeleteObject succeeds for absent
// keys, so this is naturally idempotent.
func (s *Store) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.objectKey(key)),
	})
	if err != nil {
		return fmt.Errorf("failed to delete entry %q: %w", key, err)
	}
	return nil
}

// Search lists the bucket under the configured prefix and returns an entry
// for every key matching the ant-style glob pattern.
func (s *Store) Search(ctx context.Context, pattern string) ([]filestore.Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("invalid search pattern %q: %w", pattern, doublestar.ErrBadPattern)
	}

	entries := []filestore.Entry{}
	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(s.keyPrefix),
	})

	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list objects: %w", err)
		}

		for _, obj := range page.Contents {
			if obj.Key == nil {
				continue
			}
			key := strings.TrimPrefix(*obj.Key, s.keyPrefix)

			matched, err := doublestar.Match(pattern, key)
			if err != nil {
				return nil, err
			}
			if matched {
				entries = append(entries, s.entryAt(key))
			}
		}
	}
	return entries, nil
}

func (s *Store) entryAt(key string) *Entry {
	return &Entry{store: s, key: key}
}

// isNotFound reports whether an S3 error means the object does not exist.
// HeadObject reports *types.NotFound, GetObject reports *types.NoSuchKey.
func isNotFound(err error) bool {
	var notFound *types.NotFound
	var noSuchKey *types.NoSuchKey
	return errors.As(err, &notFound) || errors.As(err, &noSuchKey)
}

// Entry is a reference into an S3 filestore. Content is fetched at call
// time.
type Entry struct {
	store *Store
	key   string
}

// Key returns the relative path the entry is stored under.
func (e *Entry) Key() string { return e.key }

// Open streams the entry content from S3. The caller must close the reader.
func (e *Entry) Open(ctx context.Context) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result, err := e.store.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(e.store.bucket),
		Key:    aws.String(e.store.objectKey(e.key)),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read entry %q: %w", e.key, err)
	}
	return result.Body, nil
}

// Size returns the content size in bytes via HeadObject.
func (e *Entry) Size(ctx context.Context) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	result, err := e.store.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(e.store.bucket),
		Key:    aws.String(e.store.objectKey(e.key)),
	})
	if err != nil {
		return 0, fmt.Errorf("failed to stat entry %q: %w", e.key, err)
	}
	if result.ContentLength == nil {
		return 0, nil
	}
	return *result.ContentLength, nil
}

// Interface conformance.
var (
	_ filestore.Store    = (*Store)(nil)
	_ filestore.Searcher = (*Store)(nil)
)
