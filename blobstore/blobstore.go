// Package blobstore provides bucket access for configuration and data
// blobs: token-driven listing, format-aware fetches (json, yaml, csv) and
// plain put/delete/exists operations.
package blobstore

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

// S3Client is the slice of the S3 API the store needs (allows mocking).
type S3Client interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
}

// Store reads and writes blobs in a single bucket.
type Store struct {
	client S3Client
	bucket string
	log    zerolog.Logger
}

// New wraps an S3 client scoped to one bucket.
func New(client S3Client, bucket string) (*Store, error) {
	if client == nil {
		return nil, fmt.Errorf("blobstore: client must not be nil")
	}
	if bucket == "" {
		return nil, fmt.Errorf("blobstore: bucket must not be empty")
	}
	return &Store{
		client: client,
		bucket: bucket,
		log:    log.With().Str("component", "blobstore").Str("bucket", bucket).Logger(),
	}, nil
}

// List drains every object key under prefix, following continuation tokens
// until the listing reports itself exhausted. Pages that carry no keys but a
// live token keep the walk going.
func (s *Store) List(ctx context.Context, prefix string) ([]string, error) {
	keys := []string{}
	var token *string

	for {
		input := &s3.ListObjectsV2Input{
			Bucket:            aws.String(s.bucket),
			ContinuationToken: token,
		}
		if prefix != "" {
			input.Prefix = aws.String(prefix)
		}

		out, err := s.client.ListObjectsV2(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("listing bucket %s failed: %w", s.bucket, err)
		}

		for _, obj := range out.Contents {
			keys = append(keys, aws.ToString(obj.Key))
		}

		if !aws.ToBool(out.IsTruncated) {
			return keys, nil
		}
		token = out.NextContinuationToken
	}
}

// Fetch downloads a blob and decodes it according to format: "json" and
// "yaml" decode into dynamic values, "csv" into one map per record keyed by
// the header row. Any other format returns the raw string.
func (s *Store) Fetch(ctx context.Context, key, format string) (any, error) {
	raw, err := s.FetchRaw(ctx, key)
	if err != nil {
		return nil, err
	}

	switch strings.ToLower(format) {
	case "json":
		var result any
		if err := json.Unmarshal(raw, &result); err != nil {
			return nil, fmt.Errorf("parsing JSON blob %s failed: %w", key, err)
		}
		return result, nil
	case "yaml", "yml":
		var result any
		if err := yaml.Unmarshal(raw, &result); err != nil {
			return nil, fmt.Errorf("parsing YAML blob %s failed: %w", key, err)
		}
		return result, nil
	case "csv":
		reader := csv.NewReader(bytes.NewReader(raw))
		records, err := reader.ReadAll()
		if err != nil {
			return nil, fmt.Errorf("parsing CSV blob %s failed: %w", key, err)
		}
		return recordsToMaps(records), nil
	default:
		return string(raw), nil
	}
}

// FetchRaw downloads the blob bytes.
func (s *Store) FetchRaw(ctx context.Context, key string) ([]byte, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("downloading blob %s failed: %w", key, err)
	}
	defer out.Body.Close()

	return io.ReadAll(out.Body)
}

// Put uploads body under key.
func (s *Store) Put(ctx context.Context, key string, body []byte, contentType string) error {
	input := &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader(body),
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}

	if _, err := s.client.PutObject(ctx, input); err != nil {
		return fmt.Errorf("uploading blob %s failed: %w", key, err)
	}
	s.log.Debug().Str("key", key).Int("bytes", len(body)).Msg("blob stored")
	return nil
}

// Delete removes the blob. Deleting an absent key is not an error.
func (s *Store) Delete(ctx context.Context, key string) error {
	if _, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}); err != nil {
		return fmt.Errorf("deleting blob %s failed: %w", key, err)
	}
	return nil
}

// Exists reports whether the blob is present.
func (s *Store) Exists(ctx context.Context, key string) (bool, error) {
	_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var notFound *types.NotFound
		if errors.As(err, &notFound) {
			return false, nil
		}
		return false, fmt.Errorf("probing blob %s failed: %w", key, err)
	}
	return true, nil
}

// recordsToMaps turns CSV rows into maps keyed by the header row.
func recordsToMaps(records [][]string) []map[string]any {
	if len(records) < 1 {
		return nil
	}
	headers := records[0]
	var result []map[string]any

	for _, row := range records[1:] {
		item := make(map[string]any)
		for i, val := range row {
			if i < len(headers) {
				item[headers[i]] = val
			}
		}
		result = append(result, item)
	}
	return result
}
