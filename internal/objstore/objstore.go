// Package objstore uploads processed images to S3-compatible object
// storage (Cloudflare R2 in production).
package objstore

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/raynirmalya/mokshiri-scraper/internal/config"
)

// Store is the object storage surface the media and publish jobs need.
type Store interface {
	// Put uploads data under key and returns the public URL.
	Put(ctx context.Context, key string, data []byte, contentType string) (string, error)

	// Delete removes an uploaded object. Used to roll back after a
	// failed publish.
	Delete(ctx context.Context, key string) error

	// PublicURL returns the CDN URL an uploaded key is served from.
	PublicURL(key string) string
}

// S3Store implements Store against any S3-compatible endpoint.
type S3Store struct {
	client *s3.Client
	cfg    *config.StorageConfig
	logger *slog.Logger
}

// New creates an S3Store from configuration.
func New(ctx context.Context, cfg *config.StorageConfig, logger *slog.Logger) (*S3Store, error) {
	awsCfg, err := awscfg.LoadDefaultConfig(ctx,
		awscfg.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKey, cfg.SecretKey, "")),
		awscfg.WithRegion("auto"),
	)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(cfg.Endpoint)
		o.UsePathStyle = true
	})

	return &S3Store{
		client: client,
		cfg:    cfg,
		logger: logger.With("component", "objstore"),
	}, nil
}

// Put uploads data under the configured folder prefix.
func (s *S3Store) Put(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	full := s.objectKey(key)
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.cfg.Bucket),
		Key:         aws.String(full),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("put %s: %w", full, err)
	}
	s.logger.Debug("object uploaded", "key", full, "bytes", len(data))
	return s.PublicURL(key), nil
}

// Delete removes an object.
func (s *S3Store) Delete(ctx context.Context, key string) error {
	full := s.objectKey(key)
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.cfg.Bucket),
		Key:    aws.String(full),
	})
	if err != nil {
		return fmt.Errorf("delete %s: %w", full, err)
	}
	return nil
}

// PublicURL builds the CDN URL for a key. Without a configured public
// base the endpoint/bucket form is used, so callers always get an
// absolute URL.
func (s *S3Store) PublicURL(key string) string {
	if s.cfg.PublicBase != "" {
		return strings.TrimRight(s.cfg.PublicBase, "/") + "/" + s.objectKey(key)
	}
	return strings.TrimRight(s.cfg.Endpoint, "/") + "/" + s.cfg.Bucket + "/" + s.objectKey(key)
}

func (s *S3Store) objectKey(key string) string {
	if s.cfg.Folder == "" {
		return key
	}
	return strings.TrimRight(s.cfg.Folder, "/") + "/" + key
}
