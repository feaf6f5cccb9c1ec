package publish

import (
	"context"
	"fmt"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"mergeq/internal/domain"
	"mergeq/internal/infra"
)

// MinioPublisher uploads artifacts to an S3-compatible bucket and hands out
// presigned GET URLs.
type MinioPublisher struct {
	client *minio.Client
	bucket string
	expiry time.Duration
}

// NewMinioPublisher builds a publisher from the S3 section of the config.
// Endpoint-less configs default to AWS S3 in the configured region.
func NewMinioPublisher(cfg *infra.Config) (*MinioPublisher, error) {
	endpoint := cfg.S3Endpoint
	if endpoint == "" {
		endpoint = fmt.Sprintf("s3.%s.amazonaws.com", cfg.S3Region)
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.S3AccessKey, cfg.S3SecretKey, ""),
		Secure: cfg.S3UseSSL,
		Region: cfg.S3Region,
	})
	if err != nil {
		return nil, fmt.Errorf("publish: minio client: %w", err)
	}

	return &MinioPublisher{
		client: client,
		bucket: cfg.S3Bucket,
		expiry: cfg.S3PresignExpiry,
	}, nil
}

func (p *MinioPublisher) Publish(ctx context.Context, localPath, key string) (string, error) {
	if _, err := p.client.FPutObject(ctx, p.bucket, key, localPath, minio.PutObjectOptions{}); err != nil {
		return "", fmt.Errorf("%w: upload %s: %v", domain.ErrPublishFailed, key, err)
	}

	u, err := p.client.PresignedGetObject(ctx, p.bucket, key, p.expiry, nil)
	if err != nil {
		return "", fmt.Errorf("%w: presign %s: %v", domain.ErrPublishFailed, key, err)
	}
	return u.String(), nil
}

var _ Publisher = (*MinioPublisher)(nil)
