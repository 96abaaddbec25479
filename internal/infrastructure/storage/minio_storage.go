package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"

	"dvlottery.backend/internal/config"
)

var ErrNotConfigured = errors.New("photo storage not configured")

// objectStore is the subset of *minio.Client the photo storage uses
type objectStore interface {
	BucketExists(ctx context.Context, bucketName string) (bool, error)
	MakeBucket(ctx context.Context, bucketName string, opts minio.MakeBucketOptions) error
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
}

var newMinioClient = func(cfg config.StorageConfig) (objectStore, string, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, "", err
	}
	return client, client.EndpointURL().String(), nil
}

// MinioPhotoStorage stores applicant photos in an S3-compatible bucket
type MinioPhotoStorage struct {
	client  objectStore
	bucket  string
	baseURL string
	logger  *zap.Logger
}

// NewMinioPhotoStorage connects and makes sure the bucket exists
func NewMinioPhotoStorage(ctx context.Context, cfg config.StorageConfig, logger *zap.Logger) (*MinioPhotoStorage, error) {
	if cfg.Endpoint == "" || cfg.Bucket == "" {
		return nil, ErrNotConfigured
	}
	logger = logger.Named("MinioPhotoStorage")

	client, endpointURL, err := newMinioClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client for endpoint %s: %w", cfg.Endpoint, err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket %s: %w", cfg.Bucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("failed to make bucket %s: %w", cfg.Bucket, err)
		}
		logger.Info("Bucket created", zap.String("bucket", cfg.Bucket))
	}

	baseURL := strings.TrimRight(cfg.PublicURL, "/")
	if baseURL == "" {
		baseURL = endpointURL + "/" + cfg.Bucket
	}

	return &MinioPhotoStorage{
		client:  client,
		bucket:  cfg.Bucket,
		baseURL: baseURL,
		logger:  logger,
	}, nil
}

// Upload writes the object and returns its public URL
func (s *MinioPhotoStorage) Upload(ctx context.Context, key, contentType string, r io.Reader, size int64) (string, error) {
	info, err := s.client.PutObject(ctx, s.bucket, key, r, size, minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		s.logger.Error("PutObject failed", zap.String("bucket", s.bucket), zap.String("key", key), zap.Error(err))
		return "", fmt.Errorf("failed to upload object %s: %w", key, err)
	}

	s.logger.Info("Photo uploaded",
		zap.String("key", info.Key),
		zap.String("etag", info.ETag),
		zap.Int64("size", info.Size),
	)
	return s.baseURL + "/" + key, nil
}
