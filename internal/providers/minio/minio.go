package minio

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"path/filepath"
	"strings"

	"boards-backend/internal/config"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"
)

// MinioProvider stores board photos referenced by board.image_id.
type MinioProvider struct {
	client    *minio.Client
	bucket    string
	maxSize   int64
	logger    *zap.Logger
	publicURL string
}

func NewMinioProvider(cfg *config.Config, logger *zap.Logger) (*MinioProvider, error) {
	minioURL := cfg.MinioURL
	if strings.HasPrefix(minioURL, "http://") || strings.HasPrefix(minioURL, "https://") {
		u, err := url.Parse(minioURL)
		if err != nil {
			return nil, fmt.Errorf("failed to parse minio URL: %w", err)
		}
		minioURL = u.Host
	}

	client, err := minio.New(minioURL, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinioUser, cfg.MinioPassword, ""),
		Secure: strings.HasPrefix(cfg.MinioURL, "https://"),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	publicURL := cfg.MinioPublicURL
	if publicURL == "" {
		publicURL = fmt.Sprintf("http://%s/%s", minioURL, cfg.MinioBucket)
	}

	provider := &MinioProvider{
		client:    client,
		bucket:    cfg.MinioBucket,
		maxSize:   cfg.MaxFileSize,
		logger:    logger,
		publicURL: publicURL,
	}

	if err := provider.ensureBucket(); err != nil {
		return nil, err
	}

	return provider, nil
}

func (m *MinioProvider) ensureBucket() error {
	ctx := context.Background()

	exists, err := m.client.BucketExists(ctx, m.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket: %w", err)
	}
	if !exists {
		if err := m.client.MakeBucket(ctx, m.bucket, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("failed to create bucket: %w", err)
		}
		m.logger.Info("Created MinIO bucket", zap.String("bucket", m.bucket))
	}

	policy := `{
		"Version": "2012-10-17",
		"Statement": [
			{
				"Sid": "PublicReadGetObject",
				"Effect": "Allow",
				"Principal": "*",
				"Action": ["s3:GetObject"],
				"Resource": ["arn:aws:s3:::` + m.bucket + `/*"]
			}
		]
	}`
	if err := m.client.SetBucketPolicy(ctx, m.bucket, policy); err != nil {
		m.logger.Warn("Failed to set bucket policy", zap.Error(err))
	}

	return nil
}

// MaxSize is the configured per-upload limit in bytes.
func (m *MinioProvider) MaxSize() int64 {
	return m.maxSize
}

// Upload stores the reader under a generated object key and returns the key
// and the public URL of the object.
func (m *MinioProvider) Upload(ctx context.Context, reader io.Reader, filename, contentType string, size int64) (string, string, error) {
	if size > m.maxSize {
		return "", "", fmt.Errorf("file size exceeds maximum allowed size of %d MB", m.maxSize/(1024*1024))
	}

	objectKey := GenerateObjectKey(filename)
	_, err := m.client.PutObject(ctx, m.bucket, objectKey, reader, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", "", fmt.Errorf("failed to upload file: %w", err)
	}

	m.logger.Info("Image uploaded",
		zap.String("filename", filename),
		zap.String("object_key", objectKey),
		zap.Int64("size", size),
	)

	return objectKey, m.publicURL + "/" + objectKey, nil
}

// Delete removes a stored object.
func (m *MinioProvider) Delete(ctx context.Context, objectKey string) error {
	return m.client.RemoveObject(ctx, m.bucket, objectKey, minio.RemoveObjectOptions{})
}

// PublicURL resolves an object key to its public address.
func (m *MinioProvider) PublicURL(objectKey string) string {
	return m.publicURL + "/" + objectKey
}

// GenerateObjectKey builds a unique key under boards/ keeping the original
// file extension.
func GenerateObjectKey(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	return "boards/" + uuid.New().String() + ext
}
