package image

import (
	"context"
	"fmt"
	"mime/multipart"

	"boards-backend/internal/providers/minio"

	"go.uber.org/zap"
)

type Service interface {
	Store(ctx context.Context, file *multipart.FileHeader) (*Image, error)
	Get(ctx context.Context, id int64) (*Image, error)
	Remove(ctx context.Context, id int64) (*Image, error)
}

type service struct {
	repo   Repository
	minioP *minio.MinioProvider
	logger *zap.SugaredLogger
}

func NewService(repo Repository, minioP *minio.MinioProvider, logger *zap.Logger) Service {
	return &service{
		repo:   repo,
		minioP: minioP,
		logger: logger.Sugar(),
	}
}

func (s *service) Store(ctx context.Context, file *multipart.FileHeader) (*Image, error) {
	if s.minioP == nil {
		return nil, fmt.Errorf("image storage is not configured")
	}

	src, err := file.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open upload: %w", err)
	}
	defer src.Close()

	contentType := file.Header.Get("Content-Type")
	objectKey, url, err := s.minioP.Upload(ctx, src, file.Filename, contentType, file.Size)
	if err != nil {
		return nil, err
	}

	img := &Image{
		FileName:    file.Filename,
		ObjectKey:   objectKey,
		ContentType: contentType,
		Size:        file.Size,
	}
	if err := s.repo.Create(img); err != nil {
		// The object is orphaned otherwise.
		if delErr := s.minioP.Delete(ctx, objectKey); delErr != nil {
			s.logger.Warnw("Failed to remove orphaned object", "object_key", objectKey, "error", delErr)
		}
		return nil, err
	}

	img.URL = url
	return img, nil
}

func (s *service) Get(ctx context.Context, id int64) (*Image, error) {
	img, err := s.repo.FindByID(id)
	if err != nil {
		return nil, err
	}
	if s.minioP != nil {
		img.URL = s.minioP.PublicURL(img.ObjectKey)
	}
	return img, nil
}

func (s *service) Remove(ctx context.Context, id int64) (*Image, error) {
	img, err := s.repo.FindByID(id)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Delete(img); err != nil {
		return nil, err
	}
	if s.minioP != nil {
		if err := s.minioP.Delete(ctx, img.ObjectKey); err != nil {
			s.logger.Warnw("Failed to delete stored object", "object_key", img.ObjectKey, "error", err)
		}
	}
	return img, nil
}
