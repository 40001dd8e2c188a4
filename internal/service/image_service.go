package service

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"myopia-screening-service/config"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/sirupsen/logrus"
)

// ImageUploadResult is the stable reference returned by the blob store:
// a retrieval URL plus the object key used as the deletion handle.
type ImageUploadResult struct {
	URL       string
	ObjectKey string
}

// ImageService stores examination images in MinIO.
type ImageService struct {
	client    *minio.Client
	bucket    string
	publicURL string
	log       *logrus.Logger
}

func NewImageService(client *minio.Client, cfg config.MinioConfig, log *logrus.Logger) *ImageService {
	publicURL := strings.TrimRight(cfg.PublicURL, "/")
	if publicURL == "" {
		scheme := "http"
		if cfg.UseSSL {
			scheme = "https"
		}
		publicURL = fmt.Sprintf("%s://%s", scheme, cfg.Endpoint)
	}

	return &ImageService{
		client:    client,
		bucket:    cfg.Bucket,
		publicURL: publicURL,
		log:       log,
	}
}

// Upload stores the image bytes under a generated object key and returns
// the retrieval URL together with the deletion handle.
func (s *ImageService) Upload(ctx context.Context, reader io.Reader, size int64, filename string) (*ImageUploadResult, error) {
	objectKey := fmt.Sprintf("examinations/%s-%d%s",
		uuid.New().String(), time.Now().Unix(), strings.ToLower(filepath.Ext(filename)))

	_, err := s.client.PutObject(ctx, s.bucket, objectKey, reader, size, minio.PutObjectOptions{
		ContentType: contentTypeForFile(filename),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upload image: %w", err)
	}

	return &ImageUploadResult{
		URL:       fmt.Sprintf("%s/%s/%s", s.publicURL, s.bucket, objectKey),
		ObjectKey: objectKey,
	}, nil
}

// Delete removes a stored image. Deletion is best-effort: it is never on
// the critical path, so failures are logged and swallowed.
func (s *ImageService) Delete(ctx context.Context, objectKey string) {
	if objectKey == "" {
		return
	}
	err := s.client.RemoveObject(ctx, s.bucket, objectKey, minio.RemoveObjectOptions{})
	if err != nil {
		s.log.Warnf("Failed to delete image %s from storage: %v", objectKey, err)
	}
}

func contentTypeForFile(filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	default:
		return "application/octet-stream"
	}
}
