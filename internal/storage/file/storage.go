package file

import (
	"context"
	"fmt"
	"io"
	"mime"
	"path"
	"path/filepath"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Storage writes exported images to an S3-compatible bucket using MinIO.
// The export directory becomes the object key prefix.
type Storage struct {
	client     *minio.Client
	bucketName string
}

// NewStorage creates a new Storage instance connected to the specified MinIO server.
// If the bucket does not exist, it will be created automatically.
func NewStorage(ctx context.Context, endpoint, accessKey, secretKey, bucketName string, useSSL bool) (*Storage, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize minio client: %w", err)
	}

	exists, err := client.BucketExists(ctx, bucketName)
	if err != nil {
		return nil, fmt.Errorf("failed to check if bucket exists: %w", err)
	}

	if !exists {
		if err := client.MakeBucket(ctx, bucketName, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("failed to create bucket: %w", err)
		}
	}

	return &Storage{
		client:     client,
		bucketName: bucketName,
	}, nil
}

// Save uploads src as dir/filename and returns the object key.
// Buckets have no directories, so nothing needs to be created beforehand.
func (s *Storage) Save(ctx context.Context, dir, filename string, src io.Reader) (string, error) {
	objectName := path.Join(filepath.ToSlash(dir), filename)

	contentType := mime.TypeByExtension(path.Ext(filename))
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	_, err := s.client.PutObject(ctx, s.bucketName, objectName, src, -1, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("failed to save file: %w", err)
	}

	return objectName, nil
}
