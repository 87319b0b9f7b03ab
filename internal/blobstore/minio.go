package blobstore

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"time"

	"github.com/minio/minio-go/v7"
)

// MinioStore implements Store for MinIO and S3-compatible storage. The
// bucket must have versioning enabled so every put yields a distinct
// version id.
type MinioStore struct {
	client *minio.Client
	bucket string
}

// NewMinioStore wraps an already-configured client. The client is shared
// across requests; construction cost is paid once at startup.
func NewMinioStore(client *minio.Client, bucket string) (*MinioStore, error) {
	if client == nil {
		return nil, fmt.Errorf("minio client is required")
	}
	if bucket == "" {
		return nil, fmt.Errorf("bucket name is required")
	}
	return &MinioStore{client: client, bucket: bucket}, nil
}

// BucketExists reports whether the configured bucket exists.
func (s *MinioStore) BucketExists(ctx context.Context) (bool, error) {
	ok, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return false, fmt.Errorf("bucket check for %q: %w", s.bucket, err)
	}
	return ok, nil
}

// Stat returns metadata for the latest version of key.
func (s *MinioStore) Stat(ctx context.Context, key string) (ObjectInfo, error) {
	info, err := s.client.StatObject(ctx, s.bucket, key, minio.StatObjectOptions{})
	if err != nil {
		if isNoSuchKey(err) {
			return ObjectInfo{}, ErrNotFound
		}
		return ObjectInfo{}, fmt.Errorf("stat %q: %w", key, err)
	}
	return ObjectInfo{
		Key:         key,
		VersionID:   info.VersionID,
		Size:        info.Size,
		ContentType: info.ContentType,
	}, nil
}

// Get reads the exact version of key into memory. Content objects are small
// documents and images; no chunked reads.
func (s *MinioStore) Get(ctx context.Context, key, versionID string) ([]byte, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{VersionID: versionID})
	if err != nil {
		return nil, fmt.Errorf("get %q: %w", key, err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		if isNoSuchKey(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("read %q version %s: %w", key, versionID, err)
	}
	return data, nil
}

// Put writes data as a new version of key.
func (s *MinioStore) Put(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	info, err := s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return "", fmt.Errorf("put %q: %w", key, err)
	}
	return info.VersionID, nil
}

// Presign issues a GET-only URL for the exact version of key.
func (s *MinioStore) Presign(ctx context.Context, key, versionID string, ttl time.Duration) (*url.URL, error) {
	params := make(url.Values)
	if versionID != "" {
		params.Set("versionId", versionID)
	}
	u, err := s.client.PresignedGetObject(ctx, s.bucket, key, ttl, params)
	if err != nil {
		return nil, fmt.Errorf("presign %q: %w", key, err)
	}
	return u, nil
}

func isNoSuchKey(err error) bool {
	resp := minio.ToErrorResponse(err)
	switch resp.Code {
	case "NoSuchKey", "NoSuchVersion", "NotFound":
		return true
	}
	return false
}
