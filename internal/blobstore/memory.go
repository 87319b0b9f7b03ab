package blobstore

import (
	"context"
	"fmt"
	"net/url"
	"sync"
	"time"
)

type memoryVersion struct {
	versionID   string
	data        []byte
	contentType string
}

// MemoryStore is an in-process versioned Store used by tests and local
// development. Version ids are assigned monotonically per store ("v1",
// "v2", ...), matching the per-key monotonic ordering of a real versioned
// bucket.
type MemoryStore struct {
	mu       sync.RWMutex
	objects  map[string][]memoryVersion
	sequence int
	bucket   string
	missing  bool
}

// NewMemoryStore returns an empty store reporting the given bucket name.
func NewMemoryStore(bucket string) *MemoryStore {
	return &MemoryStore{objects: make(map[string][]memoryVersion), bucket: bucket}
}

// SetBucketMissing makes BucketExists report false, simulating a
// misconfigured deployment.
func (s *MemoryStore) SetBucketMissing(missing bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.missing = missing
}

// BucketExists reports whether the simulated bucket is present.
func (s *MemoryStore) BucketExists(ctx context.Context) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return !s.missing, nil
}

// Stat returns metadata for the latest version of key.
func (s *MemoryStore) Stat(ctx context.Context, key string) (ObjectInfo, error) {
	if err := ctx.Err(); err != nil {
		return ObjectInfo{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	versions := s.objects[key]
	if len(versions) == 0 {
		return ObjectInfo{}, ErrNotFound
	}
	latest := versions[len(versions)-1]
	return ObjectInfo{
		Key:         key,
		VersionID:   latest.versionID,
		Size:        int64(len(latest.data)),
		ContentType: latest.contentType,
	}, nil
}

// Get returns a copy of the exact version's bytes.
func (s *MemoryStore) Get(ctx context.Context, key, versionID string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, v := range s.objects[key] {
		if v.versionID == versionID {
			out := make([]byte, len(v.data))
			copy(out, v.data)
			return out, nil
		}
	}
	return nil, ErrNotFound
}

// Put appends a new version of key and returns its assigned version id.
func (s *MemoryStore) Put(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sequence++
	stored := make([]byte, len(data))
	copy(stored, data)
	version := memoryVersion{
		versionID:   fmt.Sprintf("v%d", s.sequence),
		data:        stored,
		contentType: contentType,
	}
	s.objects[key] = append(s.objects[key], version)
	return version.versionID, nil
}

// Presign returns a synthetic URL carrying the version id and expiry.
func (s *MemoryStore) Presign(ctx context.Context, key, versionID string, ttl time.Duration) (*url.URL, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	found := false
	for _, v := range s.objects[key] {
		if v.versionID == versionID {
			found = true
			break
		}
	}
	if !found {
		return nil, ErrNotFound
	}

	params := make(url.Values)
	params.Set("versionId", versionID)
	params.Set("expires", fmt.Sprintf("%d", int(ttl.Seconds())))
	return &url.URL{
		Scheme:   "https",
		Host:     "memory.invalid",
		Path:     "/" + s.bucket + "/" + key,
		RawQuery: params.Encode(),
	}, nil
}
