// Package blobstore abstracts the versioned object store holding case
// content payloads.
//
// Absence is a normal control-flow branch, not an exception: Stat and Get
// return ErrNotFound rather than forcing callers to pattern-match transport
// errors. All other failures are wrapped transport errors.
package blobstore

import (
	"context"
	"errors"
	"net/url"
	"time"
)

// ErrNotFound is returned when an object or object version does not exist.
var ErrNotFound = errors.New("object not found")

// ObjectInfo describes one stored version of an object.
type ObjectInfo struct {
	Key         string
	VersionID   string
	Size        int64
	ContentType string
}

// Store is the typed client over the object store. Implementations are
// stateless aside from connection reuse and safe for concurrent use; one
// instance is constructed at startup and shared across requests.
type Store interface {
	// BucketExists reports whether the configured bucket is reachable.
	// A false result is an operator-actionable misconfiguration.
	BucketExists(ctx context.Context) (bool, error)

	// Stat returns metadata for the latest version of key.
	Stat(ctx context.Context, key string) (ObjectInfo, error)

	// Get reads the exact version of key fully into memory.
	Get(ctx context.Context, key, versionID string) ([]byte, error)

	// Put writes data as a new version of key and returns the version id
	// the store assigned to this write.
	Put(ctx context.Context, key string, data []byte, contentType string) (string, error)

	// Presign issues a time-limited GET-only URL for the exact version.
	Presign(ctx context.Context, key, versionID string, ttl time.Duration) (*url.URL, error)
}
