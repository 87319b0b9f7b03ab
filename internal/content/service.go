// Package content implements the upload and download/verify pipelines over
// the object store and the integrity ledger.
package content

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"casevault/internal/blobstore"
	"casevault/internal/digest"
	"casevault/internal/models"
	"casevault/internal/objectpath"
)

// PresignTTL is the fixed expiry of presigned image URLs.
const PresignTTL = 3600 * time.Second

const textContentType = "text/plain; charset=utf-8"

// Ledger is the provenance store consumed by the pipelines. Lookup returns
// a nil record when no row matches the exact (objectName, versionID) pair.
type Ledger interface {
	Record(ctx context.Context, scope models.Scope, rec *models.IntegrityRecord) (models.IntegrityRecord, error)
	Lookup(ctx context.Context, scope models.Scope, objectName, versionID string) (*models.IntegrityRecord, error)
}

// AuditSink accepts audit entries describing who changed what resource.
// It is threaded through the service explicitly rather than living in a
// package-level singleton.
type AuditSink interface {
	RecordAudit(ctx context.Context, event models.AuditEvent) error
}

// Service orchestrates the write and read protocols. It holds no per-request
// state; one instance is shared across requests.
type Service struct {
	store  blobstore.Store
	ledger Ledger
	audit  AuditSink
}

// NewService constructs the content service around an injected store client,
// ledger, and audit sink.
func NewService(store blobstore.Store, ledger Ledger, audit AuditSink) *Service {
	return &Service{store: store, ledger: ledger, audit: audit}
}

// UploadResult reports one completed write.
type UploadResult struct {
	Key       string `json:"object_name"`
	VersionID string `json:"version_id"`
	MD5       string `json:"md5_hash"`
	SHA256    string `json:"sha_hash"`
	Size      int64  `json:"size_bytes"`
}

// DownloadResult carries verified content bytes and their provenance.
type DownloadResult struct {
	Data   []byte
	Info   blobstore.ObjectInfo
	Record models.IntegrityRecord
}

// UploadText writes the primary text payload of a note or tab and records
// its provenance.
func (s *Service) UploadText(ctx context.Context, actor models.Identity, scope models.Scope, res models.Resource, data []byte) (UploadResult, error) {
	var zero UploadResult
	if err := validateTarget(scope, res); err != nil {
		return zero, err
	}
	key := objectpath.TextKey(scope, res)
	return s.upload(ctx, actor, scope, key, data, textContentType)
}

// UploadImage writes a binary image asset attached to a note or tab.
func (s *Service) UploadImage(ctx context.Context, actor models.Identity, scope models.Scope, res models.Resource, fileName string, data []byte, contentType string) (UploadResult, error) {
	var zero UploadResult
	if err := validateTarget(scope, res); err != nil {
		return zero, err
	}
	if err := objectpath.ValidateImageFileName(fileName); err != nil {
		return zero, err
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	key := objectpath.ImageKey(scope, res, fileName)
	return s.upload(ctx, actor, scope, key, data, contentType)
}

// upload runs the write pipeline: check bucket, put, re-stat for the
// authoritative version id, hash the exact bytes that were sent, record.
// No compensating delete of a successful put is attempted if the ledger
// insert fails; the orphaned version is unreadable (no provenance) and is
// reported by the offline verification sweep.
func (s *Service) upload(ctx context.Context, actor models.Identity, scope models.Scope, key string, data []byte, contentType string) (UploadResult, error) {
	var zero UploadResult
	if s == nil || s.store == nil || s.ledger == nil {
		return zero, fmt.Errorf("content service is not configured")
	}

	if err := s.checkBucket(ctx); err != nil {
		return zero, err
	}

	if _, err := s.store.Put(ctx, key, data, contentType); err != nil {
		return zero, fmt.Errorf("write %s: %w", key, err)
	}

	// The version id echoed by the write is ignored; the store's answer to
	// a fresh stat is authoritative.
	info, err := s.store.Stat(ctx, key)
	if err != nil {
		return zero, fmt.Errorf("confirm %s after write: %w", key, err)
	}

	pair := digest.Sum(data)
	if _, err := s.ledger.Record(ctx, scope, &models.IntegrityRecord{
		ObjectName: key,
		VersionID:  info.VersionID,
		MD5:        pair.MD5,
		SHA256:     pair.SHA256,
	}); err != nil {
		return zero, fmt.Errorf("record provenance for %s: %w", key, err)
	}

	if s.audit != nil {
		err := s.audit.RecordAudit(ctx, models.AuditEvent{
			Action:  fmt.Sprintf("uploaded %s version %s", key, info.VersionID),
			ActorID: actor.UserID,
			CaseID:  scope.CaseID,
		})
		if err != nil {
			return zero, fmt.Errorf("audit upload of %s: %w", key, err)
		}
	}

	return UploadResult{
		Key:       key,
		VersionID: info.VersionID,
		MD5:       pair.MD5,
		SHA256:    pair.SHA256,
		Size:      int64(len(data)),
	}, nil
}

// DownloadText returns the verified text payload of a note or tab.
func (s *Service) DownloadText(ctx context.Context, scope models.Scope, res models.Resource) (DownloadResult, error) {
	var zero DownloadResult
	if err := validateTarget(scope, res); err != nil {
		return zero, err
	}
	return s.download(ctx, scope, objectpath.TextKey(scope, res))
}

// DownloadImage returns the verified bytes of an image asset.
func (s *Service) DownloadImage(ctx context.Context, scope models.Scope, res models.Resource, fileName string) (DownloadResult, error) {
	var zero DownloadResult
	if err := validateTarget(scope, res); err != nil {
		return zero, err
	}
	if err := objectpath.ValidateImageFileName(fileName); err != nil {
		return zero, err
	}
	return s.download(ctx, scope, objectpath.ImageKey(scope, res, fileName))
}

// PresignImage verifies the stored image server-side and only then issues a
// time-limited direct-download URL for the exact verified version. A caller
// is never handed a link to unverified content.
func (s *Service) PresignImage(ctx context.Context, scope models.Scope, res models.Resource, fileName string) (*url.URL, error) {
	result, err := s.DownloadImage(ctx, scope, res, fileName)
	if err != nil {
		return nil, err
	}

	u, err := s.store.Presign(ctx, result.Info.Key, result.Info.VersionID, PresignTTL)
	if err != nil {
		return nil, fmt.Errorf("presign %s: %w", result.Info.Key, err)
	}
	return u, nil
}

// download runs the read pipeline. Bytes are returned if and only if both
// digests recomputed from the fetched content equal the ledger entry for
// the exact (key, version) pair observed at stat time. No partial-trust
// mode, no bypass.
func (s *Service) download(ctx context.Context, scope models.Scope, key string) (DownloadResult, error) {
	var zero DownloadResult
	if s == nil || s.store == nil || s.ledger == nil {
		return zero, fmt.Errorf("content service is not configured")
	}

	if err := s.checkBucket(ctx); err != nil {
		return zero, err
	}

	info, err := s.store.Stat(ctx, key)
	if errors.Is(err, blobstore.ErrNotFound) {
		return zero, fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	if err != nil {
		return zero, fmt.Errorf("stat %s: %w", key, err)
	}

	rec, err := s.ledger.Lookup(ctx, scope, key, info.VersionID)
	if err != nil {
		return zero, fmt.Errorf("lookup provenance for %s: %w", key, err)
	}
	if rec == nil {
		return zero, fmt.Errorf("%w: %s version %s", ErrNoProvenance, key, info.VersionID)
	}

	data, err := s.store.Get(ctx, key, info.VersionID)
	if errors.Is(err, blobstore.ErrNotFound) {
		return zero, fmt.Errorf("%w: %s version %s", ErrNotFound, key, info.VersionID)
	}
	if err != nil {
		return zero, fmt.Errorf("read %s: %w", key, err)
	}

	pair := digest.Sum(data)
	if !pair.MatchesMD5(rec.MD5) {
		return zero, &IntegrityError{Key: key, VersionID: info.VersionID, Algorithm: "md5", Want: rec.MD5, Got: pair.MD5}
	}
	if !pair.MatchesSHA256(rec.SHA256) {
		return zero, &IntegrityError{Key: key, VersionID: info.VersionID, Algorithm: "sha256", Want: rec.SHA256, Got: pair.SHA256}
	}

	return DownloadResult{Data: data, Info: info, Record: *rec}, nil
}

func (s *Service) checkBucket(ctx context.Context) error {
	ok, err := s.store.BucketExists(ctx)
	if err != nil {
		return fmt.Errorf("bucket check: %w", err)
	}
	if !ok {
		return ErrBucketMissing
	}
	return nil
}

func validateTarget(scope models.Scope, res models.Resource) error {
	if err := scope.Validate(); err != nil {
		return err
	}
	return res.Validate()
}
