package content

import (
	"errors"
	"fmt"
)

// Terminal failure kinds of the content pipelines. None are
// silently recovered or downgraded; the service never returns content it
// cannot verify.
var (
	// ErrBucketMissing means the configured bucket does not exist. Fatal,
	// operator-actionable, never retried here.
	ErrBucketMissing = errors.New("storage bucket is missing")

	// ErrNotFound means the requested object is absent at the store.
	ErrNotFound = errors.New("content not found")

	// ErrNoProvenance means the object version exists but the ledger holds
	// no record for it: the write path never completed or was bypassed.
	ErrNoProvenance = errors.New("no provenance for content version")

	// ErrIntegrity means a recomputed digest disagrees with the ledger:
	// corruption or tampering. Content is never returned in this case.
	ErrIntegrity = errors.New("content integrity verification failed")
)

// IntegrityError carries the detail of a digest mismatch. It unwraps to
// ErrIntegrity so callers branch with errors.Is.
type IntegrityError struct {
	Key       string
	VersionID string
	Algorithm string
	Want      string
	Got       string
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("%s digest mismatch for %s version %s: ledger %s, content %s",
		e.Algorithm, e.Key, e.VersionID, e.Want, e.Got)
}

func (e *IntegrityError) Unwrap() error { return ErrIntegrity }
