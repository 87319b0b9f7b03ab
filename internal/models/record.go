package models

import (
	"fmt"
	"strings"
	"time"
)

const (
	md5HexLength    = 32
	sha256HexLength = 64
)

// IntegrityRecord is one row of the append-only provenance ledger. A record
// binds the exact store version of an object key to the digests computed from
// the bytes that were written. Records are created once, read on every
// verified download, and never updated or deleted.
type IntegrityRecord struct {
	ID         int64     `json:"id"`
	ObjectName string    `json:"object_name"`
	VersionID  string    `json:"version_id"`
	MD5        string    `json:"md5_hash"`
	SHA256     string    `json:"sha_hash"`
	ScopeKind  string    `json:"scope_kind"`
	CaseID     int64     `json:"case_id"`
	OwnerID    int64     `json:"owner_id,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// Validate checks record shape before it is written to the ledger.
func (r *IntegrityRecord) Validate() error {
	if r == nil {
		return fmt.Errorf("integrity record is required")
	}
	if strings.TrimSpace(r.ObjectName) == "" {
		return fmt.Errorf("object name is required")
	}
	if strings.TrimSpace(r.VersionID) == "" {
		return fmt.Errorf("version id is required")
	}
	if err := validateHex("md5", r.MD5, md5HexLength); err != nil {
		return err
	}
	if err := validateHex("sha256", r.SHA256, sha256HexLength); err != nil {
		return err
	}
	if _, err := ParseScopeKind(r.ScopeKind); err != nil {
		return err
	}
	return nil
}

func validateHex(name, value string, length int) error {
	if len(value) != length {
		return fmt.Errorf("%s digest must be %d hex characters", name, length)
	}
	for _, c := range value {
		switch {
		case c >= '0' && c <= '9':
		case c >= 'a' && c <= 'f':
		default:
			return fmt.Errorf("%s digest must be lowercase hex", name)
		}
	}
	return nil
}
