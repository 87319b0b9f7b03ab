// Package ledger persists the append-only integrity ledger and the audit
// trail in SQLite.
package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"casevault/internal/digest"
	"casevault/internal/models"
)

const (
	busyTimeoutMS   = 5000
	maxOpenConns    = 1
	maxIdleConns    = 1
	connMaxLifetime = 5 * time.Minute

	recordColumns = "id, object_name, version_id, md5_hash, sha_hash, scope_kind, case_id, owner_id, created_at"
)

// Store wraps the SQLite ledger database.
type Store struct {
	db *sql.DB
}

// Open opens the ledger database and bootstraps the schema.
func Open(path string) (*Store, error) {
	dsn, err := sqliteDSN(path)
	if err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}

	if err := configureDB(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := runMigrations(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Record appends one integrity record owned by scope. The ledger is
// append-only: there is no update or delete path, and the unique index on
// (object_name, version_id) rejects duplicate provenance for one version.
func (s *Store) Record(ctx context.Context, scope models.Scope, rec *models.IntegrityRecord) (models.IntegrityRecord, error) {
	var zero models.IntegrityRecord
	if s == nil || s.db == nil {
		return zero, fmt.Errorf("ledger is not configured")
	}
	if rec == nil {
		return zero, fmt.Errorf("integrity record is required")
	}
	if err := scope.Validate(); err != nil {
		return zero, err
	}

	stored := *rec
	stored.MD5 = digest.Normalize(stored.MD5)
	stored.SHA256 = digest.Normalize(stored.SHA256)
	stored.ScopeKind = string(scope.Kind)
	stored.CaseID = scope.CaseID
	stored.OwnerID = scope.OwnerID
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now().UTC()
	}
	if err := stored.Validate(); err != nil {
		return zero, err
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO integrity_records (object_name, version_id, md5_hash, sha_hash, scope_kind, case_id, owner_id, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		stored.ObjectName, stored.VersionID, stored.MD5, stored.SHA256,
		stored.ScopeKind, stored.CaseID, nullableID(stored.OwnerID),
		stored.CreatedAt.Format(time.RFC3339Nano))
	if err != nil {
		return zero, fmt.Errorf("record integrity row: %w", err)
	}
	if id, err := res.LastInsertId(); err == nil {
		stored.ID = id
	}
	return stored, nil
}

// Lookup returns the integrity record for the exact (objectName, versionID)
// pair in scope, or nil when no provenance exists for that version. There is
// no latest-version fallback: the caller must pass the version id obtained
// from its own preceding stat. A nil record means the write path never
// completed for that version; it is distinct from an integrity failure,
// where a record exists but the content disagrees with it.
func (s *Store) Lookup(ctx context.Context, scope models.Scope, objectName, versionID string) (*models.IntegrityRecord, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("ledger is not configured")
	}
	if err := scope.Validate(); err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx,
		`SELECT `+recordColumns+` FROM integrity_records
		 WHERE object_name = ? AND version_id = ? AND scope_kind = ? AND case_id = ? AND COALESCE(owner_id, 0) = ?`,
		objectName, versionID, string(scope.Kind), scope.CaseID, scope.OwnerID)

	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("lookup integrity row: %w", err)
	}
	return rec, nil
}

// ForEachRecord streams every ledger row in insertion order. Used by the
// offline verification sweep only.
func (s *Store) ForEachRecord(ctx context.Context, fn func(models.IntegrityRecord) error) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("ledger is not configured")
	}

	rows, err := s.db.QueryContext(ctx, `SELECT `+recordColumns+` FROM integrity_records ORDER BY id`)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return err
		}
		if err := fn(*rec); err != nil {
			return err
		}
	}
	return rows.Err()
}

// RecordAudit appends one audit event.
func (s *Store) RecordAudit(ctx context.Context, event models.AuditEvent) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("ledger is not configured")
	}
	if event.At.IsZero() {
		event.At = time.Now().UTC()
	}
	if err := event.Validate(); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO audit_events (action, actor_id, case_id, at) VALUES (?, ?, ?, ?)`,
		event.Action, event.ActorID, event.CaseID, event.At.Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("record audit event: %w", err)
	}
	return nil
}

// ListAuditEvents returns the most recent audit events for one case.
func (s *Store) ListAuditEvents(ctx context.Context, caseID int64, limit int) ([]models.AuditEvent, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("ledger is not configured")
	}
	if limit <= 0 {
		limit = 100
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, action, actor_id, case_id, at FROM audit_events WHERE case_id = ? ORDER BY id DESC LIMIT ?`,
		caseID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []models.AuditEvent
	for rows.Next() {
		var event models.AuditEvent
		var at string
		if err := rows.Scan(&event.ID, &event.Action, &event.ActorID, &event.CaseID, &at); err != nil {
			return nil, err
		}
		event.At, err = parseTime(at)
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	return events, rows.Err()
}

// IsUniqueConstraint reports whether err is a SQLite unique-constraint
// violation.
func IsUniqueConstraint(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*models.IntegrityRecord, error) {
	var rec models.IntegrityRecord
	var ownerID sql.NullInt64
	var createdAt string
	if err := row.Scan(&rec.ID, &rec.ObjectName, &rec.VersionID, &rec.MD5, &rec.SHA256,
		&rec.ScopeKind, &rec.CaseID, &ownerID, &createdAt); err != nil {
		return nil, err
	}
	rec.OwnerID = ownerID.Int64
	parsed, err := parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	rec.CreatedAt = parsed
	return &rec, nil
}

func nullableID(id int64) any {
	if id == 0 {
		return nil
	}
	return id
}

func parseTime(raw string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse stored timestamp %q: %w", raw, err)
	}
	return t, nil
}

func configureDB(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL;",
		"PRAGMA synchronous = NORMAL;",
		"PRAGMA foreign_keys = ON;",
		fmt.Sprintf("PRAGMA busy_timeout = %d;", busyTimeoutMS),
	}
	for _, stmt := range pragmas {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}

	db.SetMaxOpenConns(maxOpenConns)
	db.SetMaxIdleConns(maxIdleConns)
	db.SetConnMaxLifetime(connMaxLifetime)

	return nil
}

func sqliteDSN(path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("db path is required")
	}
	u := url.URL{Scheme: "file", Path: path}
	return u.String(), nil
}
