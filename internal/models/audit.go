package models

import (
	"fmt"
	"strings"
	"time"
)

// Identity is the authenticated caller resolved by the auth middleware.
type Identity struct {
	UserID int64  `json:"user_id"`
	Email  string `json:"email"`
	OrgID  int64  `json:"org_id"`
}

// AuditEvent records who changed what resource in which case.
type AuditEvent struct {
	ID      int64     `json:"id"`
	Action  string    `json:"action"`
	ActorID int64     `json:"actor_id"`
	CaseID  int64     `json:"case_id"`
	At      time.Time `json:"at"`
}

// Validate checks event shape before it is persisted.
func (e *AuditEvent) Validate() error {
	if e == nil {
		return fmt.Errorf("audit event is required")
	}
	if strings.TrimSpace(e.Action) == "" {
		return fmt.Errorf("audit action is required")
	}
	if e.ActorID <= 0 {
		return fmt.Errorf("audit actor id is required")
	}
	if e.CaseID <= 0 {
		return fmt.Errorf("audit case id is required")
	}
	return nil
}
