package models

import (
	"fmt"
	"strings"
)

// ScopeKind describes who owns a piece of case content.
type ScopeKind string

const (
	// ScopePersonal content belongs to a single user within a case.
	ScopePersonal ScopeKind = "personal"
	// ScopeShared content is visible to every user with access to the case.
	ScopeShared ScopeKind = "shared"
)

var validScopeKinds = map[ScopeKind]struct{}{
	ScopePersonal: {},
	ScopeShared:   {},
}

// Scope identifies the owning collection of a content object: either one
// user's personal collection within a case, or the case's shared collection.
type Scope struct {
	Kind    ScopeKind
	CaseID  int64
	OwnerID int64
}

// PersonalScope returns the personal scope for one user within a case.
func PersonalScope(caseID, ownerID int64) Scope {
	return Scope{Kind: ScopePersonal, CaseID: caseID, OwnerID: ownerID}
}

// SharedScope returns the shared scope of a case.
func SharedScope(caseID int64) Scope {
	return Scope{Kind: ScopeShared, CaseID: caseID}
}

// Validate checks scope invariants.
func (s Scope) Validate() error {
	if _, ok := validScopeKinds[s.Kind]; !ok {
		return fmt.Errorf("invalid scope kind: %s", s.Kind)
	}
	if s.CaseID <= 0 {
		return fmt.Errorf("scope case id is required")
	}
	if s.Kind == ScopePersonal && s.OwnerID <= 0 {
		return fmt.Errorf("personal scope owner id is required")
	}
	if s.Kind == ScopeShared && s.OwnerID != 0 {
		return fmt.Errorf("shared scope must not carry an owner id")
	}
	return nil
}

func ParseScopeKind(raw string) (ScopeKind, error) {
	value := ScopeKind(strings.ToLower(strings.TrimSpace(raw)))
	if value == "" {
		return "", fmt.Errorf("scope kind is required")
	}
	if _, ok := validScopeKinds[value]; !ok {
		return "", fmt.Errorf("invalid scope kind: %s", value)
	}
	return value, nil
}
