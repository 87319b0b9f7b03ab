package models

import (
	"fmt"
	"strings"
)

// ResourceType names the kind of case resource that owns a content object.
type ResourceType string

const (
	ResourceNote ResourceType = "contemporaneous-notes"
	ResourceTab  ResourceType = "tabs"
)

var validResourceTypes = map[ResourceType]struct{}{
	ResourceNote: {},
	ResourceTab:  {},
}

// Artifact names for the primary text payload of each resource type.
const (
	ArtifactNoteText = "note.txt"
	ArtifactTabText  = "content.txt"
)

// Resource identifies one note or tab within a case.
type Resource struct {
	Type ResourceType
	ID   int64
}

// TextArtifact returns the artifact name carrying the resource's text payload.
func (r Resource) TextArtifact() string {
	if r.Type == ResourceNote {
		return ArtifactNoteText
	}
	return ArtifactTabText
}

// Validate checks resource shape.
func (r Resource) Validate() error {
	if _, ok := validResourceTypes[r.Type]; !ok {
		return fmt.Errorf("invalid resource type: %s", r.Type)
	}
	if r.ID <= 0 {
		return fmt.Errorf("resource id is required")
	}
	return nil
}

func ParseResourceType(raw string) (ResourceType, error) {
	value := ResourceType(strings.ToLower(strings.TrimSpace(raw)))
	if value == "" {
		return "", fmt.Errorf("resource type is required")
	}
	if _, ok := validResourceTypes[value]; !ok {
		return "", fmt.Errorf("invalid resource type: %s", value)
	}
	return value, nil
}
