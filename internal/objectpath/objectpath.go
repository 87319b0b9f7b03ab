// Package objectpath maps content identity tuples to stable object store keys.
//
// The same identity tuple always resolves to the same key, so the upload and
// download paths agree on object location without any directory lookup.
package objectpath

import (
	"fmt"
	"strconv"
	"strings"

	"casevault/internal/models"
)

const (
	caseSegment   = "cases"
	sharedSegment = "shared"
	imageSegment  = "images"
)

// Resolve returns the object key for an artifact of one case resource:
//
//	cases/{caseID}/{ownerID|"shared"}/{resourceType}/{resourceID}/{artifact}
//
// Pure and deterministic; callers validate scope and resource beforehand.
func Resolve(scope models.Scope, res models.Resource, artifact string) string {
	return strings.Join([]string{
		caseSegment,
		strconv.FormatInt(scope.CaseID, 10),
		ownerSegment(scope),
		string(res.Type),
		strconv.FormatInt(res.ID, 10),
		artifact,
	}, "/")
}

// TextKey returns the key of the resource's primary text payload.
func TextKey(scope models.Scope, res models.Resource) string {
	return Resolve(scope, res, res.TextArtifact())
}

// ImageKey returns the key of a binary image asset attached to a resource.
func ImageKey(scope models.Scope, res models.Resource, fileName string) string {
	return Resolve(scope, res, imageSegment+"/"+fileName)
}

// ValidateImageFileName rejects names that would escape the resource's
// image prefix or collide with text artifacts.
func ValidateImageFileName(fileName string) error {
	fileName = strings.TrimSpace(fileName)
	if fileName == "" {
		return fmt.Errorf("image file name is required")
	}
	if strings.ContainsAny(fileName, "/\\") {
		return fmt.Errorf("image file name must not contain path separators")
	}
	if fileName == "." || fileName == ".." {
		return fmt.Errorf("invalid image file name")
	}
	return nil
}

func ownerSegment(scope models.Scope) string {
	if scope.Kind == models.ScopeShared {
		return sharedSegment
	}
	return strconv.FormatInt(scope.OwnerID, 10)
}
