package objectpath

import (
	"testing"

	"casevault/internal/models"
)

func TestResolveIsDeterministic(t *testing.T) {
	scope := models.PersonalScope(7, 42)
	res := models.Resource{Type: models.ResourceNote, ID: 9}

	first := TextKey(scope, res)
	second := TextKey(scope, res)
	if first != second {
		t.Fatalf("key not stable: %q vs %q", first, second)
	}
	if first != "cases/7/42/contemporaneous-notes/9/note.txt" {
		t.Fatalf("unexpected key: %s", first)
	}
}

func TestResolveSharedScope(t *testing.T) {
	scope := models.SharedScope(3)
	res := models.Resource{Type: models.ResourceTab, ID: 11}

	key := TextKey(scope, res)
	if key != "cases/3/shared/tabs/11/content.txt" {
		t.Fatalf("unexpected key: %s", key)
	}
}

func TestImageKey(t *testing.T) {
	scope := models.SharedScope(3)
	res := models.Resource{Type: models.ResourceTab, ID: 11}

	key := ImageKey(scope, res, "photo.png")
	if key != "cases/3/shared/tabs/11/images/photo.png" {
		t.Fatalf("unexpected key: %s", key)
	}
}

func TestValidateImageFileName(t *testing.T) {
	valid := []string{"photo.png", "scan 01.jpg", "a.b.c"}
	for _, name := range valid {
		if err := ValidateImageFileName(name); err != nil {
			t.Fatalf("expected %q to be valid: %v", name, err)
		}
	}

	invalid := []string{"", "  ", "a/b.png", `a\b.png`, ".", ".."}
	for _, name := range invalid {
		if err := ValidateImageFileName(name); err == nil {
			t.Fatalf("expected %q to be rejected", name)
		}
	}
}
