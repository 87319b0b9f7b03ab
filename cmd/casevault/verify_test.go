package main

import (
	"context"
	"path/filepath"
	"testing"

	"casevault/internal/blobstore"
	"casevault/internal/content"
	"casevault/internal/ledger"
	"casevault/internal/models"
)

func TestRunVerifySweep(t *testing.T) {
	ctx := context.Background()
	st, err := ledger.Open(filepath.Join(t.TempDir(), "ledger.db"))
	if err != nil {
		t.Fatalf("open ledger: %v", err)
	}
	defer st.Close()

	store := blobstore.NewMemoryStore("evidence")
	svc := content.NewService(store, st, st)
	actor := models.Identity{UserID: 1}

	// A healthy upload through the regular pipeline.
	scope := models.SharedScope(1)
	if _, err := svc.UploadText(ctx, actor, scope, models.Resource{Type: models.ResourceTab, ID: 1}, []byte("intact")); err != nil {
		t.Fatalf("upload: %v", err)
	}

	// A ledger row whose blob version was never written.
	if _, err := st.Record(ctx, scope, &models.IntegrityRecord{
		ObjectName: "cases/1/shared/tabs/2/content.txt",
		VersionID:  "v99",
		MD5:        "d41d8cd98f00b204e9800998ecf8427e",
		SHA256:     "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855",
	}); err != nil {
		t.Fatalf("record orphan row: %v", err)
	}

	// A ledger row whose digests disagree with the stored bytes.
	versionID, err := store.Put(ctx, "cases/1/shared/tabs/3/content.txt", []byte("drifted"), "text/plain")
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if _, err := st.Record(ctx, scope, &models.IntegrityRecord{
		ObjectName: "cases/1/shared/tabs/3/content.txt",
		VersionID:  versionID,
		MD5:        "d41d8cd98f00b204e9800998ecf8427e",
		SHA256:     "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855",
	}); err != nil {
		t.Fatalf("record drifted row: %v", err)
	}

	report, err := runVerifySweep(ctx, st, store)
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}

	if report.Checked != 3 {
		t.Fatalf("expected 3 checked, got %d", report.Checked)
	}
	if report.OK != 1 {
		t.Fatalf("expected 1 ok, got %d", report.OK)
	}
	if report.Missing != 1 {
		t.Fatalf("expected 1 missing, got %d", report.Missing)
	}
	if report.Mismatched != 1 {
		t.Fatalf("expected 1 mismatched, got %d", report.Mismatched)
	}
	if len(report.Findings) != 2 {
		t.Fatalf("expected 2 findings, got %d", len(report.Findings))
	}
}
