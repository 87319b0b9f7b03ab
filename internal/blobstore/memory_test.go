package blobstore

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestMemoryStorePutAssignsDistinctVersions(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore("evidence")

	v1, err := store.Put(ctx, "cases/1/shared/tabs/2/content.txt", []byte("first"), "text/plain")
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	v2, err := store.Put(ctx, "cases/1/shared/tabs/2/content.txt", []byte("second"), "text/plain")
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if v1 == v2 {
		t.Fatalf("expected distinct version ids, both %q", v1)
	}

	info, err := store.Stat(ctx, "cases/1/shared/tabs/2/content.txt")
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if info.VersionID != v2 {
		t.Fatalf("stat should report latest version %q, got %q", v2, info.VersionID)
	}
	if info.Size != int64(len("second")) {
		t.Fatalf("unexpected size: %d", info.Size)
	}

	// Overwrites retain every prior version.
	old, err := store.Get(ctx, "cases/1/shared/tabs/2/content.txt", v1)
	if err != nil {
		t.Fatalf("get old version: %v", err)
	}
	if string(old) != "first" {
		t.Fatalf("unexpected old version content: %q", old)
	}
}

func TestMemoryStoreNotFound(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore("evidence")

	if _, err := store.Stat(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound from stat, got %v", err)
	}
	if _, err := store.Get(ctx, "missing", "v1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound from get, got %v", err)
	}

	v1, err := store.Put(ctx, "key", []byte("x"), "text/plain")
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if _, err := store.Get(ctx, "key", v1+"-wrong"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for wrong version, got %v", err)
	}
}

func TestMemoryStoreGetReturnsCopy(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore("evidence")

	v1, err := store.Put(ctx, "key", []byte("stable"), "text/plain")
	if err != nil {
		t.Fatalf("put: %v", err)
	}

	data, err := store.Get(ctx, "key", v1)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	data[0] = 'X'

	again, err := store.Get(ctx, "key", v1)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if string(again) != "stable" {
		t.Fatalf("stored bytes mutated: %q", again)
	}
}

func TestMemoryStorePresign(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore("evidence")

	v1, err := store.Put(ctx, "cases/1/shared/tabs/2/images/pic.png", []byte("png"), "image/png")
	if err != nil {
		t.Fatalf("put: %v", err)
	}

	u, err := store.Presign(ctx, "cases/1/shared/tabs/2/images/pic.png", v1, time.Hour)
	if err != nil {
		t.Fatalf("presign: %v", err)
	}
	if got := u.Query().Get("versionId"); got != v1 {
		t.Fatalf("presigned url missing version id, got %q", got)
	}
	if got := u.Query().Get("expires"); got != "3600" {
		t.Fatalf("unexpected expires: %q", got)
	}

	if _, err := store.Presign(ctx, "cases/1/shared/tabs/2/images/pic.png", "nope", time.Hour); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown version, got %v", err)
	}
}

func TestMemoryStoreBucketMissing(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore("evidence")

	ok, err := store.BucketExists(ctx)
	if err != nil || !ok {
		t.Fatalf("expected bucket to exist: ok=%v err=%v", ok, err)
	}

	store.SetBucketMissing(true)
	ok, err = store.BucketExists(ctx)
	if err != nil {
		t.Fatalf("bucket check: %v", err)
	}
	if ok {
		t.Fatal("expected bucket to be reported missing")
	}
}
