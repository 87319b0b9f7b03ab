package digest

import (
	"strings"
	"testing"
)

func TestSumKnownVector(t *testing.T) {
	pair := Sum([]byte("hello"))

	if pair.MD5 != "5d41402abc4b2a76b9719d911017c592" {
		t.Fatalf("unexpected md5: %s", pair.MD5)
	}
	if pair.SHA256 != "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824" {
		t.Fatalf("unexpected sha256: %s", pair.SHA256)
	}
}

func TestSumEmptyPayload(t *testing.T) {
	pair := Sum(nil)

	if pair.MD5 != "d41d8cd98f00b204e9800998ecf8427e" {
		t.Fatalf("unexpected md5 of empty payload: %s", pair.MD5)
	}
	if pair.SHA256 != "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855" {
		t.Fatalf("unexpected sha256 of empty payload: %s", pair.SHA256)
	}
}

func TestSumRoundTrip(t *testing.T) {
	payloads := [][]byte{
		[]byte("hello"),
		[]byte(""),
		[]byte(strings.Repeat("evidence ", 1000)),
		{0x00, 0xff, 0x10, 0x80},
	}

	for _, payload := range payloads {
		upload := Sum(payload)
		download := Sum(payload)
		if upload != download {
			t.Fatalf("digest not stable for %d-byte payload", len(payload))
		}
	}
}

func TestMatchesIsCaseInsensitive(t *testing.T) {
	pair := Sum([]byte("hello"))

	if !pair.Matches(strings.ToUpper(pair.MD5), strings.ToUpper(pair.SHA256)) {
		t.Fatal("expected uppercase digests to match")
	}
	if pair.Matches(pair.MD5, strings.Repeat("0", 64)) {
		t.Fatal("expected sha256 mismatch to fail")
	}
	if pair.Matches(strings.Repeat("0", 32), pair.SHA256) {
		t.Fatal("expected md5 mismatch to fail")
	}
}
