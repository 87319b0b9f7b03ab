package shortid

import (
	"errors"
	"math"
	"testing"
)

func testCodec(t *testing.T) *Codec {
	t.Helper()
	codec, err := New(DefaultAlphabet, DefaultMinLength)
	if err != nil {
		t.Fatalf("new codec: %v", err)
	}
	return codec
}

func TestEncodeDecodeBijection(t *testing.T) {
	codec := testCodec(t)

	ids := []int64{0, 1, 2, 41, 1000, 99999, 1 << 31, math.MaxInt64}
	for _, id := range ids {
		token, err := codec.Encode(id)
		if err != nil {
			t.Fatalf("encode %d: %v", id, err)
		}
		if len(token) < DefaultMinLength {
			t.Fatalf("token %q shorter than min length", token)
		}
		decoded, err := codec.Decode(token)
		if err != nil {
			t.Fatalf("decode %q: %v", token, err)
		}
		if decoded != id {
			t.Fatalf("round trip mismatch: %d -> %q -> %d", id, token, decoded)
		}
	}
}

func TestDecodeRejectsGarbage(t *testing.T) {
	codec := testCodec(t)

	garbage := []string{"", "   ", "!!!", "not a token", "injected/../path"}
	for _, token := range garbage {
		if _, err := codec.Decode(token); !errors.Is(err, ErrInvalidToken) {
			t.Fatalf("expected ErrInvalidToken for %q, got %v", token, err)
		}
	}
}

func TestDecodeRejectsNonCanonicalToken(t *testing.T) {
	codec := testCodec(t)

	token, err := codec.Encode(42)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	// A canonical token with a trailing alphabet character still decodes in
	// sqids, but must fail the re-encode check.
	if _, err := codec.Decode(token + token[:1]); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected non-canonical token to be rejected, got %v", err)
	}
}

func TestEncodeRejectsNegative(t *testing.T) {
	codec := testCodec(t)
	if _, err := codec.Encode(-1); err == nil {
		t.Fatal("expected negative id to be rejected")
	}
}

func TestDifferentConfigDifferentMapping(t *testing.T) {
	a := testCodec(t)
	b, err := New("0123456789abcdefghijklmnopqrstuvwxyzABCDEF", 12)
	if err != nil {
		t.Fatalf("new codec: %v", err)
	}

	tokenA, err := a.Encode(7)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	tokenB, err := b.Encode(7)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if tokenA == tokenB {
		t.Fatalf("expected distinct mappings, both produced %q", tokenA)
	}
}
