// Package digest computes the dual content digests recorded in the
// integrity ledger.
package digest

import (
	"crypto/md5"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"strings"
)

// Pair holds both digests of one payload as lowercase hex.
type Pair struct {
	MD5    string
	SHA256 string
}

// Sum computes MD5 and SHA-256 over data in a single pass, feeding both hash
// states from one read of the buffer.
func Sum(data []byte) Pair {
	md5h := md5.New()
	shah := sha256.New()

	// Writes to hash.Hash never fail.
	_, _ = io.MultiWriter(md5h, shah).Write(data)

	return Pair{
		MD5:    hex.EncodeToString(md5h.Sum(nil)),
		SHA256: hex.EncodeToString(shah.Sum(nil)),
	}
}

// Matches reports whether both recorded digests equal this pair. Comparison
// is case-insensitive so ledger rows written with uppercase hex still verify.
func (p Pair) Matches(md5Hex, sha256Hex string) bool {
	return p.MatchesMD5(md5Hex) && p.MatchesSHA256(sha256Hex)
}

// MatchesMD5 compares the MD5 digest only.
func (p Pair) MatchesMD5(md5Hex string) bool {
	return p.MD5 == Normalize(md5Hex)
}

// MatchesSHA256 compares the SHA-256 digest only.
func (p Pair) MatchesSHA256(sha256Hex string) bool {
	return p.SHA256 == Normalize(sha256Hex)
}

// Normalize returns the canonical stored form of a hex digest.
func Normalize(hexDigest string) string {
	return strings.ToLower(strings.TrimSpace(hexDigest))
}
