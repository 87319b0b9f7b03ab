// Package shortid encodes internal numeric primary keys as short opaque
// tokens so URLs never expose enumerable sequential ids.
package shortid

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/sqids/sqids-go"
)

// ErrInvalidToken is returned when a token does not decode to exactly one id
// in canonical form. HTTP handlers must surface it as not-found, never as a
// distinct input error.
var ErrInvalidToken = errors.New("invalid id token")

// DefaultAlphabet is used when no alphabet is configured. The alphabet and
// minimum length are deployment constants: changing either invalidates every
// previously issued token.
const (
	DefaultAlphabet  = "k3G7QAe51FCsPW92uEOyq4Bg6Sp8YzVTmnU0liwDdHXLajZrfxNhobJIRcMvKt"
	DefaultMinLength = 8
)

// Codec is a bijective encoder between non-negative 63-bit integers and
// opaque tokens. Safe for concurrent use.
type Codec struct {
	ids       *sqids.Sqids
	alphabet  string
	minLength uint8
}

// New builds a Codec from the configured alphabet and minimum token length.
func New(alphabet string, minLength uint8) (*Codec, error) {
	alphabet = strings.TrimSpace(alphabet)
	if alphabet == "" {
		alphabet = DefaultAlphabet
	}

	ids, err := sqids.New(sqids.Options{Alphabet: alphabet, MinLength: minLength})
	if err != nil {
		return nil, fmt.Errorf("shortid alphabet rejected: %w", err)
	}
	return &Codec{ids: ids, alphabet: alphabet, minLength: minLength}, nil
}

// Encode returns the token for one internal id.
func (c *Codec) Encode(id int64) (string, error) {
	if c == nil || c.ids == nil {
		return "", fmt.Errorf("shortid codec is not configured")
	}
	if id < 0 {
		return "", fmt.Errorf("id must be non-negative")
	}
	return c.ids.Encode([]uint64{uint64(id)})
}

// Decode returns the internal id for a token. A token is accepted only if it
// decodes to exactly one in-range id and re-encodes to the identical string;
// the canonical-form check makes Decode a true inverse of Encode.
func (c *Codec) Decode(token string) (int64, error) {
	if c == nil || c.ids == nil {
		return 0, fmt.Errorf("shortid codec is not configured")
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return 0, ErrInvalidToken
	}

	nums := c.ids.Decode(token)
	if len(nums) != 1 || nums[0] > math.MaxInt64 {
		return 0, ErrInvalidToken
	}

	canonical, err := c.ids.Encode(nums)
	if err != nil || canonical != token {
		return 0, ErrInvalidToken
	}
	return int64(nums[0]), nil
}
