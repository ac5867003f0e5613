// Package hex is a thin shorthand for lowercase hexadecimal encoding as used
// for every id, key and signature on the nostr wire.
package hex

import (
	"encoding/hex"
	"errors"
)

// ErrWrongLength is returned by DecFixed when the hex is valid but decodes to
// the wrong number of bytes.
var ErrWrongLength = errors.New("hex: wrong decoded length")

var (
	Enc    = hex.EncodeToString
	Dec    = hex.DecodeString
	EncLen = hex.EncodedLen
	DecLen = hex.DecodedLen
)

// AppendEnc appends the lowercase hex of src to dst.
func AppendEnc(dst, src []byte) []byte {
	n := len(dst)
	dst = append(dst, make([]byte, hex.EncodedLen(len(src)))...)
	hex.Encode(dst[n:], src)
	return dst
}

// DecFixed decodes s into dst and requires the decoded length to be exactly
// len(dst). It returns the decoded length so callers can report it.
func DecFixed(dst []byte, s string) (n int, err error) {
	var b []byte
	if b, err = hex.DecodeString(s); err != nil {
		return
	}
	n = len(b)
	if n != len(dst) {
		err = ErrWrongLength
		return
	}
	copy(dst, b)
	return
}

// IsLower reports whether s only contains lowercase hex digits.
func IsLower(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !(c >= '0' && c <= '9' || c >= 'a' && c <= 'f') {
			return false
		}
	}
	return true
}
