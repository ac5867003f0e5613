// Package eventid is the 32 byte event identifier, the SHA256 hash of the
// canonical form of an event.
package eventid

import (
	"github.com/Hubmakerlabs/cyan/pkg/hex"
	"github.com/Hubmakerlabs/cyan/pkg/nostr/codec"
	"github.com/tidwall/gjson"
)

const Len = 32

// T is a raw event id.
type T [Len]byte

// String returns the lowercase hex form used on the wire.
func (ei T) String() string { return hex.Enc(ei[:]) }

// MarshalJSON writes the id as a quoted hex string.
func (ei T) MarshalJSON() ([]byte, error) {
	b := make([]byte, 0, Len*2+2)
	b = append(b, '"')
	b = hex.AppendEnc(b, ei[:])
	return append(b, '"'), nil
}

// FromHex decodes a 64 character hex string.
func FromHex(s string) (ei T, err error) {
	err = codec.Hex(ei[:], gjson.Result{Type: gjson.String, Str: s}, "id")
	return
}

// Decode reads an id from a gjson string value, naming field in errors.
func Decode(r gjson.Result, field string) (ei T, err error) {
	err = codec.Hex(ei[:], r, field)
	return
}
