// Package subscriptionid is the client chosen name of a subscription, echoed
// by relays on every message that belongs to it.
package subscriptionid

import (
	"github.com/Hubmakerlabs/cyan/pkg/nostr/codec"
	"github.com/Hubmakerlabs/cyan/pkg/nostr/wire/text"
	"lukechampine.com/frand"
)

const (
	// MaxLen is the longest id relays are required to accept.
	MaxLen = 64
	// GeneratedLen is the length of ids made by New.
	GeneratedLen = 64
	alphabet     = "0123456789" +
		"ABCDEFGHIJKLMNOPQRSTUVWXYZ" +
		"abcdefghijklmnopqrstuvwxyz"
)

// T is an arbitrary string of 1-64 characters in length.
type T string

// New generates a random alphanumeric id.
func New() T {
	b := make([]byte, GeneratedLen)
	for i := range b {
		b[i] = alphabet[frand.Intn(len(alphabet))]
	}
	return T(b)
}

// FromString checks that s is a usable id.
func FromString(s string) (si T, err error) {
	if !T(s).Valid() {
		err = codec.Errorf(codec.WrongLength, "subscription id",
			"length must be 1 to %d, got %d", MaxLen, len(s))
		return
	}
	return T(s), nil
}

// Valid reports whether the id is between 1 and 64 characters.
func (si T) Valid() bool { return len(si) > 0 && len(si) <= MaxLen }

func (si T) String() string { return string(si) }

func (si T) MarshalJSON() ([]byte, error) { return text.Quote(string(si)), nil }
