// Package kind is the closed set of event kinds this client understands.
//
// The set is the single source of truth for valid values: FromInt is the only
// way to turn a wire integer into a T, and it refuses anything not listed.
package kind

import (
	"strconv"

	"github.com/Hubmakerlabs/cyan/pkg/nostr/codec"
)

// T is the event type in the nostr protocol.
type T uint16

const (
	// Metadata is a user profile, stringified JSON in the content field.
	Metadata T = 0
	// TextNote is a plain text short note.
	TextNote T = 1
	// RecommendRelay carries a relay URL the author recommends.
	RecommendRelay T = 2
	// FollowList is the list of pubkeys the author follows, as p tags.
	FollowList T = 3
	// EncryptedDirectMessage is a NIP-04 direct message.
	EncryptedDirectMessage T = 4
	// Deletion requests deletion of the events referenced by its e tags.
	Deletion T = 5
	// Repost is a repost of a text note.
	Repost T = 6
	// Reaction is a like/dislike or emoji reaction to an event.
	Reaction T = 7
)

var names = map[T]string{
	Metadata:               "Metadata",
	TextNote:               "TextNote",
	RecommendRelay:         "RecommendRelay",
	FollowList:             "FollowList",
	EncryptedDirectMessage: "EncryptedDirectMessage",
	Deletion:               "Deletion",
	Repost:                 "Repost",
	Reaction:               "Reaction",
}

// FromInt converts a wire integer into a T, failing for values that are not
// members of the set.
func FromInt(n int64) (k T, err error) {
	if n < 0 || n > 0xffff || !T(n).Valid() {
		err = codec.Errorf(codec.UnknownVariant, "kind",
			"no kind matching %d", n)
		return
	}
	k = T(n)
	return
}

// Valid reports whether k is a member of the set.
func (k T) Valid() bool {
	_, ok := names[k]
	return ok
}

func (k T) ToInt() int64 { return int64(k) }

func (k T) String() string {
	if s, ok := names[k]; ok {
		return s
	}
	return "Kind(" + strconv.Itoa(int(k)) + ")"
}

// MarshalJSON writes the kind as a plain integer.
func (k T) MarshalJSON() ([]byte, error) {
	return strconv.AppendUint(nil, uint64(k), 10), nil
}
