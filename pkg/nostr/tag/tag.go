// Package tag is the structured annotation attached to an event.
//
// A tag is a JSON array of strings whose first element names it. Two names
// are understood, "e" (a reference to another event) and "p" (a reference to
// a pubkey); everything else decodes into Other. Decoding a tag never fails
// because of its name: an unrecognised or irregular tag is kept as Other.
// Message decoding is strict about its labels, tags are not, and the two must
// stay that way as callers depend on both behaviours.
package tag

import (
	"strings"

	"github.com/Hubmakerlabs/cyan/pkg/hex"
	"github.com/Hubmakerlabs/cyan/pkg/nostr/codec"
	"github.com/Hubmakerlabs/cyan/pkg/nostr/eventid"
	"github.com/Hubmakerlabs/cyan/pkg/nostr/keys"
	"github.com/Hubmakerlabs/cyan/pkg/nostr/wire/text"
	"github.com/tidwall/gjson"
)

// The tag position meanings so they are clear when reading.
const (
	Key = iota
	Value
	Relay
)

const (
	NameE = "e"
	NameP = "p"
)

// T is one of *E, *P or *Other.
type T interface {
	// Name is the first element of the tag array.
	Name() string
	// MarshalTo appends the JSON array form of the tag to dst.
	MarshalTo(dst []byte) []byte
	// Strings returns the tag as its array of strings.
	Strings() []string
	isTag()
}

// E references another event, with an optional relay hint.
//
// Rest is every element after the event id as it was decoded, the relay hint
// and any marker included. When set it is encoded in place of Relay so the
// tag comes back out as the same array.
type E struct {
	EventID eventid.T
	Relay   string
	Rest    []string
}

// P references a pubkey, with an optional relay hint. Rest is as for E.
type P struct {
	PubKey keys.PubKey
	Relay  string
	Rest   []string
}

// Other is any tag that is not a well formed e or p tag.
//
// Data is the concatenation of every element after the name. Fields holds
// those elements as they were, so the tag encodes back to exactly the array
// it was decoded from and event ids still check.
type Other struct {
	Label  string
	Data   string
	Fields []string
}

func (*E) isTag()     {}
func (*P) isTag()     {}
func (*Other) isTag() {}

func (*E) Name() string       { return NameE }
func (*P) Name() string       { return NameP }
func (t *Other) Name() string { return t.Label }

// NewOther builds an Other from its name and remaining elements.
func NewOther(name string, fields ...string) *Other {
	return &Other{Label: name, Data: strings.Join(fields, ""), Fields: fields}
}

func reference(name, value, relay string, rest []string) []string {
	switch {
	case rest != nil:
		return append([]string{name, value}, rest...)
	case relay == "":
		return []string{name, value}
	}
	return []string{name, value, relay}
}

func (t *E) Strings() []string {
	return reference(NameE, t.EventID.String(), t.Relay, t.Rest)
}

func (t *P) Strings() []string {
	return reference(NameP, t.PubKey.String(), t.Relay, t.Rest)
}

// Marker is the element after the relay hint, such as "reply" or "root".
func (t *E) Marker() string { return marker(t.Rest) }

func (t *P) Marker() string { return marker(t.Rest) }

func marker(rest []string) string {
	if len(rest) > 1 {
		return rest[1]
	}
	return ""
}

func (t *Other) Strings() []string {
	if t.Fields != nil {
		return append([]string{t.Label}, t.Fields...)
	}
	if t.Data == "" {
		return []string{t.Label}
	}
	return []string{t.Label, t.Data}
}

func marshalStrings(dst []byte, ss []string) []byte {
	dst = append(dst, '[')
	for i, s := range ss {
		if i > 0 {
			dst = append(dst, ',')
		}
		dst = text.AppendQuoted(dst, s)
	}
	return append(dst, ']')
}

func (t *E) MarshalTo(dst []byte) []byte     { return marshalStrings(dst, t.Strings()) }
func (t *P) MarshalTo(dst []byte) []byte     { return marshalStrings(dst, t.Strings()) }
func (t *Other) MarshalTo(dst []byte) []byte { return marshalStrings(dst, t.Strings()) }

func (t *E) MarshalJSON() ([]byte, error)     { return t.MarshalTo(nil), nil }
func (t *P) MarshalJSON() ([]byte, error)     { return t.MarshalTo(nil), nil }
func (t *Other) MarshalJSON() ([]byte, error) { return t.MarshalTo(nil), nil }

// Decode reads a tag from a gjson array value.
func Decode(r gjson.Result) (t T, err error) {
	if !r.IsArray() {
		err = codec.Errorf(codec.Malformed, "tag", "expected array, got %s",
			r.Raw)
		return
	}
	arr := r.Array()
	if len(arr) == 0 {
		err = codec.Errorf(codec.MissingField, "tag name", "empty tag")
		return
	}
	ss := make([]string, len(arr))
	for i := range arr {
		if arr[i].Type != gjson.String {
			err = codec.Errorf(codec.Malformed, "tag",
				"element %d is not a string: %s", i, arr[i].Raw)
			return
		}
		ss[i] = arr[i].Str
	}
	return FromStrings(ss...)
}

// FromStrings builds a tag from its array of strings.
func FromStrings(ss ...string) (t T, err error) {
	if len(ss) == 0 {
		err = codec.Errorf(codec.MissingField, "tag name", "empty tag")
		return
	}
	switch ss[Key] {
	case NameE:
		e := &E{}
		if regular(ss, e.EventID[:]) {
			e.Relay, e.Rest = trailing(ss)
			return e, nil
		}
	case NameP:
		p := &P{}
		if regular(ss, p.PubKey[:]) {
			p.Relay, p.Rest = trailing(ss)
			return p, nil
		}
	}
	return NewOther(ss[Key], ss[Key+1:]...), nil
}

// regular reports whether an e or p tag carries a lowercase 32 byte hex
// value, which is decoded into dst. Elements after the value are not looked
// at.
func regular(ss []string, dst []byte) bool {
	if len(ss) < 2 || !hex.IsLower(ss[Value]) {
		return false
	}
	_, err := hex.DecFixed(dst, ss[Value])
	return err == nil
}

// trailing splits out the relay hint and keeps the elements after the value.
func trailing(ss []string) (relay string, rest []string) {
	if len(ss) <= Relay {
		return
	}
	return ss[Relay], append([]string(nil), ss[Relay:]...)
}
