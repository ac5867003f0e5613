// Package tags is the ordered list of tags carried by an event.
package tags

import (
	"github.com/Hubmakerlabs/cyan/pkg/nostr/codec"
	"github.com/Hubmakerlabs/cyan/pkg/nostr/eventid"
	"github.com/Hubmakerlabs/cyan/pkg/nostr/keys"
	"github.com/Hubmakerlabs/cyan/pkg/nostr/tag"
	"github.com/tidwall/gjson"
)

// T is a list of tags. The order is significant, it is part of the hashed
// form of the event.
type T []tag.T

// MarshalTo appends the JSON array of the tags to dst. A nil or empty list
// is written as [].
func (t T) MarshalTo(dst []byte) []byte {
	dst = append(dst, '[')
	for i, tg := range t {
		if i > 0 {
			dst = append(dst, ',')
		}
		dst = tg.MarshalTo(dst)
	}
	return append(dst, ']')
}

func (t T) MarshalJSON() ([]byte, error) { return t.MarshalTo(nil), nil }

// Decode reads a tag list from a gjson array value.
func Decode(r gjson.Result) (t T, err error) {
	if !r.IsArray() {
		err = codec.Errorf(codec.Malformed, "tags", "expected array, got %s",
			r.Type)
		return
	}
	arr := r.Array()
	t = make(T, 0, len(arr))
	for _, el := range arr {
		var tg tag.T
		if tg, err = tag.Decode(el); err != nil {
			return
		}
		t = append(t, tg)
	}
	return
}

// GetAll returns every tag with the given name.
func (t T) GetAll(name string) (found T) {
	for _, tg := range t {
		if tg.Name() == name {
			found = append(found, tg)
		}
	}
	return
}

// EventIDs returns the ids referenced by e tags, in order.
func (t T) EventIDs() (ids []eventid.T) {
	for _, tg := range t {
		if e, ok := tg.(*tag.E); ok {
			ids = append(ids, e.EventID)
		}
	}
	return
}

// PubKeys returns the keys referenced by p tags, in order.
func (t T) PubKeys() (pks []keys.PubKey) {
	for _, tg := range t {
		if p, ok := tg.(*tag.P); ok {
			pks = append(pks, p.PubKey)
		}
	}
	return
}

// Strings returns the tags as arrays of strings.
func (t T) Strings() (ss [][]string) {
	ss = make([][]string, len(t))
	for i := range t {
		ss[i] = t[i].Strings()
	}
	return
}
