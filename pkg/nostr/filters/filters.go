// Package filters is the list of filters carried by a subscription. An event
// is wanted by the list if any one of the filters matches it.
package filters

import (
	"github.com/Hubmakerlabs/cyan/pkg/nostr/codec"
	"github.com/Hubmakerlabs/cyan/pkg/nostr/event"
	"github.com/Hubmakerlabs/cyan/pkg/nostr/filter"
	"github.com/mailru/easyjson/jwriter"
	"github.com/tidwall/gjson"
)

type T []*filter.T

// MarshalElements writes each filter to w preceded by a comma, the way they
// follow the subscription id in a REQ.
func (eff T) MarshalElements(w *jwriter.Writer) (err error) {
	for _, f := range eff {
		w.RawByte(',')
		if err = f.MarshalTo(w); err != nil {
			return
		}
	}
	return
}

// MarshalJSON writes the filters as a JSON array.
func (eff T) MarshalJSON() (b []byte, err error) {
	w := &jwriter.Writer{}
	w.RawByte('[')
	for i, f := range eff {
		if i > 0 {
			w.RawByte(',')
		}
		if err = f.MarshalTo(w); err != nil {
			return
		}
	}
	w.RawByte(']')
	return w.BuildBytes()
}

// FromResults decodes every element of rs as a filter.
func FromResults(rs []gjson.Result) (eff T, err error) {
	eff = make(T, 0, len(rs))
	for _, r := range rs {
		var f *filter.T
		if f, err = filter.FromResult(r); err != nil {
			return
		}
		eff = append(eff, f)
	}
	return
}

// Decode parses a JSON array of filters.
func Decode(b []byte) (eff T, err error) {
	var r gjson.Result
	if r, err = codec.Parse(b); err != nil {
		return
	}
	if !r.IsArray() {
		err = codec.Errorf(codec.Malformed, "filters", "expected array, got %s",
			r.Type)
		return
	}
	return FromResults(r.Array())
}

// Match reports whether any of the filters matches ev.
func (eff T) Match(ev *event.T) bool {
	for _, f := range eff {
		if f.Matches(ev) {
			return true
		}
	}
	return false
}

// Clone returns a deep copy of the list.
func (eff T) Clone() (c T) {
	if eff == nil {
		return
	}
	c = make(T, len(eff))
	for i := range eff {
		c[i] = eff[i].Clone()
	}
	return
}
