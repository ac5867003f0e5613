package filter

import (
	"github.com/Hubmakerlabs/cyan/pkg/nostr/codec"
	"github.com/Hubmakerlabs/cyan/pkg/nostr/eventid"
	"github.com/Hubmakerlabs/cyan/pkg/nostr/keys"
	"github.com/Hubmakerlabs/cyan/pkg/nostr/kind"
	"github.com/Hubmakerlabs/cyan/pkg/nostr/tag"
	"github.com/Hubmakerlabs/cyan/pkg/nostr/timestamp"
	"github.com/mailru/easyjson/jwriter"
	"github.com/tidwall/gjson"
)

// Keys of the filter object, in the order they are written.
const (
	KeyIDs     = "ids"
	KeyAuthors = "authors"
	KeyKinds   = "kinds"
	KeyE       = "#e"
	KeyP       = "#p"
	KeySince   = "since"
	KeyUntil   = "until"
	KeyLimit   = "limit"
)

// MarshalTo writes the object form of f to w. Only present fields are
// written. A filter holding a tag that is not e or p is not written at all
// and ErrUnsupportedTag is returned.
func (f *T) MarshalTo(w *jwriter.Writer) (err error) {
	var es []eventid.T
	var ps []keys.PubKey
	for _, t := range f.Tags {
		switch tt := t.(type) {
		case *tag.E:
			es = append(es, tt.EventID)
		case *tag.P:
			ps = append(ps, tt.PubKey)
		default:
			return ErrUnsupportedTag
		}
	}
	first := true
	key := func(k string) {
		if !first {
			w.RawByte(',')
		}
		first = false
		w.RawByte('"')
		w.RawString(k)
		w.RawString(`":`)
	}
	w.RawByte('{')
	if f.IDs != nil {
		key(KeyIDs)
		writeHex(w, f.IDs)
	}
	if f.Authors != nil {
		key(KeyAuthors)
		writeHex(w, f.Authors)
	}
	if f.Kinds != nil {
		key(KeyKinds)
		w.RawByte('[')
		for i, k := range f.Kinds {
			if i > 0 {
				w.RawByte(',')
			}
			w.Int64(k.ToInt())
		}
		w.RawByte(']')
	}
	if es != nil {
		key(KeyE)
		writeHex(w, es)
	}
	if ps != nil {
		key(KeyP)
		writeHex(w, ps)
	}
	if f.Since != nil {
		key(KeySince)
		w.Int64(f.Since.I64())
	}
	if f.Until != nil {
		key(KeyUntil)
		w.Int64(f.Until.I64())
	}
	if f.Limit != nil {
		key(KeyLimit)
		w.Int(*f.Limit)
	}
	w.RawByte('}')
	return
}

// writeHex writes a list of ids or keys as an array of hex strings.
func writeHex[V interface{ String() string }](w *jwriter.Writer, vs []V) {
	w.RawByte('[')
	for i := range vs {
		if i > 0 {
			w.RawByte(',')
		}
		w.String(vs[i].String())
	}
	w.RawByte(']')
}

func (f *T) MarshalJSON() (b []byte, err error) {
	w := &jwriter.Writer{}
	if err = f.MarshalTo(w); err != nil {
		return
	}
	return w.BuildBytes()
}

func (f *T) String() string {
	b, err := f.MarshalJSON()
	if err != nil {
		return err.Error()
	}
	return string(b)
}

// Decode parses the object form of a filter.
func Decode(b []byte) (f *T, err error) {
	var r gjson.Result
	if r, err = codec.Parse(b); err != nil {
		return
	}
	return FromResult(r)
}

// FromResult decodes a filter from an already parsed gjson value. Keys other
// than the ones this package writes are rejected.
func FromResult(r gjson.Result) (f *T, err error) {
	if !r.IsObject() {
		err = codec.Errorf(codec.Malformed, "filter", "expected object, got %s",
			r.Type)
		return
	}
	ft := &T{}
	seen := make(map[string]bool)
	r.ForEach(func(k, v gjson.Result) bool {
		key := k.String()
		if seen[key] {
			err = codec.Errorf(codec.DuplicateField, key, "")
			return false
		}
		seen[key] = true
		switch key {
		case KeyIDs:
			ft.IDs, err = decodeList(v, key, eventid.Decode)
		case KeyAuthors:
			ft.Authors, err = decodeList(v, key, keys.DecodePubKey)
		case KeyKinds:
			ft.Kinds, err = decodeList(v, key,
				func(r gjson.Result, field string) (k kind.T, err error) {
					var n int64
					if n, err = codec.Int(r, field); err != nil {
						return
					}
					return kind.FromInt(n)
				})
		case KeyE:
			var ids []eventid.T
			if ids, err = decodeList(v, key, eventid.Decode); err != nil {
				return false
			}
			for _, id := range ids {
				ft.Tags = append(ft.Tags, &tag.E{EventID: id})
			}
		case KeyP:
			var pks []keys.PubKey
			if pks, err = decodeList(v, key, keys.DecodePubKey); err != nil {
				return false
			}
			for _, pk := range pks {
				ft.Tags = append(ft.Tags, &tag.P{PubKey: pk})
			}
		case KeySince, KeyUntil:
			var n int64
			if n, err = codec.Int(v, key); err != nil {
				return false
			}
			if key == KeySince {
				ft.Since = timestamp.FromUnix(n).Ptr()
			} else {
				ft.Until = timestamp.FromUnix(n).Ptr()
			}
		case KeyLimit:
			var n int64
			if n, err = codec.Int(v, key); err != nil {
				return false
			}
			l := int(n)
			ft.Limit = &l
		default:
			err = codec.Errorf(codec.Malformed, key, "unknown filter field")
		}
		return err == nil
	})
	if err != nil {
		return
	}
	f = ft
	return
}

func decodeList[V any](r gjson.Result, field string,
	fn func(gjson.Result, string) (V, error)) (vs []V, err error) {

	if !r.IsArray() {
		err = codec.Errorf(codec.Malformed, field, "expected array, got %s",
			r.Type)
		return
	}
	arr := r.Array()
	vs = make([]V, 0, len(arr))
	for _, el := range arr {
		var v V
		if v, err = fn(el, field); err != nil {
			return
		}
		vs = append(vs, v)
	}
	return
}
