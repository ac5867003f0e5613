package event

import (
	"strconv"

	"github.com/Hubmakerlabs/cyan/pkg/hex"
	"github.com/Hubmakerlabs/cyan/pkg/nostr/codec"
	"github.com/Hubmakerlabs/cyan/pkg/nostr/eventid"
	"github.com/Hubmakerlabs/cyan/pkg/nostr/keys"
	"github.com/Hubmakerlabs/cyan/pkg/nostr/kind"
	"github.com/Hubmakerlabs/cyan/pkg/nostr/tags"
	"github.com/Hubmakerlabs/cyan/pkg/nostr/timestamp"
	"github.com/Hubmakerlabs/cyan/pkg/nostr/wire/text"
	"github.com/mailru/easyjson/jwriter"
	"github.com/tidwall/gjson"
)

// The keys of the event object, in the order they are written.
const (
	KeyID        = "id"
	KeyPubKey    = "pubkey"
	KeyCreatedAt = "created_at"
	KeyKind      = "kind"
	KeyTags      = "tags"
	KeyContent   = "content"
	KeySig       = "sig"
)

var fieldOrder = []string{KeyID, KeyPubKey, KeyCreatedAt, KeyKind, KeyTags,
	KeyContent, KeySig}

// MarshalTo writes the wire object form of ev to w.
func (ev *T) MarshalTo(w *jwriter.Writer) {
	var b [keys.SignatureLen * 2]byte
	w.RawString(`{"id":"`)
	w.Raw(hex.AppendEnc(b[:0], ev.ID[:]), nil)
	w.RawString(`","pubkey":"`)
	w.Raw(hex.AppendEnc(b[:0], ev.PubKey[:]), nil)
	w.RawString(`","created_at":`)
	w.Int64(ev.CreatedAt.I64())
	w.RawString(`,"kind":`)
	w.Raw(strconv.AppendInt(b[:0], ev.Kind.ToInt(), 10), nil)
	w.RawString(`,"tags":`)
	w.Raw(ev.Tags.MarshalTo(nil), nil)
	w.RawString(`,"content":`)
	text.String(w, ev.Content)
	w.RawString(`,"sig":"`)
	w.Raw(hex.AppendEnc(b[:0], ev.Sig[:]), nil)
	w.RawString(`"}`)
}

// MarshalJSON returns the wire object form of ev.
func (ev *T) MarshalJSON() ([]byte, error) {
	w := &jwriter.Writer{}
	ev.MarshalTo(w)
	return w.BuildBytes()
}

// Serialize is MarshalJSON for callers that have no use for the error.
func (ev *T) Serialize() (b []byte) {
	b, _ = ev.MarshalJSON()
	return
}

func (ev *T) String() string { return string(ev.Serialize()) }

// Decode parses the wire object form of an event.
//
// Every one of the seven fields must be present exactly once, and no other
// key is allowed. Decode does not verify the id or signature.
func Decode(b []byte) (ev *T, err error) {
	var r gjson.Result
	if r, err = codec.Parse(b); err != nil {
		return
	}
	return FromResult(r)
}

// FromResult decodes an event from an already parsed gjson value.
func FromResult(r gjson.Result) (ev *T, err error) {
	if !r.IsObject() {
		err = codec.Errorf(codec.Malformed, "event", "expected object, got %s",
			r.Type)
		return
	}
	fields := make(map[string]gjson.Result, len(fieldOrder))
	r.ForEach(func(k, v gjson.Result) bool {
		key := k.String()
		switch key {
		case KeyID, KeyPubKey, KeyCreatedAt, KeyKind, KeyTags, KeyContent,
			KeySig:
		default:
			err = codec.Errorf(codec.Malformed, key, "unknown event field")
			return false
		}
		if _, ok := fields[key]; ok {
			err = codec.Errorf(codec.DuplicateField, key, "")
			return false
		}
		fields[key] = v
		return true
	})
	if err != nil {
		return
	}
	for _, key := range fieldOrder {
		if _, ok := fields[key]; !ok {
			err = codec.Errorf(codec.MissingField, key, "")
			return
		}
	}
	e := &T{}
	if e.ID, err = eventid.Decode(fields[KeyID], KeyID); err != nil {
		return
	}
	if e.PubKey, err = keys.DecodePubKey(fields[KeyPubKey],
		KeyPubKey); err != nil {
		return
	}
	var n int64
	if n, err = codec.Int(fields[KeyCreatedAt], KeyCreatedAt); err != nil {
		return
	}
	e.CreatedAt = timestamp.FromUnix(n)
	if n, err = codec.Int(fields[KeyKind], KeyKind); err != nil {
		return
	}
	if e.Kind, err = kind.FromInt(n); err != nil {
		return
	}
	if e.Tags, err = tags.Decode(fields[KeyTags]); err != nil {
		return
	}
	if e.Content, err = codec.String(fields[KeyContent],
		KeyContent); err != nil {
		return
	}
	if err = codec.Hex(e.Sig[:], fields[KeySig], KeySig); err != nil {
		return
	}
	ev = e
	return
}
