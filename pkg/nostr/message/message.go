// Package message is the closed set of frames exchanged with a relay. Each
// is a JSON array led by its label.
//
// Decoding is strict: an unknown label, a missing or extra element, or an
// element of the wrong type is an error. Compare package tag, which is
// lenient about what it does not recognise.
package message

import (
	"os"

	"github.com/Hubmakerlabs/cyan/pkg/nostr/codec"
	"github.com/Hubmakerlabs/cyan/pkg/nostr/labels"
	"github.com/Hubmakerlabs/cyan/pkg/nostr/subscriptionid"
	"github.com/Hubmakerlabs/cyan/pkg/nostr/wire/text"
	"github.com/Hubmakerlabs/cyan/pkg/slog"
	"github.com/mailru/easyjson/jwriter"
	"github.com/tidwall/gjson"
)

var log, chk = slog.New(os.Stderr)

// T is one of *Event, *Req, *Close, *OK, *EOSE or *Notice.
type T interface {
	Label() labels.T
	// MarshalTo writes the array form of the message to w.
	MarshalTo(w *jwriter.Writer) error
	MarshalJSON() ([]byte, error)
	isMessage()
}

// Marshal returns the array form of m.
func Marshal(m T) (b []byte, err error) {
	w := &jwriter.Writer{}
	if err = m.MarshalTo(w); err != nil {
		return
	}
	return w.BuildBytes()
}

// Decode parses one frame into its message type.
func Decode(b []byte) (m T, err error) {
	var r gjson.Result
	if r, err = codec.Parse(b); err != nil {
		return
	}
	if !r.IsArray() {
		err = codec.Errorf(codec.Malformed, "message", "expected array, got %s",
			r.Type)
		return
	}
	arr := r.Array()
	var label string
	if len(arr) == 0 {
		err = codec.Errorf(codec.MissingField, "label", "empty message")
		return
	}
	if label, err = codec.String(arr[0], "label"); err != nil {
		return
	}
	var d interface {
		T
		decode(arr []gjson.Result) error
	}
	switch labels.GetLabel(label) {
	case labels.LEvent:
		d = &Event{}
	case labels.LReq:
		d = &Req{}
	case labels.LClose:
		d = &Close{}
	case labels.LOK:
		d = &OK{}
	case labels.LEOSE:
		d = &EOSE{}
	case labels.LNotice:
		d = &Notice{}
	default:
		err = codec.Errorf(codec.UnknownVariant, "label",
			"no message matching %q", label)
		return
	}
	if err = d.decode(arr[1:]); err != nil {
		log.T.F("decoding %s: %v", label, err)
		return
	}
	m = d
	return
}

// arity checks the number of elements after the label.
func arity(label string, arr []gjson.Result, min, max int) (err error) {
	switch {
	case len(arr) < min:
		err = codec.Errorf(codec.MissingField, label,
			"expected %d elements, got %d", min, len(arr))
	case len(arr) > max:
		err = codec.Errorf(codec.Malformed, label,
			"expected at most %d elements, got %d", max, len(arr))
	}
	return
}

func decodeSubID(r gjson.Result) (si subscriptionid.T, err error) {
	var s string
	if s, err = codec.String(r, "subscription id"); err != nil {
		return
	}
	return subscriptionid.FromString(s)
}

func writeLabel(w *jwriter.Writer, l string) {
	w.RawString(`["`)
	w.RawString(l)
	w.RawByte('"')
}

func writeSubID(w *jwriter.Writer, si subscriptionid.T) {
	w.RawByte(',')
	text.String(w, si.String())
}
