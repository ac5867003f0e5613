package message

import (
	"github.com/Hubmakerlabs/cyan/pkg/hex"
	"github.com/Hubmakerlabs/cyan/pkg/nostr/codec"
	"github.com/Hubmakerlabs/cyan/pkg/nostr/eventid"
	"github.com/Hubmakerlabs/cyan/pkg/nostr/labels"
	"github.com/Hubmakerlabs/cyan/pkg/nostr/wire/text"
	"github.com/mailru/easyjson/jwriter"
	"github.com/tidwall/gjson"
)

// OK is a relay's answer to a published event.
type OK struct {
	EventID eventid.T
	Status  bool
	// Message is empty on success, otherwise usually a machine readable
	// prefix, a colon and a human readable reason.
	Message string
}

func (*OK) isMessage()      {}
func (*OK) Label() labels.T { return labels.LOK }

func (m *OK) MarshalTo(w *jwriter.Writer) (err error) {
	writeLabel(w, labels.OK)
	w.RawString(`,"`)
	w.Raw(hex.AppendEnc(nil, m.EventID[:]), nil)
	w.RawString(`",`)
	w.Bool(m.Status)
	w.RawByte(',')
	text.String(w, m.Message)
	w.RawByte(']')
	return
}

func (m *OK) MarshalJSON() ([]byte, error) { return Marshal(m) }

func (m *OK) decode(arr []gjson.Result) (err error) {
	if err = arity(labels.OK, arr, 3, 3); err != nil {
		return
	}
	if m.EventID, err = eventid.Decode(arr[0], "event id"); err != nil {
		return
	}
	if m.Status, err = codec.Bool(arr[1], "status"); err != nil {
		return
	}
	m.Message, err = codec.String(arr[2], "message")
	return
}
