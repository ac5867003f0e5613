package message

import (
	"github.com/Hubmakerlabs/cyan/pkg/nostr/codec"
	"github.com/Hubmakerlabs/cyan/pkg/nostr/labels"
	"github.com/Hubmakerlabs/cyan/pkg/nostr/wire/text"
	"github.com/mailru/easyjson/jwriter"
	"github.com/tidwall/gjson"
)

// Notice is a human readable message from a relay.
type Notice struct {
	Message string
}

func (*Notice) isMessage()      {}
func (*Notice) Label() labels.T { return labels.LNotice }

func (m *Notice) MarshalTo(w *jwriter.Writer) (err error) {
	writeLabel(w, labels.NOTICE)
	w.RawByte(',')
	text.String(w, m.Message)
	w.RawByte(']')
	return
}

func (m *Notice) MarshalJSON() ([]byte, error) { return Marshal(m) }

func (m *Notice) decode(arr []gjson.Result) (err error) {
	if err = arity(labels.NOTICE, arr, 1, 1); err != nil {
		return
	}
	m.Message, err = codec.String(arr[0], "message")
	return
}
