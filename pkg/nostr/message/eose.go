package message

import (
	"github.com/Hubmakerlabs/cyan/pkg/nostr/labels"
	"github.com/Hubmakerlabs/cyan/pkg/nostr/subscriptionid"
	"github.com/mailru/easyjson/jwriter"
	"github.com/tidwall/gjson"
)

// EOSE indicates that all stored events matching a subscription have been
// sent, and what follows are new events as they arrive.
type EOSE struct {
	SubscriptionID subscriptionid.T
}

func (*EOSE) isMessage()      {}
func (*EOSE) Label() labels.T { return labels.LEOSE }

func (m *EOSE) MarshalTo(w *jwriter.Writer) (err error) {
	writeLabel(w, labels.EOSE)
	writeSubID(w, m.SubscriptionID)
	w.RawByte(']')
	return
}

func (m *EOSE) MarshalJSON() ([]byte, error) { return Marshal(m) }

func (m *EOSE) decode(arr []gjson.Result) (err error) {
	if err = arity(labels.EOSE, arr, 1, 1); err != nil {
		return
	}
	m.SubscriptionID, err = decodeSubID(arr[0])
	return
}
