package message

import (
	"github.com/Hubmakerlabs/cyan/pkg/nostr/event"
	"github.com/Hubmakerlabs/cyan/pkg/nostr/labels"
	"github.com/Hubmakerlabs/cyan/pkg/nostr/subscriptionid"
	"github.com/mailru/easyjson/jwriter"
	"github.com/tidwall/gjson"
)

// Event carries an event. Sent by a client it publishes the event and has no
// subscription id; sent by a relay it answers the subscription named.
type Event struct {
	SubscriptionID subscriptionid.T
	Event          *event.T
}

func (*Event) isMessage()      {}
func (*Event) Label() labels.T { return labels.LEvent }

func (m *Event) MarshalTo(w *jwriter.Writer) (err error) {
	writeLabel(w, labels.EVENT)
	if m.SubscriptionID != "" {
		writeSubID(w, m.SubscriptionID)
	}
	w.RawByte(',')
	m.Event.MarshalTo(w)
	w.RawByte(']')
	return
}

func (m *Event) MarshalJSON() ([]byte, error) { return Marshal(m) }

func (m *Event) decode(arr []gjson.Result) (err error) {
	if err = arity(labels.EVENT, arr, 1, 2); err != nil {
		return
	}
	if len(arr) == 2 {
		if m.SubscriptionID, err = decodeSubID(arr[0]); err != nil {
			return
		}
		arr = arr[1:]
	}
	m.Event, err = event.FromResult(arr[0])
	return
}
