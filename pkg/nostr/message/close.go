package message

import (
	"github.com/Hubmakerlabs/cyan/pkg/nostr/labels"
	"github.com/Hubmakerlabs/cyan/pkg/nostr/subscriptionid"
	"github.com/mailru/easyjson/jwriter"
	"github.com/tidwall/gjson"
)

// Close ends a subscription.
type Close struct {
	SubscriptionID subscriptionid.T
}

func (*Close) isMessage()      {}
func (*Close) Label() labels.T { return labels.LClose }

func (m *Close) MarshalTo(w *jwriter.Writer) (err error) {
	writeLabel(w, labels.CLOSE)
	writeSubID(w, m.SubscriptionID)
	w.RawByte(']')
	return
}

func (m *Close) MarshalJSON() ([]byte, error) { return Marshal(m) }

func (m *Close) decode(arr []gjson.Result) (err error) {
	if err = arity(labels.CLOSE, arr, 1, 1); err != nil {
		return
	}
	m.SubscriptionID, err = decodeSubID(arr[0])
	return
}
