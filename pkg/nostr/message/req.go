package message

import (
	"github.com/Hubmakerlabs/cyan/pkg/nostr/filters"
	"github.com/Hubmakerlabs/cyan/pkg/nostr/labels"
	"github.com/Hubmakerlabs/cyan/pkg/nostr/subscriptionid"
	"github.com/mailru/easyjson/jwriter"
	"github.com/tidwall/gjson"
)

// Req opens a subscription. The filters follow the id as separate elements:
//
//	["REQ","<id>",{filter},{filter}]
//
// A single array of filters in place of the elements is also accepted when
// decoding.
type Req struct {
	SubscriptionID subscriptionid.T
	Filters        filters.T
}

func (*Req) isMessage()      {}
func (*Req) Label() labels.T { return labels.LReq }

func (m *Req) MarshalTo(w *jwriter.Writer) (err error) {
	// encode the filters first so nothing is written if one is unsupported
	f := &jwriter.Writer{}
	if err = m.Filters.MarshalElements(f); err != nil {
		return
	}
	var b []byte
	if b, err = f.BuildBytes(); err != nil {
		return
	}
	writeLabel(w, labels.REQ)
	writeSubID(w, m.SubscriptionID)
	w.Raw(b, nil)
	w.RawByte(']')
	return
}

func (m *Req) MarshalJSON() ([]byte, error) { return Marshal(m) }

func (m *Req) decode(arr []gjson.Result) (err error) {
	if err = arity(labels.REQ, arr, 1, len(arr)); err != nil {
		return
	}
	if m.SubscriptionID, err = decodeSubID(arr[0]); err != nil {
		return
	}
	rest := arr[1:]
	if len(rest) == 1 && rest[0].IsArray() {
		rest = rest[0].Array()
	}
	m.Filters, err = filters.FromResults(rest)
	return
}
