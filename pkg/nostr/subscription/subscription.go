// Package subscription is a named set of filters held open on relays.
package subscription

import (
	"github.com/Hubmakerlabs/cyan/pkg/nostr/event"
	"github.com/Hubmakerlabs/cyan/pkg/nostr/filter"
	"github.com/Hubmakerlabs/cyan/pkg/nostr/filters"
	"github.com/Hubmakerlabs/cyan/pkg/nostr/message"
	"github.com/Hubmakerlabs/cyan/pkg/nostr/subscriptionid"
	"github.com/puzpuzpuz/xsync/v2"
)

// T is a subscription. ID and Filters do not change once it is created.
type T struct {
	ID      subscriptionid.T
	Filters filters.T
	// eose records the relays that have sent EOSE for this subscription.
	eose *xsync.MapOf[string, struct{}]
}

// New creates a subscription with a fresh random id.
func New(f ...*filter.T) *T {
	return WithID(subscriptionid.New(), f...)
}

// WithID creates a subscription with a caller chosen id.
func WithID(id subscriptionid.T, f ...*filter.T) *T {
	return &T{
		ID:      id,
		Filters: filters.T(f).Clone(),
		eose:    xsync.NewMapOf[struct{}](),
	}
}

// Req is the message that opens the subscription on a relay.
func (s *T) Req() *message.Req {
	return &message.Req{SubscriptionID: s.ID, Filters: s.Filters}
}

// Close is the message that ends the subscription on a relay.
func (s *T) Close() *message.Close {
	return &message.Close{SubscriptionID: s.ID}
}

// Match reports whether ev is wanted by any of the filters.
func (s *T) Match(ev *event.T) bool { return s.Filters.Match(ev) }

// MarkEOSE records that relay has finished sending stored events. It returns
// false if it was already recorded.
func (s *T) MarkEOSE(relay string) bool {
	_, loaded := s.eose.LoadOrStore(relay, struct{}{})
	return !loaded
}

// EOSE reports whether relay has sent EOSE.
func (s *T) EOSE(relay string) bool {
	_, ok := s.eose.Load(relay)
	return ok
}

// EOSECount is the number of relays that have sent EOSE.
func (s *T) EOSECount() int { return s.eose.Size() }
