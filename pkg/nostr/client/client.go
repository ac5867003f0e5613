// Package client is a nostr client that talks to many relays at once. Every
// message sent goes to all the registered relays in the same order, and
// everything the relays send back arrives on one queue.
package client

import (
	"net/http"
	"os"

	"github.com/Hubmakerlabs/cyan/pkg/context"
	"github.com/Hubmakerlabs/cyan/pkg/nostr/bus"
	"github.com/Hubmakerlabs/cyan/pkg/nostr/event"
	"github.com/Hubmakerlabs/cyan/pkg/nostr/keys"
	"github.com/Hubmakerlabs/cyan/pkg/nostr/kind"
	"github.com/Hubmakerlabs/cyan/pkg/nostr/message"
	"github.com/Hubmakerlabs/cyan/pkg/nostr/normalize"
	"github.com/Hubmakerlabs/cyan/pkg/nostr/relay"
	"github.com/Hubmakerlabs/cyan/pkg/nostr/subscription"
	"github.com/Hubmakerlabs/cyan/pkg/nostr/subscriptionid"
	"github.com/Hubmakerlabs/cyan/pkg/nostr/tags"
	"github.com/Hubmakerlabs/cyan/pkg/nostr/timestamp"
	"github.com/Hubmakerlabs/cyan/pkg/slog"
	"github.com/puzpuzpuz/xsync/v2"
)

var log, chk = slog.New(os.Stderr)

// Option configures a client.
type Option interface {
	IsClientOption()
}

// WithCapacity sets the size of the outbound queue of each relay and of the
// inbound queue. The default is bus.DefaultCapacity.
type WithCapacity int

func (WithCapacity) IsClientOption() {}

// WithRequestHeader sets extra headers sent in the handshake with every
// relay.
type WithRequestHeader http.Header

func (WithRequestHeader) IsClientOption() {}

type T struct {
	keys   *keys.Pair
	bus    *bus.T
	header http.Header
	// relays is keyed by normalized URL.
	relays *xsync.MapOf[string, *relay.T]
	subs   *xsync.MapOf[string, *subscription.T]
}

// New creates a client with a freshly generated key pair.
func New(opts ...Option) (cl *T, err error) {
	var p *keys.Pair
	if p, err = keys.Generate(); chk.E(err) {
		return
	}
	return newClient(p, opts...), nil
}

// FromSecretKey creates a client signing with the 32 byte secret key b.
func FromSecretKey(b []byte, opts ...Option) (cl *T, err error) {
	var p *keys.Pair
	if p, err = keys.FromSecretBytes(b); chk.E(err) {
		return
	}
	return newClient(p, opts...), nil
}

func newClient(p *keys.Pair, opts ...Option) (cl *T) {
	capacity := bus.DefaultCapacity
	cl = &T{
		keys:   p,
		relays: xsync.NewMapOf[*relay.T](),
		subs:   xsync.NewMapOf[*subscription.T](),
	}
	for _, opt := range opts {
		switch o := opt.(type) {
		case WithCapacity:
			capacity = int(o)
		case WithRequestHeader:
			cl.header = http.Header(o)
		}
	}
	cl.bus = bus.New(capacity)
	return
}

// PubKey is the public key events are signed with.
func (cl *T) PubKey() keys.PubKey { return cl.keys.PubKey() }

// Keys is the client's key pair.
func (cl *T) Keys() *keys.Pair { return cl.keys }

// AddRelay registers the relay at url without connecting to it. Adding a URL
// that is already registered returns the existing relay.
func (cl *T) AddRelay(url string) (r *relay.T, err error) {
	u := normalize.URL(url)
	if u == "" {
		return nil, log.E.Err("%w: '%s'", relay.ErrInvalidURL, url)
	}
	r, _ = cl.relays.Compute(u, func(old *relay.T, loaded bool) (*relay.T,
		bool) {
		if loaded {
			return old, false
		}
		var nr *relay.T
		opts := []relay.Option{relay.WithDispatcher(cl.dispatch)}
		if cl.header != nil {
			opts = append(opts, relay.WithRequestHeader(cl.header))
		}
		if nr, err = relay.New(u, cl.bus, opts...); chk.E(err) {
			return nil, true
		}
		log.D.F("added relay %s", u)
		return nr, false
	})
	return
}

// RemoveRelay closes the relay at url and forgets it. It reports whether the
// relay was registered.
func (cl *T) RemoveRelay(url string) bool {
	r, ok := cl.relays.LoadAndDelete(normalize.URL(url))
	if ok {
		chk.D(r.Close())
	}
	return ok
}

// Relays returns the registered relays.
func (cl *T) Relays() (rr []*relay.T) {
	cl.relays.Range(func(_ string, r *relay.T) bool {
		rr = append(rr, r)
		return true
	})
	return
}

// ConnectRelays opens every registered relay that has not been opened yet,
// all at the same time. A relay failing to connect does not affect the
// others: each task reports its own result.
func (cl *T) ConnectRelays(c context.T) (tasks []*relay.Task) {
	cl.relays.Range(func(_ string, r *relay.T) bool {
		if r.State() == relay.Disconnected {
			tasks = append(tasks, relay.Start(c, r))
		}
		return true
	})
	return
}

// CreateEvent signs a new event with the client's key. It does not send it.
func (cl *T) CreateEvent(createdAt timestamp.T, k kind.T, t tags.T,
	content string) (*event.T, error) {

	return event.New(cl.keys, createdAt, k, t, content)
}

// SendMessage queues m on every registered relay. It fails with
// bus.ErrSendFailed, and no relay gets m, when there are no relays or any
// relay's queue is full.
func (cl *T) SendMessage(m message.T) (err error) {
	return cl.bus.Send(m)
}

// Publish sends ev to every relay.
func (cl *T) Publish(ev *event.T) (err error) {
	return cl.SendMessage(&message.Event{Event: ev})
}

// Receive waits for the next message from any relay. Once the client is
// closed and the queue drained it returns bus.ErrChannelClosed.
func (cl *T) Receive(c context.T) (in *bus.Inbound, err error) {
	return cl.bus.Receive(c)
}

// ReceiveMessage is Receive without the relay and subscription.
func (cl *T) ReceiveMessage(c context.T) (m message.T, err error) {
	var in *bus.Inbound
	if in, err = cl.bus.Receive(c); err != nil {
		return
	}
	return in.Message, nil
}

// Subscribe registers sub and sends its REQ to every relay.
func (cl *T) Subscribe(sub *subscription.T) (err error) {
	cl.subs.Store(sub.ID.String(), sub)
	if err = cl.SendMessage(sub.Req()); err != nil {
		cl.subs.Delete(sub.ID.String())
	}
	return
}

// Unsubscribe forgets the subscription and sends its CLOSE to every relay.
// Events for it that arrive afterwards are passed on without correlation.
func (cl *T) Unsubscribe(id subscriptionid.T) (err error) {
	sub, ok := cl.subs.LoadAndDelete(id.String())
	if !ok {
		sub = subscription.WithID(id)
	}
	return cl.SendMessage(sub.Close())
}

// Subscription returns the registered subscription with the given id.
func (cl *T) Subscription(id subscriptionid.T) (sub *subscription.T,
	ok bool) {

	return cl.subs.Load(id.String())
}

// Close closes every relay and the message queues. Messages already received
// can still be read with Receive.
func (cl *T) Close() {
	cl.relays.Range(func(_ string, r *relay.T) bool {
		chk.D(r.Close())
		return true
	})
	cl.bus.Close()
}

// dispatch attaches the registered subscription to messages that name one,
// records EOSE, and drops events the subscription's filters do not want.
func (cl *T) dispatch(c context.T, in *bus.Inbound) (err error) {
	var id subscriptionid.T
	switch m := in.Message.(type) {
	case *message.Event:
		id = m.SubscriptionID
	case *message.EOSE:
		id = m.SubscriptionID
	}
	if id != "" {
		if sub, ok := cl.subs.Load(id.String()); ok {
			in.Subscription = sub
			switch m := in.Message.(type) {
			case *message.Event:
				if !sub.Match(m.Event) {
					log.D.F("{%s} dropping event %s not matching subscription %s",
						in.Relay, m.Event.ID, id)
					return
				}
			case *message.EOSE:
				sub.MarkEOSE(in.Relay)
			}
		}
	}
	return cl.bus.Publish(c, in)
}
