// Package bus joins one client to many relays: an outbound broadcast that
// copies every message to each relay's queue, and an inbound queue that all
// relays feed and the client drains.
//
// Both directions are bounded. A broadcast is all or nothing: if any relay's
// queue is full the message goes to none of them and Send fails, so each
// relay sees the same messages in the same order.
package bus

import (
	"errors"
	"sync"

	"github.com/Hubmakerlabs/cyan/pkg/context"
	"github.com/Hubmakerlabs/cyan/pkg/nostr/message"
	"github.com/Hubmakerlabs/cyan/pkg/nostr/subscription"
	"github.com/Hubmakerlabs/cyan/pkg/slog"
)

var log = slog.GetStd()

// DefaultCapacity is the size of each queue when none is given.
const DefaultCapacity = 5000

var (
	ErrSendFailed    = errors.New("send failed")
	ErrChannelClosed = errors.New("channel closed")
)

// Inbound is a message received from a relay.
type Inbound struct {
	// Relay is the normalized URL of the relay the message came from.
	Relay   string
	Message message.T
	// Subscription is the registered subscription the message belongs to, if
	// any.
	Subscription *subscription.T
}

// T is a message bus. The zero value is not usable, use New.
type T struct {
	capacity int
	mx       sync.Mutex
	subs     map[*Outbound]struct{}
	in       chan *Inbound
	quit     chan struct{}
	once     sync.Once
}

// New creates a bus whose queues hold capacity messages each.
func New(capacity int) *T {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &T{
		capacity: capacity,
		subs:     make(map[*Outbound]struct{}),
		in:       make(chan *Inbound, capacity),
		quit:     make(chan struct{}),
	}
}

// Capacity is the size of each queue.
func (b *T) Capacity() int { return b.capacity }

// Outbound is one relay's view of the broadcast.
type Outbound struct {
	b  *T
	ch chan message.T
}

// C delivers the broadcast messages in order. It is closed by Unsubscribe
// or when the bus is closed.
func (o *Outbound) C() <-chan message.T { return o.ch }

// Subscribe adds a receiver to the broadcast. It sees only the messages sent
// after it subscribed.
func (b *T) Subscribe() (o *Outbound, err error) {
	b.mx.Lock()
	defer b.mx.Unlock()
	if b.closed() {
		return nil, ErrChannelClosed
	}
	o = &Outbound{b: b, ch: make(chan message.T, b.capacity)}
	b.subs[o] = struct{}{}
	return
}

// Unsubscribe removes o from the broadcast and closes its channel. Messages
// still queued on it can be read until the channel reports closed.
func (o *Outbound) Unsubscribe() {
	o.b.mx.Lock()
	defer o.b.mx.Unlock()
	if _, ok := o.b.subs[o]; ok {
		delete(o.b.subs, o)
		close(o.ch)
	}
}

// Subscribers is the number of receivers of the broadcast.
func (b *T) Subscribers() int {
	b.mx.Lock()
	defer b.mx.Unlock()
	return len(b.subs)
}

// Send broadcasts m to every subscriber. It never blocks. It fails with
// ErrSendFailed when there are no subscribers or any subscriber's queue is
// full, in which case no subscriber receives m.
func (b *T) Send(m message.T) (err error) {
	b.mx.Lock()
	defer b.mx.Unlock()
	if b.closed() {
		return ErrChannelClosed
	}
	if len(b.subs) == 0 {
		return log.D.Err("%w: no relays to send to", ErrSendFailed)
	}
	for o := range b.subs {
		if len(o.ch) == cap(o.ch) {
			return log.W.Err("%w: relay queue full (%d messages)",
				ErrSendFailed, cap(o.ch))
		}
	}
	// subscribers only ever drain their queues, so the space checked above
	// is still there
	for o := range b.subs {
		o.ch <- m
	}
	return
}

// Publish queues a message received from a relay, blocking while the inbound
// queue is full.
func (b *T) Publish(c context.T, in *Inbound) (err error) {
	select {
	case <-b.quit:
		return ErrChannelClosed
	default:
	}
	select {
	case b.in <- in:
	case <-b.quit:
		err = ErrChannelClosed
	case <-c.Done():
		err = c.Err()
	}
	return
}

// Receive returns the next inbound message, waiting for one to arrive. Once
// the bus is closed the messages already queued are still returned, then
// ErrChannelClosed.
func (b *T) Receive(c context.T) (in *Inbound, err error) {
	select {
	case in = <-b.in:
		return
	default:
	}
	select {
	case in = <-b.in:
	case <-b.quit:
		select {
		case in = <-b.in:
		default:
			err = ErrChannelClosed
		}
	case <-c.Done():
		err = c.Err()
	}
	return
}

// Close closes every outbound channel and stops inbound publishing. It is
// safe to call more than once.
func (b *T) Close() {
	b.once.Do(func() {
		b.mx.Lock()
		defer b.mx.Unlock()
		close(b.quit)
		for o := range b.subs {
			delete(b.subs, o)
			close(o.ch)
		}
	})
}

// Done is closed when the bus is closed.
func (b *T) Done() <-chan struct{} { return b.quit }

func (b *T) closed() bool {
	select {
	case <-b.quit:
		return true
	default:
		return false
	}
}
