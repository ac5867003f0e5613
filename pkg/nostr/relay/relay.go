// Package relay is one client connection to a relay: a writer that drains
// the client's outbound broadcast onto the socket and a reader that feeds the
// client's inbound queue.
package relay

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Hubmakerlabs/cyan/pkg/context"
	"github.com/Hubmakerlabs/cyan/pkg/nostr/bus"
	"github.com/Hubmakerlabs/cyan/pkg/nostr/connection"
	"github.com/Hubmakerlabs/cyan/pkg/nostr/message"
	"github.com/Hubmakerlabs/cyan/pkg/nostr/normalize"
	"github.com/Hubmakerlabs/cyan/pkg/slog"
	"github.com/gobwas/ws"
	"github.com/gobwas/ws/wsutil"
)

var log, chk = slog.New(os.Stderr)

const (
	// DialTimeout bounds Open when its context has no deadline.
	DialTimeout = 7 * time.Second
	// PingInterval is how often a ping is sent on an open connection.
	PingInterval = 29 * time.Second
)

var (
	ErrConnectionFailed = errors.New("connection failed")
	ErrInvalidURL       = errors.New("invalid relay URL")
)

// State is the lifecycle stage of a relay. Closed and Failed are final.
type State int32

const (
	Disconnected State = iota
	Connecting
	Open
	Closed
	Failed
)

var stateNames = map[State]string{
	Disconnected: "disconnected",
	Connecting:   "connecting",
	Open:         "open",
	Closed:       "closed",
	Failed:       "failed",
}

func (s State) String() string { return stateNames[s] }

// Dispatcher receives every message decoded from the relay. Returning
// bus.ErrChannelClosed stops the reader.
type Dispatcher func(c context.T, in *bus.Inbound) error

// Option configures a relay.
type Option interface {
	IsRelayOption()
}

// WithRequestHeader sets extra headers sent with the websocket handshake.
type WithRequestHeader http.Header

func (WithRequestHeader) IsRelayOption() {}

// WithDispatcher replaces the default dispatch, which publishes to the bus
// unchanged.
type WithDispatcher Dispatcher

func (WithDispatcher) IsRelayOption() {}

type T struct {
	url           string
	RequestHeader http.Header
	bus           *bus.T
	out           *bus.Outbound
	dispatch      Dispatcher

	mx    sync.Mutex
	state atomic.Int32
	conn  *connection.C
	err   error

	// ctx lives as long as the connection, cancelled by finish.
	ctx    context.T
	cancel context.F
	done   chan struct{}
	once   sync.Once
}

// New creates a relay for url in the Disconnected state. It joins the
// outbound broadcast of b straight away, so messages sent before Open are
// queued and written once the connection is up.
func New(url string, b *bus.T, opts ...Option) (r *T, err error) {
	u := normalize.URL(url)
	if u == "" {
		return nil, fmt.Errorf("%w: '%s'", ErrInvalidURL, url)
	}
	var out *bus.Outbound
	if out, err = b.Subscribe(); chk.E(err) {
		return
	}
	r = &T{
		url:  u,
		bus:  b,
		out:  out,
		done: make(chan struct{}),
	}
	r.dispatch = b.Publish
	r.ctx, r.cancel = context.Cancel(context.Bg())
	for _, opt := range opts {
		switch o := opt.(type) {
		case WithRequestHeader:
			r.RequestHeader = http.Header(o)
		case WithDispatcher:
			r.dispatch = Dispatcher(o)
		}
	}
	return
}

// URL is the normalized relay URL.
func (r *T) URL() string { return r.url }

// String just returns the relay URL.
func (r *T) String() string { return r.url }

func (r *T) State() State { return State(r.state.Load()) }

// Done is closed when the relay reaches Closed or Failed.
func (r *T) Done() <-chan struct{} { return r.done }

// Err is the reason the relay failed, nil unless the state is Failed.
func (r *T) Err() error {
	r.mx.Lock()
	defer r.mx.Unlock()
	return r.err
}

// Open dials the relay and starts the writer and reader. It may be called
// once, on a Disconnected relay. A failure to connect leaves the relay
// Failed and returns an error wrapping ErrConnectionFailed.
func (r *T) Open(c context.T) (err error) {
	r.mx.Lock()
	if st := r.State(); st != Disconnected {
		r.mx.Unlock()
		return fmt.Errorf("%w: %s is %s", ErrConnectionFailed, r.url, st)
	}
	r.state.Store(int32(Connecting))
	r.mx.Unlock()
	if _, ok := c.Deadline(); !ok {
		var cancel context.F
		c, cancel = context.Timeout(c, DialTimeout)
		defer cancel()
	}
	log.D.F("connecting to %s", r.url)
	var conn *connection.C
	if conn, err = connection.New(c, r.url, r.RequestHeader); err != nil {
		err = fmt.Errorf("%w: %s: %v", ErrConnectionFailed, r.url, err)
		log.E.Ln(err)
		r.finish(Failed, err)
		return
	}
	r.mx.Lock()
	if r.State() != Connecting {
		// closed while dialling
		r.mx.Unlock()
		chk.D(conn.Close())
		return fmt.Errorf("%w: %s closed while connecting", ErrConnectionFailed,
			r.url)
	}
	r.conn = conn
	r.state.Store(int32(Open))
	r.mx.Unlock()
	log.I.F("connected to %s", r.url)
	go r.writeLoop(conn)
	go r.readLoop(conn)
	return
}

// Close sends a close frame if the connection is open and stops the relay.
// It is safe to call more than once and from any state.
func (r *T) Close() (err error) {
	r.mx.Lock()
	conn := r.conn
	open := r.State() == Open
	r.mx.Unlock()
	if open {
		err = conn.WriteClose()
		chk.D(err)
	}
	r.finish(Closed, nil)
	return
}

// finish moves the relay to its final state. Only the first call has any
// effect.
func (r *T) finish(st State, err error) {
	r.once.Do(func() {
		r.mx.Lock()
		r.state.Store(int32(st))
		r.err = err
		conn := r.conn
		r.mx.Unlock()
		r.cancel()
		if conn != nil {
			chk.D(conn.Close())
		}
		r.out.Unsubscribe()
		close(r.done)
		if err != nil {
			log.D.F("%s %s: %v", r.url, st, err)
		} else {
			log.D.F("%s %s", r.url, st)
		}
	})
}

// writeLoop writes the outbound broadcast in order and pings the relay.
func (r *T) writeLoop(conn *connection.C) {
	ticker := time.NewTicker(PingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-r.ctx.Done():
			return
		case <-ticker.C:
			if err := conn.Ping(); err != nil {
				r.finish(Failed, log.D.Err("%s: error writing ping: %w",
					r.url, err))
				return
			}
		case m, ok := <-r.out.C():
			if !ok {
				// the bus was closed
				chk.D(r.Close())
				return
			}
			b, err := message.Marshal(m)
			if chk.E(err) {
				continue
			}
			log.T.F("{%s} sending %s", r.url, b)
			if err = conn.WriteMessage(b); err != nil {
				r.finish(Failed, log.D.Err("%s: %w", r.url, err))
				return
			}
		}
	}
}

// readLoop decodes every frame and dispatches it. Frames that do not decode
// are logged and skipped.
func (r *T) readLoop(conn *connection.C) {
	buf := new(bytes.Buffer)
	for {
		buf.Reset()
		if err := conn.ReadMessage(r.ctx, buf); err != nil {
			var ce wsutil.ClosedError
			switch {
			case r.ctx.Err() != nil:
			case errors.As(err, &ce) && ce.Code == ws.StatusNormalClosure:
				log.D.F("{%s} closed by relay: %s", r.url, ce.Reason)
				r.finish(Closed, nil)
			default:
				r.finish(Failed, err)
			}
			return
		}
		log.T.F("{%s} received %s", r.url, buf.Bytes())
		m, err := message.Decode(buf.Bytes())
		if err != nil {
			log.D.F("{%s} skipping frame: %v: %s", r.url, err, buf.Bytes())
			continue
		}
		if err = r.dispatch(r.ctx, &bus.Inbound{Relay: r.url,
			Message: m}); err != nil {
			if errors.Is(err, bus.ErrChannelClosed) {
				chk.D(r.Close())
			}
			return
		}
	}
}
