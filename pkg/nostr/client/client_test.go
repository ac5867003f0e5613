package client

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Hubmakerlabs/cyan/pkg/context"
	"github.com/Hubmakerlabs/cyan/pkg/hex"
	"github.com/Hubmakerlabs/cyan/pkg/nostr/bus"
	"github.com/Hubmakerlabs/cyan/pkg/nostr/event"
	"github.com/Hubmakerlabs/cyan/pkg/nostr/filter"
	"github.com/Hubmakerlabs/cyan/pkg/nostr/keys"
	"github.com/Hubmakerlabs/cyan/pkg/nostr/kind"
	"github.com/Hubmakerlabs/cyan/pkg/nostr/message"
	"github.com/Hubmakerlabs/cyan/pkg/nostr/normalize"
	"github.com/Hubmakerlabs/cyan/pkg/nostr/relay"
	"github.com/Hubmakerlabs/cyan/pkg/nostr/subscription"
	"github.com/Hubmakerlabs/cyan/pkg/nostr/tag"
	"github.com/Hubmakerlabs/cyan/pkg/nostr/tags"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/websocket"
)

const (
	vectorSecHex = "720f8a88fe12e0b6f635b7f6e085bf55175334a78b70f3a781478b428e347483"
	vectorID     = "6af93de56bf823a19fb2c996e43f74186b09389ae3f663fa1ac96959060ca671"
)

func newWebsocketServer(handler func(*websocket.Conn)) *httptest.Server {
	return httptest.NewServer(&websocket.Server{
		Handshake: anyOriginHandshake,
		Handler:   handler,
	})
}

// anyOriginHandshake is an alternative to default in golang.org/x/net/websocket
// which checks for origin. nostr client sends no origin and it makes no difference
// for the tests here anyway.
var anyOriginHandshake = func(conf *websocket.Config, r *http.Request) error {
	return nil
}

// recordingRelay passes every frame it receives to frames and answers a REQ
// with the given replies, with the subscription id filled in.
func recordingRelay(t *testing.T, frames chan<- message.T,
	replies ...message.T) func(*websocket.Conn) {

	return func(conn *websocket.Conn) {
		for {
			var frame string
			if err := websocket.Message.Receive(conn, &frame); err != nil {
				return
			}
			m, err := message.Decode([]byte(frame))
			if err != nil {
				t.Errorf("relay got bad frame %s: %v", frame, err)
				return
			}
			frames <- m
			req, ok := m.(*message.Req)
			if !ok {
				continue
			}
			for _, r := range replies {
				switch rm := r.(type) {
				case *message.Event:
					rm.SubscriptionID = req.SubscriptionID
				case *message.EOSE:
					rm.SubscriptionID = req.SubscriptionID
				}
				b, err := message.Marshal(r)
				if err != nil {
					t.Errorf("relay reply: %v", err)
					return
				}
				if err = websocket.Message.Send(conn, string(b)); err != nil {
					return
				}
			}
		}
	}
}

func timeout(t *testing.T) context.T {
	c, cancel := context.Timeout(context.Bg(), 5*time.Second)
	t.Cleanup(cancel)
	return c
}

func next(t *testing.T, frames <-chan message.T) message.T {
	t.Helper()
	select {
	case m := <-frames:
		return m
	case <-time.After(5 * time.Second):
		t.Fatal("relay received nothing")
	}
	return nil
}

func TestCreateEventVector(t *testing.T) {
	sec, err := hex.Dec(vectorSecHex)
	require.NoError(t, err)
	cl, err := FromSecretKey(sec)
	require.NoError(t, err)
	defer cl.Close()
	ev, err := cl.CreateEvent(1692452942, kind.TextNote, nil, "this is a test")
	require.NoError(t, err)
	require.Equal(t, vectorID, ev.ID.String())
	require.Equal(t, cl.PubKey(), ev.PubKey)
	require.NoError(t, ev.Verify())
}

func TestFromSecretKeyInvalid(t *testing.T) {
	_, err := FromSecretKey(make([]byte, 31))
	require.ErrorIs(t, err, keys.ErrInvalidKey)
	_, err = FromSecretKey(make([]byte, 32))
	require.ErrorIs(t, err, keys.ErrInvalidKey)
}

func TestRegistry(t *testing.T) {
	cl, err := New()
	require.NoError(t, err)
	defer cl.Close()
	a, err := cl.AddRelay("relay.example.com")
	require.NoError(t, err)
	b, err := cl.AddRelay("wss://relay.example.com/")
	require.NoError(t, err)
	require.Same(t, a, b)
	require.Equal(t, "wss://relay.example.com", a.URL())
	require.Len(t, cl.Relays(), 1)

	_, err = cl.AddRelay("wss://")
	require.ErrorIs(t, err, relay.ErrInvalidURL)
	require.Len(t, cl.Relays(), 1)

	require.True(t, cl.RemoveRelay("relay.example.com"))
	require.False(t, cl.RemoveRelay("relay.example.com"))
	require.Empty(t, cl.Relays())
	require.Equal(t, relay.Closed, a.State())
}

func TestSendFailed(t *testing.T) {
	cl, err := New(WithCapacity(1))
	require.NoError(t, err)
	defer cl.Close()
	ev, err := cl.CreateEvent(1, kind.TextNote, nil, "x")
	require.NoError(t, err)
	require.ErrorIs(t, cl.Publish(ev), bus.ErrSendFailed)

	// not connected, so the single slot stays taken
	_, err = cl.AddRelay("relay.example.com")
	require.NoError(t, err)
	require.NoError(t, cl.Publish(ev))
	require.ErrorIs(t, cl.Publish(ev), bus.ErrSendFailed)
}

func TestFanOut(t *testing.T) {
	framesA := make(chan message.T, 16)
	framesB := make(chan message.T, 16)
	a := newWebsocketServer(recordingRelay(t, framesA))
	defer a.Close()
	b := newWebsocketServer(recordingRelay(t, framesB))
	defer b.Close()
	dead := newWebsocketServer(recordingRelay(t, nil))
	deadURL := dead.URL
	dead.Close()

	cl, err := New()
	require.NoError(t, err)
	defer cl.Close()
	for _, u := range []string{a.URL, b.URL, deadURL} {
		_, err = cl.AddRelay(u)
		require.NoError(t, err)
	}
	tasks := cl.ConnectRelays(timeout(t))
	require.Len(t, tasks, 3)
	opened, errs := relay.WaitAll(tasks)
	require.Len(t, opened, 2)
	require.Len(t, errs, 1)
	require.ErrorIs(t, errs[0], relay.ErrConnectionFailed)
	// nothing left to connect
	require.Empty(t, cl.ConnectRelays(timeout(t)))

	var sent []*event.T
	for i := 0; i < 3; i++ {
		ev, err := cl.CreateEvent(1700000000, kind.TextNote, nil,
			string(rune('a'+i)))
		require.NoError(t, err)
		require.NoError(t, cl.Publish(ev))
		sent = append(sent, ev)
	}
	for _, frames := range []chan message.T{framesA, framesB} {
		for _, ev := range sent {
			m, ok := next(t, frames).(*message.Event)
			require.True(t, ok)
			require.Equal(t, ev.ID, m.Event.ID)
			require.Empty(t, m.SubscriptionID)
		}
	}
}

func TestSubscription(t *testing.T) {
	p, err := keys.Generate()
	require.NoError(t, err)
	wanted, err := event.New(p, 1700000000, kind.TextNote, nil, "wanted")
	require.NoError(t, err)
	unwanted, err := event.New(p, 1700000000, kind.Reaction, nil, "+")
	require.NoError(t, err)

	frames := make(chan message.T, 16)
	srv := newWebsocketServer(recordingRelay(t, frames,
		&message.Event{Event: unwanted},
		&message.Event{Event: wanted},
		&message.EOSE{},
	))
	defer srv.Close()

	cl, err := New()
	require.NoError(t, err)
	defer cl.Close()
	_, err = cl.AddRelay(srv.URL)
	require.NoError(t, err)
	c := timeout(t)
	_, errs := relay.WaitAll(cl.ConnectRelays(c))
	require.Empty(t, errs)

	sub := subscription.New(filter.New().WithKinds(kind.TextNote))
	require.NoError(t, cl.Subscribe(sub))
	got, ok := cl.Subscription(sub.ID)
	require.True(t, ok)
	require.Same(t, sub, got)
	req, ok := next(t, frames).(*message.Req)
	require.True(t, ok)
	require.Equal(t, sub.ID, req.SubscriptionID)

	in, err := cl.Receive(c)
	require.NoError(t, err)
	require.Equal(t, normalize.URL(srv.URL), in.Relay)
	require.Same(t, sub, in.Subscription)
	em, ok := in.Message.(*message.Event)
	require.True(t, ok)
	require.Equal(t, wanted.ID, em.Event.ID)

	m, err := cl.ReceiveMessage(c)
	require.NoError(t, err)
	require.IsType(t, &message.EOSE{}, m)
	require.True(t, sub.EOSE(normalize.URL(srv.URL)))
	require.Equal(t, 1, sub.EOSECount())

	require.NoError(t, cl.Unsubscribe(sub.ID))
	_, ok = cl.Subscription(sub.ID)
	require.False(t, ok)
	cm, ok := next(t, frames).(*message.Close)
	require.True(t, ok)
	require.Equal(t, sub.ID, cm.SubscriptionID)
}

func TestSubscriptionMarkedReference(t *testing.T) {
	p, err := keys.Generate()
	require.NoError(t, err)
	root, err := event.New(p, 1700000000, kind.TextNote, nil, "root")
	require.NoError(t, err)
	marked, err := tag.FromStrings(tag.NameE, root.ID.String(), "", "reply")
	require.NoError(t, err)
	reply, err := event.New(p, 1700000001, kind.TextNote, tags.T{marked},
		"reply")
	require.NoError(t, err)

	frames := make(chan message.T, 16)
	srv := newWebsocketServer(recordingRelay(t, frames,
		&message.Event{Event: reply},
		&message.EOSE{},
	))
	defer srv.Close()

	cl, err := New()
	require.NoError(t, err)
	defer cl.Close()
	_, err = cl.AddRelay(srv.URL)
	require.NoError(t, err)
	c := timeout(t)
	_, errs := relay.WaitAll(cl.ConnectRelays(c))
	require.Empty(t, errs)

	sub := subscription.New(filter.New().WithTags(&tag.E{EventID: root.ID}))
	require.NoError(t, cl.Subscribe(sub))
	in, err := cl.Receive(c)
	require.NoError(t, err)
	require.Same(t, sub, in.Subscription)
	em, ok := in.Message.(*message.Event)
	require.True(t, ok)
	require.Equal(t, reply.ID, em.Event.ID)
	require.NoError(t, em.Event.Verify())
}

func TestClose(t *testing.T) {
	frames := make(chan message.T, 16)
	srv := newWebsocketServer(recordingRelay(t, frames))
	defer srv.Close()
	cl, err := New()
	require.NoError(t, err)
	r, err := cl.AddRelay(srv.URL)
	require.NoError(t, err)
	c := timeout(t)
	require.NoError(t, relay.Start(c, r).Wait())
	cl.Close()
	<-r.Done()
	require.Equal(t, relay.Closed, r.State())
	_, err = cl.ReceiveMessage(c)
	require.ErrorIs(t, err, bus.ErrChannelClosed)
	require.ErrorIs(t, cl.SendMessage(&message.Notice{Message: "x"}),
		bus.ErrChannelClosed)
}
