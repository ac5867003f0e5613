package app

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/Hubmakerlabs/cyan/pkg/config"
	"github.com/Hubmakerlabs/cyan/pkg/context"
	"github.com/Hubmakerlabs/cyan/pkg/interrupt"
	"github.com/Hubmakerlabs/cyan/pkg/nostr/bech32encoding"
	"github.com/Hubmakerlabs/cyan/pkg/nostr/bus"
	"github.com/Hubmakerlabs/cyan/pkg/nostr/client"
	"github.com/Hubmakerlabs/cyan/pkg/nostr/filter"
	"github.com/Hubmakerlabs/cyan/pkg/nostr/keys"
	"github.com/Hubmakerlabs/cyan/pkg/nostr/kind"
	"github.com/Hubmakerlabs/cyan/pkg/nostr/message"
	"github.com/Hubmakerlabs/cyan/pkg/nostr/relay"
	"github.com/Hubmakerlabs/cyan/pkg/nostr/subscription"
	"github.com/Hubmakerlabs/cyan/pkg/nostr/timestamp"
	"github.com/Hubmakerlabs/cyan/pkg/slog"
)

var log, chk = slog.New(os.Stderr)

type Config struct {
	config.C
	Kinds   []int         `arg:"-k,--kind,separate" help:"event kinds to follow"`
	Authors []string      `arg:"-a,--author,separate" help:"author public keys to follow, hex or npub"`
	Limit   int           `arg:"-l,--limit" default:"20" help:"number of stored events to fetch first"`
	Since   time.Duration `arg:"--since" help:"only events newer than this, eg 1h"`
	Timeout time.Duration `arg:"--timeout" default:"7s" help:"how long to wait for relays to connect"`
	Raw     bool          `arg:"--raw" help:"print the messages exactly as encoded, without the relay"`

	// Out is where messages are printed, stdout when nil.
	Out io.Writer `arg:"-"`
}

// Filter builds the subscription filter from the flags.
func (cfg *Config) Filter() (f *filter.T, err error) {
	f = filter.New()
	for _, n := range cfg.Kinds {
		var k kind.T
		if k, err = kind.FromInt(int64(n)); chk.E(err) {
			return
		}
		f = f.WithKinds(k)
	}
	for _, a := range cfg.Authors {
		var pk keys.PubKey
		if pk, err = bech32encoding.ParsePubKey(a); chk.E(err) {
			return
		}
		f = f.WithAuthors(pk)
	}
	if cfg.Limit > 0 {
		f = f.WithLimit(cfg.Limit)
	}
	if cfg.Since > 0 {
		f = f.WithSince(timestamp.FromTime(time.Now().Add(-cfg.Since)))
	}
	return
}

func (cfg *Config) client() (cl *client.T, err error) {
	opts := []client.Option{client.WithCapacity(cfg.Capacity)}
	if cfg.SecKey == "" {
		return client.New(opts...)
	}
	var p *keys.Pair
	if p, err = cfg.Keys(); chk.E(err) {
		return
	}
	return client.FromSecretKey(p.SecretBytes(), opts...)
}

func (cfg *Config) Main() (err error) {
	c, cancel := context.Cancel(context.Bg())
	interrupt.AddHandler(cancel)
	return cfg.Run(c)
}

// Run tails the relays until c is cancelled.
func (cfg *Config) Run(c context.T) (err error) {
	cfg.Normalize()
	out := cfg.Out
	if out == nil {
		out = os.Stdout
	}
	var f *filter.T
	if f, err = cfg.Filter(); err != nil {
		return
	}
	var cl *client.T
	if cl, err = cfg.client(); chk.E(err) {
		return
	}
	defer cl.Close()
	for _, u := range cfg.Relays {
		if _, err = cl.AddRelay(u); chk.E(err) {
			continue
		}
	}
	dc, dcancel := context.Timeout(c, cfg.Timeout)
	opened, errs := relay.WaitAll(cl.ConnectRelays(dc))
	dcancel()
	for _, e := range errs {
		log.W.Ln(e)
	}
	if len(opened) == 0 {
		return errors.New("could not connect to any relay")
	}
	log.I.F("tailing %d relays", len(opened))
	sub := subscription.New(f)
	if err = cl.Subscribe(sub); chk.E(err) {
		return
	}
	for {
		var in *bus.Inbound
		if in, err = cl.Receive(c); err != nil {
			if errors.Is(err, context.Canceled) {
				chk.D(cl.Unsubscribe(sub.ID))
				err = nil
			}
			return
		}
		var b []byte
		if b, err = message.Marshal(in.Message); chk.E(err) {
			continue
		}
		if cfg.Raw {
			_, err = fmt.Fprintf(out, "%s\n", b)
		} else {
			_, err = fmt.Fprintf(out, "%s\t%s\n", in.Relay, b)
		}
		if chk.E(err) {
			return
		}
		if in.Subscription == sub {
			if _, ok := in.Message.(*message.EOSE); ok && sub.EOSECount() == len(opened) {
				log.I.Ln("all relays sent stored events, following new ones")
			}
		}
	}
}
