package main

import (
	"errors"
	"fmt"
	"sort"

	"github.com/Hubmakerlabs/cyan/pkg/context"
	"github.com/Hubmakerlabs/cyan/pkg/nostr/bech32encoding"
	"github.com/Hubmakerlabs/cyan/pkg/nostr/bus"
	"github.com/Hubmakerlabs/cyan/pkg/nostr/event"
	"github.com/Hubmakerlabs/cyan/pkg/nostr/eventid"
	"github.com/Hubmakerlabs/cyan/pkg/nostr/filter"
	"github.com/Hubmakerlabs/cyan/pkg/nostr/keys"
	"github.com/Hubmakerlabs/cyan/pkg/nostr/kind"
	"github.com/Hubmakerlabs/cyan/pkg/nostr/message"
	"github.com/Hubmakerlabs/cyan/pkg/nostr/subscription"
	"github.com/urfave/cli/v2"
)

// reqFilter builds a filter from the req flags.
func reqFilter(cCtx *cli.Context) (f *filter.T, err error) {
	f = filter.New()
	for _, n := range cCtx.IntSlice("kind") {
		var k kind.T
		if k, err = kind.FromInt(int64(n)); chk.D(err) {
			return
		}
		f = f.WithKinds(k)
	}
	for _, a := range cCtx.StringSlice("author") {
		var pk keys.PubKey
		if pk, err = bech32encoding.ParsePubKey(a); chk.D(err) {
			return nil, fmt.Errorf("failed to parse pubkey from '%s': %w", a,
				err)
		}
		f = f.WithAuthors(pk)
	}
	for _, s := range cCtx.StringSlice("id") {
		var id eventid.T
		if id, err = bech32encoding.ParseEventID(s); chk.D(err) {
			return nil, fmt.Errorf("failed to parse event id from '%s': %w", s,
				err)
		}
		f = f.WithIDs(id)
	}
	if n := cCtx.Int("limit"); n > 0 {
		f = f.WithLimit(n)
	}
	return
}

// sortStored orders the events relays returned before EOSE, oldest first
// unless reverse is set.
func sortStored(stored []*event.T, reverse bool) {
	if reverse {
		sort.Sort(event.Descending(stored))
		return
	}
	sort.Sort(event.Ascending(stored))
}

func Req(cCtx *cli.Context) (err error) {
	var f *filter.T
	if f, err = reqFilter(cCtx); err != nil {
		return
	}
	cl, opened, err := connect(cCtx)
	if err != nil {
		return
	}
	defer cl.Close()
	sub := subscription.New(f)
	if err = cl.Subscribe(sub); chk.E(err) {
		return
	}
	defer func() { chk.D(cl.Unsubscribe(sub.ID)) }()
	stream := cCtx.Bool("stream")
	c := cCtx.Context
	if !stream {
		var cancel context.F
		c, cancel = context.Timeout(c, cCtx.Duration("timeout"))
		defer cancel()
	}
	// stored events are held until every relay has sent EOSE so they can be
	// printed in order, anything after that is printed as it arrives.
	var stored []*event.T
	live := false
	flush := func() {
		if live {
			return
		}
		live = true
		sortStored(stored, cCtx.Bool("reverse"))
		for _, ev := range stored {
			fmt.Println(ev)
		}
	}
	defer flush()
	seen := make(map[eventid.T]struct{})
	for {
		if !live && sub.EOSECount() >= len(opened) {
			flush()
			if !stream {
				return nil
			}
		}
		var in *bus.Inbound
		if in, err = cl.Receive(c); err != nil {
			if errors.Is(err, context.Deadline) {
				log.W.F("only %d of %d relays finished", sub.EOSECount(),
					len(opened))
				err = nil
			}
			return
		}
		switch m := in.Message.(type) {
		case *message.Event:
			if in.Subscription != sub {
				continue
			}
			if err = m.Event.Verify(); chk.D(err) {
				log.W.F("%s sent an invalid event: %v", in.Relay, err)
				err = nil
				continue
			}
			if _, ok := seen[m.Event.ID]; ok {
				continue
			}
			seen[m.Event.ID] = struct{}{}
			if live {
				fmt.Println(m.Event)
				continue
			}
			stored = append(stored, m.Event)
		case *message.Notice:
			log.W.F("notice from %s: %s", in.Relay, m.Message)
		}
	}
}
