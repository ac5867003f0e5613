package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/Hubmakerlabs/cyan/pkg/context"
	"github.com/Hubmakerlabs/cyan/pkg/nostr/bech32encoding"
	"github.com/Hubmakerlabs/cyan/pkg/nostr/bus"
	"github.com/Hubmakerlabs/cyan/pkg/nostr/event"
	"github.com/Hubmakerlabs/cyan/pkg/nostr/eventid"
	"github.com/Hubmakerlabs/cyan/pkg/nostr/keys"
	"github.com/Hubmakerlabs/cyan/pkg/nostr/kind"
	"github.com/Hubmakerlabs/cyan/pkg/nostr/message"
	"github.com/Hubmakerlabs/cyan/pkg/nostr/tag"
	"github.com/Hubmakerlabs/cyan/pkg/nostr/tags"
	"github.com/Hubmakerlabs/cyan/pkg/nostr/timestamp"
	"github.com/urfave/cli/v2"
)

// postTags builds the tags of a note from the post flags.
func postTags(cCtx *cli.Context) (t tags.T, err error) {
	if r := cCtx.String("reply"); r != "" {
		var id eventid.T
		if id, err = bech32encoding.ParseEventID(r); chk.D(err) {
			return nil, fmt.Errorf("failed to parse event id from '%s': %w", r,
				err)
		}
		t = append(t, &tag.E{EventID: id})
	}
	for _, u := range cCtx.StringSlice("u") {
		var pk keys.PubKey
		if pk, err = bech32encoding.ParsePubKey(u); chk.D(err) {
			return nil, fmt.Errorf("failed to parse pubkey from '%s': %w", u,
				err)
		}
		t = append(t, &tag.P{PubKey: pk})
	}
	for _, s := range cCtx.StringSlice("t") {
		name, value, ok := strings.Cut(s, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("tag '%s' is not name=value", s)
		}
		t = append(t, tag.NewOther(name, value))
	}
	return
}

func Post(cCtx *cli.Context) (err error) {
	stdin := cCtx.Bool("stdin")
	if !stdin && cCtx.Args().Len() == 0 {
		return cli.ShowSubcommandHelp(cCtx)
	}
	var content string
	if stdin {
		var b []byte
		if b, err = io.ReadAll(os.Stdin); chk.D(err) {
			return
		}
		content = string(b)
	} else {
		content = strings.Join(cCtx.Args().Slice(), " ")
	}
	if strings.TrimSpace(content) == "" {
		return errors.New("content is empty")
	}
	var t tags.T
	if t, err = postTags(cCtx); err != nil {
		return
	}
	cl, opened, err := connect(cCtx)
	if err != nil {
		return
	}
	defer cl.Close()
	var ev *event.T
	if ev, err = cl.CreateEvent(timestamp.Now(), kind.TextNote, t,
		content); chk.E(err) {
		return
	}
	if err = cl.Publish(ev); chk.E(err) {
		return
	}
	var note string
	if note, err = bech32encoding.EventIDToNote(ev.ID); chk.E(err) {
		return
	}
	fmt.Println(ev.ID, note)
	// wait for each relay to accept or reject the note
	c, cancel := context.Timeout(cCtx.Context, cCtx.Duration("timeout"))
	defer cancel()
	var accepted int
	for answered := 0; answered < len(opened); {
		var in *bus.Inbound
		if in, err = cl.Receive(c); err != nil {
			break
		}
		switch m := in.Message.(type) {
		case *message.OK:
			if m.EventID != ev.ID {
				continue
			}
			answered++
			if m.Status {
				accepted++
				log.I.F("%s accepted the note", in.Relay)
			} else {
				log.W.F("%s rejected the note: %s", in.Relay, m.Message)
			}
		case *message.Notice:
			log.W.F("notice from %s: %s", in.Relay, m.Message)
		}
	}
	if accepted == 0 {
		return errors.New("no relay accepted the note")
	}
	return nil
}
