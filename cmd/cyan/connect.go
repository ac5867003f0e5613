package main

import (
	"errors"

	"github.com/Hubmakerlabs/cyan/pkg/config"
	"github.com/Hubmakerlabs/cyan/pkg/context"
	"github.com/Hubmakerlabs/cyan/pkg/nostr/client"
	"github.com/Hubmakerlabs/cyan/pkg/nostr/keys"
	"github.com/Hubmakerlabs/cyan/pkg/nostr/relay"
	"github.com/urfave/cli/v2"
)

var errNoRelays = errors.New("could not connect to any relay")

func getConfig(cCtx *cli.Context) *config.C {
	return cCtx.App.Metadata["config"].(*config.C)
}

// connect builds a client from the profile and opens its relays. Relays that
// fail to connect are logged and left out.
func connect(cCtx *cli.Context) (cl *client.T, opened []*relay.T, err error) {
	cfg := getConfig(cCtx)
	var p *keys.Pair
	if p, err = cfg.Keys(); chk.E(err) {
		return
	}
	if cl, err = client.FromSecretKey(p.SecretBytes(),
		client.WithCapacity(cfg.Capacity)); chk.E(err) {
		return
	}
	for _, u := range cfg.Relays {
		if _, err = cl.AddRelay(u); chk.E(err) {
			continue
		}
	}
	c, cancel := context.Timeout(cCtx.Context, cCtx.Duration("timeout"))
	defer cancel()
	var errs []error
	opened, errs = relay.WaitAll(cl.ConnectRelays(c))
	for _, e := range errs {
		log.W.Ln(e)
	}
	if len(opened) == 0 {
		cl.Close()
		return nil, nil, errNoRelays
	}
	err = nil
	log.D.F("connected to %d of %d relays", len(opened), len(cfg.Relays))
	return
}
