package main

import (
	"fmt"
	"os"

	"github.com/Hubmakerlabs/cyan/pkg/config"
	"github.com/Hubmakerlabs/cyan/pkg/nostr/bech32encoding"
	"github.com/Hubmakerlabs/cyan/pkg/nostr/keys"
	"github.com/mdp/qrterminal/v3"
	"github.com/urfave/cli/v2"
)

func Keygen(cCtx *cli.Context) (err error) {
	var p *keys.Pair
	if p, err = keys.Generate(); chk.E(err) {
		return
	}
	var nsec, npub string
	if nsec, err = bech32encoding.PairToNsec(p); chk.E(err) {
		return
	}
	if npub, err = bech32encoding.PubKeyToNpub(p.PubKey()); chk.E(err) {
		return
	}
	fmt.Println("seckey:", p.SecretHex())
	fmt.Println("nsec:  ", nsec)
	fmt.Println("pubkey:", p.PubKey())
	fmt.Println("npub:  ", npub)
	if cCtx.Bool("qr") {
		qrterminal.GenerateWithConfig("nostr:"+npub, qrterminal.Config{
			HalfBlocks: false,
			Level:      qrterminal.L,
			Writer:     os.Stdout,
			WhiteChar:  qrterminal.WHITE,
			BlackChar:  qrterminal.BLACK,
			QuietZone:  2,
		})
	}
	if !cCtx.Bool("save") {
		return
	}
	cfg := getConfig(cCtx)
	cfg.SecKey = p.SecretHex()
	fp := config.Path(cCtx.App.Metadata["dir"].(string), cfg.Profile)
	if err = cfg.Save(fp); chk.E(err) {
		return
	}
	log.I.F("saved key to %s", fp)
	return
}
