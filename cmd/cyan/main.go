// Command cyan is a command line nostr client that posts to and reads from
// many relays at once.
package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/Hubmakerlabs/cyan/pkg/config"
	"github.com/Hubmakerlabs/cyan/pkg/slog"
	"github.com/urfave/cli/v2"
)

var log, chk = slog.New(os.Stderr)

const appName = "cyan"

const version = "0.1.0"

var revision = "HEAD"

func doVersion(_ *cli.Context) (err error) {
	fmt.Println(version, revision)
	return nil
}

func main() {
	app := &cli.App{
		Name:        appName,
		Usage:       "A multi relay cli client for nostr",
		Description: "A multi relay cli client for nostr",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "a", Usage: "profile name"},
			&cli.StringFlag{Name: "relays", Usage: "comma separated relays, replacing those of the profile"},
			&cli.DurationFlag{Name: "timeout", Value: 7 * time.Second,
				Usage: "how long to wait for relays"},
			&cli.BoolFlag{Name: "V", Usage: "verbose"},
		},
		Commands: []*cli.Command{
			{
				Name:      "keygen",
				Usage:     "generate a new key pair",
				UsageText: appName + " keygen [--qr] [--save]",
				HelpName:  "keygen",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "qr", Usage: "print the public key as a QR code"},
					&cli.BoolFlag{Name: "save", Usage: "store the key in the profile"},
				},
				Action: Keygen,
			},
			{
				Name:    "post",
				Aliases: []string{"n"},
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "stdin", Usage: "read the note from stdin"},
					&cli.StringFlag{Name: "reply", Usage: "id of the event replied to"},
					&cli.StringSliceFlag{Name: "u", Usage: "public keys to mention"},
					&cli.StringSliceFlag{Name: "t", Usage: "extra tag as name=value"},
				},
				Usage:     "post new note",
				UsageText: appName + " post [note text]",
				HelpName:  "post",
				ArgsUsage: "[note text]",
				Action:    Post,
			},
			{
				Name:  "req",
				Usage: "fetch events matching a filter",
				Flags: []cli.Flag{
					&cli.IntSliceFlag{Name: "kind", Usage: "event kinds"},
					&cli.StringSliceFlag{Name: "author", Usage: "author public keys"},
					&cli.StringSliceFlag{Name: "id", Usage: "event ids"},
					&cli.IntFlag{Name: "limit", Value: 30, Usage: "number of items"},
					&cli.BoolFlag{Name: "stream", Usage: "keep printing new events after EOSE"},
					&cli.BoolFlag{Name: "reverse", Usage: "print stored events newest first"},
				},
				UsageText: appName + " req [--kind n] [--author pubkey] [--limit n]",
				HelpName:  "req",
				Action:    Req,
			},
			{
				Name:      "version",
				Usage:     "show version",
				UsageText: appName + " version",
				HelpName:  "version",
				Action:    doVersion,
			},
		},
		Before: func(cCtx *cli.Context) (err error) {
			if cCtx.Args().Get(0) == "version" {
				return nil
			}
			var dir string
			if dir, err = config.Dir(); chk.E(err) {
				return
			}
			var cfg *config.C
			if cfg, err = config.LoadProfile(dir, cCtx.String("a")); chk.E(err) {
				return
			}
			cfg.ApplyLogLevel()
			if cCtx.Bool("V") {
				slog.SetLogLevel(slog.Debug)
			}
			if relays := cCtx.String("relays"); strings.TrimSpace(relays) != "" {
				cfg.Relays = strings.Split(relays, ",")
				cfg.Normalize()
			}
			cCtx.App.Metadata = map[string]any{
				"config": cfg,
				"dir":    dir,
			}
			return nil
		},
	}
	if err := app.Run(os.Args); chk.E(err) {
		os.Exit(1)
	}
}
