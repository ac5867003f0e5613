// Command tailr subscribes to a filter on many relays at once and prints
// every message they send until interrupted.
package main

import (
	"os"

	"github.com/Hubmakerlabs/cyan/cmd/tailr/app"
	"github.com/Hubmakerlabs/cyan/pkg/slog"
	"github.com/alexflint/go-arg"
)

var log, chk = slog.New(os.Stderr)

var cfg app.Config

func main() {
	arg.MustParse(&cfg)
	cfg.ApplyLogLevel()
	log.D.S(cfg.Relays)
	if err := cfg.Main(); chk.E(err) {
		os.Exit(1)
	}
}
