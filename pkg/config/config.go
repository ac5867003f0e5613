// Package config is the stored profile of a cyan client: the identity key,
// the relays to use and the client settings. A profile is a JSON file in the
// per-user config directory; every field can also be given on the command
// line.
package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"runtime"

	"github.com/Hubmakerlabs/cyan/pkg/nostr/bech32encoding"
	"github.com/Hubmakerlabs/cyan/pkg/nostr/bus"
	"github.com/Hubmakerlabs/cyan/pkg/nostr/keys"
	"github.com/Hubmakerlabs/cyan/pkg/nostr/normalize"
	"github.com/Hubmakerlabs/cyan/pkg/slog"
)

var log, chk = slog.New(os.Stderr)

// AppName names the directory profiles are kept in.
const AppName = "cyan"

// DefaultRelays is used when a profile names no relays.
var DefaultRelays = []string{"wss://relay.damus.io", "wss://nos.lol"}

var ErrNoSecKey = errors.New("profile has no secret key")

type C struct {
	SecKey   string   `arg:"-s,--seckey" json:"seckey" help:"secret key in hex or nsec format used to sign events"`
	Relays   []string `arg:"-r,--relay,separate" json:"relays" help:"relay to use (can use flag repeatedly for multiple relays)"`
	Capacity int      `arg:"--capacity" json:"capacity,omitempty" help:"size of the per relay message queues"`
	LogLevel string   `arg:"--loglevel" json:"loglevel,omitempty" help:"set log level [off,fatal,error,warn,info,debug,trace] (can also use GODEBUG environment variable)"`
	Profile  string   `arg:"-p,--profile" json:"-" help:"profile name to use for storage"`
}

// Default is a profile with the default relays and queue capacity.
func Default() *C {
	return &C{
		Relays:   append([]string(nil), DefaultRelays...),
		Capacity: bus.DefaultCapacity,
		LogLevel: "info",
	}
}

// Dir is the directory profiles are kept in. On macOS this is ~/.config
// rather than the Library folder.
func Dir() (dir string, err error) {
	switch runtime.GOOS {
	case "darwin":
		if dir, err = os.UserHomeDir(); chk.E(err) {
			return
		}
		dir = filepath.Join(dir, ".config")
	default:
		if dir, err = os.UserConfigDir(); chk.E(err) {
			return
		}
	}
	return filepath.Join(dir, AppName), nil
}

// Path is the file the named profile is stored in under dir. The empty name
// is the default profile.
func Path(dir, profile string) string {
	if profile == "" {
		return filepath.Join(dir, "config.json")
	}
	return filepath.Join(dir, "config-"+profile+".json")
}

func (c *C) Save(filename string) (err error) {
	if c == nil {
		err = errors.New("cannot save nil config")
		log.E.Ln(err)
		return
	}
	if err = os.MkdirAll(filepath.Dir(filename), 0700); chk.E(err) {
		return
	}
	var b []byte
	if b, err = json.MarshalIndent(c, "", "    "); chk.E(err) {
		return
	}
	if err = os.WriteFile(filename, b, 0600); chk.E(err) {
		return
	}
	return
}

func (c *C) Load(filename string) (err error) {
	if c == nil {
		err = errors.New("cannot load into nil config")
		chk.E(err)
		return
	}
	var b []byte
	if b, err = os.ReadFile(filename); err != nil {
		return
	}
	if err = json.Unmarshal(b, c); chk.E(err) {
		return
	}
	return
}

// LoadProfile reads the named profile from dir. A profile that does not exist
// yet is created with a new key and the default relays.
func LoadProfile(dir, profile string) (c *C, err error) {
	c = Default()
	fp := Path(dir, profile)
	if err = c.Load(fp); err == nil {
		c.Profile = profile
		c.Normalize()
		return
	}
	if !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}
	var p *keys.Pair
	if p, err = keys.Generate(); chk.E(err) {
		return
	}
	c.SecKey = p.SecretHex()
	c.Profile = profile
	log.I.F("creating new profile at %s", fp)
	if err = c.Save(fp); err != nil {
		return
	}
	return
}

// Normalize fills in defaults for empty fields and rewrites the relay URLs
// in their normal form, dropping duplicates and any that are not valid.
func (c *C) Normalize() {
	if c.Capacity <= 0 {
		c.Capacity = bus.DefaultCapacity
	}
	if len(c.Relays) == 0 {
		c.Relays = append([]string(nil), DefaultRelays...)
	}
	seen := make(map[string]struct{}, len(c.Relays))
	relays := c.Relays[:0]
	for _, r := range c.Relays {
		u := normalize.URL(r)
		if u == "" {
			log.W.F("ignoring invalid relay URL '%s'", r)
			continue
		}
		if _, ok := seen[u]; ok {
			continue
		}
		seen[u] = struct{}{}
		relays = append(relays, u)
	}
	c.Relays = relays
}

// ApplyLogLevel sets the process log level from the profile, if it names one.
func (c *C) ApplyLogLevel() {
	if c.LogLevel != "" {
		slog.SetLogLevel(slog.LevelFromString(c.LogLevel))
	}
}

// Keys decodes the profile's secret key, given as hex or nsec.
func (c *C) Keys() (p *keys.Pair, err error) {
	if c.SecKey == "" {
		return nil, ErrNoSecKey
	}
	return bech32encoding.ParseSecret(c.SecKey)
}
