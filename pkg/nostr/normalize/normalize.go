// Package normalize turns the relay addresses users type into the websocket
// URLs that are dialled and used as registry keys.
package normalize

import (
	"net/url"
	"strings"
)

// URL normalizes the url and replaces http://, https:// schemes by
// ws://, wss://. A bare authority such as "relay.example.com" becomes
// "wss://relay.example.com". The scheme and host are lowercased and a
// trailing path slash is removed. An address that cannot be parsed, or has no
// host, normalizes to "".
func URL(u string) string {
	u = strings.TrimSpace(u)
	if u == "" {
		return ""
	}
	lower := strings.ToLower(u)
	// if prefix isn't specified as http/s or websocket, assume secure
	// websocket and add wss prefix (this is the most common).
	if !(strings.HasPrefix(lower, "http://") ||
		strings.HasPrefix(lower, "https://") ||
		strings.HasPrefix(lower, "ws://") ||
		strings.HasPrefix(lower, "wss://")) {
		u = "wss://" + u
	}
	var err error
	var p *url.URL
	if p, err = url.Parse(u); err != nil || p.Host == "" {
		return ""
	}
	p.Scheme = strings.ToLower(p.Scheme)
	p.Host = strings.ToLower(p.Host)
	// convert http/s to ws/s
	switch p.Scheme {
	case "https":
		p.Scheme = "wss"
	case "http":
		p.Scheme = "ws"
	}
	// remove trailing path slash
	p.Path = strings.TrimRight(p.Path, "/")
	p.RawPath = ""
	return p.String()
}
