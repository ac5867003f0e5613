package normalize

import (
	"testing"
)

func TestURL(t *testing.T) {
	for in, want := range map[string]string{
		"":                   "",
		"   ":                "",
		"wss://x.com/y":      "wss://x.com/y",
		"wss://x.com/y/":     "wss://x.com/y",
		"http://x.com/y":     "ws://x.com/y",
		"https://x.com":      "wss://x.com",
		"wss://x.com":        "wss://x.com",
		"wss://x.com/":       "wss://x.com",
		"x.com":              "wss://x.com",
		"x.com/":             "wss://x.com",
		"x.com////":          "wss://x.com",
		"x.com/?x=23":        "wss://x.com?x=23",
		"WSS://X.Com/Path":   "wss://x.com/Path",
		"ws://127.0.0.1:80":  "ws://127.0.0.1:80",
		" relay.damus.io ":   "wss://relay.damus.io",
		"wss://":             "",
		"wss://bad host/%zz": "",
	} {
		if got := URL(in); got != want {
			t.Errorf("URL(%q) = %q, want %q", in, got, want)
		}
		// normalizing is idempotent
		if got := URL(URL(in)); got != want {
			t.Errorf("URL(URL(%q)) = %q, want %q", in, got, want)
		}
	}
}
