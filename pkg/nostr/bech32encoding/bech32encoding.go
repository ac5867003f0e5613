// Package bech32encoding is the bech32 form of keys and event ids shown to
// and typed by users: npub, nsec and note.
package bech32encoding

import (
	"fmt"
	"os"
	"strings"

	"github.com/Hubmakerlabs/cyan/pkg/nostr/eventid"
	"github.com/Hubmakerlabs/cyan/pkg/nostr/keys"
	"github.com/Hubmakerlabs/cyan/pkg/slog"
	"github.com/btcsuite/btcd/btcutil/bech32"
)

var log, chk = slog.New(os.Stderr)

const (
	NoteHRP = "note"
	NsecHRP = "nsec"
	NpubHRP = "npub"
)

func encode(hrp string, b []byte) (s string, err error) {
	var b5 []byte
	if b5, err = bech32.ConvertBits(b, 8, 5, true); chk.E(err) {
		return
	}
	return bech32.Encode(hrp, b5)
}

// decode checks the prefix of s is hrp and returns its 32 bytes.
func decode(hrp, s string) (b []byte, err error) {
	var prefix string
	var b5 []byte
	if prefix, b5, err = bech32.Decode(s); chk.D(err) {
		return
	}
	if prefix != hrp {
		return nil, fmt.Errorf("wrong human readable part, got '%s' want '%s'",
			prefix, hrp)
	}
	if b, err = bech32.ConvertBits(b5, 5, 8, false); chk.D(err) {
		return nil, fmt.Errorf("failed translating data into 8 bits: %w", err)
	}
	if len(b) != 32 {
		return nil, fmt.Errorf("%s data is %d bytes, must be 32", hrp, len(b))
	}
	return
}

func PubKeyToNpub(pk keys.PubKey) (string, error) { return encode(NpubHRP, pk[:]) }

func PairToNsec(p *keys.Pair) (string, error) {
	return encode(NsecHRP, p.SecretBytes())
}

func EventIDToNote(id eventid.T) (string, error) { return encode(NoteHRP, id[:]) }

func NpubToPubKey(s string) (pk keys.PubKey, err error) {
	var b []byte
	if b, err = decode(NpubHRP, s); err != nil {
		return
	}
	copy(pk[:], b)
	return
}

func NsecToPair(s string) (p *keys.Pair, err error) {
	var b []byte
	if b, err = decode(NsecHRP, s); err != nil {
		return nil, fmt.Errorf("%w: %v", keys.ErrInvalidKey, err)
	}
	return keys.FromSecretBytes(b)
}

func NoteToEventID(s string) (id eventid.T, err error) {
	var b []byte
	if b, err = decode(NoteHRP, s); err != nil {
		return
	}
	copy(id[:], b)
	return
}

// ParsePubKey reads a public key given either as npub or as hex.
func ParsePubKey(s string) (keys.PubKey, error) {
	if strings.HasPrefix(s, NpubHRP+"1") {
		return NpubToPubKey(s)
	}
	return keys.PubKeyFromHex(s)
}

// ParseSecret reads a secret key given either as nsec or as hex.
func ParseSecret(s string) (*keys.Pair, error) {
	if strings.HasPrefix(s, NsecHRP+"1") {
		return NsecToPair(s)
	}
	return keys.FromSecretHex(s)
}

// ParseEventID reads an event id given either as note or as hex.
func ParseEventID(s string) (eventid.T, error) {
	if strings.HasPrefix(s, NoteHRP+"1") {
		return NoteToEventID(s)
	}
	return eventid.FromHex(s)
}
