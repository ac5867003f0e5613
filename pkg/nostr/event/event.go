// Package event is the signed, content addressed record that is the unit of
// data in nostr.
package event

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/Hubmakerlabs/cyan/pkg/hex"
	"github.com/Hubmakerlabs/cyan/pkg/nostr/eventid"
	"github.com/Hubmakerlabs/cyan/pkg/nostr/keys"
	"github.com/Hubmakerlabs/cyan/pkg/nostr/kind"
	"github.com/Hubmakerlabs/cyan/pkg/nostr/tags"
	"github.com/Hubmakerlabs/cyan/pkg/nostr/timestamp"
	"github.com/Hubmakerlabs/cyan/pkg/nostr/wire/text"
	"github.com/Hubmakerlabs/cyan/pkg/slog"
	"github.com/minio/sha256-simd"
)

var log, chk = slog.New(os.Stderr)

// ErrIDMismatch matches any *IDMismatch with errors.Is.
var ErrIDMismatch = errors.New("event id does not match content")

// IDMismatch is returned by CheckID when the stored id (Found) is not the
// hash of the canonical form (Expected).
type IDMismatch struct {
	Expected eventid.T
	Found    eventid.T
}

func (e *IDMismatch) Error() string {
	return fmt.Sprintf("%v: expected %s, found %s", ErrIDMismatch, e.Expected,
		e.Found)
}

func (e *IDMismatch) Is(target error) bool { return target == ErrIDMismatch }

// T is the primary datatype of nostr.
//
// A T built by New satisfies ID == Hash(Canonical(...)) and Sig verifies on
// ID under PubKey. A T built by Decode makes no such promise until Verify has
// been called on it.
type T struct {
	// ID is the SHA256 hash of the canonical encoding of the event.
	ID eventid.T
	// PubKey is the x-only public key of the event creator.
	PubKey keys.PubKey
	// CreatedAt is the UNIX timestamp of the event according to the event
	// creator (never trust a timestamp!)
	CreatedAt timestamp.T
	Kind      kind.T
	Tags      tags.T
	// Content is an arbitrary string, usually conforming to the Kind.
	Content string
	// Sig is the schnorr signature on ID by PubKey.
	Sig keys.Signature
}

// Unsigned is an event before it has an id and signature.
type Unsigned struct {
	PubKey    keys.PubKey
	CreatedAt timestamp.T
	Kind      kind.T
	Tags      tags.T
	Content   string
}

// Canonical returns the form that is hashed to produce the event id:
//
//	[0,"<hex pubkey>",<created_at>,<kind>,<tags>,"<content>"]
//
// with no whitespace and strings escaped as in package text.
func (u *Unsigned) Canonical() (b []byte) {
	b = make([]byte, 0, 128+len(u.Content))
	b = append(b, `[0,"`...)
	b = hex.AppendEnc(b, u.PubKey[:])
	b = append(b, `",`...)
	b = strconv.AppendInt(b, u.CreatedAt.I64(), 10)
	b = append(b, ',')
	b = strconv.AppendInt(b, u.Kind.ToInt(), 10)
	b = append(b, ',')
	b = u.Tags.MarshalTo(b)
	b = append(b, ',')
	b = text.AppendQuoted(b, u.Content)
	return append(b, ']')
}

// Hash returns the event id of u.
func (u *Unsigned) Hash() eventid.T { return sha256.Sum256(u.Canonical()) }

// Unsigned returns the fields of ev that are covered by its id.
func (ev *T) Unsigned() *Unsigned {
	return &Unsigned{
		PubKey:    ev.PubKey,
		CreatedAt: ev.CreatedAt,
		Kind:      ev.Kind,
		Tags:      ev.Tags,
		Content:   ev.Content,
	}
}

// Canonical is the canonical form of ev, see Unsigned.Canonical.
func (ev *T) Canonical() []byte { return ev.Unsigned().Canonical() }

// Hash computes the id ev should have.
func (ev *T) Hash() eventid.T { return ev.Unsigned().Hash() }

// New creates a signed event from its content fields. The pubkey is that of
// the signing key pair.
func New(p *keys.Pair, createdAt timestamp.T, k kind.T, t tags.T,
	content string) (ev *T, err error) {

	u := &Unsigned{
		PubKey:    p.PubKey(),
		CreatedAt: createdAt,
		Kind:      k,
		Tags:      t,
		Content:   content,
	}
	return u.Sign(p)
}

// Sign produces the event for u. The pubkey of u is replaced by that of p so
// the result always verifies.
func (u *Unsigned) Sign(p *keys.Pair) (ev *T, err error) {
	u.PubKey = p.PubKey()
	id := u.Hash()
	var sig keys.Signature
	if sig, err = p.Sign(id); chk.E(err) {
		return
	}
	ev = &T{
		ID:        id,
		PubKey:    u.PubKey,
		CreatedAt: u.CreatedAt,
		Kind:      u.Kind,
		Tags:      u.Tags,
		Content:   u.Content,
		Sig:       sig,
	}
	log.T.F("signed event %s", ev.ID)
	return
}

// CheckID recomputes the id of ev and compares it to the stored one.
func (ev *T) CheckID() (err error) {
	if expected := ev.Hash(); expected != ev.ID {
		return &IDMismatch{Expected: expected, Found: ev.ID}
	}
	return
}

// CheckSig verifies the signature on the stored id. It does not check that
// the id matches the content, use Verify for that.
func (ev *T) CheckSig() (err error) {
	return keys.Verify(ev.Sig, ev.ID, ev.PubKey)
}

// Verify runs CheckID then CheckSig.
func (ev *T) Verify() (err error) {
	if err = ev.CheckID(); err != nil {
		return
	}
	return ev.CheckSig()
}

// Ascending is a slice of events that sorts in ascending chronological order
type Ascending []*T

func (ev Ascending) Len() int           { return len(ev) }
func (ev Ascending) Less(i, j int) bool { return ev[i].CreatedAt < ev[j].CreatedAt }
func (ev Ascending) Swap(i, j int)      { ev[i], ev[j] = ev[j], ev[i] }

// Descending sorts a slice of events in reverse chronological order (newest
// first)
type Descending []*T

func (e Descending) Len() int           { return len(e) }
func (e Descending) Less(i, j int) bool { return e[i].CreatedAt > e[j].CreatedAt }
func (e Descending) Swap(i, j int)      { e[i], e[j] = e[j], e[i] }
