package event

import (
	"encoding/json"
	"testing"

	"github.com/Hubmakerlabs/cyan/pkg/nostr/codec"
	"github.com/Hubmakerlabs/cyan/pkg/nostr/eventid"
	"github.com/Hubmakerlabs/cyan/pkg/nostr/keys"
	"github.com/Hubmakerlabs/cyan/pkg/nostr/kind"
	"github.com/Hubmakerlabs/cyan/pkg/nostr/tag"
	"github.com/Hubmakerlabs/cyan/pkg/nostr/tags"
	"github.com/Hubmakerlabs/cyan/pkg/nostr/timestamp"
	"github.com/nbd-wtf/go-nostr"
	"github.com/stretchr/testify/require"
)

const (
	vectorSecHex = "720f8a88fe12e0b6f635b7f6e085bf55175334a78b70f3a781478b428e347483"
	vectorID     = "6af93de56bf823a19fb2c996e43f74186b09389ae3f663fa1ac96959060ca671"
	testSecHex   = "1797f6f1d10593548b566ba32e81577aa4bc990eb0f16556bf884f1af4b17c25"
	testContent  = `This event contains { braces } and [ brackets ] that must be properly
handled, as well as a line break, a dangling space, a "quote" and a
	tab.`
)

func testPair(t *testing.T, sec string) *keys.Pair {
	t.Helper()
	p, err := keys.FromSecretHex(sec)
	require.NoError(t, err)
	return p
}

func sample(t *testing.T) *T {
	t.Helper()
	ref, err := eventid.FromHex(vectorID)
	require.NoError(t, err)
	p := testPair(t, testSecHex)
	ev, err := New(p, timestamp.FromUnix(1700000000), kind.TextNote, tags.T{
		&tag.E{EventID: ref, Relay: "wss://relay.example.com"},
		&tag.P{PubKey: p.PubKey()},
		tag.NewOther("t", "nostr"),
	}, testContent)
	require.NoError(t, err)
	return ev
}

func TestVector(t *testing.T) {
	p := testPair(t, vectorSecHex)
	ev, err := New(p, 1692452942, kind.TextNote, nil, "this is a test")
	require.NoError(t, err)
	require.Equal(t, vectorID, ev.ID.String())
	require.NoError(t, ev.CheckSig())
	require.NoError(t, ev.Verify())
}

func TestCanonical(t *testing.T) {
	p := testPair(t, vectorSecHex)
	u := &Unsigned{
		PubKey:    p.PubKey(),
		CreatedAt: 1692452942,
		Kind:      kind.TextNote,
		Content:   "this is a test",
	}
	require.Equal(t, `[0,"`+p.PubKey().String()+`",1692452942,1,[],"this is a test"]`,
		string(u.Canonical()))
	// the id depends only on the canonical form
	require.Equal(t, u.Hash(), u.Hash())
}

func TestRoundTrip(t *testing.T) {
	ev := sample(t)
	b, err := ev.MarshalJSON()
	require.NoError(t, err)
	back, err := Decode(b)
	require.NoError(t, err)
	require.Equal(t, ev.ID, back.ID)
	require.Equal(t, ev.Sig, back.Sig)
	require.Equal(t, ev.Content, back.Content)
	require.Equal(t, ev.Tags.Strings(), back.Tags.Strings())
	require.NoError(t, back.Verify())
	again, err := back.MarshalJSON()
	require.NoError(t, err)
	require.Equal(t, string(b), string(again))
}

func TestMutation(t *testing.T) {
	other := testPair(t, vectorSecHex)
	for name, mutate := range map[string]func(ev *T){
		"pubkey":     func(ev *T) { ev.PubKey = other.PubKey() },
		"created_at": func(ev *T) { ev.CreatedAt++ },
		"kind":       func(ev *T) { ev.Kind = kind.Reaction },
		"tags":       func(ev *T) { ev.Tags = append(ev.Tags, tag.NewOther("t", "extra")) },
		"content":    func(ev *T) { ev.Content += "!" },
	} {
		ev := sample(t)
		mutate(ev)
		err := ev.CheckID()
		require.ErrorIs(t, err, ErrIDMismatch, name)
		var mm *IDMismatch
		require.ErrorAs(t, err, &mm, name)
		require.Equal(t, ev.ID, mm.Found, name)
		require.Equal(t, ev.Hash(), mm.Expected, name)
		require.Error(t, ev.Verify(), name)
	}

	// the signature is still good for the stored id
	ev := sample(t)
	ev.Content += "!"
	require.NoError(t, ev.CheckSig())

	ev = sample(t)
	ev.Sig[5] ^= 0x10
	require.NoError(t, ev.CheckID())
	require.ErrorIs(t, ev.CheckSig(), keys.ErrSignatureInvalid)
}

func TestDecodeErrors(t *testing.T) {
	const (
		id  = `"` + vectorID + `"`
		sig = `"` + vectorID + vectorID + `"`
	)
	for _, c := range []struct {
		name string
		in   string
		want error
	}{
		{"not json", `{"id":`, codec.ErrMalformed},
		{"not object", `[1,2]`, codec.ErrMalformed},
		{"missing sig", `{"id":` + id + `,"pubkey":` + id +
			`,"created_at":1,"kind":1,"tags":[],"content":""}`,
			codec.ErrMissingField},
		{"duplicate id", `{"id":` + id + `,"id":` + id + `,"pubkey":` + id +
			`,"created_at":1,"kind":1,"tags":[],"content":"","sig":` + sig + `}`,
			codec.ErrDuplicateField},
		{"short pubkey", `{"id":` + id + `,"pubkey":"abcd"` +
			`,"created_at":1,"kind":1,"tags":[],"content":"","sig":` + sig + `}`,
			codec.ErrWrongLength},
		{"short sig", `{"id":` + id + `,"pubkey":` + id +
			`,"created_at":1,"kind":1,"tags":[],"content":"","sig":` + id + `}`,
			codec.ErrWrongLength},
		{"unknown kind", `{"id":` + id + `,"pubkey":` + id +
			`,"created_at":1,"kind":30023,"tags":[],"content":"","sig":` + sig + `}`,
			codec.ErrUnknownVariant},
		{"content number", `{"id":` + id + `,"pubkey":` + id +
			`,"created_at":1,"kind":1,"tags":[],"content":5,"sig":` + sig + `}`,
			codec.ErrMalformed},
		{"created_at float", `{"id":` + id + `,"pubkey":` + id +
			`,"created_at":1.5,"kind":1,"tags":[],"content":"","sig":` + sig + `}`,
			codec.ErrMalformed},
		{"extra key", `{"id":` + id + `,"pubkey":` + id +
			`,"created_at":1,"kind":1,"tags":[],"content":"","sig":` + sig +
			`,"x":1}`,
			codec.ErrMalformed},
	} {
		_, err := Decode([]byte(c.in))
		require.ErrorIs(t, err, c.want, c.name)
	}
}

// TestInterop checks the canonical form, id and signature against the
// go-nostr implementation.
func TestInterop(t *testing.T) {
	ev := sample(t)
	var other nostr.Event
	require.NoError(t, json.Unmarshal(ev.Serialize(), &other))
	require.Equal(t, string(ev.Canonical()), string(other.Serialize()))
	require.Equal(t, ev.ID.String(), other.GetID())
	ok, err := other.CheckSignature()
	require.NoError(t, err)
	require.True(t, ok)

	// and the other way around
	theirs := nostr.Event{
		CreatedAt: nostr.Timestamp(1700000001),
		Kind:      nostr.KindTextNote,
		Tags:      nostr.Tags{{"e", vectorID}, {"client", "x", "y"}},
		Content:   "hello\\world",
	}
	require.NoError(t, theirs.Sign(testSecHex))
	b, err := json.Marshal(theirs)
	require.NoError(t, err)
	mine, err := Decode(b)
	require.NoError(t, err)
	require.NoError(t, mine.Verify())
	require.Equal(t, theirs.ID, mine.ID.String())
}
