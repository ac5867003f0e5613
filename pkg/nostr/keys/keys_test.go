package keys

import (
	"bytes"
	"crypto/sha256"
	"testing"

	"github.com/Hubmakerlabs/cyan/pkg/hex"
	"github.com/Hubmakerlabs/cyan/pkg/nostr/codec"
	"github.com/stretchr/testify/require"
	"lukechampine.com/frand"
)

const (
	testSecHex = "1797f6f1d10593548b566ba32e81577aa4bc990eb0f16556bf884f1af4b17c25"
	testPubHex = "4fdb07df4a683e3ee9b2a9d117e01bfe2548d7e8c0d4cb56d77e9c23091c3fc3"
	curveOrder = "fffffffffffffffffffffffffffffffebaaedce6af48a03bbfd25e8cd0364141"
)

func TestFromSecretHex(t *testing.T) {
	p, err := FromSecretHex(testSecHex)
	require.NoError(t, err)
	require.Equal(t, testPubHex, p.PubKey().String())
	require.Equal(t, testSecHex, p.SecretHex())
}

func TestInvalidKeys(t *testing.T) {
	zero := make([]byte, 32)
	order, _ := hex.Dec(curveOrder)
	above := bytes.Repeat([]byte{0xff}, 32)
	for name, b := range map[string][]byte{
		"empty": nil,
		"short": make([]byte, 31),
		"long":  make([]byte, 33),
		"zero":  zero,
		"order": order,
		"above": above,
	} {
		_, err := FromSecretBytes(b)
		require.ErrorIs(t, err, ErrInvalidKey, name)
	}
	_, err := FromSecretHex("xyz")
	require.ErrorIs(t, err, ErrInvalidKey)
}

func TestGenerate(t *testing.T) {
	seen := make(map[PubKey]bool)
	for i := 0; i < 16; i++ {
		p, err := Generate()
		require.NoError(t, err)
		require.False(t, seen[p.PubKey()], "duplicate key generated")
		seen[p.PubKey()] = true
	}
}

func TestSignVerify(t *testing.T) {
	for i := 0; i < 8; i++ {
		p, err := Generate()
		require.NoError(t, err)
		msg := sha256.Sum256(frand.Bytes(64))
		sig, err := p.Sign(msg)
		require.NoError(t, err)
		require.NoError(t, Verify(sig, msg, p.PubKey()))
		// deterministic nonce: same key and message give the same signature
		again, err := p.Sign(msg)
		require.NoError(t, err)
		require.Equal(t, sig, again)
		// flipping any single bit must break verification
		bit := frand.Intn(256)
		m2 := msg
		m2[bit/8] ^= 1 << (bit % 8)
		require.ErrorIs(t, Verify(sig, m2, p.PubKey()), ErrSignatureInvalid)
		bit = frand.Intn(512)
		s2 := sig
		s2[bit/8] ^= 1 << (bit % 8)
		require.ErrorIs(t, Verify(s2, msg, p.PubKey()), ErrSignatureInvalid)
		bit = frand.Intn(256)
		pk2 := p.PubKey()
		pk2[bit/8] ^= 1 << (bit % 8)
		require.ErrorIs(t, Verify(sig, msg, pk2), ErrSignatureInvalid)
	}
}

func TestPubKeyHex(t *testing.T) {
	pk, err := PubKeyFromHex(testPubHex)
	require.NoError(t, err)
	j, err := pk.MarshalJSON()
	require.NoError(t, err)
	require.Equal(t, `"`+testPubHex+`"`, string(j))
	_, err = PubKeyFromHex(testPubHex[:10])
	require.ErrorIs(t, err, codec.ErrWrongLength)
}
