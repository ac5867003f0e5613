// Package keys is the identity of a nostr user: a secp256k1 secret key, its
// x-only public key, and BIP-340 schnorr signing and verification of 32 byte
// event ids.
//
// A Pair has no serializer. The secret is only reachable through SecretHex,
// which exists for writing the user's own configuration file.
package keys

import (
	"errors"
	"fmt"
	"os"

	"github.com/Hubmakerlabs/cyan/pkg/hex"
	"github.com/Hubmakerlabs/cyan/pkg/nostr/codec"
	"github.com/Hubmakerlabs/cyan/pkg/slog"
	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/schnorr"
	"github.com/tidwall/gjson"
	"lukechampine.com/frand"
)

var log, chk = slog.New(os.Stderr)

const (
	SecretLen    = 32
	PubKeyLen    = 32
	SignatureLen = 64
)

var (
	ErrInvalidKey       = errors.New("invalid secret key")
	ErrSignatureInvalid = errors.New("signature invalid")
)

// PubKey is an x-only (BIP-340) public key.
type PubKey [PubKeyLen]byte

func (pk PubKey) String() string { return hex.Enc(pk[:]) }

// MarshalJSON writes the key as a quoted hex string.
func (pk PubKey) MarshalJSON() ([]byte, error) {
	b := append(make([]byte, 0, PubKeyLen*2+2), '"')
	b = hex.AppendEnc(b, pk[:])
	return append(b, '"'), nil
}

// PubKeyFromHex decodes a 64 character hex public key.
func PubKeyFromHex(s string) (pk PubKey, err error) {
	err = codec.Hex(pk[:], gjson.Result{Type: gjson.String, Str: s}, "pubkey")
	return
}

// DecodePubKey reads a public key from a gjson string value.
func DecodePubKey(r gjson.Result, field string) (pk PubKey, err error) {
	err = codec.Hex(pk[:], r, field)
	return
}

// Signature is a 64 byte schnorr signature.
type Signature [SignatureLen]byte

func (s Signature) String() string { return hex.Enc(s[:]) }

// Pair is a secret key and the public key derived from it. It is immutable
// after creation.
type Pair struct {
	sec *btcec.PrivateKey
	pub PubKey
}

// Generate creates a new random key pair.
func Generate() (p *Pair, err error) {
	b := make([]byte, SecretLen)
	// a random 32 byte string is out of range with probability ~2^-128, so
	// this loop practically never repeats.
	for {
		frand.Read(b)
		if p, err = FromSecretBytes(b); err == nil {
			return
		}
	}
}

// FromSecretBytes imports a 32 byte secret key. The scalar must be in the
// range [1, n-1] where n is the order of the curve.
func FromSecretBytes(b []byte) (p *Pair, err error) {
	if len(b) != SecretLen {
		err = fmt.Errorf("%w: expected %d bytes, got %d", ErrInvalidKey,
			SecretLen, len(b))
		return
	}
	var s btcec.ModNScalar
	if overflow := s.SetByteSlice(b); overflow {
		err = fmt.Errorf("%w: scalar out of curve range", ErrInvalidKey)
		return
	}
	if s.IsZero() {
		err = fmt.Errorf("%w: zero scalar", ErrInvalidKey)
		return
	}
	sec, pub := btcec.PrivKeyFromBytes(b)
	p = &Pair{sec: sec}
	copy(p.pub[:], schnorr.SerializePubKey(pub))
	return
}

// FromSecretHex imports a secret key given as 64 hex characters.
func FromSecretHex(s string) (p *Pair, err error) {
	var b []byte
	if b, err = hex.Dec(s); err != nil {
		err = fmt.Errorf("%w: %v", ErrInvalidKey, err)
		return
	}
	return FromSecretBytes(b)
}

// PubKey returns the x-only public key.
func (p *Pair) PubKey() PubKey { return p.pub }

// SecretHex returns the secret key in hex.
func (p *Pair) SecretHex() string { return hex.Enc(p.sec.Serialize()) }

// SecretBytes returns a copy of the 32 byte secret key.
func (p *Pair) SecretBytes() []byte { return p.sec.Serialize() }

// Sign produces a schnorr signature on a 32 byte message hash. The nonce is
// derived deterministically from the key and the message.
func (p *Pair) Sign(hash [32]byte) (sig Signature, err error) {
	var s *schnorr.Signature
	if s, err = schnorr.Sign(p.sec, hash[:]); chk.E(err) {
		return
	}
	copy(sig[:], s.Serialize())
	return
}

// Verify checks sig on hash against the public key pk.
func Verify(sig Signature, hash [32]byte, pk PubKey) (err error) {
	var pub *btcec.PublicKey
	if pub, err = schnorr.ParsePubKey(pk[:]); chk.D(err) {
		return fmt.Errorf("%w: invalid pubkey %s: %v", ErrSignatureInvalid,
			pk, err)
	}
	var s *schnorr.Signature
	if s, err = schnorr.ParseSignature(sig[:]); chk.D(err) {
		return fmt.Errorf("%w: %v", ErrSignatureInvalid, err)
	}
	if !s.Verify(hash[:], pub) {
		log.D.F("signature %s does not verify for %s", sig, pk)
		return ErrSignatureInvalid
	}
	return
}
