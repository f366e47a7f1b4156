package types

import (
	"errors"

	"walletid/internal/util/memzero"
)

// Ed25519Seed is the 32-byte Ed25519 private scalar seed.
type Ed25519Seed [32]byte

// IsZero reports whether the seed has been wiped or never set.
func (k *Ed25519Seed) IsZero() bool { return memzero.IsZero(k[:]) }

// Ed25519Public is an Ed25519 signing public key.
type Ed25519Public [32]byte

// Signature is a detached Ed25519 signature.
type Signature [64]byte

// errPrivateMarshal is returned when something tries to serialise a KeyPair.
var errPrivateMarshal = errors.New("key pair holds private material and cannot be serialised")

// KeyPair is the signing key pair derived from a mnemonic.
//
// It deliberately carries no JSON tags and refuses to marshal; export the
// public half through Identity instead.
type KeyPair struct {
	Private Ed25519Seed
	Public  Ed25519Public
}

// MarshalJSON always fails so the private key never reaches an export payload.
func (KeyPair) MarshalJSON() ([]byte, error) { return nil, errPrivateMarshal }

// MarshalText always fails for the same reason as MarshalJSON.
func (KeyPair) MarshalText() ([]byte, error) { return nil, errPrivateMarshal }

// Wipe zeroes the private half in place.
func (kp *KeyPair) Wipe() { memzero.Zero(kp.Private[:]) }
