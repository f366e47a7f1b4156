package crypto

import (
	"crypto/ed25519"
	"crypto/sha256"

	"github.com/tyler-smith/go-bip39"

	"walletid/internal/domain"
	"walletid/internal/util/memzero"
)

// SeedBytes is the length of a BIP-39 seed.
const SeedBytes = 64

// DeriveSeed expands a validated phrase into the 64-byte BIP-39 seed
// (PBKDF2-HMAC-SHA512, 2048 rounds, salt "mnemonic"). No passphrase is mixed in.
//
// The caller owns the returned slice and should wipe it after use.
func DeriveSeed(mnemonic string) ([]byte, error) {
	if !ValidateMnemonic(mnemonic) {
		return nil, domain.ErrInvalidMnemonic
	}
	return bip39.NewSeed(NormalizeMnemonic(mnemonic), ""), nil
}

// DeriveKeyPair derives the Ed25519 key pair for mnemonic.
//
// The private key is SHA-256(seed), used as the Ed25519 seed; the public key
// follows from it. The same phrase always yields the same pair.
func DeriveKeyPair(mnemonic string) (domain.KeyPair, error) {
	seed, err := DeriveSeed(mnemonic)
	if err != nil {
		return domain.KeyPair{}, err
	}
	defer memzero.Zero(seed)

	var kp domain.KeyPair
	kp.Private = sha256.Sum256(seed)
	kp.Public = PublicFromPrivate(kp.Private)
	return kp, nil
}

// PublicFromPrivate computes the Ed25519 public key for a private seed.
func PublicFromPrivate(priv domain.Ed25519Seed) domain.Ed25519Public {
	sk := ed25519.NewKeyFromSeed(priv[:])
	defer memzero.Zero(sk)

	var pub domain.Ed25519Public
	copy(pub[:], sk[ed25519.SeedSize:])
	return pub
}
