// Package crypto implements the wallet identity primitives.
//
// Contents
//
//   - BIP-39 mnemonic generation and validation (GenerateMnemonic,
//     ValidateMnemonic)
//   - Deterministic seed and Ed25519 key pair derivation (DeriveSeed,
//     DeriveKeyPair)
//   - did:key encoding of public keys (DIDCodec)
//   - Ed25519 signing and verification (Sign, Verify and their hex forms)
//   - Two-factor vault key derivation (DeriveEncryptionKey)
//   - Canonical access-grant signing (CanonicalGrantPayload, SignGrant,
//     VerifyGrant)
//   - Short public-key fingerprints for display/logging (Fingerprint)
//
// # Notes
//
// Every function here is a pure computation over its arguments and is safe to
// call concurrently. Secrets are returned as fixed-size arrays from
// internal/domain; intermediate buffers are wiped with memzero before return.
package crypto
