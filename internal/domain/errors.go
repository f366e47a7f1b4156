package domain

import (
	"errors"

	types "walletid/internal/domain/types"
)

// Error kinds surfaced by the wallet core. Match them with errors.Is.
var (
	// ErrInvalidMnemonic is returned when a phrase fails word-count, wordlist
	// or checksum validation.
	ErrInvalidMnemonic = errors.New("invalid mnemonic")
	// ErrInvalidFormat is returned for malformed DIDs, identity or grant payloads.
	ErrInvalidFormat = types.ErrInvalidFormat
	// ErrCryptoOperation is returned when an underlying primitive fails.
	ErrCryptoOperation = errors.New("crypto operation failed")
	// ErrInvalidEntropy is returned for entropy sizes other than 128 or 256 bits.
	ErrInvalidEntropy = errors.New("entropy must be 128 or 256 bits")

	ErrNoSession         = errors.New("no active session")
	ErrNoIdentity        = errors.New("no identity stored")
	ErrGrantNotFound     = errors.New("grant not found")
	ErrGrantExpired      = errors.New("grant expired")
	ErrGrantRevoked      = errors.New("grant revoked")
	ErrMissingCredential = errors.New("storage credential is required")
)
