package crypto

import (
	"encoding/hex"
	"fmt"

	"walletid/internal/domain"
)

// PublicKeyHex returns the lower-case hex form of pub.
func PublicKeyHex(pub domain.Ed25519Public) string { return hex.EncodeToString(pub[:]) }

// ParsePublicKeyHex decodes a 64-character hex public key.
func ParsePublicKeyHex(s string) (domain.Ed25519Public, error) {
	var pub domain.Ed25519Public
	b, err := hex.DecodeString(s)
	if err != nil {
		return pub, fmt.Errorf("%w: public key hex: %v", domain.ErrInvalidFormat, err)
	}
	if len(b) != len(pub) {
		return pub, fmt.Errorf("%w: public key must be %d bytes, got %d", domain.ErrInvalidFormat, len(pub), len(b))
	}
	copy(pub[:], b)
	return pub, nil
}
