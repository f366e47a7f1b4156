package crypto

import (
	"crypto/sha256"

	"golang.org/x/crypto/pbkdf2"

	"walletid/internal/domain"
	"walletid/internal/util/memzero"
)

const (
	// VaultKeyIterations is the PBKDF2 round count for every vault key.
	VaultKeyIterations = 100_000
	// VaultKeyBytes is the length of a derived vault key.
	VaultKeyBytes = 32
)

// vaultKeyHash is the PBKDF2 PRF for every vault key.
var vaultKeyHash = sha256.New

// DeriveEncryptionKey binds the private key and the user's password into a
// symmetric vault key:
//
//	PBKDF2-HMAC-SHA256(priv || utf8(password), SHA-256(priv), 100000, 32)
//
// The salt depends on the private key only, so the same pair always yields
// the same key and nothing extra needs storing next to the vault. A wrong
// password is not detected here; it produces a different key. The error is
// always nil today and is kept so callers need not change if the KDF does.
func DeriveEncryptionKey(priv domain.Ed25519Seed, password string) ([VaultKeyBytes]byte, error) {
	var out [VaultKeyBytes]byte

	ikm := make([]byte, 0, len(priv)+len(password))
	ikm = append(ikm, priv[:]...)
	ikm = append(ikm, password...)
	defer memzero.Zero(ikm)

	salt := sha256.Sum256(priv[:])
	key := pbkdf2.Key(ikm, salt[:], VaultKeyIterations, VaultKeyBytes, vaultKeyHash)
	copy(out[:], key)
	memzero.Zero(key)
	return out, nil
}
