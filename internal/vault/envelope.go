package vault

import (
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"

	"walletid/internal/crypto"
	"walletid/internal/domain"
)

const (
	// The current supported version of the sealed envelope format.
	envelopeFormatVersion = 1
)

var (
	// ErrDecrypt is returned when the key is wrong (usually a wrong password)
	// or the ciphertext has been modified.
	ErrDecrypt = errors.New("wrong password or corrupted vault")
)

// envelope is the on-disk JSON structure holding the nonce and ciphertext.
type envelope struct {
	V      int    `json:"v"`
	Alg    string `json:"alg"`
	Nonce  []byte `json:"nonce"`
	Cipher []byte `json:"cipher"`
}

const algXChaCha = "xchacha20poly1305"

// Key is a vault key as produced by crypto.DeriveEncryptionKey.
type Key = [crypto.VaultKeyBytes]byte

// Seal encrypts plaintext under key and returns the JSON envelope.
func Seal(key Key, plaintext []byte) ([]byte, error) {
	aead, err := chacha20poly1305.NewX(key[:])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrCryptoOperation, err)
	}
	nonce := make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("%w: nonce: %v", domain.ErrCryptoOperation, err)
	}
	ct := aead.Seal(nil, nonce, plaintext, additionalData(envelopeFormatVersion))
	return json.Marshal(envelope{
		V:      envelopeFormatVersion,
		Alg:    algXChaCha,
		Nonce:  nonce,
		Cipher: ct,
	})
}

// Open decrypts an envelope produced by Seal.
func Open(key Key, blob []byte) ([]byte, error) {
	var env envelope
	if err := json.Unmarshal(blob, &env); err != nil {
		return nil, fmt.Errorf("%w: vault envelope: %v", domain.ErrInvalidFormat, err)
	}
	if env.V != envelopeFormatVersion || env.Alg != algXChaCha {
		return nil, fmt.Errorf("%w: unsupported vault version %d (%s)", domain.ErrInvalidFormat, env.V, env.Alg)
	}
	aead, err := chacha20poly1305.NewX(key[:])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrCryptoOperation, err)
	}
	if len(env.Nonce) != aead.NonceSize() {
		return nil, fmt.Errorf("%w: nonce length %d", domain.ErrInvalidFormat, len(env.Nonce))
	}
	pt, err := aead.Open(nil, env.Nonce, env.Cipher, additionalData(env.V))
	if err != nil {
		return nil, ErrDecrypt
	}
	return pt, nil
}

func additionalData(version int) []byte {
	return []byte(fmt.Sprintf("walletid/vault/v%d", version))
}
