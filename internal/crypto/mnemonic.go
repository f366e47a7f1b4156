package crypto

import (
	"fmt"
	"strings"

	"github.com/tyler-smith/go-bip39"

	"walletid/internal/domain"
	"walletid/internal/util/memzero"
)

const (
	// DefaultEntropyBits yields a 12-word phrase.
	DefaultEntropyBits = 128
	// StrongEntropyBits yields a 24-word phrase.
	StrongEntropyBits = 256
)

// GenerateMnemonic returns a new BIP-39 phrase carrying entropyBits of
// entropy. Only 128 (12 words) and 256 (24 words) are accepted.
func GenerateMnemonic(entropyBits int) (string, error) {
	if entropyBits != DefaultEntropyBits && entropyBits != StrongEntropyBits {
		return "", fmt.Errorf("%w: got %d", domain.ErrInvalidEntropy, entropyBits)
	}
	entropy, err := bip39.NewEntropy(entropyBits)
	if err != nil {
		return "", fmt.Errorf("%w: entropy: %v", domain.ErrCryptoOperation, err)
	}
	defer memzero.Zero(entropy)

	phrase, err := bip39.NewMnemonic(entropy)
	if err != nil {
		return "", fmt.Errorf("%w: mnemonic: %v", domain.ErrCryptoOperation, err)
	}
	return phrase, nil
}

// ValidateMnemonic reports whether phrase is a 12 or 24 word BIP-39 phrase
// with a correct checksum. It never fails; malformed input is simply false.
func ValidateMnemonic(phrase string) bool {
	words := strings.Fields(phrase)
	if len(words) != 12 && len(words) != 24 {
		return false
	}
	return bip39.IsMnemonicValid(strings.Join(words, " "))
}

// NormalizeMnemonic collapses runs of whitespace so that the same words
// always produce the same seed.
func NormalizeMnemonic(phrase string) string {
	return strings.Join(strings.Fields(phrase), " ")
}
