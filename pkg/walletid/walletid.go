// Package walletid is the public API of the wallet identity core: BIP-39
// mnemonics, Ed25519 keys derived from them, did:key identifiers, message
// signatures, vault encryption keys and signed access grants.
//
// Every function is pure and safe for concurrent use. Verification results
// are booleans; errors are reserved for malformed input and match the
// sentinels below with errors.Is.
package walletid

import (
	"encoding/hex"
	"time"

	"walletid/internal/crypto"
	"walletid/internal/domain"
)

type (
	DID              = domain.DID
	DIDEncoding      = domain.DIDEncoding
	DIDCodec         = crypto.DIDCodec
	Ed25519Seed      = domain.Ed25519Seed
	Ed25519Public    = domain.Ed25519Public
	KeyPair          = domain.KeyPair
	Identity         = domain.Identity
	AccessGrantDraft = domain.AccessGrantDraft
	AccessGrant      = domain.AccessGrant
)

const (
	EncodingBase58BTC = domain.DIDEncodingBase58BTC
	EncodingHex       = domain.DIDEncodingHex

	DefaultEntropyBits = crypto.DefaultEntropyBits
	StrongEntropyBits  = crypto.StrongEntropyBits
)

var (
	ErrInvalidMnemonic = domain.ErrInvalidMnemonic
	ErrInvalidFormat   = domain.ErrInvalidFormat
	ErrCryptoOperation = domain.ErrCryptoOperation
	ErrInvalidEntropy  = domain.ErrInvalidEntropy
)

// GenerateMnemonic returns a new 12-word (128 bits) or 24-word (256 bits)
// recovery phrase.
func GenerateMnemonic(entropyBits int) (string, error) {
	return crypto.GenerateMnemonic(entropyBits)
}

// ValidateMnemonic reports whether phrase has 12 or 24 wordlist words and a
// valid checksum.
func ValidateMnemonic(phrase string) bool { return crypto.ValidateMnemonic(phrase) }

// DeriveKeysFromMnemonic derives the Ed25519 key pair for phrase. The caller
// owns the result and should call Wipe when done.
func DeriveKeysFromMnemonic(phrase string) (KeyPair, error) {
	return crypto.DeriveKeyPair(phrase)
}

// NewDIDCodec returns a codec for the given encoding; "" selects base58btc.
func NewDIDCodec(enc DIDEncoding) (DIDCodec, error) { return crypto.NewDIDCodec(enc) }

// CreateDIDFromPublicKey returns the base58btc did:key for pub.
func CreateDIDFromPublicKey(pub Ed25519Public) DID { return DIDCodec{}.Encode(pub) }

// PublicKeyFromDID is the inverse of CreateDIDFromPublicKey.
func PublicKeyFromDID(did DID) (Ed25519Public, error) { return DIDCodec{}.Decode(did) }

// SignMessage signs message and returns the 128-character hex signature.
func SignMessage(priv Ed25519Seed, message []byte) string {
	return crypto.SignHex(priv, message)
}

// VerifySignature reports whether sigHex is a valid signature of message by
// the 32-byte key pub. It never fails; malformed input is simply invalid.
func VerifySignature(pub []byte, message []byte, sigHex string) bool {
	sig, err := hex.DecodeString(sigHex)
	if err != nil {
		return false
	}
	return crypto.Verify(pub, message, sig)
}

// VerifySignatureHex is VerifySignature with a hex-encoded public key.
func VerifySignatureHex(pubHex string, message []byte, sigHex string) bool {
	return crypto.VerifyHex(pubHex, message, sigHex)
}

// DeriveEncryptionKey derives the 32-byte vault key for password.
func DeriveEncryptionKey(priv Ed25519Seed, password string) ([32]byte, error) {
	return crypto.DeriveEncryptionKey(priv, password)
}

// NewIdentity builds the shareable identity for pub.
func NewIdentity(pub Ed25519Public, createdAt time.Time) Identity {
	return DIDCodec{}.NewIdentity(pub, createdAt)
}

// ExportIdentity encodes id as JSON with exactly did, publicKey and createdAt.
func ExportIdentity(id Identity) (string, error) {
	b, err := crypto.MarshalIdentity(id)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// ImportIdentity decodes an exported identity. It fails with ErrInvalidFormat
// if a field is missing, the key is not 64 hex characters, or the DID does
// not encode the key.
func ImportIdentity(data string) (Identity, error) {
	return DIDCodec{}.ParseIdentity([]byte(data))
}

// SignAccessGrant signs draft with priv. An empty ID is replaced by a UUID.
func SignAccessGrant(draft AccessGrantDraft, priv Ed25519Seed) (AccessGrant, error) {
	return crypto.SignGrant(draft, priv)
}

// VerifyAccessGrant reports whether g was signed by issuer. Expiry is not
// considered; see AccessGrant.Expired.
func VerifyAccessGrant(g AccessGrant, issuer Ed25519Public) bool {
	return crypto.VerifyGrant(g, issuer)
}
