package crypto

import (
	"crypto/ed25519"
	"encoding/hex"

	"walletid/internal/domain"
	"walletid/internal/util/memzero"
)

// Sign signs msg with priv. The message is signed exactly as given; callers
// canonicalize structured data first.
func Sign(priv domain.Ed25519Seed, msg []byte) domain.Signature {
	sk := ed25519.NewKeyFromSeed(priv[:])
	defer memzero.Zero(sk)

	var sig domain.Signature
	copy(sig[:], ed25519.Sign(sk, msg))
	return sig
}

// SignHex signs msg and returns the signature as lower-case hex.
func SignHex(priv domain.Ed25519Seed, msg []byte) string {
	sig := Sign(priv, msg)
	return hex.EncodeToString(sig[:])
}

// Verify reports whether sig is a valid signature of msg by pub.
// Wrong-length keys or signatures yield false rather than a panic.
func Verify(pub, msg, sig []byte) bool {
	if len(pub) != ed25519.PublicKeySize || len(sig) != ed25519.SignatureSize {
		return false
	}
	return ed25519.Verify(ed25519.PublicKey(pub), msg, sig)
}

// VerifyHex is Verify for hex-encoded keys and signatures.
func VerifyHex(pubHex string, msg []byte, sigHex string) bool {
	pub, err := hex.DecodeString(pubHex)
	if err != nil {
		return false
	}
	sig, err := hex.DecodeString(sigHex)
	if err != nil {
		return false
	}
	return Verify(pub, msg, sig)
}
