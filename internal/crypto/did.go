package crypto

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/mr-tron/base58"

	"walletid/internal/domain"
)

const (
	// DIDKeyPrefix is the did:key method prefix including the multibase marker.
	DIDKeyPrefix = "did:key:z"
)

// ed25519PubTag is the multicodec varint for "ed25519-pub" (0xed).
var ed25519PubTag = [2]byte{0xed, 0x01}

// DIDCodec turns Ed25519 public keys into did:key identifiers and back.
//
// The zero value uses base58btc, the form every did:key resolver accepts.
// DIDEncodingHex reproduces the legacy hexadecimal identifiers; both sides of
// an exchange must agree on the encoding.
type DIDCodec struct {
	Encoding domain.DIDEncoding
}

// NewDIDCodec returns a codec for enc. An empty enc selects base58btc.
func NewDIDCodec(enc domain.DIDEncoding) (DIDCodec, error) {
	if enc == "" {
		enc = domain.DIDEncodingBase58BTC
	}
	if !enc.Valid() {
		return DIDCodec{}, fmt.Errorf("%w: unknown did encoding %q", domain.ErrInvalidFormat, enc)
	}
	return DIDCodec{Encoding: enc}, nil
}

func (c DIDCodec) encoding() domain.DIDEncoding {
	if c.Encoding == "" {
		return domain.DIDEncodingBase58BTC
	}
	return c.Encoding
}

// Encode returns did:key:z<encoded(0xed01 || pub)>.
func (c DIDCodec) Encode(pub domain.Ed25519Public) domain.DID {
	buf := make([]byte, 0, len(ed25519PubTag)+len(pub))
	buf = append(buf, ed25519PubTag[:]...)
	buf = append(buf, pub[:]...)

	var body string
	if c.encoding() == domain.DIDEncodingHex {
		body = hex.EncodeToString(buf)
	} else {
		body = base58.Encode(buf)
	}
	return domain.DID(DIDKeyPrefix + body)
}

// Decode is the inverse of Encode. It fails with domain.ErrInvalidFormat when
// the prefix, the text encoding, the type tag or the key length is wrong.
func (c DIDCodec) Decode(did domain.DID) (domain.Ed25519Public, error) {
	var pub domain.Ed25519Public

	s := string(did)
	if !strings.HasPrefix(s, DIDKeyPrefix) {
		return pub, fmt.Errorf("%w: did must start with %q", domain.ErrInvalidFormat, DIDKeyPrefix)
	}
	body := s[len(DIDKeyPrefix):]

	var (
		raw []byte
		err error
	)
	if c.encoding() == domain.DIDEncodingHex {
		raw, err = hex.DecodeString(body)
	} else {
		raw, err = base58.Decode(body)
	}
	if err != nil {
		return pub, fmt.Errorf("%w: did body: %v", domain.ErrInvalidFormat, err)
	}
	if len(raw) != len(ed25519PubTag)+len(pub) {
		return pub, fmt.Errorf("%w: did key length %d", domain.ErrInvalidFormat, len(raw))
	}
	if raw[0] != ed25519PubTag[0] || raw[1] != ed25519PubTag[1] {
		return pub, fmt.Errorf("%w: did is not an ed25519 key", domain.ErrInvalidFormat)
	}
	copy(pub[:], raw[len(ed25519PubTag):])
	return pub, nil
}
