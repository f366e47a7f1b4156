package crypto

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"walletid/internal/domain"
)

// NewIdentity builds the shareable identity for pub.
func (c DIDCodec) NewIdentity(pub domain.Ed25519Public, createdAt time.Time) domain.Identity {
	return domain.Identity{
		DID:       c.Encode(pub),
		PublicKey: PublicKeyHex(pub),
		CreatedAt: createdAt.UTC(),
	}
}

// MarshalIdentity encodes id as {"did","publicKey","createdAt"} with createdAt
// in RFC 3339.
func MarshalIdentity(id domain.Identity) ([]byte, error) {
	b, err := json.Marshal(id)
	if err != nil {
		return nil, fmt.Errorf("%w: encode identity: %v", domain.ErrInvalidFormat, err)
	}
	return b, nil
}

type identityJSON struct {
	DID       *string    `json:"did"`
	PublicKey *string    `json:"publicKey"`
	CreatedAt *time.Time `json:"createdAt"`
}

// ParseIdentity decodes an exported identity. The input must hold exactly one
// JSON object, every field must be present, the public key must be 64 hex
// characters and the DID must encode that key.
func (c DIDCodec) ParseIdentity(data []byte) (domain.Identity, error) {
	var raw identityJSON
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&raw); err != nil {
		return domain.Identity{}, fmt.Errorf("%w: identity: %v", domain.ErrInvalidFormat, err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return domain.Identity{}, fmt.Errorf("%w: trailing data after identity", domain.ErrInvalidFormat)
	}
	if raw.DID == nil || raw.PublicKey == nil || raw.CreatedAt == nil {
		return domain.Identity{}, fmt.Errorf("%w: identity requires did, publicKey and createdAt", domain.ErrInvalidFormat)
	}
	pub, err := ParsePublicKeyHex(*raw.PublicKey)
	if err != nil {
		return domain.Identity{}, err
	}
	didPub, err := c.Decode(domain.DID(*raw.DID))
	if err != nil {
		return domain.Identity{}, err
	}
	if didPub != pub {
		return domain.Identity{}, fmt.Errorf("%w: did does not match publicKey", domain.ErrInvalidFormat)
	}
	return domain.Identity{
		DID:       domain.DID(*raw.DID),
		PublicKey: PublicKeyHex(pub),
		CreatedAt: raw.CreatedAt.UTC(),
	}, nil
}
