package types

import "time"

// Identity is the shareable wallet identity. It never holds private keys.
type Identity struct {
	DID       DID       `json:"did"`
	PublicKey string    `json:"publicKey"` // lower-case hex, 64 chars
	CreatedAt time.Time `json:"createdAt"`
}
