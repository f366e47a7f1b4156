package types

// DID is a did:key decentralized identifier.
type DID string

// String returns the string form of the DID.
func (d DID) String() string { return string(d) }

// Fingerprint is a short identifier for public keys presented to users.
type Fingerprint string

// String returns the string form of the fingerprint.
func (f Fingerprint) String() string { return string(f) }

// DIDEncoding selects the text encoding used after the multibase marker.
type DIDEncoding string

const (
	// DIDEncodingBase58BTC is the standard did:key multibase base58btc form.
	DIDEncodingBase58BTC DIDEncoding = "base58btc"
	// DIDEncodingHex is the legacy hexadecimal form. It is not readable by
	// other did:key resolvers.
	DIDEncodingHex DIDEncoding = "hex"
)

// String returns the string form of the encoding.
func (e DIDEncoding) String() string { return string(e) }

// Valid reports whether e is a known encoding.
func (e DIDEncoding) Valid() bool {
	return e == DIDEncodingBase58BTC || e == DIDEncodingHex
}

// IdentityState is a step in the lifecycle of the in-memory identity.
type IdentityState int

const (
	StateUnset IdentityState = iota
	StateGenerated
	StateDerived
	StateExported
	StateWiped
)

// String returns a lower-case name for the state.
func (s IdentityState) String() string {
	switch s {
	case StateUnset:
		return "unset"
	case StateGenerated:
		return "generated"
	case StateDerived:
		return "derived"
	case StateExported:
		return "exported"
	case StateWiped:
		return "wiped"
	default:
		return "unknown"
	}
}
