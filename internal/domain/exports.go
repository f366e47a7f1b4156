package domain

import (
	interfaces "walletid/internal/domain/interfaces"
	types "walletid/internal/domain/types"
)

// Type aliases expose domain types from the types subpackage for compact imports.
type (
	DID              = types.DID
	DIDEncoding      = types.DIDEncoding
	Fingerprint      = types.Fingerprint
	IdentityState    = types.IdentityState
	Ed25519Seed      = types.Ed25519Seed
	Ed25519Public    = types.Ed25519Public
	Signature        = types.Signature
	KeyPair          = types.KeyPair
	Identity         = types.Identity
	AccessGrantDraft = types.AccessGrantDraft
	AccessGrant      = types.AccessGrant
	GrantStatus      = types.GrantStatus
	GrantRecord      = types.GrantRecord
)

// Interface aliases expose domain interfaces from the interfaces subpackage.
type (
	IdentityService = interfaces.IdentityService
	GrantService    = interfaces.GrantService
	IdentityStore   = interfaces.IdentityStore
	GrantStore      = interfaces.GrantStore
	Uploader        = interfaces.Uploader
)

const (
	DIDEncodingBase58BTC = types.DIDEncodingBase58BTC
	DIDEncodingHex       = types.DIDEncodingHex

	StateUnset     = types.StateUnset
	StateGenerated = types.StateGenerated
	StateDerived   = types.StateDerived
	StateExported  = types.StateExported
	StateWiped     = types.StateWiped
)
