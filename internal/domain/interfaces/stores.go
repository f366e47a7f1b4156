package interfaces

import (
	"context"

	domaintypes "walletid/internal/domain/types"
)

// IdentityStore persists the public wallet identity. It never sees private keys.
type IdentityStore interface {
	SaveIdentity(id domaintypes.Identity) error
	LoadIdentity() (domaintypes.Identity, bool, error)
}

// GrantStore is the issuer-side registry of signed grants and revocations.
// Grant IDs are unique per issuer only, so every lookup is keyed by both.
type GrantStore interface {
	SaveGrant(ctx context.Context, rec domaintypes.GrantRecord) error
	LoadGrant(ctx context.Context, issuer domaintypes.DID, id string) (domaintypes.GrantRecord, bool, error)
	ListGrants(ctx context.Context) ([]domaintypes.GrantRecord, error)
	Revoke(ctx context.Context, issuer domaintypes.DID, id string) error
	IsRevoked(ctx context.Context, issuer domaintypes.DID, id string) (bool, error)
}
