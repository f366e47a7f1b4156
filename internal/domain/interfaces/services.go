package interfaces

import (
	"context"

	domaintypes "walletid/internal/domain/types"
)

// IdentityService creates, restores, exports and publishes the wallet identity.
type IdentityService interface {
	CreateIdentity(entropyBits int) (mnemonic string, id domaintypes.Identity, err error)
	RestoreIdentity(mnemonic string) (domaintypes.Identity, error)
	LoadIdentity() (domaintypes.Identity, bool, error)
	ExportIdentity() ([]byte, error)
	ImportIdentity(data []byte) (domaintypes.Identity, error)
	PublishIdentity(ctx context.Context) (cid string, url string, err error)
}

// GrantService issues, checks and revokes access grants.
type GrantService interface {
	IssueGrant(ctx context.Context, draft domaintypes.AccessGrantDraft) (domaintypes.AccessGrant, error)
	CheckGrant(
		ctx context.Context,
		grant domaintypes.AccessGrant,
		issuer domaintypes.DID,
	) (domaintypes.GrantStatus, error)
	RevokeGrant(ctx context.Context, issuer domaintypes.DID, id string) error
	ListGrants(ctx context.Context) ([]domaintypes.GrantRecord, error)
}
