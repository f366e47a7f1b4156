package types

import (
	"encoding/json"
	"fmt"
	"time"
)

// AccessGrantDraft is an access grant before it has been signed.
type AccessGrantDraft struct {
	ID          string
	Grantee     string
	Permissions []string
	ExpiresAt   time.Time
}

// AccessGrant is a signed, time-bounded authorization for a grantee.
//
// Permissions keep the caller's order; the signature covers the sorted,
// deduplicated set.
type AccessGrant struct {
	ID          string
	Grantee     string
	Permissions []string
	ExpiresAt   time.Time
	Signature   string // lower-case hex, 128 chars
}

// Draft returns the unsigned fields of g.
func (g AccessGrant) Draft() AccessGrantDraft {
	return AccessGrantDraft{
		ID:          g.ID,
		Grantee:     g.Grantee,
		Permissions: append([]string(nil), g.Permissions...),
		ExpiresAt:   g.ExpiresAt,
	}
}

// Expired reports whether the grant is past its expiry at now.
func (g AccessGrant) Expired(now time.Time) bool {
	return !now.Before(g.ExpiresAt)
}

type grantJSON struct {
	ID          string   `json:"id"`
	Grantee     string   `json:"grantee"`
	Permissions []string `json:"permissions"`
	ExpiresAt   *int64   `json:"expiresAt"`
	Signature   string   `json:"signature"`
}

// MarshalJSON encodes expiresAt as Unix milliseconds.
func (g AccessGrant) MarshalJSON() ([]byte, error) {
	perms := g.Permissions
	if perms == nil {
		perms = []string{}
	}
	ms := g.ExpiresAt.UnixMilli()
	return json.Marshal(grantJSON{
		ID:          g.ID,
		Grantee:     g.Grantee,
		Permissions: perms,
		ExpiresAt:   &ms,
		Signature:   g.Signature,
	})
}

// UnmarshalJSON mirrors MarshalJSON and rejects grants with missing fields.
func (g *AccessGrant) UnmarshalJSON(data []byte) error {
	var aux grantJSON
	if err := json.Unmarshal(data, &aux); err != nil {
		return fmt.Errorf("%w: grant: %v", ErrInvalidFormat, err)
	}
	if aux.ID == "" || aux.Grantee == "" || aux.ExpiresAt == nil || aux.Signature == "" {
		return fmt.Errorf("%w: grant requires id, grantee, expiresAt and signature", ErrInvalidFormat)
	}
	*g = AccessGrant{
		ID:          aux.ID,
		Grantee:     aux.Grantee,
		Permissions: aux.Permissions,
		ExpiresAt:   time.UnixMilli(*aux.ExpiresAt).UTC(),
		Signature:   aux.Signature,
	}
	return nil
}

// GrantStatus is the outcome of checking a stored or presented grant.
type GrantStatus struct {
	Valid   bool `json:"valid"`
	Expired bool `json:"expired"`
	Revoked bool `json:"revoked"`
}

// OK reports whether the grant is currently usable.
func (s GrantStatus) OK() bool { return s.Valid && !s.Expired && !s.Revoked }

// GrantRecord is a grant as tracked by the issuer's registry.
type GrantRecord struct {
	Grant     AccessGrant
	IssuerDID DID
	IssuedAt  time.Time
	RevokedAt *time.Time
}
