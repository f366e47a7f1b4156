package crypto

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"walletid/internal/domain"
)

// canonicalGrant fixes the field order of the signed payload. Do not reorder.
type canonicalGrant struct {
	ID          string   `json:"id"`
	Grantee     string   `json:"grantee"`
	Permissions []string `json:"permissions"`
	ExpiresAt   int64    `json:"expiresAt"`
}

// CanonicalPermissions returns perms deduplicated and sorted ascending
// (byte-wise). The result is never nil.
func CanonicalPermissions(perms []string) []string {
	out := make([]string, 0, len(perms))
	out = append(out, perms...)
	slices.Sort(out)
	return slices.Compact(out)
}

// CanonicalGrantPayload is the byte string a grant signature covers:
//
//	{"id":…,"grantee":…,"permissions":[sorted, unique],"expiresAt":<unix ms>}
//
// compact JSON, no HTML escaping and no trailing newline. Strings that are
// not valid UTF-8 are rejected: the encoder would coerce them to U+FFFD and
// distinct grants would share one payload.
func CanonicalGrantPayload(d domain.AccessGrantDraft) ([]byte, error) {
	if strings.TrimSpace(d.ID) == "" || strings.TrimSpace(d.Grantee) == "" {
		return nil, fmt.Errorf("%w: grant id and grantee are required", domain.ErrInvalidFormat)
	}
	if !utf8.ValidString(d.ID) || !utf8.ValidString(d.Grantee) {
		return nil, fmt.Errorf("%w: grant id and grantee must be valid UTF-8", domain.ErrInvalidFormat)
	}
	for _, p := range d.Permissions {
		if !utf8.ValidString(p) {
			return nil, fmt.Errorf("%w: permission %q is not valid UTF-8", domain.ErrInvalidFormat, p)
		}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	err := enc.Encode(canonicalGrant{
		ID:          d.ID,
		Grantee:     d.Grantee,
		Permissions: CanonicalPermissions(d.Permissions),
		ExpiresAt:   d.ExpiresAt.UnixMilli(),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: encode grant: %v", domain.ErrInvalidFormat, err)
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte{'\n'}), nil
}

// SignGrant signs the canonical form of d with priv. A draft without an ID
// is given a random UUID. The returned grant keeps the caller's permission
// order.
func SignGrant(d domain.AccessGrantDraft, priv domain.Ed25519Seed) (domain.AccessGrant, error) {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	payload, err := CanonicalGrantPayload(d)
	if err != nil {
		return domain.AccessGrant{}, err
	}
	return domain.AccessGrant{
		ID:          d.ID,
		Grantee:     d.Grantee,
		Permissions: append([]string(nil), d.Permissions...),
		ExpiresAt:   d.ExpiresAt,
		Signature:   SignHex(priv, payload),
	}, nil
}

// VerifyGrant reports whether g carries a valid signature by issuer over its
// canonical payload. Expiry and revocation are not considered here.
func VerifyGrant(g domain.AccessGrant, issuer domain.Ed25519Public) bool {
	payload, err := CanonicalGrantPayload(g.Draft())
	if err != nil {
		return false
	}
	sig, err := hex.DecodeString(g.Signature)
	if err != nil {
		return false
	}
	return Verify(issuer[:], payload, sig)
}
