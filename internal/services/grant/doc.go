// Package grant issues and checks signed access grants.
//
// Issuing signs a draft with the session key and records it in the
// domain.GrantStore. Checking verifies the signature against the issuer's
// DID, then expiry, then revocation in the local registry.
package grant
