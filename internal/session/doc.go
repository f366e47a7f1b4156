// Package session holds the single live private key of the signed-in user.
//
// A Context moves through Unset -> Generated -> Derived -> Exported -> Wiped.
// SetSession installs a derived key pair, ClearSession zeroes it. Every
// signing helper works on the key while holding a read lock, so callers never
// receive a copy of the private key.
package session
