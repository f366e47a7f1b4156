// Package store provides persistence for the wallet's public data.
//
// It contains concrete implementations of the domain storage interfaces:
//   - The public wallet identity, as JSON on disk (IdentityFileStore)
//   - The issuer's grant registry with revocations, in SQLite (GrantSQLiteStore)
//
// Nothing here ever receives a mnemonic or a private key. File writes go
// through a temp file and rename; all methods are safe for concurrent use.
package store
