// Package identity manages creation, restoration and export of the wallet
// identity.
//
// A mnemonic is turned into the Ed25519 key pair, the key pair is installed
// in the process session, and only the public identity (DID, public key,
// creation time) is persisted via the domain.IdentityStore. The mnemonic and
// the private key never reach the store.
package identity
