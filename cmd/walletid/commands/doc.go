// Package commands implements the walletid CLI commands (mnemonic, identity,
// sign, verify, vault, grant, serve).
//
// Commands that need the private key read the recovery phrase each time from
// --mnemonic, WALLETID_MNEMONIC or the first line of stdin. The derived key
// lives only in the process session, which is wiped when the command
// returns or the process receives SIGINT/SIGTERM.
package commands
