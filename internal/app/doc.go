// Package app wires application dependencies for the CLI.
//
// It loads Config (defaults, then <home>/config.yaml, then WALLETID_*
// environment variables), builds the logger, and constructs the stores,
// session, metrics, gateway client and services exposed via Wire.
package app
