package main

import (
	"os"

	"walletid/cmd/walletid/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
