package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"walletid/internal/crypto"
)

func mnemonicCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mnemonic",
		Short: "Generate or check BIP-39 recovery phrases",
	}
	cmd.AddCommand(mnemonicNewCmd(), mnemonicCheckCmd())
	return cmd
}

func mnemonicNewCmd() *cobra.Command {
	var words int
	cmd := &cobra.Command{
		Use:   "new",
		Short: "Print a fresh recovery phrase",
		RunE: func(cmd *cobra.Command, args []string) error {
			bits, err := entropyForWords(words)
			if err != nil {
				return err
			}
			phrase, err := crypto.GenerateMnemonic(bits)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), phrase)
			return nil
		},
	}
	cmd.Flags().IntVar(&words, "words", 12, "phrase length: 12 or 24")
	return cmd
}

func mnemonicCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Validate a recovery phrase (word count, wordlist and checksum)",
		RunE: func(cmd *cobra.Command, args []string) error {
			phrase, err := readMnemonic(cmd)
			if err != nil {
				return err
			}
			if !crypto.ValidateMnemonic(phrase) {
				return errors.New("invalid recovery phrase")
			}
			fmt.Fprintln(cmd.OutOrStdout(), "valid")
			return nil
		},
	}
}

func entropyForWords(words int) (int, error) {
	switch words {
	case 12:
		return crypto.DefaultEntropyBits, nil
	case 24:
		return crypto.StrongEntropyBits, nil
	default:
		return 0, fmt.Errorf("--words must be 12 or 24, got %d", words)
	}
}
