package commands

import (
	"encoding/hex"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"walletid/internal/app"
	"walletid/internal/metrics"
	"walletid/internal/util/memzero"
	"walletid/internal/vault"
)

func vaultCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "vault",
		Short: "Derive the vault key and seal or open vault blobs",
	}
	cmd.AddCommand(vaultKeyCmd(), vaultSealCmd(), vaultOpenCmd())
	return cmd
}

// vaultKey derives the vault key for the unlocked identity and password.
func vaultKey(cmd *cobra.Command, passwordFlag string) (*app.Wire, vault.Key, error) {
	password, err := readPassword(passwordFlag)
	if err != nil {
		return nil, vault.Key{}, err
	}
	w, _, err := unlock(cmd)
	if err != nil {
		return nil, vault.Key{}, err
	}
	start := time.Now()
	var key vault.Key
	err = w.Session.Guard(func() error {
		var deriveErr error
		key, deriveErr = w.Session.EncryptionKey(password)
		return deriveErr
	})
	w.Metrics.Observe(metrics.OpVaultKey, start, err)
	return w, key, err
}

func vaultKeyCmd() *cobra.Command {
	var password string
	cmd := &cobra.Command{
		Use:   "key",
		Short: "Print the hex vault key for a password",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, key, err := vaultKey(cmd, password)
			if err != nil {
				return err
			}
			defer memzero.Zero(key[:])
			fmt.Fprintln(cmd.OutOrStdout(), hex.EncodeToString(key[:]))
			return nil
		},
	}
	cmd.Flags().StringVar(&password, "password", "", "vault password (default $WALLETID_PASSWORD)")
	return cmd
}

func vaultSealCmd() *cobra.Command {
	var password, in, out string
	cmd := &cobra.Command{
		Use:   "seal",
		Short: "Encrypt --in (or stdin) into a vault envelope",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(cmd, in)
			if err != nil {
				return err
			}
			_, key, err := vaultKey(cmd, password)
			if err != nil {
				return err
			}
			defer memzero.Zero(key[:])
			blob, err := vault.Seal(key, data)
			if err != nil {
				return err
			}
			return writeOutput(cmd, out, blob)
		},
	}
	cmd.Flags().StringVar(&password, "password", "", "vault password (default $WALLETID_PASSWORD)")
	cmd.Flags().StringVar(&in, "in", "", "plaintext file (default stdin)")
	cmd.Flags().StringVarP(&out, "out", "o", "", "envelope file (default stdout)")
	return cmd
}

func vaultOpenCmd() *cobra.Command {
	var password, in, out string
	cmd := &cobra.Command{
		Use:   "open",
		Short: "Decrypt a vault envelope from --in (or stdin)",
		RunE: func(cmd *cobra.Command, args []string) error {
			blob, err := readInput(cmd, in)
			if err != nil {
				return err
			}
			_, key, err := vaultKey(cmd, password)
			if err != nil {
				return err
			}
			defer memzero.Zero(key[:])
			data, err := vault.Open(key, blob)
			if err != nil {
				return err
			}
			return writeOutput(cmd, out, data)
		},
	}
	cmd.Flags().StringVar(&password, "password", "", "vault password (default $WALLETID_PASSWORD)")
	cmd.Flags().StringVar(&in, "in", "", "envelope file (default stdin)")
	cmd.Flags().StringVarP(&out, "out", "o", "", "plaintext file (default stdout)")
	return cmd
}
