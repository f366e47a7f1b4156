package commands

import (
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"walletid/internal/crypto"
	"walletid/internal/domain"
	"walletid/internal/metrics"
)

func signCmd() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "sign [message]",
		Short: "Sign a message (or --file) with the identity key",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			msg, err := messageFrom(cmd, args, file)
			if err != nil {
				return err
			}
			w, _, err := unlock(cmd)
			if err != nil {
				return err
			}
			start := time.Now()
			var sig domain.Signature
			err = w.Session.Guard(func() error {
				var signErr error
				sig, signErr = w.Session.Sign(msg)
				return signErr
			})
			w.Metrics.Observe(metrics.OpSign, start, err)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), hex.EncodeToString(sig[:]))
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "sign the contents of a file instead of an argument")
	return cmd
}

func verifyCmd() *cobra.Command {
	var (
		file   string
		did    string
		pubHex string
		sigHex string
	)
	cmd := &cobra.Command{
		Use:   "verify [message]",
		Short: "Verify a signature against a DID (--did) or hex public key (--pubkey)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			msg, err := messageFrom(cmd, args, file)
			if err != nil {
				return err
			}
			if pubHex == "" {
				if did == "" {
					return errors.New("--did or --pubkey is required")
				}
				codec, err := crypto.NewDIDCodec(cfg.DIDEncoding)
				if err != nil {
					return err
				}
				pub, err := codec.Decode(domain.DID(did))
				if err != nil {
					return err
				}
				pubHex = crypto.PublicKeyHex(pub)
			}
			if !crypto.VerifyHex(pubHex, msg, sigHex) {
				return errors.New("signature is NOT valid")
			}
			fmt.Fprintln(cmd.OutOrStdout(), "signature valid")
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "verify the contents of a file instead of an argument")
	cmd.Flags().StringVar(&did, "did", "", "signer DID")
	cmd.Flags().StringVar(&pubHex, "pubkey", "", "signer public key (hex)")
	cmd.Flags().StringVar(&sigHex, "sig", "", "signature (hex)")
	_ = cmd.MarkFlagRequired("sig")
	return cmd
}

// messageFrom returns the single argument or the contents of file.
func messageFrom(cmd *cobra.Command, args []string, file string) ([]byte, error) {
	switch {
	case file != "" && len(args) > 0:
		return nil, errors.New("give a message argument or --file, not both")
	case file != "":
		return readInput(cmd, file)
	case len(args) == 1:
		return []byte(args[0]), nil
	default:
		return nil, errors.New("message argument or --file is required")
	}
}
