package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"walletid/internal/crypto"
)

func identityCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "identity",
		Short: "Create, show, export, import and publish the wallet identity",
	}
	cmd.AddCommand(
		identityInitCmd(),
		identityShowCmd(),
		identityExportCmd(),
		identityImportCmd(),
		identityPublishCmd(),
	)
	return cmd
}

func identityInitCmd() *cobra.Command {
	var (
		words   int
		restore bool
	)
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a new identity, or restore one from its recovery phrase",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if restore {
				_, id, err := unlock(cmd)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "Identity restored.\nDID: %s\n", id.DID)
				return nil
			}
			bits, err := entropyForWords(words)
			if err != nil {
				return err
			}
			w, err := wire()
			if err != nil {
				return err
			}
			phrase, id, err := w.Identity.CreateIdentity(bits)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Identity created.\nDID: %s\n\n", id.DID)
			fmt.Fprintf(out, "Recovery phrase (write it down; it is not stored):\n%s\n", phrase)
			return nil
		},
	}
	cmd.Flags().IntVar(&words, "words", 12, "phrase length: 12 or 24")
	cmd.Flags().BoolVar(&restore, "restore", false, "restore from an existing recovery phrase")
	return cmd
}

func identityShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the stored identity",
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := wire()
			if err != nil {
				return err
			}
			id, found, err := w.Identity.LoadIdentity()
			if err != nil {
				return err
			}
			if !found {
				return fmt.Errorf("no identity in %s; run walletid identity init", cfg.Home)
			}
			pub, err := crypto.ParsePublicKeyHex(id.PublicKey)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "DID:         %s\n", id.DID)
			fmt.Fprintf(out, "Public key:  %s\n", id.PublicKey)
			fmt.Fprintf(out, "Fingerprint: %s\n", crypto.Fingerprint(pub))
			fmt.Fprintf(out, "Created:     %s\n", id.CreatedAt.Format(time.RFC3339))
			return nil
		},
	}
}

func identityExportCmd() *cobra.Command {
	var outPath string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the public identity as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := wire()
			if err != nil {
				return err
			}
			b, err := w.Identity.ExportIdentity()
			if err != nil {
				return err
			}
			return writeOutput(cmd, outPath, append(b, '\n'))
		},
	}
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "output file (default stdout)")
	return cmd
}

func identityImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import [file|-]",
		Short: "Import an exported identity JSON document",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) == 1 {
				path = args[0]
			}
			data, err := readInput(cmd, path)
			if err != nil {
				return err
			}
			w, err := wire()
			if err != nil {
				return err
			}
			id, err := w.Identity.ImportIdentity(data)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Identity imported.\nDID: %s\n", id.DID)
			return nil
		},
	}
}

func identityPublishCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "publish",
		Short: "Upload the public identity to the storage gateway",
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := wire()
			if err != nil {
				return err
			}
			cid, url, err := w.Identity.PublishIdentity(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "CID: %s\nURL: %s\n", cid, url)
			return nil
		},
	}
}
