package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"walletid/internal/domain"
)

func grantCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "grant",
		Short: "Issue, verify, revoke and list signed access grants",
	}
	cmd.AddCommand(grantIssueCmd(), grantVerifyCmd(), grantRevokeCmd(), grantListCmd())
	return cmd
}

func grantIssueCmd() *cobra.Command {
	var (
		id      string
		grantee string
		perms   []string
		ttl     time.Duration
		expires string
		out     string
	)
	cmd := &cobra.Command{
		Use:   "issue",
		Short: "Sign an access grant for --grantee and record it",
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(grantee) == "" {
				return errors.New("--grantee is required")
			}
			exp, err := expiryFrom(expires, ttl, time.Now())
			if err != nil {
				return err
			}
			w, _, err := unlock(cmd)
			if err != nil {
				return err
			}
			g, err := w.Grants.IssueGrant(cmd.Context(), domain.AccessGrantDraft{
				ID:          id,
				Grantee:     grantee,
				Permissions: perms,
				ExpiresAt:   exp,
			})
			if err != nil {
				return err
			}
			b, err := json.MarshalIndent(g, "", "  ")
			if err != nil {
				return err
			}
			return writeOutput(cmd, out, append(b, '\n'))
		},
	}
	cmd.Flags().StringVar(&id, "id", "", "grant id (default random UUID)")
	cmd.Flags().StringVar(&grantee, "grantee", "", "DID of the grantee")
	cmd.Flags().StringSliceVar(&perms, "perm", nil, "permission; repeat or comma-separate")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "validity period from now")
	cmd.Flags().StringVar(&expires, "expires", "", "absolute expiry (RFC 3339); overrides --ttl")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default stdout)")
	return cmd
}

func expiryFrom(expires string, ttl time.Duration, now time.Time) (time.Time, error) {
	if expires != "" {
		t, err := time.Parse(time.RFC3339, expires)
		if err != nil {
			return time.Time{}, fmt.Errorf("--expires: %w", err)
		}
		return t, nil
	}
	if ttl <= 0 {
		return time.Time{}, errors.New("--ttl must be positive")
	}
	return now.Add(ttl), nil
}

func grantVerifyCmd() *cobra.Command {
	var issuer string
	cmd := &cobra.Command{
		Use:   "verify [file|-]",
		Short: "Check a grant's signature, expiry and revocation",
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
			var g domain.AccessGrant
			if err := json.Unmarshal(data, &g); err != nil {
				return err
			}
			w, err := wire()
			if err != nil {
				return err
			}
			if issuer == "" {
				id, found, err := w.Identity.LoadIdentity()
				if err != nil {
					return err
				}
				if !found {
					return errors.New("--issuer is required when no local identity exists")
				}
				issuer = string(id.DID)
			}
			st, err := w.Grants.CheckGrant(cmd.Context(), g, domain.DID(issuer))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "valid=%t expired=%t revoked=%t\n", st.Valid, st.Expired, st.Revoked)
			switch {
			case !st.Valid:
				return errors.New("grant signature is NOT valid")
			case st.Revoked:
				return domain.ErrGrantRevoked
			case st.Expired:
				return domain.ErrGrantExpired
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&issuer, "issuer", "", "issuer DID (default the local identity)")
	return cmd
}

func grantRevokeCmd() *cobra.Command {
	var issuer string
	cmd := &cobra.Command{
		Use:   "revoke <id>",
		Short: "Revoke a grant issued from this wallet",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := wire()
			if err != nil {
				return err
			}
			if issuer == "" {
				id, found, err := w.Identity.LoadIdentity()
				if err != nil {
					return err
				}
				if !found {
					return errors.New("--issuer is required when no local identity exists")
				}
				issuer = string(id.DID)
			}
			if err := w.Grants.RevokeGrant(cmd.Context(), domain.DID(issuer), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Revoked %s\n", args[0])
			return nil
		},
	}
	cmd.Flags().StringVar(&issuer, "issuer", "", "issuer DID the grant was signed by (default the local identity)")
	return cmd
}

func grantListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List grants issued from this wallet",
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := wire()
			if err != nil {
				return err
			}
			recs, err := w.Grants.ListGrants(cmd.Context())
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tGRANTEE\tPERMISSIONS\tEXPIRES\tSTATUS")
			now := time.Now()
			for _, r := range recs {
				status := "active"
				switch {
				case r.RevokedAt != nil:
					status = "revoked"
				case r.Grant.Expired(now):
					status = "expired"
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
					r.Grant.ID,
					r.Grant.Grantee,
					strings.Join(r.Grant.Permissions, ","),
					r.Grant.ExpiresAt.UTC().Format(time.RFC3339),
					status,
				)
			}
			return tw.Flush()
		},
	}
}
