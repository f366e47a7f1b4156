package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"walletid/internal/app"
	"walletid/internal/domain"
	"walletid/internal/session"
)

var (
	home        string
	logLevel    string
	logFormat   string
	didEncoding string
	mnemonicArg string

	cfg    app.Config
	sess   *session.Context
	wiring *app.Wire
)

// Execute runs the CLI with os.Args.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := newRootCmd()
	go func(s *session.Context) {
		<-ctx.Done()
		s.ClearSession()
	}(sess)

	err := root.ExecuteContext(ctx)
	closeWire()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
	}
	return err
}

func newRootCmd() *cobra.Command {
	home, logLevel, logFormat, didEncoding, mnemonicArg = "", "", "", "", ""
	cfg = app.Config{}
	sess = session.New(nil)
	wiring = nil

	root := &cobra.Command{
		Use:           "walletid",
		Short:         "Wallet identity: mnemonics, did:key identities, signatures and access grants",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := os.MkdirAll(homeDir(), 0o700); err != nil {
				return err
			}
			loaded, err := app.Load(homeDir())
			if err != nil {
				return err
			}
			if logLevel != "" {
				loaded.LogLevel = logLevel
			}
			if logFormat != "" {
				loaded.LogFormat = logFormat
			}
			if didEncoding != "" {
				loaded.DIDEncoding = domain.DIDEncoding(didEncoding)
			}
			if err := loaded.Validate(); err != nil {
				return err
			}
			log, err := app.NewLogger(cmd.ErrOrStderr(), loaded.LogLevel, loaded.LogFormat)
			if err != nil {
				return err
			}
			slog.SetDefault(log)
			sess.SetLogger(log)
			cfg = loaded
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			sess.ClearSession()
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&home, "home", "", "data dir (default $WALLETID_HOME or ~/.walletid)")
	pf.StringVar(&logLevel, "log-level", "", "debug, info, warn or error")
	pf.StringVar(&logFormat, "log-format", "", "text or json")
	pf.StringVar(&didEncoding, "did-encoding", "", "base58btc or hex")
	pf.StringVar(&mnemonicArg, "mnemonic", "", "recovery phrase (default $WALLETID_MNEMONIC, then stdin)")

	root.AddCommand(
		mnemonicCmd(),
		identityCmd(),
		signCmd(),
		verifyCmd(),
		vaultCmd(),
		grantCmd(),
		serveCmd(),
	)
	return root
}

func homeDir() string {
	if home != "" {
		return home
	}
	return app.DefaultHome()
}

// wire builds the dependency graph on first use.
func wire() (*app.Wire, error) {
	if wiring != nil {
		return wiring, nil
	}
	w, err := app.NewWire(cfg, slog.Default(), sess)
	if err != nil {
		return nil, err
	}
	wiring = w
	return w, nil
}

func closeWire() {
	sess.ClearSession()
	if wiring == nil {
		return
	}
	if err := wiring.Close(); err != nil {
		fmt.Fprintln(os.Stderr, "close:", err)
	}
	wiring = nil
}
