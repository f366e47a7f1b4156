package commands

import (
	"bufio"
	"context"
	"errors"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"walletid/internal/app"
	"walletid/internal/domain"
)

var errNoMnemonic = errors.New("recovery phrase required (--mnemonic, WALLETID_MNEMONIC or stdin)")

// readMnemonic returns the recovery phrase from the flag, the environment or
// the first line of stdin, in that order.
func readMnemonic(cmd *cobra.Command) (string, error) {
	if mnemonicArg != "" {
		return mnemonicArg, nil
	}
	if v := strings.TrimSpace(os.Getenv("WALLETID_MNEMONIC")); v != "" {
		return v, nil
	}
	line, err := readStdin(cmd, func(r io.Reader) (string, error) {
		line, err := bufio.NewReader(r).ReadString('\n')
		if errors.Is(err, io.EOF) {
			err = nil
		}
		return line, err
	})
	if err != nil {
		return "", err
	}
	if line = strings.TrimSpace(line); line == "" {
		return "", errNoMnemonic
	}
	return line, nil
}

// unlock derives the key pair from the recovery phrase into the session.
func unlock(cmd *cobra.Command) (*app.Wire, domain.Identity, error) {
	w, err := wire()
	if err != nil {
		return nil, domain.Identity{}, err
	}
	phrase, err := readMnemonic(cmd)
	if err != nil {
		return nil, domain.Identity{}, err
	}
	id, err := w.Identity.RestoreIdentity(phrase)
	if err != nil {
		return nil, domain.Identity{}, err
	}
	return w, id, nil
}

// readPassword returns the flag value or $WALLETID_PASSWORD.
func readPassword(flag string) (string, error) {
	if flag != "" {
		return flag, nil
	}
	if v := os.Getenv("WALLETID_PASSWORD"); v != "" {
		return v, nil
	}
	return "", errors.New("password required (--password or WALLETID_PASSWORD)")
}

// readInput reads path, or stdin when path is "" or "-".
func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "" || path == "-" {
		return readStdin(cmd, io.ReadAll)
	}
	return os.ReadFile(path)
}

// readStdin runs read against the command's stdin and gives up when the
// command context is cancelled. The reader goroutine is left blocked until
// stdin closes, which happens when the process exits.
func readStdin[T any](cmd *cobra.Command, read func(io.Reader) (T, error)) (T, error) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	type result struct {
		v   T
		err error
	}
	done := make(chan result, 1)
	go func() {
		v, err := read(cmd.InOrStdin())
		done <- result{v, err}
	}()
	select {
	case r := <-done:
		return r.v, r.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// writeOutput writes data to path, or stdout when path is "" or "-".
func writeOutput(cmd *cobra.Command, path string, data []byte) error {
	if path == "" || path == "-" {
		_, err := cmd.OutOrStdout().Write(data)
		return err
	}
	return os.WriteFile(path, data, 0o600)
}
