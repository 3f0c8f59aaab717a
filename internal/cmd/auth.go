package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/salmonumbrella/odootable/internal/auth"
	"github.com/salmonumbrella/odootable/internal/ui"
)

func newAuthCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage Odoo connection passwords",
		Long: `Manage the Odoo passwords used when a document or config file does not
carry one. Passwords are stored in the system keyring, keyed by server
and login.`,
	}

	cmd.AddCommand(newAuthSetPasswordCmd(app))
	cmd.AddCommand(newAuthRemoveCmd())
	cmd.AddCommand(newAuthStatusCmd())

	return cmd
}

func newAuthSetPasswordCmd(app *App) *cobra.Command {
	var serverURL, login string

	cmd := &cobra.Command{
		Use:   "set-password",
		Short: "Store a password in the system keyring",
		Long: `Store the password for one server and login in the system keyring.

The password is prompted for on a terminal, or read from standard input
otherwise, so it never appears in shell history.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			password, err := readPassword(app, fmt.Sprintf("Password for %s@%s: ", login, serverURL))
			if err != nil {
				return err
			}
			if err := auth.StorePassword(serverURL, login, password); err != nil {
				return err
			}
			ui.FromContext(cmd.Context()).Success("Password stored for %s@%s", login, serverURL)
			return nil
		},
	}

	cmd.Flags().StringVar(&serverURL, "url", "", "Odoo server host")
	cmd.Flags().StringVar(&login, "login", "", "Odoo login")
	_ = cmd.MarkFlagRequired("url")
	_ = cmd.MarkFlagRequired("login")
	return cmd
}

func newAuthRemoveCmd() *cobra.Command {
	var serverURL, login string

	cmd := &cobra.Command{
		Use:   "remove",
		Short: "Remove a stored password",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := auth.DeletePassword(serverURL, login); err != nil {
				return err
			}
			ui.FromContext(cmd.Context()).Success("Password removed for %s@%s", login, serverURL)
			return nil
		},
	}

	cmd.Flags().StringVar(&serverURL, "url", "", "Odoo server host")
	cmd.Flags().StringVar(&login, "login", "", "Odoo login")
	_ = cmd.MarkFlagRequired("url")
	_ = cmd.MarkFlagRequired("login")
	return cmd
}

func newAuthStatusCmd() *cobra.Command {
	var serverURL, login string

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Check whether a password is available",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			u := ui.FromContext(cmd.Context())
			if auth.HasPassword(serverURL, login) {
				u.Success("Password available for %s@%s", login, serverURL)
				return nil
			}
			u.Warning("No password for %s@%s; run 'odootable auth set-password'", login, serverURL)
			return fmt.Errorf("no password for %s@%s", login, serverURL)
		},
	}

	cmd.Flags().StringVar(&serverURL, "url", "", "Odoo server host")
	cmd.Flags().StringVar(&login, "login", "", "Odoo login")
	_ = cmd.MarkFlagRequired("url")
	_ = cmd.MarkFlagRequired("login")
	return cmd
}

// readPassword reads a password without echo from a terminal, or a single
// line from the app's stdin when input is not a terminal.
func readPassword(app *App, prompt string) (string, error) {
	if f, ok := app.Stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		_, _ = fmt.Fprint(app.Stderr, prompt)
		raw, err := term.ReadPassword(int(f.Fd()))
		_, _ = fmt.Fprintln(app.Stderr)
		if err != nil {
			return "", fmt.Errorf("failed to read password: %w", err)
		}
		return strings.TrimSpace(string(raw)), nil
	}

	line, err := bufio.NewReader(app.Stdin).ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return strings.TrimSpace(line), nil
}
