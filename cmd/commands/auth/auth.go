package auth

import (
	"os"

	"netmonlabs/netmon/internal/app"
	"netmonlabs/netmon/internal/auditlog"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage operator accounts and sessions",
		Long: `Manage operator accounts and sessions.

Use this command group to register an account, sign in and store the
session token in the local keychain, and sign out again.`,
	}

	cmd.AddCommand(RegisterCommand())
	cmd.AddCommand(LoginCommand())
	cmd.AddCommand(LogoutCommand())
	cmd.AddCommand(StatusCommand())

	return cmd
}

// isInteractive is replaced in tests.
var isInteractive = func() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
}

// loadApp builds the command dependencies and records the backend for the
// audit trail.
func loadApp(cmd *cobra.Command) (*app.App, error) {
	a, err := app.Load(cmd.ErrOrStderr())
	if err != nil {
		return nil, err
	}
	cmd.SetContext(auditlog.WithMetadata(cmd.Context(), auditlog.Metadata{Backend: a.Client.BaseURL()}))
	return a, nil
}

// setSubject records the account the command acted on.
func setSubject(cmd *cobra.Command, subject string) {
	cmd.SetContext(auditlog.WithMetadata(cmd.Context(), auditlog.Metadata{Subject: subject}))
}

// readPassword prompts on stderr and reads a password without echo.
func readPassword(cmd *cobra.Command, prompt string) (string, error) {
	cmd.PrintErr(prompt)
	b, err := term.ReadPassword(int(os.Stdin.Fd()))
	cmd.PrintErrln()
	if err != nil {
		return "", err
	}
	return string(b), nil
}
