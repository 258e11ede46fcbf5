package auth

import (
	"fmt"
	"strings"

	"netmonlabs/netmon/internal/tui"

	"github.com/spf13/cobra"
)

func LoginCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the session token",
		Long: `Sign in to the backend and store the returned token in the local keychain.

In a terminal without --password, a sign-in screen is shown.

Examples:
  netmon auth login
  netmon auth login --username ops --password s3cret`,
		RunE:         runLogin,
		SilenceUsage: true,
	}

	cmd.Flags().String("username", "", "Account name")
	cmd.Flags().String("password", "", "Password (optional, overrides prompt)")

	return cmd
}

func runLogin(cmd *cobra.Command, args []string) error {
	username, _ := cmd.Flags().GetString("username")
	password, _ := cmd.Flags().GetString("password")
	username = strings.TrimSpace(username)

	a, err := loadApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	if isInteractive() && password == "" {
		result, err := tui.RunAuthLogin(cmd.Context(), a.Client.BaseURL(), username, a.Auth.Login)
		if err != nil {
			return err
		}
		if result == nil {
			fmt.Fprintln(cmd.ErrOrStderr(), "Login cancelled.")
			return nil
		}
		setSubject(cmd, result.Username)
		fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s\n", result.Username)
		return nil
	}

	setSubject(cmd, username)
	if err := a.Auth.Login(cmd.Context(), username, password); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s\n", username)
	return nil
}
