package auth

import (
	"context"
	"errors"
	"fmt"

	"netmonlabs/netmon/internal/domain"
	"netmonlabs/netmon/internal/tui"

	"github.com/spf13/cobra"
)

func RegisterCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an operator account",
		Long: `Create an operator account on the backend.

In a terminal, missing fields are collected with an interactive form.
Otherwise every required field must be passed as a flag. Passwords are
checked locally; nothing is sent when they do not match.

Examples:
  netmon auth register
  netmon auth register --username ops --full-name "Ops Team" --email ops@example.com`,
		RunE:         runRegister,
		SilenceUsage: true,
	}

	cmd.Flags().String("username", "", "Account name")
	cmd.Flags().String("full-name", "", "Full name")
	cmd.Flags().String("email", "", "Email address")
	cmd.Flags().String("phone", "", "Phone number (optional)")
	cmd.Flags().String("organization", "", "Organization (optional)")
	cmd.Flags().String("password", "", "Password (prompted when omitted)")
	cmd.Flags().String("confirm-password", "", "Password confirmation (prompted when omitted)")

	return cmd
}

func runRegister(cmd *cobra.Command, args []string) error {
	form := formFromFlags(cmd)

	a, err := loadApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	if isInteractive() && needsForm(form) {
		filled, err := tui.RegisterForm(form)
		if err != nil {
			if errors.Is(err, tui.ErrAborted) {
				fmt.Fprintln(cmd.ErrOrStderr(), "Registration cancelled.")
				return nil
			}
			return err
		}
		form = *filled
	}
	if isInteractive() && form.Password == "" {
		if form.Password, err = readPassword(cmd, "Password: "); err != nil {
			return err
		}
	}
	if isInteractive() && form.ConfirmPassword == "" {
		if form.ConfirmPassword, err = readPassword(cmd, "Confirm password: "); err != nil {
			return err
		}
	}
	setSubject(cmd, form.Username)

	register := func(ctx context.Context) error { return a.Auth.Register(ctx, form) }
	if isInteractive() {
		err = tui.RunWithSpinner(cmd.Context(), "Creating account...", register)
	} else {
		err = register(cmd.Context())
	}
	if err != nil {
		a.Logger.Debug("registration failed", "username", form.Username, "error", err)
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Registered %s. Sign in with 'netmon auth login --username %s'.\n", form.Username, form.Username)
	return nil
}

func formFromFlags(cmd *cobra.Command) domain.RegistrationForm {
	get := func(name string) string {
		v, _ := cmd.Flags().GetString(name)
		return v
	}
	return domain.RegistrationForm{
		Username:        get("username"),
		FullName:        get("full-name"),
		Email:           get("email"),
		PhoneNumber:     get("phone"),
		Organization:    get("organization"),
		Password:        get("password"),
		ConfirmPassword: get("confirm-password"),
	}
}

// needsForm reports whether any required field is still missing.
func needsForm(f domain.RegistrationForm) bool {
	return f.Username == "" || f.FullName == "" || f.Email == "" || f.Password == ""
}
