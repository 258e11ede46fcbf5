package tui

import (
	"context"
	"errors"
	"os"
	"strings"

	"netmonlabs/netmon/internal/domain"
	"netmonlabs/netmon/internal/util"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/huh/spinner"
)

// ErrAborted is returned when a user cancels an interactive flow.
var ErrAborted = errors.New("aborted by user")

// RegisterForm runs an interactive form that collects registration details.
// Fields already set in prefill are shown as defaults. Password matching is
// left to the caller so the form and the flag-driven path report it the
// same way.
func RegisterForm(prefill domain.RegistrationForm) (*domain.RegistrationForm, error) {
	accessible := os.Getenv("ACCESSIBLE") != ""
	form := prefill

	account := huh.NewGroup(
		huh.NewInput().
			Title("Username").
			Value(&form.Username).
			Validate(required("username")),
		huh.NewInput().
			Title("Full name").
			Value(&form.FullName).
			Validate(required("full name")),
		huh.NewInput().
			Title("Email").
			Value(&form.Email).
			Validate(func(v string) error {
				if err := required("email")(v); err != nil {
					return err
				}
				return util.ValidateEmail(v)
			}),
	)

	optional := huh.NewGroup(
		huh.NewInput().
			Title("Phone number").
			Description("Optional").
			Value(&form.PhoneNumber),
		huh.NewInput().
			Title("Organization").
			Description("Optional").
			Value(&form.Organization),
	)

	secrets := huh.NewGroup(
		huh.NewInput().
			Title("Password").
			EchoMode(huh.EchoModePassword).
			Value(&form.Password).
			Validate(required("password")),
		huh.NewInput().
			Title("Confirm password").
			EchoMode(huh.EchoModePassword).
			Value(&form.ConfirmPassword),
	)

	if err := runForm(accessible, account, optional, secrets); err != nil {
		return nil, err
	}
	form.Username = strings.TrimSpace(form.Username)
	form.FullName = strings.TrimSpace(form.FullName)
	form.Email = strings.TrimSpace(form.Email)
	form.PhoneNumber = strings.TrimSpace(form.PhoneNumber)
	form.Organization = strings.TrimSpace(form.Organization)
	return &form, nil
}

// RunWithSpinner runs action behind a spinner on stderr.
func RunWithSpinner(ctx context.Context, title string, action func(ctx context.Context) error) error {
	accessible := os.Getenv("ACCESSIBLE") != ""
	err := spinner.New().
		Title(title).
		Accessible(accessible).
		Output(os.Stderr).
		Context(ctx).
		ActionWithErr(action).
		Run()
	if errors.Is(err, huh.ErrUserAborted) {
		return ErrAborted
	}
	return err
}

// required returns a validator that rejects blank input.
func required(field string) func(string) error {
	return func(v string) error {
		if strings.TrimSpace(v) == "" {
			return errors.New(field + " is required")
		}
		return nil
	}
}

// runForm creates and runs a huh.Form, translating ErrUserAborted to ErrAborted.
func runForm(accessible bool, groups ...*huh.Group) error {
	err := huh.NewForm(groups...).WithAccessible(accessible).Run()
	if err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return ErrAborted
		}
		return err
	}
	return nil
}
