package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"netmonlabs/netmon/internal/domain"
	"netmonlabs/netmon/internal/util"
)

// Backend is the subset of the API client the auth flows need.
type Backend interface {
	Register(ctx context.Context, req domain.RegisterRequest) (json.RawMessage, error)
	Login(ctx context.Context, req domain.LoginRequest) (*domain.LoginResponse, error)
}

// Service runs the register, login and logout flows.
type Service struct {
	backend Backend
	store   Store
}

// NewService creates an auth service. A nil store falls back to DefaultStore.
func NewService(backend Backend, store Store) *Service {
	if store == nil {
		store = DefaultStore()
	}
	return &Service{backend: backend, store: store}
}

// Register validates the form locally and, if it passes, creates the
// account. No request is sent when validation fails.
func (s *Service) Register(ctx context.Context, form domain.RegistrationForm) error {
	if err := ValidateRegistration(form); err != nil {
		return err
	}
	if _, err := s.backend.Register(ctx, form.Request()); err != nil {
		return fmt.Errorf("register %q: %w", form.Username, err)
	}
	return nil
}

// Login exchanges credentials for a token and stores it. Nothing is stored
// when the response has no token.
func (s *Service) Login(ctx context.Context, username, password string) error {
	if strings.TrimSpace(username) == "" {
		return &domain.ValidationError{Field: "username", Message: "is required"}
	}
	if password == "" {
		return &domain.ValidationError{Field: "password", Message: "is required"}
	}

	resp, err := s.backend.Login(ctx, domain.LoginRequest{Username: username, Password: password})
	if err != nil {
		return fmt.Errorf("login %q: %w", username, err)
	}
	if resp == nil || resp.Token == "" {
		return domain.ErrMissingToken
	}
	if err := s.store.Save(resp.Token); err != nil {
		return fmt.Errorf("failed to store session token: %w", err)
	}
	return nil
}

// Logout clears the stored token.
func (s *Service) Logout() error {
	if err := s.store.Clear(); err != nil {
		return fmt.Errorf("failed to clear session token: %w", err)
	}
	return nil
}

// Token returns the stored session token, or ErrTokenNotFound.
func (s *Service) Token() (string, error) {
	return s.store.Load()
}

// ValidateRegistration runs the local checks Register performs before
// contacting the backend.
func ValidateRegistration(form domain.RegistrationForm) error {
	required := []struct {
		field string
		value string
	}{
		{"username", form.Username},
		{"full name", form.FullName},
		{"email", form.Email},
		{"password", form.Password},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return &domain.ValidationError{Field: r.field, Message: "is required"}
		}
	}
	if err := util.ValidateEmail(form.Email); err != nil {
		return &domain.ValidationError{Field: "email", Message: err.Error()}
	}
	if form.Password != form.ConfirmPassword {
		return &domain.ValidationError{Message: "passwords do not match"}
	}
	return nil
}
