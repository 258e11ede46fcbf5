package auth

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"netmonlabs/netmon/internal/api"
	"netmonlabs/netmon/internal/domain"

	"github.com/google/go-cmp/cmp"
)

// --- Test helpers ---

// fakeBackend is a scripted Backend that records what it was sent.
type fakeBackend struct {
	registered []domain.RegisterRequest
	logins     []domain.LoginRequest
	loginResp  *domain.LoginResponse
	err        error
}

func (f *fakeBackend) Register(_ context.Context, req domain.RegisterRequest) (json.RawMessage, error) {
	f.registered = append(f.registered, req)
	if f.err != nil {
		return nil, f.err
	}
	return json.RawMessage(`{"id":1}`), nil
}

func (f *fakeBackend) Login(_ context.Context, req domain.LoginRequest) (*domain.LoginResponse, error) {
	f.logins = append(f.logins, req)
	if f.err != nil {
		return nil, f.err
	}
	return f.loginResp, nil
}

func validForm() domain.RegistrationForm {
	return domain.RegistrationForm{
		Username:        "ops",
		FullName:        "Ops Team",
		Email:           "ops@example.com",
		Organization:    "NOC",
		Password:        "s3cret",
		ConfirmPassword: "s3cret",
	}
}

func TestRegister_Success(t *testing.T) {
	backend := &fakeBackend{}
	svc := NewService(backend, NewMockStore())

	if err := svc.Register(context.Background(), validForm()); err != nil {
		t.Fatalf("Register: %v", err)
	}
	want := []domain.RegisterRequest{{
		Username:     "ops",
		FullName:     "Ops Team",
		Email:        "ops@example.com",
		Organization: "NOC",
		Password:     "s3cret",
	}}
	if diff := cmp.Diff(want, backend.registered); diff != "" {
		t.Errorf("request mismatch (-want +got):\n%s", diff)
	}
}

func TestRegister_ValidationFailuresSendNothing(t *testing.T) {
	tests := []struct {
		name  string
		edit  func(*domain.RegistrationForm)
		field string
	}{
		{"password mismatch", func(f *domain.RegistrationForm) { f.ConfirmPassword = "other" }, ""},
		{"missing username", func(f *domain.RegistrationForm) { f.Username = "  " }, "username"},
		{"missing full name", func(f *domain.RegistrationForm) { f.FullName = "" }, "full name"},
		{"missing email", func(f *domain.RegistrationForm) { f.Email = "" }, "email"},
		{"malformed email", func(f *domain.RegistrationForm) { f.Email = "not-an-email" }, "email"},
		{"missing password", func(f *domain.RegistrationForm) { f.Password = ""; f.ConfirmPassword = "" }, "password"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend := &fakeBackend{}
			svc := NewService(backend, NewMockStore())

			form := validForm()
			tt.edit(&form)
			err := svc.Register(context.Background(), form)

			if !errors.Is(err, domain.ErrValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
			var vErr *domain.ValidationError
			if !errors.As(err, &vErr) || vErr.Field != tt.field {
				t.Errorf("field = %q, want %q", vErr.Field, tt.field)
			}
			if len(backend.registered) != 0 {
				t.Errorf("expected no request, got %d", len(backend.registered))
			}
		})
	}
}

func TestRegister_MismatchSendsNoHTTPRequest(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	t.Cleanup(srv.Close)

	svc := NewService(api.NewClient(srv.URL), NewMockStore())
	form := validForm()
	form.ConfirmPassword = "typo"

	err := svc.Register(context.Background(), form)
	if err == nil || err.Error() != "passwords do not match" {
		t.Errorf("expected mismatch error, got %v", err)
	}
	if n := calls.Load(); n != 0 {
		t.Errorf("expected no HTTP requests, got %d", n)
	}
}

func TestRegister_ServerErrorSurfacesBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		io.WriteString(w, "User already exists")
	}))
	t.Cleanup(srv.Close)

	svc := NewService(api.NewClient(srv.URL), NewMockStore())
	err := svc.Register(context.Background(), validForm())

	var reqErr *api.RequestError
	if !errors.As(err, &reqErr) {
		t.Fatalf("expected *api.RequestError, got %T (%v)", err, err)
	}
	if got := domain.UserMessage(err); got != "User already exists" {
		t.Errorf("UserMessage = %q", got)
	}
}

func TestLogin_SavesToken(t *testing.T) {
	backend := &fakeBackend{loginResp: &domain.LoginResponse{Token: "jwt-token"}}
	store := NewMockStore()
	svc := NewService(backend, store)

	if err := svc.Login(context.Background(), "ops", "s3cret"); err != nil {
		t.Fatalf("Login: %v", err)
	}
	token, err := store.Load()
	if err != nil || token != "jwt-token" {
		t.Errorf("stored token = %q, %v", token, err)
	}
	if got, _ := svc.Token(); got != "jwt-token" {
		t.Errorf("Token() = %q", got)
	}
}

func TestLogin_MissingTokenSavesNothing(t *testing.T) {
	backend := &fakeBackend{loginResp: &domain.LoginResponse{}}
	store := NewMockStore()
	svc := NewService(backend, store)

	err := svc.Login(context.Background(), "ops", "s3cret")
	if !errors.Is(err, domain.ErrMissingToken) {
		t.Errorf("expected ErrMissingToken, got %v", err)
	}
	if _, err := store.Load(); !errors.Is(err, ErrTokenNotFound) {
		t.Errorf("expected empty store, got %v", err)
	}
}

func TestLogin_Unauthorized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "Invalid credentials", http.StatusUnauthorized)
	}))
	t.Cleanup(srv.Close)

	store := NewMockStore()
	svc := NewService(api.NewClient(srv.URL), store)

	err := svc.Login(context.Background(), "ops", "wrong")
	if !errors.Is(err, domain.ErrUnauthorized) {
		t.Errorf("expected ErrUnauthorized, got %v", err)
	}
	if _, err := store.Load(); !errors.Is(err, ErrTokenNotFound) {
		t.Error("token stored after failed login")
	}
}

func TestLogin_RequiresCredentials(t *testing.T) {
	backend := &fakeBackend{}
	svc := NewService(backend, NewMockStore())

	if err := svc.Login(context.Background(), "", "x"); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("empty username: %v", err)
	}
	if err := svc.Login(context.Background(), "ops", ""); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("empty password: %v", err)
	}
	if len(backend.logins) != 0 {
		t.Errorf("expected no requests, got %d", len(backend.logins))
	}
}

func TestLogin_StoreFailure(t *testing.T) {
	backend := &fakeBackend{loginResp: &domain.LoginResponse{Token: "jwt-token"}}
	store := NewMockStore()
	store.SaveErr = errors.New("keychain locked")
	svc := NewService(backend, store)

	if err := svc.Login(context.Background(), "ops", "s3cret"); err == nil {
		t.Error("expected error when the store fails")
	}
}

func TestLogout_ClearsToken(t *testing.T) {
	store := NewMockStore()
	store.Save("jwt-token")
	svc := NewService(&fakeBackend{}, store)

	if err := svc.Logout(); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if _, err := store.Load(); !errors.Is(err, ErrTokenNotFound) {
		t.Errorf("expected ErrTokenNotFound after logout, got %v", err)
	}
}
