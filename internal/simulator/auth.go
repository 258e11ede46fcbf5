package simulator

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"netmonlabs/netmon/internal/domain"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	// DefaultRole is assigned to every registered user.
	DefaultRole = "operator"

	// TokenTTL is how long issued tokens stay valid.
	TokenTTL = 24 * time.Hour

	// DefaultBcryptCost matches the production backend.
	DefaultBcryptCost = 12
)

// Claims is the JWT payload.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Authenticator registers users and issues HS256 tokens.
type Authenticator struct {
	store  *Store
	secret []byte
	cost   int
	now    func() time.Time
}

// NewAuthenticator creates an Authenticator. cost <= 0 uses DefaultBcryptCost.
func NewAuthenticator(store *Store, secret string, cost int) *Authenticator {
	if cost <= 0 {
		cost = DefaultBcryptCost
	}
	return &Authenticator{store: store, secret: []byte(secret), cost: cost, now: time.Now}
}

// Register creates a user and returns a token for it.
func (a *Authenticator) Register(req domain.RegisterRequest) (string, error) {
	if strings.TrimSpace(req.Username) == "" || req.Password == "" {
		return "", errors.New("username and password are required")
	}
	if _, ok := a.store.user(req.Username); ok {
		return "", ErrUserExists
	}
	if strings.TrimSpace(req.FullName) == "" {
		return "", errors.New("full_name is required")
	}
	if strings.TrimSpace(req.Email) == "" {
		return "", errors.New("email is required")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), a.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	err = a.store.addUser(req.Username, user{
		passwordHash: hash,
		role:         DefaultRole,
		fullName:     req.FullName,
		email:        req.Email,
		phone:        req.PhoneNumber,
		organization: req.Organization,
	})
	if err != nil {
		return "", err
	}
	return a.issue(req.Username, DefaultRole)
}

// Login checks credentials and returns a token.
func (a *Authenticator) Login(req domain.LoginRequest) (string, error) {
	u, ok := a.store.user(req.Username)
	if !ok {
		return "", ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(u.passwordHash, []byte(req.Password)); err != nil {
		return "", ErrInvalidCredentials
	}
	return a.issue(req.Username, u.role)
}

func (a *Authenticator) issue(username, role string) (string, error) {
	now := a.now()
	claims := Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(TokenTTL)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return token, nil
}

// Verify parses and validates a token issued by this Authenticator.
func (a *Authenticator) Verify(tokenString string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return a.secret, nil
	}, jwt.WithTimeFunc(a.now))
	if err != nil {
		return nil, err
	}
	return claims, nil
}
