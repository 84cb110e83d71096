// Package auth is the session layer: it turns credentials into bearer
// tokens and tokens back into the acting principal. It is a collaborator of
// the ledger core, not part of it; the ledger only ever sees user ids.
package auth

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/harborbank/core/internal/config"
	"github.com/harborbank/core/internal/domain"
)

// IdentityDirectory is the slice of the ledger the session layer needs.
type IdentityDirectory interface {
	RegisterUser(name, email, passwordHash, phone string) (domain.User, domain.Account, error)
	UserByEmail(email string) (domain.User, error)
	UserByID(id string) (domain.User, error)
	SetUserRole(userID string, role domain.Role) (domain.User, error)
}

// Principal is the authenticated identity a command executes on behalf of.
type Principal struct {
	UserID string
	Role   domain.Role
}

// IsAdmin reports whether the principal may use the admin surface.
func (p Principal) IsAdmin() bool {
	return p.Role == domain.RoleAdmin
}

type claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Service authenticates users against the identity directory and issues
// signed session tokens.
type Service struct {
	directory IdentityDirectory
	secret    []byte
	tokenTTL  time.Duration
	cost      int
}

// NewService builds the session layer from configuration.
func NewService(directory IdentityDirectory, cfg config.AuthConfig) *Service {
	cost := cfg.BcryptCost
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &Service{
		directory: directory,
		secret:    []byte(cfg.JWTSecret),
		tokenTTL:  cfg.TokenTTL,
		cost:      cost,
	}
}

// Register creates a new user plus default account and logs them in
// immediately, returning a session token.
func (s *Service) Register(name, email, password, phone string) (domain.User, domain.Account, string, error) {
	if strings.TrimSpace(password) == "" {
		return domain.User{}, domain.Account{}, "", domain.ErrMissingField
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return domain.User{}, domain.Account{}, "", err
	}

	user, account, err := s.directory.RegisterUser(name, email, string(hash), phone)
	if err != nil {
		return domain.User{}, domain.Account{}, "", err
	}

	token, err := s.IssueToken(user)
	if err != nil {
		return domain.User{}, domain.Account{}, "", err
	}
	return user, account, token, nil
}

// EnsureAdmin registers an administrator account if the email is not yet
// taken. Called once at startup; an existing user keeps their credentials.
func (s *Service) EnsureAdmin(name, email, password string) (domain.User, error) {
	if existing, err := s.directory.UserByEmail(email); err == nil {
		return existing, nil
	}

	user, _, _, err := s.Register(name, email, password, "")
	if err != nil {
		return domain.User{}, err
	}
	return s.directory.SetUserRole(user.ID, domain.RoleAdmin)
}

// Login checks the credentials and returns the user with a fresh token.
// Lookup failures and password mismatches are indistinguishable to callers.
func (s *Service) Login(email, password string) (domain.User, string, error) {
	user, err := s.directory.UserByEmail(email)
	if err != nil {
		return domain.User{}, "", domain.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return domain.User{}, "", domain.ErrInvalidCredentials
	}
	if !user.Active {
		return domain.User{}, "", domain.ErrUserInactive
	}

	token, err := s.IssueToken(user)
	if err != nil {
		return domain.User{}, "", err
	}
	return user, token, nil
}

// IssueToken signs a session token carrying the user id and role.
func (s *Service) IssueToken(user domain.User) (string, error) {
	now := time.Now()
	c := claims{
		Role: string(user.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	return token.SignedString(s.secret)
}

// Verify parses and validates a session token, returning the principal.
func (s *Service) Verify(tokenStr string) (Principal, error) {
	c := &claims{}
	token, err := jwt.ParseWithClaims(tokenStr, c, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid || c.Subject == "" {
		return Principal{}, domain.ErrInvalidCredentials
	}
	return Principal{UserID: c.Subject, Role: domain.Role(c.Role)}, nil
}
