// Package auth registers accounts and issues the tokens the storefront
// client stores in its session.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"storefront/internal/domain"
	userrepo "storefront/internal/repository/user"
)

var (
	// ErrInvalidCredentials is returned when username/password do not match.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrInvalidToken indicates the provided token could not be validated.
	ErrInvalidToken = errors.New("invalid token")
)

// Service handles register/login flows.
type Service struct {
	repo        userrepo.Repository
	tokens      *TokenManager
	passwordMin int
}

func New(repo userrepo.Repository, tokens *TokenManager) *Service {
	return &Service{repo: repo, tokens: tokens, passwordMin: 8}
}

type RegisterInput struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	UserType string `json:"user_type"`
}

// Register creates an account. Input problems are reported as a
// *domain.ValidationError.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*domain.User, error) {
	v := &domain.ValidationError{}
	username := strings.TrimSpace(in.Username)
	if username == "" {
		v.Add("username", "This field is required.")
	}
	password := strings.TrimSpace(in.Password)
	switch {
	case password == "":
		v.Add("password", "This field is required.")
	case len(password) < s.passwordMin:
		v.Add("password", fmt.Sprintf("Ensure this field has at least %d characters.", s.passwordMin))
	}
	role := domain.RoleCustomer
	switch t := strings.ToLower(strings.TrimSpace(in.UserType)); t {
	case "", string(domain.RoleCustomer):
	case string(domain.RoleSeller):
		role = domain.RoleSeller
	default:
		v.Add("user_type", fmt.Sprintf("%q is not a valid choice.", in.UserType))
	}
	if err := v.Err(); err != nil {
		return nil, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	u, err := s.repo.Create(ctx, domain.User{
		Username:     username,
		Email:        strings.TrimSpace(in.Email),
		PasswordHash: string(hashed),
		Role:         role,
	})
	if errors.Is(err, domain.ErrAlreadyExists) {
		return nil, &domain.ValidationError{Fields: map[string]string{"username": "A user with that username already exists."}}
	}
	return u, err
}

// Login validates credentials and returns the user with an access and a
// refresh token.
func (s *Service) Login(ctx context.Context, username, password string) (*domain.User, string, string, error) {
	u, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, "", "", ErrInvalidCredentials
		}
		return nil, "", "", err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(strings.TrimSpace(password))); err != nil {
		return nil, "", "", ErrInvalidCredentials
	}

	access, err := s.tokens.Issue(*u, TokenAccess)
	if err != nil {
		return nil, "", "", err
	}
	refresh, err := s.tokens.Issue(*u, TokenRefresh)
	if err != nil {
		return nil, "", "", err
	}
	return u, access, refresh, nil
}

// Authenticate resolves an access token to its claims.
func (s *Service) Authenticate(_ context.Context, token string) (*Claims, error) {
	return s.tokens.Validate(token, TokenAccess)
}
