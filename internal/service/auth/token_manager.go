package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"storefront/internal/domain"
)

const (
	TokenAccess  = "access"
	TokenRefresh = "refresh"
)

// Claims is the JWT payload for both token kinds.
type Claims struct {
	UserID    int64  `json:"user_id"`
	Username  string `json:"username"`
	UserType  string `json:"user_type"`
	TokenType string `json:"token_type"`
	jwt.RegisteredClaims
}

// TokenManager signs and verifies HS256 tokens.
type TokenManager struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

func NewTokenManager(secret string, accessTTL, refreshTTL time.Duration) *TokenManager {
	return &TokenManager{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}
}

func (m *TokenManager) Issue(u domain.User, kind string) (string, error) {
	ttl := m.accessTTL
	switch kind {
	case TokenAccess:
	case TokenRefresh:
		ttl = m.refreshTTL
	default:
		return "", fmt.Errorf("unknown token kind %q", kind)
	}
	now := m.now()
	claims := &Claims{
		UserID:    u.ID,
		Username:  u.Username,
		UserType:  string(u.Role),
		TokenType: kind,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   fmt.Sprint(u.ID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
}

// Validate parses token and checks its signature, expiry and kind.
func (m *TokenManager) Validate(token, kind string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(t *jwt.Token) (any, error) {
		return m.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(m.now))
	if err != nil || !parsed.Valid {
		return nil, errors.Join(ErrInvalidToken, err)
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || claims.TokenType != kind || claims.UserID == 0 {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
