package auth

import (
	"errors"
	"time"

	"github.com/dmitrijs2005/krypton/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// FallbackSecret signs tokens when no secret is configured. Anyone who knows
// it can mint tokens, so it is only acceptable for local development.
const FallbackSecret = "fallback_secret"

// DefaultValidity is the lifetime of an issued token.
const DefaultValidity = 7 * 24 * time.Hour

var ErrMissingSecret = errors.New("no token signing secret configured")

// Claims are the standard registered claims plus the bound user id.
type Claims struct {
	jwt.RegisteredClaims
	UserID string `json:"userId"`
}

func GenerateToken(userID string, secretKey []byte, validityDuration time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(validityDuration)),
		},
		UserID: userID,
	})

	tokenString, err := token.SignedString(secretKey)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// GetUserIDFromToken verifies tokenString and returns the bound user id.
// Expired tokens yield common.ErrTokenExpired; anything else that fails
// verification yields common.ErrInvalidToken.
func GetUserIDFromToken(tokenString string, secretKey []byte) (string, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secretKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", common.ErrTokenExpired
		}
		return "", common.ErrInvalidToken
	}

	if !token.Valid || claims.UserID == "" {
		return "", common.ErrInvalidToken
	}

	return claims.UserID, nil
}

// TokenService issues and verifies identity tokens with one signing key.
type TokenService struct {
	secret   []byte
	validity time.Duration
	fallback bool
}

// NewTokenService builds a TokenService. An empty secret selects
// FallbackSecret, unless strict is set, in which case ErrMissingSecret
// is returned.
func NewTokenService(secret string, validity time.Duration, strict bool) (*TokenService, error) {
	s := &TokenService{secret: []byte(secret), validity: validity}
	if secret == "" {
		if strict {
			return nil, ErrMissingSecret
		}
		s.secret = []byte(FallbackSecret)
		s.fallback = true
	}
	if s.validity <= 0 {
		s.validity = DefaultValidity
	}
	return s, nil
}

// UsesFallbackSecret reports whether tokens are signed with FallbackSecret.
func (s *TokenService) UsesFallbackSecret() bool { return s.fallback }

func (s *TokenService) Issue(userID string) (string, error) {
	return GenerateToken(userID, s.secret, s.validity)
}

func (s *TokenService) Verify(token string) (string, error) {
	return GetUserIDFromToken(token, s.secret)
}
