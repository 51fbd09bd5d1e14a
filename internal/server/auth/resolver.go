// Package auth issues and verifies identity tokens, hashes passwords and
// resolves bearer credentials to users.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/krypton/internal/common"
	"github.com/dmitrijs2005/krypton/internal/server/models"
)

// UserFinder loads users by id.
type UserFinder interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
}

// Resolver turns an Authorization header value into a stored user.
type Resolver struct {
	tokens *TokenService
	users  UserFinder
}

func NewResolver(tokens *TokenService, users UserFinder) *Resolver {
	return &Resolver{tokens: tokens, users: users}
}

// Resolve fails with common.ErrorUnauthorized (wrapping the cause) when the
// header is missing or malformed, the token does not verify, or the user
// no longer exists. Storage failures other than not-found are returned as is.
func (r *Resolver) Resolve(ctx context.Context, header string) (*models.User, error) {
	token, err := BearerToken(header)
	if err != nil {
		return nil, err
	}

	userID, err := r.tokens.Verify(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrorUnauthorized, err)
	}

	user, err := r.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, fmt.Errorf("%w: user %s no longer exists", common.ErrorUnauthorized, userID)
		}
		return nil, err
	}

	return user, nil
}

// BearerToken extracts the token from "Bearer <token>". The scheme is
// matched case-insensitively.
func BearerToken(header string) (string, error) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, common.BearerScheme) {
		return "", fmt.Errorf("%w: missing bearer token", common.ErrorUnauthorized)
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return "", fmt.Errorf("%w: missing bearer token", common.ErrorUnauthorized)
	}
	return token, nil
}
