package users

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/krypton/internal/common"
	"github.com/dmitrijs2005/krypton/internal/logging"
	"github.com/dmitrijs2005/krypton/internal/server/auth"
	"github.com/dmitrijs2005/krypton/internal/server/models"
	"github.com/google/uuid"
)

// TokenIssuer mints identity tokens for a user id.
type TokenIssuer interface {
	Issue(userID string) (string, error)
}

type Service struct {
	repo   Repository
	tokens TokenIssuer
	log    logging.Logger
}

func NewService(repo Repository, tokens TokenIssuer, log logging.Logger) *Service {
	return &Service{
		repo:   repo,
		tokens: tokens,
		log:    log.With("module", "users"),
	}
}

// Register creates a user with empty watchlist and portfolio and returns it
// together with a fresh token.
func (s *Service) Register(ctx context.Context, firstName, lastName, email, password string) (*models.User, string, error) {
	firstName = strings.TrimSpace(firstName)
	lastName = strings.TrimSpace(lastName)
	email = strings.TrimSpace(email)

	if firstName == "" || lastName == "" || email == "" || password == "" {
		return nil, "", fmt.Errorf("%w: please provide all required fields", common.ErrInvalidInput)
	}

	_, err := s.repo.FindByEmail(ctx, email)
	switch {
	case err == nil:
		return nil, "", common.ErrDuplicateIdentity
	case !errors.Is(err, common.ErrorNotFound):
		return nil, "", fmt.Errorf("error looking up user: %w", err)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, "", fmt.Errorf("error hashing password: %w", err)
	}

	user := &models.User{
		ID:           uuid.NewString(),
		Name:         firstName + " " + lastName,
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
		Watchlist:    []models.WatchlistEntry{},
		Portfolio:    []models.Holding{},
	}

	user, err = s.repo.Create(ctx, user)
	if err != nil {
		if errors.Is(err, common.ErrDuplicateIdentity) {
			return nil, "", err
		}
		return nil, "", fmt.Errorf("error creating user: %w", err)
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, "", fmt.Errorf("error issuing token: %w", err)
	}

	s.log.Info(ctx, "user registered", "user_id", user.ID)
	return user, token, nil
}

// Login checks the credentials and issues a token. Unknown email and wrong
// password are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, email, password string) (*models.User, string, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, "", fmt.Errorf("%w: please provide email and password", common.ErrInvalidInput)
	}

	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, "", common.ErrInvalidCredentials
		}
		return nil, "", fmt.Errorf("error looking up user: %w", err)
	}

	if !auth.CheckPassword(user.PasswordHash, password) {
		s.log.Debug(ctx, "password mismatch", "user_id", user.ID)
		return nil, "", common.ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, "", fmt.Errorf("error issuing token: %w", err)
	}

	return user, token, nil
}

// FindByID satisfies auth.UserFinder.
func (s *Service) FindByID(ctx context.Context, id string) (*models.User, error) {
	return s.repo.FindByID(ctx, id)
}
