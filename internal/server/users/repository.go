package users

import (
	"context"

	"github.com/dmitrijs2005/krypton/internal/server/models"
)

// Repository is the credential store. Users are stored as whole documents:
// Save replaces the embedded watchlist and portfolio in one step.
//
// Create fails with common.ErrDuplicateIdentity when the email is taken;
// lookups fail with common.ErrorNotFound.
type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
	Save(ctx context.Context, user *models.User) error
}
