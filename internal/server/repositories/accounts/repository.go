// Package accounts persists runner accounts.
package accounts

import (
	"context"

	"github.com/dmitrijs2005/cmiyc/internal/server/models"
)

// Repository is the account storage used by the account service. Email
// lookups are case-insensitive. Create and Update map a duplicate email to
// common.ErrorConflict; lookups of a missing row return common.ErrorNotFound.
type Repository interface {
	Create(ctx context.Context, a *models.Account) (*models.Account, error)
	GetByID(ctx context.Context, id string) (*models.Account, error)
	FindCredentials(ctx context.Context, email string) (id, passwordHash string, err error)
	EmailExists(ctx context.Context, email, excludeID string) (bool, error)
	Update(ctx context.Context, id string, u *models.AccountUpdate) (*models.Account, error)
	OtherPasswordHashes(ctx context.Context, excludeID string) ([]string, error)
	SetPasswordHash(ctx context.Context, id, passwordHash string) error
	GrantAdmin(ctx context.Context, email string) error
}
