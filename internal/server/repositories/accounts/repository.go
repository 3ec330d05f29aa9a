// Package accounts declares the repository contract for account
// persistence. The service layer depends on this interface only; the
// PostgreSQL implementation and the in-memory fake both satisfy it.
package accounts

import (
	"context"

	"github.com/dsavelev/authkeeper/internal/server/models"
)

// Repository defines transactional operations over account records.
// Implementations return common.ErrorNotFound for absent rows and
// common.ErrorConflict for username collisions.
type Repository interface {
	// Insert stores a new account and returns it with the generated id.
	Insert(ctx context.Context, account *models.Account) (*models.Account, error)

	// Update persists every mutable field of the account.
	Update(ctx context.Context, account *models.Account) error

	// Delete removes an account by id.
	Delete(ctx context.Context, id string) error

	// List returns all accounts.
	List(ctx context.Context) ([]*models.Account, error)

	FindByID(ctx context.Context, id string) (*models.Account, error)
	FindByUsername(ctx context.Context, username string) (*models.Account, error)

	// FindByVerificationToken matches a still-unverified account whose
	// verification token equals the value. Expiry is checked by the caller.
	FindByVerificationToken(ctx context.Context, token string) (*models.Account, error)

	// FindByResetToken matches an account holding the given password
	// reset token. Expiry is checked by the caller.
	FindByResetToken(ctx context.Context, token string) (*models.Account, error)

	// FindByRefreshToken matches an account holding the given refresh
	// token value.
	FindByRefreshToken(ctx context.Context, token string) (*models.Account, error)

	// RotateRefreshToken atomically replaces the stored refresh token,
	// but only when the stored value still equals presented and has not
	// expired. A lost race, a replayed value, or an expired token all
	// report common.ErrorNotFound without modifying the row.
	RotateRefreshToken(ctx context.Context, accountID, presented string, next models.RefreshRecord) error
}
