package accounts

import (
	"context"
	"crypto/subtle"
	"sync"
	"time"

	"github.com/dsavelev/authkeeper/internal/common"
	"github.com/dsavelev/authkeeper/internal/server/models"
	"github.com/google/uuid"
)

// InMemoryRepository is a map-backed Repository used by tests and by
// the service-layer examples. A single mutex serializes all mutations,
// which gives the same per-account serialization guarantee the SQL
// implementation gets from its conditional UPDATE.
type InMemoryRepository struct {
	mu       sync.Mutex
	accounts map[string]*models.Account
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{accounts: make(map[string]*models.Account)}
}

func tokenEqual(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

func clone(a *models.Account) *models.Account {
	c := *a
	return &c
}

func (r *InMemoryRepository) Insert(_ context.Context, account *models.Account) (*models.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.accounts {
		if existing.Username == account.Username {
			return nil, common.ErrorConflict
		}
	}

	if account.ID == "" {
		account.ID = uuid.NewString()
	}
	now := time.Now()
	if account.CreatedAt.IsZero() {
		account.CreatedAt = now
	}
	account.ModifiedAt = now

	r.accounts[account.ID] = clone(account)
	return account, nil
}

func (r *InMemoryRepository) Update(_ context.Context, account *models.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.accounts[account.ID]; !ok {
		return common.ErrorNotFound
	}
	account.ModifiedAt = time.Now()
	r.accounts[account.ID] = clone(account)
	return nil
}

func (r *InMemoryRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.accounts[id]; !ok {
		return common.ErrorNotFound
	}
	delete(r.accounts, id)
	return nil
}

func (r *InMemoryRepository) List(_ context.Context) ([]*models.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	result := make([]*models.Account, 0, len(r.accounts))
	for _, a := range r.accounts {
		result = append(result, clone(a))
	}
	return result, nil
}

func (r *InMemoryRepository) FindByID(_ context.Context, id string) (*models.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.accounts[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return clone(a), nil
}

func (r *InMemoryRepository) FindByUsername(_ context.Context, username string) (*models.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, a := range r.accounts {
		if a.Username == username {
			return clone(a), nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r *InMemoryRepository) FindByVerificationToken(_ context.Context, token string) (*models.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if token == "" {
		return nil, common.ErrorNotFound
	}
	for _, a := range r.accounts {
		if a.VerifiedAt == nil && tokenEqual(a.VerificationToken, token) {
			return clone(a), nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r *InMemoryRepository) FindByResetToken(_ context.Context, token string) (*models.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if token == "" {
		return nil, common.ErrorNotFound
	}
	for _, a := range r.accounts {
		if tokenEqual(a.PasswordResetToken, token) {
			return clone(a), nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r *InMemoryRepository) FindByRefreshToken(_ context.Context, token string) (*models.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if token == "" {
		return nil, common.ErrorNotFound
	}
	for _, a := range r.accounts {
		if tokenEqual(a.RefreshToken, token) {
			return clone(a), nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r *InMemoryRepository) RotateRefreshToken(_ context.Context, accountID, presented string, next models.RefreshRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.accounts[accountID]
	if !ok {
		return common.ErrorNotFound
	}
	if presented == "" || !tokenEqual(a.RefreshToken, presented) {
		return common.ErrorNotFound
	}
	if a.RefreshTokenExpires == nil || !next.CreatedAt.Before(*a.RefreshTokenExpires) {
		return common.ErrorNotFound
	}

	a.RefreshToken = next.Token
	created := next.CreatedAt
	expires := next.Expires
	a.RefreshTokenCreatedAt = &created
	a.RefreshTokenExpires = &expires
	a.ModifiedAt = time.Now()
	return nil
}
