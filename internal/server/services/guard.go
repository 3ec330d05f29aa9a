package services

import (
	"github.com/dsavelev/authkeeper/internal/common"
	"github.com/dsavelev/authkeeper/internal/server/models"
)

// LoginAttemptGuard decides whether an account may attempt a login.
// It never mutates the counter; AuthService owns increments and resets.
type LoginAttemptGuard struct {
	// MaxAttempts is the number of tolerated failures. The account is
	// blocked once the counter exceeds it.
	MaxAttempts int
}

// Check returns nil when a login attempt is allowed, or
// common.ErrorAccountLocked when the account is past the failure
// ceiling or has not completed verification.
func (g LoginAttemptGuard) Check(a *models.Account) error {
	if a.LoginAttemptCount > g.MaxAttempts {
		return common.ErrorAccountLocked
	}
	if !a.Verified() {
		return common.ErrorAccountLocked
	}
	return nil
}
