// Package services contains server-side business logic. This file
// implements AuthService, which orchestrates registration, login,
// account verification, refresh-token rotation, and password reset
// against the account repository.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dsavelev/authkeeper/internal/common"
	"github.com/dsavelev/authkeeper/internal/cryptox"
	"github.com/dsavelev/authkeeper/internal/dbx"
	"github.com/dsavelev/authkeeper/internal/logging"
	"github.com/dsavelev/authkeeper/internal/server/auth"
	"github.com/dsavelev/authkeeper/internal/server/config"
	"github.com/dsavelev/authkeeper/internal/server/models"
	"github.com/dsavelev/authkeeper/internal/server/repositories/repomanager"
)

// TokenPair bundles a short-lived signed access token and a long-lived
// opaque refresh token. The caller delivers the refresh token in an
// HTTP-only cookie.
type TokenPair struct {
	AccessToken        string
	AccessTokenExpires time.Time
	RefreshToken       models.RefreshRecord
}

// AuthService provides the authentication operations of the server:
//   - Register: create accounts and mint their verification token
//   - Login: verify credentials under the attempt guard and mint tokens
//   - Verify: redeem a verification token (single use)
//   - RefreshToken: rotate refresh tokens and mint new access tokens
//   - ForgotPassword / ResetPassword: reset-token lifecycle
//
// plus plain CRUD passthroughs for the HTTP layer.
type AuthService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	logger      logging.Logger
	guard       LoginAttemptGuard

	jwtSecret                         []byte
	accessTokenValidityDuration       time.Duration
	refreshTokenValidityDuration      time.Duration
	verificationTokenValidityDuration time.Duration
	resetTokenValidityDuration        time.Duration
}

// NewAuthService constructs an AuthService using repositories and server
// config. db may be nil when the repository manager is not SQL-backed
// (the in-memory fake); mutations then run without a transaction.
func NewAuthService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config, logger logging.Logger) *AuthService {
	return &AuthService{
		db:                                db,
		repomanager:                       m,
		logger:                            logger,
		guard:                             LoginAttemptGuard{MaxAttempts: cfg.MaxLoginAttempts},
		jwtSecret:                         []byte(cfg.SecretKey),
		accessTokenValidityDuration:       cfg.AccessTokenValidityDuration,
		refreshTokenValidityDuration:      cfg.RefreshTokenValidityDuration,
		verificationTokenValidityDuration: cfg.VerificationTokenValidityDuration,
		resetTokenValidityDuration:        cfg.ResetTokenValidityDuration,
	}
}

// withTx runs fn inside a database transaction when a SQL handle is
// present, and directly otherwise.
func (s *AuthService) withTx(ctx context.Context, fn func(ctx context.Context, tx dbx.DBTX) error) error {
	if s.db == nil {
		return fn(ctx, nil)
	}
	return dbx.WithTx(ctx, s.db, nil, fn)
}

// Register creates a new account with a hashed password and a freshly
// minted verification token. A taken username yields common.ErrorConflict.
func (s *AuthService) Register(ctx context.Context, username, email, password string) (*models.Account, error) {
	repo := s.repomanager.Accounts(s.db)

	if _, err := repo.FindByUsername(ctx, username); err == nil {
		return nil, common.ErrorConflict
	} else if !errors.Is(err, common.ErrorNotFound) {
		return nil, fmt.Errorf("error checking username: %w", err)
	}

	digest, key, err := cryptox.HashPassword(password)
	if err != nil {
		return nil, common.ErrorInternal
	}

	verification, err := mintOpaqueToken(s.verificationTokenValidityDuration)
	if err != nil {
		return nil, common.ErrorInternal
	}

	account := &models.Account{
		Username:                   username,
		Email:                      email,
		PasswordHash:               digest,
		PasswordSalt:               key,
		VerificationToken:          verification.Token,
		VerificationTokenCreatedAt: &verification.CreatedAt,
		VerificationTokenExpires:   &verification.Expires,
	}

	created, err := repo.Insert(ctx, account)
	if err != nil {
		if errors.Is(err, common.ErrorConflict) {
			return nil, common.ErrorConflict
		}
		return nil, fmt.Errorf("error creating account: %w", err)
	}
	return created, nil
}

// Login verifies the password under the attempt guard and, on success,
// resets the failure counter and mints a token pair. All credential
// failures collapse into common.ErrorUnauthorized so that the caller
// cannot tell an unknown username from a wrong password.
func (s *AuthService) Login(ctx context.Context, username, password string) (*TokenPair, error) {
	repo := s.repomanager.Accounts(s.db)

	account, err := repo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		return nil, common.ErrorInternal
	}

	if err := s.guard.Check(account); err != nil {
		return nil, err
	}

	if !cryptox.VerifyPassword(password, account.PasswordHash, account.PasswordSalt) {
		account.LoginAttemptCount++
		if err := s.withTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
			return s.repomanager.Accounts(s.orDB(tx)).Update(ctx, account)
		}); err != nil {
			s.logger.Error(ctx, "error recording failed login attempt", "error", err.Error())
		}
		return nil, common.ErrorUnauthorized
	}

	var pair *TokenPair
	err = s.withTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		repoTx := s.repomanager.Accounts(s.orDB(tx))

		refresh, err := mintRefreshRecord(s.refreshTokenValidityDuration)
		if err != nil {
			return common.ErrorInternal
		}

		accessToken, accessExpires, err := auth.GenerateToken(account.Username, common.DefaultRole, s.jwtSecret, s.accessTokenValidityDuration)
		if err != nil {
			return common.ErrorInternal
		}

		account.LoginAttemptCount = 0
		account.RefreshToken = refresh.Token
		account.RefreshTokenCreatedAt = &refresh.CreatedAt
		account.RefreshTokenExpires = &refresh.Expires
		account.AccessToken = accessToken
		now := time.Now()
		account.AccessTokenCreatedAt = &now
		account.AccessTokenExpires = &accessExpires

		if err := repoTx.Update(ctx, account); err != nil {
			return fmt.Errorf("error persisting login: %w", err)
		}

		pair = &TokenPair{AccessToken: accessToken, AccessTokenExpires: accessExpires, RefreshToken: refresh}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return pair, nil
}

// Verify redeems a verification token: the matching unverified account
// gets verified_at set and the token cleared, atomically. Unknown,
// already-used, and expired tokens are indistinguishable to the caller.
func (s *AuthService) Verify(ctx context.Context, token string) (*models.Account, error) {
	repo := s.repomanager.Accounts(s.db)

	account, err := repo.FindByVerificationToken(ctx, token)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		return nil, common.ErrorInternal
	}

	if account.VerificationTokenExpires == nil || !time.Now().Before(*account.VerificationTokenExpires) {
		return nil, common.ErrorUnauthorized
	}

	now := time.Now()
	account.VerifiedAt = &now
	account.VerificationToken = ""
	account.VerificationTokenCreatedAt = nil
	account.VerificationTokenExpires = nil

	if err := s.withTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		return s.repomanager.Accounts(s.orDB(tx)).Update(ctx, account)
	}); err != nil {
		return nil, fmt.Errorf("error persisting verification: %w", err)
	}
	return account, nil
}

// RefreshToken validates a presented refresh token, rotates it via a
// compare-and-swap, and returns a fresh TokenPair. A replayed or
// concurrent-losing value yields common.ErrorUnauthorized; an expired
// one yields common.ErrRefreshTokenExpired.
func (s *AuthService) RefreshToken(ctx context.Context, presented string) (*TokenPair, error) {
	repo := s.repomanager.Accounts(s.db)

	account, err := repo.FindByRefreshToken(ctx, presented)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		return nil, common.ErrorInternal
	}

	if account.RefreshTokenExpires == nil || !time.Now().Before(*account.RefreshTokenExpires) {
		return nil, common.ErrRefreshTokenExpired
	}

	var pair *TokenPair
	err = s.withTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		repoTx := s.repomanager.Accounts(s.orDB(tx))

		refresh, err := mintRefreshRecord(s.refreshTokenValidityDuration)
		if err != nil {
			return common.ErrorInternal
		}

		// The swap only matches while the stored value still equals the
		// presented one, so a concurrent refresh cannot double-spend.
		if err := repoTx.RotateRefreshToken(ctx, account.ID, presented, refresh); err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return common.ErrorUnauthorized
			}
			return fmt.Errorf("error rotating refresh token: %w", err)
		}

		accessToken, accessExpires, err := auth.GenerateToken(account.Username, common.DefaultRole, s.jwtSecret, s.accessTokenValidityDuration)
		if err != nil {
			return common.ErrorInternal
		}

		pair = &TokenPair{AccessToken: accessToken, AccessTokenExpires: accessExpires, RefreshToken: refresh}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return pair, nil
}

// ForgotPassword mints a password-reset token for the account. The
// password itself is untouched until the token is redeemed.
func (s *AuthService) ForgotPassword(ctx context.Context, username string) (*models.Account, error) {
	repo := s.repomanager.Accounts(s.db)

	account, err := repo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, common.ErrorInternal
	}

	reset, err := mintOpaqueToken(s.resetTokenValidityDuration)
	if err != nil {
		return nil, common.ErrorInternal
	}

	account.PasswordResetToken = reset.Token
	account.ResetTokenExpires = &reset.Expires

	if err := s.withTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		return s.repomanager.Accounts(s.orDB(tx)).Update(ctx, account)
	}); err != nil {
		return nil, fmt.Errorf("error persisting reset token: %w", err)
	}
	return account, nil
}

// ResetPassword redeems a reset token: rehashes the password, clears the
// token, and unlocks the account. Unknown and expired tokens are
// indistinguishable to the caller.
func (s *AuthService) ResetPassword(ctx context.Context, token, newPassword string) (*models.Account, error) {
	repo := s.repomanager.Accounts(s.db)

	account, err := repo.FindByResetToken(ctx, token)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		return nil, common.ErrorInternal
	}

	if account.ResetTokenExpires == nil || !time.Now().Before(*account.ResetTokenExpires) {
		return nil, common.ErrorUnauthorized
	}

	digest, key, err := cryptox.HashPassword(newPassword)
	if err != nil {
		return nil, common.ErrorInternal
	}

	account.PasswordHash = digest
	account.PasswordSalt = key
	account.PasswordResetToken = ""
	account.ResetTokenExpires = nil
	// A proven password reset is the explicit unlock path.
	account.LoginAttemptCount = 0

	if err := s.withTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		return s.repomanager.Accounts(s.orDB(tx)).Update(ctx, account)
	}); err != nil {
		return nil, fmt.Errorf("error persisting password reset: %w", err)
	}
	return account, nil
}

// Edit renames an account and/or replaces its password.
func (s *AuthService) Edit(ctx context.Context, id, username, password string) (*models.Account, error) {
	repo := s.repomanager.Accounts(s.db)

	account, err := repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if username != "" {
		account.Username = username
	}
	if password != "" {
		digest, key, err := cryptox.HashPassword(password)
		if err != nil {
			return nil, common.ErrorInternal
		}
		account.PasswordHash = digest
		account.PasswordSalt = key
	}

	if err := s.withTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		return s.repomanager.Accounts(s.orDB(tx)).Update(ctx, account)
	}); err != nil {
		return nil, fmt.Errorf("error persisting edit: %w", err)
	}
	return account, nil
}

// GetByID returns one account.
func (s *AuthService) GetByID(ctx context.Context, id string) (*models.Account, error) {
	return s.repomanager.Accounts(s.db).FindByID(ctx, id)
}

// GetByUsername returns one account by its unique username.
func (s *AuthService) GetByUsername(ctx context.Context, username string) (*models.Account, error) {
	return s.repomanager.Accounts(s.db).FindByUsername(ctx, username)
}

// List returns all accounts.
func (s *AuthService) List(ctx context.Context) ([]*models.Account, error) {
	return s.repomanager.Accounts(s.db).List(ctx)
}

// Delete removes an account.
func (s *AuthService) Delete(ctx context.Context, id string) error {
	return s.repomanager.Accounts(s.db).Delete(ctx, id)
}

// orDB substitutes the service's base handle when fn runs untransacted.
func (s *AuthService) orDB(tx dbx.DBTX) dbx.DBTX {
	if tx == nil {
		return s.db
	}
	return tx
}
