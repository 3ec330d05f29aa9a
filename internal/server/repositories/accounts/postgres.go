package accounts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dsavelev/authkeeper/internal/common"
	"github.com/dsavelev/authkeeper/internal/dbx"
	"github.com/dsavelev/authkeeper/internal/server/models"
	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
)

// PostgresRepository implements Repository over dbx.DBTX (satisfied by
// *sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const accountColumns = `id, username, email, password_hash, password_salt,
	login_attempt_count, verified_at,
	verification_token, verification_token_created_at, verification_token_expires,
	password_reset_token, reset_token_expires,
	access_token, access_token_created_at, access_token_expires,
	refresh_token, refresh_token_created_at, refresh_token_expires,
	created_at, modified_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(row rowScanner) (*models.Account, error) {
	a := &models.Account{}
	var (
		verifiedAt, verificationCreated, verificationExpires sql.NullTime
		resetExpires                                         sql.NullTime
		accessCreated, accessExpires                         sql.NullTime
		refreshCreated, refreshExpires                       sql.NullTime
	)

	err := row.Scan(
		&a.ID, &a.Username, &a.Email, &a.PasswordHash, &a.PasswordSalt,
		&a.LoginAttemptCount, &verifiedAt,
		&a.VerificationToken, &verificationCreated, &verificationExpires,
		&a.PasswordResetToken, &resetExpires,
		&a.AccessToken, &accessCreated, &accessExpires,
		&a.RefreshToken, &refreshCreated, &refreshExpires,
		&a.CreatedAt, &a.ModifiedAt,
	)
	if err != nil {
		return nil, err
	}

	a.VerifiedAt = timePtr(verifiedAt)
	a.VerificationTokenCreatedAt = timePtr(verificationCreated)
	a.VerificationTokenExpires = timePtr(verificationExpires)
	a.ResetTokenExpires = timePtr(resetExpires)
	a.AccessTokenCreatedAt = timePtr(accessCreated)
	a.AccessTokenExpires = timePtr(accessExpires)
	a.RefreshTokenCreatedAt = timePtr(refreshCreated)
	a.RefreshTokenExpires = timePtr(refreshExpires)

	return a, nil
}

func timePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func (r *PostgresRepository) Insert(ctx context.Context, account *models.Account) (*models.Account, error) {
	if account.ID == "" {
		account.ID = uuid.NewString()
	}
	now := time.Now()
	if account.CreatedAt.IsZero() {
		account.CreatedAt = now
	}
	account.ModifiedAt = now

	query := `
		INSERT INTO accounts (id, username, email, password_hash, password_salt,
			login_attempt_count, verified_at,
			verification_token, verification_token_created_at, verification_token_expires,
			created_at, modified_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	_, err := r.db.ExecContext(ctx, query,
		account.ID, account.Username, account.Email, account.PasswordHash, account.PasswordSalt,
		account.LoginAttemptCount, nullTime(account.VerifiedAt),
		account.VerificationToken, nullTime(account.VerificationTokenCreatedAt), nullTime(account.VerificationTokenExpires),
		account.CreatedAt, account.ModifiedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return nil, common.ErrorConflict
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return account, nil
}

func (r *PostgresRepository) Update(ctx context.Context, account *models.Account) error {
	account.ModifiedAt = time.Now()

	query := `
		UPDATE accounts
		SET username = $2, email = $3, password_hash = $4, password_salt = $5,
			login_attempt_count = $6, verified_at = $7,
			verification_token = $8, verification_token_created_at = $9, verification_token_expires = $10,
			password_reset_token = $11, reset_token_expires = $12,
			access_token = $13, access_token_created_at = $14, access_token_expires = $15,
			refresh_token = $16, refresh_token_created_at = $17, refresh_token_expires = $18,
			modified_at = $19
		WHERE id = $1
	`
	res, err := r.db.ExecContext(ctx, query,
		account.ID, account.Username, account.Email, account.PasswordHash, account.PasswordSalt,
		account.LoginAttemptCount, nullTime(account.VerifiedAt),
		account.VerificationToken, nullTime(account.VerificationTokenCreatedAt), nullTime(account.VerificationTokenExpires),
		account.PasswordResetToken, nullTime(account.ResetTokenExpires),
		account.AccessToken, nullTime(account.AccessTokenCreatedAt), nullTime(account.AccessTokenExpires),
		account.RefreshToken, nullTime(account.RefreshTokenCreatedAt), nullTime(account.RefreshTokenExpires),
		account.ModifiedAt,
	)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM accounts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *PostgresRepository) List(ctx context.Context) ([]*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts ORDER BY created_at`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) findOne(ctx context.Context, where string, arg any) (*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE ` + where

	a, err := scanAccount(r.db.QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return a, nil
}

func (r *PostgresRepository) FindByID(ctx context.Context, id string) (*models.Account, error) {
	return r.findOne(ctx, `id = $1`, id)
}

func (r *PostgresRepository) FindByUsername(ctx context.Context, username string) (*models.Account, error) {
	return r.findOne(ctx, `username = $1`, username)
}

func (r *PostgresRepository) FindByVerificationToken(ctx context.Context, token string) (*models.Account, error) {
	return r.findOne(ctx, `verification_token = $1 AND verification_token <> '' AND verified_at IS NULL`, token)
}

func (r *PostgresRepository) FindByResetToken(ctx context.Context, token string) (*models.Account, error) {
	return r.findOne(ctx, `password_reset_token = $1 AND password_reset_token <> ''`, token)
}

func (r *PostgresRepository) FindByRefreshToken(ctx context.Context, token string) (*models.Account, error) {
	return r.findOne(ctx, `refresh_token = $1 AND refresh_token <> ''`, token)
}

// RotateRefreshToken is a compare-and-swap: the UPDATE matches only
// while the stored token still equals presented and is unexpired, so of
// two concurrent refresh attempts exactly one can succeed.
func (r *PostgresRepository) RotateRefreshToken(ctx context.Context, accountID, presented string, next models.RefreshRecord) error {
	query := `
		UPDATE accounts
		SET refresh_token = $1, refresh_token_created_at = $2, refresh_token_expires = $3,
			modified_at = $2
		WHERE id = $4 AND refresh_token = $5 AND refresh_token <> '' AND refresh_token_expires > $2
	`
	res, err := r.db.ExecContext(ctx, query,
		next.Token, next.CreatedAt, next.Expires, accountID, presented)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}
