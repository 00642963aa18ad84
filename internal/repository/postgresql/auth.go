package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/fieldforce-hq/attendance-backend-go/internal/domain/auth"
	"github.com/fieldforce-hq/attendance-backend-go/internal/pkg/database"
)

type otpRepositoryImpl struct {
	db *database.DB
}

func NewOTPRepository(db *database.DB) auth.OTPRepository {
	return &otpRepositoryImpl{db: db}
}

const otpColumns = `id, phone, code_hash, expires_at, attempts, used, created_at`

func scanOTP(row pgx.Row) (auth.OTPCode, error) {
	var otp auth.OTPCode
	err := row.Scan(
		&otp.ID,
		&otp.Phone,
		&otp.CodeHash,
		&otp.ExpiresAt,
		&otp.Attempts,
		&otp.Used,
		&otp.CreatedAt,
	)
	return otp, err
}

func (r *otpRepositoryImpl) Create(ctx context.Context, otp auth.OTPCode) (auth.OTPCode, error) {
	q := GetQuerier(ctx, r.db)
	query := `
		INSERT INTO otp_codes (phone, code_hash, expires_at, attempts, used)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`

	err := q.QueryRow(ctx, query,
		otp.Phone,
		otp.CodeHash,
		otp.ExpiresAt,
		otp.Attempts,
		otp.Used,
	).Scan(&otp.ID, &otp.CreatedAt)
	if err != nil {
		return auth.OTPCode{}, fmt.Errorf("create otp: %w", err)
	}
	return otp, nil
}

func (r *otpRepositoryImpl) GetLatestByPhone(ctx context.Context, phone string) (*auth.OTPCode, error) {
	q := GetQuerier(ctx, r.db)
	query := `SELECT ` + otpColumns + ` FROM otp_codes WHERE phone = $1 ORDER BY created_at DESC LIMIT 1`

	otp, err := scanOTP(q.QueryRow(ctx, query, phone))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get latest otp: %w", err)
	}
	return &otp, nil
}

func (r *otpRepositoryImpl) IncrementAttempts(ctx context.Context, id int64) error {
	q := GetQuerier(ctx, r.db)
	query := `UPDATE otp_codes SET attempts = attempts + 1 WHERE id = $1`

	tag, err := q.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("increment otp attempts: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return auth.ErrOTPNotFound
	}
	return nil
}

func (r *otpRepositoryImpl) MarkUsed(ctx context.Context, id int64) error {
	q := GetQuerier(ctx, r.db)
	query := `UPDATE otp_codes SET used = TRUE WHERE id = $1`

	tag, err := q.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("mark otp used: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return auth.ErrOTPNotFound
	}
	return nil
}

func (r *otpRepositoryImpl) InvalidateByPhone(ctx context.Context, phone string) error {
	q := GetQuerier(ctx, r.db)
	query := `UPDATE otp_codes SET used = TRUE WHERE phone = $1 AND used = FALSE`

	if _, err := q.Exec(ctx, query, phone); err != nil {
		return fmt.Errorf("invalidate otps: %w", err)
	}
	return nil
}

type refreshTokenRepositoryImpl struct {
	db *database.DB
}

func NewRefreshTokenRepository(db *database.DB) auth.RefreshTokenRepository {
	return &refreshTokenRepositoryImpl{db: db}
}

const refreshTokenColumns = `id, emp_code, token_hash, token_family, previous_token_id, issued_at, expires_at, revoked_at`

func scanRefreshToken(row pgx.Row) (auth.RefreshToken, error) {
	var t auth.RefreshToken
	err := row.Scan(
		&t.ID,
		&t.EmpCode,
		&t.TokenHash,
		&t.TokenFamily,
		&t.PreviousTokenID,
		&t.IssuedAt,
		&t.ExpiresAt,
		&t.RevokedAt,
	)
	return t, err
}

func (r *refreshTokenRepositoryImpl) Create(ctx context.Context, token auth.RefreshToken) error {
	q := GetQuerier(ctx, r.db)
	query := `
		INSERT INTO refresh_tokens (id, emp_code, token_hash, token_family, previous_token_id, issued_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := q.Exec(ctx, query,
		token.ID,
		token.EmpCode,
		token.TokenHash,
		token.TokenFamily,
		token.PreviousTokenID,
		token.IssuedAt,
		token.ExpiresAt,
	)
	if err != nil {
		return fmt.Errorf("create refresh token: %w", err)
	}
	return nil
}

func (r *refreshTokenRepositoryImpl) GetByTokenHash(ctx context.Context, tokenHash string) (*auth.RefreshToken, error) {
	q := GetQuerier(ctx, r.db)
	query := `SELECT ` + refreshTokenColumns + ` FROM refresh_tokens WHERE token_hash = $1`

	t, err := scanRefreshToken(q.QueryRow(ctx, query, tokenHash))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get refresh token: %w", err)
	}
	return &t, nil
}

func (r *refreshTokenRepositoryImpl) Revoke(ctx context.Context, id string, at time.Time) error {
	q := GetQuerier(ctx, r.db)
	query := `UPDATE refresh_tokens SET revoked_at = $2 WHERE id = $1 AND revoked_at IS NULL`

	if _, err := q.Exec(ctx, query, id, at); err != nil {
		return fmt.Errorf("revoke refresh token: %w", err)
	}
	return nil
}

func (r *refreshTokenRepositoryImpl) RevokeFamily(ctx context.Context, tokenFamily string, at time.Time) (int, error) {
	q := GetQuerier(ctx, r.db)
	query := `UPDATE refresh_tokens SET revoked_at = $2 WHERE token_family = $1 AND revoked_at IS NULL`

	tag, err := q.Exec(ctx, query, tokenFamily, at)
	if err != nil {
		return 0, fmt.Errorf("revoke token family: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

func (r *refreshTokenRepositoryImpl) DeleteExpiredBefore(ctx context.Context, cutoff time.Time) (int, error) {
	q := GetQuerier(ctx, r.db)
	query := `DELETE FROM refresh_tokens WHERE expires_at < $1 OR revoked_at < $1`

	tag, err := q.Exec(ctx, query, cutoff)
	if err != nil {
		return 0, fmt.Errorf("delete expired refresh tokens: %w", err)
	}
	return int(tag.RowsAffected()), nil
}
