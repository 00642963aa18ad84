package auth

import (
	"context"
	"time"
)

type OTPRepository interface {
	Create(ctx context.Context, otp OTPCode) (OTPCode, error)

	// GetLatestByPhone returns the newest code for the phone, nil if none
	GetLatestByPhone(ctx context.Context, phone string) (*OTPCode, error)

	IncrementAttempts(ctx context.Context, id int64) error
	MarkUsed(ctx context.Context, id int64) error

	// InvalidateByPhone marks all outstanding codes for the phone used,
	// so requesting a new code retires older ones.
	InvalidateByPhone(ctx context.Context, phone string) error
}

type RefreshTokenRepository interface {
	Create(ctx context.Context, token RefreshToken) error

	// GetByTokenHash returns the stored token matching the hash, nil if
	// unknown.
	GetByTokenHash(ctx context.Context, tokenHash string) (*RefreshToken, error)

	Revoke(ctx context.Context, id string, at time.Time) error

	// RevokeFamily revokes every live token in the family and returns
	// how many were revoked.
	RevokeFamily(ctx context.Context, tokenFamily string, at time.Time) (int, error)

	// DeleteExpiredBefore removes tokens whose expiry or revocation is
	// older than the cutoff. Returns rows deleted.
	DeleteExpiredBefore(ctx context.Context, cutoff time.Time) (int, error)
}
