package auth

import (
	"context"
)

type AuthService interface {
	// RequestOTP generates a login code and delivers it over WhatsApp
	RequestOTP(ctx context.Context, req RequestOTPRequest) (RequestOTPResponse, error)

	// VerifyOTP redeems a code for an access token plus a refresh token
	// that starts a new rotation family
	VerifyOTP(ctx context.Context, req VerifyOTPRequest) (TokenResponse, error)

	// RefreshToken rotates a refresh token. Presenting an already
	// rotated or revoked token revokes its whole family.
	RefreshToken(ctx context.Context, req RefreshTokenRequest) (TokenResponse, error)

	// Logout revokes the presented refresh token's family
	Logout(ctx context.Context, req LogoutRequest) error

	// PurgeExpiredTokens removes refresh tokens past the retention
	// window. Returns rows deleted.
	PurgeExpiredTokens(ctx context.Context) (int, error)
}
