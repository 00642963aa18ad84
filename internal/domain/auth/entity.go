package auth

import (
	"time"
)

// OTPCode is a one-time login code. Only a bcrypt hash of the code is
// stored; the plaintext goes out over WhatsApp and is never persisted.
type OTPCode struct {
	ID        int64
	Phone     string
	CodeHash  string
	ExpiresAt time.Time
	Attempts  int
	Used      bool
	CreatedAt time.Time
}

// RefreshToken is one link of a rotation chain. The opaque token string
// is stored as a SHA-256 hash; TokenFamily ties the whole chain together
// so replay of a rotated token can revoke every descendant.
type RefreshToken struct {
	ID              string // uuid
	EmpCode         string
	TokenHash       string
	TokenFamily     string // uuid shared across the chain
	PreviousTokenID *string
	IssuedAt        time.Time
	ExpiresAt       time.Time
	RevokedAt       *time.Time
}

// Usable reports whether the token can still be redeemed.
func (t RefreshToken) Usable(now time.Time) bool {
	return t.RevokedAt == nil && now.Before(t.ExpiresAt)
}
