package auth

import "errors"

var (
	ErrEmployeeNotFound    = errors.New("no employee registered with this phone number")
	ErrOTPNotFound         = errors.New("no verification code requested for this phone number")
	ErrOTPExpired          = errors.New("verification code has expired")
	ErrOTPInvalid          = errors.New("invalid verification code")
	ErrOTPAttemptsExceeded = errors.New("too many failed attempts, request a new code")
	ErrOTPAlreadyUsed      = errors.New("verification code has already been used")
	ErrOTPDeliveryFailed   = errors.New("failed to deliver verification code")
	ErrInvalidToken        = errors.New("invalid or expired token")
	ErrTokenExpired        = errors.New("token has expired")
	ErrRefreshTokenRevoked = errors.New("refresh token has been revoked")
	ErrRefreshTokenReused  = errors.New("refresh token reuse detected, session family revoked")
)
