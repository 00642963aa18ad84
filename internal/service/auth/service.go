package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/fieldforce-hq/attendance-backend-go/internal/config"
	"github.com/fieldforce-hq/attendance-backend-go/internal/domain/auth"
	"github.com/fieldforce-hq/attendance-backend-go/internal/domain/employee"
	"github.com/fieldforce-hq/attendance-backend-go/internal/pkg/jwt"
	"github.com/fieldforce-hq/attendance-backend-go/internal/pkg/whatsapp"
)

type AuthServiceImpl struct {
	otps      auth.OTPRepository
	tokens    auth.RefreshTokenRepository
	employees employee.EmployeeRepository
	jwt       jwt.Service
	whatsapp  whatsapp.Service
	otpCfg    config.OTPConfig
	jwtCfg    config.JWTConfig
	now       func() time.Time
}

func NewAuthService(
	otps auth.OTPRepository,
	tokens auth.RefreshTokenRepository,
	employees employee.EmployeeRepository,
	jwtService jwt.Service,
	wa whatsapp.Service,
	otpCfg config.OTPConfig,
	jwtCfg config.JWTConfig,
) *AuthServiceImpl {
	return &AuthServiceImpl{
		otps:      otps,
		tokens:    tokens,
		employees: employees,
		jwt:       jwtService,
		whatsapp:  wa,
		otpCfg:    otpCfg,
		jwtCfg:    jwtCfg,
		now:       time.Now,
	}
}

// RequestOTP implements auth.AuthService.
func (a *AuthServiceImpl) RequestOTP(ctx context.Context, req auth.RequestOTPRequest) (auth.RequestOTPResponse, error) {
	if err := req.Validate(); err != nil {
		return auth.RequestOTPResponse{}, err
	}

	emp, err := a.employees.GetByPhone(ctx, req.Phone)
	if err != nil {
		if errors.Is(err, employee.ErrEmployeeNotFound) {
			return auth.RequestOTPResponse{}, auth.ErrEmployeeNotFound
		}
		return auth.RequestOTPResponse{}, fmt.Errorf("get employee by phone: %w", err)
	}
	if !emp.IsActive {
		return auth.RequestOTPResponse{}, employee.ErrEmployeeInactive
	}

	// Requesting a new code retires any outstanding ones.
	if err := a.otps.InvalidateByPhone(ctx, req.Phone); err != nil {
		return auth.RequestOTPResponse{}, fmt.Errorf("invalidate previous codes: %w", err)
	}

	code, err := generateCode()
	if err != nil {
		return auth.RequestOTPResponse{}, fmt.Errorf("generate code: %w", err)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return auth.RequestOTPResponse{}, fmt.Errorf("hash code: %w", err)
	}

	now := a.now()
	_, err = a.otps.Create(ctx, auth.OTPCode{
		Phone:     req.Phone,
		CodeHash:  string(hash),
		ExpiresAt: now.Add(a.otpCfg.Expiration),
	})
	if err != nil {
		return auth.RequestOTPResponse{}, fmt.Errorf("store code: %w", err)
	}

	delivered := a.whatsapp.SendOTP(req.Phone, code, emp.Name)
	if !delivered {
		slog.Error("OTP delivery failed", "phone", req.Phone, "emp_code", emp.EmpCode)
	}

	return auth.RequestOTPResponse{
		Phone:     req.Phone,
		ExpiresIn: int(a.otpCfg.Expiration.Seconds()),
		Delivered: delivered,
	}, nil
}

// VerifyOTP implements auth.AuthService.
func (a *AuthServiceImpl) VerifyOTP(ctx context.Context, req auth.VerifyOTPRequest) (auth.TokenResponse, error) {
	if err := req.Validate(); err != nil {
		return auth.TokenResponse{}, err
	}

	emp, err := a.employees.GetByPhone(ctx, req.Phone)
	if err != nil {
		if errors.Is(err, employee.ErrEmployeeNotFound) {
			return auth.TokenResponse{}, auth.ErrEmployeeNotFound
		}
		return auth.TokenResponse{}, fmt.Errorf("get employee by phone: %w", err)
	}
	if !emp.IsActive {
		return auth.TokenResponse{}, employee.ErrEmployeeInactive
	}

	otp, err := a.otps.GetLatestByPhone(ctx, req.Phone)
	if err != nil {
		return auth.TokenResponse{}, fmt.Errorf("get latest code: %w", err)
	}
	if otp == nil {
		return auth.TokenResponse{}, auth.ErrOTPNotFound
	}
	if otp.Used {
		return auth.TokenResponse{}, auth.ErrOTPAlreadyUsed
	}

	now := a.now()
	if now.After(otp.ExpiresAt) {
		return auth.TokenResponse{}, auth.ErrOTPExpired
	}
	if otp.Attempts >= a.otpCfg.MaxAttempts {
		return auth.TokenResponse{}, auth.ErrOTPAttemptsExceeded
	}

	if err := bcrypt.CompareHashAndPassword([]byte(otp.CodeHash), []byte(req.Code)); err != nil {
		if err := a.otps.IncrementAttempts(ctx, otp.ID); err != nil {
			return auth.TokenResponse{}, fmt.Errorf("increment attempts: %w", err)
		}
		return auth.TokenResponse{}, auth.ErrOTPInvalid
	}

	if err := a.otps.MarkUsed(ctx, otp.ID); err != nil {
		return auth.TokenResponse{}, fmt.Errorf("mark code used: %w", err)
	}

	// A fresh login starts a new rotation family.
	resp, err := a.issueTokens(ctx, emp, uuid.NewString(), nil)
	if err != nil {
		return auth.TokenResponse{}, err
	}

	slog.Info("employee logged in", "emp_code", emp.EmpCode)
	return resp, nil
}

// RefreshToken implements auth.AuthService.
func (a *AuthServiceImpl) RefreshToken(ctx context.Context, req auth.RefreshTokenRequest) (auth.TokenResponse, error) {
	if err := req.Validate(); err != nil {
		return auth.TokenResponse{}, err
	}

	stored, err := a.tokens.GetByTokenHash(ctx, hashToken(req.RefreshToken))
	if err != nil {
		return auth.TokenResponse{}, fmt.Errorf("get refresh token: %w", err)
	}
	if stored == nil {
		return auth.TokenResponse{}, auth.ErrInvalidToken
	}

	now := a.now()
	if stored.RevokedAt != nil {
		// The token was already rotated or revoked. Someone replaying it
		// means the chain can no longer be trusted.
		revoked, err := a.tokens.RevokeFamily(ctx, stored.TokenFamily, now)
		if err != nil {
			return auth.TokenResponse{}, fmt.Errorf("revoke token family: %w", err)
		}
		slog.Warn("refresh token reuse detected",
			"emp_code", stored.EmpCode,
			"token_family", stored.TokenFamily,
			"tokens_revoked", revoked,
		)
		return auth.TokenResponse{}, auth.ErrRefreshTokenReused
	}
	if now.After(stored.ExpiresAt) {
		return auth.TokenResponse{}, auth.ErrTokenExpired
	}

	emp, err := a.employees.GetByEmpCode(ctx, stored.EmpCode)
	if err != nil {
		return auth.TokenResponse{}, fmt.Errorf("get employee: %w", err)
	}
	if !emp.IsActive {
		return auth.TokenResponse{}, employee.ErrEmployeeInactive
	}

	if err := a.tokens.Revoke(ctx, stored.ID, now); err != nil {
		return auth.TokenResponse{}, fmt.Errorf("revoke rotated token: %w", err)
	}

	return a.issueTokens(ctx, emp, stored.TokenFamily, &stored.ID)
}

// Logout implements auth.AuthService.
func (a *AuthServiceImpl) Logout(ctx context.Context, req auth.LogoutRequest) error {
	if req.RefreshToken == "" {
		return nil
	}

	stored, err := a.tokens.GetByTokenHash(ctx, hashToken(req.RefreshToken))
	if err != nil {
		return fmt.Errorf("get refresh token: %w", err)
	}
	if stored == nil {
		return nil
	}

	revoked, err := a.tokens.RevokeFamily(ctx, stored.TokenFamily, a.now())
	if err != nil {
		return fmt.Errorf("revoke token family: %w", err)
	}

	slog.Info("employee logged out",
		"emp_code", stored.EmpCode,
		"tokens_revoked", revoked,
	)
	return nil
}

// PurgeExpiredTokens implements auth.AuthService.
func (a *AuthServiceImpl) PurgeExpiredTokens(ctx context.Context) (int, error) {
	cutoff := a.now().Add(-a.jwtCfg.RefreshRetention)
	deleted, err := a.tokens.DeleteExpiredBefore(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("delete expired tokens: %w", err)
	}
	if deleted > 0 {
		slog.Info("purged expired refresh tokens", "deleted", deleted)
	}
	return deleted, nil
}

func (a *AuthServiceImpl) issueTokens(ctx context.Context, emp employee.Employee, family string, previousTokenID *string) (auth.TokenResponse, error) {
	accessToken, accessExpiresAt, err := a.jwt.GenerateAccessToken(emp.EmpCode, emp.Name, string(emp.Role))
	if err != nil {
		return auth.TokenResponse{}, fmt.Errorf("generate access token: %w", err)
	}

	refreshToken, err := generateOpaqueToken()
	if err != nil {
		return auth.TokenResponse{}, fmt.Errorf("generate refresh token: %w", err)
	}

	now := a.now()
	refreshExpiresAt := now.Add(a.jwtCfg.RefreshExpiration)
	err = a.tokens.Create(ctx, auth.RefreshToken{
		ID:              uuid.NewString(),
		EmpCode:         emp.EmpCode,
		TokenHash:       hashToken(refreshToken),
		TokenFamily:     family,
		PreviousTokenID: previousTokenID,
		IssuedAt:        now,
		ExpiresAt:       refreshExpiresAt,
	})
	if err != nil {
		return auth.TokenResponse{}, fmt.Errorf("store refresh token: %w", err)
	}

	return auth.TokenResponse{
		AccessToken:      accessToken,
		AccessExpiresAt:  accessExpiresAt,
		RefreshToken:     refreshToken,
		RefreshExpiresAt: refreshExpiresAt.Unix(),
		EmpCode:          emp.EmpCode,
		Name:             emp.Name,
		Role:             string(emp.Role),
	}, nil
}

func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

func generateOpaqueToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
