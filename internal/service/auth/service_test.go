package auth

import (
	"context"
	"net/http"
	"sort"
	"testing"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/fieldforce-hq/attendance-backend-go/internal/config"
	"github.com/fieldforce-hq/attendance-backend-go/internal/domain/auth"
	"github.com/fieldforce-hq/attendance-backend-go/internal/domain/employee"
)

type fakeOTPRepo struct {
	otps   map[int64]auth.OTPCode
	nextID int64
}

func newFakeOTPRepo() *fakeOTPRepo {
	return &fakeOTPRepo{otps: make(map[int64]auth.OTPCode)}
}

func (f *fakeOTPRepo) Create(ctx context.Context, otp auth.OTPCode) (auth.OTPCode, error) {
	f.nextID++
	otp.ID = f.nextID
	otp.CreatedAt = time.Now()
	f.otps[otp.ID] = otp
	return otp, nil
}

func (f *fakeOTPRepo) GetLatestByPhone(ctx context.Context, phone string) (*auth.OTPCode, error) {
	var ids []int64
	for id, otp := range f.otps {
		if otp.Phone == phone {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return nil, nil
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] > ids[j] })
	latest := f.otps[ids[0]]
	return &latest, nil
}

func (f *fakeOTPRepo) IncrementAttempts(ctx context.Context, id int64) error {
	otp := f.otps[id]
	otp.Attempts++
	f.otps[id] = otp
	return nil
}

func (f *fakeOTPRepo) MarkUsed(ctx context.Context, id int64) error {
	otp := f.otps[id]
	otp.Used = true
	f.otps[id] = otp
	return nil
}

func (f *fakeOTPRepo) InvalidateByPhone(ctx context.Context, phone string) error {
	for id, otp := range f.otps {
		if otp.Phone == phone && !otp.Used {
			otp.Used = true
			f.otps[id] = otp
		}
	}
	return nil
}

type fakeTokenRepo struct {
	tokens map[string]auth.RefreshToken // keyed by ID
}

func newFakeTokenRepo() *fakeTokenRepo {
	return &fakeTokenRepo{tokens: make(map[string]auth.RefreshToken)}
}

func (f *fakeTokenRepo) Create(ctx context.Context, token auth.RefreshToken) error {
	f.tokens[token.ID] = token
	return nil
}

func (f *fakeTokenRepo) GetByTokenHash(ctx context.Context, tokenHash string) (*auth.RefreshToken, error) {
	for _, t := range f.tokens {
		if t.TokenHash == tokenHash {
			found := t
			return &found, nil
		}
	}
	return nil, nil
}

func (f *fakeTokenRepo) Revoke(ctx context.Context, id string, at time.Time) error {
	t, ok := f.tokens[id]
	if !ok || t.RevokedAt != nil {
		return nil
	}
	t.RevokedAt = &at
	f.tokens[id] = t
	return nil
}

func (f *fakeTokenRepo) RevokeFamily(ctx context.Context, tokenFamily string, at time.Time) (int, error) {
	revoked := 0
	for id, t := range f.tokens {
		if t.TokenFamily == tokenFamily && t.RevokedAt == nil {
			t.RevokedAt = &at
			f.tokens[id] = t
			revoked++
		}
	}
	return revoked, nil
}

func (f *fakeTokenRepo) DeleteExpiredBefore(ctx context.Context, cutoff time.Time) (int, error) {
	deleted := 0
	for id, t := range f.tokens {
		if t.ExpiresAt.Before(cutoff) || (t.RevokedAt != nil && t.RevokedAt.Before(cutoff)) {
			delete(f.tokens, id)
			deleted++
		}
	}
	return deleted, nil
}

func (f *fakeTokenRepo) liveCount(family string) int {
	n := 0
	for _, t := range f.tokens {
		if t.TokenFamily == family && t.RevokedAt == nil {
			n++
		}
	}
	return n
}

type fakeEmployeeRepo struct {
	employees map[string]employee.Employee
}

func newFakeEmployeeRepo() *fakeEmployeeRepo {
	return &fakeEmployeeRepo{employees: make(map[string]employee.Employee)}
}

func (f *fakeEmployeeRepo) GetByEmpCode(ctx context.Context, empCode string) (employee.Employee, error) {
	e, ok := f.employees[empCode]
	if !ok {
		return employee.Employee{}, employee.ErrEmployeeNotFound
	}
	return e, nil
}

func (f *fakeEmployeeRepo) GetByPhone(ctx context.Context, phone string) (employee.Employee, error) {
	for _, e := range f.employees {
		if e.Phone == phone {
			return e, nil
		}
	}
	return employee.Employee{}, employee.ErrEmployeeNotFound
}

func (f *fakeEmployeeRepo) Create(ctx context.Context, e employee.Employee) (employee.Employee, error) {
	f.employees[e.EmpCode] = e
	return e, nil
}

func (f *fakeEmployeeRepo) ListActive(ctx context.Context) ([]employee.Employee, error) {
	return nil, nil
}

type fakeJWT struct{}

func (f *fakeJWT) GenerateAccessToken(empCode, name, role string) (string, int64, error) {
	return "access-" + empCode, time.Now().Add(15 * time.Minute).Unix(), nil
}

func (f *fakeJWT) JWTAuth() *jwtauth.JWTAuth { return nil }

func (f *fakeJWT) RefreshTokenCookie(token string, expiresAt time.Time) *http.Cookie { return nil }

type fakeWhatsApp struct {
	delivered bool
	lastCode  string
	lastPhone string
}

func (f *fakeWhatsApp) SendOTP(phone, code, name string) bool {
	f.lastPhone = phone
	f.lastCode = code
	return f.delivered
}

func (f *fakeWhatsApp) SendNotification(phone, message string) bool { return f.delivered }

type fixture struct {
	svc       *AuthServiceImpl
	otps      *fakeOTPRepo
	tokens    *fakeTokenRepo
	employees *fakeEmployeeRepo
	wa        *fakeWhatsApp
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		otps:      newFakeOTPRepo(),
		tokens:    newFakeTokenRepo(),
		employees: newFakeEmployeeRepo(),
		wa:        &fakeWhatsApp{delivered: true},
	}
	f.employees.Create(context.Background(), employee.Employee{
		EmpCode:  "EMP001",
		Name:     "Asha Rao",
		Phone:    "9876543210",
		Role:     employee.RoleEmployee,
		IsActive: true,
	})
	f.svc = NewAuthService(
		f.otps, f.tokens, f.employees, &fakeJWT{}, f.wa,
		config.OTPConfig{Expiration: 5 * time.Minute, MaxAttempts: 3},
		config.JWTConfig{
			AccessExpiration:  15 * time.Minute,
			RefreshExpiration: 30 * 24 * time.Hour,
			RefreshRetention:  90 * 24 * time.Hour,
		},
	)
	return f
}

func (f *fixture) at(t time.Time) {
	f.svc.now = func() time.Time { return t }
}

// login runs the request/verify flow using the code captured by the fake
// WhatsApp sender and returns the token pair.
func (f *fixture) login(t *testing.T) auth.TokenResponse {
	t.Helper()
	_, err := f.svc.RequestOTP(context.Background(), auth.RequestOTPRequest{Phone: "9876543210"})
	require.NoError(t, err)

	resp, err := f.svc.VerifyOTP(context.Background(), auth.VerifyOTPRequest{
		Phone: "9876543210", Code: f.wa.lastCode,
	})
	require.NoError(t, err)
	return resp
}

func TestRequestOTPUnknownPhone(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.RequestOTP(context.Background(), auth.RequestOTPRequest{Phone: "9999999999"})
	assert.ErrorIs(t, err, auth.ErrEmployeeNotFound)
}

func TestRequestOTPInactiveEmployee(t *testing.T) {
	f := newFixture(t)
	f.employees.Create(context.Background(), employee.Employee{
		EmpCode: "EMP002", Name: "Left Company", Phone: "9876500000", IsActive: false,
	})

	_, err := f.svc.RequestOTP(context.Background(), auth.RequestOTPRequest{Phone: "9876500000"})
	assert.ErrorIs(t, err, employee.ErrEmployeeInactive)
}

func TestRequestOTPRetiresPreviousCode(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.RequestOTP(context.Background(), auth.RequestOTPRequest{Phone: "9876543210"})
	require.NoError(t, err)

	resp, err := f.svc.RequestOTP(context.Background(), auth.RequestOTPRequest{Phone: "9876543210"})
	require.NoError(t, err)
	assert.True(t, resp.Delivered)
	assert.Equal(t, 300, resp.ExpiresIn)

	assert.True(t, f.otps.otps[1].Used)
	assert.False(t, f.otps.otps[2].Used)
}

func TestRequestOTPStoresHashNotPlaintext(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.RequestOTP(context.Background(), auth.RequestOTPRequest{Phone: "9876543210"})
	require.NoError(t, err)

	otp := f.otps.otps[1]
	assert.NotEqual(t, f.wa.lastCode, otp.CodeHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(otp.CodeHash), []byte(f.wa.lastCode)))
}

func TestVerifyOTPHappyPath(t *testing.T) {
	f := newFixture(t)

	resp := f.login(t)
	assert.Equal(t, "access-EMP001", resp.AccessToken)
	assert.Equal(t, "EMP001", resp.EmpCode)
	assert.Equal(t, "Asha Rao", resp.Name)
	assert.Equal(t, "employee", resp.Role)
	assert.NotEmpty(t, resp.RefreshToken)

	stored, err := f.tokens.GetByTokenHash(context.Background(), hashToken(resp.RefreshToken))
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, "EMP001", stored.EmpCode)
	assert.Nil(t, stored.PreviousTokenID)
}

func TestVerifyOTPWrongCodeCountsAttempts(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.RequestOTP(context.Background(), auth.RequestOTPRequest{Phone: "9876543210"})
	require.NoError(t, err)

	wrong := "000000"
	if f.wa.lastCode == wrong {
		wrong = "000001"
	}
	for i := 0; i < 3; i++ {
		_, err = f.svc.VerifyOTP(context.Background(), auth.VerifyOTPRequest{
			Phone: "9876543210", Code: wrong,
		})
		assert.ErrorIs(t, err, auth.ErrOTPInvalid)
	}

	// Attempts exhausted: even the right code is refused now.
	_, err = f.svc.VerifyOTP(context.Background(), auth.VerifyOTPRequest{
		Phone: "9876543210", Code: f.wa.lastCode,
	})
	assert.ErrorIs(t, err, auth.ErrOTPAttemptsExceeded)
}

func TestVerifyOTPExpiredCode(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.RequestOTP(context.Background(), auth.RequestOTPRequest{Phone: "9876543210"})
	require.NoError(t, err)

	f.at(time.Now().Add(6 * time.Minute))
	_, err = f.svc.VerifyOTP(context.Background(), auth.VerifyOTPRequest{
		Phone: "9876543210", Code: f.wa.lastCode,
	})
	assert.ErrorIs(t, err, auth.ErrOTPExpired)
}

func TestVerifyOTPRejectsReusedCode(t *testing.T) {
	f := newFixture(t)
	f.login(t)

	_, err := f.svc.VerifyOTP(context.Background(), auth.VerifyOTPRequest{
		Phone: "9876543210", Code: f.wa.lastCode,
	})
	assert.ErrorIs(t, err, auth.ErrOTPAlreadyUsed)
}

func TestVerifyOTPWithoutRequest(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.VerifyOTP(context.Background(), auth.VerifyOTPRequest{
		Phone: "9876543210", Code: "123456",
	})
	assert.ErrorIs(t, err, auth.ErrOTPNotFound)
}

func TestRefreshTokenRotates(t *testing.T) {
	f := newFixture(t)
	first := f.login(t)

	rotated, err := f.svc.RefreshToken(context.Background(), auth.RefreshTokenRequest{
		RefreshToken: first.RefreshToken,
	})
	require.NoError(t, err)
	assert.NotEqual(t, first.RefreshToken, rotated.RefreshToken)

	oldStored, _ := f.tokens.GetByTokenHash(context.Background(), hashToken(first.RefreshToken))
	require.NotNil(t, oldStored)
	assert.NotNil(t, oldStored.RevokedAt)

	newStored, _ := f.tokens.GetByTokenHash(context.Background(), hashToken(rotated.RefreshToken))
	require.NotNil(t, newStored)
	assert.Equal(t, oldStored.TokenFamily, newStored.TokenFamily)
	require.NotNil(t, newStored.PreviousTokenID)
	assert.Equal(t, oldStored.ID, *newStored.PreviousTokenID)
}

func TestRefreshTokenReuseRevokesFamily(t *testing.T) {
	f := newFixture(t)
	first := f.login(t)

	rotated, err := f.svc.RefreshToken(context.Background(), auth.RefreshTokenRequest{
		RefreshToken: first.RefreshToken,
	})
	require.NoError(t, err)

	// Replaying the rotated-away token burns the whole chain.
	_, err = f.svc.RefreshToken(context.Background(), auth.RefreshTokenRequest{
		RefreshToken: first.RefreshToken,
	})
	assert.ErrorIs(t, err, auth.ErrRefreshTokenReused)

	_, err = f.svc.RefreshToken(context.Background(), auth.RefreshTokenRequest{
		RefreshToken: rotated.RefreshToken,
	})
	assert.ErrorIs(t, err, auth.ErrRefreshTokenReused)

	stored, _ := f.tokens.GetByTokenHash(context.Background(), hashToken(rotated.RefreshToken))
	require.NotNil(t, stored)
	assert.Equal(t, 0, f.tokens.liveCount(stored.TokenFamily))
}

func TestRefreshTokenUnknown(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.RefreshToken(context.Background(), auth.RefreshTokenRequest{
		RefreshToken: "not-a-real-token",
	})
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestRefreshTokenExpired(t *testing.T) {
	f := newFixture(t)
	first := f.login(t)

	f.at(time.Now().Add(31 * 24 * time.Hour))
	_, err := f.svc.RefreshToken(context.Background(), auth.RefreshTokenRequest{
		RefreshToken: first.RefreshToken,
	})
	assert.ErrorIs(t, err, auth.ErrTokenExpired)
}

func TestLogoutRevokesFamily(t *testing.T) {
	f := newFixture(t)
	first := f.login(t)

	require.NoError(t, f.svc.Logout(context.Background(), auth.LogoutRequest{
		RefreshToken: first.RefreshToken,
	}))

	_, err := f.svc.RefreshToken(context.Background(), auth.RefreshTokenRequest{
		RefreshToken: first.RefreshToken,
	})
	assert.ErrorIs(t, err, auth.ErrRefreshTokenReused)
}

func TestLogoutUnknownTokenIsNoop(t *testing.T) {
	f := newFixture(t)
	assert.NoError(t, f.svc.Logout(context.Background(), auth.LogoutRequest{RefreshToken: "gone"}))
}

func TestPurgeExpiredTokens(t *testing.T) {
	f := newFixture(t)
	now := time.Now()

	f.tokens.Create(context.Background(), auth.RefreshToken{
		ID: "old", EmpCode: "EMP001", TokenHash: "h1", TokenFamily: "fam1",
		IssuedAt:  now.Add(-120 * 24 * time.Hour),
		ExpiresAt: now.Add(-91 * 24 * time.Hour),
	})
	f.tokens.Create(context.Background(), auth.RefreshToken{
		ID: "live", EmpCode: "EMP001", TokenHash: "h2", TokenFamily: "fam2",
		IssuedAt:  now,
		ExpiresAt: now.Add(30 * 24 * time.Hour),
	})

	f.at(now)
	deleted, err := f.svc.PurgeExpiredTokens(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, deleted)
	assert.Contains(t, f.tokens.tokens, "live")
	assert.NotContains(t, f.tokens.tokens, "old")
}
