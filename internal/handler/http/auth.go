package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/fieldforce-hq/attendance-backend-go/internal/domain/auth"
	"github.com/fieldforce-hq/attendance-backend-go/internal/handler/http/response"
	"github.com/fieldforce-hq/attendance-backend-go/internal/pkg/jwt"
)

type AuthHandler interface {
	RequestOTP(w http.ResponseWriter, r *http.Request)
	VerifyOTP(w http.ResponseWriter, r *http.Request)
	Refresh(w http.ResponseWriter, r *http.Request)
	Logout(w http.ResponseWriter, r *http.Request)
}

type authHandlerImpl struct {
	authService auth.AuthService
	jwtService  jwt.Service
}

func NewAuthHandler(authService auth.AuthService, jwtService jwt.Service) AuthHandler {
	return &authHandlerImpl{
		authService: authService,
		jwtService:  jwtService,
	}
}

// RequestOTP implements AuthHandler.
func (h *authHandlerImpl) RequestOTP(w http.ResponseWriter, r *http.Request) {
	var req auth.RequestOTPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	result, err := h.authService.RequestOTP(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Verification code sent", result)
}

// VerifyOTP implements AuthHandler.
func (h *authHandlerImpl) VerifyOTP(w http.ResponseWriter, r *http.Request) {
	var req auth.VerifyOTPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	result, err := h.authService.VerifyOTP(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	h.setRefreshCookie(w, result)
	response.SuccessWithMessage(w, "Login successful", result)
}

// Refresh implements AuthHandler. The refresh token comes from the JSON
// body, falling back to the cookie set at login.
func (h *authHandlerImpl) Refresh(w http.ResponseWriter, r *http.Request) {
	req := h.tokenFromRequest(r)

	result, err := h.authService.RefreshToken(r.Context(), auth.RefreshTokenRequest(req))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	h.setRefreshCookie(w, result)
	response.Success(w, result)
}

// Logout implements AuthHandler.
func (h *authHandlerImpl) Logout(w http.ResponseWriter, r *http.Request) {
	req := h.tokenFromRequest(r)

	if err := h.authService.Logout(r.Context(), auth.LogoutRequest(req)); err != nil {
		response.HandleError(w, err)
		return
	}

	http.SetCookie(w, h.jwtService.RefreshTokenCookie("", time.Unix(0, 0)))
	response.SuccessWithMessage(w, "Logged out", nil)
}

func (h *authHandlerImpl) tokenFromRequest(r *http.Request) auth.LogoutRequest {
	var req auth.LogoutRequest
	_ = json.NewDecoder(r.Body).Decode(&req)
	if req.RefreshToken == "" {
		if cookie, err := r.Cookie("refresh_token"); err == nil {
			req.RefreshToken = cookie.Value
		}
	}
	return req
}

func (h *authHandlerImpl) setRefreshCookie(w http.ResponseWriter, tokens auth.TokenResponse) {
	expiresAt := time.Unix(tokens.RefreshExpiresAt, 0)
	http.SetCookie(w, h.jwtService.RefreshTokenCookie(tokens.RefreshToken, expiresAt))
}
