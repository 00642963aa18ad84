package auth

import "github.com/fieldforce-hq/attendance-backend-go/internal/pkg/validator"

type RequestOTPRequest struct {
	Phone string `json:"phone"`
}

func (r *RequestOTPRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.Phone) {
		errs = append(errs, validator.ValidationError{
			Field:   "phone",
			Message: "phone is required",
		})
	} else if !validator.IsValidPhoneNumber(r.Phone) {
		errs = append(errs, validator.ValidationError{
			Field:   "phone",
			Message: "phone must be a valid Indian mobile number",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type VerifyOTPRequest struct {
	Phone string `json:"phone"`
	Code  string `json:"code"`
}

func (r *VerifyOTPRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.Phone) {
		errs = append(errs, validator.ValidationError{
			Field:   "phone",
			Message: "phone is required",
		})
	} else if !validator.IsValidPhoneNumber(r.Phone) {
		errs = append(errs, validator.ValidationError{
			Field:   "phone",
			Message: "phone must be a valid Indian mobile number",
		})
	}

	if len(r.Code) != 6 || !validator.IsNumeric(r.Code) {
		errs = append(errs, validator.ValidationError{
			Field:   "code",
			Message: "code must be 6 digits",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token"`
}

func (r *RefreshTokenRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.RefreshToken) {
		errs = append(errs, validator.ValidationError{
			Field:   "refresh_token",
			Message: "refresh_token is required",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type LogoutRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type RequestOTPResponse struct {
	Phone     string `json:"phone"`
	ExpiresIn int    `json:"expires_in"` // seconds
	Delivered bool   `json:"delivered"`
}

type TokenResponse struct {
	AccessToken      string `json:"access_token"`
	AccessExpiresAt  int64  `json:"access_expires_at"`
	RefreshToken     string `json:"refresh_token"`
	RefreshExpiresAt int64  `json:"refresh_expires_at"`
	EmpCode          string `json:"emp_code"`
	Name             string `json:"name"`
	Role             string `json:"role"`
}
