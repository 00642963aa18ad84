package employee

import "errors"

var (
	ErrEmployeeNotFound   = errors.New("employee not found")
	ErrEmployeeInactive   = errors.New("employee is inactive")
	ErrShiftNotFound      = errors.New("shift not found")
	ErrEmpCodeExists      = errors.New("employee code already exists")
	ErrPhoneExists        = errors.New("phone number already registered")
	ErrInvalidEmpCode     = errors.New("invalid employee code format")
	ErrInvalidPhoneNumber = errors.New("invalid phone number")
)
