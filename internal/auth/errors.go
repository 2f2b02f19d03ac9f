package auth

import "errors"

var (
	ErrMissingFields      = errors.New("name, email and password required")
	ErrRoleNotAllowed     = errors.New("role cannot be self-assigned")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTokenInvalid       = errors.New("token invalid")
	ErrRefreshInvalid     = errors.New("refresh token invalid")
	ErrInvalidOTP         = errors.New("reset code invalid or expired")
	ErrResetFields        = errors.New("email, otp and newPassword required")
)
