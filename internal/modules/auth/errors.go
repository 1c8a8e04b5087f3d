package auth

import "errors"

var (
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrInvalidPhone        = errors.New("invalid phone number")
	ErrInvalidOTP          = errors.New("invalid or expired otp")
	ErrTooManyAttempts     = errors.New("too many otp attempts")
	ErrOTPCooldown         = errors.New("otp resend cooldown")
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
	ErrRefreshTokenReused  = errors.New("refresh token reused")
)
