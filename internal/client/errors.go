package client

import (
	"errors"
	"fmt"
	"net/http"
)

// StatusAuthenticationTimeout is the non-standard "session expired" status
// some backends send instead of 401.
const StatusAuthenticationTimeout = 419

var (
	ErrSessionExpired  = errors.New("session expired, please log in again")
	ErrNoRecoveryToken = errors.New("no recovery token available")
	ErrNotAdmin        = errors.New("admin access required")
)

// APIError is a non-2xx response from the backend.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("api error %d %s: %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

func IsAuthExpiredStatus(status int) bool {
	return status == http.StatusUnauthorized || status == StatusAuthenticationTimeout
}

// IsAuthExpired reports a 401/419 backend response or a failed refresh.
func IsAuthExpired(err error) bool {
	if errors.Is(err, ErrSessionExpired) {
		return true
	}
	var apiErr *APIError
	return errors.As(err, &apiErr) && IsAuthExpiredStatus(apiErr.Status)
}

// IsValidation reports a rejection the user can fix (bad code, bad input).
func IsValidation(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	switch apiErr.Status {
	case http.StatusBadRequest, http.StatusNotFound, http.StatusConflict, http.StatusUnprocessableEntity:
		return true
	}
	return false
}

// Message is the text to show a user for err.
func Message(err error, fallback string) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	if errors.Is(err, ErrSessionExpired) {
		return ErrSessionExpired.Error()
	}
	return fallback
}
