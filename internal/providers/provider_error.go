package providers

import (
	"fmt"
	"net/http"
)

const (
	ErrCodeTokenExchange = "TOKEN_EXCHANGE_FAILED"
	ErrCodeNetworkError  = "NETWORK_ERROR"
	ErrCodeUnauthorized  = "UNAUTHORIZED"
	ErrCodeNotFound      = "RESOURCE_NOT_FOUND"
	ErrCodeRateLimited   = "RATE_LIMITED"
	ErrCodeBadResponse   = "BAD_RESPONSE"
	ErrCodeUpstream      = "UPSTREAM_ERROR"
)

// ProviderError describes a failed call to Discord.
type ProviderError struct {
	Code    string
	Message string
	Status  int
	Details string
	Err     error
}

func (e *ProviderError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// buildHTTPError maps a non-2xx response onto a ProviderError.
func buildHTTPError(statusCode int, endpoint, body string) *ProviderError {
	code := ErrCodeUpstream
	switch statusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		code = ErrCodeUnauthorized
	case http.StatusNotFound:
		code = ErrCodeNotFound
	case http.StatusTooManyRequests:
		code = ErrCodeRateLimited
	}
	return &ProviderError{
		Code:    code,
		Message: fmt.Sprintf("discord returned %d for %s", statusCode, endpoint),
		Status:  statusCode,
		Details: body,
	}
}
