package services

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorType represents the type/category of error
type ErrorType string

const (
	// Credential and verification failures
	ErrorTypeMissingCredential ErrorType = "missing_credential"
	ErrorTypeInvalidSignature  ErrorType = "invalid_signature"
	ErrorTypeInvalidIssuer     ErrorType = "invalid_issuer"
	ErrorTypeInvalidAudience   ErrorType = "invalid_audience"
	ErrorTypeTokenExpired      ErrorType = "token_expired"
	ErrorTypeTokenNotYetValid  ErrorType = "token_not_yet_valid"

	// Collaborator failures
	ErrorTypeKeySetUnavailable      ErrorType = "key_set_unavailable"
	ErrorTypeProvisioning           ErrorType = "provisioning_error"
	ErrorTypeRateLimiterUnavailable ErrorType = "rate_limiter_unavailable"

	// Policy outcomes
	ErrorTypeRateLimited ErrorType = "rate_limited"
	ErrorTypeForbidden   ErrorType = "forbidden"

	// Handler-level errors
	ErrorTypeValidation ErrorType = "validation"
	ErrorTypeNotFound   ErrorType = "not_found"
	ErrorTypeInternal   ErrorType = "internal"
)

// DomainError represents a structured error with additional context
type DomainError struct {
	Type    ErrorType
	Message string
	Err     error
	Details map[string]interface{}
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *DomainError) Unwrap() error {
	return e.Err
}

// Is matches any DomainError of the same type
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Type == t.Type
}

// WithDetail adds a detail to the error
func (e *DomainError) WithDetail(key string, value interface{}) *DomainError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// NewDomainError creates a new domain error
func NewDomainError(errType ErrorType, message string, err error) *DomainError {
	return &DomainError{
		Type:    errType,
		Message: message,
		Err:     err,
		Details: make(map[string]interface{}),
	}
}

// Sentinels for errors.Is. Never attach details to these; wrap with
// NewDomainError or WrapError instead.
var (
	ErrMissingCredential = NewDomainError(ErrorTypeMissingCredential, "missing or malformed bearer credential", nil)
	ErrInvalidSignature  = NewDomainError(ErrorTypeInvalidSignature, "token signature could not be verified", nil)
	ErrInvalidIssuer     = NewDomainError(ErrorTypeInvalidIssuer, "token issuer mismatch", nil)
	ErrInvalidAudience   = NewDomainError(ErrorTypeInvalidAudience, "token audience mismatch", nil)
	ErrTokenExpired      = NewDomainError(ErrorTypeTokenExpired, "token expired", nil)
	ErrTokenNotYetValid  = NewDomainError(ErrorTypeTokenNotYetValid, "token not yet valid", nil)

	ErrKeySetUnavailable      = NewDomainError(ErrorTypeKeySetUnavailable, "signing key set unavailable", nil)
	ErrProvisioning           = NewDomainError(ErrorTypeProvisioning, "user provisioning failed", nil)
	ErrRateLimiterUnavailable = NewDomainError(ErrorTypeRateLimiterUnavailable, "rate limiter unavailable", nil)

	ErrRateLimited = NewDomainError(ErrorTypeRateLimited, "rate limit exceeded", nil)
	ErrForbidden   = NewDomainError(ErrorTypeForbidden, "admin role required", nil)

	ErrInvalidInput = NewDomainError(ErrorTypeValidation, "invalid input", nil)
	ErrNotFound     = NewDomainError(ErrorTypeNotFound, "resource not found", nil)
	ErrInternal     = NewDomainError(ErrorTypeInternal, "internal server error", nil)
)

// IsCredentialError reports whether err means the caller did not present a
// usable credential (HTTP 401)
func IsCredentialError(err error) bool {
	switch GetErrorType(err) {
	case ErrorTypeMissingCredential,
		ErrorTypeInvalidSignature,
		ErrorTypeInvalidIssuer,
		ErrorTypeInvalidAudience,
		ErrorTypeTokenExpired,
		ErrorTypeTokenNotYetValid:
		return true
	}
	return false
}

// IsForbiddenError checks if an error is a forbidden error
func IsForbiddenError(err error) bool {
	return GetErrorType(err) == ErrorTypeForbidden
}

// IsRateLimitError checks if an error is a rate limit rejection
func IsRateLimitError(err error) bool {
	return GetErrorType(err) == ErrorTypeRateLimited
}

// IsUnavailableError checks if an error comes from a collaborator outage
func IsUnavailableError(err error) bool {
	switch GetErrorType(err) {
	case ErrorTypeKeySetUnavailable, ErrorTypeProvisioning, ErrorTypeRateLimiterUnavailable:
		return true
	}
	return false
}

// IsNotFoundError checks if an error is a not found error
func IsNotFoundError(err error) bool {
	return GetErrorType(err) == ErrorTypeNotFound
}

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	return GetErrorType(err) == ErrorTypeValidation
}

// GetErrorType returns the ErrorType of a domain error, or empty string if not a domain error
func GetErrorType(err error) ErrorType {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Type
	}
	return ""
}

// GetErrorDetails returns the details map of a domain error, or nil if not a domain error
func GetErrorDetails(err error) map[string]interface{} {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Details
	}
	return nil
}

// HTTPStatus maps an error to the status code surfaced at the HTTP boundary
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case IsCredentialError(err):
		return http.StatusUnauthorized
	case IsForbiddenError(err):
		return http.StatusForbidden
	case IsRateLimitError(err):
		return http.StatusTooManyRequests
	case IsUnavailableError(err):
		return http.StatusServiceUnavailable
	case IsValidationError(err):
		return http.StatusBadRequest
	case IsNotFoundError(err):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// WrapError wraps an error with additional context
func WrapError(errType ErrorType, message string, err error) error {
	return NewDomainError(errType, message, err)
}

// WrapInternal wraps an error as an internal error
func WrapInternal(message string, err error) error {
	return NewDomainError(ErrorTypeInternal, message, err)
}
