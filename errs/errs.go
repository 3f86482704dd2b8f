package errs

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrMissingCredential is returned when a protected route is called without an Authorization header.
	ErrMissingCredential = errors.New("missing credential")
	// ErrMalformed is returned when the credential or token cannot be parsed.
	ErrMalformed = errors.New("malformed token")
	// ErrInvalidSignature is returned when the token signature does not verify.
	ErrInvalidSignature = errors.New("invalid token signature")
	// ErrExpired is returned when the token is past its expiry.
	ErrExpired = errors.New("token expired")
	// ErrRevoked is returned when the token was revoked by a logout.
	ErrRevoked = errors.New("token revoked")
	// ErrUserNotFound is returned when a token references a user that does not exist.
	ErrUserNotFound = errors.New("user not found")
	// ErrResourceNotFound is returned when the requested resource does not exist.
	ErrResourceNotFound = errors.New("resource not found")
	// ErrDenied is returned when the caller does not own the resource it tries to mutate.
	ErrDenied = errors.New("not allowed to modify this resource")
	// ErrAlreadyLiked is returned when the user already liked the recipe.
	ErrAlreadyLiked = errors.New("recipe already liked")
	// ErrValidationFailed is returned when a request misses or violates a required field.
	ErrValidationFailed = errors.New("validation failed")
	// ErrConflict is returned when a unique field is already taken.
	ErrConflict = errors.New("already exists")
	// ErrInvalidCredentials is returned when a login does not match.
	ErrInvalidCredentials = errors.New("invalid username or password")
	// ErrStoreFailure is returned when the persistence layer fails.
	ErrStoreFailure = errors.New("store failure")
)

// Validation wraps ErrValidationFailed with a description of the offending field.
func Validation(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidationFailed, fmt.Sprintf(format, args...))
}

// Store wraps a persistence error so that it matches ErrStoreFailure and keeps the cause.
func Store(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", op, ErrStoreFailure, err)
}

// ErrorResponse represents a standardized error response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// HTTPError represents an HTTP error with status code.
type HTTPError struct {
	StatusCode int
	Message    string
	Code       string
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates a new HTTP error.
func NewHTTPError(statusCode int, message, code string) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Message:    message,
		Code:       code,
	}
}

// ToErrorResponse converts an HTTPError to ErrorResponse.
func (e *HTTPError) ToErrorResponse() ErrorResponse {
	return ErrorResponse{
		Error: e.Message,
		Code:  e.Code,
	}
}

type mapping struct {
	target error
	status int
	code   string
}

// Order matters: the first sentinel matched by errors.Is wins.
var mappings = []mapping{
	{ErrMissingCredential, http.StatusUnauthorized, "MISSING_CREDENTIAL"},
	{ErrMalformed, http.StatusUnauthorized, "MALFORMED_TOKEN"},
	{ErrInvalidSignature, http.StatusUnauthorized, "INVALID_SIGNATURE"},
	{ErrExpired, http.StatusUnauthorized, "TOKEN_EXPIRED"},
	{ErrRevoked, http.StatusUnauthorized, "TOKEN_REVOKED"},
	{ErrInvalidCredentials, http.StatusUnauthorized, "INVALID_CREDENTIALS"},
	{ErrDenied, http.StatusForbidden, "FORBIDDEN"},
	{ErrUserNotFound, http.StatusNotFound, "USER_NOT_FOUND"},
	{ErrResourceNotFound, http.StatusNotFound, "NOT_FOUND"},
	{ErrAlreadyLiked, http.StatusBadRequest, "ALREADY_LIKED"},
	{ErrValidationFailed, http.StatusBadRequest, "VALIDATION_FAILED"},
	{ErrConflict, http.StatusConflict, "CONFLICT"},
}

// MapErrorToHTTP maps domain errors to HTTP errors. Store failures and
// unknown errors become an opaque 500.
func MapErrorToHTTP(err error) *HTTPError {
	if errors.Is(err, ErrStoreFailure) {
		return NewHTTPError(http.StatusInternalServerError, "internal server error", "INTERNAL_ERROR")
	}
	for _, m := range mappings {
		if errors.Is(err, m.target) {
			msg := m.target.Error()
			if m.target == ErrValidationFailed {
				msg = err.Error()
			}
			return NewHTTPError(m.status, msg, m.code)
		}
	}
	return NewHTTPError(http.StatusInternalServerError, "internal server error", "INTERNAL_ERROR")
}
