package binding

import (
	"errors"
	"fmt"
	"net/http"

	"firebasebindings/pkg/strcase"
)

// Domain-level errors shared by the binding packages.
var (
	ErrConfigurationError = errors.New("configuration error")
	ErrMissingProjectID   = errors.New("firebase project ID is required")
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrUnknownEnumValue   = errors.New("unknown enum value")
	ErrNotFound           = errors.New("not found")
	ErrConflict           = errors.New("already exists")
	ErrInvalidToken       = errors.New("invalid token")
	ErrTokenExpired       = errors.New("token expired")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrCacheKeyNotFound   = errors.New("cache key not found")
	ErrAppExists          = errors.New("firebase app already exists")
	ErrAppNotFound        = errors.New("firebase app not found")
	ErrUnavailable        = errors.New("firebase service unavailable")
)

// FirebaseErrorCode is a typed Firebase error code such as "auth/user-not-found".
type FirebaseErrorCode interface {
	Text() string
}

// FirebaseError is an error reported by a Firebase module with a typed code.
type FirebaseError interface {
	error
	ErrorCode() FirebaseErrorCode
}

// HTTPError provides structured error information for HTTP responses
type HTTPError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

func (e *HTTPError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s", e.Message, e.Details)
	}
	return e.Message
}

// WithDetails adds details to an HTTP error
func (e *HTTPError) WithDetails(details string) *HTTPError {
	e.Details = details
	return e
}

// ErrorToHTTPStatus maps domain errors to HTTP status codes
func ErrorToHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrInvalidToken),
		errors.Is(err, ErrTokenExpired),
		errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized

	case errors.Is(err, ErrInvalidArgument),
		errors.Is(err, ErrUnknownEnumValue),
		errors.Is(err, strcase.ErrBlankIdentifier):
		return http.StatusBadRequest

	case errors.Is(err, ErrNotFound),
		errors.Is(err, ErrAppNotFound):
		return http.StatusNotFound

	case errors.Is(err, ErrConflict),
		errors.Is(err, ErrAppExists):
		return http.StatusConflict

	case errors.Is(err, ErrUnavailable):
		return http.StatusServiceUnavailable

	default:
		return http.StatusInternalServerError
	}
}

// ErrorToHTTPError converts domain errors to structured HTTP errors. Firebase
// errors keep their own code text.
func ErrorToHTTPError(err error) *HTTPError {
	var fbErr FirebaseError
	if errors.As(err, &fbErr) {
		return &HTTPError{Code: fbErr.ErrorCode().Text(), Message: fbErr.Error()}
	}

	switch {
	case errors.Is(err, ErrInvalidToken):
		return &HTTPError{Code: "INVALID_TOKEN", Message: "Invalid authentication token"}
	case errors.Is(err, ErrTokenExpired):
		return &HTTPError{Code: "TOKEN_EXPIRED", Message: "Authentication token has expired"}
	case errors.Is(err, ErrUnauthorized):
		return &HTTPError{Code: "UNAUTHORIZED", Message: "Access denied"}
	case errors.Is(err, strcase.ErrBlankIdentifier):
		return &HTTPError{Code: "BLANK_IDENTIFIER", Message: "Identifier must not be blank"}
	case errors.Is(err, ErrUnknownEnumValue):
		return &HTTPError{Code: "UNKNOWN_ENUM_VALUE", Message: "Unknown enumeration value", Details: err.Error()}
	case errors.Is(err, ErrInvalidArgument):
		return &HTTPError{Code: "INVALID_ARGUMENT", Message: "Invalid argument", Details: err.Error()}
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrAppNotFound):
		return &HTTPError{Code: "NOT_FOUND", Message: "Resource not found", Details: err.Error()}
	case errors.Is(err, ErrConflict), errors.Is(err, ErrAppExists):
		return &HTTPError{Code: "CONFLICT", Message: "Resource already exists", Details: err.Error()}
	case errors.Is(err, ErrUnavailable):
		return &HTTPError{Code: "UNAVAILABLE", Message: "Firebase service is currently unavailable"}
	case errors.Is(err, ErrConfigurationError):
		return &HTTPError{Code: "CONFIGURATION_ERROR", Message: "Service configuration error"}
	default:
		return &HTTPError{Code: "INTERNAL_ERROR", Message: "Internal error", Details: err.Error()}
	}
}
