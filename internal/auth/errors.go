package auth

import (
	"errors"
	"fmt"

	"firebasebindings/internal/binding"

	fbauth "firebase.google.com/go/v4/auth"
	"firebase.google.com/go/v4/errorutils"
)

// AuthError is an Auth failure carrying a typed Code.
type AuthError struct {
	Code    Code
	Message string
	// CustomData holds extra context such as the email involved.
	CustomData map[string]any
	cause      error
}

var _ binding.FirebaseError = (*AuthError)(nil)

// NewAuthError builds an AuthError without an underlying cause.
func NewAuthError(code Code, message string) *AuthError {
	return &AuthError{Code: code, Message: message}
}

func (e *AuthError) Error() string {
	if e.Message == "" {
		return string(e.Code)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AuthError) ErrorCode() binding.FirebaseErrorCode {
	return e.Code
}

func (e *AuthError) Unwrap() error {
	return e.cause
}

// Is lets callers test an AuthError against the shared binding sentinels.
func (e *AuthError) Is(target error) bool {
	sentinel, ok := codeSentinels[e.Code]
	return ok && sentinel == target
}

var codeSentinels = map[Code]error{
	CodeUserDeleted:              binding.ErrNotFound,
	CodeEmailExists:              binding.ErrConflict,
	CodeCredentialAlreadyInUse:   binding.ErrConflict,
	CodeTokenExpired:             binding.ErrTokenExpired,
	CodeInvalidAuth:              binding.ErrInvalidToken,
	CodeUserDisabled:             binding.ErrUnauthorized,
	CodeAdminOnlyOperation:       binding.ErrUnauthorized,
	CodeTenantIDMismatch:         binding.ErrUnauthorized,
	CodeArgumentError:            binding.ErrInvalidArgument,
	CodeInvalidEmail:             binding.ErrInvalidArgument,
	CodeWeakPassword:             binding.ErrInvalidArgument,
	CodeMissingContinueURI:       binding.ErrInvalidArgument,
	CodeInvalidContinueURI:       binding.ErrInvalidArgument,
	CodeUnauthorizedDomain:       binding.ErrInvalidArgument,
	CodeInvalidDynamicLinkDomain: binding.ErrInvalidArgument,
	CodeNetworkRequestFailed:     binding.ErrUnavailable,
	CodeTimeout:                  binding.ErrUnavailable,
	CodeTooManyAttemptsTryLater:  binding.ErrUnavailable,
}

// adminErrorCodes maps Admin SDK error predicates onto codes. Order matters:
// the auth-specific predicates come before the generic platform ones.
var adminErrorCodes = []struct {
	match func(error) bool
	code  Code
}{
	{fbauth.IsUserNotFound, CodeUserDeleted},
	{fbauth.IsEmailNotFound, CodeUserDeleted},
	{fbauth.IsEmailAlreadyExists, CodeEmailExists},
	{fbauth.IsUIDAlreadyExists, CodeCredentialAlreadyInUse},
	{fbauth.IsPhoneNumberAlreadyExists, CodeCredentialAlreadyInUse},
	{fbauth.IsInvalidEmail, CodeInvalidEmail},
	{fbauth.IsUserDisabled, CodeUserDisabled},
	{fbauth.IsIDTokenExpired, CodeTokenExpired},
	{fbauth.IsIDTokenRevoked, CodeTokenExpired},
	{fbauth.IsIDTokenInvalid, CodeInvalidAuth},
	{fbauth.IsTenantIDMismatch, CodeTenantIDMismatch},
	{fbauth.IsInvalidDynamicLinkDomain, CodeInvalidDynamicLinkDomain},
	{fbauth.IsUnauthorizedContinueURI, CodeUnauthorizedDomain},
	{fbauth.IsInsufficientPermission, CodeAdminOnlyOperation},
	{fbauth.IsConfigurationNotFound, CodeOperationNotAllowed},
	{fbauth.IsProjectNotFound, CodeInvalidAPIKey},
	{fbauth.IsCertificateFetchFailed, CodeNetworkRequestFailed},
	{errorutils.IsInvalidArgument, CodeArgumentError},
	{errorutils.IsPermissionDenied, CodeAdminOnlyOperation},
	{errorutils.IsUnauthenticated, CodeInvalidAuth},
	{errorutils.IsNotFound, CodeUserDeleted},
	{errorutils.IsAlreadyExists, CodeEmailExists},
	{errorutils.IsResourceExhausted, CodeTooManyAttemptsTryLater},
	{errorutils.IsDeadlineExceeded, CodeTimeout},
	{errorutils.IsUnavailable, CodeNetworkRequestFailed},
}

// FromAdminError converts an Admin SDK error into an AuthError. An error that
// already is an AuthError is returned unchanged; anything unrecognised becomes
// CodeInternalError. A nil error yields nil.
func FromAdminError(err error) *AuthError {
	if err == nil {
		return nil
	}

	var authErr *AuthError
	if errors.As(err, &authErr) {
		return authErr
	}

	code := CodeInternalError
	for _, m := range adminErrorCodes {
		if m.match(err) {
			code = m.code
			break
		}
	}
	return &AuthError{Code: code, Message: err.Error(), cause: err}
}
