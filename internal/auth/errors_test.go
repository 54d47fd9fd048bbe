package auth

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"firebasebindings/internal/binding"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCodeFromText(t *testing.T) {
	tests := []struct {
		text string
		want Code
	}{
		{"auth/user-not-found", CodeUserDeleted},
		{"auth/email-already-in-use", CodeEmailExists},
		{"auth/invalid-api-key", CodeInvalidAPIKey},
		{"auth/missing-ios-bundle-id", CodeMissingIOSBundleID},
		{"auth/web-storage-unsupported", CodeWebStorageUnsupported},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			got, ok := CodeFromText(tt.text)
			require.True(t, ok)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.text, got.Text())
		})
	}

	_, ok := CodeFromText("auth/made-up")
	assert.False(t, ok)
}

func TestCodes_UniqueText(t *testing.T) {
	seen := make(map[string]bool)
	for _, c := range Codes() {
		assert.False(t, seen[c.Text()], "duplicate %s", c)
		seen[c.Text()] = true
	}
	assert.Len(t, seen, 95)
}

func TestAuthError(t *testing.T) {
	err := NewAuthError(CodeUserDeleted, "no user with uid u1")

	assert.Equal(t, "auth/user-not-found: no user with uid u1", err.Error())
	assert.Equal(t, "auth/user-not-found", NewAuthError(CodeUserDeleted, "").Error())
	assert.Equal(t, binding.FirebaseErrorCode(CodeUserDeleted), err.ErrorCode())
	assert.ErrorIs(t, err, binding.ErrNotFound)
	assert.NotErrorIs(t, err, binding.ErrConflict)

	wrapped := fmt.Errorf("get_user: %w", err)
	assert.ErrorIs(t, wrapped, binding.ErrNotFound)
	assert.Equal(t, http.StatusNotFound, binding.ErrorToHTTPStatus(wrapped))

	httpErr := binding.ErrorToHTTPError(wrapped)
	assert.Equal(t, "auth/user-not-found", httpErr.Code)
}

func TestAuthError_Sentinels(t *testing.T) {
	tests := []struct {
		code Code
		want error
	}{
		{CodeEmailExists, binding.ErrConflict},
		{CodeTokenExpired, binding.ErrTokenExpired},
		{CodeInvalidAuth, binding.ErrInvalidToken},
		{CodeUserDisabled, binding.ErrUnauthorized},
		{CodeInvalidEmail, binding.ErrInvalidArgument},
		{CodeNetworkRequestFailed, binding.ErrUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.code.Text(), func(t *testing.T) {
			assert.ErrorIs(t, NewAuthError(tt.code, ""), tt.want)
		})
	}
	assert.NotErrorIs(t, NewAuthError(CodePopupBlocked, ""), binding.ErrInvalidArgument)
}

func TestFromAdminError(t *testing.T) {
	assert.Nil(t, FromAdminError(nil))

	existing := NewAuthError(CodeTimeout, "slow")
	assert.Same(t, existing, FromAdminError(fmt.Errorf("wrapped: %w", existing)))

	cause := errors.New("unexpected")
	got := FromAdminError(cause)
	assert.Equal(t, CodeInternalError, got.Code)
	assert.Equal(t, "unexpected", got.Message)
	assert.ErrorIs(t, got, cause)
}

func TestVerificationError(t *testing.T) {
	err := verificationError(errors.New("bad signature"))
	assert.Equal(t, CodeInvalidAuth, err.Code)
	assert.ErrorIs(t, err, binding.ErrInvalidToken)

	expired := NewAuthError(CodeTokenExpired, "")
	assert.Same(t, expired, verificationError(expired))
}
