package auth

// Code is an Auth error code. Its value is the wire text, e.g. "auth/user-not-found".
type Code string

// Text returns the wire text of the code.
func (c Code) Text() string {
	return string(c)
}

const (
	CodeAdminOnlyOperation           Code = "auth/admin-restricted-operation"
	CodeAlreadyInitialized           Code = "auth/already-initialized"
	CodeArgumentError                Code = "auth/argument-error"
	CodeAppNotAuthorized             Code = "auth/app-not-authorized"
	CodeAppNotInstalled              Code = "auth/app-not-installed"
	CodeCaptchaCheckFailed           Code = "auth/captcha-check-failed"
	CodeCodeExpired                  Code = "auth/code-expired"
	CodeCordovaNotReady              Code = "auth/cordova-not-ready"
	CodeCorsUnsupported              Code = "auth/cors-unsupported"
	CodeCredentialAlreadyInUse       Code = "auth/credential-already-in-use"
	CodeCredentialMismatch           Code = "auth/custom-token-mismatch"
	CodeCredentialTooOldLoginAgain   Code = "auth/requires-recent-login"
	CodeDependentSDKInitBeforeAuth   Code = "auth/dependent-sdk-initialized-before-auth"
	CodeDynamicLinkNotActivated      Code = "auth/dynamic-link-not-activated"
	CodeEmailChangeNeedsVerification Code = "auth/email-change-needs-verification"
	CodeEmailExists                  Code = "auth/email-already-in-use"
	CodeEmulatorConfigFailed         Code = "auth/emulator-config-failed"
	CodeExpiredOOBCode               Code = "auth/expired-action-code"
	CodeExpiredPopupRequest          Code = "auth/cancelled-popup-request"
	CodeInternalError                Code = "auth/internal-error"
	CodeInvalidAPIKey                Code = "auth/invalid-api-key"
	CodeInvalidAppCredential         Code = "auth/invalid-app-credential"
	CodeInvalidAppID                 Code = "auth/invalid-app-id"
	CodeInvalidAuth                  Code = "auth/invalid-user-token"
	CodeInvalidAuthEvent             Code = "auth/invalid-auth-event"
	CodeInvalidCertHash              Code = "auth/invalid-cert-hash"
	CodeInvalidCode                  Code = "auth/invalid-verification-code"
	CodeInvalidContinueURI           Code = "auth/invalid-continue-uri"
	CodeInvalidCordovaConfiguration  Code = "auth/invalid-cordova-configuration"
	CodeInvalidCustomToken           Code = "auth/invalid-custom-token"
	CodeInvalidDynamicLinkDomain     Code = "auth/invalid-dynamic-link-domain"
	CodeInvalidEmail                 Code = "auth/invalid-email"
	CodeInvalidEmulatorScheme        Code = "auth/invalid-emulator-scheme"
	CodeInvalidIdpResponse           Code = "auth/invalid-credential"
	CodeInvalidMessagePayload        Code = "auth/invalid-message-payload"
	CodeInvalidMFASession            Code = "auth/invalid-multi-factor-session"
	CodeInvalidOAuthClientID         Code = "auth/invalid-oauth-client-id"
	CodeInvalidOAuthProvider         Code = "auth/invalid-oauth-provider"
	CodeInvalidOOBCode               Code = "auth/invalid-action-code"
	CodeInvalidOrigin                Code = "auth/unauthorized-domain"
	CodeInvalidPassword              Code = "auth/wrong-password"
	CodeInvalidPersistence           Code = "auth/invalid-persistence-type"
	CodeInvalidPhoneNumber           Code = "auth/invalid-phone-number"
	CodeInvalidProviderID            Code = "auth/invalid-provider-id"
	CodeInvalidRecipientEmail        Code = "auth/invalid-recipient-email"
	CodeInvalidSender                Code = "auth/invalid-sender"
	CodeInvalidSessionInfo           Code = "auth/invalid-verification-id"
	CodeInvalidTenantID              Code = "auth/invalid-tenant-id"
	CodeMFAInfoNotFound              Code = "auth/multi-factor-info-not-found"
	CodeMFARequired                  Code = "auth/multi-factor-auth-required"
	CodeMissingAndroidPackageName    Code = "auth/missing-android-pkg-name"
	CodeMissingAppCredential         Code = "auth/missing-app-credential"
	CodeMissingAuthDomain            Code = "auth/auth-domain-config-required"
	CodeMissingCode                  Code = "auth/missing-verification-code"
	CodeMissingContinueURI           Code = "auth/missing-continue-uri"
	CodeMissingIframeStart           Code = "auth/missing-iframe-start"
	CodeMissingIOSBundleID           Code = "auth/missing-ios-bundle-id"
	CodeMissingOrInvalidNonce        Code = "auth/missing-or-invalid-nonce"
	CodeMissingMFAInfo               Code = "auth/missing-multi-factor-info"
	CodeMissingMFASession            Code = "auth/missing-multi-factor-session"
	CodeMissingPhoneNumber           Code = "auth/missing-phone-number"
	CodeMissingSessionInfo           Code = "auth/missing-verification-id"
	CodeModuleDestroyed              Code = "auth/app-deleted"
	CodeNeedConfirmation             Code = "auth/account-exists-with-different-credential"
	CodeNetworkRequestFailed         Code = "auth/network-request-failed"
	CodeNullUser                     Code = "auth/null-user"
	CodeNoAuthEvent                  Code = "auth/no-auth-event"
	CodeNoSuchProvider               Code = "auth/no-such-provider"
	CodeOperationNotAllowed          Code = "auth/operation-not-allowed"
	CodeOperationNotSupported        Code = "auth/operation-not-supported-in-this-environment"
	CodePopupBlocked                 Code = "auth/popup-blocked"
	CodePopupClosedByUser            Code = "auth/popup-closed-by-user"
	CodeProviderAlreadyLinked        Code = "auth/provider-already-linked"
	CodeQuotaExceeded                Code = "auth/quota-exceeded"
	CodeRedirectCancelledByUser      Code = "auth/redirect-cancelled-by-user"
	CodeRedirectOperationPending     Code = "auth/redirect-operation-pending"
	CodeRejectedCredential           Code = "auth/rejected-credential"
	CodeSecondFactorAlreadyEnrolled  Code = "auth/second-factor-already-in-use"
	CodeSecondFactorLimitExceeded    Code = "auth/maximum-second-factor-count-exceeded"
	CodeTenantIDMismatch             Code = "auth/tenant-id-mismatch"
	CodeTimeout                      Code = "auth/timeout"
	CodeTokenExpired                 Code = "auth/user-token-expired"
	CodeTooManyAttemptsTryLater      Code = "auth/too-many-requests"
	CodeUnauthorizedDomain           Code = "auth/unauthorized-continue-uri"
	CodeUnsupportedFirstFactor       Code = "auth/unsupported-first-factor"
	CodeUnsupportedPersistence       Code = "auth/unsupported-persistence-type"
	CodeUnsupportedTenantOperation   Code = "auth/unsupported-tenant-operation"
	CodeUnverifiedEmail              Code = "auth/unverified-email"
	CodeUserCancelled                Code = "auth/user-cancelled"
	CodeUserDeleted                  Code = "auth/user-not-found"
	CodeUserDisabled                 Code = "auth/user-disabled"
	CodeUserMismatch                 Code = "auth/user-mismatch"
	CodeUserSignedOut                Code = "auth/user-signed-out"
	CodeWeakPassword                 Code = "auth/weak-password"
	CodeWebStorageUnsupported        Code = "auth/web-storage-unsupported"
)

var allCodes = []Code{
	CodeAdminOnlyOperation,
	CodeAlreadyInitialized,
	CodeArgumentError,
	CodeAppNotAuthorized,
	CodeAppNotInstalled,
	CodeCaptchaCheckFailed,
	CodeCodeExpired,
	CodeCordovaNotReady,
	CodeCorsUnsupported,
	CodeCredentialAlreadyInUse,
	CodeCredentialMismatch,
	CodeCredentialTooOldLoginAgain,
	CodeDependentSDKInitBeforeAuth,
	CodeDynamicLinkNotActivated,
	CodeEmailChangeNeedsVerification,
	CodeEmailExists,
	CodeEmulatorConfigFailed,
	CodeExpiredOOBCode,
	CodeExpiredPopupRequest,
	CodeInternalError,
	CodeInvalidAPIKey,
	CodeInvalidAppCredential,
	CodeInvalidAppID,
	CodeInvalidAuth,
	CodeInvalidAuthEvent,
	CodeInvalidCertHash,
	CodeInvalidCode,
	CodeInvalidContinueURI,
	CodeInvalidCordovaConfiguration,
	CodeInvalidCustomToken,
	CodeInvalidDynamicLinkDomain,
	CodeInvalidEmail,
	CodeInvalidEmulatorScheme,
	CodeInvalidIdpResponse,
	CodeInvalidMessagePayload,
	CodeInvalidMFASession,
	CodeInvalidOAuthClientID,
	CodeInvalidOAuthProvider,
	CodeInvalidOOBCode,
	CodeInvalidOrigin,
	CodeInvalidPassword,
	CodeInvalidPersistence,
	CodeInvalidPhoneNumber,
	CodeInvalidProviderID,
	CodeInvalidRecipientEmail,
	CodeInvalidSender,
	CodeInvalidSessionInfo,
	CodeInvalidTenantID,
	CodeMFAInfoNotFound,
	CodeMFARequired,
	CodeMissingAndroidPackageName,
	CodeMissingAppCredential,
	CodeMissingAuthDomain,
	CodeMissingCode,
	CodeMissingContinueURI,
	CodeMissingIframeStart,
	CodeMissingIOSBundleID,
	CodeMissingOrInvalidNonce,
	CodeMissingMFAInfo,
	CodeMissingMFASession,
	CodeMissingPhoneNumber,
	CodeMissingSessionInfo,
	CodeModuleDestroyed,
	CodeNeedConfirmation,
	CodeNetworkRequestFailed,
	CodeNullUser,
	CodeNoAuthEvent,
	CodeNoSuchProvider,
	CodeOperationNotAllowed,
	CodeOperationNotSupported,
	CodePopupBlocked,
	CodePopupClosedByUser,
	CodeProviderAlreadyLinked,
	CodeQuotaExceeded,
	CodeRedirectCancelledByUser,
	CodeRedirectOperationPending,
	CodeRejectedCredential,
	CodeSecondFactorAlreadyEnrolled,
	CodeSecondFactorLimitExceeded,
	CodeTenantIDMismatch,
	CodeTimeout,
	CodeTokenExpired,
	CodeTooManyAttemptsTryLater,
	CodeUnauthorizedDomain,
	CodeUnsupportedFirstFactor,
	CodeUnsupportedPersistence,
	CodeUnsupportedTenantOperation,
	CodeUnverifiedEmail,
	CodeUserCancelled,
	CodeUserDeleted,
	CodeUserDisabled,
	CodeUserMismatch,
	CodeUserSignedOut,
	CodeWeakPassword,
	CodeWebStorageUnsupported,
}

var codesByText = func() map[string]Code {
	m := make(map[string]Code, len(allCodes))
	for _, c := range allCodes {
		m[string(c)] = c
	}
	return m
}()

// Codes lists every known code.
func Codes() []Code {
	return append([]Code(nil), allCodes...)
}

// CodeFromText maps wire text onto a known code.
func CodeFromText(text string) (Code, bool) {
	c, ok := codesByText[text]
	return c, ok
}
