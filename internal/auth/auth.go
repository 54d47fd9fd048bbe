// Package auth wraps Firebase Authentication: user management, email action
// links and ID-token verification with a shared result cache.
package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"firebasebindings/internal/binding"
	"firebasebindings/pkg/concurrency"

	firebase "firebase.google.com/go/v4"
	fbauth "firebase.google.com/go/v4/auth"
)

const module = "auth"

// Default Firebase ID tokens live for an hour.
const defaultTokenTTL = time.Hour

// AdminClient is the part of the Admin SDK auth client the bindings use.
// *auth.Client satisfies it.
type AdminClient interface {
	VerifyIDToken(ctx context.Context, idToken string) (*fbauth.Token, error)
	GetUser(ctx context.Context, uid string) (*fbauth.UserRecord, error)
	GetUserByEmail(ctx context.Context, email string) (*fbauth.UserRecord, error)
	CreateUser(ctx context.Context, user *fbauth.UserToCreate) (*fbauth.UserRecord, error)
	DeleteUser(ctx context.Context, uid string) error
	SetCustomUserClaims(ctx context.Context, uid string, customClaims map[string]interface{}) error
	RevokeRefreshTokens(ctx context.Context, uid string) error
	EmailSignInLink(ctx context.Context, email string, settings *fbauth.ActionCodeSettings) (string, error)
	EmailVerificationLinkWithSettings(ctx context.Context, email string, settings *fbauth.ActionCodeSettings) (string, error)
	PasswordResetLinkWithSettings(ctx context.Context, email string, settings *fbauth.ActionCodeSettings) (string, error)
}

var _ AdminClient = (*fbauth.Client)(nil)

// Config describes the Auth endpoints a client of this project talks to.
type Config struct {
	APIKey           string `json:"apiKey,omitempty"`
	AuthDomain       string `json:"authDomain,omitempty"`
	APIHost          string `json:"apiHost"`
	APIScheme        string `json:"apiScheme"`
	TokenAPIHost     string `json:"tokenApiHost"`
	SDKClientVersion string `json:"sdkClientVersion"`
}

// NewConfig fills in the public Firebase Auth endpoints.
func NewConfig(apiKey, authDomain string) Config {
	return Config{
		APIKey:           apiKey,
		AuthDomain:       authDomain,
		APIHost:          "identitytoolkit.googleapis.com",
		APIScheme:        "https",
		TokenAPIHost:     "securetoken.googleapis.com",
		SDKClientVersion: "Go/Admin/" + firebase.Version,
	}
}

// TokenClaims are the verified claims of a Firebase ID token.
type TokenClaims struct {
	UID            string         `json:"uid"`
	Email          string         `json:"email,omitempty"`
	EmailVerified  bool           `json:"email_verified,omitempty"`
	Name           string         `json:"name,omitempty"`
	Picture        string         `json:"picture,omitempty"`
	PhoneNumber    string         `json:"phone_number,omitempty"`
	SignInProvider string         `json:"sign_in_provider,omitempty"`
	Tenant         string         `json:"tenant,omitempty"`
	Issuer         string         `json:"iss"`
	Audience       string         `json:"aud"`
	AuthTime       time.Time      `json:"auth_time"`
	IssuedAt       time.Time      `json:"iat"`
	ExpiresAt      time.Time      `json:"exp"`
	CustomClaims   map[string]any `json:"custom_claims,omitempty"`
}

// Auth is a handle on Firebase Authentication for one app.
type Auth struct {
	client  AdminClient
	config  Config
	cache   binding.Cache
	locks   binding.LockManager
	logger  binding.Logger
	metrics binding.Metrics
}

// New wraps client. A nil cache disables caching of verified tokens; a nil
// lock manager gets a private keyed mutex.
func New(client AdminClient, config Config, cache binding.Cache, locks binding.LockManager, logger binding.Logger, metrics binding.Metrics) *Auth {
	if locks == nil {
		locks = concurrency.NewKeyedMutex()
	}
	if logger == nil {
		logger = binding.NopLogger{}
	}
	if metrics == nil {
		metrics = binding.NopMetrics{}
	}
	return &Auth{
		client:  client,
		config:  config,
		cache:   cache,
		locks:   locks,
		logger:  logger.With("component", module),
		metrics: metrics,
	}
}

func (a *Auth) Config() Config {
	return a.config
}

// CreateUserWithEmailAndPassword creates a password account and returns it as
// a sign-in credential.
func (a *Auth) CreateUserWithEmailAndPassword(ctx context.Context, email, password string) (*UserCredential, error) {
	start := time.Now()

	if email == "" {
		return nil, a.observe("create_user", start, NewAuthError(CodeInvalidEmail, "email is required"))
	}
	if password == "" {
		return nil, a.observe("create_user", start, NewAuthError(CodeWeakPassword, "password is required"))
	}

	rec, err := a.client.CreateUser(ctx, (&fbauth.UserToCreate{}).Email(email).Password(password))
	if err := a.observe("create_user", start, err); err != nil {
		return nil, err
	}

	a.logger.Info("user created", "uid", rec.UID)
	return &UserCredential{
		OperationType: OperationTypeSignIn,
		ProviderID:    ProviderIDPassword,
		User:          newUser(rec),
	}, nil
}

func (a *Auth) GetUser(ctx context.Context, uid string) (*User, error) {
	start := time.Now()
	rec, err := a.client.GetUser(ctx, uid)
	if err := a.observe("get_user", start, err); err != nil {
		return nil, err
	}
	return newUser(rec), nil
}

func (a *Auth) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	start := time.Now()
	rec, err := a.client.GetUserByEmail(ctx, email)
	if err := a.observe("get_user_by_email", start, err); err != nil {
		return nil, err
	}
	return newUser(rec), nil
}

func (a *Auth) DeleteUser(ctx context.Context, uid string) error {
	start := time.Now()
	err := a.observe("delete_user", start, a.client.DeleteUser(ctx, uid))
	if err == nil {
		a.logger.Info("user deleted", "uid", uid)
	}
	return err
}

// SetCustomClaims replaces the custom claims of a user. Tokens already issued
// keep their old claims until they are refreshed.
func (a *Auth) SetCustomClaims(ctx context.Context, uid string, claims map[string]any) error {
	start := time.Now()
	return a.observe("set_custom_claims", start, a.client.SetCustomUserClaims(ctx, uid, claims))
}

// RevokeRefreshTokens invalidates every refresh token of a user.
func (a *Auth) RevokeRefreshTokens(ctx context.Context, uid string) error {
	start := time.Now()
	return a.observe("revoke_refresh_tokens", start, a.client.RevokeRefreshTokens(ctx, uid))
}

// SendSignInLinkToEmail generates an email sign-in link. The settings must
// handle the code in the app.
func (a *Auth) SendSignInLinkToEmail(ctx context.Context, email string, settings *ActionCodeSettings) (string, error) {
	start := time.Now()

	if settings == nil || !settings.HandleCodeInApp {
		return "", a.observe("sign_in_link", start,
			NewAuthError(CodeArgumentError, "email sign-in links must be handled in the app"))
	}
	admin, err := settings.admin()
	if err != nil {
		return "", a.observe("sign_in_link", start, err)
	}

	link, err := a.client.EmailSignInLink(ctx, email, admin)
	return link, a.observe("sign_in_link", start, err)
}

// EmailVerificationLink generates an email verification link. settings may be nil.
func (a *Auth) EmailVerificationLink(ctx context.Context, email string, settings *ActionCodeSettings) (string, error) {
	start := time.Now()

	admin, err := settings.admin()
	if err != nil {
		return "", a.observe("verification_link", start, err)
	}

	link, err := a.client.EmailVerificationLinkWithSettings(ctx, email, admin)
	return link, a.observe("verification_link", start, err)
}

// PasswordResetLink generates a password reset link. settings may be nil.
func (a *Auth) PasswordResetLink(ctx context.Context, email string, settings *ActionCodeSettings) (string, error) {
	start := time.Now()

	admin, err := settings.admin()
	if err != nil {
		return "", a.observe("password_reset_link", start, err)
	}

	link, err := a.client.PasswordResetLinkWithSettings(ctx, email, admin)
	return link, a.observe("password_reset_link", start, err)
}

// VerifyIDToken verifies a Firebase ID token. Successful results are cached
// until the token expires and concurrent checks of one token share a single
// verification.
func (a *Auth) VerifyIDToken(ctx context.Context, idToken string) (*TokenClaims, error) {
	start := time.Now()

	if idToken == "" {
		return nil, a.observe("verify_id_token", start, NewAuthError(CodeInvalidAuth, "id token is empty"))
	}

	cacheKey := tokenCacheKey(idToken)

	a.locks.Lock(cacheKey)
	defer a.locks.Unlock(cacheKey)

	if claims := a.cachedClaims(ctx, cacheKey); claims != nil {
		a.metrics.IncCacheHits("id_token")
		a.observe("verify_id_token", start, nil)
		a.logger.Debug("cache hit for token verification", "uid", claims.UID)
		return claims, nil
	}
	a.metrics.IncCacheMisses("id_token")

	token, err := a.client.VerifyIDToken(ctx, idToken)
	if err != nil {
		return nil, a.observe("verify_id_token", start, verificationError(err))
	}

	claims := claimsFromToken(token)
	a.storeClaims(ctx, cacheKey, claims)
	a.observe("verify_id_token", start, nil)
	return claims, nil
}

// verificationError classifies a failed verification. Failures the Admin SDK
// does not classify count as an invalid token.
func verificationError(err error) *AuthError {
	authErr := FromAdminError(err)
	if authErr.Code == CodeInternalError {
		return &AuthError{Code: CodeInvalidAuth, Message: authErr.Message, cause: err}
	}
	return authErr
}

// tokenCacheKey is "firebase:" plus the first 16 hex digits of the token hash.
func tokenCacheKey(idToken string) string {
	sum := sha256.Sum256([]byte(idToken))
	return "firebase:" + hex.EncodeToString(sum[:])[:16]
}

func (a *Auth) cachedClaims(ctx context.Context, key string) *TokenClaims {
	if a.cache == nil {
		return nil
	}

	data, err := a.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, binding.ErrCacheKeyNotFound) {
			a.logger.Debug("cache get error", "key", key, "error", err)
		}
		return nil
	}

	var claims TokenClaims
	if err := json.Unmarshal(data, &claims); err != nil {
		a.logger.Debug("cache unmarshal error", "key", key, "error", err)
		return nil
	}

	if !claims.ExpiresAt.IsZero() && time.Now().After(claims.ExpiresAt) {
		a.logger.Debug("cached claims expired", "key", key, "expires_at", claims.ExpiresAt)
		if err := a.cache.Delete(ctx, key); err != nil {
			a.logger.Debug("cache delete error", "key", key, "error", err)
		}
		return nil
	}
	return &claims
}

// storeClaims caches claims until the token expires, for at most an hour.
func (a *Auth) storeClaims(ctx context.Context, key string, claims *TokenClaims) {
	if a.cache == nil {
		return
	}

	data, err := json.Marshal(claims)
	if err != nil {
		a.logger.Debug("cache marshal error", "key", key, "error", err)
		return
	}

	ttl := defaultTokenTTL
	if !claims.ExpiresAt.IsZero() {
		if remaining := time.Until(claims.ExpiresAt); remaining > 0 && remaining < ttl {
			ttl = remaining
		}
	}

	if err := a.cache.Set(ctx, key, data, ttl); err != nil {
		a.logger.Debug("cache set error", "key", key, "error", err)
		return
	}
	a.logger.Debug("cached token verification result", "key", key, "ttl", ttl)
}

var standardClaims = map[string]bool{
	"iss": true, "aud": true, "exp": true, "iat": true, "sub": true,
	"auth_time": true, "user_id": true, "email": true, "email_verified": true,
	"name": true, "picture": true, "phone_number": true, "firebase": true,
}

func claimsFromToken(token *fbauth.Token) *TokenClaims {
	claims := &TokenClaims{
		UID:            token.UID,
		SignInProvider: token.Firebase.SignInProvider,
		Tenant:         token.Firebase.Tenant,
		Issuer:         token.Issuer,
		Audience:       token.Audience,
		AuthTime:       unixTime(token.AuthTime),
		IssuedAt:       unixTime(token.IssuedAt),
		ExpiresAt:      unixTime(token.Expires),
	}

	claims.Email, _ = token.Claims["email"].(string)
	claims.EmailVerified, _ = token.Claims["email_verified"].(bool)
	claims.Name, _ = token.Claims["name"].(string)
	claims.Picture, _ = token.Claims["picture"].(string)
	claims.PhoneNumber, _ = token.Claims["phone_number"].(string)

	for k, v := range token.Claims {
		if standardClaims[k] {
			continue
		}
		if claims.CustomClaims == nil {
			claims.CustomClaims = make(map[string]any)
		}
		claims.CustomClaims[k] = v
	}
	return claims
}

func unixTime(sec int64) time.Time {
	if sec == 0 {
		return time.Time{}
	}
	return time.Unix(sec, 0).UTC()
}

// observe records the outcome of one operation and converts failures to
// AuthErrors.
func (a *Auth) observe(op string, start time.Time, err error) error {
	a.metrics.ObserveOperationDuration(module, op, time.Since(start))
	if err == nil {
		a.metrics.IncOperation(module, op, "success")
		return nil
	}

	a.metrics.IncOperation(module, op, "failure")
	if errors.Is(err, binding.ErrInvalidToken) || errors.Is(err, binding.ErrTokenExpired) {
		a.logger.Debug("auth operation failed", "op", op, "error", err)
	} else {
		a.logger.Warn("auth operation failed", "op", op, "error", err)
	}

	var authErr *AuthError
	if errors.As(err, &authErr) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%s: %w", op, FromAdminError(err))
}
