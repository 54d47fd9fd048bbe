// Package testutil provides mocks and fixtures shared by the package tests.
package testutil

import (
	"context"
	"testing"
	"time"

	"firebasebindings/internal/binding"

	fbauth "firebase.google.com/go/v4/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// TestUserRecord returns an Admin SDK user record for "test-user-123".
func TestUserRecord() *fbauth.UserRecord {
	return &fbauth.UserRecord{
		UserInfo: &fbauth.UserInfo{
			UID:         "test-user-123",
			Email:       "test@example.com",
			DisplayName: "Test User",
			PhotoURL:    "https://example.com/avatar.png",
			ProviderID:  "firebase",
		},
		EmailVerified: true,
		CustomClaims:  map[string]interface{}{"role": "user"},
		ProviderUserInfo: []*fbauth.UserInfo{
			{UID: "test@example.com", Email: "test@example.com", ProviderID: "password"},
		},
		UserMetadata: &fbauth.UserMetadata{
			CreationTimestamp:  1700000000000,
			LastLogInTimestamp: 1700000500000,
		},
	}
}

// TestToken returns a decoded ID token for "test-user-123" that expires in an hour.
func TestToken() *fbauth.Token {
	now := time.Now()
	return &fbauth.Token{
		AuthTime: now.Unix(),
		Issuer:   "https://securetoken.google.com/demo-project",
		Audience: "demo-project",
		Expires:  now.Add(time.Hour).Unix(),
		IssuedAt: now.Unix(),
		Subject:  "test-user-123",
		UID:      "test-user-123",
		Firebase: fbauth.FirebaseInfo{SignInProvider: "password"},
		Claims: map[string]interface{}{
			"email":          "test@example.com",
			"email_verified": true,
			"name":           "Test User",
			"role":           "user",
		},
	}
}

// MockAdminAuth mocks the Admin SDK user-management client.
type MockAdminAuth struct {
	mock.Mock
}

func (m *MockAdminAuth) VerifyIDToken(ctx context.Context, idToken string) (*fbauth.Token, error) {
	args := m.Called(ctx, idToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*fbauth.Token), args.Error(1)
}

func (m *MockAdminAuth) GetUser(ctx context.Context, uid string) (*fbauth.UserRecord, error) {
	args := m.Called(ctx, uid)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*fbauth.UserRecord), args.Error(1)
}

func (m *MockAdminAuth) GetUserByEmail(ctx context.Context, email string) (*fbauth.UserRecord, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*fbauth.UserRecord), args.Error(1)
}

func (m *MockAdminAuth) CreateUser(ctx context.Context, user *fbauth.UserToCreate) (*fbauth.UserRecord, error) {
	args := m.Called(ctx, user)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*fbauth.UserRecord), args.Error(1)
}

func (m *MockAdminAuth) DeleteUser(ctx context.Context, uid string) error {
	return m.Called(ctx, uid).Error(0)
}

func (m *MockAdminAuth) SetCustomUserClaims(ctx context.Context, uid string, customClaims map[string]interface{}) error {
	return m.Called(ctx, uid, customClaims).Error(0)
}

func (m *MockAdminAuth) RevokeRefreshTokens(ctx context.Context, uid string) error {
	return m.Called(ctx, uid).Error(0)
}

func (m *MockAdminAuth) EmailSignInLink(ctx context.Context, email string, settings *fbauth.ActionCodeSettings) (string, error) {
	args := m.Called(ctx, email, settings)
	return args.String(0), args.Error(1)
}

func (m *MockAdminAuth) EmailVerificationLinkWithSettings(ctx context.Context, email string, settings *fbauth.ActionCodeSettings) (string, error) {
	args := m.Called(ctx, email, settings)
	return args.String(0), args.Error(1)
}

func (m *MockAdminAuth) PasswordResetLinkWithSettings(ctx context.Context, email string, settings *fbauth.ActionCodeSettings) (string, error) {
	args := m.Called(ctx, email, settings)
	return args.String(0), args.Error(1)
}

// MockCache is a testify mock of binding.Cache.
type MockCache struct {
	mock.Mock
}

func (m *MockCache) Get(ctx context.Context, key string) ([]byte, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return m.Called(ctx, key, value, ttl).Error(0)
}

func (m *MockCache) Delete(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

func (m *MockCache) Exists(ctx context.Context, key string) bool {
	return m.Called(ctx, key).Bool(0)
}

func (m *MockCache) Close() error {
	return m.Called().Error(0)
}

func (m *MockCache) Stats() binding.CacheStats {
	return m.Called().Get(0).(binding.CacheStats)
}

// MockConfigLoader is a testify mock of binding.ConfigLoader.
type MockConfigLoader struct {
	mock.Mock
}

func (m *MockConfigLoader) Get(key string) (string, bool) {
	args := m.Called(key)
	return args.String(0), args.Bool(1)
}

func (m *MockConfigLoader) GetWithDefault(key, defaultValue string) string {
	return m.Called(key, defaultValue).String(0)
}

func (m *MockConfigLoader) GetBool(key string) (bool, bool) {
	args := m.Called(key)
	return args.Bool(0), args.Bool(1)
}

func (m *MockConfigLoader) GetBoolWithDefault(key string, defaultValue bool) bool {
	return m.Called(key, defaultValue).Bool(0)
}

func (m *MockConfigLoader) GetInt(key string) (int, bool) {
	args := m.Called(key)
	return args.Int(0), args.Bool(1)
}

func (m *MockConfigLoader) GetIntWithDefault(key string, defaultValue int) int {
	return m.Called(key, defaultValue).Int(0)
}

func (m *MockConfigLoader) HasPrefix(prefix string) map[string]string {
	return m.Called(prefix).Get(0).(map[string]string)
}

// MapConfigLoader is a binding.ConfigLoader over a fixed map of dotted keys.
type MapConfigLoader map[string]string

func (l MapConfigLoader) Get(key string) (string, bool) {
	v, ok := l[key]
	return v, ok && v != ""
}

func (l MapConfigLoader) GetWithDefault(key, defaultValue string) string {
	if v, ok := l.Get(key); ok {
		return v
	}
	return defaultValue
}

func (l MapConfigLoader) GetBool(key string) (bool, bool) {
	switch l[key] {
	case "true":
		return true, true
	case "false":
		return false, true
	}
	return false, false
}

func (l MapConfigLoader) GetBoolWithDefault(key string, defaultValue bool) bool {
	if v, ok := l.GetBool(key); ok {
		return v
	}
	return defaultValue
}

func (l MapConfigLoader) GetInt(string) (int, bool) { return 0, false }

func (l MapConfigLoader) GetIntWithDefault(_ string, defaultValue int) int { return defaultValue }

func (l MapConfigLoader) HasPrefix(prefix string) map[string]string {
	out := make(map[string]string)
	for k, v := range l {
		if len(k) >= len(prefix) && k[:len(prefix)] == prefix {
			out[k] = v
		}
	}
	return out
}

// MockMetrics is a testify mock of binding.Metrics.
type MockMetrics struct {
	mock.Mock
}

func (m *MockMetrics) IncOperation(module, operation, result string) {
	m.Called(module, operation, result)
}

func (m *MockMetrics) ObserveOperationDuration(module, operation string, duration time.Duration) {
	m.Called(module, operation, duration)
}

func (m *MockMetrics) IncCacheHits(scope string) {
	m.Called(scope)
}

func (m *MockMetrics) IncCacheMisses(scope string) {
	m.Called(scope)
}

func (m *MockMetrics) IncAnalyticsEvents(kind, result string) {
	m.Called(kind, result)
}

func (m *MockMetrics) ObserveHTTPRequest(method, route string, status int, duration time.Duration) {
	m.Called(method, route, status, duration)
}

// AllowAll registers optional expectations for every metric so tests can
// assert only on the calls they care about.
func (m *MockMetrics) AllowAll() *MockMetrics {
	m.On("IncOperation", mock.Anything, mock.Anything, mock.Anything).Maybe()
	m.On("ObserveOperationDuration", mock.Anything, mock.Anything, mock.Anything).Maybe()
	m.On("IncCacheHits", mock.Anything).Maybe()
	m.On("IncCacheMisses", mock.Anything).Maybe()
	m.On("IncAnalyticsEvents", mock.Anything, mock.Anything).Maybe()
	m.On("ObserveHTTPRequest", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Maybe()
	return m
}

// MockLogger is a testify mock of binding.Logger. Each call records the
// message and the key/value slice as two arguments.
type MockLogger struct {
	mock.Mock
}

func (m *MockLogger) Debug(msg string, keysAndValues ...any) {
	m.Called(msg, keysAndValues)
}

func (m *MockLogger) Info(msg string, keysAndValues ...any) {
	m.Called(msg, keysAndValues)
}

func (m *MockLogger) Warn(msg string, keysAndValues ...any) {
	m.Called(msg, keysAndValues)
}

func (m *MockLogger) Error(msg string, keysAndValues ...any) {
	m.Called(msg, keysAndValues)
}

// With returns the receiver so expectations set on it keep applying.
func (m *MockLogger) With(keysAndValues ...any) binding.Logger {
	m.Called(keysAndValues)
	return m
}

// AllowAll registers optional expectations for every log method.
func (m *MockLogger) AllowAll() *MockLogger {
	for _, method := range []string{"Debug", "Info", "Warn", "Error"} {
		m.On(method, mock.Anything, mock.Anything).Maybe()
	}
	m.On("With", mock.Anything).Maybe()
	return m
}

// TimeEquals checks if two times are within a second of each other.
func TimeEquals(t *testing.T, expected, actual time.Time, msgAndArgs ...any) {
	t.Helper()
	assert.WithinDuration(t, expected, actual, time.Second, msgAndArgs...)
}

// WithTimeout runs fn with a context and fails the test if it does not return in time.
func WithTimeout(t *testing.T, timeout time.Duration, fn func(ctx context.Context)) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		fn(ctx)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		t.Fatal("test timed out")
	}
}
