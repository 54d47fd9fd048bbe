package auth

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"firebasebindings/internal/binding"
	"firebasebindings/internal/cache"
	"firebasebindings/internal/testutil"

	fbauth "firebase.google.com/go/v4/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type AuthTestSuite struct {
	suite.Suite
	client  *testutil.MockAdminAuth
	metrics *testutil.MockMetrics
	cache   *cache.MemoryCache
	auth    *Auth
	ctx     context.Context
}

func (s *AuthTestSuite) SetupTest() {
	s.client = &testutil.MockAdminAuth{}
	s.metrics = (&testutil.MockMetrics{}).AllowAll()
	s.cache = cache.NewMemoryCache(cache.MemoryCacheConfig{MaxKeys: 100, CleanupInterval: time.Minute})
	s.auth = New(s.client, NewConfig("api-key", "demo.firebaseapp.com"), s.cache, nil, (&testutil.MockLogger{}).AllowAll(), s.metrics)
	s.ctx = context.Background()
}

func (s *AuthTestSuite) TearDownTest() {
	_ = s.cache.Close()
	s.client.AssertExpectations(s.T())
}

func (s *AuthTestSuite) TestConfig() {
	cfg := s.auth.Config()
	s.Equal("api-key", cfg.APIKey)
	s.Equal("demo.firebaseapp.com", cfg.AuthDomain)
	s.Equal("identitytoolkit.googleapis.com", cfg.APIHost)
	s.Equal("https", cfg.APIScheme)
	s.Equal("securetoken.googleapis.com", cfg.TokenAPIHost)
	s.True(strings.HasPrefix(cfg.SDKClientVersion, "Go/Admin/"))
}

func (s *AuthTestSuite) TestVerifyIDToken_CachesResult() {
	token := testutil.TestToken()
	s.client.On("VerifyIDToken", mock.Anything, "good-token").Return(token, nil).Once()

	claims, err := s.auth.VerifyIDToken(s.ctx, "good-token")
	s.Require().NoError(err)
	s.Equal("test-user-123", claims.UID)
	s.Equal("test@example.com", claims.Email)
	s.True(claims.EmailVerified)
	s.Equal("Test User", claims.Name)
	s.Equal("password", claims.SignInProvider)
	s.Equal("demo-project", claims.Audience)
	s.Equal(map[string]any{"role": "user"}, claims.CustomClaims)
	s.Equal(time.Unix(token.Expires, 0).UTC(), claims.ExpiresAt)

	again, err := s.auth.VerifyIDToken(s.ctx, "good-token")
	s.Require().NoError(err)
	s.Equal(claims.UID, again.UID)
	s.Equal(claims.CustomClaims, again.CustomClaims)

	s.True(s.cache.Exists(s.ctx, tokenCacheKey("good-token")))
	s.metrics.AssertCalled(s.T(), "IncCacheMisses", "id_token")
	s.metrics.AssertCalled(s.T(), "IncCacheHits", "id_token")
	s.metrics.AssertNumberOfCalls(s.T(), "IncCacheHits", 1)
}

func (s *AuthTestSuite) TestVerifyIDToken_ExpiredCacheEntryIsIgnored() {
	stale := TokenClaims{UID: "old", ExpiresAt: time.Now().Add(-time.Minute)}
	data, err := json.Marshal(stale)
	s.Require().NoError(err)
	key := tokenCacheKey("tok")
	s.Require().NoError(s.cache.Set(s.ctx, key, data, time.Hour))

	s.client.On("VerifyIDToken", mock.Anything, "tok").Return(testutil.TestToken(), nil).Once()

	claims, err := s.auth.VerifyIDToken(s.ctx, "tok")
	s.Require().NoError(err)
	s.Equal("test-user-123", claims.UID)
}

func (s *AuthTestSuite) TestVerifyIDToken_Failure() {
	s.client.On("VerifyIDToken", mock.Anything, "bad").Return(nil, errors.New("signature mismatch")).Once()

	_, err := s.auth.VerifyIDToken(s.ctx, "bad")
	s.Require().Error(err)
	s.ErrorIs(err, binding.ErrInvalidToken)

	var authErr *AuthError
	s.Require().ErrorAs(err, &authErr)
	s.Equal(CodeInvalidAuth, authErr.Code)
	s.Equal(401, binding.ErrorToHTTPStatus(err))
	s.Equal("auth/invalid-user-token", binding.ErrorToHTTPError(err).Code)
	s.False(s.cache.Exists(s.ctx, tokenCacheKey("bad")))
}

func (s *AuthTestSuite) TestVerifyIDToken_Empty() {
	_, err := s.auth.VerifyIDToken(s.ctx, "")
	s.ErrorIs(err, binding.ErrInvalidToken)
	s.client.AssertNotCalled(s.T(), "VerifyIDToken", mock.Anything, mock.Anything)
}

func (s *AuthTestSuite) TestVerifyIDToken_ConcurrentCallsVerifyOnce() {
	s.client.On("VerifyIDToken", mock.Anything, "shared").
		Run(func(mock.Arguments) { time.Sleep(10 * time.Millisecond) }).
		Return(testutil.TestToken(), nil).Once()

	var wg sync.WaitGroup
	errs := make(chan error, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.auth.VerifyIDToken(s.ctx, "shared")
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		s.NoError(err)
	}
}

func (s *AuthTestSuite) TestCreateUserWithEmailAndPassword() {
	s.client.On("CreateUser", mock.Anything, mock.AnythingOfType("*auth.UserToCreate")).
		Return(testutil.TestUserRecord(), nil).Once()

	cred, err := s.auth.CreateUserWithEmailAndPassword(s.ctx, "test@example.com", "secret123")
	s.Require().NoError(err)
	s.Equal(OperationTypeSignIn, cred.OperationType)
	s.Equal("password", cred.ProviderID)
	s.Equal("test-user-123", cred.User.UID)
	s.metrics.AssertCalled(s.T(), "IncOperation", "auth", "create_user", "success")
}

func (s *AuthTestSuite) TestCreateUserWithEmailAndPassword_MissingFields() {
	_, err := s.auth.CreateUserWithEmailAndPassword(s.ctx, "", "pw")
	s.ErrorIs(err, binding.ErrInvalidArgument)

	var authErr *AuthError
	s.Require().ErrorAs(err, &authErr)
	s.Equal(CodeInvalidEmail, authErr.Code)

	_, err = s.auth.CreateUserWithEmailAndPassword(s.ctx, "a@b.c", "")
	s.Require().ErrorAs(err, &authErr)
	s.Equal(CodeWeakPassword, authErr.Code)
}

func (s *AuthTestSuite) TestGetUser() {
	s.client.On("GetUser", mock.Anything, "test-user-123").Return(testutil.TestUserRecord(), nil).Once()

	user, err := s.auth.GetUser(s.ctx, "test-user-123")
	s.Require().NoError(err)
	s.Equal("Test User", user.DisplayName)
	s.True(user.EmailVerified)
	s.False(user.IsAnonymous)
	s.Require().Len(user.ProviderData, 1)
	s.Equal("password", user.ProviderData[0].ProviderID)
	s.Equal(time.UnixMilli(1700000000000).UTC(), user.Metadata.CreationTime)
	s.Equal(time.UnixMilli(1700000500000).UTC(), user.Metadata.LastSignInTime)
	s.Equal(map[string]any{"role": "user"}, user.CustomClaims)
}

func (s *AuthTestSuite) TestGetUserByEmail_Error() {
	s.client.On("GetUserByEmail", mock.Anything, "nobody@example.com").Return(nil, errors.New("backend down")).Once()

	_, err := s.auth.GetUserByEmail(s.ctx, "nobody@example.com")
	var authErr *AuthError
	s.Require().ErrorAs(err, &authErr)
	s.Equal(CodeInternalError, authErr.Code)
	s.Contains(err.Error(), "get_user_by_email")
	s.metrics.AssertCalled(s.T(), "IncOperation", "auth", "get_user_by_email", "failure")
}

func (s *AuthTestSuite) TestDeleteAndClaims() {
	s.client.On("DeleteUser", mock.Anything, "u1").Return(nil).Once()
	s.client.On("SetCustomUserClaims", mock.Anything, "u2", map[string]any{"admin": true}).Return(nil).Once()
	s.client.On("RevokeRefreshTokens", mock.Anything, "u3").Return(nil).Once()

	s.NoError(s.auth.DeleteUser(s.ctx, "u1"))
	s.NoError(s.auth.SetCustomClaims(s.ctx, "u2", map[string]any{"admin": true}))
	s.NoError(s.auth.RevokeRefreshTokens(s.ctx, "u3"))
}

func (s *AuthTestSuite) TestSendSignInLinkToEmail() {
	install := true
	settings := &ActionCodeSettings{
		URL:             "https://example.com/finish",
		HandleCodeInApp: true,
		Android:         &AndroidSettings{PackageName: "com.example", InstallApp: &install, MinimumVersion: "12"},
		IOS:             &IOSSettings{BundleID: "com.example.ios"},
	}
	s.client.On("EmailSignInLink", mock.Anything, "a@b.c", mock.MatchedBy(func(as *fbauth.ActionCodeSettings) bool {
		return as.URL == "https://example.com/finish" && as.HandleCodeInApp &&
			as.AndroidPackageName == "com.example" && as.AndroidInstallApp &&
			as.AndroidMinimumVersion == "12" && as.IOSBundleID == "com.example.ios"
	})).Return("https://link", nil).Once()

	link, err := s.auth.SendSignInLinkToEmail(s.ctx, "a@b.c", settings)
	s.Require().NoError(err)
	s.Equal("https://link", link)
}

func (s *AuthTestSuite) TestSendSignInLinkToEmail_RequiresInAppHandling() {
	_, err := s.auth.SendSignInLinkToEmail(s.ctx, "a@b.c", &ActionCodeSettings{URL: "https://example.com"})
	s.ErrorIs(err, binding.ErrInvalidArgument)

	_, err = s.auth.SendSignInLinkToEmail(s.ctx, "a@b.c", nil)
	s.ErrorIs(err, binding.ErrInvalidArgument)
}

func (s *AuthTestSuite) TestEmailLinksWithoutSettings() {
	var none *fbauth.ActionCodeSettings
	s.client.On("EmailVerificationLinkWithSettings", mock.Anything, "a@b.c", none).Return("https://verify", nil).Once()
	s.client.On("PasswordResetLinkWithSettings", mock.Anything, "a@b.c", none).Return("https://reset", nil).Once()

	link, err := s.auth.EmailVerificationLink(s.ctx, "a@b.c", nil)
	s.Require().NoError(err)
	s.Equal("https://verify", link)

	link, err = s.auth.PasswordResetLink(s.ctx, "a@b.c", nil)
	s.Require().NoError(err)
	s.Equal("https://reset", link)
}

func (s *AuthTestSuite) TestPasswordResetLink_InvalidSettings() {
	_, err := s.auth.PasswordResetLink(s.ctx, "a@b.c", &ActionCodeSettings{})
	var authErr *AuthError
	s.Require().ErrorAs(err, &authErr)
	s.Equal(CodeMissingContinueURI, authErr.Code)
}

func TestAuthTestSuite(t *testing.T) {
	suite.Run(t, new(AuthTestSuite))
}

func TestVerifyIDToken_CacheTTLBoundedByExpiry(t *testing.T) {
	client := &testutil.MockAdminAuth{}
	mc := &testutil.MockCache{}

	token := testutil.TestToken()
	token.Expires = time.Now().Add(10 * time.Minute).Unix()
	client.On("VerifyIDToken", mock.Anything, "t").Return(token, nil).Once()

	key := tokenCacheKey("t")
	mc.On("Get", mock.Anything, key).Return(nil, binding.ErrCacheKeyNotFound).Once()
	mc.On("Set", mock.Anything, key, mock.Anything, mock.MatchedBy(func(ttl time.Duration) bool {
		return ttl > 9*time.Minute && ttl <= 10*time.Minute
	})).Return(nil).Once()

	a := New(client, Config{}, mc, nil, nil, nil)
	_, err := a.VerifyIDToken(context.Background(), "t")
	require.NoError(t, err)

	client.AssertExpectations(t)
	mc.AssertExpectations(t)
}

func TestVerifyIDToken_WithoutCache(t *testing.T) {
	client := &testutil.MockAdminAuth{}
	client.On("VerifyIDToken", mock.Anything, "t").Return(testutil.TestToken(), nil).Twice()

	a := New(client, Config{}, nil, nil, nil, nil)
	for i := 0; i < 2; i++ {
		_, err := a.VerifyIDToken(context.Background(), "t")
		require.NoError(t, err)
	}
	client.AssertExpectations(t)
}

func TestTokenCacheKey(t *testing.T) {
	key := tokenCacheKey("abc")
	assert.True(t, strings.HasPrefix(key, "firebase:"))
	assert.Len(t, key, len("firebase:")+16)
	assert.Equal(t, key, tokenCacheKey("abc"))
	assert.NotEqual(t, key, tokenCacheKey("abd"))
}

func TestClaimsFromToken_ZeroTimes(t *testing.T) {
	claims := claimsFromToken(&fbauth.Token{UID: "u"})
	assert.True(t, claims.AuthTime.IsZero())
	assert.True(t, claims.ExpiresAt.IsZero())
	assert.Nil(t, claims.CustomClaims)
}
