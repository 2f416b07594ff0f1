package services

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"testing"

	"github.com/docuflow/docuflow/internal/domain/models"
	"github.com/docuflow/docuflow/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryTokenStore struct {
	token   string
	loadErr error
}

func (s *memoryTokenStore) Load() (string, error) { return s.token, s.loadErr }
func (s *memoryTokenStore) Save(token string) error {
	s.token = token
	return nil
}
func (s *memoryTokenStore) Clear() error {
	s.token = ""
	return nil
}

type fakeAuthAPI struct {
	loginResult *LoginResult
	loginErr    error
	sessionUser *models.User
	sessionErr  error
	logoutCalls int
}

func (f *fakeAuthAPI) Login(_ context.Context, _ LoginRequest) (*LoginResult, error) {
	return f.loginResult, f.loginErr
}

func (f *fakeAuthAPI) GetSession(_ context.Context, _ string) (*models.User, error) {
	return f.sessionUser, f.sessionErr
}

func (f *fakeAuthAPI) Logout(_ context.Context, _ string) error {
	f.logoutCalls++
	return nil
}

// unsignedToken builds a structurally valid JWT carrying the given
// claims; the signature is garbage because the client never verifies.
func unsignedToken(t *testing.T, claims map[string]any) string {
	t.Helper()
	header, err := json.Marshal(map[string]string{"alg": "HS256", "typ": "JWT"})
	require.NoError(t, err)
	payload, err := json.Marshal(claims)
	require.NoError(t, err)
	enc := base64.RawURLEncoding
	return enc.EncodeToString(header) + "." + enc.EncodeToString(payload) + "." + enc.EncodeToString([]byte("sig"))
}

func newSession(auth AuthAPI, tokens TokenStore) *SessionService {
	return NewSessionService(auth, tokens, "device-token", logger.NewForTesting())
}

func TestLoginRequiresCredentials(t *testing.T) {
	svc := newSession(&fakeAuthAPI{}, &memoryTokenStore{})

	_, err := svc.Login(context.Background(), "", "secret")
	assert.ErrorIs(t, err, ErrMissingCredentials)

	_, err = svc.Login(context.Background(), "amina", "")
	assert.ErrorIs(t, err, ErrMissingCredentials)
}

func TestLoginPersistsTokenAndUser(t *testing.T) {
	auth := &fakeAuthAPI{loginResult: &LoginResult{
		Token: "token-123",
		User:  models.User{ID: "u1", Username: "amina", FullName: "Amina Khalid", Role: models.UserRoleApprover},
	}}
	tokens := &memoryTokenStore{}
	svc := newSession(auth, tokens)

	user, err := svc.Login(context.Background(), "amina", "secret")
	require.NoError(t, err)
	assert.Equal(t, "token-123", tokens.token)
	assert.Equal(t, models.UserRoleApprover, user.Role)
	assert.Equal(t, models.UserRoleApprover, svc.Role())
}

func TestLoginFailureLeavesNoSession(t *testing.T) {
	auth := &fakeAuthAPI{loginErr: errors.New("invalid credentials")}
	tokens := &memoryTokenStore{}
	svc := newSession(auth, tokens)

	_, err := svc.Login(context.Background(), "amina", "wrong")
	require.Error(t, err)
	assert.Nil(t, svc.CurrentUser())
	assert.Empty(t, tokens.token)
}

func TestRestoreWithoutTokenIsSignedOut(t *testing.T) {
	svc := newSession(&fakeAuthAPI{}, &memoryTokenStore{})

	user, err := svc.Restore(context.Background())
	assert.NoError(t, err)
	assert.Nil(t, user)
}

func TestRestoreBootstrapFailureIsSignedOutNotFatal(t *testing.T) {
	auth := &fakeAuthAPI{sessionErr: errors.New("session expired")}
	tokens := &memoryTokenStore{token: "stale-token"}
	svc := newSession(auth, tokens)

	user, err := svc.Restore(context.Background())
	assert.NoError(t, err, "bootstrap failure must never be fatal")
	assert.Nil(t, user)
}

func TestRestoreRecoversSession(t *testing.T) {
	auth := &fakeAuthAPI{sessionUser: &models.User{
		ID: "u1", Username: "theo", FullName: "Theo Brandt", Role: models.UserRoleAssistant,
	}}
	tokens := &memoryTokenStore{token: "token-123"}
	svc := newSession(auth, tokens)

	user, err := svc.Restore(context.Background())
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, models.UserRoleAssistant, svc.Role())
}

func TestRoleFallsBackToTokenClaim(t *testing.T) {
	token := unsignedToken(t, map[string]any{"role": "APPROVER"})
	auth := &fakeAuthAPI{sessionUser: &models.User{ID: "u1", Username: "theo"}}
	tokens := &memoryTokenStore{token: token}
	svc := newSession(auth, tokens)

	user, err := svc.Restore(context.Background())
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, models.UserRoleApprover, user.Role)
}

func TestServerRoleWinsOverTokenClaim(t *testing.T) {
	token := unsignedToken(t, map[string]any{"role": "assistant"})
	auth := &fakeAuthAPI{sessionUser: &models.User{ID: "u1", Role: models.UserRoleAdmin}}
	tokens := &memoryTokenStore{token: token}
	svc := newSession(auth, tokens)

	user, err := svc.Restore(context.Background())
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, models.UserRoleAdmin, user.Role)
}

func TestLogoutClearsSessionAndToken(t *testing.T) {
	auth := &fakeAuthAPI{loginResult: &LoginResult{
		Token: "token-123",
		User:  models.User{ID: "u1", Role: models.UserRoleAdmin},
	}}
	tokens := &memoryTokenStore{}
	svc := newSession(auth, tokens)

	_, err := svc.Login(context.Background(), "root", "secret")
	require.NoError(t, err)

	require.NoError(t, svc.Logout(context.Background()))
	assert.Nil(t, svc.CurrentUser())
	assert.Empty(t, tokens.token)
	assert.Equal(t, 1, auth.logoutCalls)
	assert.Equal(t, models.UserRole(""), svc.Role())
}
