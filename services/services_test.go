package services

import (
	"context"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nexdoc/console/api"
	"nexdoc/console/mockapi"
	"nexdoc/console/session"
)

// newTestEnv spins up the in-memory backend and a logged-out client stack
// against it.
func newTestEnv(t *testing.T) (*mockapi.Server, *api.Client, *session.Store) {
	t.Helper()

	mock := mockapi.New()
	srv := httptest.NewServer(mock.Handler())
	t.Cleanup(srv.Close)

	sess, err := session.Open(filepath.Join(t.TempDir(), "session.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { sess.Close() })

	client := api.NewClient(srv.URL, sess, 5*time.Second)
	return mock, client, sess
}

func login(t *testing.T, client *api.Client, sess *session.Store) {
	t.Helper()
	auth := NewAuthService(client, sess)
	require.NoError(t, auth.Login(context.Background(), LoginInput{
		Email:    "demo@nexdoc.ai",
		Password: "demo123",
	}))
}

func TestLoginStoresTokenAndProfile(t *testing.T) {
	_, client, sess := newTestEnv(t)

	login(t, client, sess)

	assert.NotEmpty(t, sess.Token())
	profile := sess.Profile()
	require.NotNil(t, profile)
	assert.Equal(t, "demo@nexdoc.ai", profile.Email)
	assert.Equal(t, "Demo User", profile.Name)
	assert.Equal(t, "NexDoc", profile.Company)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	_, client, sess := newTestEnv(t)
	auth := NewAuthService(client, sess)

	err := auth.Login(context.Background(), LoginInput{
		Email:    "demo@nexdoc.ai",
		Password: "wrong",
	})
	require.ErrorIs(t, err, api.ErrUnauthorized)
	assert.Empty(t, sess.Token())
}

func TestLoginValidatesInputBeforeAnyRequest(t *testing.T) {
	_, client, sess := newTestEnv(t)
	auth := NewAuthService(client, sess)

	err := auth.Login(context.Background(), LoginInput{Email: "not-an-email", Password: "x"})
	require.Error(t, err)
	assert.Empty(t, sess.Token())
}

func TestRegisterDoesNotLogIn(t *testing.T) {
	_, client, sess := newTestEnv(t)
	auth := NewAuthService(client, sess)

	require.NoError(t, auth.Register(context.Background(), RegisterInput{
		Email:    "new.user@nexdoc.ai",
		Password: "secret1",
		FullName: "New User",
	}))
	assert.Empty(t, sess.Token())

	// Re-registering the same email surfaces the backend's message.
	err := auth.Register(context.Background(), RegisterInput{
		Email:    "new.user@nexdoc.ai",
		Password: "secret1",
		FullName: "New User",
	})
	var apiErr *api.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "Email already registered", apiErr.Detail)
}

func TestLogoutClearsSession(t *testing.T) {
	_, client, sess := newTestEnv(t)
	login(t, client, sess)

	auth := NewAuthService(client, sess)
	require.NoError(t, auth.Logout())
	assert.Empty(t, sess.Token())
	assert.Nil(t, sess.Profile())
}
