package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSession struct {
	mu           sync.Mutex
	token        string
	unauthorized int
}

func (s *fakeSession) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

func (s *fakeSession) HandleUnauthorized() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	s.unauthorized++
}

func TestClientAttachesBearerToken(t *testing.T) {
	var gotAuth, gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.Path
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, &fakeSession{token: "token-123"}, 0)

	var out struct {
		OK bool `json:"ok"`
	}
	require.NoError(t, client.GetJSON(context.Background(), "/contracts/", &out))
	assert.True(t, out.OK)
	assert.Equal(t, "Bearer token-123", gotAuth)
	assert.Equal(t, "/api/v1/contracts/", gotPath, "the /api/v1 prefix is the client's concern")
}

func TestClientOmitsHeaderWhenLoggedOut(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, &fakeSession{}, 0)
	require.NoError(t, client.GetJSON(context.Background(), "/demo/samples", nil))
	assert.Empty(t, gotAuth)
}

func TestClientHandles401(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"detail":"Not authenticated"}`))
	}))
	defer srv.Close()

	sess := &fakeSession{token: "expired"}
	client := NewClient(srv.URL, sess, 0)

	err := client.GetJSON(context.Background(), "/contracts/", nil)
	require.ErrorIs(t, err, ErrUnauthorized)
	assert.Equal(t, 1, sess.unauthorized)
	assert.Empty(t, sess.Token())
}

func TestClientSurfacesAPIErrorDetail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"detail":"Email already registered"}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, &fakeSession{}, 0)
	err := client.PostJSON(context.Background(), "/auth/register", map[string]string{}, nil)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, "Email already registered", apiErr.Detail)
	assert.Contains(t, apiErr.Error(), "Email already registered")
}

func TestClientFallsBackToRawBodyDetail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("upstream exploded"))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, &fakeSession{}, 0)
	err := client.GetJSON(context.Background(), "/contracts/", nil)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "upstream exploded", apiErr.Detail)
}

func TestClientReportsTransportFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from here on

	client := NewClient(srv.URL, &fakeSession{}, 0)
	err := client.GetJSON(context.Background(), "/contracts/", nil)

	require.Error(t, err)
	assert.True(t, IsNetworkError(err))

	var apiErr *APIError
	assert.False(t, errors.As(err, &apiErr))
}
