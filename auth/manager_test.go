package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testManager(t *testing.T, tokenURL string) (*Manager, *Store) {
	t.Helper()
	store := NewStore(t.TempDir())
	m := NewManager("test-key", "test-secret", store)
	if tokenURL != "" {
		m.tokenURL = tokenURL
	}
	m.now = func() time.Time { return time.Unix(1_700_000_000, 0) }
	return m, store
}

func TestGetValidToken_StillValid(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
	}))
	defer server.Close()

	m, store := testManager(t, server.URL)
	require.NoError(t, store.Save("default", &TokenSet{
		AccessToken:  "valid-token",
		RefreshToken: "refresh",
		ExpiresIn:    1800,
		SavedAt:      m.now().Unix(),
	}))

	// Two calls in a row: same token both times, no network traffic.
	for i := 0; i < 2; i++ {
		token, err := m.GetValidToken(context.Background(), "default")
		require.NoError(t, err)
		assert.Equal(t, "valid-token", token)
	}
	assert.Equal(t, 0, calls)
}

func TestGetValidToken_RefreshesExpired(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++

		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "test-key", user)
		assert.Equal(t, "test-secret", pass)

		require.NoError(t, r.ParseForm())
		assert.Equal(t, "refresh_token", r.PostFormValue("grant_type"))
		assert.Equal(t, "old-refresh", r.PostFormValue("refresh_token"))

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"access_token":  "new-access",
			"refresh_token": "new-refresh",
			"token_type":    "Bearer",
			"expires_in":    1800,
		})
	}))
	defer server.Close()

	m, store := testManager(t, server.URL)
	require.NoError(t, store.Save("default", &TokenSet{
		AccessToken:  "old-access",
		RefreshToken: "old-refresh",
		ExpiresIn:    1800,
		SavedAt:      m.now().Add(-time.Hour).Unix(),
	}))

	token, err := m.GetValidToken(context.Background(), "default")
	require.NoError(t, err)
	assert.Equal(t, "new-access", token)
	assert.Equal(t, 1, calls)

	// The refreshed set is persisted and valid.
	saved, err := store.Load("default")
	require.NoError(t, err)
	assert.Equal(t, "new-access", saved.AccessToken)
	assert.Equal(t, "new-refresh", saved.RefreshToken)
	assert.Equal(t, m.now().Unix(), saved.SavedAt)
	assert.True(t, saved.Valid(m.now()))
}

func TestGetValidToken_KeepsRefreshTokenWhenNotRotated(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"access_token": "new-access",
			"expires_in":   1800,
		})
	}))
	defer server.Close()

	m, store := testManager(t, server.URL)
	require.NoError(t, store.Save("default", &TokenSet{
		AccessToken:  "old-access",
		RefreshToken: "old-refresh",
		ExpiresIn:    1800,
		SavedAt:      m.now().Add(-time.Hour).Unix(),
	}))

	_, err := m.GetValidToken(context.Background(), "default")
	require.NoError(t, err)

	saved, err := store.Load("default")
	require.NoError(t, err)
	assert.Equal(t, "old-refresh", saved.RefreshToken)
}

func TestGetValidToken_NoStoredToken(t *testing.T) {
	m, _ := testManager(t, "")

	_, err := m.GetValidToken(context.Background(), "default")
	require.Error(t, err)

	var aerr *Error
	assert.True(t, errors.As(err, &aerr))
	assert.True(t, errors.Is(err, ErrNoToken))
}

func TestGetValidToken_RefreshRejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"invalid_grant"}`, http.StatusUnauthorized)
	}))
	defer server.Close()

	m, store := testManager(t, server.URL)
	require.NoError(t, store.Save("default", &TokenSet{
		AccessToken:  "old-access",
		RefreshToken: "dead-refresh",
		ExpiresIn:    1800,
		SavedAt:      m.now().Add(-time.Hour).Unix(),
	}))

	_, err := m.GetValidToken(context.Background(), "default")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrReauthorize))

	// The stored refresh token is left untouched for inspection.
	saved, err := store.Load("default")
	require.NoError(t, err)
	assert.Equal(t, "dead-refresh", saved.RefreshToken)
}

func TestGetValidToken_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream down", http.StatusBadGateway)
	}))
	defer server.Close()

	m, store := testManager(t, server.URL)
	require.NoError(t, store.Save("default", &TokenSet{
		AccessToken:  "old-access",
		RefreshToken: "refresh",
		ExpiresIn:    1800,
		SavedAt:      m.now().Add(-time.Hour).Unix(),
	}))

	_, err := m.GetValidToken(context.Background(), "default")
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrReauthorize))
	assert.Contains(t, err.Error(), "502")
}
