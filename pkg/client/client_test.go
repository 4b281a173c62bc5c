package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/user/login", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body)
		if body["password"] != "correct-horse" {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]any{"success": false, "message": "Invalid credentials"})
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"token":   "tok-123",
			"user":    map[string]string{"id": "u-1", "email": body["email"], "role": "owner"},
		})
	})
	mux.HandleFunc("/api/user/data", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok-123" {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]any{"success": false, "message": "Not authorized"})
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"user":    map[string]string{"id": "u-1", "role": "owner"},
		})
	})
	mux.HandleFunc("/api/user/cars", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"cars":    []map[string]any{{"id": "car-1", "brand": "BMW"}},
		})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestLoginPersistsAndRestoresToken(t *testing.T) {
	srv := newTestServer(t)
	tokenPath := filepath.Join(t.TempDir(), "session", "token")

	c := New(srv.URL, WithTokenPath(tokenPath))
	require.NoError(t, c.Login(context.Background(), "a@b.c", "correct-horse"))
	assert.Equal(t, "tok-123", c.Token())
	assert.True(t, c.IsOwner())

	data, err := os.ReadFile(tokenPath)
	require.NoError(t, err)
	assert.Equal(t, "tok-123", string(data))

	// A fresh client restores the session from disk.
	restored := New(srv.URL, WithTokenPath(tokenPath))
	assert.Equal(t, "tok-123", restored.Token())
	u, err := restored.FetchUser(context.Background())
	require.NoError(t, err)
	assert.True(t, restored.IsOwner())
	assert.Equal(t, "u-1", u.ID)
}

func TestLoginFailureNotifies(t *testing.T) {
	srv := newTestServer(t)
	var gotSuccess bool
	var gotMsg string
	c := New(srv.URL, WithNotify(func(ok bool, msg string) {
		gotSuccess = ok
		gotMsg = msg
	}))

	err := c.Login(context.Background(), "a@b.c", "wrong")
	require.Error(t, err)
	assert.False(t, gotSuccess)
	assert.Equal(t, "Invalid credentials", gotMsg)
	assert.Empty(t, c.Token())
}

func TestLogoutClearsSession(t *testing.T) {
	srv := newTestServer(t)
	tokenPath := filepath.Join(t.TempDir(), "token")
	c := New(srv.URL, WithTokenPath(tokenPath))
	require.NoError(t, c.Login(context.Background(), "a@b.c", "correct-horse"))
	require.NotEmpty(t, c.Token())

	c.Logout()
	assert.Empty(t, c.Token())
	assert.Nil(t, c.CurrentUser())
	assert.False(t, c.IsOwner())
	_, err := os.Stat(tokenPath)
	assert.True(t, os.IsNotExist(err))
}

func TestFetchUserFailureResetsSession(t *testing.T) {
	srv := newTestServer(t)
	tokenPath := filepath.Join(t.TempDir(), "token")
	require.NoError(t, os.WriteFile(tokenPath, []byte("stale-token"), 0o600))

	c := New(srv.URL, WithTokenPath(tokenPath))
	require.Equal(t, "stale-token", c.Token())

	_, err := c.FetchUser(context.Background())
	require.Error(t, err)
	assert.Empty(t, c.Token())
	_, statErr := os.Stat(tokenPath)
	assert.True(t, os.IsNotExist(statErr))
}

func TestFetchCarsCaches(t *testing.T) {
	var hits int
	mux := http.NewServeMux()
	mux.HandleFunc("/api/user/cars", func(w http.ResponseWriter, r *http.Request) {
		hits++
		json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"cars":    []map[string]any{{"id": "car-1"}},
		})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := New(srv.URL)
	for i := 0; i < 3; i++ {
		cars, err := c.FetchCars(context.Background())
		require.NoError(t, err)
		require.Len(t, cars, 1)
	}
	assert.Equal(t, 1, hits)

	c.InvalidateCars()
	_, err := c.FetchCars(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, hits)
}

func TestFetchCarsCachesEmptyCatalogue(t *testing.T) {
	var hits int
	mux := http.NewServeMux()
	mux.HandleFunc("/api/user/cars", func(w http.ResponseWriter, r *http.Request) {
		hits++
		// No cars listed yet; the field marshals as null.
		json.NewEncoder(w).Encode(map[string]any{"success": true})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := New(srv.URL)
	for i := 0; i < 3; i++ {
		cars, err := c.FetchCars(context.Background())
		require.NoError(t, err)
		assert.Empty(t, cars)
	}
	assert.Equal(t, 1, hits)
}

func TestSetDatesFlowIntoAvailability(t *testing.T) {
	var seen map[string]string
	mux := http.NewServeMux()
	mux.HandleFunc("/api/bookings/check-availability", func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&seen)
		json.NewEncoder(w).Encode(map[string]any{"success": true, "availableCars": []any{}})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := New(srv.URL)
	c.SetDates("2026-03-02", "2026-03-05")
	_, err := c.CheckAvailability(context.Background(), "Berlin")
	require.NoError(t, err)
	assert.Equal(t, "Berlin", seen["location"])
	assert.Equal(t, "2026-03-02", seen["pickupDate"])
	assert.Equal(t, "2026-03-05", seen["returnDate"])
}
