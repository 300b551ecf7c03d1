package middle

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shine00chang/cilantro/server/auth"
)

func openTestAuthStore(t *testing.T) *auth.Store {
	t.Helper()
	s, err := auth.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func Test_RequireAuth_rejectsMissingBearerToken(t *testing.T) {
	store := openTestAuthStore(t)
	mw := RequireAuth(store, []byte("secret"), 0)

	called := false
	h := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { called = true }))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/compile", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, called)
}

func Test_RequireAuth_allowsValidBearerTokenAndAnnotatesContext(t *testing.T) {
	assert := assert.New(t)
	store := openTestAuthStore(t)
	secret := []byte("signing-secret")

	key, _, err := store.Issue(context.Background(), "ci-runner")
	require.NoError(t, err)
	tok, err := auth.GenerateJWT(secret, key)
	require.NoError(t, err)

	mw := RequireAuth(store, secret, 0)

	var sawKey auth.Key
	var sawLoggedIn bool
	h := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sawLoggedIn, _ = r.Context().Value(AuthLoggedIn).(bool)
		sawKey, _ = r.Context().Value(AuthKey).(auth.Key)
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/compile", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(http.StatusOK, rec.Code)
	assert.True(sawLoggedIn)
	assert.Equal(key.ID, sawKey.ID)
}

func Test_RequireAuth_sleepsUnauthedDelayBeforeResponding(t *testing.T) {
	store := openTestAuthStore(t)
	mw := RequireAuth(store, []byte("secret"), 10*time.Millisecond)
	h := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/compile", nil)
	rec := httptest.NewRecorder()

	start := time.Now()
	h.ServeHTTP(rec, req)
	assert.GreaterOrEqual(t, time.Since(start), 10*time.Millisecond)
}

func Test_DontPanic_recoversAndWrites500(t *testing.T) {
	mw := DontPanic()
	h := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()

	assert.NotPanics(t, func() { h.ServeHTTP(rec, req) })
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func Test_DontPanic_passesThroughWhenNoPanic(t *testing.T) {
	mw := DontPanic()
	h := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusTeapot, rec.Code)
}
