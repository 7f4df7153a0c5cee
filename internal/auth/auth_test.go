package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/awakenedyouth/awakened-be/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionPredicates(t *testing.T) {
	var anon Session
	assert.False(t, anon.IsLoggedIn())
	assert.False(t, anon.IsAdmin())
	assert.False(t, anon.IsContributor())
	assert.False(t, anon.Owns(""))

	writer := NewSession(models.User{ID: "u1", Name: "Aisha", Role: models.RoleContributor})
	assert.True(t, writer.IsLoggedIn())
	assert.True(t, writer.IsContributor())
	assert.False(t, writer.IsAdmin())
	assert.True(t, writer.Owns("u1"))
	assert.False(t, writer.Owns("u2"))

	admin := Session{UserID: "admin", Role: models.RoleAdmin}
	assert.True(t, admin.IsAdmin())
	assert.False(t, admin.IsContributor())
}

func TestSessionContextRoundTrip(t *testing.T) {
	assert.False(t, FromContext(context.Background()).IsLoggedIn())

	s := Session{UserID: "u1", Role: models.RoleContributor}
	assert.Equal(t, s, FromContext(WithSession(context.Background(), s)))
}

func TestTokenRoundTrip(t *testing.T) {
	m := NewTokenManager("test-secret", time.Hour)
	s := Session{UserID: "u1", Name: "Aisha", Email: "a@example.com", Role: models.RoleContributor}

	token, err := m.Generate(s)
	require.NoError(t, err)

	got, err := m.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, s, got)

	_, err = NewTokenManager("other-secret", time.Hour).Validate(token)
	assert.Error(t, err)
}

func TestTokenExpiry(t *testing.T) {
	m := NewTokenManager("test-secret", time.Minute)
	m.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }

	token, err := m.Generate(Session{UserID: "u1"})
	require.NoError(t, err)

	_, err = m.Validate(token)
	assert.Error(t, err)
}

func TestSessionMiddleware(t *testing.T) {
	m := NewTokenManager("test-secret", time.Hour)
	token, err := m.Generate(Session{UserID: "u1", Role: models.RoleContributor})
	require.NoError(t, err)

	var seen Session
	h := m.SessionMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = FromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	h.ServeHTTP(httptest.NewRecorder(), req)
	assert.Equal(t, "u1", seen.UserID)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: token})
	h.ServeHTTP(httptest.NewRecorder(), req)
	assert.Equal(t, "u1", seen.UserID)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	h.ServeHTTP(httptest.NewRecorder(), req)
	assert.False(t, seen.IsLoggedIn())
}

func TestRequireSession(t *testing.T) {
	h := RequireSession(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(WithSession(req.Context(), Session{UserID: "u1"}))
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("secret1")
	require.NoError(t, err)
	assert.NotEqual(t, "secret1", hash)
	assert.True(t, CheckPassword(hash, "secret1"))
	assert.False(t, CheckPassword(hash, "secret2"))
	assert.False(t, CheckPassword("not-a-hash", "secret1"))
}
