package session

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "this-is-a-valid-session-secret-32-chars-long"

func newStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(Config{Secret: testSecret, Issuer: "giftshop"})
	require.NoError(t, err)
	return s
}

func TestNewStore_RequiresSecret(t *testing.T) {
	_, err := NewStore(Config{})
	assert.Error(t, err)

	s := newStore(t)
	assert.Equal(t, DefaultCookieName, s.CookieName())
}

func TestStore_RoundTrip(t *testing.T) {
	s := newStore(t)

	cookie, err := s.Cookie(Session{
		Subject: "auth0|alice",
		Name:    "Alice",
		IDToken: "id-token",
		Claims:  map[string]any{"https://giftshop.app/roles": []any{"SELLER"}},
	})
	require.NoError(t, err)
	assert.True(t, cookie.HttpOnly)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookie)

	sess, err := s.Lookup(req)
	require.NoError(t, err)
	assert.Equal(t, "auth0|alice", sess.Subject)
	assert.Equal(t, "Alice", sess.Name)
	assert.Equal(t, "id-token", sess.IDToken)
	assert.Equal(t, "auth0|alice", sess.Claims["sub"])
	assert.Equal(t, []any{"SELLER"}, sess.Claims["https://giftshop.app/roles"])
	assert.WithinDuration(t, time.Now().Add(24*time.Hour), sess.ExpiresAt, time.Minute)
}

func TestStore_Lookup_NoSession(t *testing.T) {
	s := newStore(t)
	other, err := NewStore(Config{Secret: "another-secret-that-is-long-enough-123"})
	require.NoError(t, err)

	forged, err := other.Encode(Session{Subject: "mallory"})
	require.NoError(t, err)
	expired, err := s.Encode(Session{Subject: "alice", ExpiresAt: time.Now().Add(-time.Minute)})
	require.NoError(t, err)

	tests := []struct {
		name   string
		cookie *http.Cookie
	}{
		{"missing cookie", nil},
		{"empty cookie", &http.Cookie{Name: DefaultCookieName, Value: ""}},
		{"forged", &http.Cookie{Name: DefaultCookieName, Value: forged}},
		{"expired", &http.Cookie{Name: DefaultCookieName, Value: expired}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.cookie != nil {
				req.AddCookie(tt.cookie)
			}
			_, err := s.Lookup(req)
			assert.ErrorIs(t, err, ErrNoSession)
		})
	}
}

func TestStore_Decode_UnexpectedFailures(t *testing.T) {
	s := newStore(t)

	_, err := s.Decode("not-a-jwt")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNoSession)

	noSubject := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"user": map[string]any{}})
	raw, err := noSubject.SignedString([]byte(testSecret))
	require.NoError(t, err)

	_, err = s.Decode(raw)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNoSession)
}

func TestStore_Decode_SubjectFromUserClaims(t *testing.T) {
	s := newStore(t)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user": map[string]any{"sub": "bob", "name": "Bob"},
	})
	raw, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)

	sess, err := s.Decode(raw)
	require.NoError(t, err)
	assert.Equal(t, "bob", sess.Subject)
	assert.Equal(t, "Bob", sess.Name)
	assert.True(t, sess.ExpiresAt.IsZero())
}
