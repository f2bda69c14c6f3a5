package session

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultCookieName is the cookie carrying the identity provider session.
const DefaultCookieName = "appSession"

// ErrNoSession means the request carries no usable session. It is an
// expected outcome, not a failure.
var ErrNoSession = errors.New("session: no session")

// Config holds session cookie configuration.
type Config struct {
	Secret     string
	CookieName string
	Issuer     string
	TTL        time.Duration
}

// Session is the identity provider record as seen by this layer.
type Session struct {
	Subject   string
	Name      string
	IDToken   string
	Claims    map[string]any
	ExpiresAt time.Time
}

type sessionClaims struct {
	User    map[string]any `json:"user"`
	IDToken string         `json:"idToken,omitempty"`
	jwt.RegisteredClaims
}

// Store reads and writes HS256 signed session cookies.
type Store struct {
	cfg Config
}

// NewStore validates cfg and returns a Store.
func NewStore(cfg Config) (*Store, error) {
	if cfg.Secret == "" {
		return nil, errors.New("session: secret is required")
	}
	if cfg.CookieName == "" {
		cfg.CookieName = DefaultCookieName
	}
	if cfg.TTL <= 0 {
		cfg.TTL = 24 * time.Hour
	}
	return &Store{cfg: cfg}, nil
}

// CookieName returns the configured cookie name.
func (s *Store) CookieName() string { return s.cfg.CookieName }

// Lookup returns the session attached to r. A missing cookie, or one that is
// expired or carries a bad signature, yields ErrNoSession. A value that is not
// a token at all, or lacks a subject, is a decode error.
func (s *Store) Lookup(r *http.Request) (*Session, error) {
	cookie, err := r.Cookie(s.cfg.CookieName)
	if err != nil || cookie.Value == "" {
		return nil, ErrNoSession
	}
	return s.Decode(cookie.Value)
}

// Decode parses a session token.
func (s *Store) Decode(raw string) (*Session, error) {
	var claims sessionClaims
	_, err := jwt.ParseWithClaims(raw, &claims, func(token *jwt.Token) (any, error) {
		return []byte(s.cfg.Secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired),
			errors.Is(err, jwt.ErrTokenSignatureInvalid),
			errors.Is(err, jwt.ErrTokenNotValidYet):
			return nil, fmt.Errorf("%w: %v", ErrNoSession, err)
		}
		return nil, fmt.Errorf("session: decode: %w", err)
	}

	user := claims.User
	if user == nil {
		user = make(map[string]any)
	}

	subject := claims.Subject
	if subject == "" {
		subject, _ = user["sub"].(string)
	}
	if subject == "" {
		return nil, errors.New("session: token has no subject")
	}
	if _, ok := user["sub"]; !ok {
		user["sub"] = subject
	}

	name, _ := user["name"].(string)
	sess := &Session{
		Subject: subject,
		Name:    name,
		IDToken: claims.IDToken,
		Claims:  user,
	}
	if claims.ExpiresAt != nil {
		sess.ExpiresAt = claims.ExpiresAt.Time
	}
	return sess, nil
}

// Encode signs sess into a cookie value.
func (s *Store) Encode(sess Session) (string, error) {
	now := time.Now()
	expires := sess.ExpiresAt
	if expires.IsZero() {
		expires = now.Add(s.cfg.TTL)
	}

	user := make(map[string]any, len(sess.Claims)+2)
	for k, v := range sess.Claims {
		user[k] = v
	}
	user["sub"] = sess.Subject
	if sess.Name != "" {
		user["name"] = sess.Name
	}

	claims := sessionClaims{
		User:    user,
		IDToken: sess.IDToken,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.cfg.Issuer,
			Subject:   sess.Subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.Secret))
}

// Cookie returns sess as an HTTP cookie.
func (s *Store) Cookie(sess Session) (*http.Cookie, error) {
	value, err := s.Encode(sess)
	if err != nil {
		return nil, err
	}
	return &http.Cookie{
		Name:     s.cfg.CookieName,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}, nil
}
