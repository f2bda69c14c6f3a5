package bff

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/goliatone/go-storefront/api"
	"github.com/goliatone/go-storefront/auth"
	"github.com/goliatone/go-storefront/session"
	"github.com/goliatone/go-storefront/storefront"
)

const (
	ctxSession    = "bff.session"
	ctxSessionErr = "bff.session_err"

	internalMessage = "Internal server error"
)

// withSession resolves the session cookie once per request.
func (s *Server) withSession(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if s.deps.Sessions == nil {
			c.Set(ctxSessionErr, session.ErrNoSession)
			return next(c)
		}
		sess, err := s.deps.Sessions.Lookup(c.Request())
		c.Set(ctxSession, sess)
		c.Set(ctxSessionErr, err)
		return next(c)
	}
}

func sessionOf(c echo.Context) (*session.Session, error) {
	sess, _ := c.Get(ctxSession).(*session.Session)
	err, _ := c.Get(ctxSessionErr).(error)
	return sess, err
}

// lookupFailed reports a session lookup error other than a missing session.
func lookupFailed(err error) bool {
	return err != nil && !errors.Is(err, session.ErrNoSession)
}

func viewerOf(c echo.Context) storefront.Viewer {
	sess, _ := sessionOf(c)
	return auth.ViewerOf(sess)
}

// profile returns the session claims untouched.
func (s *Server) profile(c echo.Context) error {
	sess, err := sessionOf(c)
	switch {
	case lookupFailed(err):
		s.log.WithError(err).Error("session lookup failed")
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": internalMessage})
	case err != nil, sess == nil:
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Not authenticated"})
	}
	return c.JSON(http.StatusOK, sess.Claims)
}

// sync forwards the session identity token to the backend login. Backend
// rejections pass through with their status and body; anything else is
// reported as a generic internal error.
func (s *Server) sync(c echo.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			s.log.WithField("panic", r).Error("login sync panicked")
			err = c.JSON(http.StatusInternalServerError, map[string]string{"message": internalMessage})
		}
	}()

	sess, lookupErr := sessionOf(c)
	if lookupFailed(lookupErr) {
		s.log.WithError(lookupErr).Error("session lookup failed")
		return c.JSON(http.StatusInternalServerError, map[string]string{"message": internalMessage})
	}
	if sess == nil || sess.IDToken == "" {
		return c.JSON(http.StatusUnauthorized, map[string]string{"message": "No identity token"})
	}
	if s.deps.Backend == nil {
		s.log.Error("login sync has no backend configured")
		return c.JSON(http.StatusInternalServerError, map[string]string{"message": internalMessage})
	}

	body, loginErr := s.deps.Backend.Login(c.Request().Context(), api.LoginRequest{IDToken: sess.IDToken})
	var reqErr *api.RequestError
	switch {
	case errors.As(loginErr, &reqErr):
		s.log.WithField("status", reqErr.Status).Info("backend rejected login sync")
		return c.Blob(reqErr.Status, echo.MIMEApplicationJSON, reqErr.Body)
	case loginErr != nil:
		s.log.WithError(loginErr).Error("login sync failed")
		return c.JSON(http.StatusInternalServerError, map[string]string{"message": internalMessage})
	}
	return c.Blob(http.StatusOK, echo.MIMEApplicationJSON, body)
}

// me returns the derived authorization view.
func (s *Server) me(c echo.Context) error {
	sess, err := sessionOf(c)
	if lookupFailed(err) {
		s.log.WithError(err).Error("session lookup failed")
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": internalMessage})
	}
	if s.deps.Auth == nil {
		return c.JSON(http.StatusOK, auth.Derive(auth.State{}, nil))
	}
	return c.JSON(http.StatusOK, s.deps.Auth.Evaluate(c.Request().Context(), sess, err))
}
