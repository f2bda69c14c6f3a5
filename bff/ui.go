package bff

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/goliatone/go-storefront/uistore"
)

const anonymousRecord = "anonymous"

// uiRecordName scopes the UI record to the signed-in subject.
func uiRecordName(c echo.Context) string {
	subject := viewerOf(c).Subject
	if subject == "" {
		subject = anonymousRecord
	}
	return uistore.DefaultName + ":" + subject
}

func (s *Server) uiState(c echo.Context) error {
	if s.records == nil {
		return c.JSON(http.StatusOK, uistore.State{})
	}
	state, err := s.records.State(c.Request().Context(), uiRecordName(c))
	if err != nil {
		return s.writeError(c, err)
	}
	return c.JSON(http.StatusOK, state)
}

func (s *Server) toggleSidebar(c echo.Context) error {
	if s.records == nil {
		return uiUnavailable(c)
	}
	state, err := s.records.ToggleSidebar(c.Request().Context(), uiRecordName(c))
	if err != nil {
		return s.writeError(c, err)
	}
	return c.JSON(http.StatusOK, state)
}

func (s *Server) setSidebar(c echo.Context) error {
	if s.records == nil {
		return uiUnavailable(c)
	}
	var req uistore.State
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	state, err := s.records.SetSidebarOpen(c.Request().Context(), uiRecordName(c), req.IsSidebarOpen)
	if err != nil {
		return s.writeError(c, err)
	}
	return c.JSON(http.StatusOK, state)
}

func uiUnavailable(c echo.Context) error {
	return c.JSON(http.StatusServiceUnavailable, map[string]string{"message": "UI storage is not configured"})
}
