package bff

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/goliatone/go-storefront/api"
	"github.com/goliatone/go-storefront/query"
	"github.com/goliatone/go-storefront/storefront"
)

// Response headers describing the cache entry behind a read.
const (
	HeaderQueryStatus = "X-Query-Status"
	HeaderQueryStale  = "X-Query-Stale"
)

func writeResult[T any](s *Server, c echo.Context, res query.Result[T]) error {
	h := c.Response().Header()
	h.Set(HeaderQueryStatus, string(res.Status))
	h.Set(HeaderQueryStale, strconv.FormatBool(res.Stale))

	if res.Err != nil {
		return s.writeError(c, res.Err)
	}
	if res.Status == query.StatusIdle {
		return c.JSON(http.StatusUnauthorized, map[string]string{"message": "Not authenticated"})
	}
	return c.JSON(http.StatusOK, res.Data)
}

// writeError maps the error taxonomy onto a response. Upstream rejections
// keep their status and body.
func (s *Server) writeError(c echo.Context, err error) error {
	var (
		reqErr *api.RequestError
		netErr *api.NetworkError
	)
	switch {
	case errors.Is(err, storefront.ErrNoViewer):
		return c.JSON(http.StatusUnauthorized, map[string]string{"message": "Not authenticated"})
	case errors.Is(err, api.ErrInvalidRequest):
		return c.JSON(http.StatusBadRequest, map[string]string{"message": err.Error()})
	case errors.As(err, &reqErr):
		if len(reqErr.Body) == 0 {
			return c.JSON(reqErr.Status, map[string]string{"message": reqErr.Message})
		}
		return c.Blob(reqErr.Status, echo.MIMEApplicationJSON, reqErr.Body)
	case errors.As(err, &netErr):
		s.log.WithError(err).Warn("upstream unreachable")
		return c.JSON(http.StatusBadGateway, map[string]string{"message": "Upstream unavailable"})
	}
	s.log.WithError(err).Error("request failed")
	return c.JSON(http.StatusInternalServerError, map[string]string{"message": internalMessage})
}

func badRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, map[string]string{"message": msg})
}

func pageParams(c echo.Context) (api.PageParams, error) {
	var p api.PageParams
	err := echo.QueryParamsBinder(c).
		Int("page", &p.Page).
		Int("size", &p.Size).
		BindError()
	return p, err
}
