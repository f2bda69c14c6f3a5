package bff

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"

	"github.com/goliatone/go-storefront/api"
	"github.com/goliatone/go-storefront/auth"
	"github.com/goliatone/go-storefront/internal/metrics"
	"github.com/goliatone/go-storefront/session"
	"github.com/goliatone/go-storefront/storefront"
	"github.com/goliatone/go-storefront/uistore"
)

// LoginForwarder forwards an identity token to the backend login endpoint.
type LoginForwarder interface {
	Login(ctx context.Context, req api.LoginRequest) (json.RawMessage, error)
}

// Deps are the collaborators the routes are built on. Metrics and Log are
// optional.
type Deps struct {
	Sessions   *session.Store
	Backend    LoginForwarder
	Storefront *storefront.Service
	Auth       *auth.Hook
	UIStorage  uistore.Storage
	Metrics    *metrics.Collector
	Log        logrus.FieldLogger
}

// Server is the backend-for-frontend HTTP surface.
type Server struct {
	e       *echo.Echo
	deps    Deps
	log     logrus.FieldLogger
	records *uistore.Records
}

// New builds the router for deps.
func New(deps Deps) *Server {
	log := deps.Log
	if log == nil {
		log = logrus.StandardLogger()
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	s := &Server{e: e, deps: deps, log: log}
	if deps.UIStorage != nil {
		s.records = uistore.NewRecords(deps.UIStorage)
	}
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{Generator: uuid.NewString}))
	e.Use(s.requestLogger())
	e.Use(middleware.Recover())
	e.Use(s.withSession)

	s.routes()
	return s
}

// Echo exposes the router, e.g. for Start and Shutdown.
func (s *Server) Echo() *echo.Echo { return s.e }

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.e.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.e.GET("/health", s.health)
	if s.deps.Metrics != nil {
		s.e.GET("/metrics", echo.WrapHandler(s.deps.Metrics.Handler()))
	}

	a := s.e.Group("/api/auth")
	a.GET("/profile", s.profile)
	a.POST("/sync", s.sync)
	a.GET("/me", s.me)

	sf := s.e.Group("/api/storefront")
	sf.GET("/bootstrap", s.bootstrap)
	sf.GET("/products", s.products)
	sf.GET("/products/:id", s.product)
	sf.GET("/fundings", s.fundings)
	sf.GET("/fundings/:id", s.funding)

	sf.GET("/cart", s.cart)
	sf.POST("/cart/items", s.addCartItem)
	sf.PATCH("/cart/items/:id", s.selectCartItem)
	sf.DELETE("/cart/items/:id", s.removeCartItem)

	sf.GET("/wallet", s.wallet)
	sf.GET("/wallet/transactions", s.walletHistory)
	sf.POST("/wallet/charge", s.charge)
	sf.POST("/payments", s.pay)

	sf.GET("/wishlist", s.wishlist)
	sf.POST("/wishlist", s.addWishlist)
	sf.DELETE("/wishlist/:productId", s.removeWishlist)

	sf.GET("/notifications", s.notifications)
	sf.PATCH("/notifications/:id/read", s.readNotification)
	sf.GET("/orders", s.orders)

	ui := s.e.Group("/api/ui")
	ui.GET("/state", s.uiState)
	ui.POST("/sidebar/toggle", s.toggleSidebar)
	ui.PUT("/sidebar", s.setSidebar)
}

func (s *Server) requestLogger() echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:    true,
		LogURI:       true,
		LogError:     true,
		LogMethod:    true,
		LogLatency:   true,
		LogRequestID: true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			if s.deps.Metrics != nil {
				path := c.Path()
				if path == "" {
					path = "unmatched"
				}
				s.deps.Metrics.ObserveHTTP(v.Method, path, v.Status, v.Latency)
			}
			if c.Request().URL.Path == "/health" {
				return nil
			}

			entry := s.log.WithFields(logrus.Fields{
				"method":     v.Method,
				"uri":        v.URI,
				"status":     v.Status,
				"latency_ms": v.Latency.Milliseconds(),
				"request_id": v.RequestID,
			})
			if v.Error != nil {
				entry.WithError(v.Error).Warn("request failed")
				return nil
			}
			entry.Info("request completed")
			return nil
		},
	})
}

func (s *Server) health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
