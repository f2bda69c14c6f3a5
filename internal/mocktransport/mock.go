//go:build !production

package mocktransport

import (
	"net/http"
	"net/http/httptest"
	"sync"

	"github.com/labstack/echo/v4"
)

// Available reports whether this build carries the mock upstream.
const Available = true

// Server is an in-memory upstream API reached through RoundTrip, so the real
// API client runs unchanged against it.
type Server struct {
	e     *echo.Echo
	mu    sync.Mutex
	state *state
}

// New returns a Server seeded with demo data.
func New() *Server {
	s := &Server{e: echo.New(), state: seed()}
	s.e.HideBanner = true
	s.e.HidePort = true
	s.routes()
	return s
}

// Transport returns a fresh mock upstream.
func Transport() http.RoundTripper {
	return New()
}

// RoundTrip serves req in process.
func (s *Server) RoundTrip(req *http.Request) (*http.Response, error) {
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	resp := rec.Result()
	resp.Request = req
	return resp, nil
}

func (s *Server) routes() {
	g := s.e.Group("/api/v2")

	g.POST("/auth/login", s.login)
	g.GET("/members/me", s.me)

	g.GET("/products", s.listProducts)
	g.GET("/products/:id", s.getProduct)
	g.GET("/fundings", s.listFundings)
	g.GET("/fundings/:id", s.getFunding)

	g.GET("/cart", s.getCart)
	g.POST("/cart/items", s.addCartItem)
	g.PATCH("/cart/items/:id", s.selectCartItem)
	g.DELETE("/cart/items/:id", s.removeCartItem)

	g.GET("/wallet", s.getWallet)
	g.GET("/wallet/transactions", s.listTransactions)
	g.POST("/wallet/charge", s.charge)
	g.POST("/payments", s.pay)

	g.GET("/wishlist", s.listWishlist)
	g.POST("/wishlist", s.addWishlist)
	g.DELETE("/wishlist/:productId", s.removeWishlist)

	g.GET("/notifications", s.listNotifications)
	g.PATCH("/notifications/:id/read", s.readNotification)

	g.GET("/orders", s.listOrders)
}

func message(c echo.Context, status int, msg string) error {
	return c.JSON(status, map[string]string{"message": msg})
}
