package bff

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/goliatone/go-storefront/api"
	"github.com/goliatone/go-storefront/auth"
	"github.com/goliatone/go-storefront/storefront"
)

type bootstrapResponse struct {
	Auth auth.View `json:"auth"`
	storefront.Snapshot
}

// bootstrap waits for every bootstrap prefetch to settle, then returns the
// dehydrated entries. Failed prefetches show up as error entries.
func (s *Server) bootstrap(c echo.Context) error {
	ctx := c.Request().Context()
	sess, err := sessionOf(c)

	snap := s.deps.Storefront.Bootstrap(ctx, auth.ViewerOf(sess))
	resp := bootstrapResponse{Snapshot: snap}
	if s.deps.Auth != nil {
		resp.Auth = s.deps.Auth.Evaluate(ctx, sess, err)
	}
	return c.JSON(http.StatusOK, resp)
}

func (s *Server) products(c echo.Context) error {
	var f api.ProductFilter
	err := echo.QueryParamsBinder(c).
		String("category", &f.Category).
		String("sort", &f.Sort).
		Int("page", &f.Page).
		Int("size", &f.Size).
		BindError()
	if err != nil {
		return badRequest(c, "invalid query parameters")
	}
	return writeResult(s, c, s.deps.Storefront.Products(c.Request().Context(), f))
}

func (s *Server) product(c echo.Context) error {
	return writeResult(s, c, s.deps.Storefront.Product(c.Request().Context(), c.Param("id")))
}

func (s *Server) fundings(c echo.Context) error {
	var f api.FundingFilter
	err := echo.QueryParamsBinder(c).
		String("status", &f.Status).
		Int("page", &f.Page).
		Int("size", &f.Size).
		BindError()
	if err != nil {
		return badRequest(c, "invalid query parameters")
	}
	return writeResult(s, c, s.deps.Storefront.Fundings(c.Request().Context(), f))
}

func (s *Server) funding(c echo.Context) error {
	return writeResult(s, c, s.deps.Storefront.Funding(c.Request().Context(), c.Param("id")))
}

func (s *Server) cart(c echo.Context) error {
	return writeResult(s, c, s.deps.Storefront.Cart(c.Request().Context(), viewerOf(c)))
}

func (s *Server) addCartItem(c echo.Context) error {
	var req api.AddCartItemRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	item, err := s.deps.Storefront.AddCartItem(c.Request().Context(), viewerOf(c), req)
	if err != nil {
		return s.writeError(c, err)
	}
	return c.JSON(http.StatusCreated, item)
}

func (s *Server) selectCartItem(c echo.Context) error {
	var req api.SelectCartItemRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	item, err := s.deps.Storefront.SelectCartItem(c.Request().Context(), viewerOf(c), c.Param("id"), req.Selected)
	if err != nil {
		return s.writeError(c, err)
	}
	return c.JSON(http.StatusOK, item)
}

func (s *Server) removeCartItem(c echo.Context) error {
	if err := s.deps.Storefront.RemoveCartItem(c.Request().Context(), viewerOf(c), c.Param("id")); err != nil {
		return s.writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) wallet(c echo.Context) error {
	return writeResult(s, c, s.deps.Storefront.Wallet(c.Request().Context(), viewerOf(c)))
}

func (s *Server) walletHistory(c echo.Context) error {
	p, err := pageParams(c)
	if err != nil {
		return badRequest(c, "invalid paging parameters")
	}
	return writeResult(s, c, s.deps.Storefront.WalletHistory(c.Request().Context(), viewerOf(c), p))
}

func (s *Server) charge(c echo.Context) error {
	var req api.ChargeRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	res, err := s.deps.Storefront.ChargeWallet(c.Request().Context(), viewerOf(c), req)
	if err != nil {
		return s.writeError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

func (s *Server) pay(c echo.Context) error {
	var req api.PaymentRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	res, err := s.deps.Storefront.Pay(c.Request().Context(), viewerOf(c), req)
	if err != nil {
		return s.writeError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

func (s *Server) wishlist(c echo.Context) error {
	p, err := pageParams(c)
	if err != nil {
		return badRequest(c, "invalid paging parameters")
	}
	return writeResult(s, c, s.deps.Storefront.Wishlist(c.Request().Context(), viewerOf(c), p))
}

func (s *Server) addWishlist(c echo.Context) error {
	var req api.AddWishlistRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	item, err := s.deps.Storefront.AddWishlist(c.Request().Context(), viewerOf(c), req.ProductID)
	if err != nil {
		return s.writeError(c, err)
	}
	return c.JSON(http.StatusCreated, item)
}

func (s *Server) removeWishlist(c echo.Context) error {
	if err := s.deps.Storefront.RemoveWishlist(c.Request().Context(), viewerOf(c), c.Param("productId")); err != nil {
		return s.writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) notifications(c echo.Context) error {
	p, err := pageParams(c)
	if err != nil {
		return badRequest(c, "invalid paging parameters")
	}
	return writeResult(s, c, s.deps.Storefront.Notifications(c.Request().Context(), viewerOf(c), p))
}

func (s *Server) readNotification(c echo.Context) error {
	n, err := s.deps.Storefront.MarkNotificationRead(c.Request().Context(), viewerOf(c), c.Param("id"))
	if err != nil {
		return s.writeError(c, err)
	}
	return c.JSON(http.StatusOK, n)
}

func (s *Server) orders(c echo.Context) error {
	p, err := pageParams(c)
	if err != nil {
		return badRequest(c, "invalid paging parameters")
	}
	return writeResult(s, c, s.deps.Storefront.Orders(c.Request().Context(), viewerOf(c), p))
}
