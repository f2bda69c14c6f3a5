//go:build !production

package mocktransport

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/goliatone/go-storefront/api"
)

func pageParams(c echo.Context) api.PageParams {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	size, _ := strconv.Atoi(c.QueryParam("size"))
	return api.PageParams{Page: page, Size: size}
}

func authorized(c echo.Context) bool {
	return strings.HasPrefix(c.Request().Header.Get(echo.HeaderAuthorization), "Bearer ")
}

func (s *Server) login(c echo.Context) error {
	var req api.LoginRequest
	if err := c.Bind(&req); err != nil || req.IDToken == "" {
		return message(c, http.StatusBadRequest, "idToken is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return c.JSON(http.StatusOK, map[string]any{"member": s.state.member, "isNew": false})
}

func (s *Server) me(c echo.Context) error {
	if !authorized(c) {
		return message(c, http.StatusUnauthorized, "missing bearer token")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return c.JSON(http.StatusOK, s.state.member)
}

func (s *Server) listProducts(c echo.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	category := c.QueryParam("category")
	var items []api.Product
	for _, p := range s.state.products {
		if category == "" || p.Category == category {
			items = append(items, s.state.decorate(p))
		}
	}
	return c.JSON(http.StatusOK, paginate(items, pageParams(c)))
}

func (s *Server) getProduct(c echo.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.state.product(c.Param("id"))
	if !ok {
		return message(c, http.StatusNotFound, "product not found")
	}
	return c.JSON(http.StatusOK, s.state.decorate(p))
}

func (s *Server) listFundings(c echo.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	status := c.QueryParam("status")
	var items []api.Funding
	for _, f := range s.state.fundings {
		if status == "" || f.Status == status {
			items = append(items, f)
		}
	}
	return c.JSON(http.StatusOK, paginate(items, pageParams(c)))
}

func (s *Server) getFunding(c echo.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.state.fundingIndex(c.Param("id"))
	if i < 0 {
		return message(c, http.StatusNotFound, "funding not found")
	}
	return c.JSON(http.StatusOK, s.state.fundings[i])
}

func (s *Server) getCart(c echo.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return c.JSON(http.StatusOK, api.Cart{Items: append([]api.CartItem{}, s.state.cart...)})
}

func (s *Server) addCartItem(c echo.Context) error {
	var req api.AddCartItemRequest
	if err := c.Bind(&req); err != nil {
		return message(c, http.StatusBadRequest, "invalid body")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.state.fundingIndex(req.FundingID)
	if i < 0 {
		return message(c, http.StatusNotFound, "funding not found")
	}
	if s.state.fundings[i].Status != api.FundingStatusOpen {
		return message(c, http.StatusConflict, "funding is closed")
	}
	item := api.CartItem{ID: s.state.nextID("c"), FundingID: req.FundingID, Amount: req.Amount, Selected: true}
	s.state.cart = append(s.state.cart, item)
	return c.JSON(http.StatusCreated, item)
}

func (s *Server) selectCartItem(c echo.Context) error {
	var req api.SelectCartItemRequest
	if err := c.Bind(&req); err != nil {
		return message(c, http.StatusBadRequest, "invalid body")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.state.cartIndex(c.Param("id"))
	if i < 0 {
		return message(c, http.StatusNotFound, "cart item not found")
	}
	s.state.cart[i].Selected = req.Selected
	return c.JSON(http.StatusOK, s.state.cart[i])
}

func (s *Server) removeCartItem(c echo.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.state.cartIndex(c.Param("id"))
	if i < 0 {
		return message(c, http.StatusNotFound, "cart item not found")
	}
	s.state.cart = append(s.state.cart[:i], s.state.cart[i+1:]...)
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) getWallet(c echo.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return c.JSON(http.StatusOK, s.state.wallet)
}

func (s *Server) listTransactions(c echo.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return c.JSON(http.StatusOK, paginate(s.state.transactions, pageParams(c)))
}

func (s *Server) charge(c echo.Context) error {
	var req api.ChargeRequest
	if err := c.Bind(&req); err != nil || req.Amount <= 0 {
		return message(c, http.StatusBadRequest, "amount must be positive")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	s.state.wallet.Balance += req.Amount
	s.state.wallet.UpdatedAt = now
	tx := api.WalletTransaction{
		ID: s.state.nextID("t"), Type: api.TransactionCharge, Amount: req.Amount,
		BalanceAfter: s.state.wallet.Balance, Description: "Charge", CreatedAt: now,
	}
	s.state.transactions = append([]api.WalletTransaction{tx}, s.state.transactions...)
	return c.JSON(http.StatusOK, api.ChargeResponse{Wallet: s.state.wallet, Transaction: tx})
}

func (s *Server) pay(c echo.Context) error {
	var req api.PaymentRequest
	if err := c.Bind(&req); err != nil || len(req.CartItemIDs) == 0 {
		return message(c, http.StatusBadRequest, "cartItemIds is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	order, err := s.state.pay(req.CartItemIDs, time.Now().UTC())
	switch {
	case errors.Is(err, errInsufficient):
		return message(c, http.StatusPaymentRequired, err.Error())
	case err != nil:
		return message(c, http.StatusNotFound, err.Error())
	}
	return c.JSON(http.StatusOK, api.PaymentResponse{OrderID: order.ID, Paid: order.Amount, Balance: s.state.wallet.Balance})
}

func (s *Server) listWishlist(c echo.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return c.JSON(http.StatusOK, paginate(s.state.wishlist, pageParams(c)))
}

func (s *Server) addWishlist(c echo.Context) error {
	var req api.AddWishlistRequest
	if err := c.Bind(&req); err != nil {
		return message(c, http.StatusBadRequest, "invalid body")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.state.product(req.ProductID)
	if !ok {
		return message(c, http.StatusNotFound, "product not found")
	}
	if s.state.wished(p.ID) {
		return message(c, http.StatusConflict, "already in wishlist")
	}
	p.Wished = true
	item := api.WishlistItem{ProductID: p.ID, Product: p, AddedAt: time.Now().UTC()}
	s.state.wishlist = append([]api.WishlistItem{item}, s.state.wishlist...)
	return c.JSON(http.StatusCreated, item)
}

func (s *Server) removeWishlist(c echo.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := c.Param("productId")
	for i, w := range s.state.wishlist {
		if w.ProductID == id {
			s.state.wishlist = append(s.state.wishlist[:i], s.state.wishlist[i+1:]...)
			return c.NoContent(http.StatusNoContent)
		}
	}
	return message(c, http.StatusNotFound, "not in wishlist")
}

func (s *Server) listNotifications(c echo.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return c.JSON(http.StatusOK, paginate(s.state.notifications, pageParams(c)))
}

func (s *Server) readNotification(c echo.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.state.notifications {
		if s.state.notifications[i].ID == c.Param("id") {
			s.state.notifications[i].Read = true
			return c.JSON(http.StatusOK, s.state.notifications[i])
		}
	}
	return message(c, http.StatusNotFound, "notification not found")
}

func (s *Server) listOrders(c echo.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return c.JSON(http.StatusOK, paginate(s.state.orders, pageParams(c)))
}
