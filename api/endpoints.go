package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
)

// Login forwards the identity token to the backend login endpoint. The
// success body is returned untouched; a rejection comes back as a
// *RequestError carrying the backend status and body.
func (c *Client) Login(ctx context.Context, req LoginRequest) (json.RawMessage, error) {
	const op = "login"
	if err := req.Validate(); err != nil {
		return nil, invalid(op, err)
	}
	body, err := c.do(ctx, op, http.MethodPost, "/api/v2/auth/login", withBody(req))
	if err != nil {
		return nil, err
	}
	return json.RawMessage(body), nil
}

// Me returns the backend member record for the bearer identity.
func (c *Client) Me(ctx context.Context) (Member, error) {
	return call[Member](ctx, c, "me", http.MethodGet, "/api/v2/members/me")
}

func (c *Client) ListProducts(ctx context.Context, f ProductFilter) (Page[Product], error) {
	f = f.Normalize()
	return call[Page[Product]](ctx, c, "list_products", http.MethodGet, "/api/v2/products",
		withQuery(map[string]string{
			"category": f.Category,
			"sort":     f.Sort,
			"page":     strconv.Itoa(f.Page),
			"size":     strconv.Itoa(f.Size),
		}))
}

func (c *Client) GetProduct(ctx context.Context, id string) (Product, error) {
	return call[Product](ctx, c, "get_product", http.MethodGet, "/api/v2/products/{id}", withPath("id", id))
}

func (c *Client) ListFundings(ctx context.Context, f FundingFilter) (Page[Funding], error) {
	f = f.Normalize()
	return call[Page[Funding]](ctx, c, "list_fundings", http.MethodGet, "/api/v2/fundings",
		withQuery(map[string]string{
			"status": f.Status,
			"page":   strconv.Itoa(f.Page),
			"size":   strconv.Itoa(f.Size),
		}))
}

func (c *Client) GetFunding(ctx context.Context, id string) (Funding, error) {
	return call[Funding](ctx, c, "get_funding", http.MethodGet, "/api/v2/fundings/{id}", withPath("id", id))
}

func (c *Client) GetCart(ctx context.Context) (Cart, error) {
	return call[Cart](ctx, c, "get_cart", http.MethodGet, "/api/v2/cart")
}

func (c *Client) AddCartItem(ctx context.Context, req AddCartItemRequest) (CartItem, error) {
	const op = "add_cart_item"
	if err := req.Validate(); err != nil {
		return CartItem{}, invalid(op, err)
	}
	return call[CartItem](ctx, c, op, http.MethodPost, "/api/v2/cart/items", withBody(req))
}

func (c *Client) SelectCartItem(ctx context.Context, id string, req SelectCartItemRequest) (CartItem, error) {
	return call[CartItem](ctx, c, "select_cart_item", http.MethodPatch, "/api/v2/cart/items/{id}",
		withPath("id", id), withBody(req))
}

func (c *Client) RemoveCartItem(ctx context.Context, id string) error {
	_, err := c.do(ctx, "remove_cart_item", http.MethodDelete, "/api/v2/cart/items/{id}", withPath("id", id))
	return err
}

func (c *Client) GetWallet(ctx context.Context) (Wallet, error) {
	return call[Wallet](ctx, c, "get_wallet", http.MethodGet, "/api/v2/wallet")
}

func (c *Client) ListWalletHistory(ctx context.Context, p PageParams) (Page[WalletTransaction], error) {
	return call[Page[WalletTransaction]](ctx, c, "list_wallet_history", http.MethodGet, "/api/v2/wallet/transactions",
		withQuery(p.query()))
}

// ChargeWallet tops up the wallet. Each call carries a fresh Idempotency-Key.
func (c *Client) ChargeWallet(ctx context.Context, req ChargeRequest) (ChargeResponse, error) {
	const op = "charge_wallet"
	if err := req.Validate(); err != nil {
		return ChargeResponse{}, invalid(op, err)
	}
	return call[ChargeResponse](ctx, c, op, http.MethodPost, "/api/v2/wallet/charge",
		withBody(req), withIdempotencyKey())
}

// Pay settles the given cart items from the wallet. Each call carries a fresh
// Idempotency-Key.
func (c *Client) Pay(ctx context.Context, req PaymentRequest) (PaymentResponse, error) {
	const op = "pay"
	if err := req.Validate(); err != nil {
		return PaymentResponse{}, invalid(op, err)
	}
	return call[PaymentResponse](ctx, c, op, http.MethodPost, "/api/v2/payments",
		withBody(req), withIdempotencyKey())
}

func (c *Client) ListWishlist(ctx context.Context, p PageParams) (Page[WishlistItem], error) {
	return call[Page[WishlistItem]](ctx, c, "list_wishlist", http.MethodGet, "/api/v2/wishlist",
		withQuery(p.query()))
}

func (c *Client) AddWishlist(ctx context.Context, req AddWishlistRequest) (WishlistItem, error) {
	const op = "add_wishlist"
	if err := req.Validate(); err != nil {
		return WishlistItem{}, invalid(op, err)
	}
	return call[WishlistItem](ctx, c, op, http.MethodPost, "/api/v2/wishlist", withBody(req))
}

func (c *Client) RemoveWishlist(ctx context.Context, productID string) error {
	_, err := c.do(ctx, "remove_wishlist", http.MethodDelete, "/api/v2/wishlist/{productId}",
		withPath("productId", productID))
	return err
}

func (c *Client) ListNotifications(ctx context.Context, p PageParams) (Page[Notification], error) {
	return call[Page[Notification]](ctx, c, "list_notifications", http.MethodGet, "/api/v2/notifications",
		withQuery(p.query()))
}

func (c *Client) MarkNotificationRead(ctx context.Context, id string) (Notification, error) {
	return call[Notification](ctx, c, "mark_notification_read", http.MethodPatch, "/api/v2/notifications/{id}/read",
		withPath("id", id))
}

func (c *Client) ListOrders(ctx context.Context, p PageParams) (Page[Order], error) {
	return call[Page[Order]](ctx, c, "list_orders", http.MethodGet, "/api/v2/orders",
		withQuery(p.query()))
}
