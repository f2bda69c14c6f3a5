package storefront

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/goliatone/go-storefront/api"
	"github.com/goliatone/go-storefront/query"
)

// Pay settles cart items from the wallet. On success it invalidates the
// wallet balance and history, the cart, the orders and every funding
// referenced by a selected or paid item of the cart as last read. When the
// cart was never read, or changed since its last read, every funding entry
// is invalidated.
func (s *Service) Pay(ctx context.Context, v Viewer, req api.PaymentRequest) (api.PaymentResponse, error) {
	if !v.Signed() {
		return api.PaymentResponse{}, ErrNoViewer
	}
	m := query.Mutation[api.PaymentRequest, api.PaymentResponse]{
		Name: "pay",
		Fn: func(ctx context.Context, in api.PaymentRequest) (api.PaymentResponse, error) {
			return s.upstream.Pay(v.context(ctx), in)
		},
		Invalidates: func(_ context.Context, in api.PaymentRequest, _ api.PaymentResponse) []string {
			return s.payInvalidations(v, in)
		},
	}
	return m.Run(ctx, s.queries, req)
}

func (s *Service) payInvalidations(v Viewer, req api.PaymentRequest) []string {
	cartKey := s.keys.Cart(v.Subject)
	prefixes := []string{
		s.keys.WalletBalance(v.Subject),
		s.keys.WalletHistoryAll(v.Subject),
		cartKey,
		s.keys.OrdersAll(v.Subject),
	}

	// The pre-payment entry is read before the cart key above is invalidated.
	cart, ok := query.Snapshot[api.Cart](s.queries, cartKey)
	if !ok || s.queries.Entry(cartKey).Stale {
		s.log.WithFields(logrus.Fields{"subject": v.Subject, "snapshot": ok}).
			Debug("cart snapshot missing or stale, invalidating all fundings")
		return append(prefixes, s.keys.FundingAll())
	}

	seen := make(map[string]struct{})
	for _, id := range append(cart.SelectedFundingIDs(), cart.FundingIDsFor(req.CartItemIDs)...) {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		prefixes = append(prefixes, s.keys.Funding(id))
	}
	return prefixes
}

// ChargeWallet tops up the wallet and invalidates its balance and history.
func (s *Service) ChargeWallet(ctx context.Context, v Viewer, req api.ChargeRequest) (api.ChargeResponse, error) {
	if !v.Signed() {
		return api.ChargeResponse{}, ErrNoViewer
	}
	m := query.Mutation[api.ChargeRequest, api.ChargeResponse]{
		Name: "charge_wallet",
		Fn: func(ctx context.Context, in api.ChargeRequest) (api.ChargeResponse, error) {
			return s.upstream.ChargeWallet(v.context(ctx), in)
		},
		Invalidates: func(context.Context, api.ChargeRequest, api.ChargeResponse) []string {
			return []string{s.keys.WalletBalance(v.Subject), s.keys.WalletHistoryAll(v.Subject)}
		},
	}
	return m.Run(ctx, s.queries, req)
}

func (s *Service) cartInvalidation(v Viewer) []string {
	return []string{s.keys.Cart(v.Subject)}
}

func (s *Service) AddCartItem(ctx context.Context, v Viewer, req api.AddCartItemRequest) (api.CartItem, error) {
	if !v.Signed() {
		return api.CartItem{}, ErrNoViewer
	}
	m := query.Mutation[api.AddCartItemRequest, api.CartItem]{
		Name: "add_cart_item",
		Fn: func(ctx context.Context, in api.AddCartItemRequest) (api.CartItem, error) {
			return s.upstream.AddCartItem(v.context(ctx), in)
		},
		Invalidates: func(context.Context, api.AddCartItemRequest, api.CartItem) []string {
			return s.cartInvalidation(v)
		},
	}
	return m.Run(ctx, s.queries, req)
}

// SelectCartItem toggles whether a cart item takes part in the next payment.
func (s *Service) SelectCartItem(ctx context.Context, v Viewer, id string, selected bool) (api.CartItem, error) {
	if !v.Signed() {
		return api.CartItem{}, ErrNoViewer
	}
	m := query.Mutation[api.SelectCartItemRequest, api.CartItem]{
		Name: "select_cart_item",
		Fn: func(ctx context.Context, in api.SelectCartItemRequest) (api.CartItem, error) {
			return s.upstream.SelectCartItem(v.context(ctx), id, in)
		},
		Invalidates: func(context.Context, api.SelectCartItemRequest, api.CartItem) []string {
			return s.cartInvalidation(v)
		},
	}
	return m.Run(ctx, s.queries, api.SelectCartItemRequest{Selected: selected})
}

func (s *Service) RemoveCartItem(ctx context.Context, v Viewer, id string) error {
	if !v.Signed() {
		return ErrNoViewer
	}
	m := query.Mutation[string, struct{}]{
		Name: "remove_cart_item",
		Fn: func(ctx context.Context, in string) (struct{}, error) {
			return struct{}{}, s.upstream.RemoveCartItem(v.context(ctx), in)
		},
		Invalidates: func(context.Context, string, struct{}) []string {
			return s.cartInvalidation(v)
		},
	}
	_, err := m.Run(ctx, s.queries, id)
	return err
}

func (s *Service) wishlistInvalidation(v Viewer, productID string) []string {
	return []string{s.keys.WishlistAll(v.Subject), s.keys.Product(productID)}
}

func (s *Service) AddWishlist(ctx context.Context, v Viewer, productID string) (api.WishlistItem, error) {
	if !v.Signed() {
		return api.WishlistItem{}, ErrNoViewer
	}
	m := query.Mutation[api.AddWishlistRequest, api.WishlistItem]{
		Name: "add_wishlist",
		Fn: func(ctx context.Context, in api.AddWishlistRequest) (api.WishlistItem, error) {
			return s.upstream.AddWishlist(v.context(ctx), in)
		},
		Invalidates: func(_ context.Context, in api.AddWishlistRequest, _ api.WishlistItem) []string {
			return s.wishlistInvalidation(v, in.ProductID)
		},
	}
	return m.Run(ctx, s.queries, api.AddWishlistRequest{ProductID: productID})
}

func (s *Service) RemoveWishlist(ctx context.Context, v Viewer, productID string) error {
	if !v.Signed() {
		return ErrNoViewer
	}
	m := query.Mutation[string, struct{}]{
		Name: "remove_wishlist",
		Fn: func(ctx context.Context, in string) (struct{}, error) {
			return struct{}{}, s.upstream.RemoveWishlist(v.context(ctx), in)
		},
		Invalidates: func(_ context.Context, in string, _ struct{}) []string {
			return s.wishlistInvalidation(v, in)
		},
	}
	_, err := m.Run(ctx, s.queries, productID)
	return err
}

func (s *Service) MarkNotificationRead(ctx context.Context, v Viewer, id string) (api.Notification, error) {
	if !v.Signed() {
		return api.Notification{}, ErrNoViewer
	}
	m := query.Mutation[string, api.Notification]{
		Name: "mark_notification_read",
		Fn: func(ctx context.Context, in string) (api.Notification, error) {
			return s.upstream.MarkNotificationRead(v.context(ctx), in)
		},
		Invalidates: func(context.Context, string, api.Notification) []string {
			return []string{s.keys.NotificationsAll(v.Subject)}
		},
	}
	return m.Run(ctx, s.queries, id)
}
