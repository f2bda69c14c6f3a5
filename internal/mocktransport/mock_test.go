//go:build !production

package mocktransport

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-storefront/api"
)

func newClient(t *testing.T) *api.Client {
	t.Helper()
	return api.NewClient(api.Config{Transport: New()}, nil)
}

func authed() context.Context {
	return api.WithIDToken(context.Background(), "dev-token")
}

func TestMock_Catalog(t *testing.T) {
	c := newClient(t)
	ctx := context.Background()

	page, err := c.ListProducts(ctx, api.ProductFilter{Category: "kitchen"})
	require.NoError(t, err)
	assert.Equal(t, 2, page.Total)
	for _, p := range page.Items {
		assert.Equal(t, "kitchen", p.Category)
	}

	_, err = c.GetProduct(ctx, "missing")
	assert.Equal(t, 404, api.StatusOf(err))

	open, err := c.ListFundings(ctx, api.FundingFilter{Status: api.FundingStatusOpen})
	require.NoError(t, err)
	assert.Len(t, open.Items, 2)
}

func TestMock_Pagination(t *testing.T) {
	c := newClient(t)

	page, err := c.ListProducts(context.Background(), api.ProductFilter{Page: 2, Size: 3})
	require.NoError(t, err)
	assert.Equal(t, 4, page.Total)
	assert.Len(t, page.Items, 1)
	assert.False(t, page.HasNext)
}

func TestMock_MeRequiresToken(t *testing.T) {
	c := newClient(t)

	_, err := c.Me(context.Background())
	assert.Equal(t, 401, api.StatusOf(err))

	m, err := c.Me(authed())
	require.NoError(t, err)
	assert.Equal(t, "m1", m.ID)
}

func TestMock_PayFlow(t *testing.T) {
	c := newClient(t)
	ctx := authed()

	cart, err := c.GetCart(ctx)
	require.NoError(t, err)
	ids := cart.SelectedItemIDs()
	require.Len(t, ids, 1)

	before, err := c.GetFunding(ctx, "f1")
	require.NoError(t, err)

	res, err := c.Pay(ctx, api.PaymentRequest{CartItemIDs: ids})
	require.NoError(t, err)
	assert.Equal(t, int64(10000), res.Paid)
	assert.Equal(t, int64(90000), res.Balance)

	after, err := c.GetFunding(ctx, "f1")
	require.NoError(t, err)
	assert.Equal(t, before.CollectedAmount+10000, after.CollectedAmount)

	cart, err = c.GetCart(ctx)
	require.NoError(t, err)
	assert.Len(t, cart.Items, 1)

	orders, err := c.ListOrders(ctx, api.PageParams{})
	require.NoError(t, err)
	require.Len(t, orders.Items, 1)
	assert.Equal(t, res.OrderID, orders.Items[0].ID)

	history, err := c.ListWalletHistory(ctx, api.PageParams{})
	require.NoError(t, err)
	assert.Equal(t, api.TransactionPayment, history.Items[0].Type)
}

func TestMock_PayInsufficientBalance(t *testing.T) {
	c := newClient(t)
	ctx := authed()

	item, err := c.AddCartItem(ctx, api.AddCartItemRequest{FundingID: "f2", Amount: 500000})
	require.NoError(t, err)

	_, err = c.Pay(ctx, api.PaymentRequest{CartItemIDs: []string{item.ID}})
	var reqErr *api.RequestError
	require.ErrorAs(t, err, &reqErr)
	assert.Equal(t, 402, reqErr.Status)

	w, err := c.GetWallet(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(100000), w.Balance)
}

func TestMock_CartAndWishlist(t *testing.T) {
	c := newClient(t)
	ctx := authed()

	_, err := c.AddCartItem(ctx, api.AddCartItemRequest{FundingID: "f3", Amount: 1000})
	assert.Equal(t, 409, api.StatusOf(err))

	item, err := c.SelectCartItem(ctx, "c2", api.SelectCartItemRequest{Selected: true})
	require.NoError(t, err)
	assert.True(t, item.Selected)
	require.NoError(t, c.RemoveCartItem(ctx, "c2"))
	assert.Equal(t, 404, api.StatusOf(c.RemoveCartItem(ctx, "c2")))

	_, err = c.AddWishlist(ctx, api.AddWishlistRequest{ProductID: "p1"})
	require.NoError(t, err)
	p, err := c.GetProduct(ctx, "p1")
	require.NoError(t, err)
	assert.True(t, p.Wished)

	_, err = c.AddWishlist(ctx, api.AddWishlistRequest{ProductID: "p1"})
	assert.Equal(t, 409, api.StatusOf(err))
	require.NoError(t, c.RemoveWishlist(ctx, "p1"))
}

func TestMock_ChargeAndNotifications(t *testing.T) {
	c := newClient(t)
	ctx := authed()

	res, err := c.ChargeWallet(ctx, api.ChargeRequest{Amount: 5000})
	require.NoError(t, err)
	assert.Equal(t, int64(105000), res.Wallet.Balance)
	assert.Equal(t, api.TransactionCharge, res.Transaction.Type)

	list, err := c.ListNotifications(ctx, api.PageParams{})
	require.NoError(t, err)
	require.NotEmpty(t, list.Items)

	n, err := c.MarkNotificationRead(ctx, list.Items[0].ID)
	require.NoError(t, err)
	assert.True(t, n.Read)
}

func TestMock_Login(t *testing.T) {
	c := newClient(t)

	body, err := c.Login(context.Background(), api.LoginRequest{IDToken: "dev-token"})
	require.NoError(t, err)
	assert.Contains(t, string(body), `"member"`)
}
