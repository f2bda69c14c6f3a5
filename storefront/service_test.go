package storefront

import (
	"context"
	"io"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-storefront/api"
	"github.com/goliatone/go-storefront/internal/cacheinfra"
	"github.com/goliatone/go-storefront/pkg/testsupport"
	"github.com/goliatone/go-storefront/query"
)

var (
	alice = Viewer{Subject: "alice", IDToken: "alice-token"}
	bob   = Viewer{Subject: "bob", IDToken: "bob-token"}
)

func newHarness(t *testing.T) (*Service, *testsupport.Backend) {
	t.Helper()

	log := logrus.New()
	log.SetOutput(io.Discard)

	backend := testsupport.NewBackend(t)
	svc, err := cacheinfra.NewSturdycService(cacheinfra.DefaultConfig())
	require.NoError(t, err)

	client := api.NewClient(api.Config{BaseURL: backend.URL}, log)
	queries := query.NewClient(svc, query.WithLogger(log))
	return New(client, queries,
		WithLogger(log),
		WithImages(api.ImageResolver{BaseURL: "https://img.example.com"}),
	), backend
}

func stubCart(b *testsupport.Backend) {
	b.JSON(http.MethodGet, "/api/v2/cart", http.StatusOK, api.Cart{Items: []api.CartItem{
		{ID: "c1", FundingID: "f1", Amount: 3000, Selected: true},
		{ID: "c2", FundingID: "f2", Amount: 2000, Selected: false},
	}})
}

func stubAccount(b *testsupport.Backend) {
	b.JSON(http.MethodGet, "/api/v2/wallet", http.StatusOK, api.Wallet{Balance: 10000})
	b.JSON(http.MethodGet, "/api/v2/wallet/transactions", http.StatusOK, api.Page[api.WalletTransaction]{Page: 1, Size: 20})
	b.JSON(http.MethodGet, "/api/v2/orders", http.StatusOK, api.Page[api.Order]{Page: 1, Size: 20})
	b.JSON(http.MethodGet, "/api/v2/fundings/f1", http.StatusOK, api.Funding{ID: "f1"})
	b.JSON(http.MethodGet, "/api/v2/fundings/f2", http.StatusOK, api.Funding{ID: "f2"})
}

func TestProducts_CachedAndImagesResolved(t *testing.T) {
	s, b := newHarness(t)
	b.JSON(http.MethodGet, "/api/v2/products", http.StatusOK, api.Page[api.Product]{
		Items: []api.Product{{ID: "p1", ImageKey: "p1.png"}, {ID: "p2"}},
	})
	ctx := context.Background()

	res := s.Products(ctx, api.ProductFilter{})
	require.Equal(t, query.StatusSuccess, res.Status)
	require.Len(t, res.Data.Items, 2)
	assert.Equal(t, "https://img.example.com/p1.png", res.Data.Items[0].ImageURL)
	assert.Equal(t, api.PlaceholderImage, res.Data.Items[1].ImageURL)

	res = s.Products(ctx, api.ProductFilter{Page: 1, Size: 20})
	assert.Equal(t, query.StatusSuccess, res.Status)
	assert.Equal(t, 1, b.Calls(http.MethodGet, "/api/v2/products"))

	reqs := b.Requests(http.MethodGet, "/api/v2/products")
	assert.Empty(t, reqs[0].Header.Get("Authorization"))
}

func TestPrivateRead_AnonymousNeverFetches(t *testing.T) {
	s, b := newHarness(t)
	stubCart(b)

	res := s.Cart(context.Background(), Viewer{})
	assert.Equal(t, query.StatusIdle, res.Status)
	assert.NoError(t, res.Err)

	member := s.Member(context.Background(), Viewer{})
	assert.Equal(t, query.StatusIdle, member.Status)
	assert.Zero(t, b.TotalCalls())
}

func TestPrivateRead_ScopedPerViewer(t *testing.T) {
	s, b := newHarness(t)
	stubCart(b)
	ctx := context.Background()

	assert.Equal(t, query.StatusSuccess, s.Cart(ctx, alice).Status)
	assert.Equal(t, query.StatusSuccess, s.Cart(ctx, bob).Status)
	assert.Equal(t, query.StatusSuccess, s.Cart(ctx, alice).Status)

	reqs := b.Requests(http.MethodGet, "/api/v2/cart")
	require.Len(t, reqs, 2)
	assert.Equal(t, "Bearer alice-token", reqs[0].Header.Get("Authorization"))
	assert.Equal(t, "Bearer bob-token", reqs[1].Header.Get("Authorization"))
}

func TestReadError_SurfacesInStatus(t *testing.T) {
	s, b := newHarness(t)
	b.JSON(http.MethodGet, "/api/v2/wallet", http.StatusServiceUnavailable, map[string]string{"message": "maintenance"})

	res := s.Wallet(context.Background(), alice)
	assert.Equal(t, query.StatusError, res.Status)
	assert.Equal(t, http.StatusServiceUnavailable, api.StatusOf(res.Err))
}

func TestConcurrentReadsShareOneUpstreamCall(t *testing.T) {
	s, b := newHarness(t)

	release := make(chan struct{})
	b.Handle(http.MethodGet, "/api/v2/products/p1", func(*http.Request, []byte) (int, any) {
		<-release
		return http.StatusOK, api.Product{ID: "p1", Name: "Mug"}
	})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res := s.Product(context.Background(), "p1")
			assert.Equal(t, "Mug", res.Data.Name)
		}()
	}

	require.Eventually(t, func() bool {
		return b.Calls(http.MethodGet, "/api/v2/products/p1") == 1
	}, time.Second, 5*time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, 1, b.Calls(http.MethodGet, "/api/v2/products/p1"))
}

func warmAccount(t *testing.T, s *Service, v Viewer) {
	t.Helper()
	ctx := context.Background()
	require.Equal(t, query.StatusSuccess, s.Wallet(ctx, v).Status)
	require.Equal(t, query.StatusSuccess, s.WalletHistory(ctx, v, api.PageParams{}).Status)
	require.Equal(t, query.StatusSuccess, s.WalletHistory(ctx, v, api.PageParams{Page: 2}).Status)
	require.Equal(t, query.StatusSuccess, s.Orders(ctx, v, api.PageParams{}).Status)
	require.Equal(t, query.StatusSuccess, s.Funding(ctx, "f1").Status)
	require.Equal(t, query.StatusSuccess, s.Funding(ctx, "f2").Status)
}

func TestPay_InvalidatesSelectedFundingsOnly(t *testing.T) {
	s, b := newHarness(t)
	stubCart(b)
	stubAccount(b)
	b.JSON(http.MethodPost, "/api/v2/payments", http.StatusOK, api.PaymentResponse{OrderID: "o1", Paid: 3000, Balance: 7000})
	ctx := context.Background()

	require.Equal(t, query.StatusSuccess, s.Cart(ctx, alice).Status)
	warmAccount(t, s, alice)
	before := b.TotalCalls()

	out, err := s.Pay(ctx, alice, api.PaymentRequest{CartItemIDs: []string{"c1"}})
	require.NoError(t, err)
	assert.Equal(t, "o1", out.OrderID)

	k := s.Keys()
	q := s.Queries()
	for _, key := range []string{
		k.WalletBalance("alice"),
		k.WalletHistory("alice", 1, 20),
		k.WalletHistory("alice", 2, 20),
		k.Cart("alice"),
		k.Orders("alice", 1, 20),
		k.Funding("f1"),
	} {
		assert.True(t, q.Entry(key).Stale, key)
	}
	assert.False(t, q.Entry(k.Funding("f2")).Stale)

	// invalidation alone never refetches
	assert.Equal(t, before+1, b.TotalCalls())

	assert.Equal(t, query.StatusSuccess, s.Funding(ctx, "f1").Status)
	assert.Equal(t, 2, b.Calls(http.MethodGet, "/api/v2/fundings/f1"))
	assert.Equal(t, query.StatusSuccess, s.Funding(ctx, "f2").Status)
	assert.Equal(t, 1, b.Calls(http.MethodGet, "/api/v2/fundings/f2"))
}

func TestPay_AfterCartChangeInvalidatesAllFundings(t *testing.T) {
	s, b := newHarness(t)
	stubCart(b)
	stubAccount(b)
	b.JSON(http.MethodPatch, "/api/v2/cart/items/c2", http.StatusOK, api.CartItem{ID: "c2", FundingID: "f2", Selected: true})
	b.JSON(http.MethodPost, "/api/v2/payments", http.StatusOK, api.PaymentResponse{OrderID: "o1"})
	ctx := context.Background()

	require.Equal(t, query.StatusSuccess, s.Cart(ctx, alice).Status)
	require.Equal(t, query.StatusSuccess, s.Funding(ctx, "f2").Status)

	// c2 becomes selected upstream; the cached cart still has it unselected
	_, err := s.SelectCartItem(ctx, alice, "c2", true)
	require.NoError(t, err)
	require.True(t, s.Queries().Entry(s.Keys().Cart("alice")).Stale)

	_, err = s.Pay(ctx, alice, api.PaymentRequest{CartItemIDs: []string{"c1", "c2"}})
	require.NoError(t, err)

	assert.True(t, s.Queries().Entry(s.Keys().Funding("f2")).Stale)
	assert.Equal(t, query.StatusSuccess, s.Funding(ctx, "f2").Status)
	assert.Equal(t, 2, b.Calls(http.MethodGet, "/api/v2/fundings/f2"))
}

func TestPay_InvalidatesFundingsOfPaidItems(t *testing.T) {
	s, b := newHarness(t)
	stubCart(b)
	stubAccount(b)
	b.JSON(http.MethodPost, "/api/v2/payments", http.StatusOK, api.PaymentResponse{OrderID: "o1"})
	ctx := context.Background()

	require.Equal(t, query.StatusSuccess, s.Cart(ctx, alice).Status)
	warmAccount(t, s, alice)

	// c2 is unselected in the cached cart but named by the payment
	_, err := s.Pay(ctx, alice, api.PaymentRequest{CartItemIDs: []string{"c2"}})
	require.NoError(t, err)

	assert.True(t, s.Queries().Entry(s.Keys().Funding("f1")).Stale)
	assert.True(t, s.Queries().Entry(s.Keys().Funding("f2")).Stale)
}

func TestPay_FixtureCartWithTwoSelectedFundings(t *testing.T) {
	s, b := newHarness(t)
	b.Fixture(t, http.MethodGet, "/api/v2/cart", "cart.json")
	stubAccount(b)
	b.JSON(http.MethodGet, "/api/v2/fundings/f3", http.StatusOK, api.Funding{ID: "f3"})
	b.JSON(http.MethodPost, "/api/v2/payments", http.StatusOK, api.PaymentResponse{OrderID: "o2"})
	ctx := context.Background()

	cart := s.Cart(ctx, alice)
	require.Equal(t, query.StatusSuccess, cart.Status)
	assert.Equal(t, int64(6000), cart.Data.SelectedAmount())
	for _, id := range []string{"f1", "f2", "f3"} {
		require.Equal(t, query.StatusSuccess, s.Funding(ctx, id).Status)
	}

	_, err := s.Pay(ctx, alice, api.PaymentRequest{CartItemIDs: cart.Data.SelectedItemIDs()})
	require.NoError(t, err)

	q := s.Queries()
	assert.True(t, q.Entry(s.Keys().Funding("f1")).Stale)
	assert.True(t, q.Entry(s.Keys().Funding("f2")).Stale)
	assert.False(t, q.Entry(s.Keys().Funding("f3")).Stale)
}

func TestProducts_FromFixture(t *testing.T) {
	s, b := newHarness(t)
	b.Fixture(t, http.MethodGet, "/api/v2/products", "products.json")

	var want api.Page[api.Product]
	testsupport.LoadFixtureJSON(t, "products.json", &want)

	res := s.Products(context.Background(), api.ProductFilter{Category: "kitchen"})
	require.Equal(t, query.StatusSuccess, res.Status)
	require.Len(t, res.Data.Items, len(want.Items))
	assert.Equal(t, want.Items[0].Name, res.Data.Items[0].Name)
	assert.Equal(t, "https://img.example.com/products/p1.png", res.Data.Items[0].ImageURL)
	assert.True(t, res.Data.Items[1].Wished)
}

func TestPay_WithoutCartSnapshotInvalidatesAllFundings(t *testing.T) {
	s, b := newHarness(t)
	stubAccount(b)
	b.JSON(http.MethodPost, "/api/v2/payments", http.StatusOK, api.PaymentResponse{OrderID: "o1"})
	ctx := context.Background()

	warmAccount(t, s, alice)
	_, err := s.Pay(ctx, alice, api.PaymentRequest{CartItemIDs: []string{"c1"}})
	require.NoError(t, err)

	assert.True(t, s.Queries().Entry(s.Keys().Funding("f1")).Stale)
	assert.True(t, s.Queries().Entry(s.Keys().Funding("f2")).Stale)
}

func TestPay_FailureInvalidatesNothing(t *testing.T) {
	s, b := newHarness(t)
	stubCart(b)
	stubAccount(b)
	b.JSON(http.MethodPost, "/api/v2/payments", http.StatusPaymentRequired, map[string]string{"message": "insufficient balance"})
	ctx := context.Background()

	require.Equal(t, query.StatusSuccess, s.Cart(ctx, alice).Status)
	warmAccount(t, s, alice)

	_, err := s.Pay(ctx, alice, api.PaymentRequest{CartItemIDs: []string{"c1"}})
	require.Error(t, err)
	assert.Equal(t, http.StatusPaymentRequired, api.StatusOf(err))

	for _, e := range s.Queries().Entries() {
		assert.False(t, e.Stale, e.Key)
	}
}

func TestChargeWallet_InvalidatesWalletOnly(t *testing.T) {
	s, b := newHarness(t)
	stubCart(b)
	stubAccount(b)
	b.JSON(http.MethodPost, "/api/v2/wallet/charge", http.StatusOK, api.ChargeResponse{Wallet: api.Wallet{Balance: 15000}})
	ctx := context.Background()

	require.Equal(t, query.StatusSuccess, s.Cart(ctx, alice).Status)
	warmAccount(t, s, alice)

	_, err := s.ChargeWallet(ctx, alice, api.ChargeRequest{Amount: 5000})
	require.NoError(t, err)

	k, q := s.Keys(), s.Queries()
	assert.True(t, q.Entry(k.WalletBalance("alice")).Stale)
	assert.True(t, q.Entry(k.WalletHistory("alice", 2, 20)).Stale)
	assert.False(t, q.Entry(k.Cart("alice")).Stale)
	assert.False(t, q.Entry(k.Orders("alice", 1, 20)).Stale)
	assert.False(t, q.Entry(k.Funding("f1")).Stale)
}

func TestCartMutations_InvalidateCart(t *testing.T) {
	s, b := newHarness(t)
	stubCart(b)
	b.JSON(http.MethodPost, "/api/v2/cart/items", http.StatusCreated, api.CartItem{ID: "c3"})
	b.JSON(http.MethodPatch, "/api/v2/cart/items/c2", http.StatusOK, api.CartItem{ID: "c2", Selected: true})
	b.JSON(http.MethodDelete, "/api/v2/cart/items/c1", http.StatusNoContent, nil)
	ctx := context.Background()
	cartKey := s.Keys().Cart("alice")

	mutations := []struct {
		name string
		run  func() error
	}{
		{"add", func() error {
			_, err := s.AddCartItem(ctx, alice, api.AddCartItemRequest{FundingID: "f3", Amount: 100})
			return err
		}},
		{"select", func() error { _, err := s.SelectCartItem(ctx, alice, "c2", true); return err }},
		{"remove", func() error { return s.RemoveCartItem(ctx, alice, "c1") }},
	}

	for _, m := range mutations {
		t.Run(m.name, func(t *testing.T) {
			require.Equal(t, query.StatusSuccess, s.Cart(ctx, alice).Status)
			require.False(t, s.Queries().Entry(cartKey).Stale)
			require.NoError(t, m.run())
			assert.True(t, s.Queries().Entry(cartKey).Stale)
		})
	}

	reqs := b.Requests(http.MethodPatch, "/api/v2/cart/items/c2")
	require.Len(t, reqs, 1)
	assert.JSONEq(t, `{"selected":true}`, string(reqs[0].Body))
}

func TestWishlistMutations_InvalidateWishlistAndProduct(t *testing.T) {
	s, b := newHarness(t)
	b.JSON(http.MethodGet, "/api/v2/wishlist", http.StatusOK, api.Page[api.WishlistItem]{})
	b.JSON(http.MethodGet, "/api/v2/products/p1", http.StatusOK, api.Product{ID: "p1"})
	b.JSON(http.MethodGet, "/api/v2/products/p2", http.StatusOK, api.Product{ID: "p2"})
	b.JSON(http.MethodPost, "/api/v2/wishlist", http.StatusCreated, api.WishlistItem{ProductID: "p1"})
	b.JSON(http.MethodDelete, "/api/v2/wishlist/p1", http.StatusNoContent, nil)
	ctx := context.Background()
	k, q := s.Keys(), s.Queries()

	warm := func() {
		s.Wishlist(ctx, alice, api.PageParams{})
		s.Wishlist(ctx, alice, api.PageParams{Page: 2})
		s.Product(ctx, "p1")
		s.Product(ctx, "p2")
	}

	warm()
	_, err := s.AddWishlist(ctx, alice, "p1")
	require.NoError(t, err)
	assert.True(t, q.Entry(k.Wishlist("alice", 1, 20)).Stale)
	assert.True(t, q.Entry(k.Wishlist("alice", 2, 20)).Stale)
	assert.True(t, q.Entry(k.Product("p1")).Stale)
	assert.False(t, q.Entry(k.Product("p2")).Stale)

	warm()
	require.NoError(t, s.RemoveWishlist(ctx, alice, "p1"))
	assert.True(t, q.Entry(k.Wishlist("alice", 1, 20)).Stale)
	assert.True(t, q.Entry(k.Product("p1")).Stale)
}

func TestMarkNotificationRead_InvalidatesAllPages(t *testing.T) {
	s, b := newHarness(t)
	b.JSON(http.MethodGet, "/api/v2/notifications", http.StatusOK, api.Page[api.Notification]{})
	b.JSON(http.MethodPatch, "/api/v2/notifications/n1/read", http.StatusOK, api.Notification{ID: "n1", Read: true})
	ctx := context.Background()

	s.Notifications(ctx, alice, api.PageParams{})
	s.Notifications(ctx, alice, api.PageParams{Page: 3})
	s.Notifications(ctx, bob, api.PageParams{})

	n, err := s.MarkNotificationRead(ctx, alice, "n1")
	require.NoError(t, err)
	assert.True(t, n.Read)

	k, q := s.Keys(), s.Queries()
	assert.True(t, q.Entry(k.Notifications("alice", 1, 20)).Stale)
	assert.True(t, q.Entry(k.Notifications("alice", 3, 20)).Stale)
	assert.False(t, q.Entry(k.Notifications("bob", 1, 20)).Stale)
}

func TestMutations_RequireViewer(t *testing.T) {
	s, b := newHarness(t)
	ctx := context.Background()

	_, err := s.Pay(ctx, Viewer{}, api.PaymentRequest{CartItemIDs: []string{"c1"}})
	assert.ErrorIs(t, err, ErrNoViewer)
	_, err = s.ChargeWallet(ctx, Viewer{}, api.ChargeRequest{Amount: 1})
	assert.ErrorIs(t, err, ErrNoViewer)
	assert.ErrorIs(t, s.RemoveCartItem(ctx, Viewer{}, "c1"), ErrNoViewer)
	assert.ErrorIs(t, s.RemoveWishlist(ctx, Viewer{}, "p1"), ErrNoViewer)
	assert.Zero(t, b.TotalCalls())
}
