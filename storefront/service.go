package storefront

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/goliatone/go-storefront/api"
	"github.com/goliatone/go-storefront/query"
	"github.com/goliatone/go-storefront/querykey"
)

// ErrNoViewer is returned by private operations called without a signed-in
// user.
var ErrNoViewer = errors.New("storefront: no signed-in user")

// DefaultPrefetchLimit bounds the number of concurrent prefetch fetches.
const DefaultPrefetchLimit = 4

// Upstream is the subset of the API client the hooks call.
type Upstream interface {
	Me(ctx context.Context) (api.Member, error)
	ListProducts(ctx context.Context, f api.ProductFilter) (api.Page[api.Product], error)
	GetProduct(ctx context.Context, id string) (api.Product, error)
	ListFundings(ctx context.Context, f api.FundingFilter) (api.Page[api.Funding], error)
	GetFunding(ctx context.Context, id string) (api.Funding, error)
	GetCart(ctx context.Context) (api.Cart, error)
	AddCartItem(ctx context.Context, req api.AddCartItemRequest) (api.CartItem, error)
	SelectCartItem(ctx context.Context, id string, req api.SelectCartItemRequest) (api.CartItem, error)
	RemoveCartItem(ctx context.Context, id string) error
	GetWallet(ctx context.Context) (api.Wallet, error)
	ListWalletHistory(ctx context.Context, p api.PageParams) (api.Page[api.WalletTransaction], error)
	ChargeWallet(ctx context.Context, req api.ChargeRequest) (api.ChargeResponse, error)
	Pay(ctx context.Context, req api.PaymentRequest) (api.PaymentResponse, error)
	ListWishlist(ctx context.Context, p api.PageParams) (api.Page[api.WishlistItem], error)
	AddWishlist(ctx context.Context, req api.AddWishlistRequest) (api.WishlistItem, error)
	RemoveWishlist(ctx context.Context, productID string) error
	ListNotifications(ctx context.Context, p api.PageParams) (api.Page[api.Notification], error)
	MarkNotificationRead(ctx context.Context, id string) (api.Notification, error)
	ListOrders(ctx context.Context, p api.PageParams) (api.Page[api.Order], error)
}

var _ Upstream = (*api.Client)(nil)

// Viewer identifies the signed-in user a private read or write runs for.
type Viewer struct {
	Subject string
	IDToken string
}

// Signed reports whether v names a user.
func (v Viewer) Signed() bool { return v.Subject != "" }

func (v Viewer) context(ctx context.Context) context.Context {
	return api.WithIDToken(ctx, v.IDToken)
}

// Service exposes the storefront read hooks, mutations and prefetch helpers
// over one shared query client.
type Service struct {
	upstream      Upstream
	queries       *query.Client
	keys          *querykey.Registry
	images        api.ImageResolver
	log           logrus.FieldLogger
	prefetchLimit int
}

// Option configures a Service.
type Option func(*Service)

// WithImages sets the resolver applied to product and funding images.
func WithImages(r api.ImageResolver) Option {
	return func(s *Service) { s.images = r }
}

// WithKeys replaces the default key registry.
func WithKeys(r *querykey.Registry) Option {
	return func(s *Service) {
		if r != nil {
			s.keys = r
		}
	}
}

// WithLogger sets the service logger.
func WithLogger(log logrus.FieldLogger) Option {
	return func(s *Service) {
		if log != nil {
			s.log = log
		}
	}
}

// WithPrefetchLimit bounds concurrent prefetch fetches.
func WithPrefetchLimit(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.prefetchLimit = n
		}
	}
}

// New builds a Service.
func New(upstream Upstream, queries *query.Client, opts ...Option) *Service {
	s := &Service{
		upstream:      upstream,
		queries:       queries,
		keys:          querykey.Default,
		log:           logrus.StandardLogger(),
		prefetchLimit: DefaultPrefetchLimit,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Queries returns the shared query client.
func (s *Service) Queries() *query.Client { return s.queries }

// Keys returns the key registry.
func (s *Service) Keys() *querykey.Registry { return s.keys }
