package storefront

import (
	"context"

	"github.com/goliatone/go-storefront/api"
	"github.com/goliatone/go-storefront/cache"
	"github.com/goliatone/go-storefront/query"
)

// read pairs a key with the fetch that fills it.
type read[T any] struct {
	key     string
	fetch   cache.FetchFn[T]
	enabled bool
}

func (r read[T]) use(ctx context.Context, s *Service) query.Result[T] {
	return query.Use(ctx, s.queries, r.key, r.fetch, query.Enabled(r.enabled))
}

func (r read[T]) prefetch(s *Service) Prefetch {
	return Prefetch{
		Key:     r.key,
		Enabled: r.enabled,
		Run: func(ctx context.Context) error {
			_, err := query.Fetch(ctx, s.queries, r.key, r.fetch, query.Enabled(r.enabled))
			return err
		},
	}
}

func publicRead[T any](key string, fetch cache.FetchFn[T]) read[T] {
	return read[T]{key: key, fetch: fetch, enabled: true}
}

// privateRead attaches the viewer's identity token and is disabled for
// anonymous viewers.
func privateRead[T any](v Viewer, key string, fetch cache.FetchFn[T]) read[T] {
	return read[T]{
		key: key,
		fetch: func(ctx context.Context) (T, error) {
			return fetch(v.context(ctx))
		},
		enabled: v.Signed(),
	}
}

func (s *Service) productsRead(f api.ProductFilter) read[api.Page[api.Product]] {
	f = f.Normalize()
	return publicRead(s.keys.Products(f), func(ctx context.Context) (api.Page[api.Product], error) {
		page, err := s.upstream.ListProducts(ctx, f)
		if err != nil {
			return page, err
		}
		for i := range page.Items {
			page.Items[i] = s.images.Product(page.Items[i])
		}
		return page, nil
	})
}

func (s *Service) productRead(id string) read[api.Product] {
	return publicRead(s.keys.Product(id), func(ctx context.Context) (api.Product, error) {
		p, err := s.upstream.GetProduct(ctx, id)
		if err != nil {
			return p, err
		}
		return s.images.Product(p), nil
	})
}

func (s *Service) fundingsRead(f api.FundingFilter) read[api.Page[api.Funding]] {
	f = f.Normalize()
	return publicRead(s.keys.Fundings(f), func(ctx context.Context) (api.Page[api.Funding], error) {
		page, err := s.upstream.ListFundings(ctx, f)
		if err != nil {
			return page, err
		}
		for i := range page.Items {
			page.Items[i] = s.images.Funding(page.Items[i])
		}
		return page, nil
	})
}

func (s *Service) fundingRead(id string) read[api.Funding] {
	return publicRead(s.keys.Funding(id), func(ctx context.Context) (api.Funding, error) {
		f, err := s.upstream.GetFunding(ctx, id)
		if err != nil {
			return f, err
		}
		return s.images.Funding(f), nil
	})
}

func (s *Service) memberRead(v Viewer) read[api.Member] {
	return privateRead(v, s.keys.Member(v.Subject), s.upstream.Me)
}

func (s *Service) cartRead(v Viewer) read[api.Cart] {
	return privateRead(v, s.keys.Cart(v.Subject), s.upstream.GetCart)
}

func (s *Service) walletRead(v Viewer) read[api.Wallet] {
	return privateRead(v, s.keys.WalletBalance(v.Subject), s.upstream.GetWallet)
}

func (s *Service) walletHistoryRead(v Viewer, p api.PageParams) read[api.Page[api.WalletTransaction]] {
	p = p.Normalize()
	return privateRead(v, s.keys.WalletHistory(v.Subject, p.Page, p.Size),
		func(ctx context.Context) (api.Page[api.WalletTransaction], error) {
			return s.upstream.ListWalletHistory(ctx, p)
		})
}

func (s *Service) wishlistRead(v Viewer, p api.PageParams) read[api.Page[api.WishlistItem]] {
	p = p.Normalize()
	return privateRead(v, s.keys.Wishlist(v.Subject, p.Page, p.Size),
		func(ctx context.Context) (api.Page[api.WishlistItem], error) {
			page, err := s.upstream.ListWishlist(ctx, p)
			if err != nil {
				return page, err
			}
			for i := range page.Items {
				page.Items[i].Product = s.images.Product(page.Items[i].Product)
			}
			return page, nil
		})
}

func (s *Service) notificationsRead(v Viewer, p api.PageParams) read[api.Page[api.Notification]] {
	p = p.Normalize()
	return privateRead(v, s.keys.Notifications(v.Subject, p.Page, p.Size),
		func(ctx context.Context) (api.Page[api.Notification], error) {
			return s.upstream.ListNotifications(ctx, p)
		})
}

func (s *Service) ordersRead(v Viewer, p api.PageParams) read[api.Page[api.Order]] {
	p = p.Normalize()
	return privateRead(v, s.keys.Orders(v.Subject, p.Page, p.Size),
		func(ctx context.Context) (api.Page[api.Order], error) {
			return s.upstream.ListOrders(ctx, p)
		})
}

func (s *Service) Products(ctx context.Context, f api.ProductFilter) query.Result[api.Page[api.Product]] {
	return s.productsRead(f).use(ctx, s)
}

func (s *Service) Product(ctx context.Context, id string) query.Result[api.Product] {
	return s.productRead(id).use(ctx, s)
}

func (s *Service) Fundings(ctx context.Context, f api.FundingFilter) query.Result[api.Page[api.Funding]] {
	return s.fundingsRead(f).use(ctx, s)
}

func (s *Service) Funding(ctx context.Context, id string) query.Result[api.Funding] {
	return s.fundingRead(id).use(ctx, s)
}

// Member looks up the backend profile; it never fetches for an anonymous
// viewer.
func (s *Service) Member(ctx context.Context, v Viewer) query.Result[api.Member] {
	return s.memberRead(v).use(ctx, s)
}

func (s *Service) Cart(ctx context.Context, v Viewer) query.Result[api.Cart] {
	return s.cartRead(v).use(ctx, s)
}

func (s *Service) Wallet(ctx context.Context, v Viewer) query.Result[api.Wallet] {
	return s.walletRead(v).use(ctx, s)
}

func (s *Service) WalletHistory(ctx context.Context, v Viewer, p api.PageParams) query.Result[api.Page[api.WalletTransaction]] {
	return s.walletHistoryRead(v, p).use(ctx, s)
}

func (s *Service) Wishlist(ctx context.Context, v Viewer, p api.PageParams) query.Result[api.Page[api.WishlistItem]] {
	return s.wishlistRead(v, p).use(ctx, s)
}

func (s *Service) Notifications(ctx context.Context, v Viewer, p api.PageParams) query.Result[api.Page[api.Notification]] {
	return s.notificationsRead(v, p).use(ctx, s)
}

func (s *Service) Orders(ctx context.Context, v Viewer, p api.PageParams) query.Result[api.Page[api.Order]] {
	return s.ordersRead(v, p).use(ctx, s)
}
