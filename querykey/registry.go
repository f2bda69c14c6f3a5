package querykey

import "strings"

// Resource names known to the storefront. Private resources take the session
// subject as their first parameter.
const (
	ResourceProducts      = "products"
	ResourceProduct       = "product"
	ResourceFundings      = "fundings"
	ResourceFunding       = "funding"
	ResourceCart          = "cart"
	ResourceWalletBalance = "wallet_balance"
	ResourceWalletHistory = "wallet_history"
	ResourceWishlist      = "wishlist"
	ResourceNotifications = "notifications"
	ResourceOrders        = "orders"
	ResourceMember        = "member"
)

// Registry maps logical resources and their parameters to canonical keys.
// It holds no state beyond its serializer and is safe for concurrent use.
type Registry struct {
	serializer Serializer
}

// NewRegistry returns a Registry backed by s, or by the default serializer
// when s is nil.
func NewRegistry(s Serializer) *Registry {
	if s == nil {
		s = NewDefaultSerializer()
	}
	return &Registry{serializer: s}
}

// Default is the process-wide registry used by the package level helpers.
var Default = NewRegistry(nil)

// Key builds the key for resource and params.
func (r *Registry) Key(resource string, params ...any) string {
	return r.serializer.SerializeKey(resource, params...)
}

func (r *Registry) Products(filter any) string { return r.Key(ResourceProducts, filter) }
func (r *Registry) ProductsAll() string        { return r.Key(ResourceProducts) }
func (r *Registry) Product(id string) string   { return r.Key(ResourceProduct, id) }
func (r *Registry) Fundings(filter any) string { return r.Key(ResourceFundings, filter) }
func (r *Registry) FundingsAll() string        { return r.Key(ResourceFundings) }
func (r *Registry) Funding(id string) string   { return r.Key(ResourceFunding, id) }
func (r *Registry) FundingAll() string         { return r.Key(ResourceFunding) }

func (r *Registry) Cart(user string) string          { return r.Key(ResourceCart, user) }
func (r *Registry) WalletBalance(user string) string { return r.Key(ResourceWalletBalance, user) }
func (r *Registry) Member(user string) string        { return r.Key(ResourceMember, user) }

func (r *Registry) WalletHistory(user string, page, size int) string {
	return r.Key(ResourceWalletHistory, user, page, size)
}

// WalletHistoryAll is the prefix shared by every history page of user.
func (r *Registry) WalletHistoryAll(user string) string {
	return r.Key(ResourceWalletHistory, user)
}

func (r *Registry) Wishlist(user string, page, size int) string {
	return r.Key(ResourceWishlist, user, page, size)
}

func (r *Registry) WishlistAll(user string) string { return r.Key(ResourceWishlist, user) }

func (r *Registry) Notifications(user string, page, size int) string {
	return r.Key(ResourceNotifications, user, page, size)
}

func (r *Registry) NotificationsAll(user string) string { return r.Key(ResourceNotifications, user) }

func (r *Registry) Orders(user string, page, size int) string {
	return r.Key(ResourceOrders, user, page, size)
}

func (r *Registry) OrdersAll(user string) string { return r.Key(ResourceOrders, user) }

// Key builds a key with the default registry.
func Key(resource string, params ...any) string {
	return Default.Key(resource, params...)
}

// Matches reports whether key equals prefix or extends it by whole segments.
// A prefix of "funding" matches `funding::"F1"` but never `fundings`.
func Matches(key, prefix string) bool {
	if prefix == "" {
		return false
	}
	if !strings.HasPrefix(key, prefix) {
		return false
	}
	rest := key[len(prefix):]
	return rest == "" || strings.HasPrefix(rest, KeySeparator)
}

// Resource returns the resource segment of key.
func Resource(key string) string {
	if i := strings.Index(key, KeySeparator); i >= 0 {
		return key[:i]
	}
	return key
}
