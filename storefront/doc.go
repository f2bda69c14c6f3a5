// Package storefront binds the upstream API to the shared query cache.
//
// Every read hook (Products, Cart, Wallet, ...) is a keyed query.Use call;
// private reads are scoped by the viewer's subject and disabled without a
// signed-in viewer. Every write is a query.Mutation whose invalidation set is
// fixed per operation:
//
//	Pay                       wallet balance, wallet history, cart, orders,
//	                          fundings of selected cart items
//	ChargeWallet              wallet balance, wallet history
//	Add/Select/RemoveCartItem cart
//	Add/RemoveWishlist        wishlist, the product
//	MarkNotificationRead      notifications
//
// Prefetch warms a fixed set of queries with bounded parallelism before a
// response is produced; Bootstrap combines it with Dehydrate.
package storefront
