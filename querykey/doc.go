// Package querykey maps storefront resources and their parameters to
// canonical cache keys.
//
// # Overview
//
// Every cached read in the storefront is addressed by a key made of the
// resource name followed by its serialized parameters:
//
//	querykey.Default.Product("p-1")                 // product::"p-1"
//	querykey.Default.WalletHistory("user-1", 2, 20) // wallet_history::"user-1"::2::20
//
// Equal inputs always produce equal keys and distinct parameter tuples always
// produce distinct keys. Strings are quoted, maps are sorted and structs are
// rendered by exported field name, so list filters and pagination never
// collide.
//
// # Prefixes
//
// A key built from a leading subset of parameters is a prefix for every key
// that extends it. Matches compares on whole segments:
//
//	querykey.Matches(`wallet_history::"user-1"::2::20`, querykey.Default.WalletHistoryAll("user-1")) // true
//	querykey.Matches(`fundings`, querykey.Default.FundingAll())                                     // false
//
// Mutations rely on this to mark every page of a list stale at once.
//
// # Private resources
//
// Cart, wallet, wishlist, notifications, orders and member keys carry the
// session subject as their first parameter so one process-wide cache can hold
// data for many users without cross-user reads.
package querykey
