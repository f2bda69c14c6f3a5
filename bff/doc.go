// Package bff is the backend-for-frontend HTTP surface: the session bridge
// (profile lookup and login sync), the authorization view, storefront reads
// and mutations over the shared query cache, the UI store and the ops routes.
//
// Reads report the state of the cache entry behind them in the
// X-Query-Status and X-Query-Stale headers. Upstream rejections are passed
// through with their status and body; unexpected failures become a generic
// 500.
package bff
