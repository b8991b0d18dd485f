// Package middleware provides the gin middleware stack of the HTTP server:
// request IDs, CORS and per-client rate limiting.
package middleware
