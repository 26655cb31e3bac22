// Package kit carries the transport-independent request plumbing:
// endpoints, middleware chaining, request-scoped context values, and
// the MCP tool adapter.
package kit

import "context"

// Endpoint is a transport-agnostic request handler. HTTP handlers and
// MCP tools both decode into a typed request and hand it to one of
// these.
type Endpoint func(ctx context.Context, req any) (any, error)

// Middleware wraps an Endpoint with cross-cutting behavior.
type Middleware func(Endpoint) Endpoint

// Chain composes middlewares left to right: the first argument is the
// outermost wrapper.
func Chain(mws ...Middleware) Middleware {
	return func(ep Endpoint) Endpoint {
		for i := len(mws) - 1; i >= 0; i-- {
			ep = mws[i](ep)
		}
		return ep
	}
}
