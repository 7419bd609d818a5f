// Package middleware decorates command channels with cross cutting
// behavior: structured command logging, prometheus metrics and an in
// memory trace of recent exchanges. Middlewares wrap any ports.Channel,
// so the socket channel, the fake channel and each other all compose.
package middleware

import "github.com/aretw0/qpilot/pkg/ports"

// Middleware allows wrapping a Channel to add behavior.
type Middleware func(ports.Channel) ports.Channel

// Chain composes middlewares into one. The first middleware listed sees
// a command first: Chain(a, b)(ch) behaves like a(b(ch)).
func Chain(mws ...Middleware) Middleware {
	return func(ch ports.Channel) ports.Channel {
		for i := len(mws) - 1; i >= 0; i-- {
			ch = mws[i](ch)
		}
		return ch
	}
}
