package ports

import (
	"context"
	"io"
)

// Channel is the command link to a probed application. One call carries one
// command: the action verb plus its arguments, answered by a single reply
// object.
//
// Implementations serialize concurrent callers so frames cannot interleave.
// A failure reported by the probe surfaces as *domain.RemoteError; transport
// failures surface as ordinary errors.
type Channel interface {
	// Send issues one command and waits for its reply. The args map may be
	// nil for commands without arguments.
	Send(ctx context.Context, action string, args map[string]any) (map[string]any, error)

	io.Closer
}
