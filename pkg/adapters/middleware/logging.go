package middleware

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/aretw0/qpilot/pkg/domain"
	"github.com/aretw0/qpilot/pkg/ports"
)

type loggingChannel struct {
	next   ports.Channel
	logger *slog.Logger
}

// NewLogging creates a middleware that logs every command with its round
// trip time. Probe refusals log at debug level because lookup loops
// produce them routinely; transport failures log at error level.
func NewLogging(logger *slog.Logger) Middleware {
	return func(next ports.Channel) ports.Channel {
		return &loggingChannel{next: next, logger: logger}
	}
}

func (c *loggingChannel) Send(ctx context.Context, action string, args map[string]any) (map[string]any, error) {
	start := time.Now()
	reply, err := c.next.Send(ctx, action, args)
	elapsed := time.Since(start)

	var re *domain.RemoteError
	switch {
	case err == nil:
		c.logger.Debug("command done", "action", action, "duration", elapsed)
	case errors.As(err, &re):
		c.logger.Debug("command refused", "action", action, "name", re.Name, "duration", elapsed)
	default:
		c.logger.Error("command failed", "action", action, "duration", elapsed, "err", err)
	}
	return reply, err
}

func (c *loggingChannel) Close() error {
	return c.next.Close()
}
