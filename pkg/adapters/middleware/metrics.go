package middleware

import (
	"context"
	"errors"
	"time"

	"github.com/aretw0/qpilot/pkg/domain"
	"github.com/aretw0/qpilot/pkg/ports"
	"github.com/prometheus/client_golang/prometheus"
)

type metricsChannel struct {
	next     ports.Channel
	commands *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewMetrics creates a middleware that counts commands and observes
// their round trip time. The collectors register on reg immediately, so
// call NewMetrics once per registry.
//
// Outcome labels: "ok", "refused" for probe failures, "failed" for
// transport failures.
func NewMetrics(reg prometheus.Registerer) Middleware {
	commands := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "qpilot_commands_total",
			Help: "Total number of probe commands, by action and outcome.",
		},
		[]string{"action", "status"},
	)
	duration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "qpilot_command_duration_seconds",
			Help: "Round trip time of probe commands.",
		},
		[]string{"action"},
	)
	reg.MustRegister(commands, duration)

	return func(next ports.Channel) ports.Channel {
		return &metricsChannel{next: next, commands: commands, duration: duration}
	}
}

func (c *metricsChannel) Send(ctx context.Context, action string, args map[string]any) (map[string]any, error) {
	start := time.Now()
	reply, err := c.next.Send(ctx, action, args)
	c.duration.WithLabelValues(action).Observe(time.Since(start).Seconds())

	status := "ok"
	var re *domain.RemoteError
	switch {
	case err == nil:
	case errors.As(err, &re):
		status = "refused"
	default:
		status = "failed"
	}
	c.commands.WithLabelValues(action, status).Inc()
	return reply, err
}

func (c *metricsChannel) Close() error {
	return c.next.Close()
}
