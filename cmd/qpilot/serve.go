package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/aretw0/qpilot"
	"github.com/aretw0/qpilot/internal/presentation/tui"
	"github.com/aretw0/qpilot/pkg/adapters/httpapi"
	"github.com/aretw0/qpilot/pkg/adapters/middleware"
	lock "github.com/aretw0/qpilot/pkg/adapters/redis"
	"github.com/prometheus/client_golang/prometheus"
	backend "github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP bridge in front of the probe",
	Long: `Starts a REST bridge on top of the probe connection, so harnesses in
other languages can drive the application over plain HTTP. The bridge
also exposes Prometheus metrics on /metrics and, when tracing is on,
the recent probe exchanges on /debug/trace.

With --lock-redis the bridge holds a distributed lock on the probe
address for as long as it runs, keeping parallel CI jobs from driving
the same application at once.`,
	Run: func(cmd *cobra.Command, args []string) {
		listen, _ := cmd.Flags().GetString("listen")
		traceSize, _ := cmd.Flags().GetInt("trace")
		lockRedis, _ := cmd.Flags().GetString("lock-redis")
		lockTTL, _ := cmd.Flags().GetDuration("lock-ttl")
		addr, _ := cmd.Flags().GetString("address")

		if term.IsTerminal(int(os.Stdout.Fd())) {
			tui.PrintBanner(strings.TrimSpace(qpilot.Version))
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if lockRedis != "" {
			rdb := backend.NewClient(&backend.Options{Addr: lockRedis})
			unlock, err := lock.NewLocker(rdb, "").Lock(ctx, addr, lockTTL)
			if err != nil {
				fmt.Printf("Error acquiring application lock: %v\n", err)
				os.Exit(1)
			}
			defer func() {
				releaseCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_ = unlock(releaseCtx)
			}()
		}

		extra := []qpilot.Option{
			qpilot.WithMiddleware(middleware.NewMetrics(prometheus.DefaultRegisterer)),
		}
		var rec *middleware.Recorder
		if traceSize > 0 {
			rec = middleware.NewRecorder(traceSize)
			extra = append(extra, qpilot.WithMiddleware(rec.Middleware()))
		}

		c, err := connect(cmd, extra...)
		if err != nil {
			fmt.Printf("Error connecting to probe: %v\n", err)
			os.Exit(1)
		}
		defer c.Close()

		fmt.Printf("Bridging %s on %s\n", addr, listen)
		if err := httpapi.Serve(ctx, listen, httpapi.NewHandler(c, rec)); err != nil {
			if err != http.ErrServerClosed {
				fmt.Printf("Server error: %v\n", err)
				os.Exit(1)
			}
		}
		fmt.Println("HTTP bridge stopped gracefully")
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("listen", "l", ":8089", "Address the bridge listens on")
	serveCmd.Flags().Int("trace", 64, "Probe exchanges kept for /debug/trace, 0 disables")
	serveCmd.Flags().String("lock-redis", "", "Redis address for the distributed application lock")
	serveCmd.Flags().Duration("lock-ttl", 2*time.Minute, "TTL of the application lock")
}
