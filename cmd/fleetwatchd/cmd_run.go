package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/fleetwatch/fleetwatch/pkg/util"
)

func newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Start the poll loop and metrics endpoint",
		Long: `Run starts the poll loop (immediate tick, then every
NLNS_POLL_INTERVAL seconds) and serves Prometheus metrics on
--metrics-addr until interrupted.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			_, _, orch, err := setup()
			if err != nil {
				return err
			}

			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.Handler())
			server := &http.Server{Addr: metricsAddr, Handler: mux}

			go func() {
				util.WithField("addr", metricsAddr).Info("serving metrics")
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					util.Errorf("metrics server: %v", err)
				}
			}()

			go orch.Run(ctx)

			<-ctx.Done()
			util.Info("shutting down")
			return server.Shutdown(context.Background())
		},
	}
}
