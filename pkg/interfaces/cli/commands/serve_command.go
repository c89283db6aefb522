package commands

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"

	"github.com/vsinha/bomplanner/pkg/infrastructure/events"
	"github.com/vsinha/bomplanner/pkg/interfaces/http/api"
	"github.com/vsinha/bomplanner/pkg/logger"
)

const shutdownTimeout = 5 * time.Second

func newServeCommand(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the BOM and MRP operations over HTTP",
		Long: `Starts an HTTP server holding one BOM in memory. Nodes are added with
POST /api/nodes and results read from /api/mrp, /api/tree, /api/diagram and /api/check.
Prometheus metrics are exposed on /metrics.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return Serve(ctx, configFrom(cmd))
		},
	}

	cmd.Flags().String("addr", ":8080", "Listen address")
	bindFlags(v, cmd.Flags(), map[string]string{keyServerAddr: "addr"})
	return cmd
}

// newServer builds the HTTP server for a and adds Go runtime and process
// metrics to its registry
func newServer(a *app) *http.Server {
	a.recorder.Registry().MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return &http.Server{
		Addr:         a.config.ServerAddr,
		Handler:      api.New(a.service, a.recorder, a.events).Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

// Serve runs the HTTP API until ctx is canceled
func Serve(ctx context.Context, cfg Config) error {
	srv := newServer(newApp(cfg, events.LogNotifier{}))

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("starting server", "addr", cfg.ServerAddr, "quantity_source", cfg.QuantitySource)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return errors.Wrap(err, "server failed")
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return errors.Wrap(err, "server forced to shutdown")
		}
		return nil
	})

	return g.Wait()
}
