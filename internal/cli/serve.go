package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"shipcore/internal/adapters/shipments"
	"shipcore/internal/blob"
	"shipcore/internal/core"
	"shipcore/internal/pricing"
)

const shutdownGrace = 10 * time.Second

func newServeCommand() *cobra.Command {
	var (
		addr  string
		debug bool
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the shipment batch HTTP server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), addr, debug)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	cmd.Flags().BoolVar(&debug, "debug", false, "enable debug logging")
	return cmd
}

func runServe(ctx context.Context, addr string, debug bool) error {
	logger, sync, err := newLogger(debug)
	if err != nil {
		return err
	}
	defer sync()

	engine := core.NewDefaultRulesEngine()
	store, err := core.OpenPersistentStore(engine)
	if err != nil {
		return err
	}
	blobs, err := blob.Open(ctx)
	if err != nil {
		return err
	}
	rates, err := pricing.OpenTable()
	if err != nil {
		return err
	}
	metrics, err := core.NewPrometheusMetricsRecorder(prometheus.DefaultRegisterer)
	if err != nil {
		return err
	}

	svc := core.NewService(store,
		core.WithBlobStore(blobs),
		core.WithPricing(rates),
		core.WithMetrics(metrics),
		core.WithLogger(logger),
	)

	mux := http.NewServeMux()
	handler := shipments.NewHandler(svc)
	handler.Logger = logger
	mux.Handle("/api/v1/", handler)
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", addr)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
