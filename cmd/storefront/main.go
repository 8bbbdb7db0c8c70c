package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ferretex/storefront-client/internal/api"
	"github.com/ferretex/storefront-client/internal/app"
	"github.com/ferretex/storefront-client/internal/store"
	appsync "github.com/ferretex/storefront-client/internal/sync"
	"github.com/ferretex/storefront-client/pkg/config"
	"github.com/ferretex/storefront-client/pkg/logger"
	"github.com/ferretex/storefront-client/pkg/metrics"
	"github.com/ferretex/storefront-client/pkg/storage"
	"github.com/ferretex/storefront-client/pkg/types"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "storefront"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "storefront",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	backend, closeBackend, err := snapshotBackend(ctx, cfg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap snapshot backend", err)
		os.Exit(1)
	}
	defer func() {
		if err := closeBackend(); err != nil {
			logg.Error(ctx, "error closing snapshot backend", err)
		}
	}()

	stateStore, err := store.New(ctx, store.Params{Backend: backend, Logger: logg})
	if err != nil {
		logg.Error(ctx, "failed to load state", err)
		os.Exit(1)
	}

	client, err := api.NewClient(cfg.API.BaseURL, logg,
		api.WithTimeout(cfg.API.Timeout),
		api.WithUserAgent(cfg.API.UserAgent),
	)
	if err != nil {
		logg.Error(ctx, "failed to build api client", err)
		os.Exit(1)
	}

	application, err := app.New(app.Params{Backend: client, Store: stateStore, Logger: logg})
	if err != nil {
		logg.Error(ctx, "failed to build app", err)
		os.Exit(1)
	}

	if err := client.Health(ctx); err != nil {
		logg.Warn(ctx, "backend health probe failed: "+err.Error())
	}

	syncMetrics := metrics.NewSyncMetrics(prometheus.DefaultRegisterer)
	pollers, err := buildPollers(cfg, logg, syncMetrics, client, application, stateStore)
	if err != nil {
		logg.Error(ctx, "failed to build pollers", err)
		os.Exit(1)
	}
	for _, poller := range pollers {
		go poller.Run(ctx)
	}

	if addr := os.Getenv("FERRETEX_METRICS_ADDR"); addr != "" {
		go serveMetrics(ctx, logg, addr)
	}

	logg.Info(logg.WithFields(ctx, map[string]any{
		"env":      cfg.App.Env,
		"backend":  cfg.Snapshot.Backend,
		"interval": cfg.Sync.PollInterval.String(),
	}), "storefront client running")

	<-ctx.Done()
	logg.Info(context.Background(), "shutting down")
}

// snapshotBackend selects the persistence backend from config and returns it
// with its close func.
func snapshotBackend(ctx context.Context, cfg *config.Config) (storage.Backend, func() error, error) {
	switch cfg.Snapshot.Backend {
	case config.SnapshotBackendRedis:
		backend, err := storage.NewRedisBackend(ctx, cfg.Redis, cfg.Snapshot.Namespace)
		if err != nil {
			return nil, nil, err
		}
		return backend, backend.Close, nil
	default:
		backend, err := storage.NewFileBackend(cfg.Snapshot.Path, cfg.Snapshot.Namespace)
		if err != nil {
			return nil, nil, err
		}
		return backend, func() error { return nil }, nil
	}
}

// buildPollers wires one synchronizer per enabled resource. The orders poller
// only runs while a session is active; the products poller is unconditional.
func buildPollers(
	cfg *config.Config,
	logg *logger.Logger,
	syncMetrics *metrics.SyncMetrics,
	client *api.Client,
	application *app.App,
	stateStore *store.Store,
) ([]*appsync.Poller, error) {
	var pollers []*appsync.Poller

	if cfg.Sync.Products {
		poller, err := appsync.New(appsync.Params{
			Resource: string(api.ResourceProducts),
			Interval: cfg.Sync.PollInterval,
			Logger:   logg,
			Metrics:  syncMetrics,
			Marker: func(ctx context.Context) (types.ChangeMarker, error) {
				return client.ChangeMarker(ctx, api.ResourceProducts, "")
			},
			Refetch: func(ctx context.Context) error {
				_, err := application.BrowseProducts(ctx, api.ProductFilters{})
				if errors.Is(err, app.ErrStale) {
					return nil
				}
				return err
			},
		})
		if err != nil {
			return nil, err
		}
		pollers = append(pollers, poller)
	}

	if cfg.Sync.Orders {
		poller, err := appsync.New(appsync.Params{
			Resource: string(api.ResourceOrders),
			Interval: cfg.Sync.PollInterval,
			Logger:   logg,
			Metrics:  syncMetrics,
			Visible: func() bool {
				return stateStore.Token() != ""
			},
			Marker: func(ctx context.Context) (types.ChangeMarker, error) {
				return client.ChangeMarker(ctx, api.ResourceOrders, stateStore.Token())
			},
			Refetch: func(ctx context.Context) error {
				err := application.RefreshMyOrders(ctx)
				if errors.Is(err, app.ErrStale) {
					return nil
				}
				return err
			},
		})
		if err != nil {
			return nil, err
		}
		pollers = append(pollers, poller)
	}

	return pollers, nil
}

func serveMetrics(ctx context.Context, logg *logger.Logger, addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	server := &http.Server{Addr: addr, Handler: mux}

	go func() {
		<-ctx.Done()
		server.Close()
	}()

	logg.Info(logg.WithField(ctx, "addr", addr), "metrics listener started")
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "metrics listener stopped unexpectedly", err)
	}
}
