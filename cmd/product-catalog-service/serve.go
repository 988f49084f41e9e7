package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/juju/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/fairyhunter13/product-catalog-service/internal/catalog"
	"github.com/fairyhunter13/product-catalog-service/internal/config"
	httpapi "github.com/fairyhunter13/product-catalog-service/internal/http"
	"github.com/fairyhunter13/product-catalog-service/internal/obs"
	"github.com/fairyhunter13/product-catalog-service/internal/ratelimit"
	"github.com/fairyhunter13/product-catalog-service/internal/store"
)

const cleanupInterval = time.Minute

func newRootCmd() *cobra.Command {
	v := config.New()
	cmd := &cobra.Command{
		Use:           "product-catalog-service",
		Short:         "In-memory product catalog over HTTP",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), v)
		},
	}
	f := cmd.PersistentFlags()
	f.String("addr", "", "listen address (HTTP_ADDR)")
	f.String("log-level", "", "debug, info, warn or error (LOG_LEVEL)")
	f.String("config", "", "optional config file, .env or yaml (CONFIG_FILE)")
	f.Bool("no-seed", false, "start with an empty catalog")
	_ = v.BindPFlag(config.KeyHTTPAddr, f.Lookup("addr"))
	_ = v.BindPFlag(config.KeyLogLevel, f.Lookup("log-level"))
	_ = v.BindPFlag("CONFIG_FILE", f.Lookup("config"))
	cmd.PreRunE = func(cmd *cobra.Command, _ []string) error {
		if noSeed, _ := cmd.Flags().GetBool("no-seed"); noSeed {
			v.Set(config.KeySeedCatalog, false)
		}
		return nil
	}

	serve := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server (default)",
		RunE:  cmd.RunE,
	}
	serve.PreRunE = cmd.PreRunE
	cmd.AddCommand(serve)
	return cmd
}

func runServe(ctx context.Context, v *viper.Viper) error {
	if err := config.LoadFile(v, v.GetString("CONFIG_FILE")); err != nil {
		return errors.Trace(err)
	}
	cfg, err := config.FromViper(v)
	if err != nil {
		return errors.Trace(err)
	}
	obs.InitLogger(cfg.LogLevel)
	obs.Logger.Info("service_starting", "seed_catalog", cfg.SeedCatalog)

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st := store.New()
	if cfg.SeedCatalog {
		st = store.NewSeeded()
	}
	metrics := obs.NewMetrics()
	svc := catalog.NewService(st, metrics)

	limiter, closeLimiter, err := buildLimiter(ctx, cfg, metrics)
	if err != nil {
		return errors.Trace(err)
	}
	defer closeLimiter()

	app := httpapi.NewApp(cfg, svc, metrics, limiter)
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           httpapi.NewRouter(app),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		obs.Logger.Info("http_listen", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		if err != nil {
			return errors.Annotate(err, "http server")
		}
	case <-ctx.Done():
		obs.Logger.Info("shutdown_signal")
	}

	ctxSrv, cancelSrv := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancelSrv()
	if err := srv.Shutdown(ctxSrv); err != nil {
		obs.Logger.Error("http_shutdown_error", "error", err)
	}
	obs.Logger.Info("service_stopped")
	return nil
}

// buildLimiter returns a nil limiter when rate limiting is off. The returned
// func releases backend resources.
func buildLimiter(ctx context.Context, cfg config.Config, m *obs.Metrics) (*ratelimit.Limiter, func(), error) {
	if !cfg.RateLimitEnabled {
		return nil, func() {}, nil
	}
	rlCfg := ratelimit.Config{MaxRequests: cfg.RateLimitMax, Window: cfg.RateLimitWindow}
	switch cfg.RateLimitBackend {
	case config.BackendRedis:
		rb := ratelimit.NewRedisBackend(cfg.RedisAddr)
		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		defer cancel()
		if err := rb.Ping(pingCtx); err != nil {
			_ = rb.Close()
			return nil, nil, errors.Annotatef(err, "connecting to redis at %s", cfg.RedisAddr)
		}
		obs.Logger.Info("rate_limit_enabled", "backend", "redis", "addr", cfg.RedisAddr,
			"max_requests", cfg.RateLimitMax, "window", cfg.RateLimitWindow.String())
		return httpapi.NewLimiter(rlCfg, rb, m), func() { _ = rb.Close() }, nil
	default:
		mb := ratelimit.NewMemoryBackend()
		go mb.RunCleanup(ctx, cleanupInterval)
		obs.Logger.Info("rate_limit_enabled", "backend", "memory",
			"max_requests", cfg.RateLimitMax, "window", cfg.RateLimitWindow.String())
		return httpapi.NewLimiter(rlCfg, mb, m), func() {}, nil
	}
}
