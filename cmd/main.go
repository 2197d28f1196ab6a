package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/scoregraph/scoregraph/internal/adapters/graphstore"
	"github.com/scoregraph/scoregraph/internal/adapters/http/api"
	"github.com/scoregraph/scoregraph/internal/adapters/http/site"
	"github.com/scoregraph/scoregraph/internal/adapters/http/swagger"
	engine "github.com/scoregraph/scoregraph/internal/app"
	"github.com/scoregraph/scoregraph/internal/config"
	"github.com/scoregraph/scoregraph/pkg/logger"
	"github.com/scoregraph/scoregraph/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout       = 10 * time.Second
	writeTimeout      = 30 * time.Second
	idleTimeout       = 60 * time.Second
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 30 * time.Second
)

func main() {
	// Disable default Go metrics collection; the engine registry carries its
	// own metrics.
	prometheus.Unregister(collectors.NewGoCollector())
	prometheus.Unregister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}
	log := logger.Get()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		return
	}

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	store, err := graphstore.NewExecutor(cfg.Neo4jURI, cfg.Neo4jUsername, cfg.Neo4jPassword, cfg.Neo4jDatabase)
	if err != nil {
		os.Stderr.WriteString("failed to create graph store: " + err.Error() + "\n")
		return
	}
	defer func() {
		if err := store.Close(context.Background()); err != nil {
			log.Error(context.Background(), "graph store close failed", logger.Error(err))
		}
	}()

	if err := store.Verify(ctx); err != nil {
		// Keep serving; /healthz degrades until the store comes back.
		log.Warn(ctx, "graph store unreachable at startup", logger.Error(err))
	}

	eng := engine.New(
		engine.WithRunner(store),
		engine.WithVerifier(store),
		engine.WithLogger(log),
		engine.WithQueryTimeout(time.Duration(cfg.QueryTimeoutMS)*time.Millisecond),
		engine.WithTopLimit(cfg.TopLimit),
		engine.WithTeamFanout(cfg.TeamFanout),
	)

	// HTTP mux and routes.
	mux := http.NewServeMux()

	swagger.Register(ctx, mux)
	api.NewServer(eng, eng).Register(ctx, mux)
	mux.Handle("/metrics", promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{}))
	// Landing page last; it owns the catch-all route.
	site.Register(ctx, mux)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		log.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			os.Stderr.WriteString("HTTP server failed: " + err.Error() + "\n")
		}
	}()

	<-ctx.Done()
	log.Info(ctx, "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "server shutdown failed", logger.Error(err))
	}

	log.Info(ctx, "server stopped")
}
