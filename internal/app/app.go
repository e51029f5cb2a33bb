package app

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/alex-user-go/sheltersignal/internal/config"
	"github.com/alex-user-go/sheltersignal/internal/forecast"
	"github.com/alex-user-go/sheltersignal/internal/handler"
	"github.com/alex-user-go/sheltersignal/internal/insights"
	"github.com/alex-user-go/sheltersignal/internal/insights/cache"
	"github.com/alex-user-go/sheltersignal/internal/insights/ratelimit"
	"github.com/alex-user-go/sheltersignal/internal/llm"
	"github.com/alex-user-go/sheltersignal/internal/middleware"
	"github.com/alex-user-go/sheltersignal/internal/narrative"
	"github.com/alex-user-go/sheltersignal/internal/obs"
	"github.com/alex-user-go/sheltersignal/internal/providers"
	"github.com/alex-user-go/sheltersignal/internal/proxy"
)

const shutdownTimeout = 10 * time.Second

// Backend is the wired aggregation service.
type Backend struct {
	Handler http.Handler
	Metrics *obs.Metrics
	closers []func()
}

// Close releases the cache, rate limiter and LLM client.
func (b *Backend) Close() {
	for i := len(b.closers) - 1; i >= 0; i-- {
		b.closers[i]()
	}
}

// NewAggregator wires the provider clients, forecast and narrative into an Aggregator.
// The returned func releases the LLM client.
func NewAggregator(ctx context.Context, cfg *config.Config, metrics *obs.Metrics, logger *slog.Logger) (*insights.Aggregator, func(), error) {
	if cfg.Rentcast.APIKey == "" {
		logger.Warn("RENTCAST_API_KEY not set, every property lookup will fail")
	}

	llmClient, err := llm.NewClient(ctx, cfg.LLM)
	if err != nil {
		return nil, nil, err
	}
	release := func() {}
	if closer, ok := llmClient.(io.Closer); ok {
		release = func() {
			if err := closer.Close(); err != nil {
				logger.Warn("failed to close llm client", "error", err)
			}
		}
	}
	if llmClient == nil {
		logger.Warn("llm not configured, ai summaries disabled", "provider", cfg.LLM.Provider)
	}

	sources := insights.Sources{
		Property:     providers.NewRentcast(cfg.Rentcast.APIKey, cfg.Rentcast.BaseURL, cfg.Rentcast.Timeout.Std(), logger),
		Details:      providers.NewZillow(cfg.Zillow.APIKey, cfg.Zillow.BaseURL, cfg.Zillow.Host, cfg.Zillow.Timeout.Std()),
		Demographics: providers.NewCensus(cfg.Census.APIKey, cfg.Census.BaseURL, cfg.Census.Timeout.Std()),
		Market:       providers.NewFRED(cfg.FRED.APIKey, cfg.FRED.BaseURL, cfg.FRED.Timeout.Std()),
		News:         providers.NewNews(cfg.News.APIKey, cfg.News.BaseURL, cfg.News.Timeout.Std()),
	}
	opts := insights.Options{
		Timeout:        cfg.Server.LookupTimeout.Std(),
		MarketSeries:   cfg.FRED.SeriesID,
		MarketLookback: cfg.FRED.Lookback.Std(),
		NewsQuery:      cfg.News.Query,
		NewsLimit:      cfg.News.Limit,
	}

	agg := insights.NewAggregator(
		sources,
		forecast.New(),
		narrative.NewSummarizer(llmClient, logger),
		opts,
		metrics,
		logger,
	)
	return agg, release, nil
}

// NewBackend builds the backend HTTP handler with its routes and middleware.
func NewBackend(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Backend, error) {
	metrics := obs.NewMetrics(logger)

	aggregator, releaseLLM, err := NewAggregator(ctx, cfg, metrics, logger)
	if err != nil {
		return nil, err
	}
	b := &Backend{Metrics: metrics, closers: []func(){releaseLLM}}

	lookupCache := cache.NewCache(cfg.Server.CacheTTL.Std())
	b.closers = append(b.closers, lookupCache.Close)

	// A zero rate disables limiting.
	var limiter *ratelimit.Limiter
	if cfg.Server.RateLimit > 0 {
		limiter = ratelimit.New(cfg.Server.RateLimit, cfg.Server.RateBurst)
		b.closers = append(b.closers, limiter.Close)
	}

	h := handler.New(aggregator, lookupCache, limiter, metrics, logger)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", h.RootHandler)
	mux.HandleFunc("GET /property", h.PropertyHandler)
	mux.HandleFunc("GET /healthz", obs.HealthHandler(logger))
	mux.HandleFunc("GET /metrics", metrics.MetricsHandler())

	b.Handler = middleware.Chain(mux,
		middleware.Recover(logger),
		middleware.Logging(logger),
		middleware.CORS(cfg.Server.AllowedOrigins),
	)
	return b, nil
}

// NewProxy builds the public proxy HTTP handler.
func NewProxy(cfg *config.Config, logger *slog.Logger) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/api/property", proxy.New(cfg.Proxy.BackendURL, cfg.Proxy.Timeout.Std(), logger))
	mux.HandleFunc("GET /healthz", obs.HealthHandler(logger))

	return middleware.Chain(mux,
		middleware.Recover(logger),
		middleware.Logging(logger),
	)
}

// RunServer serves the backend until ctx is cancelled.
func RunServer(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	backend, err := NewBackend(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer backend.Close()

	srv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      backend.Handler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.Server.LookupTimeout.Std() + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return serve(ctx, srv, "backend", logger)
}

// RunProxy serves the proxy until ctx is cancelled.
func RunProxy(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	srv := &http.Server{
		Addr:         cfg.Proxy.Addr,
		Handler:      NewProxy(cfg, logger),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.Proxy.Timeout.Std() + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return serve(ctx, srv, "proxy", logger)
}

// serve runs srv until ctx is done, then shuts it down gracefully.
func serve(ctx context.Context, srv *http.Server, name string, logger *slog.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting server", "server", name, "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("server error", "server", name, "error", err)
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down server", "server", name)
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", "server", name, "error", err)
		return err
	}

	logger.Info("server stopped", "server", name)
	return nil
}
