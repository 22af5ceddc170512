package app

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/julienschmidt/httprouter"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"tunestudio/internal/health"
	"tunestudio/pkg/config"
	"tunestudio/pkg/contracts"
	"tunestudio/pkg/middleware"
)

type route struct {
	method string
	path   string
}

type Application struct {
	cfg              *config.Config
	service          string
	server           *http.Server
	handler          http.Handler
	registry         *prometheus.Registry
	idempotencyStore *middleware.InMemoryIdempotencyStore
	rateLimiter      *middleware.PhoneRateLimiter
	signedRoutes     map[route]bool
	closers          []func() error
}

func NewApplication(cfg *config.Config, service string) *Application {
	a := &Application{
		cfg:          cfg,
		service:      service,
		signedRoutes: make(map[route]bool),
	}
	if cfg.MetricsEnabled {
		a.registry = prometheus.NewRegistry()
		a.registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}
	return a
}

// Registerer returns the registry served on /metrics, or nil when metrics are
// disabled.
func (a *Application) Registerer() prometheus.Registerer {
	if a.registry == nil {
		return nil
	}
	return a.registry
}

// SignRoute requires a valid site signature on method+path when a site form
// secret is configured. Must be called before SetApp.
func (a *Application) SignRoute(method, path string) {
	a.signedRoutes[route{method: method, path: path}] = true
}

// OnShutdown registers fn to run after the HTTP server has stopped.
func (a *Application) OnShutdown(fn func() error) {
	a.closers = append(a.closers, fn)
}

func (a *Application) SetApp(handlers ...contracts.Handler) {
	mux := http.NewServeMux()

	healthHandler := a.healthHandler()
	mux.Handle("/health", healthHandler)
	mux.Handle("/ready", healthHandler)
	if a.registry != nil {
		mux.Handle("/metrics", promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{Registry: a.registry}))
		a.cfg.Log.Info("Prometheus metrics exposed on /metrics")
	}
	mux.Handle("/", a.appHandler(handlers))

	a.handler = mux
	a.server = &http.Server{
		Addr:         ":" + a.cfg.Port,
		Handler:      mux,
		ReadTimeout:  a.cfg.ReadTimeout,
		WriteTimeout: a.cfg.WriteTimeout,
		IdleTimeout:  a.cfg.IdleTimeout,
	}

	a.cfg.Log.Info("HTTP server configured", "port", a.cfg.Port)
}

// Handler is the fully wired root handler.
func (a *Application) Handler() http.Handler {
	return a.handler
}

func (a *Application) healthHandler() http.Handler {
	router := httprouter.New()
	health.NewHandler(a.service, a.cfg.Client.Mongo, a.cfg.Log).RegisterRoutes(router)

	a.cfg.Log.Info("Health endpoints configured with minimal middleware (Recovery + Logging only)")
	return middleware.Chain(router,
		middleware.Recovery(a.cfg.Log),
		middleware.RequestLogging(a.cfg.Log),
	)
}

func (a *Application) appHandler(handlers []contracts.Handler) http.Handler {
	router := httprouter.New()
	for _, h := range handlers {
		h.RegisterRoutes(router)
	}

	a.idempotencyStore = middleware.NewInMemoryIdempotencyStore(a.cfg.IdempotencyTTL)
	a.rateLimiter = middleware.NewPhoneRateLimiter(
		a.cfg.RateLimitRequests,
		a.cfg.RateLimitWindow,
		middleware.FormPhoneExtractor,
		a.cfg.Log,
	)

	chain := []middleware.Middleware{
		middleware.Recovery(a.cfg.Log),
		middleware.RequestLogging(a.cfg.Log),
	}
	if a.registry != nil {
		chain = append(chain, middleware.NewHTTPMetrics(a.registry).Middleware())
	}
	chain = append(chain,
		middleware.MaxRequestSize(int64(a.cfg.MaxRequestSize)),
		middleware.ContentTypeValidation(a.cfg.Log),
	)
	if a.cfg.SiteFormSecret != "" && len(a.signedRoutes) > 0 {
		chain = append(chain, middleware.SiteSignatureVerification(a.cfg.SiteFormSecret, a.cfg.Log, a.isSignedRoute))
		a.cfg.Log.Info("Site form signature verification enabled", "routes", len(a.signedRoutes))
	}
	chain = append(chain,
		middleware.PhoneRateLimit(a.rateLimiter),
		middleware.RequestTimeout(a.cfg.RequestTimeout),
		middleware.Idempotency(a.idempotencyStore, middleware.HeaderIdempotencyKey),
	)

	a.cfg.Log.Info("Application endpoints configured with full middleware stack", "middleware_count", len(chain))
	return middleware.Chain(router, chain...)
}

func (a *Application) isSignedRoute(r *http.Request) bool {
	return a.signedRoutes[route{method: r.Method, path: r.URL.Path}]
}

func (a *Application) Run() {
	serverErrors := make(chan error, 1)

	go func() {
		a.cfg.Log.Info("Starting HTTP server", "address", a.server.Addr)
		serverErrors <- a.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			a.cfg.Log.Fatal("HTTP server failed", "error", err)
		}

	case sig := <-shutdown:
		a.cfg.Log.Info("Shutdown signal received", "signal", sig)
		a.gracefulShutdown()
	}
}

func (a *Application) gracefulShutdown() {
	a.cfg.Log.Info("Starting graceful shutdown...")

	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()

	if err := a.server.Shutdown(ctx); err != nil {
		a.cfg.Log.Error("Server shutdown failed", "error", err)
		if err := a.server.Close(); err != nil {
			a.cfg.Log.Error("Could not stop server gracefully", "error", err)
		}
	}

	a.Close()
	a.cfg.GracefulShutdown()

	a.cfg.Log.Info("Server stopped gracefully")
}

// Close stops background workers and runs the shutdown hooks. It does not
// touch the HTTP server or the database connection.
func (a *Application) Close() {
	a.cfg.Log.Info("Stopping background workers...")
	if a.idempotencyStore != nil {
		a.idempotencyStore.Stop()
	}
	if a.rateLimiter != nil {
		a.rateLimiter.Stop()
	}
	for _, fn := range a.closers {
		if err := fn(); err != nil {
			a.cfg.Log.Error("Shutdown hook failed", "error", err)
		}
	}
	a.closers = nil
}
