// Package app wires configuration, infrastructure and modules into a
// runnable service. Infrastructure whose URL is unset falls back to the
// in-memory stores.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"touristid/internal/platform/config"
	"touristid/internal/platform/httpserver"
	"touristid/internal/platform/kafka"
	platformmetrics "touristid/internal/platform/metrics"
	"touristid/internal/platform/postgres"
	platformredis "touristid/internal/platform/redis"
	reghandler "touristid/internal/registration/handler"
	regmetrics "touristid/internal/registration/metrics"
	regservice "touristid/internal/registration/service"
	"touristid/internal/registration/store/document"
	"touristid/internal/registration/store/registry"
	"touristid/internal/registration/store/session"
	"touristid/internal/registration/token"
	safetyhandler "touristid/internal/safety/handler"
	safetymetrics "touristid/internal/safety/metrics"
	safetyservice "touristid/internal/safety/service"
	"touristid/internal/safety/store/alert"
	"touristid/internal/safety/store/dashboard"
	httptransport "touristid/internal/transport/http"
	"touristid/pkg/platform/circuit"
	"touristid/pkg/platform/events"
	eventsmemory "touristid/pkg/platform/events/store/memory"
	"touristid/pkg/platform/events/publisher"
)

type App struct {
	Config       config.Config
	Logger       *slog.Logger
	Registration *regservice.Service
	Safety       *safetyservice.Service
	Simulator    *safetyservice.Simulator
	Router       http.Handler
	// Events holds every event when Kafka is off, and the events diverted
	// while the Kafka breaker is open otherwise.
	Events *eventsmemory.InMemoryStore

	publisher *publisher.Publisher
	closers   []func()
}

type options struct {
	registry *prometheus.Registry
}

type Option func(*options)

// WithRegistry registers metrics on reg and serves /metrics from it instead
// of the process-wide default registry.
func WithRegistry(reg *prometheus.Registry) Option {
	return func(o *options) {
		o.registry = reg
	}
}

// New connects the configured infrastructure and builds both modules.
// On error everything opened so far is closed.
func New(ctx context.Context, cfg config.Config, logger *slog.Logger, opts ...Option) (_ *App, err error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	var registerer prometheus.Registerer = prometheus.DefaultRegisterer
	metricsHandler := promhttp.Handler()
	if o.registry != nil {
		registerer = o.registry
		metricsHandler = promhttp.HandlerFor(o.registry, promhttp.HandlerOpts{})
	}

	a := &App{Config: cfg, Logger: logger}
	defer func() {
		if err != nil {
			a.Close()
		}
	}()
	health := map[string]httptransport.HealthCheck{}

	// Sessions and documents: Redis or memory.
	var sessions regservice.SessionStore = session.NewInMemory(cfg.Session.TTL)
	var documents regservice.DocumentStore = document.NewInMemory(cfg.Session.TTL)
	var registrations regservice.RegistryStore = registry.NewInMemory()
	var alerts safetyservice.AlertStore = alert.NewInMemory()
	var sink events.Sink

	rc, err := platformredis.New(ctx, cfg.Redis)
	if err != nil {
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	if rc != nil {
		a.closers = append(a.closers, func() { _ = rc.Close() })
		if err := rc.RegisterPoolMetrics(registerer); err != nil {
			return nil, fmt.Errorf("register redis metrics: %w", err)
		}
		sessions = session.NewRedis(rc.Client, cfg.Session.TTL)
		documents = document.NewRedis(rc.Client, cfg.Session.TTL)
		health["redis"] = rc.Health
		logger.InfoContext(ctx, "using redis session store")
	}

	// Registry and alerts: Postgres or memory.
	db, err := postgres.Open(ctx, cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if db != nil {
		a.closers = append(a.closers, db.Close)
		registrations = registry.NewPostgres(db.Pool)
		alerts = alert.NewPostgres(db.SQL)
		health["postgres"] = db.Health
		logger.InfoContext(ctx, "using postgres registry store")
	}

	// Events: Kafka with an in-memory fallback, or memory only.
	a.Events = eventsmemory.NewInMemoryStore()
	sink = a.Events
	ks, err := kafka.New(ctx, cfg.Kafka)
	if err != nil {
		return nil, fmt.Errorf("connect kafka: %w", err)
	}
	if ks != nil {
		a.closers = append(a.closers, ks.Close)
		sink = events.NewFallbackSink(ks, a.Events, circuit.New("kafka"), logger)
		health["kafka"] = ks.Health
		logger.InfoContext(ctx, "publishing events to kafka", "topic", cfg.Kafka.Topic)
	}
	a.publisher = publisher.NewPublisher(sink, publisher.WithLogger(logger))

	tokens, err := token.New(cfg.Session.SigningKey, cfg.Session.Issuer, cfg.Session.Audience)
	if err != nil {
		return nil, err
	}

	a.Safety, err = safetyservice.New(dashboard.NewInMemory(), alerts,
		safetyservice.WithLogger(logger),
		safetyservice.WithEventPublisher(a.publisher),
		safetyservice.WithMetrics(safetymetrics.NewWithRegisterer(registerer)),
	)
	if err != nil {
		return nil, err
	}
	a.Simulator = safetyservice.NewSimulator(a.Safety, cfg.Safety.TickInterval, logger)

	a.Registration, err = regservice.New(sessions, documents, registrations, tokens,
		regservice.WithLogger(logger),
		regservice.WithConfig(regservice.Config{
			SessionTTL:     cfg.Session.TTL,
			MaxUploadBytes: cfg.Server.MaxUploadBytes,
			IDHashKey:      cfg.Session.IDHashKey,
		}),
		regservice.WithEventPublisher(a.publisher),
		regservice.WithSafetyEnroller(a.Safety),
		regservice.WithMetrics(regmetrics.NewWithRegisterer(registerer)),
	)
	if err != nil {
		return nil, err
	}

	a.Router = httptransport.NewRouter(httptransport.Config{
		Logger:         logger,
		RequestTimeout: cfg.Server.RequestTimeout,
		Modules: []httptransport.Registrar{
			reghandler.New(a.Registration, tokens, logger, cfg.Server.MaxUploadBytes),
			safetyhandler.New(a.Safety, logger),
		},
		Health:         health,
		MetricsHandler: metricsHandler,
		HTTPMetrics:    platformmetrics.NewWithRegisterer(registerer),
	})
	return a, nil
}

// Run serves HTTP and drives the safety simulator until ctx is done, then
// shuts the server down gracefully.
func (a *App) Run(ctx context.Context) error {
	srv := httpserver.New(a.Config.Server, a.Router)
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.Logger.InfoContext(gctx, "starting touristid", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		return a.Simulator.Run(gctx)
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(gctx), a.Config.Server.ShutdownTimeout)
		defer cancel()
		a.Logger.InfoContext(shutdownCtx, "shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// Close flushes the publisher and releases infrastructure in reverse order.
func (a *App) Close() {
	if a.publisher != nil {
		_ = a.publisher.Close()
	}
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
