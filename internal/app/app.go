package app

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/app"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/xenking/kart-storefront/internal/domain/order"
	"github.com/xenking/kart-storefront/internal/domain/product"
	"github.com/xenking/kart-storefront/internal/handler"
	"github.com/xenking/kart-storefront/internal/seed"
	"github.com/xenking/kart-storefront/internal/store"
	"github.com/xenking/kart-storefront/pkg/health"
	"github.com/xenking/kart-storefront/pkg/httpmiddleware"
)

// Run creates all dependencies, starts the HTTP server, and handles graceful
// shutdown. It is the single wiring point for the application.
func Run(ctx context.Context, lg *zap.Logger, m *app.Telemetry, cfg *Config) error {
	lg.Info("Initializing",
		zap.String("addr", cfg.Addr),
		zap.Bool("strict_status", cfg.Orders.StrictStatus),
		zap.Stringer("tax_rate", cfg.TaxRateDecimal()),
	)

	products, err := loadCatalog(lg, cfg.CatalogFile)
	if err != nil {
		return err
	}

	// State store, seeded fresh on every start.
	st, err := store.New(store.Options{
		Products:      products,
		Orders:        seed.Orders(products, time.Now()),
		StrictStatus:  cfg.Orders.StrictStatus,
		Logger:        lg.Named("store"),
		MeterProvider: m.MeterProvider(),
	})
	if err != nil {
		return errors.Wrap(err, "create store")
	}

	orderService := order.NewService(order.ServiceConfig{
		TaxRate:        decimal.NewNullDecimal(cfg.TaxRateDecimal()),
		TracerProvider: m.TracerProvider(),
	}, st)

	// Health check service.
	healthSvc := health.New()
	healthSvc.AddReadinessCheck("store", time.Second, st.Ping)
	healthSvc.AddLivenessCheck("goroutines", time.Second, health.GoroutineCountCheck(10000))
	healthSvc.AddLivenessCheck("heap", time.Second, health.HeapCheck(1<<30))
	healthSvc.Start(ctx, 10*time.Second)

	h := handler.New(handler.Config{
		EventBuffer:    cfg.Events.Buffer,
		AllowedOrigins: cfg.CORS.Origins,
	}, st, st, st, orderService, st.Events())

	server := &http.Server{
		ReadHeaderTimeout: time.Second,
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
		Addr:              cfg.Addr,
		Handler:           newRouter(ctx, lg, m, cfg, h, healthSvc),
	}
	server.RegisterOnShutdown(h.Shutdown)
	healthSvc.SetReady(true)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		lg.Info("Server listening", zap.String("addr", cfg.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return errors.Wrap(err, "server")
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		defer healthSvc.Stop()

		// Drain: fail readiness first so the load balancer stops routing here.
		healthSvc.SetReady(false)
		if ctx.Err() != nil {
			lg.Info("Readiness set to false, draining", zap.Duration("delay", cfg.Graceful.ReadinessDelay))
			time.Sleep(cfg.Graceful.ReadinessDelay)
		}

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cfg.Graceful.ShutdownTimeout)
		defer cancel()

		lg.Info("Shutting down server", zap.Duration("timeout", cfg.Graceful.ShutdownTimeout))
		if err := server.Shutdown(shutdownCtx); err != nil {
			return errors.Wrap(err, "shutdown")
		}
		return nil
	})
	return g.Wait()
}

// newRouter assembles the middleware stack, probes and API routes.
func newRouter(
	ctx context.Context,
	lg *zap.Logger,
	tel httpmiddleware.Telemetry,
	cfg *Config,
	h *handler.Handler,
	healthSvc *health.Health,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		httpmiddleware.InjectLogger(lg),
		httpmiddleware.RequestID(),
		httpmiddleware.LogRequests(),
		httpmiddleware.Recovery(),
		httpmiddleware.Labeler(),
	)
	r.Get("/livez", healthSvc.LiveEndpoint)
	r.Get("/readyz", healthSvc.ReadyEndpoint)
	r.Group(func(r chi.Router) {
		r.Use(httpmiddleware.RateLimitWithCleanup(ctx, httpmiddleware.RateLimitConfig{
			RPS:   cfg.RateLimit.RPS,
			Burst: cfg.RateLimit.Burst,
		}))
		h.Register(r)
	})

	return httpmiddleware.Wrap(r,
		httpmiddleware.Instrument("storefront", tel),
		httpmiddleware.CORS(httpmiddleware.CORSConfig{
			AllowOrigins:     cfg.CORS.Origins,
			AllowHeaders:     []string{"Content-Type", httpmiddleware.RequestIDHeader},
			ExposeHeaders:    []string{httpmiddleware.RequestIDHeader, "Location"},
			AllowCredentials: cfg.CORS.AllowCredentials,
			MaxAge:           86400,
		}),
	)
}

// loadCatalog returns the seed catalog: the file when one is configured,
// the built-in menu otherwise.
func loadCatalog(lg *zap.Logger, path string) ([]product.Product, error) {
	if path == "" {
		return seed.Products(), nil
	}
	products, err := seed.LoadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "load catalog %s", path)
	}
	lg.Info("Loaded catalog", zap.String("file", path), zap.Int("products", len(products)))
	return products, nil
}
