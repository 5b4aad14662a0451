// Package app wires the storefront's dependencies and runs the API server.
package app

import (
	"context"
	"net/http"
	"time"

	"github.com/go-faster/errors"
	sdkapp "github.com/go-faster/sdk/app"
	"github.com/go-faster/sdk/zctx"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/trendmart/storefront/internal/cache"
	"github.com/trendmart/storefront/internal/domain/auth"
	"github.com/trendmart/storefront/internal/domain/cart"
	"github.com/trendmart/storefront/internal/domain/order"
	"github.com/trendmart/storefront/internal/domain/product"
	"github.com/trendmart/storefront/internal/domain/recommend"
	"github.com/trendmart/storefront/internal/domain/user"
	"github.com/trendmart/storefront/internal/domain/wishlist"
	"github.com/trendmart/storefront/internal/gateway"
	"github.com/trendmart/storefront/internal/handler"
	"github.com/trendmart/storefront/internal/repository"
	"github.com/trendmart/storefront/pkg/health"
	"github.com/trendmart/storefront/pkg/httpmiddleware"
)

// Run creates all dependencies, starts the HTTP server, and handles graceful
// shutdown. It is the single wiring point for the application.
func Run(ctx context.Context, lg *zap.Logger, m *sdkapp.Telemetry, cfg *Config) error {
	lg.Info("Initializing", zap.String("addr", cfg.Addr))

	// PostgreSQL pool + migrations.
	pool, err := repository.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return errors.Wrap(err, "create db pool")
	}
	defer pool.Close()

	if err := repository.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	// Health check service.
	healthSvc := health.New()
	healthSvc.AddReadinessCheck("postgres", 5*time.Second, health.DatabaseCheck(pool))
	healthSvc.AddLivenessCheck("goroutines", time.Second, health.GoroutineCountCheck(10000))

	// Repositories.
	productRepo := repository.NewProductRepository(pool)
	userRepo := repository.NewUserRepository(pool)
	cartRepo := repository.NewCartRepository(pool)
	orderRepo := repository.NewOrderRepository(pool)
	wishlistRepo := repository.NewWishlistRepository(pool)

	// Seed the product id index from the catalog.
	ids, err := productRepo.ListIDs(ctx)
	if err != nil {
		return errors.Wrap(err, "list product ids")
	}
	index := product.NewIDIndex(ids)
	lg.Info("Product id index ready", zap.Int("ids", len(ids)))

	// Auth.
	tokens, err := auth.NewTokenService([]byte(cfg.JWT.Secret), cfg.JWT.TTL)
	if err != nil {
		return errors.Wrap(err, "create token service")
	}

	// Pricing rules.
	rules, err := cfg.Pricing.Rules()
	if err != nil {
		return errors.Wrap(err, "parse pricing config")
	}

	// Recommendation cache: shared redis when configured, else in-process.
	var recCache recommend.Cache
	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer func() {
			_ = client.Close()
		}()
		recCache = cache.NewRedis(client, cfg.Recommend.TTL)
		lg.Info("Using redis recommendation cache", zap.String("addr", cfg.Redis.Addr))
	} else {
		recCache = cache.NewMemory(cfg.Recommend.TTL)
		lg.Info("Using in-memory recommendation cache")
	}

	var recProvider recommend.Provider = staticProvider{}
	if cfg.Recommend.URL != "" {
		recProvider = gateway.NewRecommender(cfg.Recommend.URL, cfg.Recommend.APIKey, nil)
	}

	// Domain services.
	userSvc := user.NewService(userRepo, auth.BcryptHasher{}, tokens)
	cartSvc := cart.NewService(cartRepo, productRepo, index)
	orderSvc := order.NewService(productRepo, index, orderRepo, rules)
	wishlistSvc := wishlist.NewService(wishlistRepo, productRepo, index, cartSvc)
	recSvc := recommend.NewService(recProvider, recCache)

	// HTTP handlers.
	h := handler.NewHandler(productRepo, index, userSvc, cartSvc, orderSvc, wishlistSvc, recSvc,
		handler.NewSecurity(tokens))

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	h.Register(e)

	// Mux: health endpoints + API routes on one server.
	mux := http.NewServeMux()
	mux.HandleFunc("/livez", healthSvc.LiveEndpoint)
	mux.HandleFunc("/readyz", healthSvc.ReadyEndpoint)
	mux.Handle("/api/", e)

	server := &http.Server{
		ReadHeaderTimeout: time.Second,
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
		Addr:              cfg.Addr,
		Handler: httpmiddleware.Wrap(mux,
			httpmiddleware.Recovery(),
			httpmiddleware.CORS(httpmiddleware.CORSConfig{
				AllowOrigins:     cfg.CORS.Origins,
				AllowHeaders:     []string{"Content-Type", "Authorization"},
				AllowCredentials: cfg.CORS.AllowCredentials,
				MaxAge:           86400,
			}),
			httpmiddleware.RateLimit(ctx, httpmiddleware.RateLimitConfig{
				Max:    cfg.RateLimit.Max,
				Window: cfg.RateLimit.Window,
			}),
			httpmiddleware.RequestID(),
			httpmiddleware.Logging(zctx.From(ctx)),
			httpmiddleware.Instrument("storefront-api", m.TracerProvider(), m.MeterProvider()),
		),
	}

	healthSvc.SetReady(true)

	// Graceful shutdown: wait for context cancellation, drain, then stop.
	shutdownDone := make(chan struct{})
	go func() {
		<-ctx.Done()
		healthSvc.SetReady(false)
		lg.Info("Readiness set to false, draining", zap.Duration("delay", cfg.Graceful.ReadinessDelay))
		time.Sleep(cfg.Graceful.ReadinessDelay)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Graceful.ShutdownTimeout)
		defer cancel()

		lg.Info("Shutting down server", zap.Duration("timeout", cfg.Graceful.ShutdownTimeout))
		if err := server.Shutdown(shutdownCtx); err != nil {
			lg.Error("Server shutdown error", zap.Error(err))
		}
		close(shutdownDone)
	}()

	lg.Info("Server listening", zap.String("addr", cfg.Addr))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "server")
	}
	<-shutdownDone
	return nil
}

// staticProvider serves the default list when no upstream is configured.
type staticProvider struct{}

func (staticProvider) Recommend(context.Context, string) ([]recommend.Item, error) {
	return recommend.DefaultItems(), nil
}
