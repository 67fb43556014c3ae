package main

import (
	"context"
	"database/sql"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/swagger"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"storefront/docs"
	"storefront/internal/aggregate"
	"storefront/internal/backend"
	"storefront/internal/config"
	"storefront/internal/database"
	"storefront/internal/database/migration"
	handlers "storefront/internal/http/handler"
	"storefront/internal/http/middleware"
	"storefront/internal/logging"
	"storefront/internal/otel"
	"storefront/internal/ratelimit"
	"storefront/internal/repository"
	"storefront/internal/service"
	"storefront/internal/storage"
	"storefront/internal/store"
	"storefront/internal/store/cache"
	"storefront/internal/store/memory"
	"storefront/internal/store/postgres"
)

// @title Storefront API
// @version 1.0
// @BasePath /
func main() {
	os.Exit(run())
}

func run() int {
	// Load configuration from environment variables (.env auto-loaded if present)
	cfg := config.Load()
	logging.SetLocation(cfg.Location())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := otel.Init(ctx)
	if err != nil {
		logging.Error("main", "tracing_init_failed", err, nil)
	} else {
		defer shutdownTracing(context.Background())
	}

	// The fallback dataset is always loaded; the live store is optional
	fallback := memory.NewStores(memory.MustDataset())

	db, live, liveErr := openLive(ctx, cfg.Backend)
	if db != nil {
		defer db.Close()
	}

	var rdb *redis.Client
	if cfg.Redis.Enabled() {
		if rdb, err = cache.ConnectRedis(cfg.Redis); err != nil {
			logging.Warn("main", "redis_unavailable", map[string]any{"error_message": err.Error()})
			rdb = nil
		} else {
			defer rdb.Close()
		}
	}
	if live != nil && rdb != nil {
		live = cache.Wrap(live, rdb, time.Duration(cfg.Redis.ProductCacheTTL)*time.Second)
	}

	selMetrics, err := backend.NewMetrics(prometheus.DefaultRegisterer)
	if err != nil {
		logging.Error("main", "metrics_init_failed", err, nil)
		return 1
	}
	sel := backend.New(cfg.Backend, live, fallback, backend.WithMetrics(selMetrics))
	if liveErr != nil && live != nil {
		sel.ForceFallback(liveErr.Error())
	}

	repos := repository.New(sel)

	var limiter ratelimit.Limiter = ratelimit.NewMemory(cfg.RateLimit)
	if rdb != nil {
		limiter = ratelimit.NewRedis(rdb, cfg.RateLimit)
	}

	var images service.ProductImageService
	if cfg.MinIO.Enabled() {
		objStore, err := storage.NewMinIO(ctx, cfg.MinIO)
		if err != nil {
			logging.Error("main", "object_storage_unavailable", err, nil)
		} else {
			images = service.NewProductImageService(objStore, repos.Products)
		}
	}

	promMiddleware, err := middleware.NewPrometheusMiddleware(prometheus.DefaultRegisterer)
	if err != nil {
		logging.Error("main", "metrics_init_failed", err, nil)
		return 1
	}

	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler(),
	})

	app.Use(otelfiber.Middleware())
	// RequestID middleware adds/propagates X-Request-ID and stores it in context
	app.Use(middleware.RequestID())
	app.Use(middleware.Logger())
	app.Use(promMiddleware.Handler())
	app.Use(middleware.ResolveIdentity())

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// Swagger UI with dynamic host and scheme
	app.Get("/swagger/*", func(c *fiber.Ctx) error {
		scheme := c.Protocol()
		if proto := c.Get("X-Forwarded-Proto"); proto != "" {
			scheme = strings.Split(proto, ",")[0]
		}

		docs.SwaggerInfo.Host = c.Get("Host")
		docs.SwaggerInfo.Schemes = []string{scheme}

		return swagger.HandlerDefault(c)
	})

	handlers.RegisterRoutes(app, handlers.Deps{
		Repos:     repos,
		Selector:  sel,
		Backend:   cfg.Backend,
		DB:        db,
		Images:    images,
		Limiter:   limiter,
		Dashboard: aggregate.OptionsFrom(cfg.Dashboard),
	})

	go func() {
		<-ctx.Done()
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			logging.Error("main", "shutdown_failed", err, nil)
		}
	}()

	logging.Info("main", "server_starting", map[string]any{
		"port":         cfg.Port,
		"backend_mode": sel.Mode().String(),
	})
	if err := app.Listen(":" + cfg.Port); err != nil {
		logging.Error("main", "server_failed", err, nil)
		return 1
	}
	return 0
}

// openLive connects the live database when the backend configuration passes
// the probe. A nil store set means the selector starts in FALLBACK; a
// non-nil error with a store set means the database is reachable but not
// usable yet.
func openLive(ctx context.Context, cfg config.BackendConfig) (*sql.DB, *store.Set, error) {
	if err := backend.Probe(cfg); err != nil {
		logging.Warn("main", "live_backend_skipped", map[string]any{"reason": err.Error()})
		return nil, nil, nil
	}

	db, err := database.NewPostgres(cfg)
	if err != nil {
		logging.Error("main", "db_connect_failed", err, nil)
		return nil, nil, nil
	}
	live := postgres.NewStores(db)

	if cfg.AutoMigrate {
		if err := migration.EnsureMigrated(ctx, db, database.Host(cfg)); err != nil {
			return db, live, err
		}
	}
	return db, live, nil
}
