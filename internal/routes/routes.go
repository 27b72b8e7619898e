package routes

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/TechLead-War/wallet/internal/config"
	"github.com/TechLead-War/wallet/internal/identity"
	"github.com/TechLead-War/wallet/internal/logging"
	"github.com/TechLead-War/wallet/internal/metrics"
	"github.com/TechLead-War/wallet/internal/middleware"
	"github.com/TechLead-War/wallet/internal/notification"
	"github.com/TechLead-War/wallet/internal/wallet"
)

// Deps aggregates shared dependencies required to wire routes. DB and Cache
// may be nil in development, in which case in-memory backends stand in and
// cache-backed middlewares are skipped.
type Deps struct {
	Cfg      config.Config
	DB       *pgxpool.Pool
	Cache    *redis.Client
	Store    wallet.Store
	Identity *identity.Service
	Logger   *slog.Logger
}

// Setup configures middlewares and all application routes.
func Setup(app *fiber.App, d Deps) error {
	if d.Store == nil {
		return fmt.Errorf("wallet store is required")
	}
	if d.Identity == nil {
		return fmt.Errorf("identity service is required")
	}
	if !d.Cfg.IsDev() {
		if d.DB == nil {
			return fmt.Errorf("database is required when APP_ENV=%s", d.Cfg.Env)
		}
		if d.Cache == nil {
			return fmt.Errorf("redis is required when APP_ENV=%s", d.Cfg.Env)
		}
	}

	app.Use(recover.New())
	app.Use(middleware.RequestID())
	app.Use(logger.New(logger.Config{
		Format:     "[${time}] ${status} -  ${latency} ${method} ${path}\n",
		TimeFormat: "15:04:05",
		TimeZone:   "Local",
	}))
	app.Use(middleware.Audit(d.Logger))
	if d.Cache != nil {
		app.Use(middleware.Idempotency(d.Cache, d.Cfg.IdempotencyTTL, d.Logger))
	}

	RegisterHealthRoutes(app, d)
	app.Get("/metrics", adaptor.HTTPHandler(metrics.Handler()))

	engine := wallet.NewService(d.Store, wallet.Options{
		SeedBalance:     d.Cfg.SeedBalance,
		ConflictRetries: d.Cfg.ConflictRetries,
		Notifier:        notification.NewLoggerNotifier(logging.Component(d.Logger, "notification")),
	})
	walletHandler := wallet.NewHandler(engine)
	identityHandler := identity.NewHandler(d.Identity)

	api := app.Group("/api/v1")
	api.Get("/ping", func(c *fiber.Ctx) error {
		return c.Status(http.StatusOK).JSON(fiber.Map{
			"status":    "ok",
			"timestamp": time.Now().UTC().Format(time.RFC3339Nano),
		})
	})

	RegisterIdentityRoutes(api, identityHandler, middleware.InitRateLimit(d.Cache, 5))

	protected := api.Group("", middleware.TokenAuth(d.Identity))
	RegisterWalletRoutes(protected, walletHandler)

	return nil
}
