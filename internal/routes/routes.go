package routes

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/Otiahaill3/Mpesa-demo/internal/config"
	"github.com/Otiahaill3/Mpesa-demo/internal/daraja"
	"github.com/Otiahaill3/Mpesa-demo/internal/ledger"
	"github.com/Otiahaill3/Mpesa-demo/internal/middleware"
	"github.com/Otiahaill3/Mpesa-demo/internal/notification"
	"github.com/Otiahaill3/Mpesa-demo/internal/payments"
)

// Deps aggregates shared dependencies required to wire routes.
type Deps struct {
	Cfg    config.Config
	DB     *pgxpool.Pool
	Cache  *redis.Client
	Logger *slog.Logger

	// Gateway overrides the Daraja client when set (tests, credential-less dev).
	Gateway daraja.Gateway
}

// Setup configures middlewares and all application routes.
func Setup(app *fiber.App, d Deps) error {
	if !d.Cfg.IsDev() {
		if d.DB == nil {
			return fmt.Errorf("database is required when APP_ENV=%s", d.Cfg.AppEnv)
		}
		if d.Cache == nil {
			return fmt.Errorf("redis is required when APP_ENV=%s", d.Cfg.AppEnv)
		}
	}

	app.Use(recover.New())
	app.Use(middleware.RequestID())
	app.Use(middleware.Audit(d.Logger))

	var store ledger.Store
	if d.DB != nil {
		pg := ledger.NewPostgresStore(d.DB)
		if err := pg.EnsureSchema(context.Background()); err != nil {
			return err
		}
		store = pg
	} else {
		store = ledger.NewInMemory()
	}

	gateway := d.Gateway
	if gateway == nil {
		gateway = daraja.NewClient(d.Cfg.Daraja, d.Cache, d.Logger)
	}

	notifier := notification.NewLoggerNotifier(d.Logger)
	paymentSvc := payments.NewService(store, gateway, notifier, d.Logger)
	paymentHandler := payments.NewHandler(paymentSvc)

	RegisterHealthRoutes(app, d)

	api := app.Group("/api")

	requestPayment := api.Group("/request-payment")
	if d.Cache != nil {
		requestPayment.Use(middleware.Idempotency(d.Cache, d.Cfg.IdempotencyTTL, d.Logger))
		requestPayment.Use(middleware.PaymentRateLimit(d.Cache, 10))
	}
	requestPayment.Post("", paymentHandler.RequestPayment)

	api.Post("/mpesa-callback", paymentHandler.Callback)
	api.Get("/transactions", paymentHandler.List)
	api.Get("/transactions/download", paymentHandler.Download)

	return nil
}
