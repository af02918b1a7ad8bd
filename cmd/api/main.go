package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/redis/go-redis/v9"
	"golang.org/x/text/language"

	"github.com/tauntify/ASPMS-PRO-sub002/internal/application/auth"
	"github.com/tauntify/ASPMS-PRO-sub002/internal/application/billing"
	"github.com/tauntify/ASPMS-PRO-sub002/internal/application/export"
	"github.com/tauntify/ASPMS-PRO-sub002/internal/application/workspace"
	"github.com/tauntify/ASPMS-PRO-sub002/internal/domain/repository"
	"github.com/tauntify/ASPMS-PRO-sub002/internal/domain/subscription"
	"github.com/tauntify/ASPMS-PRO-sub002/internal/infrastructure/cache"
	"github.com/tauntify/ASPMS-PRO-sub002/internal/infrastructure/postgres"
	"github.com/tauntify/ASPMS-PRO-sub002/internal/infrastructure/report"
	httpRouter "github.com/tauntify/ASPMS-PRO-sub002/internal/interfaces/http"
	"github.com/tauntify/ASPMS-PRO-sub002/pkg/config"
	"github.com/tauntify/ASPMS-PRO-sub002/pkg/logger"
	"github.com/tauntify/ASPMS-PRO-sub002/pkg/money"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   cfg.App.LogLevel,
		Service: cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	if cfg.JWT.Secret == "" {
		log.Fatal().Msg("JWT_SECRET es obligatorio")
	}

	lifecycle, err := subscription.NewLifecycle(billing.PlanFromConfig(cfg.Plan))
	if err != nil {
		log.Fatal().Err(err).Msg("plan inválido")
	}
	formatter, err := money.NewFormatter(cfg.Plan.Currency, language.English)
	if err != nil {
		log.Fatal().Err(err).Msg("moneda del plan")
	}

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	if err := postgres.Migrate(ctx, pool); err != nil {
		log.Fatal().Err(err).Msg("aplicar esquema")
	}

	companyRepo := postgres.NewCompanyRepository(pool)
	userRepo := postgres.NewUserRepository(pool)
	employeeRepo := postgres.NewEmployeeRepository(pool)
	projectRepo := postgres.NewProjectRepository(pool)

	// Lecturas de suscripción: Redis delante de PostgreSQL si está habilitado.
	var subsRepo repository.SubscriptionRepository = postgres.NewSubscriptionRepository(pool)
	var invalidator postgres.SnapshotInvalidator
	if cfg.Redis.Enabled {
		client, err := cache.NewClient(ctx, cfg.Redis)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a Redis")
		}
		defer func(c *redis.Client) { _ = c.Close() }(client)
		subCache := cache.NewSubscriptionCache(client, subsRepo, cfg.Redis.TTL, log.Component("cache"))
		subsRepo = subCache
		invalidator = subCache
	}
	txRunner := postgres.NewTxRunner(pool, invalidator, log.Component("tx"))

	billingUC := billing.NewUseCase(subsRepo, txRunner, lifecycle, formatter, time.Now, log.Component("billing"))
	authUC := auth.NewAuthUseCase(userRepo, txRunner, lifecycle, billingUC, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	}, time.Now, log.Component("auth"))
	workspaceUC := workspace.NewUseCase(txRunner, employeeRepo, projectRepo, lifecycle, time.Now, log.Component("workspace"))
	exportUC := export.NewUseCase(
		subsRepo, companyRepo, projectRepo, employeeRepo, lifecycle,
		report.NewPDFRenderer(formatter), report.NewXLSXRenderer(),
		time.Now, log.Component("export"),
	)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 30,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Ofivio API",
	}))

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:          authUC,
		BillingUC:       billingUC,
		WorkspaceUC:     workspaceUC,
		ExportUC:        exportUC,
		JWTSecret:       cfg.JWT.Secret,
		IsPlatformAdmin: cfg.Admin.IsPlatformAdmin,
		ServiceName:     cfg.App.Name,
		Logger:          log.Component("http"),
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
