package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/tauntify/ASPMS-PRO-sub002/internal/application/auth"
	"github.com/tauntify/ASPMS-PRO-sub002/internal/application/billing"
	"github.com/tauntify/ASPMS-PRO-sub002/internal/application/export"
	"github.com/tauntify/ASPMS-PRO-sub002/internal/application/workspace"
	"github.com/tauntify/ASPMS-PRO-sub002/internal/domain/entity"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC          *auth.AuthUseCase
	BillingUC       *billing.UseCase
	WorkspaceUC     *workspace.UseCase
	ExportUC        *export.UseCase
	JWTSecret       string
	IsPlatformAdmin func(companyID string) bool
	ServiceName     string
	Logger          zerolog.Logger
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	app.Use(RequestLogger(deps.Logger))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": deps.ServiceName})
	})

	api := app.Group("/api")

	// Auth (público)
	authGroup := api.Group("/auth")
	authHandler := NewAuthHandler(deps.AuthUC)
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/login", authHandler.Login)

	// Cotización (público: la landing muestra precios sin login)
	subHandler := NewSubscriptionHandler(deps.BillingUC)
	api.Get("/subscription/quote", subHandler.Quote)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	sub := protected.Group("/subscription")
	sub.Get("/status", subHandler.Status)
	sub.Post("/purchase", RequireRole(entity.RoleAdmin), subHandler.Purchase)

	wsHandler := NewWorkspaceHandler(deps.WorkspaceUC)
	employees := protected.Group("/employees")
	employees.Get("/", wsHandler.ListEmployees)
	employees.Post("/", RequireEntitlement(deps.BillingUC, billing.EntitlementAddEmployee), wsHandler.CreateEmployee)
	employees.Delete("/:id", RequireRole(entity.RoleAdmin, entity.RoleManager), wsHandler.DeleteEmployee)

	exportHandler := NewExportHandler(deps.ExportUC)
	projects := protected.Group("/projects")
	projects.Get("/", wsHandler.ListProjects)
	projects.Post("/", RequireEntitlement(deps.BillingUC, billing.EntitlementAddProject), wsHandler.CreateProject)
	projects.Delete("/:id", RequireRole(entity.RoleAdmin, entity.RoleManager), wsHandler.DeleteProject)
	projects.Get("/:id/report", RequireExportEntitlement(deps.BillingUC), exportHandler.Report)
	projects.Get("/:id/preview", exportHandler.Preview)

	// Operadores de la plataforma
	adminHandler := NewAdminHandler(deps.BillingUC)
	admin := protected.Group("/admin/subscriptions",
		RequireRole(entity.RoleAdmin),
		RequirePlatformAdmin(deps.IsPlatformAdmin),
	)
	admin.Post("/expire-sweep", adminHandler.ExpireSweep)
	admin.Get("/:owner", adminHandler.Status)
	admin.Post("/:owner/block", adminHandler.Block)
	admin.Post("/:owner/unblock", adminHandler.Unblock)
}
