package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/spec-kit/storefront/internal/api/http/handlers"
	"github.com/spec-kit/storefront/internal/auth"
	"github.com/spec-kit/storefront/internal/observability"
	"github.com/spec-kit/storefront/internal/permission"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Catalog        *handlers.CatalogHandler
	Orders         *handlers.OrdersHandler
	Tickets        *handlers.TicketsHandler
	Me             *handlers.MeHandler
	Users          *handlers.UsersHandler
	Products       *handlers.ProductsHandler
	FAQs           *handlers.FAQsHandler
	Settings       *handlers.SettingsHandler
	Backups        *handlers.BackupsHandler
	Dashboard      *handlers.DashboardHandler
	AuthMiddleware *auth.Middleware
	Permissions    auth.PermissionChecker
	Metrics        *observability.Metrics
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	if cfg.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(cfg.Metrics.Handler()))
	}

	authn := cfg.AuthMiddleware.Handle
	optional := cfg.AuthMiddleware.Optional

	authGroup := app.Group("/auth")
	authGroup.Post("/sign-up", cfg.Auth.SignUp)
	authGroup.Post("/sign-in", cfg.Auth.SignIn)
	authGroup.Post("/sign-out", authn, cfg.Auth.SignOut)
	authGroup.Post("/password", authn, cfg.Auth.ChangePassword)

	catalog := app.Group("/catalog")
	catalog.Get("/products", cfg.Catalog.Products)
	catalog.Get("/products/:id", cfg.Catalog.Product)
	catalog.Get("/faqs", cfg.Catalog.FAQs)

	app.Post("/orders", optional, cfg.Orders.Submit)
	app.Post("/tickets", optional, cfg.Tickets.Create)
	app.Post("/tickets/:id/replies", authn, cfg.Tickets.Reply)

	me := app.Group("/me", authn)
	me.Get("", cfg.Me.Profile)
	me.Patch("", cfg.Me.UpdateProfile)
	me.Get("/permissions", cfg.Me.Permissions)
	me.Get("/orders", cfg.Orders.Mine)
	me.Get("/tickets", cfg.Tickets.Mine)
	me.Get("/tickets/:id", cfg.Tickets.MineOne)

	admin := app.Group("/admin", authn)
	can := func(section permission.Section, action permission.Action) fiber.Handler {
		return auth.RequirePermission(cfg.Permissions, section, action)
	}

	admin.Get("/dashboard", can(permission.SectionAnalytics, permission.ActionView), cfg.Dashboard.Stats)
	admin.Get("/export", can(permission.SectionAnalytics, permission.ActionExport), cfg.Backups.Export)

	admin.Get("/orders", can(permission.SectionOrders, permission.ActionView), cfg.Orders.List)
	admin.Patch("/orders/:id/status", can(permission.SectionOrders, permission.ActionEdit), cfg.Orders.UpdateStatus)
	admin.Delete("/orders/:id", can(permission.SectionOrders, permission.ActionDelete), cfg.Orders.Delete)

	admin.Get("/users", can(permission.SectionUsers, permission.ActionView), cfg.Users.List)
	admin.Patch("/users/:id/role", can(permission.SectionUsers, permission.ActionPermissions), cfg.Users.ChangeRole)
	admin.Put("/users/:id/permissions", can(permission.SectionUsers, permission.ActionPermissions), cfg.Users.SavePermissions)
	admin.Delete("/users/:id", can(permission.SectionUsers, permission.ActionDelete), cfg.Users.Delete)
	admin.Get("/roles/:role/permissions", can(permission.SectionUsers, permission.ActionPermissions), cfg.Users.RoleDefaults)

	admin.Get("/tickets", can(permission.SectionSupport, permission.ActionView), cfg.Tickets.List)
	admin.Get("/tickets/:id", can(permission.SectionSupport, permission.ActionView), cfg.Tickets.Get)
	admin.Post("/tickets/:id/replies", can(permission.SectionSupport, permission.ActionReply), cfg.Tickets.AdminReply)
	admin.Patch("/tickets/:id/status", can(permission.SectionSupport, permission.ActionClose), cfg.Tickets.UpdateStatus)
	admin.Delete("/tickets/:id", can(permission.SectionSupport, permission.ActionDelete), cfg.Tickets.Delete)

	admin.Get("/products", can(permission.SectionProducts, permission.ActionView), cfg.Products.List)
	admin.Post("/products", can(permission.SectionProducts, permission.ActionAdd), cfg.Products.Create)
	admin.Patch("/products/:id", can(permission.SectionProducts, permission.ActionEdit), cfg.Products.Update)
	admin.Post("/products/:id/toggle", can(permission.SectionProducts, permission.ActionEdit), cfg.Products.Toggle)
	admin.Delete("/products/:id", can(permission.SectionProducts, permission.ActionDelete), cfg.Products.Delete)

	admin.Get("/faqs", can(permission.SectionProducts, permission.ActionView), cfg.FAQs.List)
	admin.Post("/faqs", can(permission.SectionProducts, permission.ActionAdd), cfg.FAQs.Create)
	admin.Patch("/faqs/:id", can(permission.SectionProducts, permission.ActionEdit), cfg.FAQs.Update)
	admin.Delete("/faqs/:id", can(permission.SectionProducts, permission.ActionDelete), cfg.FAQs.Delete)

	admin.Get("/settings", can(permission.SectionSettings, permission.ActionView), cfg.Settings.Get)
	admin.Put("/settings", can(permission.SectionSettings, permission.ActionEdit), cfg.Settings.SaveAll)
	admin.Post("/settings/reset", can(permission.SectionSettings, permission.ActionSystem), cfg.Settings.Reset)
	admin.Patch("/settings/:key", can(permission.SectionSettings, permission.ActionEdit), cfg.Settings.UpdateKey)

	admin.Get("/backups", can(permission.SectionSettings, permission.ActionBackup), cfg.Backups.History)
	admin.Post("/backups", can(permission.SectionSettings, permission.ActionBackup), cfg.Backups.Create)
	admin.Post("/backups/cleanup", can(permission.SectionSettings, permission.ActionBackup), cfg.Backups.Cleanup)
	admin.Post("/backups/import", can(permission.SectionSettings, permission.ActionImport), cfg.Backups.Import)
	admin.Post("/backups/:id/restore", can(permission.SectionSettings, permission.ActionImport), cfg.Backups.Restore)
}
