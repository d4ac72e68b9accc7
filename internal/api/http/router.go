package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/fixflow/repair-service/internal/api/http/handlers"
	"github.com/fixflow/repair-service/internal/auth"
	"github.com/fixflow/repair-service/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Branches       *handlers.BranchesHandler
	Staff          *handlers.StaffHandler
	Services       *handlers.ServicesHandler
	Customers      *handlers.CustomersHandler
	AuthMiddleware *auth.AuthMiddleware
	LoginLimiter   fiber.Handler
}

// RegisterRoutes wires the HTTP surface. Role gates list the exact role
// values they accept; staff roles are capitalized and admin roles are not, so
// an admin-only gate never admits a branch manager.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	api := app.Group("/api/v1")
	api.Get("/", apiDirectory)

	adminOnly := auth.RequireRole(domain.RoleAdmin)
	adminManager := auth.RequireRole(domain.RoleAdmin, domain.RoleManager)

	authGroup := api.Group("/auth")
	authGroup.Post("/login", cfg.LoginLimiter, cfg.Auth.Login)

	authProtected := authGroup.Group("", cfg.AuthMiddleware.Handle)
	authProtected.Post("/register", adminOnly, cfg.Auth.Register)
	authProtected.Get("/me", cfg.Auth.Me)
	authProtected.Get("/", adminOnly, cfg.Auth.ListAccounts)
	authProtected.Get("/:id", adminManager, cfg.Auth.GetAccount)
	authProtected.Patch("/:id", adminOnly, cfg.Auth.UpdateAccount)
	authProtected.Delete("/:id", adminOnly, cfg.Auth.DeleteAccount)

	branches := api.Group("/branches", cfg.AuthMiddleware.Handle)
	branches.Get("/", cfg.Branches.List)
	branches.Post("/", adminManager, cfg.Branches.Create)
	branches.Get("/:id", cfg.Branches.Get)
	branches.Patch("/:id", adminManager, cfg.Branches.Update)
	branches.Delete("/:id", adminOnly, cfg.Branches.Delete)
	branches.Patch("/:id/status", adminManager, cfg.Branches.UpdateStatus)
	branches.Patch("/:branchId/staff/:staffId/add", adminManager, cfg.Branches.AddStaff)
	branches.Patch("/:branchId/staff/:staffId/remove", adminManager, cfg.Branches.RemoveStaff)

	staff := api.Group("/staff", cfg.AuthMiddleware.Handle)
	staff.Get("/", cfg.Staff.List)
	staff.Post("/", cfg.Staff.Create)
	staff.Get("/technicians", cfg.Staff.ListTechnicians)
	staff.Get("/branch/:branchId", cfg.Staff.ListByBranch)
	staff.Get("/:id", cfg.Staff.Get)
	staff.Patch("/:id", cfg.Staff.Update)
	staff.Delete("/:id", cfg.Staff.Delete)

	services := api.Group("/services", cfg.AuthMiddleware.Handle)
	services.Get("/", cfg.Services.List)
	services.Post("/", cfg.Services.Create)

	// static routes before parameterized ones
	services.Get("/stats", adminManager, cfg.Services.Stats)
	services.Get("/report", adminManager, cfg.Services.Report)
	services.Get("/overdue", cfg.Services.ListOverdue)
	services.Patch("/bulk-update", adminManager, cfg.Services.BulkUpdate)

	services.Get("/status/:status", cfg.Services.ListByStatus)
	services.Get("/technician/:technicianId", cfg.Services.ListByTechnician)

	services.Get("/:id", cfg.Services.Get)
	services.Patch("/:id", cfg.Services.Update)
	services.Delete("/:id", adminManager, cfg.Services.Delete)
	services.Patch("/:id/action", cfg.Services.UpdateAction)
	services.Patch("/:id/assign-technician", adminManager, cfg.Services.AssignTechnician)
	services.Patch("/:id/cost", adminManager, cfg.Services.UpdateCost)

	customers := api.Group("/customers", cfg.AuthMiddleware.Handle)
	customers.Get("/", cfg.Customers.List)
	customers.Post("/", cfg.Customers.Create)
	customers.Get("/search", cfg.Customers.Search)
	customers.Get("/stats", adminManager, cfg.Customers.Stats)
	customers.Get("/repeat", adminManager, cfg.Customers.RepeatCustomers)
	customers.Get("/branch/:branchId", cfg.Customers.ListByBranch)
	customers.Get("/service/:serviceId", cfg.Customers.GetByService)
	customers.Get("/:id", cfg.Customers.Get)
	customers.Patch("/:id", cfg.Customers.Update)
	customers.Delete("/:id", adminManager, cfg.Customers.Delete)
	customers.Get("/:id/history", cfg.Customers.History)
}

func apiDirectory(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"service": "repair-service",
		"endpoints": fiber.Map{
			"auth":      "/api/v1/auth",
			"branches":  "/api/v1/branches",
			"staff":     "/api/v1/staff",
			"services":  "/api/v1/services",
			"customers": "/api/v1/customers",
		},
	})
}
