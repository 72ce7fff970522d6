package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/itsm-console/internal/api/http/handlers"
	"github.com/spec-kit/itsm-console/internal/auth"
	"github.com/spec-kit/itsm-console/internal/authz"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Tickets        *handlers.TicketsHandler
	PortalTickets  *handlers.PortalTicketsHandler
	Users          *handlers.UsersHandler
	Assets         *handlers.AssetsHandler
	AuthMiddleware *auth.Middleware
}

// RegisterRoutes wires HTTP routes. Each protected group carries the
// capability its navigation targets require; the guard translates failed
// checks into role-appropriate redirects, never bare 403s.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	authGroup := app.Group("/auth")
	authGroup.Post("/register", cfg.Auth.Register)
	authGroup.Post("/login", cfg.Auth.Login)

	protectedAuth := authGroup.Group("", cfg.AuthMiddleware.Handle)
	protectedAuth.Post("/logout", cfg.Auth.Logout)
	protectedAuth.Get("/me", cfg.Auth.Me)
	protectedAuth.Patch("/me/profile", cfg.Auth.UpdateMyProfile)
	protectedAuth.Post("/password/change", cfg.Auth.ChangePassword)

	sessionGroup := app.Group("/session", cfg.AuthMiddleware.Handle)
	sessionGroup.Put("/mode", cfg.Auth.SetMode)
	sessionGroup.Post("/mode/toggle", cfg.Auth.ToggleMode)

	portal := app.Group("/portal", cfg.AuthMiddleware.Handle, Guard(authz.RequireFrontOffice))
	portal.Post("/tickets", cfg.PortalTickets.Create)
	portal.Get("/tickets", cfg.PortalTickets.List)
	portal.Get("/tickets/:id", cfg.PortalTickets.Get)
	portal.Get("/tickets/:id/comments", cfg.PortalTickets.ListComments)
	portal.Post("/tickets/:id/comments", cfg.PortalTickets.AddComment)

	tickets := app.Group("/tickets", cfg.AuthMiddleware.Handle, Guard(authz.RequireITStaff))
	tickets.Post("/", cfg.Tickets.Create)
	tickets.Get("/", cfg.Tickets.List)
	tickets.Get("/stats", cfg.Tickets.Stats)
	tickets.Get("/:id", cfg.Tickets.Get)
	tickets.Patch("/:id/status", cfg.Tickets.UpdateStatus)
	tickets.Patch("/:id/priority", cfg.Tickets.UpdatePriority)
	tickets.Patch("/:id/assignee", cfg.Tickets.Assign)
	tickets.Get("/:id/comments", cfg.Tickets.ListComments)
	tickets.Post("/:id/comments", cfg.Tickets.AddComment)

	users := app.Group("/users", cfg.AuthMiddleware.Handle, Guard(authz.RequireAdmin))
	users.Get("/", cfg.Users.List)
	users.Post("/:id/roles", cfg.Users.AddRole)
	users.Delete("/:id/roles/:role", cfg.Users.RemoveRole)
	users.Patch("/:id/profile", cfg.Users.UpdateProfile)

	assets := app.Group("/assets", cfg.AuthMiddleware.Handle, Guard(authz.RequireITStaff))
	assets.Get("/", cfg.Assets.List)
	assets.Patch("/:id/assignee", cfg.Assets.Assign)
}
