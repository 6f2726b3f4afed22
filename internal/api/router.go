package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/platops/tenant-engine/internal/api/handler"
	"github.com/platops/tenant-engine/internal/api/middleware"
	"github.com/platops/tenant-engine/internal/core/domain"
	"github.com/platops/tenant-engine/internal/core/ports"
)

// Deps carries the constructed collaborators the router wires into routes.
// Everything is injected; the API layer owns no state of its own.
type Deps struct {
	Verifier    ports.TokenVerifier
	Authorizer  ports.Authorizer
	Tenants     ports.TenantService
	Users       ports.UserService
	Invitations ports.InvitationService
	Catalog     ports.RoleCatalog
	Deliveries  handler.DeliveryEnqueuer
	Mongo       *mongo.Database
	Redis       *redis.Client
	Logger      zerolog.Logger
}

// NewRouter builds the Echo instance with the full authorization pipeline:
// Auth -> TenantContext -> RequireRoles -> handler. Platform routes resolve
// the reserved platform tenant; tenant routes demand the tenant header.
func NewRouter(deps Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Logger)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echoprometheus.NewMiddleware("tenant_engine"))

	// --- Health probes and metrics (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	readinessHandler := handler.NewReadinessHandler(deps.Mongo, deps.Redis)

	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", readinessHandler.Readiness)
	e.GET("/metrics", echoprometheus.NewHandler())

	// --- Handlers ---
	tenantHandler := handler.NewTenantHandler(deps.Tenants, deps.Users)
	userHandler := handler.NewUserHandler(deps.Users, deps.Catalog)
	invitationHandler := handler.NewInvitationHandler(deps.Invitations, deps.Deliveries)

	auth := middleware.Auth(deps.Verifier)

	// Platform-scoped routes: no tenant header needed, platform roles only.
	platform := e.Group("/v1/tenants",
		auth,
		middleware.TenantContext(deps.Authorizer, false),
		middleware.RequirePlatform(deps.Logger),
		middleware.RequireRoles(deps.Logger, domain.RolePlatformAdmin),
	)
	platform.POST("", tenantHandler.Create)
	platform.GET("", tenantHandler.List)
	platform.GET("/:id", tenantHandler.Get)
	platform.PATCH("/:id", tenantHandler.Update)
	platform.DELETE("/:id", tenantHandler.Delete)
	platform.POST("/:id/suspend", tenantHandler.Suspend)
	platform.POST("/:id/activate", tenantHandler.Activate)
	platform.PUT("/:id/modules/:module", tenantHandler.EnableModule)
	platform.DELETE("/:id/modules/:module", tenantHandler.DisableModule)
	platform.POST("/:id/members", tenantHandler.AddMember)
	platform.DELETE("/:id/members/:email", tenantHandler.RemoveMember)

	// Tenant-scoped routes: tenant header mandatory, tenant-admin role.
	tenantScoped := func(prefix string) *echo.Group {
		return e.Group(prefix,
			auth,
			middleware.TenantContext(deps.Authorizer, true),
			middleware.RequireRoles(deps.Logger, domain.RoleTenantAdmin),
		)
	}

	users := tenantScoped("/v1/users")
	users.GET("", userHandler.List)
	users.GET("/:email", userHandler.Get)
	users.POST("/:email/roles", userHandler.AssignRole)
	users.DELETE("/:email/roles/:role", userHandler.RemoveRole)

	roles := tenantScoped("/v1/roles")
	roles.GET("", userHandler.AvailableRoles)

	invitations := tenantScoped("/v1/invitations")
	invitations.POST("", invitationHandler.Create)
	invitations.GET("", invitationHandler.List)
	invitations.GET("/:id", invitationHandler.Get)
	invitations.POST("/:id/resend", invitationHandler.Resend)
	invitations.POST("/:id/accept", invitationHandler.Accept)

	return e
}
