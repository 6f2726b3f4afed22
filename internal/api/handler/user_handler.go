package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/platops/tenant-engine/internal/api/metrics"
	"github.com/platops/tenant-engine/internal/core/ports"
)

// UserHandler handles the tenant-scoped user administration routes. Every
// operation runs under the RequestContext resolved by the middleware chain;
// role changes are re-validated server-side against the tenant's assignable
// set whatever the UI offered.
type UserHandler struct {
	users   ports.UserService
	catalog ports.RoleCatalog
}

func NewUserHandler(users ports.UserService, catalog ports.RoleCatalog) *UserHandler {
	return &UserHandler{users: users, catalog: catalog}
}

type assignRoleRequest struct {
	Role string `json:"role" validate:"required"`
}

// List handles GET /v1/users — the directory users of the declared tenant.
func (h *UserHandler) List(c echo.Context) error {
	rc, err := requestContext(c)
	if err != nil {
		return err
	}
	users, err := h.users.ListTenantUsers(c.Request().Context(), rc)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, users)
}

// Get handles GET /v1/users/:email.
func (h *UserHandler) Get(c echo.Context) error {
	rc, err := requestContext(c)
	if err != nil {
		return err
	}
	user, err := h.users.GetUser(c.Request().Context(), rc, c.Param("email"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

// AssignRole handles POST /v1/users/:email/roles. Idempotent: assigning a
// role already held succeeds without effect.
//
// @Summary      Assign a role to a user
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        X-Tenant-ID  header  string             true  "Declared tenant"
// @Param        email        path    string             true  "User email"
// @Param        body         body    assignRoleRequest  true  "Role to assign"
// @Success      204
// @Failure      400  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Router       /v1/users/{email}/roles [post]
func (h *UserHandler) AssignRole(c echo.Context) error {
	rc, err := requestContext(c)
	if err != nil {
		return err
	}

	var req assignRoleRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.users.AssignRole(c.Request().Context(), rc, c.Param("email"), req.Role); err != nil {
		return err
	}
	metrics.RoleChangesTotal.WithLabelValues("assign").Inc()
	return c.NoContent(http.StatusNoContent)
}

// RemoveRole handles DELETE /v1/users/:email/roles/:role. Idempotent:
// removing a role never held succeeds without effect.
func (h *UserHandler) RemoveRole(c echo.Context) error {
	rc, err := requestContext(c)
	if err != nil {
		return err
	}
	if err := h.users.RemoveRole(c.Request().Context(), rc, c.Param("email"), c.Param("role")); err != nil {
		return err
	}
	metrics.RoleChangesTotal.WithLabelValues("remove").Inc()
	return c.NoContent(http.StatusNoContent)
}

// AvailableRoles handles GET /v1/roles — the roles assignable within the
// declared tenant: tenant-admin plus the roles of enabled modules, never a
// platform role.
func (h *UserHandler) AvailableRoles(c echo.Context) error {
	rc, err := requestContext(c)
	if err != nil {
		return err
	}
	roles, err := h.catalog.AvailableRoles(c.Request().Context(), rc.Tenant)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, roles)
}
