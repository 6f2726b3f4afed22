package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/platops/tenant-engine/internal/core/domain"
	"github.com/platops/tenant-engine/internal/core/ports"
)

// TenantHandler handles the platform-scoped tenant administration routes.
type TenantHandler struct {
	tenants ports.TenantService
	users   ports.UserService
}

func NewTenantHandler(tenants ports.TenantService, users ports.UserService) *TenantHandler {
	return &TenantHandler{tenants: tenants, users: users}
}

// --- Request / Response types ---

type contactRequest struct {
	Name    string `json:"name" validate:"required"`
	Email   string `json:"email" validate:"required,email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
	City    string `json:"city"`
	Country string `json:"country"`
}

type createTenantRequest struct {
	ID      string         `json:"id" validate:"required"`
	Name    string         `json:"name" validate:"required"`
	Modules []string       `json:"modules"`
	Contact contactRequest `json:"contact" validate:"required"`
}

type updateTenantRequest struct {
	Name string `json:"name"`
	// Pointer so an omitted contact skips validation; when present the
	// same constraints as on create apply.
	Contact *contactRequest `json:"contact"`
}

type memberRequest struct {
	Email string `json:"email" validate:"required,email"`
}

func (r contactRequest) toDomain() domain.Contact {
	return domain.Contact{
		Name:    r.Name,
		Email:   r.Email,
		Phone:   r.Phone,
		Address: r.Address,
		City:    r.City,
		Country: r.Country,
	}
}

// Create handles POST /v1/tenants.
//
// @Summary      Create a tenant
// @Tags         tenants
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createTenantRequest  true  "Tenant details"
// @Success      201   {object}  domain.Tenant
// @Failure      400   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Router       /v1/tenants [post]
func (h *TenantHandler) Create(c echo.Context) error {
	var req createTenantRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	tenant, err := h.tenants.Create(c.Request().Context(), ports.CreateTenantInput{
		ID:      req.ID,
		Name:    req.Name,
		Modules: req.Modules,
		Contact: req.Contact.toDomain(),
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, tenant)
}

// List handles GET /v1/tenants. Soft-deleted tenants are included only when
// ?include_deleted=true (audit view).
func (h *TenantHandler) List(c echo.Context) error {
	includeDeleted := c.QueryParam("include_deleted") == "true"
	tenants, err := h.tenants.List(c.Request().Context(), includeDeleted)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, tenants)
}

// Get handles GET /v1/tenants/:id.
func (h *TenantHandler) Get(c echo.Context) error {
	tenant, err := h.tenants.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, tenant)
}

// Update handles PATCH /v1/tenants/:id. Metadata only; id and status are
// immutable here.
func (h *TenantHandler) Update(c echo.Context) error {
	var req updateTenantRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	input := ports.UpdateTenantInput{Name: req.Name}
	if req.Contact != nil {
		input.Contact = req.Contact.toDomain()
	}
	tenant, err := h.tenants.Update(c.Request().Context(), c.Param("id"), input)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, tenant)
}

// Suspend handles POST /v1/tenants/:id/suspend.
func (h *TenantHandler) Suspend(c echo.Context) error {
	tenant, err := h.tenants.Suspend(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, tenant)
}

// Activate handles POST /v1/tenants/:id/activate.
func (h *TenantHandler) Activate(c echo.Context) error {
	tenant, err := h.tenants.Activate(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, tenant)
}

// Delete handles DELETE /v1/tenants/:id — a soft delete: the record stays
// for audit, authorization treats the tenant as gone.
func (h *TenantHandler) Delete(c echo.Context) error {
	if err := h.tenants.SoftDelete(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// EnableModule handles PUT /v1/tenants/:id/modules/:module.
func (h *TenantHandler) EnableModule(c echo.Context) error {
	tenant, err := h.tenants.EnableModule(c.Request().Context(), c.Param("id"), c.Param("module"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, tenant)
}

// DisableModule handles DELETE /v1/tenants/:id/modules/:module.
func (h *TenantHandler) DisableModule(c echo.Context) error {
	tenant, err := h.tenants.DisableModule(c.Request().Context(), c.Param("id"), c.Param("module"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, tenant)
}

// AddMember handles POST /v1/tenants/:id/members — adds the tenant to a
// user's membership list. Takes effect at the user's next
// re-authentication.
func (h *TenantHandler) AddMember(c echo.Context) error {
	var req memberRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	// The tenant must exist and be live before anyone is attached to it.
	if _, err := h.tenants.Get(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	if err := h.users.AddTenantMembership(c.Request().Context(), req.Email, c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// RemoveMember handles DELETE /v1/tenants/:id/members/:email.
func (h *TenantHandler) RemoveMember(c echo.Context) error {
	if err := h.users.RemoveTenantMembership(c.Request().Context(), c.Param("email"), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
