package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/platops/tenant-engine/internal/core/domain"
	"github.com/platops/tenant-engine/internal/core/ports"
)

// DeliveryEnqueuer hands a freshly created or resent invitation to the
// delivery pipeline. The temporary credential travels only through this
// path — it is never part of an API response or a log line.
type DeliveryEnqueuer interface {
	Enqueue(inv *domain.Invitation, temporaryCredential string)
}

// InvitationHandler handles the tenant-scoped onboarding routes.
type InvitationHandler struct {
	invitations ports.InvitationService
	deliveries  DeliveryEnqueuer
}

func NewInvitationHandler(invitations ports.InvitationService, deliveries DeliveryEnqueuer) *InvitationHandler {
	return &InvitationHandler{invitations: invitations, deliveries: deliveries}
}

type createInvitationRequest struct {
	Email string `json:"email" validate:"required,email"`
	Name  string `json:"name"`
}

// Create handles POST /v1/invitations: provisions the directory user with a
// temporary credential and queues the onboarding delivery. The response
// carries the invitation record only — the credential goes out through the
// delivery channel and is not re-readable afterwards.
//
// @Summary      Invite a new user into the declared tenant
// @Tags         invitations
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        X-Tenant-ID  header  string                   true  "Declared tenant"
// @Param        body         body    createInvitationRequest  true  "Invitee"
// @Success      201  {object}  domain.Invitation
// @Failure      400  {object}  map[string]string
// @Failure      409  {object}  map[string]string
// @Router       /v1/invitations [post]
func (h *InvitationHandler) Create(c echo.Context) error {
	rc, err := requestContext(c)
	if err != nil {
		return err
	}

	var req createInvitationRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	result, err := h.invitations.Create(c.Request().Context(), rc.Tenant, req.Email, req.Name)
	if err != nil {
		return err
	}

	h.deliveries.Enqueue(result.Invitation, result.TemporaryCredential)
	return c.JSON(http.StatusCreated, result.Invitation)
}

// List handles GET /v1/invitations for the declared tenant, newest first.
// Closed invitations are included: the history is the audit trail.
func (h *InvitationHandler) List(c echo.Context) error {
	rc, err := requestContext(c)
	if err != nil {
		return err
	}
	invitations, err := h.invitations.ListByTenant(c.Request().Context(), rc.Tenant)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, invitations)
}

// Get handles GET /v1/invitations/:id, scoped to the declared tenant.
func (h *InvitationHandler) Get(c echo.Context) error {
	rc, err := requestContext(c)
	if err != nil {
		return err
	}
	inv, err := h.invitations.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	if inv.TenantID != rc.Tenant {
		return domain.ErrInvitationNotFound
	}
	return c.JSON(http.StatusOK, inv)
}

// Resend handles POST /v1/invitations/:id/resend. Valid from sent, expired
// or failed; regenerates the credential and restarts the expiry window.
func (h *InvitationHandler) Resend(c echo.Context) error {
	rc, err := requestContext(c)
	if err != nil {
		return err
	}
	inv, err := h.invitations.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	if inv.TenantID != rc.Tenant {
		return domain.ErrInvitationNotFound
	}

	result, err := h.invitations.Resend(c.Request().Context(), inv.ID)
	if err != nil {
		return err
	}

	h.deliveries.Enqueue(result.Invitation, result.TemporaryCredential)
	return c.JSON(http.StatusOK, result.Invitation)
}

// Accept handles POST /v1/invitations/:id/accept, called by the onboarding
// flow once the invited user completed their first login.
func (h *InvitationHandler) Accept(c echo.Context) error {
	rc, err := requestContext(c)
	if err != nil {
		return err
	}
	inv, err := h.invitations.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	if inv.TenantID != rc.Tenant {
		return domain.ErrInvitationNotFound
	}

	updated, err := h.invitations.MarkAccepted(c.Request().Context(), inv.ID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, updated)
}
