package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/platops/tenant-engine/internal/core/domain"
)

func newRBACContext(t *testing.T, rc *domain.RequestContext) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if rc != nil {
		c.Set(RequestContextKey, rc)
	}
	return c, rec
}

func TestRequireRoles_Pass(t *testing.T) {
	rc := &domain.RequestContext{
		Email:  "alice@example.com",
		Tenant: "acme",
		Roles:  domain.NewStringSet("tenant-admin", "finance-read"),
	}
	c, rec := newRBACContext(t, rc)

	called := false
	mw := RequireRoles(zerolog.Nop(), "tenant-admin")
	handler := mw(func(c echo.Context) error {
		called = true
		return c.NoContent(http.StatusOK)
	})

	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !called {
		t.Fatalf("next not called")
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestRequireRoles_Denied(t *testing.T) {
	rc := &domain.RequestContext{
		Email:  "alice@example.com",
		Tenant: "acme",
		Roles:  domain.NewStringSet("finance-read"),
	}
	c, _ := newRBACContext(t, rc)

	mw := RequireRoles(zerolog.Nop(), "tenant-admin")
	handler := mw(func(c echo.Context) error {
		t.Fatalf("should not reach next")
		return nil
	})

	err := handler(c)
	if !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestRequireRoles_EmptyRequiredMeansAuthenticatedOnly(t *testing.T) {
	rc := &domain.RequestContext{
		Email:  "bob@example.com",
		Tenant: domain.PlatformTenantID,
		Roles:  domain.NewStringSet(),
	}
	c, rec := newRBACContext(t, rc)

	mw := RequireRoles(zerolog.Nop())
	handler := mw(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})

	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestRequirePlatform_Pass(t *testing.T) {
	rc := &domain.RequestContext{
		Email:  "ops@example.com",
		Tenant: domain.PlatformTenantID,
		Roles:  domain.NewStringSet("platform-admin"),
	}
	c, rec := newRBACContext(t, rc)

	mw := RequirePlatform(zerolog.Nop())
	handler := mw(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})

	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestRequirePlatform_DeniesTenantContext(t *testing.T) {
	rc := &domain.RequestContext{
		Email:  "alice@example.com",
		Tenant: "acme",
		Roles:  domain.NewStringSet("platform-admin"),
	}
	c, _ := newRBACContext(t, rc)

	mw := RequirePlatform(zerolog.Nop())
	handler := mw(func(c echo.Context) error {
		t.Fatalf("should not reach next")
		return nil
	})

	err := handler(c)
	if !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestRequireRoles_MissingContext(t *testing.T) {
	c, _ := newRBACContext(t, nil)

	mw := RequireRoles(zerolog.Nop(), "tenant-admin")
	handler := mw(func(c echo.Context) error {
		t.Fatalf("should not reach next")
		return nil
	})

	err := handler(c)
	if !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
}
