package domain

import "testing"

func TestValidTenantID(t *testing.T) {
	valid := []string{"acme", "acme-corp", "a1", "tenant-42"}
	for _, id := range valid {
		if !ValidTenantID(id) {
			t.Errorf("ValidTenantID(%q) = false, want true", id)
		}
	}

	invalid := []string{"", "A", "Acme", "-acme", "a", "acme corp", PlatformTenantID}
	for _, id := range invalid {
		if ValidTenantID(id) {
			t.Errorf("ValidTenantID(%q) = true, want false", id)
		}
	}
}

func TestTenant_IsActive(t *testing.T) {
	for status, want := range map[TenantStatus]bool{
		TenantActive:    true,
		TenantSuspended: false,
		TenantInactive:  false,
		TenantDeleted:   false,
	} {
		tenant := Tenant{Status: status}
		if got := tenant.IsActive(); got != want {
			t.Errorf("status %s: IsActive() = %v, want %v", status, got, want)
		}
	}
}
