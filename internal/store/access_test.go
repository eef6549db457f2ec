package store

import (
	"testing"

	"github.com/yourorg/adminstate/internal/domain"
	"github.com/yourorg/adminstate/internal/security"
)

func TestIsAdminIncludesControllers(t *testing.T) {
	s, _ := newTestStore()
	s.SetControllers([]domain.Identity{"root-1"})
	s.AddAdmin("admin-1")

	if !s.IsAdmin("admin-1") {
		t.Error("plain admin not recognized")
	}
	if !s.IsAdmin("root-1") {
		t.Error("controller not recognized as admin")
	}
	if s.IsAdmin("stranger") {
		t.Error("stranger recognized as admin")
	}
	if s.IsController("admin-1") {
		t.Error("plain admin recognized as controller")
	}
}

func TestAddRemoveAdminIdempotent(t *testing.T) {
	s, _ := newTestStore()

	s.AddAdmin("admin-1")
	s.AddAdmin("admin-1")
	if got := len(s.Admins()); got != 1 {
		t.Fatalf("expected 1 admin, got %d", got)
	}

	s.RemoveAdmin("admin-1")
	s.RemoveAdmin("admin-1")
	if got := len(s.Admins()); got != 0 {
		t.Fatalf("expected 0 admins, got %d", got)
	}
}

func TestFirstAdmin(t *testing.T) {
	s, _ := newTestStore()

	if _, found := s.FirstAdmin(); found {
		t.Error("first admin on empty set")
	}
	s.AddAdmin("admin-1")
	s.AddAdmin("admin-2")
	first, found := s.FirstAdmin()
	if !found || first != "admin-1" {
		t.Fatalf("expected admin-1, got %s found=%v", first, found)
	}
}

func TestRoleRegistry(t *testing.T) {
	s, _ := newTestStore()

	s.RegisterRole("user-service", "svc-a")
	if !s.HoldsRole("user-service", "svc-a") {
		t.Error("binding not recognized")
	}
	if s.HoldsRole("user-service", "svc-b") {
		t.Error("wrong identity recognized")
	}

	// Re-registering replaces the binding.
	s.RegisterRole("user-service", "svc-b")
	if s.HoldsRole("user-service", "svc-a") {
		t.Error("stale binding survived")
	}

	s.UnregisterRole("user-service")
	if _, found := s.RoleIdentity("user-service"); found {
		t.Error("binding survived unregister")
	}
	s.UnregisterRole("user-service") // idempotent
}

func TestRolesSortedByName(t *testing.T) {
	s, _ := newTestStore()
	s.RegisterRole("frontend", "svc-f")
	s.RegisterRole("auth-service", "svc-a")

	roles := s.Roles()
	if len(roles) != 2 || roles[0].Role != "auth-service" || roles[1].Role != "frontend" {
		t.Fatalf("wrong order: %v", roles)
	}
}

func TestHasCapabilityControllerImplicit(t *testing.T) {
	s, _ := newTestStore()
	s.SetControllers([]domain.Identity{"root-1"})

	if !s.HasCapability("root-1", security.CapDeleteAllContacts) {
		t.Error("controller missing implicit capability")
	}
	if s.HasCapability("admin-1", security.CapViewOwnContacts) {
		t.Error("ungranted capability reported held")
	}
}

func TestGrantRevokeIdempotent(t *testing.T) {
	s, _ := newTestStore()

	s.Grant("admin-1", security.CapViewOwnContacts)
	s.Grant("admin-1", security.CapViewOwnContacts)
	if got := s.Capabilities("admin-1"); len(got) != 1 {
		t.Fatalf("expected 1 grant, got %v", got)
	}

	s.Revoke("admin-1", security.CapViewOwnContacts)
	s.Revoke("admin-1", security.CapViewOwnContacts)
	if got := s.Capabilities("admin-1"); len(got) != 0 {
		t.Fatalf("expected 0 grants, got %v", got)
	}
}

func TestGrantDefaultsDoesNotDuplicate(t *testing.T) {
	s, _ := newTestStore()

	s.Grant("admin-1", security.CapViewOwnContacts)
	s.GrantDefaults("admin-1")
	s.GrantDefaults("admin-1")

	if got := s.Capabilities("admin-1"); len(got) != len(security.DefaultAdminCapabilities) {
		t.Fatalf("expected %d grants, got %v", len(security.DefaultAdminCapabilities), got)
	}
}
