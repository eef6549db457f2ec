package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/yourorg/adminstate/internal/domain"
	"github.com/yourorg/adminstate/internal/security"
	"github.com/yourorg/adminstate/internal/store"
)

// AddAdmin registers id as an admin and seeds the default own-record
// capability set. Controller-only; adding an existing admin is a no-op apart
// from the audit entry.
func (s *Service) AddAdmin(ctx context.Context, caller, id domain.Identity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	log := s.opLogger("add_admin", caller)

	if err := s.requireController(ctx, caller); err != nil {
		return deny(log, "add_admin", err)
	}

	s.state.AddAdmin(id)
	s.state.GrantDefaults(id)
	s.state.RecordAudit(caller, "add_admin", "admin", string(id), "")

	ok("add_admin")
	log.Info("admin added", slog.String("admin", string(id)))
	return nil
}

// RemoveAdmin removes id from the admin set. Controller-only; idempotent.
// Explicit permission grants survive removal and become inert.
func (s *Service) RemoveAdmin(ctx context.Context, caller, id domain.Identity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	log := s.opLogger("remove_admin", caller)

	if err := s.requireController(ctx, caller); err != nil {
		return deny(log, "remove_admin", err)
	}

	s.state.RemoveAdmin(id)
	s.state.RecordAudit(caller, "remove_admin", "admin", string(id), "")

	ok("remove_admin")
	log.Info("admin removed", slog.String("admin", string(id)))
	return nil
}

// ListAdmins returns the admin set. Admin-only.
func (s *Service) ListAdmins(ctx context.Context, caller domain.Identity) ([]domain.Identity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	log := s.opLogger("list_admins", caller)

	if err := s.requireAdmin(ctx, caller); err != nil {
		return nil, deny(log, "list_admins", err)
	}
	ok("list_admins")
	return s.state.Admins(), nil
}

// ListControllers returns the controller set. Admin-only.
func (s *Service) ListControllers(ctx context.Context, caller domain.Identity) ([]domain.Identity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	log := s.opLogger("list_controllers", caller)

	if err := s.requireAdmin(ctx, caller); err != nil {
		return nil, deny(log, "list_controllers", err)
	}
	ok("list_controllers")
	return s.state.Controllers(), nil
}

// RegisterRole binds a trusted peer-service identity to role, replacing any
// previous binding. Controller-only.
func (s *Service) RegisterRole(ctx context.Context, caller domain.Identity, role string, id domain.Identity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	log := s.opLogger("register_role", caller)

	if err := s.requireController(ctx, caller); err != nil {
		return deny(log, "register_role", err)
	}
	if role == "" {
		return fail(log, "register_role", fmt.Errorf("%w: role name required", domain.ErrValidation))
	}

	prev, replaced := s.state.RoleIdentity(role)
	s.state.RegisterRole(role, id)
	details := ""
	if replaced {
		details = detailsJSON(map[string]string{"previous": string(prev)})
	}
	s.state.RecordAudit(caller, "register_role", "role", role, details)

	ok("register_role")
	log.Info("role registered", slog.String("role", role), slog.String("identity", string(id)))
	return nil
}

// UnregisterRole removes the binding for role. Controller-only; idempotent.
func (s *Service) UnregisterRole(ctx context.Context, caller domain.Identity, role string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	log := s.opLogger("unregister_role", caller)

	if err := s.requireController(ctx, caller); err != nil {
		return deny(log, "unregister_role", err)
	}

	s.state.UnregisterRole(role)
	s.state.RecordAudit(caller, "unregister_role", "role", role, "")

	ok("unregister_role")
	log.Info("role unregistered", slog.String("role", role))
	return nil
}

// ListRoles returns all role bindings. Admin-only.
func (s *Service) ListRoles(ctx context.Context, caller domain.Identity) ([]store.RoleBinding, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	log := s.opLogger("list_roles", caller)

	if err := s.requireAdmin(ctx, caller); err != nil {
		return nil, deny(log, "list_roles", err)
	}
	ok("list_roles")
	return s.state.Roles(), nil
}

// GrantPermission grants cap to target. Controller-only; idempotent.
func (s *Service) GrantPermission(ctx context.Context, caller, target domain.Identity, cap security.Capability) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	log := s.opLogger("grant_permission", caller)

	if err := s.requireController(ctx, caller); err != nil {
		return deny(log, "grant_permission", err)
	}
	if !cap.Valid() {
		return fail(log, "grant_permission", fmt.Errorf("%w: unknown capability %q", domain.ErrValidation, cap))
	}

	s.state.Grant(target, cap)
	s.state.RecordAudit(caller, "grant_permission", "permission", string(target),
		detailsJSON(map[string]string{"capability": string(cap)}))

	ok("grant_permission")
	log.Info("permission granted", slog.String("target", string(target)), slog.String("capability", string(cap)))
	return nil
}

// RevokePermission revokes cap from target. Controller-only; idempotent.
func (s *Service) RevokePermission(ctx context.Context, caller, target domain.Identity, cap security.Capability) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	log := s.opLogger("revoke_permission", caller)

	if err := s.requireController(ctx, caller); err != nil {
		return deny(log, "revoke_permission", err)
	}
	if !cap.Valid() {
		return fail(log, "revoke_permission", fmt.Errorf("%w: unknown capability %q", domain.ErrValidation, cap))
	}

	s.state.Revoke(target, cap)
	s.state.RecordAudit(caller, "revoke_permission", "permission", string(target),
		detailsJSON(map[string]string{"capability": string(cap)}))

	ok("revoke_permission")
	log.Info("permission revoked", slog.String("target", string(target)), slog.String("capability", string(cap)))
	return nil
}

// Permissions returns target's explicit grants. Admins may inspect their own
// grants; inspecting anyone else requires controller privilege.
func (s *Service) Permissions(ctx context.Context, caller, target domain.Identity) ([]security.Capability, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	log := s.opLogger("permissions", caller)

	if caller == target {
		if err := s.requireAdmin(ctx, caller); err != nil {
			return nil, deny(log, "permissions", err)
		}
	} else if err := s.requireController(ctx, caller); err != nil {
		return nil, deny(log, "permissions", err)
	}

	ok("permissions")
	return s.state.Capabilities(target), nil
}

// GrantDefaultPermissionsToAllAdmins seeds the default own-record set for
// every current admin. Controller-only; safe to repeat.
func (s *Service) GrantDefaultPermissionsToAllAdmins(ctx context.Context, caller domain.Identity) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	log := s.opLogger("grant_default_permissions", caller)

	if err := s.requireController(ctx, caller); err != nil {
		return 0, deny(log, "grant_default_permissions", err)
	}

	admins := s.state.Admins()
	for _, id := range admins {
		s.state.GrantDefaults(id)
	}
	s.state.RecordAudit(caller, "grant_default_permissions", "permission", "all_admins",
		detailsJSON(map[string]int{"admins": len(admins)}))

	ok("grant_default_permissions")
	log.Info("default permissions seeded", slog.Int("admins", len(admins)))
	return len(admins), nil
}

// AuditLog queries the audit trail newest first. Requires the view-audit-logs
// capability (controllers implicitly qualify).
func (s *Service) AuditLog(ctx context.Context, caller domain.Identity, q domain.AuditQuery) ([]domain.AuditLogEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	log := s.opLogger("audit_log", caller)

	if err := s.requireAdmin(ctx, caller); err != nil {
		return nil, deny(log, "audit_log", err)
	}
	if !s.state.HasCapability(caller, security.CapViewAuditLogs) {
		return nil, deny(log, "audit_log", fmt.Errorf("%w: missing %s", domain.ErrUnauthorized, security.CapViewAuditLogs))
	}

	ok("audit_log")
	return s.state.QueryAudit(q), nil
}

// Stats reports record totals for the admin dashboard. Admin-only.
func (s *Service) Stats(ctx context.Context, caller domain.Identity) (store.Stats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	log := s.opLogger("stats", caller)

	if err := s.requireAdmin(ctx, caller); err != nil {
		return store.Stats{}, deny(log, "stats", err)
	}
	ok("stats")
	return s.state.Stats(), nil
}
