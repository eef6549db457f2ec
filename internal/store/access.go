package store

import (
	"slices"

	"github.com/yourorg/adminstate/internal/domain"
)

// IsController reports whether id is in the controller set.
func (s *Store) IsController(id domain.Identity) bool {
	return slices.Contains(s.controllers, id)
}

// IsAdmin reports whether id is an admin. Controllers are always admins.
func (s *Store) IsAdmin(id domain.Identity) bool {
	return slices.Contains(s.admins, id) || slices.Contains(s.controllers, id)
}

// Controllers returns a copy of the controller set.
func (s *Store) Controllers() []domain.Identity {
	return slices.Clone(s.controllers)
}

// SetControllers replaces the controller set wholesale. Used at bootstrap and
// when the canonical list is refreshed from the platform oracle.
func (s *Store) SetControllers(ids []domain.Identity) {
	s.controllers = slices.Clone(ids)
}

// AddAdmin adds id to the admin set. Idempotent.
func (s *Store) AddAdmin(id domain.Identity) {
	if !slices.Contains(s.admins, id) {
		s.admins = append(s.admins, id)
	}
}

// RemoveAdmin removes id from the admin set. Idempotent.
func (s *Store) RemoveAdmin(id domain.Identity) {
	s.admins = slices.DeleteFunc(s.admins, func(a domain.Identity) bool { return a == id })
}

// Admins returns a copy of the admin set.
func (s *Store) Admins() []domain.Identity {
	return slices.Clone(s.admins)
}

// FirstAdmin returns the earliest-registered admin, used as the default owner
// during the ownership backfill. Found is false on a store with no admins.
func (s *Store) FirstAdmin() (domain.Identity, bool) {
	if len(s.admins) == 0 {
		return "", false
	}
	return s.admins[0], true
}

// RegisterRole binds a trusted peer-service identity to a named role,
// replacing any previous binding for that role.
func (s *Store) RegisterRole(role string, id domain.Identity) {
	s.roles[role] = id
}

// UnregisterRole removes the binding for role. Idempotent.
func (s *Store) UnregisterRole(role string) {
	delete(s.roles, role)
}

// RoleIdentity looks up the identity bound to role.
func (s *Store) RoleIdentity(role string) (domain.Identity, bool) {
	id, ok := s.roles[role]
	return id, ok
}

// HoldsRole reports whether id is the identity registered under role.
func (s *Store) HoldsRole(role string, id domain.Identity) bool {
	bound, ok := s.roles[role]
	return ok && bound == id
}

// RoleBinding is one role-to-identity registration.
type RoleBinding struct {
	Role     string          `json:"role"`
	Identity domain.Identity `json:"identity"`
}

// Roles lists all role bindings sorted by role name.
func (s *Store) Roles() []RoleBinding {
	names := make([]string, 0, len(s.roles))
	for r := range s.roles {
		names = append(names, r)
	}
	slices.Sort(names)
	out := make([]RoleBinding, 0, len(names))
	for _, r := range names {
		out = append(out, RoleBinding{Role: r, Identity: s.roles[r]})
	}
	return out
}
