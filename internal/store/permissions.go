package store

import (
	"slices"

	"github.com/yourorg/adminstate/internal/domain"
	"github.com/yourorg/adminstate/internal/security"
)

// HasCapability reports whether id holds cap. Controllers implicitly hold
// every capability.
func (s *Store) HasCapability(id domain.Identity, cap security.Capability) bool {
	if s.IsController(id) {
		return true
	}
	_, ok := s.permissions[id][cap]
	return ok
}

// Grant adds cap to id's grant set. Idempotent.
func (s *Store) Grant(id domain.Identity, cap security.Capability) {
	set, ok := s.permissions[id]
	if !ok {
		set = make(map[security.Capability]struct{})
		s.permissions[id] = set
	}
	set[cap] = struct{}{}
}

// Revoke removes cap from id's grant set. Idempotent.
func (s *Store) Revoke(id domain.Identity, cap security.Capability) {
	set, ok := s.permissions[id]
	if !ok {
		return
	}
	delete(set, cap)
	if len(set) == 0 {
		delete(s.permissions, id)
	}
}

// Capabilities returns id's explicit grants in stable order. Controller
// implicit grants are not materialized here.
func (s *Store) Capabilities(id domain.Identity) []security.Capability {
	set := s.permissions[id]
	out := make([]security.Capability, 0, len(set))
	for cap := range set {
		out = append(out, cap)
	}
	slices.Sort(out)
	return out
}

// GrantDefaults seeds the own-record capability set for a new admin without
// disturbing grants they already hold.
func (s *Store) GrantDefaults(id domain.Identity) {
	for _, cap := range security.DefaultAdminCapabilities {
		s.Grant(id, cap)
	}
}
