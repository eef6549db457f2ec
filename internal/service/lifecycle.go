package service

import (
	"context"
	"log/slog"

	"github.com/yourorg/adminstate/internal/domain"
	"github.com/yourorg/adminstate/internal/snapshot"
)

// Bootstrap seeds the trust anchors on a fresh store: the given identities
// become controllers and are also enrolled as admins with the default
// capability set. Identities already present are left untouched, so running
// this on a restored store is harmless.
func (s *Service) Bootstrap(controllers []domain.Identity) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(controllers) == 0 {
		return
	}
	if len(s.state.Controllers()) == 0 {
		s.state.SetControllers(controllers)
	}
	for _, id := range controllers {
		if !s.state.IsAdmin(id) {
			s.state.AddAdmin(id)
			s.state.GrantDefaults(id)
		}
	}
	s.publishRecordGauges()
	s.logger.Info("bootstrap complete", slog.Int("controllers", len(controllers)))
}

// Snapshot commits the full state through mgr while no operation is in
// flight. The error is the manager's, unsoftened; a failed commit must abort
// the shutdown that requested it.
func (s *Service) Snapshot(ctx context.Context, mgr *snapshot.Manager) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return mgr.Save(ctx, s.state)
}
