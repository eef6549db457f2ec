package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/yourorg/adminstate/internal/domain"
	"github.com/yourorg/adminstate/internal/observability/metrics"
)

// telemetryRoles are the peer services allowed to write activity telemetry.
var telemetryRoles = []string{RoleUserService, RoleAuthService, RoleFrontend}

func (s *Service) holdsTelemetryRole(caller domain.Identity) bool {
	for _, role := range telemetryRoles {
		if s.state.HoldsRole(role, caller) {
			return true
		}
	}
	return false
}

// LogActivity appends one telemetry event. Open to admins and the registered
// telemetry peers, capped per caller by the sliding-window limiter. Every
// 100th append triggers a limiter sweep; there is no background scheduler to
// do it on a timer.
func (s *Service) LogActivity(ctx context.Context, caller domain.Identity, userID, action, metadata string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	log := s.opLogger("log_activity", caller)

	if !s.holdsTelemetryRole(caller) {
		if err := s.requireAdmin(ctx, caller); err != nil {
			return deny(log, "log_activity", err)
		}
	}
	if action == "" {
		return fail(log, "log_activity", fmt.Errorf("%w: action required", domain.ErrValidation))
	}

	now := s.clock.Now()
	if err := s.limiter.Allow(caller, now); err != nil {
		metrics.ObserveRateLimited()
		metrics.ObserveOperation("log_activity", "rate_limited")
		log.Warn("rate limited", slog.String("error", err.Error()))
		return err
	}

	s.state.LogActivity(userID, action, metadata)
	if s.state.ActivityLen()%100 == 0 {
		s.limiter.Sweep(now)
	}

	ok("log_activity")
	return nil
}

// RecordMetrics appends one platform metrics sample, stamping it with the
// current time when the sample carries none. Admin-only.
func (s *Service) RecordMetrics(ctx context.Context, caller domain.Identity, sample domain.MetricsSnapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	log := s.opLogger("record_metrics", caller)

	if err := s.requireAdmin(ctx, caller); err != nil {
		return deny(log, "record_metrics", err)
	}
	if sample.Timestamp == 0 {
		sample.Timestamp = s.clock.Now()
	}
	s.state.RecordMetrics(sample)

	ok("record_metrics")
	log.Info("metrics recorded", slog.Uint64("total_users", sample.TotalUsers))
	return nil
}

// ListMetrics returns samples within [from, to] inclusive, newest first,
// truncated to limit (default 100). Admin-only.
func (s *Service) ListMetrics(ctx context.Context, caller domain.Identity, from, to domain.Timestamp, limit uint64) ([]domain.MetricsSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	log := s.opLogger("list_metrics", caller)

	if err := s.requireAdmin(ctx, caller); err != nil {
		return nil, deny(log, "list_metrics", err)
	}
	if from > to {
		return nil, fail(log, "list_metrics", fmt.Errorf("%w: range start after range end", domain.ErrValidation))
	}
	ok("list_metrics")
	return s.state.ListMetrics(from, to, limit), nil
}

// LatestMetrics returns the most recent sample. Admin-only.
func (s *Service) LatestMetrics(ctx context.Context, caller domain.Identity) (domain.MetricsSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	log := s.opLogger("latest_metrics", caller)

	if err := s.requireAdmin(ctx, caller); err != nil {
		return domain.MetricsSnapshot{}, deny(log, "latest_metrics", err)
	}
	sample, found := s.state.LatestMetrics()
	if !found {
		ok("latest_metrics")
		return domain.MetricsSnapshot{}, fmt.Errorf("metrics history: %w", domain.ErrNotFound)
	}
	ok("latest_metrics")
	return sample, nil
}
