package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/yourorg/adminstate/internal/domain"
	"github.com/yourorg/adminstate/internal/security"
)

// SetFeatureFlag upserts a flag wholesale. Requires the manage-feature-flags
// capability (controllers implicitly qualify).
func (s *Service) SetFeatureFlag(ctx context.Context, caller domain.Identity, req domain.SetFeatureFlagRequest) (domain.FeatureFlag, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	log := s.opLogger("set_feature_flag", caller)

	if err := s.requireAdmin(ctx, caller); err != nil {
		return domain.FeatureFlag{}, deny(log, "set_feature_flag", err)
	}
	if !s.state.HasCapability(caller, security.CapManageFeatureFlags) {
		return domain.FeatureFlag{}, deny(log, "set_feature_flag",
			fmt.Errorf("%w: missing %s", domain.ErrUnauthorized, security.CapManageFeatureFlags))
	}
	if err := s.validate.SetFeatureFlag(req); err != nil {
		return domain.FeatureFlag{}, fail(log, "set_feature_flag", err)
	}

	flag := s.state.SetFlag(req)
	s.state.RecordAudit(caller, "set_feature_flag", "feature_flag", req.Key,
		detailsJSON(map[string]any{"enabled": req.Enabled, "percentage": req.Percentage, "allow_list": len(req.AllowList)}))

	ok("set_feature_flag")
	log.Info("feature flag set", slog.String("key", req.Key), slog.Bool("enabled", req.Enabled))
	return flag, nil
}

// FeatureFlagByKey returns the stored flag record. Admin-only.
func (s *Service) FeatureFlagByKey(ctx context.Context, caller domain.Identity, key string) (domain.FeatureFlag, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	log := s.opLogger("get_feature_flag", caller)

	if err := s.requireAdmin(ctx, caller); err != nil {
		return domain.FeatureFlag{}, deny(log, "get_feature_flag", err)
	}
	flag, found := s.state.Flag(key)
	if !found {
		ok("get_feature_flag")
		return domain.FeatureFlag{}, fmt.Errorf("feature flag %q: %w", key, domain.ErrNotFound)
	}
	ok("get_feature_flag")
	return flag, nil
}

// ListFeatureFlags returns all flags sorted by key. Admin-only.
func (s *Service) ListFeatureFlags(ctx context.Context, caller domain.Identity) ([]domain.FeatureFlag, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	log := s.opLogger("list_feature_flags", caller)

	if err := s.requireAdmin(ctx, caller); err != nil {
		return nil, deny(log, "list_feature_flags", err)
	}
	ok("list_feature_flags")
	return s.state.Flags(), nil
}

// IsFeatureEnabled evaluates a flag for the caller's own identity. Open to
// any resolved identity; evaluation is read-only and unaudited.
func (s *Service) IsFeatureEnabled(_ context.Context, caller domain.Identity, key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	enabled := s.state.IsFeatureEnabled(key, caller)
	ok("is_feature_enabled")
	return enabled
}
