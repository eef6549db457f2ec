// Package service is the single entry point for every store operation. Each
// call resolves authorization against the identity registry and permission
// table, consults the rate limiter where required, mutates the store, and
// appends to the audit trail. A mutex serializes all calls; the store itself
// assumes a single writer.
package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/yourorg/adminstate/internal/domain"
	"github.com/yourorg/adminstate/internal/observability/metrics"
	"github.com/yourorg/adminstate/internal/security/ratelimit"
	"github.com/yourorg/adminstate/internal/store"
	"github.com/yourorg/adminstate/internal/validation"
	"github.com/yourorg/adminstate/pkg/cache"
)

// Role names for trusted peer services.
const (
	RoleUserService = "user-service"
	RoleAuthService = "auth-service"
	RoleFrontend    = "frontend"
)

const controllersCacheKey = "auth:controllers"

// Deps are the collaborators the service needs beyond the store.
type Deps struct {
	Clock     domain.Clock
	Oracle    domain.ControllerOracle // nil disables controller refresh
	OracleTTL time.Duration
	Limiter   *ratelimit.Limiter
	Validator *validation.Validator
	Logger    *slog.Logger
}

// Service owns the authoritative store and serializes access to it.
type Service struct {
	mu        sync.Mutex
	state     *store.Store
	clock     domain.Clock
	oracle    domain.ControllerOracle
	oracleTTL time.Duration
	oracleMem *cache.Cache
	limiter   *ratelimit.Limiter
	validate  *validation.Validator
	logger    *slog.Logger
}

// New wires a service around state.
func New(state *store.Store, deps Deps) *Service {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	validate := deps.Validator
	if validate == nil {
		validate = validation.New()
	}
	ttl := deps.OracleTTL
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &Service{
		state:     state,
		clock:     deps.Clock,
		oracle:    deps.Oracle,
		oracleTTL: ttl,
		oracleMem: cache.New(),
		limiter:   deps.Limiter,
		validate:  validate,
		logger:    logger,
	}
}

// refreshControllers replaces the controller set from the platform oracle,
// at most once per TTL. Without an oracle this is a no-op; the bootstrap set
// then stands alone.
func (s *Service) refreshControllers(ctx context.Context) error {
	if s.oracle == nil {
		return nil
	}
	if _, fresh := s.oracleMem.Get(controllersCacheKey); fresh {
		return nil
	}
	ids, err := s.oracle.Controllers(ctx)
	if err != nil {
		return fmt.Errorf("refresh controllers: %w", err)
	}
	s.state.SetControllers(ids)
	s.oracleMem.Set(controllersCacheKey, len(ids), s.oracleTTL)
	return nil
}

// requireController authorizes caller as a controller. An unrecognized caller
// triggers one oracle refresh to tolerate controller-set drift; a refresh
// failure denies the call rather than trusting the stale set.
func (s *Service) requireController(ctx context.Context, caller domain.Identity) error {
	if s.state.IsController(caller) {
		return nil
	}
	if err := s.refreshControllers(ctx); err != nil {
		s.logger.Warn("controller refresh failed", slog.String("error", err.Error()))
		return fmt.Errorf("%w: controller verification unavailable", domain.ErrUnauthorized)
	}
	if s.state.IsController(caller) {
		return nil
	}
	return fmt.Errorf("%w: not a controller", domain.ErrUnauthorized)
}

// requireAdmin authorizes caller as an admin (controllers included), with the
// same one-shot refresh for unrecognized callers.
func (s *Service) requireAdmin(ctx context.Context, caller domain.Identity) error {
	if s.state.IsAdmin(caller) {
		return nil
	}
	if err := s.refreshControllers(ctx); err != nil {
		s.logger.Warn("controller refresh failed", slog.String("error", err.Error()))
		return fmt.Errorf("%w: admin verification unavailable", domain.ErrUnauthorized)
	}
	if s.state.IsAdmin(caller) {
		return nil
	}
	return fmt.Errorf("%w: not an admin", domain.ErrUnauthorized)
}

// opLogger returns a logger carrying the operation name, a fresh request id,
// and the caller.
func (s *Service) opLogger(op string, caller domain.Identity) *slog.Logger {
	return s.logger.With(
		slog.String("op", op),
		slog.String("request_id", uuid.NewString()),
		slog.String("caller", string(caller)),
	)
}

// deny records an authorization rejection consistently.
func deny(log *slog.Logger, op string, err error) error {
	metrics.ObserveDenied(op)
	metrics.ObserveOperation(op, "denied")
	log.Warn("denied", slog.String("error", err.Error()))
	return err
}

// fail records a non-authorization failure consistently.
func fail(log *slog.Logger, op string, err error) error {
	metrics.ObserveOperation(op, "error")
	log.Warn("failed", slog.String("error", err.Error()))
	return err
}

// ok records a successful operation.
func ok(op string) {
	metrics.ObserveOperation(op, "ok")
}

// detailsJSON renders audit details; marshal failures degrade to empty
// details rather than failing the operation.
func detailsJSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(b)
}

// publishRecordGauges pushes current record counts to the metrics registry.
// Called after mutations that change entity counts.
func (s *Service) publishRecordGauges() {
	st := s.state.Stats()
	metrics.SetRecordCount("contacts", st.TotalContacts)
	metrics.SetRecordCount("deals", st.TotalDeals)
	metrics.SetRecordCount("transactions", st.TotalTransactions)
	metrics.SetRecordCount("audit_entries", uint64(s.state.AuditLen()))
}
