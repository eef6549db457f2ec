package service

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/yourorg/adminstate/internal/domain"
	"github.com/yourorg/adminstate/internal/security"
)

// CreateDeal creates a deal owned and created by the caller. The referenced
// contact must exist; new deals always start in the Lead stage.
func (s *Service) CreateDeal(ctx context.Context, caller domain.Identity, req domain.CreateDealRequest) (domain.Deal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	log := s.opLogger("create_deal", caller)

	if err := s.requireAdmin(ctx, caller); err != nil {
		return domain.Deal{}, deny(log, "create_deal", err)
	}
	if err := s.validate.CreateDeal(req); err != nil {
		return domain.Deal{}, fail(log, "create_deal", err)
	}

	deal, err := s.state.CreateDeal(req, caller)
	if err != nil {
		return domain.Deal{}, fail(log, "create_deal", err)
	}
	s.state.RecordAudit(caller, "create_deal", "deal", strconv.FormatUint(uint64(deal.ID), 10),
		detailsJSON(map[string]any{"contact_id": deal.ContactID, "name": deal.Name}))
	s.publishRecordGauges()

	ok("create_deal")
	log.Info("deal created", slog.Uint64("deal_id", uint64(deal.ID)))
	return deal, nil
}

func (s *Service) dealVisible(caller domain.Identity, d domain.Deal) bool {
	if s.state.HasCapability(caller, security.CapViewAllDeals) {
		return true
	}
	return s.state.HasCapability(caller, security.CapViewOwnDeals) && d.Owner == caller
}

// GetDeal looks up a deal by id. Records outside the caller's view are
// reported as absent.
func (s *Service) GetDeal(ctx context.Context, caller domain.Identity, id domain.DealID) (domain.Deal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	log := s.opLogger("get_deal", caller)

	if err := s.requireAdmin(ctx, caller); err != nil {
		return domain.Deal{}, deny(log, "get_deal", err)
	}
	d, found := s.state.DealByID(id)
	if !found || !s.dealVisible(caller, d) {
		ok("get_deal")
		return domain.Deal{}, fmt.Errorf("deal %d: %w", id, domain.ErrNotFound)
	}
	ok("get_deal")
	return d, nil
}

// ListDeals returns one RLS-filtered page, same visibility shape as
// ListContacts.
func (s *Service) ListDeals(ctx context.Context, caller domain.Identity, filter domain.DealFilter, pg domain.Pagination) (domain.Page[domain.Deal], error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	log := s.opLogger("list_deals", caller)
	pg = pg.OrDefault()

	if err := s.requireAdmin(ctx, caller); err != nil {
		return domain.Page[domain.Deal]{}, deny(log, "list_deals", err)
	}

	viewAll := s.state.HasCapability(caller, security.CapViewAllDeals)
	viewOwn := s.state.HasCapability(caller, security.CapViewOwnDeals)
	switch {
	case viewAll:
		ok("list_deals")
		return s.state.ListDeals(filter, pg, nil), nil
	case viewOwn:
		ok("list_deals")
		return s.state.ListDeals(filter, pg, &caller), nil
	default:
		ok("list_deals")
		return domain.EmptyPage[domain.Deal](pg), nil
	}
}

// UpdateDeal applies a partial update under the ownership+permission rule,
// evaluated against the record's current owner.
func (s *Service) UpdateDeal(ctx context.Context, caller domain.Identity, req domain.UpdateDealRequest) (domain.Deal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	log := s.opLogger("update_deal", caller)

	if err := s.requireAdmin(ctx, caller); err != nil {
		return domain.Deal{}, deny(log, "update_deal", err)
	}
	if err := s.validate.UpdateDeal(req); err != nil {
		return domain.Deal{}, fail(log, "update_deal", err)
	}

	current, found := s.state.DealByID(req.ID)
	if !found {
		return domain.Deal{}, fail(log, "update_deal", fmt.Errorf("deal %d: %w", req.ID, domain.ErrNotFound))
	}
	hasAll := s.state.HasCapability(caller, security.CapEditAllDeals)
	hasOwn := s.state.HasCapability(caller, security.CapEditOwnDeals)
	if !security.CanMutateRecord(hasAll, hasOwn, caller, current.Owner) {
		return domain.Deal{}, deny(log, "update_deal",
			fmt.Errorf("%w: cannot edit deal %d", domain.ErrUnauthorized, req.ID))
	}

	updated, err := s.state.UpdateDeal(req)
	if err != nil {
		return domain.Deal{}, fail(log, "update_deal", err)
	}
	s.state.RecordAudit(caller, "update_deal", "deal", strconv.FormatUint(uint64(req.ID), 10),
		detailsJSON(map[string]any{"old_stage": current.Stage, "new_stage": updated.Stage}))

	ok("update_deal")
	log.Info("deal updated", slog.Uint64("deal_id", uint64(req.ID)))
	return updated, nil
}

// UpdateDealStage is the stage-only fast path, under the same edit rule as
// UpdateDeal.
func (s *Service) UpdateDealStage(ctx context.Context, caller domain.Identity, id domain.DealID, stage domain.DealStage) (domain.Deal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	log := s.opLogger("update_deal_stage", caller)

	if err := s.requireAdmin(ctx, caller); err != nil {
		return domain.Deal{}, deny(log, "update_deal_stage", err)
	}
	if err := s.validate.DealStage(stage); err != nil {
		return domain.Deal{}, fail(log, "update_deal_stage", err)
	}

	current, found := s.state.DealByID(id)
	if !found {
		return domain.Deal{}, fail(log, "update_deal_stage", fmt.Errorf("deal %d: %w", id, domain.ErrNotFound))
	}
	hasAll := s.state.HasCapability(caller, security.CapEditAllDeals)
	hasOwn := s.state.HasCapability(caller, security.CapEditOwnDeals)
	if !security.CanMutateRecord(hasAll, hasOwn, caller, current.Owner) {
		return domain.Deal{}, deny(log, "update_deal_stage",
			fmt.Errorf("%w: cannot edit deal %d", domain.ErrUnauthorized, id))
	}

	updated, err := s.state.UpdateDealStage(id, stage)
	if err != nil {
		return domain.Deal{}, fail(log, "update_deal_stage", err)
	}
	s.state.RecordAudit(caller, "update_deal_stage", "deal", strconv.FormatUint(uint64(id), 10),
		detailsJSON(map[string]any{"old_stage": current.Stage, "new_stage": stage}))

	ok("update_deal_stage")
	log.Info("deal stage updated",
		slog.Uint64("deal_id", uint64(id)),
		slog.String("stage", string(stage)),
	)
	return updated, nil
}

// DeleteDeal removes a deal under the ownership+permission rule, unlinking it
// from the owning contact's deal list.
func (s *Service) DeleteDeal(ctx context.Context, caller domain.Identity, id domain.DealID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	log := s.opLogger("delete_deal", caller)

	if err := s.requireAdmin(ctx, caller); err != nil {
		return deny(log, "delete_deal", err)
	}

	current, found := s.state.DealByID(id)
	if !found {
		return fail(log, "delete_deal", fmt.Errorf("deal %d: %w", id, domain.ErrNotFound))
	}
	hasAll := s.state.HasCapability(caller, security.CapDeleteAllDeals)
	hasOwn := s.state.HasCapability(caller, security.CapDeleteOwnDeals)
	if !security.CanMutateRecord(hasAll, hasOwn, caller, current.Owner) {
		return deny(log, "delete_deal",
			fmt.Errorf("%w: cannot delete deal %d", domain.ErrUnauthorized, id))
	}

	if _, err := s.state.DeleteDeal(id); err != nil {
		return fail(log, "delete_deal", err)
	}
	s.state.RecordAudit(caller, "delete_deal", "deal", strconv.FormatUint(uint64(id), 10),
		detailsJSON(map[string]any{"contact_id": current.ContactID}))
	s.publishRecordGauges()

	ok("delete_deal")
	log.Info("deal deleted", slog.Uint64("deal_id", uint64(id)))
	return nil
}
