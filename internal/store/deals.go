package store

import (
	"fmt"
	"slices"

	"github.com/yourorg/adminstate/internal/domain"
)

// CreateDeal inserts a new deal owned and created by creator. Referential
// integrity against the contact is checked once, here; deals always start in
// the Lead stage.
func (s *Store) CreateDeal(req domain.CreateDealRequest, creator domain.Identity) (domain.Deal, error) {
	if _, ok := s.contacts[req.ContactID]; !ok {
		return domain.Deal{}, fmt.Errorf("contact %d: %w", req.ContactID, domain.ErrNotFound)
	}

	now := s.clock.Now()
	deal := domain.Deal{
		ID:                s.nextDealID,
		ContactID:         req.ContactID,
		Name:              req.Name,
		Value:             req.Value,
		Stage:             domain.DealStageLead,
		Notes:             req.Notes,
		ExpectedCloseDate: req.ExpectedCloseDate,
		Owner:             creator,
		Creator:           creator,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	s.nextDealID++

	s.deals[deal.ID] = deal
	s.dealsByContact[req.ContactID] = append(s.dealsByContact[req.ContactID], deal.ID)
	return deal, nil
}

// DealByID looks up a deal. Absence is not an error.
func (s *Store) DealByID(id domain.DealID) (domain.Deal, bool) {
	d, ok := s.deals[id]
	return d, ok
}

// DealIDsForContact returns the deal ids currently indexed under a contact.
func (s *Store) DealIDsForContact(id domain.ContactID) []domain.DealID {
	return slices.Clone(s.dealsByContact[id])
}

// ListDeals returns one page over deals in insertion order, optionally
// restricted to a single owner before filters apply.
func (s *Store) ListDeals(filter domain.DealFilter, pg domain.Pagination, ownedBy *domain.Identity) domain.Page[domain.Deal] {
	matched := make([]domain.Deal, 0, len(s.deals))
	for _, id := range sortedKeys(s.deals) {
		d := s.deals[id]
		if ownedBy != nil && d.Owner != *ownedBy {
			continue
		}
		if filter.Stage != nil && d.Stage != *filter.Stage {
			continue
		}
		if filter.ContactID != nil && d.ContactID != *filter.ContactID {
			continue
		}
		matched = append(matched, d)
	}
	return paginate(matched, pg)
}

// UpdateDeal applies the fields present in req and bumps updated_at.
func (s *Store) UpdateDeal(req domain.UpdateDealRequest) (domain.Deal, error) {
	d, ok := s.deals[req.ID]
	if !ok {
		return domain.Deal{}, fmt.Errorf("deal %d: %w", req.ID, domain.ErrNotFound)
	}
	if req.Name != nil {
		d.Name = *req.Name
	}
	if req.Value != nil {
		d.Value = req.Value
	}
	if req.Stage != nil {
		d.Stage = *req.Stage
	}
	if req.Notes != nil {
		d.Notes = *req.Notes
	}
	if req.ExpectedCloseDate != nil {
		d.ExpectedCloseDate = *req.ExpectedCloseDate
	}
	d.UpdatedAt = s.clock.Now()
	s.deals[req.ID] = d
	return d, nil
}

// UpdateDealStage moves a deal to stage, leaving all other fields untouched.
func (s *Store) UpdateDealStage(id domain.DealID, stage domain.DealStage) (domain.Deal, error) {
	d, ok := s.deals[id]
	if !ok {
		return domain.Deal{}, fmt.Errorf("deal %d: %w", id, domain.ErrNotFound)
	}
	d.Stage = stage
	d.UpdatedAt = s.clock.Now()
	s.deals[id] = d
	return d, nil
}

// DeleteDeal removes a deal and its entry in the owning contact's deal list.
func (s *Store) DeleteDeal(id domain.DealID) (domain.Deal, error) {
	d, ok := s.deals[id]
	if !ok {
		return domain.Deal{}, fmt.Errorf("deal %d: %w", id, domain.ErrNotFound)
	}
	delete(s.deals, id)

	remaining := slices.DeleteFunc(s.dealsByContact[d.ContactID], func(x domain.DealID) bool { return x == id })
	if len(remaining) == 0 {
		delete(s.dealsByContact, d.ContactID)
	} else {
		s.dealsByContact[d.ContactID] = remaining
	}
	return d, nil
}
