package store

import (
	"fmt"
	"strings"

	"github.com/yourorg/adminstate/internal/domain"
)

// CreateContact inserts a new contact owned by owner. The email index is
// keyed by lowercased email and must stay one-to-one, so a duplicate email
// (or duplicate external user reference) is rejected before any state
// changes; the primary insert and both index updates then happen together.
func (s *Store) CreateContact(req domain.CreateContactRequest, owner domain.Identity) (domain.Contact, error) {
	emailKey := strings.ToLower(req.Email)
	if _, exists := s.contactsByEmail[emailKey]; exists {
		return domain.Contact{}, fmt.Errorf("%w: email already registered", domain.ErrValidation)
	}
	if req.UserID != "" {
		if _, exists := s.contactsByUser[req.UserID]; exists {
			return domain.Contact{}, fmt.Errorf("%w: user reference already registered", domain.ErrValidation)
		}
	}

	now := s.clock.Now()
	source := req.Source
	if source == "" {
		source = domain.ContactSourceSignup
	}

	contact := domain.Contact{
		ID:           s.nextContactID,
		UserID:       req.UserID,
		Email:        req.Email,
		Name:         req.Name,
		Company:      req.Company,
		JobTitle:     req.JobTitle,
		InterestArea: req.InterestArea,
		Source:       source,
		Notes:        req.Notes,
		Status:       domain.ContactStatusActive,
		Owner:        owner,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	s.nextContactID++

	s.contacts[contact.ID] = contact
	s.contactsByEmail[emailKey] = contact.ID
	if req.UserID != "" {
		s.contactsByUser[req.UserID] = contact.ID
	}
	return contact, nil
}

// ContactByID looks up a contact. Absence is not an error.
func (s *Store) ContactByID(id domain.ContactID) (domain.Contact, bool) {
	c, ok := s.contacts[id]
	return c, ok
}

// ContactByEmail looks up a contact by case-insensitive email.
func (s *Store) ContactByEmail(email string) (domain.Contact, bool) {
	id, ok := s.contactsByEmail[strings.ToLower(email)]
	if !ok {
		return domain.Contact{}, false
	}
	return s.contacts[id], true
}

// ContactByUserID looks up a contact by its external user reference.
func (s *Store) ContactByUserID(userID string) (domain.Contact, bool) {
	id, ok := s.contactsByUser[userID]
	if !ok {
		return domain.Contact{}, false
	}
	return s.contacts[id], true
}

// ListContacts returns one page over contacts in insertion order. ownedBy,
// when set, restricts the candidate set to that owner before filters apply;
// the service passes it to implement the view-own restriction.
func (s *Store) ListContacts(filter domain.ContactFilter, pg domain.Pagination, ownedBy *domain.Identity) domain.Page[domain.Contact] {
	matched := make([]domain.Contact, 0, len(s.contacts))
	for _, id := range sortedKeys(s.contacts) {
		c := s.contacts[id]
		if ownedBy != nil && c.Owner != *ownedBy {
			continue
		}
		if !contactMatches(c, filter) {
			continue
		}
		matched = append(matched, c)
	}
	return paginate(matched, pg)
}

func contactMatches(c domain.Contact, f domain.ContactFilter) bool {
	if f.Status != nil && c.Status != *f.Status {
		return false
	}
	if f.Source != nil && c.Source != *f.Source {
		return false
	}
	if f.Search != "" {
		q := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(c.Email), q) &&
			!strings.Contains(strings.ToLower(c.Name), q) &&
			!strings.Contains(strings.ToLower(c.Company), q) {
			return false
		}
	}
	return true
}

// UpdateContact applies the fields present in req and bumps updated_at.
// Email and owner never change through this path.
func (s *Store) UpdateContact(req domain.UpdateContactRequest) (domain.Contact, error) {
	c, ok := s.contacts[req.ID]
	if !ok {
		return domain.Contact{}, fmt.Errorf("contact %d: %w", req.ID, domain.ErrNotFound)
	}
	if req.Name != nil {
		c.Name = *req.Name
	}
	if req.Company != nil {
		c.Company = *req.Company
	}
	if req.JobTitle != nil {
		c.JobTitle = *req.JobTitle
	}
	if req.InterestArea != nil {
		c.InterestArea = *req.InterestArea
	}
	if req.Notes != nil {
		c.Notes = *req.Notes
	}
	if req.Status != nil {
		c.Status = *req.Status
	}
	c.UpdatedAt = s.clock.Now()
	s.contacts[req.ID] = c
	return c, nil
}

// DeleteContact removes a contact, its index entries, and every deal that
// references it (deal index entries first, then deal primaries). Returns the
// removed contact and the ids of cascaded deals.
func (s *Store) DeleteContact(id domain.ContactID) (domain.Contact, []domain.DealID, error) {
	c, ok := s.contacts[id]
	if !ok {
		return domain.Contact{}, nil, fmt.Errorf("contact %d: %w", id, domain.ErrNotFound)
	}

	cascaded := s.DealIDsForContact(id)
	delete(s.dealsByContact, id)
	for _, dealID := range cascaded {
		delete(s.deals, dealID)
	}

	delete(s.contacts, id)
	delete(s.contactsByEmail, strings.ToLower(c.Email))
	if c.UserID != "" {
		delete(s.contactsByUser, c.UserID)
	}
	return c, cascaded, nil
}
