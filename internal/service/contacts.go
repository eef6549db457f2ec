package service

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/yourorg/adminstate/internal/domain"
	"github.com/yourorg/adminstate/internal/security"
)

// CreateContact creates a contact owned by the caller. Admin-only; field
// validation and the email uniqueness invariant both surface as
// ErrValidation.
func (s *Service) CreateContact(ctx context.Context, caller domain.Identity, req domain.CreateContactRequest) (domain.Contact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	log := s.opLogger("create_contact", caller)

	if err := s.requireAdmin(ctx, caller); err != nil {
		return domain.Contact{}, deny(log, "create_contact", err)
	}
	if err := s.validate.CreateContact(req); err != nil {
		return domain.Contact{}, fail(log, "create_contact", err)
	}

	contact, err := s.state.CreateContact(req, caller)
	if err != nil {
		return domain.Contact{}, fail(log, "create_contact", err)
	}
	s.state.RecordAudit(caller, "create_contact", "contact", strconv.FormatUint(uint64(contact.ID), 10),
		detailsJSON(map[string]string{"email": contact.Email}))
	s.publishRecordGauges()

	ok("create_contact")
	log.Info("contact created", slog.Uint64("contact_id", uint64(contact.ID)))
	return contact, nil
}

// CreateContactFromSignup is the signup intake path for the user-service
// peer. The contact is owned by the service identity; a Lead deal is then
// auto-created best-effort, and its failure is logged and audited but never
// fails the intake.
func (s *Service) CreateContactFromSignup(ctx context.Context, caller domain.Identity, req domain.CreateContactRequest) (domain.Contact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	log := s.opLogger("create_contact_from_signup", caller)

	if !s.state.HoldsRole(RoleUserService, caller) {
		return domain.Contact{}, deny(log, "create_contact_from_signup",
			fmt.Errorf("%w: requires the %s role", domain.ErrUnauthorized, RoleUserService))
	}
	if err := s.validate.CreateContact(req); err != nil {
		return domain.Contact{}, fail(log, "create_contact_from_signup", err)
	}
	if req.Source == "" {
		req.Source = domain.ContactSourceSignup
	}

	contact, err := s.state.CreateContact(req, caller)
	if err != nil {
		return domain.Contact{}, fail(log, "create_contact_from_signup", err)
	}
	contactID := strconv.FormatUint(uint64(contact.ID), 10)
	s.state.RecordAudit(caller, "create_contact_from_signup", "contact", contactID,
		detailsJSON(map[string]string{"email": contact.Email}))

	// The contact is already committed; the pipeline deal is a convenience.
	deal, dealErr := s.state.CreateDeal(domain.CreateDealRequest{
		ContactID: contact.ID,
		Name:      "New signup: Contact #" + contactID,
	}, caller)
	if dealErr != nil {
		log.Warn("signup deal creation failed", slog.String("error", dealErr.Error()))
		s.state.RecordAudit(caller, "signup_deal_failed", "contact", contactID,
			detailsJSON(map[string]string{"error": dealErr.Error()}))
	} else {
		s.state.RecordAudit(caller, "create_deal", "deal", strconv.FormatUint(uint64(deal.ID), 10),
			detailsJSON(map[string]string{"origin": "signup"}))
	}
	s.publishRecordGauges()

	ok("create_contact_from_signup")
	log.Info("signup contact created", slog.Uint64("contact_id", uint64(contact.ID)))
	return contact, nil
}

// contactVisible applies the view side of row-level security to one record.
func (s *Service) contactVisible(caller domain.Identity, c domain.Contact) bool {
	if s.state.HasCapability(caller, security.CapViewAllContacts) {
		return true
	}
	return s.state.HasCapability(caller, security.CapViewOwnContacts) && c.Owner == caller
}

// GetContact looks up a contact by id. Records outside the caller's view are
// reported as absent rather than revealing their existence.
func (s *Service) GetContact(ctx context.Context, caller domain.Identity, id domain.ContactID) (domain.Contact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	log := s.opLogger("get_contact", caller)

	if err := s.requireAdmin(ctx, caller); err != nil {
		return domain.Contact{}, deny(log, "get_contact", err)
	}
	c, found := s.state.ContactByID(id)
	if !found || !s.contactVisible(caller, c) {
		ok("get_contact")
		return domain.Contact{}, fmt.Errorf("contact %d: %w", id, domain.ErrNotFound)
	}
	ok("get_contact")
	return c, nil
}

// GetContactByEmail looks up a contact by case-insensitive email under the
// same visibility rule as GetContact.
func (s *Service) GetContactByEmail(ctx context.Context, caller domain.Identity, email string) (domain.Contact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	log := s.opLogger("get_contact_by_email", caller)

	if err := s.requireAdmin(ctx, caller); err != nil {
		return domain.Contact{}, deny(log, "get_contact_by_email", err)
	}
	c, found := s.state.ContactByEmail(email)
	if !found || !s.contactVisible(caller, c) {
		ok("get_contact_by_email")
		return domain.Contact{}, fmt.Errorf("contact %q: %w", email, domain.ErrNotFound)
	}
	ok("get_contact_by_email")
	return c, nil
}

// GetContactByUserID looks up a contact by its external user reference. Open
// to admins and the user-service peer, which resolves its own signups here.
func (s *Service) GetContactByUserID(ctx context.Context, caller domain.Identity, userID string) (domain.Contact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	log := s.opLogger("get_contact_by_user", caller)

	if s.state.HoldsRole(RoleUserService, caller) {
		c, found := s.state.ContactByUserID(userID)
		if !found {
			ok("get_contact_by_user")
			return domain.Contact{}, fmt.Errorf("contact for user %q: %w", userID, domain.ErrNotFound)
		}
		ok("get_contact_by_user")
		return c, nil
	}

	if err := s.requireAdmin(ctx, caller); err != nil {
		return domain.Contact{}, deny(log, "get_contact_by_user", err)
	}
	c, found := s.state.ContactByUserID(userID)
	if !found || !s.contactVisible(caller, c) {
		ok("get_contact_by_user")
		return domain.Contact{}, fmt.Errorf("contact for user %q: %w", userID, domain.ErrNotFound)
	}
	ok("get_contact_by_user")
	return c, nil
}

// ListContacts returns one RLS-filtered page. A caller with neither view
// capability gets an empty page, not an error; view-own restricts candidates
// to the caller's records before filters apply.
func (s *Service) ListContacts(ctx context.Context, caller domain.Identity, filter domain.ContactFilter, pg domain.Pagination) (domain.Page[domain.Contact], error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	log := s.opLogger("list_contacts", caller)
	pg = pg.OrDefault()

	if err := s.requireAdmin(ctx, caller); err != nil {
		return domain.Page[domain.Contact]{}, deny(log, "list_contacts", err)
	}

	viewAll := s.state.HasCapability(caller, security.CapViewAllContacts)
	viewOwn := s.state.HasCapability(caller, security.CapViewOwnContacts)
	switch {
	case viewAll:
		ok("list_contacts")
		return s.state.ListContacts(filter, pg, nil), nil
	case viewOwn:
		ok("list_contacts")
		return s.state.ListContacts(filter, pg, &caller), nil
	default:
		ok("list_contacts")
		return domain.EmptyPage[domain.Contact](pg), nil
	}
}

// UpdateContact applies a partial update under the ownership+permission rule,
// evaluated against the record's current owner.
func (s *Service) UpdateContact(ctx context.Context, caller domain.Identity, req domain.UpdateContactRequest) (domain.Contact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	log := s.opLogger("update_contact", caller)

	if err := s.requireAdmin(ctx, caller); err != nil {
		return domain.Contact{}, deny(log, "update_contact", err)
	}
	if err := s.validate.UpdateContact(req); err != nil {
		return domain.Contact{}, fail(log, "update_contact", err)
	}

	current, found := s.state.ContactByID(req.ID)
	if !found {
		return domain.Contact{}, fail(log, "update_contact", fmt.Errorf("contact %d: %w", req.ID, domain.ErrNotFound))
	}
	hasAll := s.state.HasCapability(caller, security.CapEditAllContacts)
	hasOwn := s.state.HasCapability(caller, security.CapEditOwnContacts)
	if !security.CanMutateRecord(hasAll, hasOwn, caller, current.Owner) {
		return domain.Contact{}, deny(log, "update_contact",
			fmt.Errorf("%w: cannot edit contact %d", domain.ErrUnauthorized, req.ID))
	}

	updated, err := s.state.UpdateContact(req)
	if err != nil {
		return domain.Contact{}, fail(log, "update_contact", err)
	}
	s.state.RecordAudit(caller, "update_contact", "contact", strconv.FormatUint(uint64(req.ID), 10),
		detailsJSON(map[string]any{"old_status": current.Status, "new_status": updated.Status}))

	ok("update_contact")
	log.Info("contact updated", slog.Uint64("contact_id", uint64(req.ID)))
	return updated, nil
}

// DeleteContact removes a contact and cascades to its deals, under the
// ownership+permission rule.
func (s *Service) DeleteContact(ctx context.Context, caller domain.Identity, id domain.ContactID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	log := s.opLogger("delete_contact", caller)

	if err := s.requireAdmin(ctx, caller); err != nil {
		return deny(log, "delete_contact", err)
	}

	current, found := s.state.ContactByID(id)
	if !found {
		return fail(log, "delete_contact", fmt.Errorf("contact %d: %w", id, domain.ErrNotFound))
	}
	hasAll := s.state.HasCapability(caller, security.CapDeleteAllContacts)
	hasOwn := s.state.HasCapability(caller, security.CapDeleteOwnContacts)
	if !security.CanMutateRecord(hasAll, hasOwn, caller, current.Owner) {
		return deny(log, "delete_contact",
			fmt.Errorf("%w: cannot delete contact %d", domain.ErrUnauthorized, id))
	}

	_, cascaded, err := s.state.DeleteContact(id)
	if err != nil {
		return fail(log, "delete_contact", err)
	}
	s.state.RecordAudit(caller, "delete_contact", "contact", strconv.FormatUint(uint64(id), 10),
		detailsJSON(map[string]any{"email": current.Email, "cascaded_deals": len(cascaded)}))
	s.publishRecordGauges()

	ok("delete_contact")
	log.Info("contact deleted",
		slog.Uint64("contact_id", uint64(id)),
		slog.Int("cascaded_deals", len(cascaded)),
	)
	return nil
}
