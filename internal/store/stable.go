package store

import (
	"strings"

	"github.com/yourorg/adminstate/internal/domain"
	"github.com/yourorg/adminstate/internal/security"
)

// StableVersion is the current snapshot schema version. Loading tolerates
// older blobs: absent fields decode to zero values and are defaulted below,
// so forward schema evolution never breaks restore.
const StableVersion = 1

// Stable is the serializable projection of the authoritative state taken
// before process suspension. Primary mappings are flattened to id-ordered
// lists; derived indexes and the rate-limit buckets are deliberately absent.
// Indexes are rebuilt from the primaries on restore, and rate windows are
// short enough that losing them across a restart is harmless.
type Stable struct {
	Version           int                                       `json:"version"`
	Controllers       []domain.Identity                         `json:"controllers"`
	Admins            []domain.Identity                         `json:"admins"`
	Roles             map[string]domain.Identity                `json:"roles,omitempty"`
	Permissions       map[domain.Identity][]security.Capability `json:"permissions,omitempty"`
	Contacts          []domain.Contact                          `json:"contacts"`
	NextContactID     domain.ContactID                          `json:"next_contact_id"`
	Deals             []domain.Deal                             `json:"deals"`
	NextDealID        domain.DealID                             `json:"next_deal_id"`
	Transactions      []domain.Transaction                      `json:"transactions"`
	NextTransactionID domain.TransactionID                      `json:"next_transaction_id"`
	FeatureFlags      []domain.FeatureFlag                      `json:"feature_flags,omitempty"`
	AuditLog          []domain.AuditLogEntry                    `json:"audit_log,omitempty"`
	NextAuditID       uint64                                    `json:"next_audit_id,omitempty"`
	ActivityLog       []domain.ActivityRecord                   `json:"activity_log,omitempty"`
	MetricsHistory    []domain.MetricsSnapshot                  `json:"metrics_history,omitempty"`
}

// Stable projects the store into its serializable form. Collections are
// emitted in ascending key order so identical states produce identical blobs.
func (s *Store) Stable() Stable {
	st := Stable{
		Version:           StableVersion,
		Controllers:       s.Controllers(),
		Admins:            s.Admins(),
		NextContactID:     s.nextContactID,
		NextDealID:        s.nextDealID,
		NextTransactionID: s.nextTransactionID,
		NextAuditID:       s.nextAuditID,
		AuditLog:          append([]domain.AuditLogEntry(nil), s.auditLog...),
		ActivityLog:       append([]domain.ActivityRecord(nil), s.activityLog...),
		MetricsHistory:    append([]domain.MetricsSnapshot(nil), s.metricsHistory...),
	}

	if len(s.roles) > 0 {
		st.Roles = make(map[string]domain.Identity, len(s.roles))
		for r, id := range s.roles {
			st.Roles[r] = id
		}
	}
	if len(s.permissions) > 0 {
		st.Permissions = make(map[domain.Identity][]security.Capability, len(s.permissions))
		for id := range s.permissions {
			st.Permissions[id] = s.Capabilities(id)
		}
	}

	for _, id := range sortedKeys(s.contacts) {
		st.Contacts = append(st.Contacts, s.contacts[id])
	}
	for _, id := range sortedKeys(s.deals) {
		st.Deals = append(st.Deals, s.deals[id])
	}
	for _, id := range sortedKeys(s.transactions) {
		st.Transactions = append(st.Transactions, s.transactions[id])
	}
	st.FeatureFlags = s.Flags()
	return st
}

// FromStable rebuilds a live store from its serializable form: primaries are
// reinstated, every secondary index is reconstructed by one pass over its
// primary mapping, and missing counters are derived from the data so blobs
// written before a counter existed still load.
func FromStable(st Stable, clock domain.Clock) *Store {
	s := New(clock)
	s.controllers = append(s.controllers, st.Controllers...)
	s.admins = append(s.admins, st.Admins...)
	for r, id := range st.Roles {
		s.roles[r] = id
	}
	for id, caps := range st.Permissions {
		for _, cap := range caps {
			s.Grant(id, cap)
		}
	}

	for _, c := range st.Contacts {
		s.contacts[c.ID] = c
	}
	for _, d := range st.Deals {
		s.deals[d.ID] = d
	}
	for _, tx := range st.Transactions {
		s.transactions[tx.ID] = tx
	}
	for _, f := range st.FeatureFlags {
		s.flags[f.Key] = f
	}
	s.auditLog = append(s.auditLog, st.AuditLog...)
	s.activityLog = append(s.activityLog, st.ActivityLog...)
	s.metricsHistory = append(s.metricsHistory, st.MetricsHistory...)

	s.nextContactID = nextCounter(st.NextContactID, sortedKeys(s.contacts))
	s.nextDealID = nextCounter(st.NextDealID, sortedKeys(s.deals))
	s.nextTransactionID = nextCounter(st.NextTransactionID, sortedKeys(s.transactions))
	s.nextAuditID = st.NextAuditID
	if s.nextAuditID == 0 {
		s.nextAuditID = 1
		if n := len(s.auditLog); n > 0 {
			s.nextAuditID = s.auditLog[n-1].ID + 1
		}
	}

	s.rebuildIndexes()
	return s
}

// rebuildIndexes derives every secondary index from its primary mapping.
// Indexes are never persisted; this is the only way they come into being
// after a restore.
func (s *Store) rebuildIndexes() {
	s.contactsByEmail = make(map[string]domain.ContactID, len(s.contacts))
	s.contactsByUser = make(map[string]domain.ContactID)
	for _, id := range sortedKeys(s.contacts) {
		c := s.contacts[id]
		s.contactsByEmail[strings.ToLower(c.Email)] = id
		if c.UserID != "" {
			s.contactsByUser[c.UserID] = id
		}
	}

	s.dealsByContact = make(map[domain.ContactID][]domain.DealID)
	for _, id := range sortedKeys(s.deals) {
		d := s.deals[id]
		s.dealsByContact[d.ContactID] = append(s.dealsByContact[d.ContactID], id)
	}
}

// nextCounter picks the persisted counter when present, otherwise one past
// the highest live id (1 on an empty mapping).
func nextCounter[K ~uint64](persisted K, sorted []K) K {
	if persisted != 0 {
		return persisted
	}
	if len(sorted) == 0 {
		return 1
	}
	return sorted[len(sorted)-1] + 1
}
