// Package store holds the authoritative mutable state of the admin backend:
// identity and role registry, permission table, CRM records, ledger, feature
// flags, and the bounded audit/activity/metrics logs. The aggregate is a
// plain value handed to the service layer; it performs no authorization of
// its own and assumes a single writer (the service serializes access).
package store

import (
	"slices"

	"github.com/yourorg/adminstate/internal/domain"
	"github.com/yourorg/adminstate/internal/security"
)

// Retention bounds for the append-only logs. Pruning happens in batches so
// the amortized cost per insert stays constant.
const (
	auditRetention     = 10000
	auditPruneBatch    = 1000
	activityRetention  = 10000
	activityPruneBatch = 1000
	metricsRetention   = 365
	metricsPruneBatch  = 30
)

// Store is the process-wide state aggregate. Primary mappings are the source
// of truth; the *ByEmail, *ByUser, and dealsByContact indexes are derived and
// always rebuildable from the primaries.
type Store struct {
	clock domain.Clock

	controllers []domain.Identity
	admins      []domain.Identity
	roles       map[string]domain.Identity
	permissions map[domain.Identity]map[security.Capability]struct{}

	contacts        map[domain.ContactID]domain.Contact
	contactsByEmail map[string]domain.ContactID
	contactsByUser  map[string]domain.ContactID
	nextContactID   domain.ContactID

	deals          map[domain.DealID]domain.Deal
	dealsByContact map[domain.ContactID][]domain.DealID
	nextDealID     domain.DealID

	transactions      map[domain.TransactionID]domain.Transaction
	nextTransactionID domain.TransactionID

	flags map[string]domain.FeatureFlag

	auditLog    []domain.AuditLogEntry
	nextAuditID uint64

	activityLog    []domain.ActivityRecord
	metricsHistory []domain.MetricsSnapshot
}

// New creates an empty store. ID counters start at 1; id 0 is never issued.
func New(clock domain.Clock) *Store {
	return &Store{
		clock:             clock,
		roles:             make(map[string]domain.Identity),
		permissions:       make(map[domain.Identity]map[security.Capability]struct{}),
		contacts:          make(map[domain.ContactID]domain.Contact),
		contactsByEmail:   make(map[string]domain.ContactID),
		contactsByUser:    make(map[string]domain.ContactID),
		nextContactID:     1,
		deals:             make(map[domain.DealID]domain.Deal),
		dealsByContact:    make(map[domain.ContactID][]domain.DealID),
		nextDealID:        1,
		transactions:      make(map[domain.TransactionID]domain.Transaction),
		nextTransactionID: 1,
		flags:             make(map[string]domain.FeatureFlag),
		nextAuditID:       1,
	}
}

// Stats summarizes record counts for the admin dashboard.
type Stats struct {
	TotalContacts      uint64 `json:"total_contacts"`
	TotalDeals         uint64 `json:"total_deals"`
	TotalTransactions  uint64 `json:"total_transactions"`
	ActiveFeatureFlags uint64 `json:"active_feature_flags"`
}

// Stats reports current record counts.
func (s *Store) Stats() Stats {
	st := Stats{
		TotalContacts:     uint64(len(s.contacts)),
		TotalDeals:        uint64(len(s.deals)),
		TotalTransactions: uint64(len(s.transactions)),
	}
	for _, f := range s.flags {
		if f.Enabled {
			st.ActiveFeatureFlags++
		}
	}
	return st
}

// MigrateOwnership assigns owner to every contact and deal that has none,
// preserving all other fields. Records created before row-level security was
// introduced carry no owner; they are backfilled once after restore. Returns
// the number of records touched; a store where every record is owned is a
// no-op, which is what makes the migration safe to run on every resume.
func (s *Store) MigrateOwnership(owner domain.Identity) int {
	if owner == "" {
		return 0
	}
	migrated := 0
	for id, c := range s.contacts {
		if c.Owner == "" {
			c.Owner = owner
			s.contacts[id] = c
			migrated++
		}
	}
	for id, d := range s.deals {
		if d.Owner == "" {
			d.Owner = owner
			s.deals[id] = d
			migrated++
		}
	}
	return migrated
}

// sortedKeys returns the map's keys in ascending order. IDs are assigned
// monotonically, so ascending id order is insertion order.
func sortedKeys[K ~uint64, V any](m map[K]V) []K {
	keys := make([]K, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// paginate materializes one page over an already-filtered, ordered list.
// Offset and limit are caller-supplied and unbounded, so the window end is
// clamped without ever computing start+limit, which can wrap.
func paginate[T any](items []T, pg domain.Pagination) domain.Page[T] {
	total := uint64(len(items))
	start := pg.Offset
	if start > total {
		start = total
	}
	end := total
	if pg.Limit < total-start {
		end = start + pg.Limit
	}
	page := make([]T, end-start)
	copy(page, items[start:end])
	return domain.Page[T]{Items: page, Total: total, Offset: pg.Offset, Limit: pg.Limit}
}
