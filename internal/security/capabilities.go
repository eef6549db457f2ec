package security

// Capability is a named, grantable right. Controllers implicitly hold every
// capability; admins hold only what has been granted to them.
type Capability string

const (
	CapViewOwnContacts   Capability = "view_own_contacts"
	CapViewAllContacts   Capability = "view_all_contacts"
	CapEditOwnContacts   Capability = "edit_own_contacts"
	CapEditAllContacts   Capability = "edit_all_contacts"
	CapDeleteOwnContacts Capability = "delete_own_contacts"
	CapDeleteAllContacts Capability = "delete_all_contacts"

	CapViewOwnDeals   Capability = "view_own_deals"
	CapViewAllDeals   Capability = "view_all_deals"
	CapEditOwnDeals   Capability = "edit_own_deals"
	CapEditAllDeals   Capability = "edit_all_deals"
	CapDeleteOwnDeals Capability = "delete_own_deals"
	CapDeleteAllDeals Capability = "delete_all_deals"

	CapManageFeatureFlags Capability = "manage_feature_flags"
	CapViewAuditLogs      Capability = "view_audit_logs"
)

// Valid reports whether c is a known capability.
func (c Capability) Valid() bool {
	switch c {
	case CapViewOwnContacts, CapViewAllContacts, CapEditOwnContacts,
		CapEditAllContacts, CapDeleteOwnContacts, CapDeleteAllContacts,
		CapViewOwnDeals, CapViewAllDeals, CapEditOwnDeals, CapEditAllDeals,
		CapDeleteOwnDeals, CapDeleteAllDeals,
		CapManageFeatureFlags, CapViewAuditLogs:
		return true
	}
	return false
}

// DefaultAdminCapabilities is the "own-record" set seeded once when a new
// admin is onboarded.
var DefaultAdminCapabilities = []Capability{
	CapViewOwnContacts,
	CapEditOwnContacts,
	CapViewOwnDeals,
	CapEditOwnDeals,
}
