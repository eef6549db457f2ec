package security

import "github.com/yourorg/adminstate/internal/domain"

// CanMutateRecord is the single ownership+permission rule applied to every
// record edit and delete, parameterized by the two capability checks the
// caller resolved against the record's current owner. Allowed iff the caller
// holds the "-all" capability, or holds the "-own" capability and is the
// owner. An unowned record (legacy, pre-backfill) is only reachable through
// the "-all" capability.
func CanMutateRecord(hasAll, hasOwn bool, caller, owner domain.Identity) bool {
	if hasAll {
		return true
	}
	return hasOwn && owner != "" && caller == owner
}
