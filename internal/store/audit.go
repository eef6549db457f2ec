package store

import "github.com/yourorg/adminstate/internal/domain"

// RecordAudit appends one administrative action to the audit trail and
// prunes the oldest batch once retention is exceeded.
func (s *Store) RecordAudit(actor domain.Identity, action, targetType, targetID, details string) domain.AuditLogEntry {
	entry := domain.AuditLogEntry{
		ID:         s.nextAuditID,
		Timestamp:  s.clock.Now(),
		Actor:      actor,
		Action:     action,
		TargetType: targetType,
		TargetID:   targetID,
		Details:    details,
	}
	s.nextAuditID++
	s.auditLog = append(s.auditLog, entry)

	if len(s.auditLog) > auditRetention {
		s.auditLog = append(s.auditLog[:0:0], s.auditLog[auditPruneBatch:]...)
	}
	return entry
}

// QueryAudit scans the audit trail newest first, applying all set filters as
// a conjunction, truncated to the query limit (default 100).
func (s *Store) QueryAudit(q domain.AuditQuery) []domain.AuditLogEntry {
	limit := q.Limit
	if limit == 0 {
		limit = 100
	}

	out := make([]domain.AuditLogEntry, 0, limit)
	for i := len(s.auditLog) - 1; i >= 0 && uint64(len(out)) < limit; i-- {
		e := s.auditLog[i]
		if q.Action != "" && e.Action != q.Action {
			continue
		}
		if q.TargetType != "" && e.TargetType != q.TargetType {
			continue
		}
		if q.Actor != nil && e.Actor != *q.Actor {
			continue
		}
		out = append(out, e)
	}
	return out
}

// AuditLen reports the current audit trail length.
func (s *Store) AuditLen() int {
	return len(s.auditLog)
}
