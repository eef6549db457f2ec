package domain

// AuditLogEntry records one administrative action. Entries are append-only
// and pruned in batches once the retention bound is exceeded.
type AuditLogEntry struct {
	ID         uint64    `json:"id"`
	Timestamp  Timestamp `json:"timestamp"`
	Actor      Identity  `json:"actor"`
	Action     string    `json:"action"`
	TargetType string    `json:"target_type"`
	TargetID   string    `json:"target_id"`
	Details    string    `json:"details,omitempty"`
}

// AuditQuery filters the audit log. All set fields must match; results are
// returned newest first and truncated to Limit (default 100).
type AuditQuery struct {
	Action     string
	TargetType string
	Actor      *Identity
	Limit      uint64
}

// ActivityRecord is one telemetry event in the bounded activity log.
type ActivityRecord struct {
	UserID    string    `json:"user_id"`
	Action    string    `json:"action"`
	Metadata  string    `json:"metadata,omitempty"`
	Timestamp Timestamp `json:"timestamp"`
}

// MetricsSnapshot is one point-in-time platform metrics sample.
type MetricsSnapshot struct {
	TotalUsers      uint64    `json:"total_users"`
	ActiveUsers24h  uint64    `json:"active_users_24h"`
	ActiveUsers7d   uint64    `json:"active_users_7d"`
	ActiveUsers30d  uint64    `json:"active_users_30d"`
	TotalCaptures   uint64    `json:"total_captures"`
	TotalSprints    uint64    `json:"total_sprints"`
	TotalWorkspaces uint64    `json:"total_workspaces"`
	Timestamp       Timestamp `json:"timestamp"`
}
