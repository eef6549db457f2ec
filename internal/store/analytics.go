package store

import (
	"slices"

	"github.com/yourorg/adminstate/internal/domain"
)

// LogActivity appends one telemetry event, pruning the oldest batch once
// retention is exceeded.
func (s *Store) LogActivity(userID, action, metadata string) {
	s.activityLog = append(s.activityLog, domain.ActivityRecord{
		UserID:    userID,
		Action:    action,
		Metadata:  metadata,
		Timestamp: s.clock.Now(),
	})
	if len(s.activityLog) > activityRetention {
		s.activityLog = append(s.activityLog[:0:0], s.activityLog[activityPruneBatch:]...)
	}
}

// ActivityLen reports the current activity log length. The service uses it
// as the counter that paces rate-limiter sweeps.
func (s *Store) ActivityLen() int {
	return len(s.activityLog)
}

// RecordMetrics appends one metrics sample, pruning the oldest batch once
// retention is exceeded.
func (s *Store) RecordMetrics(snapshot domain.MetricsSnapshot) {
	s.metricsHistory = append(s.metricsHistory, snapshot)
	if len(s.metricsHistory) > metricsRetention {
		s.metricsHistory = append(s.metricsHistory[:0:0], s.metricsHistory[metricsPruneBatch:]...)
	}
}

// ListMetrics returns samples timestamped within [from, to] inclusive,
// newest first, truncated to limit (default 100).
func (s *Store) ListMetrics(from, to domain.Timestamp, limit uint64) []domain.MetricsSnapshot {
	if limit == 0 {
		limit = 100
	}
	filtered := make([]domain.MetricsSnapshot, 0)
	for _, m := range s.metricsHistory {
		if m.Timestamp >= from && m.Timestamp <= to {
			filtered = append(filtered, m)
		}
	}
	slices.SortFunc(filtered, func(a, b domain.MetricsSnapshot) int {
		switch {
		case a.Timestamp > b.Timestamp:
			return -1
		case a.Timestamp < b.Timestamp:
			return 1
		}
		return 0
	})
	if uint64(len(filtered)) > limit {
		filtered = filtered[:limit]
	}
	return filtered
}

// LatestMetrics returns the most recently recorded sample.
func (s *Store) LatestMetrics() (domain.MetricsSnapshot, bool) {
	if len(s.metricsHistory) == 0 {
		return domain.MetricsSnapshot{}, false
	}
	return s.metricsHistory[len(s.metricsHistory)-1], true
}
