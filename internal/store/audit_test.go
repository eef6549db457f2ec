package store

import (
	"fmt"
	"testing"

	"github.com/yourorg/adminstate/internal/domain"
)

func TestRecordAuditAssignsSequentialIDs(t *testing.T) {
	s, _ := newTestStore()

	first := s.RecordAudit("admin-1", "add_admin", "admin", "admin-2", "")
	second := s.RecordAudit("admin-1", "remove_admin", "admin", "admin-2", "")

	if first.ID != 1 || second.ID != 2 {
		t.Fatalf("expected ids 1,2 got %d,%d", first.ID, second.ID)
	}
}

func TestQueryAuditNewestFirstWithFilters(t *testing.T) {
	s, _ := newTestStore()

	s.RecordAudit("admin-1", "create_contact", "contact", "1", "")
	s.RecordAudit("admin-2", "create_contact", "contact", "2", "")
	s.RecordAudit("admin-1", "create_deal", "deal", "1", "")

	all := s.QueryAudit(domain.AuditQuery{})
	if len(all) != 3 || all[0].ID != 3 || all[2].ID != 1 {
		t.Fatalf("expected newest first, got %v", all)
	}

	actor := domain.Identity("admin-1")
	filtered := s.QueryAudit(domain.AuditQuery{Action: "create_contact", Actor: &actor})
	if len(filtered) != 1 || filtered[0].TargetID != "1" {
		t.Fatalf("conjunction filter failed: %v", filtered)
	}

	byType := s.QueryAudit(domain.AuditQuery{TargetType: "deal"})
	if len(byType) != 1 || byType[0].Action != "create_deal" {
		t.Fatalf("target type filter failed: %v", byType)
	}
}

func TestQueryAuditDefaultLimit(t *testing.T) {
	s, _ := newTestStore()
	for i := 0; i < 150; i++ {
		s.RecordAudit("admin-1", "tick", "noop", fmt.Sprint(i), "")
	}

	got := s.QueryAudit(domain.AuditQuery{})
	if len(got) != 100 {
		t.Fatalf("expected default limit 100, got %d", len(got))
	}
	if got[0].TargetID != "149" {
		t.Errorf("expected newest entry first, got %s", got[0].TargetID)
	}
}

func TestAuditRetentionPrunesOldestBatch(t *testing.T) {
	s, _ := newTestStore()
	for i := 0; i < auditRetention+1; i++ {
		s.RecordAudit("admin-1", "tick", "noop", fmt.Sprint(i), "")
	}

	if got := s.AuditLen(); got != auditRetention+1-auditPruneBatch {
		t.Fatalf("expected %d after prune, got %d", auditRetention+1-auditPruneBatch, got)
	}
	// The survivors are the newest entries; ids keep counting past the prune.
	newest := s.QueryAudit(domain.AuditQuery{Limit: 1})
	if newest[0].ID != uint64(auditRetention+1) {
		t.Errorf("expected newest id %d, got %d", auditRetention+1, newest[0].ID)
	}
}

func TestActivityRetentionPrunesOldestBatch(t *testing.T) {
	s, _ := newTestStore()
	for i := 0; i < activityRetention+1; i++ {
		s.LogActivity("u-1", "visit", "")
	}
	if got := s.ActivityLen(); got != activityRetention+1-activityPruneBatch {
		t.Fatalf("expected %d after prune, got %d", activityRetention+1-activityPruneBatch, got)
	}
}

func TestMetricsRetentionAndListing(t *testing.T) {
	s, c := newTestStore()

	for i := 0; i < metricsRetention+1; i++ {
		c.Set(domain.Timestamp(i + 1))
		s.RecordMetrics(domain.MetricsSnapshot{TotalUsers: uint64(i), Timestamp: domain.Timestamp(i + 1)})
	}
	if got := len(s.metricsHistory); got != metricsRetention+1-metricsPruneBatch {
		t.Fatalf("expected %d after prune, got %d", metricsRetention+1-metricsPruneBatch, got)
	}

	latest, found := s.LatestMetrics()
	if !found || latest.TotalUsers != uint64(metricsRetention) {
		t.Fatalf("latest wrong: found=%v users=%d", found, latest.TotalUsers)
	}

	listed := s.ListMetrics(1, domain.Timestamp(metricsRetention+1), 5)
	if len(listed) != 5 {
		t.Fatalf("expected 5, got %d", len(listed))
	}
	if listed[0].Timestamp < listed[4].Timestamp {
		t.Error("expected newest first")
	}
}
