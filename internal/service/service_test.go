package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/yourorg/adminstate/internal/domain"
	"github.com/yourorg/adminstate/internal/infrastructure/clock"
	"github.com/yourorg/adminstate/internal/security"
	"github.com/yourorg/adminstate/internal/security/ratelimit"
	"github.com/yourorg/adminstate/internal/store"
)

// fakeOracle is a canned controller-list authority.
type fakeOracle struct {
	controllers []domain.Identity
	err         error
	calls       int
}

func (f *fakeOracle) Controllers(context.Context) ([]domain.Identity, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.controllers, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestService wires a service over a fresh store with "root-1" as the
// bootstrap controller and "admin-1" as a plain admin with default grants.
func newTestService(oracle domain.ControllerOracle, limit int) (*Service, *clock.Manual) {
	c := clock.NewManual(1_000_000_000_000)
	st := store.New(c)
	st.SetControllers([]domain.Identity{"root-1"})
	st.AddAdmin("admin-1")
	st.GrantDefaults("admin-1")

	svc := New(st, Deps{
		Clock:     c,
		Oracle:    oracle,
		OracleTTL: time.Minute,
		Limiter:   ratelimit.NewLimiter(limit, domain.Timestamp(60*time.Second)),
		Logger:    discardLogger(),
	})
	return svc, c
}

func TestAddAdminControllerOnly(t *testing.T) {
	svc, _ := newTestService(nil, 100)
	ctx := context.Background()

	if err := svc.AddAdmin(ctx, "admin-1", "admin-2"); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("plain admin added an admin: %v", err)
	}
	if err := svc.AddAdmin(ctx, "root-1", "admin-2"); err != nil {
		t.Fatalf("controller denied: %v", err)
	}
	if !svc.state.IsAdmin("admin-2") {
		t.Error("admin not registered")
	}
	// Default own-record grants come with onboarding.
	if !svc.state.HasCapability("admin-2", security.CapViewOwnContacts) {
		t.Error("default grants missing")
	}
	// Repeat is a no-op, not an error.
	if err := svc.AddAdmin(ctx, "root-1", "admin-2"); err != nil {
		t.Fatalf("idempotent add failed: %v", err)
	}
}

func TestRemoveAdmin(t *testing.T) {
	svc, _ := newTestService(nil, 100)
	ctx := context.Background()

	if err := svc.RemoveAdmin(ctx, "root-1", "admin-1"); err != nil {
		t.Fatal(err)
	}
	if svc.state.IsAdmin("admin-1") {
		t.Error("admin still registered")
	}
	if err := svc.RemoveAdmin(ctx, "root-1", "admin-1"); err != nil {
		t.Fatalf("idempotent remove failed: %v", err)
	}
}

func TestControllerRefreshAdmitsDriftedController(t *testing.T) {
	oracle := &fakeOracle{controllers: []domain.Identity{"root-1", "root-2"}}
	svc, _ := newTestService(oracle, 100)
	ctx := context.Background()

	// root-2 is unknown locally but canonical per the platform.
	if err := svc.AddAdmin(ctx, "root-2", "admin-9"); err != nil {
		t.Fatalf("drifted controller denied: %v", err)
	}
	if oracle.calls != 1 {
		t.Errorf("expected 1 oracle call, got %d", oracle.calls)
	}
}

func TestControllerRefreshIsCached(t *testing.T) {
	oracle := &fakeOracle{controllers: []domain.Identity{"root-1"}}
	svc, _ := newTestService(oracle, 100)
	ctx := context.Background()

	// Two rejected strangers inside one TTL cost one oracle round trip.
	svc.AddAdmin(ctx, "stranger", "x")
	svc.AddAdmin(ctx, "stranger", "x")
	if oracle.calls != 1 {
		t.Errorf("expected 1 oracle call, got %d", oracle.calls)
	}
}

func TestControllerRefreshFailsClosed(t *testing.T) {
	oracle := &fakeOracle{err: errors.New("platform down")}
	svc, _ := newTestService(oracle, 100)
	ctx := context.Background()

	err := svc.AddAdmin(ctx, "unknown-root", "admin-9")
	if !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected unauthorized on oracle failure, got %v", err)
	}
	// The known controller path never needs the oracle.
	if err := svc.AddAdmin(ctx, "root-1", "admin-9"); err != nil {
		t.Fatalf("local controller blocked by oracle outage: %v", err)
	}
}

func TestListContactsRLS(t *testing.T) {
	svc, _ := newTestService(nil, 100)
	ctx := context.Background()

	svc.state.AddAdmin("admin-2")
	svc.state.GrantDefaults("admin-2")
	svc.state.AddAdmin("admin-3") // no grants at all

	if _, err := svc.CreateContact(ctx, "admin-1", domain.CreateContactRequest{Email: "mine@x.com"}); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.CreateContact(ctx, "admin-2", domain.CreateContactRequest{Email: "theirs@x.com"}); err != nil {
		t.Fatal(err)
	}

	// No view capability at all: empty page echoing the window, not an error.
	page, err := svc.ListContacts(ctx, "admin-3", domain.ContactFilter{}, domain.Pagination{Offset: 5, Limit: 10})
	if err != nil {
		t.Fatal(err)
	}
	if page.Total != 0 || len(page.Items) != 0 || page.Offset != 5 || page.Limit != 10 {
		t.Fatalf("expected empty page echo, got %+v", page)
	}

	// view-own: only the caller's records.
	page, err = svc.ListContacts(ctx, "admin-1", domain.ContactFilter{}, domain.Pagination{})
	if err != nil {
		t.Fatal(err)
	}
	if page.Total != 1 || page.Items[0].Email != "mine@x.com" {
		t.Fatalf("view-own leak: %+v", page)
	}

	// view-all: everything.
	svc.state.Grant("admin-1", security.CapViewAllContacts)
	page, err = svc.ListContacts(ctx, "admin-1", domain.ContactFilter{}, domain.Pagination{})
	if err != nil {
		t.Fatal(err)
	}
	if page.Total != 2 {
		t.Fatalf("view-all should see 2, got %d", page.Total)
	}
}

func TestUpdateContactOwnershipRule(t *testing.T) {
	svc, _ := newTestService(nil, 100)
	ctx := context.Background()

	svc.state.AddAdmin("admin-2")
	svc.state.GrantDefaults("admin-2")

	mine, err := svc.CreateContact(ctx, "admin-1", domain.CreateContactRequest{Email: "mine@x.com"})
	if err != nil {
		t.Fatal(err)
	}

	name := "Renamed"
	// Owner with edit-own: allowed.
	if _, err := svc.UpdateContact(ctx, "admin-1", domain.UpdateContactRequest{ID: mine.ID, Name: &name}); err != nil {
		t.Fatalf("owner edit denied: %v", err)
	}
	// Non-owner with only edit-own: denied.
	_, err = svc.UpdateContact(ctx, "admin-2", domain.UpdateContactRequest{ID: mine.ID, Name: &name})
	if !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("non-owner edit allowed: %v", err)
	}
	// Non-owner with edit-all: allowed.
	svc.state.Grant("admin-2", security.CapEditAllContacts)
	if _, err := svc.UpdateContact(ctx, "admin-2", domain.UpdateContactRequest{ID: mine.ID, Name: &name}); err != nil {
		t.Fatalf("edit-all denied: %v", err)
	}
}

func TestUnownedRecordReachableOnlyThroughEditAll(t *testing.T) {
	svc, _ := newTestService(nil, 100)
	ctx := context.Background()

	legacy, err := svc.state.CreateContact(domain.CreateContactRequest{Email: "legacy@x.com"}, "")
	if err != nil {
		t.Fatal(err)
	}

	name := "Touched"
	_, err = svc.UpdateContact(ctx, "admin-1", domain.UpdateContactRequest{ID: legacy.ID, Name: &name})
	if !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("edit-own reached an unowned record: %v", err)
	}

	svc.state.Grant("admin-1", security.CapEditAllContacts)
	if _, err := svc.UpdateContact(ctx, "admin-1", domain.UpdateContactRequest{ID: legacy.ID, Name: &name}); err != nil {
		t.Fatalf("edit-all denied on unowned record: %v", err)
	}
}

func TestDeleteContactRequiresDeleteCapability(t *testing.T) {
	svc, _ := newTestService(nil, 100)
	ctx := context.Background()

	mine, err := svc.CreateContact(ctx, "admin-1", domain.CreateContactRequest{Email: "mine@x.com"})
	if err != nil {
		t.Fatal(err)
	}

	// Default grants include edit-own but not delete-own.
	if err := svc.DeleteContact(ctx, "admin-1", mine.ID); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("delete without capability allowed: %v", err)
	}
	svc.state.Grant("admin-1", security.CapDeleteOwnContacts)
	if err := svc.DeleteContact(ctx, "admin-1", mine.ID); err != nil {
		t.Fatalf("delete-own denied: %v", err)
	}
}

func TestGetContactHidesInvisibleRecords(t *testing.T) {
	svc, _ := newTestService(nil, 100)
	ctx := context.Background()

	svc.state.AddAdmin("admin-2")
	svc.state.GrantDefaults("admin-2")

	theirs, err := svc.CreateContact(ctx, "admin-2", domain.CreateContactRequest{Email: "theirs@x.com"})
	if err != nil {
		t.Fatal(err)
	}

	// admin-1 holds only view-own; the record must look absent.
	_, err = svc.GetContact(ctx, "admin-1", theirs.ID)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("invisible record leaked: %v", err)
	}
}

func TestCreateContactValidationSurfaced(t *testing.T) {
	svc, _ := newTestService(nil, 100)
	ctx := context.Background()

	_, err := svc.CreateContact(ctx, "admin-1", domain.CreateContactRequest{Email: "not-an-email"})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestSignupIntakeRequiresUserServiceRole(t *testing.T) {
	svc, _ := newTestService(nil, 100)
	ctx := context.Background()

	req := domain.CreateContactRequest{Email: "new@x.com", UserID: "u-1"}
	if _, err := svc.CreateContactFromSignup(ctx, "admin-1", req); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("admin bypassed the role gate: %v", err)
	}

	svc.state.RegisterRole(RoleUserService, "svc-users")
	contact, err := svc.CreateContactFromSignup(ctx, "svc-users", req)
	if err != nil {
		t.Fatalf("registered role denied: %v", err)
	}
	if contact.Owner != "svc-users" {
		t.Errorf("owner should be the service identity, got %s", contact.Owner)
	}
	if contact.Source != domain.ContactSourceSignup {
		t.Errorf("source should default to signup, got %s", contact.Source)
	}

	// The intake auto-creates one pipeline deal for the contact.
	dealIDs := svc.state.DealIDsForContact(contact.ID)
	if len(dealIDs) != 1 {
		t.Fatalf("expected 1 auto deal, got %d", len(dealIDs))
	}
	deal, _ := svc.state.DealByID(dealIDs[0])
	if deal.Name != "New signup: Contact #1" {
		t.Errorf("auto deal name: %s", deal.Name)
	}
	if deal.Stage != domain.DealStageLead {
		t.Errorf("auto deal stage: %s", deal.Stage)
	}
}

func TestUpdateDealStage(t *testing.T) {
	svc, _ := newTestService(nil, 100)
	ctx := context.Background()

	contact, err := svc.CreateContact(ctx, "admin-1", domain.CreateContactRequest{Email: "a@x.com"})
	if err != nil {
		t.Fatal(err)
	}
	deal, err := svc.CreateDeal(ctx, "admin-1", domain.CreateDealRequest{ContactID: contact.ID, Name: "Big deal"})
	if err != nil {
		t.Fatal(err)
	}

	updated, err := svc.UpdateDealStage(ctx, "admin-1", deal.ID, domain.DealStageQualified)
	if err != nil {
		t.Fatalf("stage update denied: %v", err)
	}
	if updated.Stage != domain.DealStageQualified {
		t.Errorf("stage not applied: %s", updated.Stage)
	}

	if _, err := svc.UpdateDealStage(ctx, "admin-1", deal.ID, "bogus"); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("bogus stage accepted: %v", err)
	}
}

func TestLogActivityAuthorization(t *testing.T) {
	svc, _ := newTestService(nil, 100)
	ctx := context.Background()

	if err := svc.LogActivity(ctx, "nobody", "u-1", "visit", ""); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("stranger logged activity: %v", err)
	}
	if err := svc.LogActivity(ctx, "admin-1", "u-1", "visit", ""); err != nil {
		t.Fatalf("admin denied: %v", err)
	}

	svc.state.RegisterRole(RoleFrontend, "svc-frontend")
	if err := svc.LogActivity(ctx, "svc-frontend", "u-1", "visit", ""); err != nil {
		t.Fatalf("frontend role denied: %v", err)
	}
}

func TestLogActivityRateLimit(t *testing.T) {
	svc, c := newTestService(nil, 3)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if err := svc.LogActivity(ctx, "admin-1", "u-1", "visit", ""); err != nil {
			t.Fatalf("call %d: %v", i, err)
		}
	}
	err := svc.LogActivity(ctx, "admin-1", "u-1", "visit", "")
	if !errors.Is(err, domain.ErrRateLimited) {
		t.Fatalf("expected rate limit, got %v", err)
	}

	// The window slides; capacity returns.
	c.Advance(61 * time.Second)
	if err := svc.LogActivity(ctx, "admin-1", "u-1", "visit", ""); err != nil {
		t.Fatalf("after window: %v", err)
	}
}

func TestSetFeatureFlagRequiresCapability(t *testing.T) {
	svc, _ := newTestService(nil, 100)
	ctx := context.Background()

	req := domain.SetFeatureFlagRequest{Key: "beta", Enabled: true}
	if _, err := svc.SetFeatureFlag(ctx, "admin-1", req); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("flag set without capability: %v", err)
	}

	// Controllers hold every capability implicitly.
	if _, err := svc.SetFeatureFlag(ctx, "root-1", req); err != nil {
		t.Fatalf("controller denied: %v", err)
	}

	svc.state.Grant("admin-1", security.CapManageFeatureFlags)
	if _, err := svc.SetFeatureFlag(ctx, "admin-1", req); err != nil {
		t.Fatalf("granted admin denied: %v", err)
	}

	// Evaluation is open to any resolved identity.
	if !svc.IsFeatureEnabled(ctx, "whoever", "beta") {
		t.Error("open evaluation failed")
	}
}

func TestPermissionsIntrospection(t *testing.T) {
	svc, _ := newTestService(nil, 100)
	ctx := context.Background()

	svc.state.AddAdmin("admin-2")

	caps, err := svc.Permissions(ctx, "admin-1", "admin-1")
	if err != nil {
		t.Fatalf("self introspection denied: %v", err)
	}
	if len(caps) != len(security.DefaultAdminCapabilities) {
		t.Errorf("expected default grants, got %v", caps)
	}

	if _, err := svc.Permissions(ctx, "admin-1", "admin-2"); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("admin inspected another identity: %v", err)
	}
	if _, err := svc.Permissions(ctx, "root-1", "admin-1"); err != nil {
		t.Fatalf("controller introspection denied: %v", err)
	}
}

func TestAuditLogRequiresCapability(t *testing.T) {
	svc, _ := newTestService(nil, 100)
	ctx := context.Background()

	if _, err := svc.AuditLog(ctx, "admin-1", domain.AuditQuery{}); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("audit read without capability: %v", err)
	}

	svc.state.Grant("admin-1", security.CapViewAuditLogs)
	if _, err := svc.CreateContact(ctx, "admin-1", domain.CreateContactRequest{Email: "a@x.com"}); err != nil {
		t.Fatal(err)
	}
	entries, err := svc.AuditLog(ctx, "admin-1", domain.AuditQuery{Action: "create_contact"})
	if err != nil {
		t.Fatalf("audit read denied: %v", err)
	}
	if len(entries) != 1 || entries[0].Actor != "admin-1" {
		t.Fatalf("audit trail wrong: %v", entries)
	}
}

func TestTransactionsAdminOnly(t *testing.T) {
	svc, _ := newTestService(nil, 100)
	ctx := context.Background()

	req := domain.CreateTransactionRequest{
		Type: domain.TransactionIncome, Category: domain.CategorySubscription,
		Amount: 1200, Description: "plan",
	}
	if _, err := svc.CreateTransaction(ctx, "nobody", req); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("stranger wrote the ledger: %v", err)
	}
	if _, err := svc.CreateTransaction(ctx, "admin-1", req); err != nil {
		t.Fatalf("admin denied: %v", err)
	}

	if _, err := svc.FinancialSummary(ctx, "admin-1", 100, 50); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("inverted period accepted: %v", err)
	}
	sum, err := svc.FinancialSummary(ctx, "admin-1", 0, svc.clock.Now())
	if err != nil {
		t.Fatal(err)
	}
	if sum.TotalIncome != 1200 || sum.MRR != 100 {
		t.Errorf("summary wrong: %+v", sum)
	}
}

func TestStatsAdminOnly(t *testing.T) {
	svc, _ := newTestService(nil, 100)
	ctx := context.Background()

	if _, err := svc.Stats(ctx, "nobody"); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("stranger read stats: %v", err)
	}
	if _, err := svc.CreateContact(ctx, "admin-1", domain.CreateContactRequest{Email: "a@x.com"}); err != nil {
		t.Fatal(err)
	}
	stats, err := svc.Stats(ctx, "admin-1")
	if err != nil {
		t.Fatal(err)
	}
	if stats.TotalContacts != 1 {
		t.Errorf("stats wrong: %+v", stats)
	}
}

func TestBootstrapSeedsControllersAndAdmins(t *testing.T) {
	c := clock.NewManual(1_000)
	svc := New(store.New(c), Deps{Clock: c, Limiter: ratelimit.NewLimiter(100, domain.Timestamp(60 * time.Second)), Logger: discardLogger()})

	svc.Bootstrap([]domain.Identity{"root-1", "root-2"})

	if !svc.state.IsController("root-1") || !svc.state.IsController("root-2") {
		t.Error("controllers not seeded")
	}
	if !svc.state.IsAdmin("root-1") {
		t.Error("controllers not enrolled as admins")
	}
	if !svc.state.HasCapability("root-2", security.CapViewOwnContacts) {
		t.Error("default grants not seeded")
	}
}

func TestMetricsLifecycle(t *testing.T) {
	svc, c := newTestService(nil, 100)
	ctx := context.Background()

	if _, err := svc.LatestMetrics(ctx, "admin-1"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found on empty history: %v", err)
	}

	if err := svc.RecordMetrics(ctx, "admin-1", domain.MetricsSnapshot{TotalUsers: 5}); err != nil {
		t.Fatal(err)
	}
	latest, err := svc.LatestMetrics(ctx, "admin-1")
	if err != nil {
		t.Fatal(err)
	}
	if latest.TotalUsers != 5 || latest.Timestamp != c.Now() {
		t.Errorf("latest wrong: %+v", latest)
	}

	listed, err := svc.ListMetrics(ctx, "admin-1", 0, c.Now(), 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(listed) != 1 {
		t.Errorf("expected 1 sample, got %d", len(listed))
	}
}
