package reconcile_test

import (
	"context"
	"io"
	"path/filepath"
	"testing"
	"time"

	"log/slog"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"mealrelay.org/app/internal/modules/accounts"
	"mealrelay.org/app/internal/modules/audit"
	"mealrelay.org/app/internal/modules/claims"
	"mealrelay.org/app/internal/modules/reconcile"
)

const (
	testRecipient  = "diner@example.com"
	testRestaurant = "rest-1"
)

func newTestJobs(t *testing.T) (*reconcile.Jobs, *claims.Service, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	if err := db.AutoMigrate(
		&accounts.RecipientAccount{},
		&accounts.RestaurantAccount{},
		&claims.DonationClaim{},
		&audit.Entry{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	rec := accounts.RecipientAccount{
		Email:            testRecipient,
		AvailableCredits: 20,
		CreditLimit:      20,
		Approved:         true,
	}
	rest := accounts.RestaurantAccount{
		ID:              testRestaurant,
		Email:           "kitchen@example.com",
		Name:            "Corner Kitchen",
		AcceptingOrders: true,
	}
	if err := db.Create(&rec).Error; err != nil {
		t.Fatalf("seed recipient: %v", err)
	}
	if err := db.Create(&rest).Error; err != nil {
		t.Fatalf("seed restaurant: %v", err)
	}

	svc := claims.NewService(db, 6)
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return reconcile.NewJobs(db, svc, log), svc, db
}

func seedClaim(t *testing.T, db *gorm.DB, id string, active bool, pickupTime, createdAt time.Time) {
	t.Helper()
	c := claims.DonationClaim{
		ID:             id,
		RestaurantID:   testRestaurant,
		FeedItemID:     "feed-1",
		RecipientEmail: testRecipient,
		PickupCode:     "483920",
		Amount:         5,
		PickupTime:     pickupTime,
		CreatedAt:      createdAt,
		Timezone:       "UTC",
		Active:         active,
	}
	if err := db.Create(&c).Error; err != nil {
		t.Fatalf("seed claim: %v", err)
	}
}

func TestForfeitDayOld(t *testing.T) {
	jobs, svc, db := newTestJobs(t)
	ctx := context.Background()
	now := time.Now().UTC()

	seedClaim(t, db, "stale", true, now.Add(-25*time.Hour), now.Add(-26*time.Hour))
	seedClaim(t, db, "fresh", true, now.Add(-1*time.Hour), now.Add(-2*time.Hour))
	seedClaim(t, db, "done", false, now.Add(-48*time.Hour), now.Add(-49*time.Hour))

	n, err := jobs.ForfeitDayOld(ctx, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 1 {
		t.Fatalf("forfeited %d claims, want 1", n)
	}

	stale, err := svc.Get(ctx, "stale")
	if err != nil {
		t.Fatalf("get stale: %v", err)
	}
	if stale.Active {
		t.Fatal("stale claim still active")
	}
	if stale.CanceledBy == nil || *stale.CanceledBy != claims.ActorSystem {
		t.Fatalf("canceled_by: %+v", stale.CanceledBy)
	}

	fresh, _ := svc.Get(ctx, "fresh")
	if !fresh.Active {
		t.Fatal("fresh claim was expired")
	}

	// forfeiture never refunds
	var rec accounts.RecipientAccount
	if err := db.First(&rec, "email = ?", testRecipient).Error; err != nil {
		t.Fatalf("get recipient: %v", err)
	}
	if rec.AvailableCredits != 20 {
		t.Fatalf("forfeiture changed balance: got %d, want 20", rec.AvailableCredits)
	}

	// rerun acts on an empty set
	n, err = jobs.ForfeitDayOld(ctx, now)
	if err != nil {
		t.Fatalf("rerun: %v", err)
	}
	if n != 0 {
		t.Fatalf("rerun forfeited %d claims, want 0", n)
	}
}

func TestWeekOldClaims(t *testing.T) {
	jobs, _, db := newTestJobs(t)
	ctx := context.Background()
	now := time.Now().UTC()

	day := 24 * time.Hour
	seedClaim(t, db, "in-window", false, now.Add(-7*day), now.Add(-7*day-12*time.Hour))
	seedClaim(t, db, "too-old", false, now.Add(-9*day), now.Add(-9*day))
	seedClaim(t, db, "too-new", false, now.Add(-6*day), now.Add(-6*day))
	seedClaim(t, db, "still-active", true, now.Add(-7*day), now.Add(-7*day-12*time.Hour))

	list, err := jobs.WeekOldClaims(ctx, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(list) != 1 || list[0].ID != "in-window" {
		t.Fatalf("week-old selection: %+v", list)
	}
}

func TestRefreshAllowancesWritesAudit(t *testing.T) {
	jobs, _, db := newTestJobs(t)
	ctx := context.Background()

	if err := db.Model(&accounts.RecipientAccount{}).
		Where("email = ?", testRecipient).
		Update("available_credits", 3).Error; err != nil {
		t.Fatalf("drain recipient: %v", err)
	}

	resets, err := jobs.RefreshAllowances(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(resets) != 1 {
		t.Fatalf("got %d resets, want 1", len(resets))
	}
	if resets[0].PreviousCredits != 3 || resets[0].AvailableCredits != 20 {
		t.Fatalf("reset delta: %+v", resets[0])
	}

	var entries []audit.Entry
	if err := db.Find(&entries).Error; err != nil {
		t.Fatalf("load audit: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("got %d audit entries, want 1", len(entries))
	}
	if entries[0].ActorEmail != testRecipient || entries[0].Category != audit.CategoryRefresh {
		t.Fatalf("audit entry: %+v", entries[0])
	}
}
