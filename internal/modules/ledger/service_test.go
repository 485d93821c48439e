package ledger_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"mealrelay.org/app/internal/modules/accounts"
	"mealrelay.org/app/internal/modules/ledger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	if err := db.AutoMigrate(&accounts.RecipientAccount{}, &accounts.RestaurantAccount{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func seedRecipient(t *testing.T, db *gorm.DB, email string, available, extra, limit int64, approved bool) {
	t.Helper()
	rec := accounts.RecipientAccount{
		Email:            email,
		AvailableCredits: available,
		ExtraCredits:     extra,
		CreditLimit:      limit,
		Approved:         approved,
	}
	if err := db.Create(&rec).Error; err != nil {
		t.Fatalf("seed recipient: %v", err)
	}
}

func seedRestaurant(t *testing.T, db *gorm.DB, id string, available int64) {
	t.Helper()
	rest := accounts.RestaurantAccount{
		ID:    id,
		Email: id + "@example.com",
		Name:  "Test Kitchen",
	}
	rest.AvailableCredits = available
	if err := db.Create(&rest).Error; err != nil {
		t.Fatalf("seed restaurant: %v", err)
	}
}

func getRecipient(t *testing.T, db *gorm.DB, email string) accounts.RecipientAccount {
	t.Helper()
	var rec accounts.RecipientAccount
	if err := db.First(&rec, "email = ?", email).Error; err != nil {
		t.Fatalf("get recipient: %v", err)
	}
	return rec
}

func TestReserveDebitsAvailableFirst(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	tests := []struct {
		name          string
		available     int64
		extra         int64
		amount        int64
		wantAvailable int64
		wantExtra     int64
	}{
		{"available covers it", 20, 0, 15, 5, 0},
		{"exact available", 20, 5, 20, 0, 5},
		{"spills into extra", 5, 10, 12, 0, 3},
		{"extra only", 0, 10, 7, 0, 3},
	}

	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			email := "r" + string(rune('a'+i)) + "@example.com"
			seedRecipient(t, db, email, tt.available, tt.extra, 100, true)

			if err := ledger.ReserveInTx(ctx, db, email, tt.amount); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			rec := getRecipient(t, db, email)
			if rec.AvailableCredits != tt.wantAvailable {
				t.Errorf("available: got %d, want %d", rec.AvailableCredits, tt.wantAvailable)
			}
			if rec.ExtraCredits != tt.wantExtra {
				t.Errorf("extra: got %d, want %d", rec.ExtraCredits, tt.wantExtra)
			}
		})
	}
}

func TestReserveFailures(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	seedRecipient(t, db, "broke@example.com", 5, 2, 20, true)
	seedRecipient(t, db, "pending@example.com", 20, 0, 20, false)

	tests := []struct {
		name    string
		email   string
		amount  int64
		wantErr error
	}{
		{"insufficient", "broke@example.com", 8, ledger.ErrInsufficientCredit},
		{"not approved", "pending@example.com", 5, ledger.ErrAccountNotApproved},
		{"unknown account", "ghost@example.com", 5, ledger.ErrAccountNotFound},
		{"zero amount", "broke@example.com", 0, ledger.ErrInvalidAmount},
		{"negative amount", "broke@example.com", -3, ledger.ErrInvalidAmount},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ledger.ReserveInTx(ctx, db, tt.email, tt.amount)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("got %v, want %v", err, tt.wantErr)
			}
		})
	}

	// failed reservations leave balances untouched
	rec := getRecipient(t, db, "broke@example.com")
	if rec.AvailableCredits != 5 || rec.ExtraCredits != 2 {
		t.Fatalf("balance changed on failed reserve: %+v", rec)
	}
}

func TestReserveThenInsufficientSecondClaim(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	seedRecipient(t, db, "diner@example.com", 20, 0, 20, true)

	if err := ledger.ReserveInTx(ctx, db, "diner@example.com", 15); err != nil {
		t.Fatalf("first reserve: %v", err)
	}
	rec := getRecipient(t, db, "diner@example.com")
	if rec.AvailableCredits != 5 {
		t.Fatalf("available after first reserve: got %d, want 5", rec.AvailableCredits)
	}

	err := ledger.ReserveInTx(ctx, db, "diner@example.com", 10)
	if !errors.Is(err, ledger.ErrInsufficientCredit) {
		t.Fatalf("second reserve: got %v, want ErrInsufficientCredit", err)
	}
	rec = getRecipient(t, db, "diner@example.com")
	if rec.AvailableCredits != 5 {
		t.Fatalf("available after failed reserve: got %d, want 5", rec.AvailableCredits)
	}
}

func TestRefundCreditsBothSides(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	seedRecipient(t, db, "diner@example.com", 5, 0, 20, true)
	seedRestaurant(t, db, "rest-1", 3)

	recAfter, restAfter, err := ledger.RefundInTx(ctx, db, "diner@example.com", "rest-1", 15)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if recAfter != 20 {
		t.Errorf("recipient after: got %d, want 20", recAfter)
	}
	if restAfter != 18 {
		t.Errorf("restaurant after: got %d, want 18", restAfter)
	}
}

func TestRefundUnknownAccounts(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	seedRecipient(t, db, "diner@example.com", 5, 0, 20, true)

	_, _, err := ledger.RefundInTx(ctx, db, "ghost@example.com", "rest-1", 5)
	if !errors.Is(err, ledger.ErrAccountNotFound) {
		t.Fatalf("got %v, want ErrAccountNotFound", err)
	}

	_, _, err = ledger.RefundInTx(ctx, db, "diner@example.com", "no-such-restaurant", 5)
	if !errors.Is(err, accounts.ErrRestaurantNotFound) {
		t.Fatalf("got %v, want ErrRestaurantNotFound", err)
	}
}

func TestResetAllowances(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	seedRecipient(t, db, "low@example.com", 3, 4, 20, true)
	seedRecipient(t, db, "full@example.com", 20, 0, 20, true)

	resets, err := ledger.ResetAllowancesInTx(ctx, db)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(resets) != 1 {
		t.Fatalf("got %d resets, want 1", len(resets))
	}
	rs := resets[0]
	if rs.Email != "low@example.com" || rs.PreviousCredits != 3 || rs.AvailableCredits != 20 || rs.CreditLimit != 20 {
		t.Fatalf("unexpected reset record: %+v", rs)
	}

	low := getRecipient(t, db, "low@example.com")
	if low.AvailableCredits != 20 {
		t.Errorf("available after reset: got %d, want 20", low.AvailableCredits)
	}
	if low.ExtraCredits != 4 {
		t.Errorf("extra credits must survive a reset: got %d, want 4", low.ExtraCredits)
	}

	// second run finds nothing to do
	resets, err = ledger.ResetAllowancesInTx(ctx, db)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(resets) != 0 {
		t.Fatalf("rerun should reset nothing, got %d", len(resets))
	}
}
