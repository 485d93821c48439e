// Package reconcile holds the periodic jobs that settle aged claims and
// refresh allowances. Each job is a pure function over the store, idempotent,
// and safe alongside user-driven transitions: selection predicates only match
// rows still satisfying their precondition, and every state change goes
// through the same compare-and-set the state machine uses. Scheduling is
// external; see cmd/tools/reconcile.
package reconcile

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/gorm"

	"mealrelay.org/app/internal/modules/audit"
	"mealrelay.org/app/internal/modules/claims"
	"mealrelay.org/app/internal/modules/ledger"
)

type Jobs struct {
	db     *gorm.DB
	claims *claims.Service
	log    *slog.Logger
}

func NewJobs(db *gorm.DB, cs *claims.Service, log *slog.Logger) *Jobs {
	return &Jobs{db: db, claims: cs, log: log}
}

// ForfeitDayOld expires every claim still active a full day past its pickup
// deadline. The reservation is forfeited, not refunded. Safe to run any
// number of times: reruns see no active rows left to act on. Returns how many
// claims this run expired.
func (j *Jobs) ForfeitDayOld(ctx context.Context, now time.Time) (int, error) {
	cutoff := now.Add(-24 * time.Hour)

	var stale []claims.DonationClaim
	if err := j.db.WithContext(ctx).
		Where("active = ? AND pickup_time < ?", true, cutoff).
		Order("pickup_time ASC").
		Find(&stale).Error; err != nil {
		return 0, err
	}

	expired := 0
	for _, c := range stale {
		won, err := j.claims.Expire(ctx, c.ID)
		if err != nil {
			return expired, err
		}
		if !won {
			// terminal transition raced us; nothing to do
			continue
		}
		expired++
		j.log.LogAttrs(ctx, slog.LevelInfo, "claim_forfeited",
			slog.String("claim_id", c.ID),
			slog.String("recipient", c.RecipientEmail),
			slog.Int64("amount", c.Amount),
			slog.Time("pickup_time", c.PickupTime),
		)
	}
	return expired, nil
}

// WeekOldClaims returns settled claims created seven to eight days before
// now, for downstream archival and reporting. Read-only.
func (j *Jobs) WeekOldClaims(ctx context.Context, now time.Time) ([]claims.DonationClaim, error) {
	var out []claims.DonationClaim
	err := j.db.WithContext(ctx).
		Where("active = ? AND created_at <= ? AND created_at > ?",
			false, now.Add(-7*24*time.Hour), now.Add(-8*24*time.Hour)).
		Order("created_at ASC").
		Find(&out).Error
	return out, err
}

// RefreshAllowances resets every recipient's spendable balance to their
// credit limit and writes one audit entry per affected recipient.
func (j *Jobs) RefreshAllowances(ctx context.Context) ([]ledger.AllowanceReset, error) {
	var resets []ledger.AllowanceReset
	err := j.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		resets, err = ledger.ResetAllowancesInTx(ctx, tx)
		if err != nil {
			return err
		}
		for _, rs := range resets {
			msg := fmt.Sprintf("credit refresh: %d -> %d (limit %d)",
				rs.PreviousCredits, rs.AvailableCredits, rs.CreditLimit)
			if err := audit.Append(tx, rs.Email, audit.CategoryRefresh, msg); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	j.log.LogAttrs(ctx, slog.LevelInfo, "allowances_refreshed",
		slog.Int("recipients", len(resets)),
	)
	return resets, nil
}
