// Package ledger implements atomic credit operations on recipient and
// restaurant balances. Every mutation is a conditional UPDATE guarded on the
// previously observed balance, so two writers racing on the same row cannot
// both win; the loser gets ErrBalanceConflict and the owning transaction
// retries. All functions here run inside a transaction owned by the caller.
package ledger

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"mealrelay.org/app/internal/modules/accounts"
)

// ReserveInTx debits amount from a recipient, available credits first and the
// remainder from extra credits. The recipient must be approved and hold at
// least amount in total.
func ReserveInTx(ctx context.Context, tx *gorm.DB, recipientEmail string, amount int64) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}

	var rec accounts.RecipientAccount
	if err := tx.WithContext(ctx).First(&rec, "email = ?", recipientEmail).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrAccountNotFound
		}
		return err
	}
	if !rec.Approved {
		return ErrAccountNotApproved
	}
	if rec.SpendableCredits() < amount {
		return ErrInsufficientCredit
	}

	fromAvailable := amount
	if fromAvailable > rec.AvailableCredits {
		fromAvailable = rec.AvailableCredits
	}
	fromExtra := amount - fromAvailable

	// Guarded on the balances we just read; approved is re-checked so an
	// un-approval racing with the reservation also voids it.
	res := tx.WithContext(ctx).Model(&accounts.RecipientAccount{}).
		Where("email = ? AND available_credits = ? AND extra_credits = ? AND approved = ?",
			recipientEmail, rec.AvailableCredits, rec.ExtraCredits, true).
		Updates(map[string]any{
			"available_credits": rec.AvailableCredits - fromAvailable,
			"extra_credits":     rec.ExtraCredits - fromExtra,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected != 1 {
		return ErrBalanceConflict
	}
	return nil
}

// RefundInTx credits amount back to the recipient and the same amount to the
// restaurant, and returns both balances after the update. It performs no
// de-duplication: the claim state machine guarantees at most one refund per
// claim via its active-flag compare-and-set.
func RefundInTx(ctx context.Context, tx *gorm.DB, recipientEmail, restaurantID string, amount int64) (recipientAfter, restaurantAfter int64, err error) {
	if amount <= 0 {
		return 0, 0, ErrInvalidAmount
	}

	res := tx.WithContext(ctx).Model(&accounts.RecipientAccount{}).
		Where("email = ?", recipientEmail).
		UpdateColumn("available_credits", gorm.Expr("available_credits + ?", amount))
	if res.Error != nil {
		return 0, 0, res.Error
	}
	if res.RowsAffected != 1 {
		return 0, 0, ErrAccountNotFound
	}

	res = tx.WithContext(ctx).Model(&accounts.RestaurantAccount{}).
		Where("id = ?", restaurantID).
		UpdateColumn("available_credits", gorm.Expr("available_credits + ?", amount))
	if res.Error != nil {
		return 0, 0, res.Error
	}
	if res.RowsAffected != 1 {
		return 0, 0, accounts.ErrRestaurantNotFound
	}

	var rec accounts.RecipientAccount
	if err := tx.WithContext(ctx).First(&rec, "email = ?", recipientEmail).Error; err != nil {
		return 0, 0, err
	}
	var rest accounts.RestaurantAccount
	if err := tx.WithContext(ctx).First(&rest, "id = ?", restaurantID).Error; err != nil {
		return 0, 0, err
	}
	return rec.AvailableCredits, rest.AvailableCredits, nil
}

// AllowanceReset records one recipient's balance change from a periodic reset.
type AllowanceReset struct {
	Email            string
	PreviousCredits  int64
	AvailableCredits int64
	CreditLimit      int64
}

// ResetAllowancesInTx sets available_credits = credit_limit for every
// recipient currently below or above the limit, and reports the delta per
// affected recipient. The reset is absolute, not additive. A recipient whose
// balance moves concurrently is skipped this pass; the next run picks it up.
func ResetAllowancesInTx(ctx context.Context, tx *gorm.DB) ([]AllowanceReset, error) {
	var stale []accounts.RecipientAccount
	if err := tx.WithContext(ctx).
		Where("available_credits != credit_limit").
		Order("email ASC").
		Find(&stale).Error; err != nil {
		return nil, err
	}

	out := make([]AllowanceReset, 0, len(stale))
	for _, rec := range stale {
		res := tx.WithContext(ctx).Model(&accounts.RecipientAccount{}).
			Where("email = ? AND available_credits = ?", rec.Email, rec.AvailableCredits).
			UpdateColumn("available_credits", gorm.Expr("credit_limit"))
		if res.Error != nil {
			return nil, res.Error
		}
		if res.RowsAffected != 1 {
			continue
		}
		out = append(out, AllowanceReset{
			Email:            rec.Email,
			PreviousCredits:  rec.AvailableCredits,
			AvailableCredits: rec.CreditLimit,
			CreditLimit:      rec.CreditLimit,
		})
	}
	return out, nil
}
