// Package claims owns the donation-claim lifecycle: Active at creation, then
// exactly one terminal transition to Verified or Canceled. The active flag is
// the linearization point; whoever flips it wins, everyone else is told the
// claim is already terminal.
package claims

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"mealrelay.org/app/internal/modules/accounts"
	"mealrelay.org/app/internal/modules/audit"
	"mealrelay.org/app/internal/modules/ledger"
)

const txAttempts = 3

type Service struct {
	db      *gorm.DB
	codeLen int
}

func NewService(db *gorm.DB, codeLen int) *Service {
	if codeLen < 1 {
		codeLen = DefaultPickupCodeLen
	}
	return &Service{db: db, codeLen: codeLen}
}

// DB returns the underlying database connection for direct queries.
func (s *Service) DB() *gorm.DB { return s.db }

type CreateParams struct {
	RestaurantID   string
	FeedItemID     string
	RecipientEmail string
	MealItems      []string
	Amount         int64
	PickupTime     time.Time
	Timezone       string
}

type CreateResult struct {
	ClaimID    string
	PickupCode string
}

// Create reserves the recipient's credits and persists the claim in one
// transaction. If the reservation fails no claim row exists afterwards.
func (s *Service) Create(ctx context.Context, in CreateParams) (CreateResult, error) {
	code, err := GeneratePickupCode(s.codeLen)
	if err != nil {
		return CreateResult{}, err
	}

	claim := DonationClaim{
		ID:             uuid.NewString(),
		RestaurantID:   in.RestaurantID,
		FeedItemID:     in.FeedItemID,
		RecipientEmail: in.RecipientEmail,
		PickupCode:     code,
		Amount:         in.Amount,
		PickupTime:     in.PickupTime,
		CreatedAt:      time.Now().UTC(),
		Timezone:       in.Timezone,
		Active:         true,
		Verified:       false,
	}
	if err := claim.SetMealItems(in.MealItems); err != nil {
		return CreateResult{}, err
	}

	err = withTxRetry(ctx, s.db, txAttempts, func(tx *gorm.DB) error {
		var rest accounts.RestaurantAccount
		if err := tx.WithContext(ctx).First(&rest, "id = ?", in.RestaurantID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return accounts.ErrRestaurantNotFound
			}
			return err
		}
		if !rest.AcceptingOrders {
			return ErrRestaurantUnavailable
		}

		if err := ledger.ReserveInTx(ctx, tx, in.RecipientEmail, in.Amount); err != nil {
			return err
		}

		return tx.WithContext(ctx).Create(&claim).Error
	})
	if err != nil {
		return CreateResult{}, err
	}
	return CreateResult{ClaimID: claim.ID, PickupCode: code}, nil
}

// VerifyPickup confirms physical handoff. A wrong code leaves the claim
// untouched and may be retried without limit; a matching code flips the claim
// to Verified. The reserved credits stay consumed: successful pickup does not
// credit the restaurant balance, only cancellation does (inherited product
// rule, see DESIGN.md).
func (s *Service) VerifyPickup(ctx context.Context, restaurantID, claimID, suppliedCode string) error {
	return withTxRetry(ctx, s.db, txAttempts, func(tx *gorm.DB) error {
		var claim DonationClaim
		err := tx.WithContext(ctx).
			First(&claim, "id = ? AND restaurant_id = ?", claimID, restaurantID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrClaimNotFound
		}
		if err != nil {
			return err
		}
		if !claim.Active {
			return ErrClaimAlreadyTerminal
		}
		if claim.PickupCode != suppliedCode {
			return ErrCodeMismatch
		}

		res := tx.WithContext(ctx).Model(&DonationClaim{}).
			Where("id = ? AND active = ?", claimID, true).
			Updates(map[string]any{"verified": true, "active": false})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected != 1 {
			return ErrClaimAlreadyTerminal
		}
		return nil
	})
}

type CancelResult struct {
	RecipientCredits  int64
	RestaurantCredits int64
}

// Cancel transitions an active claim to Canceled and refunds the reserved
// amount to the recipient and the restaurant. The active-flag compare-and-set
// makes the refund at-most-once: a second cancel, or a cancel racing a
// pickup verification, loses the CAS and refunds nothing.
func (s *Service) Cancel(ctx context.Context, claimID, canceledBy string) (CancelResult, error) {
	var out CancelResult
	err := withTxRetry(ctx, s.db, txAttempts, func(tx *gorm.DB) error {
		var claim DonationClaim
		err := tx.WithContext(ctx).First(&claim, "id = ?", claimID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrClaimNotFound
		}
		if err != nil {
			return err
		}

		res := tx.WithContext(ctx).Model(&DonationClaim{}).
			Where("id = ? AND active = ?", claimID, true).
			Updates(map[string]any{"active": false, "canceled_by": canceledBy})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected != 1 {
			return ErrClaimAlreadyTerminal
		}

		var rec accounts.RecipientAccount
		if err := tx.WithContext(ctx).First(&rec, "email = ?", claim.RecipientEmail).Error; err != nil {
			return err
		}
		var rest accounts.RestaurantAccount
		if err := tx.WithContext(ctx).First(&rest, "id = ?", claim.RestaurantID).Error; err != nil {
			return err
		}
		recBefore := rec.AvailableCredits
		restBefore := rest.AvailableCredits

		recAfter, restAfter, err := ledger.RefundInTx(ctx, tx, claim.RecipientEmail, claim.RestaurantID, claim.Amount)
		if err != nil {
			return err
		}

		if err := audit.Append(tx, rest.Email, audit.CategoryCancel,
			fmt.Sprintf("cancel #%s: restaurant credit: %d -> %d", claim.ID, restBefore, restAfter)); err != nil {
			return err
		}
		if err := audit.Append(tx, claim.RecipientEmail, audit.CategoryCancel,
			fmt.Sprintf("cancel #%s: recipient credit: %d -> %d", claim.ID, recBefore, recAfter)); err != nil {
			return err
		}

		out = CancelResult{RecipientCredits: recAfter, RestaurantCredits: restAfter}
		return nil
	})
	if err != nil {
		return CancelResult{}, err
	}
	return out, nil
}

// Expire is the system-initiated terminal transition used by reconciliation.
// It flips the same compare-and-set as Cancel but forfeits the reservation:
// no refund is issued, modeling meals that spoiled unclaimed. Returns whether
// this call won the transition.
func (s *Service) Expire(ctx context.Context, claimID string) (bool, error) {
	res := s.db.WithContext(ctx).Model(&DonationClaim{}).
		Where("id = ? AND active = ?", claimID, true).
		Updates(map[string]any{"active": false, "canceled_by": ActorSystem})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (s *Service) Get(ctx context.Context, claimID string) (DonationClaim, error) {
	var claim DonationClaim
	err := s.db.WithContext(ctx).First(&claim, "id = ?", claimID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return DonationClaim{}, ErrClaimNotFound
	}
	return claim, err
}

func (s *Service) ListActive(ctx context.Context, restaurantID string) ([]DonationClaim, error) {
	return s.list(ctx, restaurantID, true)
}

func (s *Service) ListInactive(ctx context.Context, restaurantID string) ([]DonationClaim, error) {
	return s.list(ctx, restaurantID, false)
}

func (s *Service) list(ctx context.Context, restaurantID string, active bool) ([]DonationClaim, error) {
	var out []DonationClaim
	err := s.db.WithContext(ctx).
		Where("restaurant_id = ? AND active = ?", restaurantID, active).
		Order("created_at ASC").
		Find(&out).Error
	return out, err
}

// ListByRecipient returns a recipient's claim history, newest first.
func (s *Service) ListByRecipient(ctx context.Context, email string) ([]DonationClaim, error) {
	var out []DonationClaim
	err := s.db.WithContext(ctx).
		Where("recipient_email = ?", email).
		Order("created_at DESC").
		Find(&out).Error
	return out, err
}
