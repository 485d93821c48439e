package handlers

import (
	"errors"
	"time"

	"mealrelay.org/app/internal/modules/accounts"
	"mealrelay.org/app/internal/modules/claims"
	"mealrelay.org/app/internal/modules/ledger"
	"mealrelay.org/app/internal/shared/apperr"
)

// toAppError maps service-layer sentinel errors onto the public taxonomy.
// Business-rule failures keep their specific message; anything unrecognized
// bubbling out of the persistence layer becomes a generic "try again" so
// storage internals never leak.
func toAppError(err error) *apperr.AppError {
	switch {
	case errors.Is(err, ledger.ErrAccountNotFound):
		return apperr.NotFoundErr("Recipient account not found.")
	case errors.Is(err, ledger.ErrAccountNotApproved):
		return apperr.ForbiddenErr("Recipient account is not approved.")
	case errors.Is(err, ledger.ErrInsufficientCredit):
		return apperr.ConflictErr("Insufficient credit.")
	case errors.Is(err, ledger.ErrInvalidAmount):
		return apperr.InvalidErr("Amount must be positive.", nil)
	case errors.Is(err, claims.ErrRestaurantUnavailable):
		return apperr.ConflictErr("Restaurant is not accepting orders.")
	case errors.Is(err, claims.ErrClaimNotFound):
		return apperr.NotFoundErr("Order not found.")
	case errors.Is(err, claims.ErrClaimAlreadyTerminal):
		return apperr.ConflictErr("Order is no longer active.")
	case errors.Is(err, claims.ErrCodeMismatch):
		return apperr.InvalidErr("Pickup code does not match.", nil)
	case errors.Is(err, accounts.ErrRecipientNotFound):
		return apperr.NotFoundErr("Recipient account not found.")
	case errors.Is(err, accounts.ErrRestaurantNotFound):
		return apperr.NotFoundErr("Restaurant not found.")
	default:
		return apperr.UnavailableErr(err)
	}
}

type claimView struct {
	ID             string    `json:"id"`
	RestaurantID   string    `json:"restaurant_id"`
	FeedItemID     string    `json:"feed_item_id"`
	RecipientEmail string    `json:"recipient_email"`
	MealItems      []string  `json:"meal_items"`
	Amount         int64     `json:"amount"`
	PickupTime     time.Time `json:"pickup_time"`
	CreatedAt      time.Time `json:"created_at"`
	Timezone       string    `json:"timezone"`
	Active         bool      `json:"active"`
	Verified       bool      `json:"verified"`
	CanceledBy     *string   `json:"canceled_by,omitempty"`
}

func viewClaim(c claims.DonationClaim) claimView {
	return claimView{
		ID:             c.ID,
		RestaurantID:   c.RestaurantID,
		FeedItemID:     c.FeedItemID,
		RecipientEmail: c.RecipientEmail,
		MealItems:      c.MealItems(),
		Amount:         c.Amount,
		PickupTime:     c.PickupTime,
		CreatedAt:      c.CreatedAt,
		Timezone:       c.Timezone,
		Active:         c.Active,
		Verified:       c.Verified,
		CanceledBy:     c.CanceledBy,
	}
}

func viewClaims(in []claims.DonationClaim) []claimView {
	out := make([]claimView, len(in))
	for i, c := range in {
		out[i] = viewClaim(c)
	}
	return out
}
