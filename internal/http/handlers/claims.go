package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"mealrelay.org/app/internal/http/middleware"
	"mealrelay.org/app/internal/http/validation"
	"mealrelay.org/app/internal/modules/accounts"
	"mealrelay.org/app/internal/modules/claims"
	"mealrelay.org/app/internal/modules/notify"
	"mealrelay.org/app/internal/shared/apperr"
)

type ClaimsHandler struct {
	Claims   *claims.Service
	Accounts *accounts.Repo
	Notify   *notify.Dispatcher
}

func NewClaimsHandler(cs *claims.Service, ar *accounts.Repo, nd *notify.Dispatcher) *ClaimsHandler {
	return &ClaimsHandler{Claims: cs, Accounts: ar, Notify: nd}
}

type createOrderRequest struct {
	FeedItemID string    `json:"feed_item_id" binding:"required"`
	MealItems  []string  `json:"meal_items" binding:"required,min=1"`
	Amount     int64     `json:"amount" binding:"required,gt=0"`
	PickupTime time.Time `json:"pickup_time" binding:"required"`
	Timezone   string    `json:"timezone" binding:"required"`
}

// Create handles POST /api/restaurant/:restaurant_id/order. The actor is the
// claiming recipient; the reserved amount comes out of their balance.
func (h *ClaimsHandler) Create(c *gin.Context) {
	actor, _ := middleware.CurrentActor(c)
	restaurantID := c.Param("restaurant_id")

	var req createOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.Fail(c, apperr.InvalidErr("Invalid order.", validation.FromBindError(err, &req)))
		return
	}

	res, err := h.Claims.Create(c.Request.Context(), claims.CreateParams{
		RestaurantID:   restaurantID,
		FeedItemID:     req.FeedItemID,
		RecipientEmail: actor.Email,
		MealItems:      req.MealItems,
		Amount:         req.Amount,
		PickupTime:     req.PickupTime,
		Timezone:       req.Timezone,
	})
	if err != nil {
		middleware.Fail(c, toAppError(err))
		return
	}

	// Best-effort code delivery; the code is also in the response body.
	restaurantName := restaurantID
	if rest, err := h.Accounts.GetRestaurant(c.Request.Context(), restaurantID); err == nil {
		restaurantName = rest.Name
	}
	h.Notify.PickupCode(actor.Email, restaurantName, res.PickupCode, req.PickupTime)

	c.JSON(http.StatusCreated, gin.H{
		"claim_id":    res.ClaimID,
		"pickup_code": res.PickupCode,
	})
}

type verifyPickupRequest struct {
	Code string `json:"code" binding:"required"`
}

// VerifyPickup handles POST /api/restaurant/:restaurant_id/order/:order_id.
// Only the restaurant the claim is addressed to (or an admin) may verify.
func (h *ClaimsHandler) VerifyPickup(c *gin.Context) {
	restaurantID := c.Param("restaurant_id")
	orderID := c.Param("order_id")

	if !h.actorOwnsRestaurant(c, restaurantID) {
		return
	}

	var req verifyPickupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.Fail(c, apperr.InvalidErr("Pickup code required.", validation.FromBindError(err, &req)))
		return
	}

	if err := h.Claims.VerifyPickup(c.Request.Context(), restaurantID, orderID, req.Code); err != nil {
		middleware.Fail(c, toAppError(err))
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Cancel handles DELETE /api/restaurant/cancel/:order_id. Recipients may
// cancel their own claims, restaurants claims addressed to them, admins any.
// Cancellation refunds the reserved amount to both parties.
func (h *ClaimsHandler) Cancel(c *gin.Context) {
	actor, _ := middleware.CurrentActor(c)
	orderID := c.Param("order_id")

	claim, err := h.Claims.Get(c.Request.Context(), orderID)
	if err != nil {
		middleware.Fail(c, toAppError(err))
		return
	}

	canceledBy := ""
	switch actor.Role {
	case middleware.RoleRecipient:
		if claim.RecipientEmail != actor.Email {
			middleware.Fail(c, apperr.ForbiddenErr("Not your order."))
			return
		}
		canceledBy = claims.ActorRecipient
	case middleware.RoleRestaurant:
		rest, err := h.Accounts.GetRestaurantByEmail(c.Request.Context(), actor.Email)
		if err != nil || rest.ID != claim.RestaurantID {
			middleware.Fail(c, apperr.ForbiddenErr("Not your order."))
			return
		}
		canceledBy = claims.ActorRestaurant
	case middleware.RoleAdmin:
		canceledBy = claims.ActorSystem
	default:
		middleware.Fail(c, apperr.ForbiddenErr("Not allowed."))
		return
	}

	res, err := h.Claims.Cancel(c.Request.Context(), orderID, canceledBy)
	if err != nil {
		middleware.Fail(c, toAppError(err))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"recipient_credit":  res.RecipientCredits,
		"restaurant_credit": res.RestaurantCredits,
	})
}

// ListActive handles GET /api/restaurant/:restaurant_id/active.
func (h *ClaimsHandler) ListActive(c *gin.Context) {
	restaurantID := c.Param("restaurant_id")
	if !h.actorOwnsRestaurant(c, restaurantID) {
		return
	}

	list, err := h.Claims.ListActive(c.Request.Context(), restaurantID)
	if err != nil {
		middleware.Fail(c, toAppError(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": viewClaims(list)})
}

// ListInactive handles GET /api/restaurant/:restaurant_id/inactive.
func (h *ClaimsHandler) ListInactive(c *gin.Context) {
	restaurantID := c.Param("restaurant_id")
	if !h.actorOwnsRestaurant(c, restaurantID) {
		return
	}

	list, err := h.Claims.ListInactive(c.Request.Context(), restaurantID)
	if err != nil {
		middleware.Fail(c, toAppError(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": viewClaims(list)})
}

// actorOwnsRestaurant fails the request and returns false unless the actor is
// the restaurant in the path, or an admin.
func (h *ClaimsHandler) actorOwnsRestaurant(c *gin.Context, restaurantID string) bool {
	actor, _ := middleware.CurrentActor(c)
	if actor.Role == middleware.RoleAdmin {
		return true
	}
	rest, err := h.Accounts.GetRestaurantByEmail(c.Request.Context(), actor.Email)
	if err != nil || rest.ID != restaurantID {
		middleware.Fail(c, apperr.ForbiddenErr("Not your restaurant."))
		return false
	}
	return true
}
