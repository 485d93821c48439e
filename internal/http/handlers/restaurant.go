package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"mealrelay.org/app/internal/http/middleware"
	"mealrelay.org/app/internal/http/validation"
	"mealrelay.org/app/internal/modules/accounts"
	"mealrelay.org/app/internal/shared/apperr"
)

type RestaurantHandler struct {
	Accounts *accounts.Repo
}

func NewRestaurantHandler(ar *accounts.Repo) *RestaurantHandler {
	return &RestaurantHandler{Accounts: ar}
}

type setAvailabilityRequest struct {
	AcceptingOrders *bool `json:"accepting_orders" binding:"required"`
}

// SetAvailability handles PUT /api/restaurant/availability for the
// authenticated restaurant.
func (h *RestaurantHandler) SetAvailability(c *gin.Context) {
	actor, _ := middleware.CurrentActor(c)

	var req setAvailabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.Fail(c, apperr.InvalidErr("Invalid availability.", validation.FromBindError(err, &req)))
		return
	}

	rest, err := h.Accounts.GetRestaurantByEmail(c.Request.Context(), actor.Email)
	if err != nil {
		middleware.Fail(c, toAppError(err))
		return
	}

	if err := h.Accounts.SetAcceptingOrders(c.Request.Context(), rest.ID, *req.AcceptingOrders); err != nil {
		middleware.Fail(c, toAppError(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

type setHoursRequest struct {
	OperatingHours string `json:"operating_hours" binding:"required"`
}

// SetHours handles PUT /api/restaurant/hours.
func (h *RestaurantHandler) SetHours(c *gin.Context) {
	actor, _ := middleware.CurrentActor(c)

	var req setHoursRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.Fail(c, apperr.InvalidErr("Invalid hours.", validation.FromBindError(err, &req)))
		return
	}

	rest, err := h.Accounts.GetRestaurantByEmail(c.Request.Context(), actor.Email)
	if err != nil {
		middleware.Fail(c, toAppError(err))
		return
	}

	if err := h.Accounts.SetOperatingHours(c.Request.Context(), rest.ID, req.OperatingHours); err != nil {
		middleware.Fail(c, toAppError(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
