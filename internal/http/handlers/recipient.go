package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"mealrelay.org/app/internal/http/middleware"
	"mealrelay.org/app/internal/modules/accounts"
	"mealrelay.org/app/internal/modules/claims"
)

type RecipientHandler struct {
	Accounts *accounts.Repo
	Claims   *claims.Service
}

func NewRecipientHandler(ar *accounts.Repo, cs *claims.Service) *RecipientHandler {
	return &RecipientHandler{Accounts: ar, Claims: cs}
}

// Credits handles GET /api/recipient/credits.
func (h *RecipientHandler) Credits(c *gin.Context) {
	actor, _ := middleware.CurrentActor(c)

	rec, err := h.Accounts.GetRecipient(c.Request.Context(), actor.Email)
	if err != nil {
		middleware.Fail(c, toAppError(err))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"available_credits": rec.AvailableCredits,
		"extra_credits":     rec.ExtraCredits,
		"credit_limit":      rec.CreditLimit,
	})
}

// Orders handles GET /api/recipient/orders: the actor's claim history,
// newest first.
func (h *RecipientHandler) Orders(c *gin.Context) {
	actor, _ := middleware.CurrentActor(c)

	list, err := h.Claims.ListByRecipient(c.Request.Context(), actor.Email)
	if err != nil {
		middleware.Fail(c, toAppError(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": viewClaims(list)})
}
