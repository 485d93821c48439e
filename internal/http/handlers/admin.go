package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"mealrelay.org/app/internal/http/middleware"
	"mealrelay.org/app/internal/http/validation"
	"mealrelay.org/app/internal/modules/accounts"
	"mealrelay.org/app/internal/modules/audit"
	"mealrelay.org/app/internal/shared/apperr"
)

type AdminHandler struct {
	DB       *gorm.DB
	Accounts *accounts.Repo
}

func NewAdminHandler(db *gorm.DB, ar *accounts.Repo) *AdminHandler {
	return &AdminHandler{DB: db, Accounts: ar}
}

// AuditLog handles GET /api/admin/audit?limit=N, newest entries first.
func (h *AdminHandler) AuditLog(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))

	entries, err := audit.Recent(h.DB, limit)
	if err != nil {
		middleware.Fail(c, toAppError(err))
		return
	}

	out := make([]gin.H, len(entries))
	for i, e := range entries {
		out[i] = gin.H{
			"actor_email": e.ActorEmail,
			"category":    e.Category,
			"message":     e.Message,
			"created_at":  e.CreatedAt,
		}
	}
	c.JSON(http.StatusOK, gin.H{"entries": out})
}

type setApprovalRequest struct {
	Approved *bool `json:"approved" binding:"required"`
}

// SetRecipientApproval handles PUT /api/admin/recipient/:email/approval.
// Unapproved recipients cannot create claims.
func (h *AdminHandler) SetRecipientApproval(c *gin.Context) {
	email := c.Param("email")

	var req setApprovalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.Fail(c, apperr.InvalidErr("Invalid approval.", validation.FromBindError(err, &req)))
		return
	}

	if err := h.Accounts.SetApproval(c.Request.Context(), email, *req.Approved); err != nil {
		middleware.Fail(c, toAppError(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

type updateRecipientRequest struct {
	AvailableCredits *int64 `json:"available_credits" binding:"required,gte=0"`
	ExtraCredits     *int64 `json:"extra_credits" binding:"required,gte=0"`
	CreditLimit      *int64 `json:"credit_limit" binding:"required,gte=0"`
	Approved         *bool  `json:"approved" binding:"required"`
}

// UpdateRecipient handles PUT /api/admin/recipient/:email: wholesale credit
// configuration, used when onboarding or adjusting a household.
func (h *AdminHandler) UpdateRecipient(c *gin.Context) {
	email := c.Param("email")

	var req updateRecipientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.Fail(c, apperr.InvalidErr("Invalid recipient update.", validation.FromBindError(err, &req)))
		return
	}
	if *req.AvailableCredits > *req.CreditLimit {
		middleware.Fail(c, apperr.InvalidErr("Available credits cannot exceed the credit limit.", nil))
		return
	}

	err := h.Accounts.UpdateRecipient(c.Request.Context(), email, accounts.UpdateRecipientParams{
		AvailableCredits: *req.AvailableCredits,
		ExtraCredits:     *req.ExtraCredits,
		CreditLimit:      *req.CreditLimit,
		Approved:         *req.Approved,
	})
	if err != nil {
		middleware.Fail(c, toAppError(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
