package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"mealrelay.org/app/internal/http/handlers"
	"mealrelay.org/app/internal/http/middleware"
	"mealrelay.org/app/internal/modules/accounts"
	"mealrelay.org/app/internal/modules/claims"
	"mealrelay.org/app/internal/modules/notify"
)

type RouterDeps struct {
	Logger   *slog.Logger
	Claims   *claims.Service
	Accounts *accounts.Repo
	Notify   *notify.Dispatcher
}

func NewRouter(d RouterDeps) *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(d.Logger))
	r.Use(middleware.Recovery(d.Logger))
	r.Use(middleware.ErrorHandler(d.Logger))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	ch := handlers.NewClaimsHandler(d.Claims, d.Accounts, d.Notify)
	rh := handlers.NewRecipientHandler(d.Accounts, d.Claims)
	sh := handlers.NewRestaurantHandler(d.Accounts)
	ah := handlers.NewAdminHandler(d.Accounts.DB(), d.Accounts)

	api := r.Group("/api", middleware.Identity())
	{
		admin := api.Group("/admin", middleware.RequireRole(middleware.RoleAdmin))
		{
			admin.GET("/audit", ah.AuditLog)
			admin.PUT("/recipient/:email/approval", ah.SetRecipientApproval)
			admin.PUT("/recipient/:email", ah.UpdateRecipient)
		}

		rec := api.Group("/recipient", middleware.RequireRole(middleware.RoleRecipient))
		{
			rec.GET("/credits", rh.Credits)
			rec.GET("/orders", rh.Orders)
		}

		rest := api.Group("/restaurant")
		{
			rest.POST("/:restaurant_id/order", middleware.RequireRole(middleware.RoleRecipient), ch.Create)
			rest.POST("/:restaurant_id/order/:order_id", middleware.RequireRole(middleware.RoleRestaurant), ch.VerifyPickup)
			rest.GET("/:restaurant_id/active", middleware.RequireRole(middleware.RoleRestaurant), ch.ListActive)
			rest.GET("/:restaurant_id/inactive", middleware.RequireRole(middleware.RoleRestaurant), ch.ListInactive)
			rest.DELETE("/cancel/:order_id",
				middleware.RequireRole(middleware.RoleRecipient, middleware.RoleRestaurant), ch.Cancel)
			rest.PUT("/availability", middleware.RequireRole(middleware.RoleRestaurant), sh.SetAvailability)
			rest.PUT("/hours", middleware.RequireRole(middleware.RoleRestaurant), sh.SetHours)
		}
	}

	return r
}
