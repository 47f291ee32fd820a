package main

import (
	"net/http"

	"social-calling/internal/httpapi"
	"social-calling/internal/metrics"
	"social-calling/internal/rbac"

	"github.com/gin-gonic/gin"
)

// registerRoutes wires HTTP routes to handlers.
// Keep this file free of business logic. Handlers should delegate to internal modules.
func registerRoutes(r *gin.Engine, h httpapi.Handlers, authMW gin.HandlerFunc, devLogin bool) {
	r.Use(metrics.Gin())

	// public
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	if devLogin {
		r.POST("/v1/auth/dev-login", h.DevLogin)
	}

	v1 := r.Group("/v1")
	v1.Use(authMW, rbac.RequireIdentity())
	{
		v1.GET("/me", h.Me)
		v1.GET("/events/ws", h.EventsStream)

		user := v1.Group("")
		user.Use(rbac.RequireAnyRole(rbac.RoleUser))
		{
			calls := user.Group("/calls")
			calls.POST("/start", h.StartCall)
			calls.POST("/end", h.EndCall)
			calls.POST("/minimize", h.ToggleMinimize)
			calls.GET("/current", h.CurrentCall)

			user.GET("/pricing/quote", h.Quote)
			user.GET("/economy", h.Economy)
			user.GET("/withdrawal/minimum", h.WithdrawalMinimum)

			user.GET("/offers", h.OfferStatus)
			user.POST("/offers/claim", h.ClaimOffer)

			w := user.Group("/wallet")
			w.GET("", h.WalletBalance)
			w.GET("/packages", h.Packages)
			w.POST("/purchase", h.Purchase)

			user.GET("/leaderboard", h.Board)
			user.POST("/leaderboard/rank", h.RankLeaderboard)
		}

		// ADMIN routes
		// The hidden support role is not admitted here.
		admin := v1.Group("/admin")
		admin.Use(rbac.RequireAnyRole(rbac.RoleAdmin))
		{
			admin.GET("/tariffs", h.AdminTariffs)
			admin.GET("/journal", h.AdminJournal)
		}
	}
}
