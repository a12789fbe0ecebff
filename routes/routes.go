package routes

import (
	"fleetbid/handlers"
	"fleetbid/middleware"

	"github.com/gin-gonic/gin"
)

// RegisterRoutes wires every endpoint group onto the router.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	RegisterBookingRoutes(r, hb)
	RegisterSessionRoutes(r, hb)
	RegisterEscrowRoutes(r, hb)
	RegisterWalletRoutes(r, hb)
	RegisterHealthRoute(r)
}

// RegisterBookingRoutes registers the booking surface around the auction.
func RegisterBookingRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/bookings")
	{
		api.Use(middleware.JWTAuthMiddleware())
		api.POST("", middleware.RequireRole(middleware.RoleRequester), hb.CreateBooking)
		api.GET("/:id", hb.GetBooking)
		// Completion signal from the execution/tracking side.
		api.POST("/:id/completed", middleware.RequireRole(middleware.RoleProvider), hb.JobCompleted)
	}
}

// RegisterSessionRoutes registers the auction protocol endpoints.
func RegisterSessionRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/sessions")
	{
		api.Use(middleware.JWTAuthMiddleware())
		api.POST("", middleware.RequireRole(middleware.RoleRequester), hb.OpenSession)
		api.GET("/:id", hb.GetSession)
		api.GET("/:id/offers", hb.ListOffers)
		api.POST("/:id/raise", middleware.RequireRole(middleware.RoleRequester), hb.RaisePrice)
		api.POST("/:id/cancel", middleware.RequireRole(middleware.RoleRequester), hb.CancelSession)
		api.POST("/:id/offers", middleware.RequireRole(middleware.RoleProvider), hb.SubmitOffer)
		api.POST("/:id/offers/:offerId/accept", middleware.RequireRole(middleware.RoleRequester), hb.AcceptOffer)
		api.POST("/:id/offers/:offerId/reject", middleware.RequireRole(middleware.RoleRequester), hb.RejectOffer)
	}
}

// RegisterEscrowRoutes registers the settlement state machine endpoints.
func RegisterEscrowRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/escrow")
	{
		api.Use(middleware.JWTAuthMiddleware())
		api.POST("", middleware.RequireRole(middleware.RoleAdmin), hb.CreateHold)
		api.GET("/:id", hb.GetEscrow)
		api.POST("/:id/release", middleware.RequireRole(middleware.RoleRequester, middleware.RoleAdmin), hb.ReleaseEscrow)
		api.POST("/:id/refund", middleware.RequireRole(middleware.RoleAdmin), hb.RefundEscrow)
		api.POST("/:id/dispute", hb.OpenDispute)
		api.POST("/:id/resolve", middleware.RequireRole(middleware.RoleAdmin), hb.ResolveDispute)
	}
}

// RegisterWalletRoutes registers the wallet read surface and top-ups.
func RegisterWalletRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/wallets")
	{
		api.Use(middleware.JWTAuthMiddleware())
		api.GET("/:userId", hb.GetWalletBalance)
		api.POST("/topup-intent", hb.CreateTopUpIntent)
	}
}

// RegisterHealthRoute registers a liveness endpoint.
func RegisterHealthRoute(r *gin.Engine) {
	r.GET("/healthz", handlers.HealthHandler)
}
