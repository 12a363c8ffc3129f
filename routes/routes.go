package routes

import (
	"net/http"
	"time"

	"github.com/SNS-EUGENE/sto-mediacenter-sub001/handlers"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RegisterStoRoutes registers the portal session, booking, and sync
// endpoints.
func RegisterStoRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/sto")
	{
		api.POST("/login", hb.LoginHandler)
		api.GET("/login", hb.SessionStatusHandler)
		api.DELETE("/login", hb.LogoutHandler)

		api.GET("/bookings", hb.ListBookingsHandler)
		api.GET("/bookings/:id", hb.BookingDetailHandler)

		api.POST("/sync", hb.RunSyncHandler)
		api.GET("/sync", hb.SyncStatusHandler)
		api.PUT("/sync", hb.ReseedSnapshotHandler)
	}
}

// RegisterVerificationRoutes registers the verification-code endpoints.
func RegisterVerificationRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.GET("/verification-code", hb.FetchCodeHandler)
	r.POST("/verification-code", hb.WaitCodeHandler)
}

// RegisterHealthRoute registers a health-check endpoint.
func RegisterHealthRoute(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "message": "sto-mediacenter sync service"})
	})
}

// RegisterRoutes wires every route group onto the engine.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	// Setup global middleware (e.g., CORS) here.
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	RegisterStoRoutes(r, hb)
	RegisterVerificationRoutes(r, hb)
	RegisterHealthRoute(r)
}
