package routes

import (
	"time"

	"barberli-backend/handlers"
	"barberli-backend/middleware"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func SetupRoutes(r *gin.Engine, db *gorm.DB) {
	// Initialize handlers
	authHandler := &handlers.AuthHandler{DB: db}
	barbershopHandler := &handlers.BarbershopHandler{DB: db}
	reservationHandler := &handlers.ReservationHandler{DB: db}

	// Credential endpoints get a tight limit; booking a generous one.
	authLimiter := middleware.NewRateLimiter(10, time.Minute)
	bookingLimiter := middleware.NewRateLimiter(30, time.Minute)

	// Public routes
	api := r.Group("/api")
	{
		// Auth routes
		api.POST("/auth/register", authLimiter.Middleware(), authHandler.Register)
		api.POST("/auth/login", authLimiter.Middleware(), authHandler.Login)
		api.POST("/auth/refresh", authLimiter.Middleware(), authHandler.RefreshToken)

		// Public barbershop routes
		api.GET("/barbershops", barbershopHandler.GetBarbershops)
		api.GET("/barbershops/:id", barbershopHandler.GetBarbershop)
		api.GET("/barbershops/:id/slots", barbershopHandler.GetAvailableSlots)
		api.GET("/barbershops/:id/working-hours", barbershopHandler.GetWorkingHours)
	}

	// Protected routes (require authentication)
	protected := api.Group("")
	protected.Use(middleware.AuthMiddleware())
	{
		// User profile
		protected.GET("/auth/profile", authHandler.GetProfile)

		// Reservation routes
		protected.POST("/reservations", bookingLimiter.Middleware(), reservationHandler.CreateReservation)
		protected.GET("/reservations", reservationHandler.GetReservations)
		protected.GET("/reservations/:id", reservationHandler.GetReservation)
		protected.POST("/reservations/:id/cancel", reservationHandler.CancelReservation)
	}

	// Admin routes (require admin role)
	admin := api.Group("/admin")
	admin.Use(middleware.AuthMiddleware())
	admin.Use(middleware.AdminMiddleware())
	{
		// Barbershop management
		admin.POST("/barbershops", barbershopHandler.CreateBarbershop)
		admin.PUT("/barbershops/:id", barbershopHandler.UpdateBarbershop)
		admin.PUT("/barbershops/:id/working-hours", barbershopHandler.UpdateWorkingHours)

		// Service management
		admin.POST("/barbershops/:id/services", barbershopHandler.CreateService)
		admin.PUT("/services/:service_id", barbershopHandler.UpdateService)
		admin.DELETE("/services/:service_id", barbershopHandler.DeleteService)

		// Reservation management
		admin.GET("/reservations", reservationHandler.GetAllReservations)
		admin.PUT("/reservations/:id/status", reservationHandler.UpdateReservationStatus)
	}

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
}
