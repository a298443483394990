package routes

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"doctor-appointment-server/internal/booking"
	"doctor-appointment-server/internal/config"
	"doctor-appointment-server/internal/handlers"
	"doctor-appointment-server/internal/middleware"
	"doctor-appointment-server/internal/notify"
)

// SetupRoutes configures the application routes.
func SetupRoutes(router *gin.Engine, db *gorm.DB, cfg *config.Config, log *zap.Logger) {
	// Shared collaborators
	notifier := notify.New(db, notify.NewSMTPMailer(cfg.Mailer, cfg.AppName), log)
	bookingService := booking.NewService(db, notifier, log)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(db, cfg, notifier)
	userHandler := handlers.NewUserHandler(db, notifier)
	appointmentHandler := handlers.NewAppointmentHandler(db, bookingService, log)
	doctorHandler := handlers.NewDoctorHandler(db, bookingService, log)
	adminHandler := handlers.NewAdminHandler(db, notifier)
	notificationHandler := handlers.NewNotificationHandler(db)

	// Public routes (no authentication required)
	public := router.Group("/api/v1/user")
	{
		public.POST("/register", authHandler.Register)
		public.POST("/login", authHandler.Login)
		public.POST("/refresh-token", authHandler.RefreshToken)
		public.POST("/logout", authHandler.Logout)
		public.GET("/doctors", userHandler.GetDoctors)
		public.GET("/doctors/:id", userHandler.GetDoctorByID)
	}

	// Authenticated routes
	private := router.Group("/api/v1")
	private.Use(middleware.AuthMiddleware(cfg))
	{
		userRoutes := private.Group("/user")
		{
			userRoutes.GET("/profile", authHandler.GetProfile)
			userRoutes.POST("/apply-doctor", userHandler.ApplyDoctor)
		}

		appointmentRoutes := private.Group("/appointments")
		{
			appointmentRoutes.POST("/book", appointmentHandler.BookAppointment)
			appointmentRoutes.POST("/check-availability", appointmentHandler.CheckAvailability)
			appointmentRoutes.GET("/user", appointmentHandler.GetUserAppointments)
			appointmentRoutes.PATCH("/:id/cancel", appointmentHandler.CancelAppointment)
			appointmentRoutes.PATCH("/:id/reschedule", appointmentHandler.RescheduleAppointment)
		}

		doctorRoutes := private.Group("/doctor")
		doctorRoutes.Use(middleware.RequireDoctor(db))
		{
			doctorRoutes.GET("/profile", doctorHandler.GetProfile)
			doctorRoutes.PATCH("/profile", doctorHandler.UpdateProfile)
			doctorRoutes.GET("/appointments", doctorHandler.GetAppointments)
			doctorRoutes.PATCH("/appointments/:id/status", doctorHandler.UpdateAppointmentStatus)
			doctorRoutes.GET("/dashboard", doctorHandler.GetDashboard)
		}

		adminRoutes := private.Group("/admin")
		adminRoutes.Use(middleware.RequireAdmin(db))
		{
			adminRoutes.GET("/users", adminHandler.GetUsers)
			adminRoutes.GET("/doctors", adminHandler.GetDoctors)
			adminRoutes.PATCH("/doctors/:id/status", adminHandler.UpdateDoctorStatus)
			adminRoutes.GET("/dashboard", adminHandler.GetDashboard)
		}

		notificationRoutes := private.Group("/notifications")
		{
			notificationRoutes.GET("", notificationHandler.GetNotifications)
			notificationRoutes.PATCH("/read-all", notificationHandler.MarkAllRead)
			notificationRoutes.PATCH("/:id/read", notificationHandler.MarkRead)
			notificationRoutes.DELETE("/clear-all", notificationHandler.ClearAll)
			notificationRoutes.DELETE("/:id", notificationHandler.DeleteNotification)
		}
	}

	// Simple health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"success": true, "message": "Server is running"})
	})
}
