package routes

import (
	"github.com/gin-gonic/gin"

	"snowclear-api/handlers"
	"snowclear-api/middleware"
	"snowclear-api/models"
)

func SetupRoutes(r *gin.Engine) {
	// ── Public routes ──────────────────────────────────────────────
	public := r.Group("/api")
	{
		// Auth
		public.POST("/auth/register", handlers.Register)
		public.POST("/auth/login", handlers.Login)

		// Processor callbacks
		public.POST("/webhooks/payment", handlers.PaymentWebhook)

		// State machine info (great for docs/Postman)
		public.GET("/state-machine", handlers.GetStateMachineInfo)
	}

	// ── Authenticated routes ───────────────────────────────────────
	auth := r.Group("/api")
	auth.Use(middleware.AuthRequired())
	{
		auth.GET("/profile", handlers.GetProfile)
		auth.PUT("/profile", handlers.UpdateProfile)
		auth.POST("/device", handlers.RegisterDevice)
		auth.DELETE("/device", handlers.UnregisterDevice)
	}

	// ── Client routes ──────────────────────────────────────────────
	client := r.Group("/api/client")
	client.Use(middleware.AuthRequired(), middleware.RoleRequired(models.RoleClient))
	{
		// Vehicles
		client.POST("/vehicles", handlers.AddVehicle)
		client.GET("/vehicles", handlers.GetMyVehicles)
		client.PUT("/vehicles/:id", handlers.UpdateVehicle)
		client.DELETE("/vehicles/:id", handlers.DeleteVehicle)

		// Reservations
		client.POST("/reservations", handlers.CreateReservation)
		client.GET("/reservations", handlers.GetMyReservations)
		client.GET("/reservations/:id", handlers.GetReservationDetail)
		client.PUT("/reservations/:id/cancel", handlers.CancelReservation)
		client.PUT("/reservations/:id/tip", handlers.AddTip)
		client.POST("/reservations/:id/pay", handlers.PayReservation)
		client.POST("/reservations/:id/dispute", handlers.OpenDispute)
	}

	// ── Worker routes ──────────────────────────────────────────────
	worker := r.Group("/api/worker")
	worker.Use(middleware.AuthRequired(), middleware.RoleRequired(models.RoleWorker))
	{
		worker.GET("/jobs/open", handlers.GetOpenJobs)
		worker.GET("/jobs/mine", handlers.GetMyJobs)
		worker.PUT("/jobs/:id/accept", handlers.AcceptJob)
		worker.PUT("/jobs/:id/depart", handlers.DepartJob)
		worker.PUT("/jobs/:id/start", handlers.StartJob)
		worker.PUT("/jobs/:id/complete", handlers.CompleteJob)
		worker.PUT("/jobs/:id/cancel", handlers.WorkerCancelJob)
	}

	// ── Admin routes ───────────────────────────────────────────────
	admin := r.Group("/api/admin")
	admin.Use(middleware.AuthRequired(), middleware.RoleRequired(models.RoleAdmin))
	{
		admin.GET("/reservations", handlers.AdminGetAllReservations)
		admin.PUT("/reservations/:id/status", handlers.AdminForceReservationStatus)
		admin.POST("/reservations/:id/payout", handlers.AdminTransferPayout)
		admin.GET("/users", handlers.AdminGetAllUsers)
		admin.PUT("/users/:id/role", handlers.AdminPromoteUser)
		admin.GET("/disputes", handlers.AdminListDisputes)
		admin.PUT("/disputes/:id", handlers.AdminResolveDispute)
	}
}
