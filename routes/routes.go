package routes

import (
	"github.com/gin-gonic/gin"

	"repairconnect-server/middleware"
	"repairconnect-server/models"
	"repairconnect-server/services"
)

// Services bundles everything the handlers need. Populated once from main.
type Services struct {
	Jobs          *services.JobService
	Invoices      *services.InvoiceService
	Updates       *services.UpdateService
	Notifications *services.NotificationService
	Payments      *services.PaymentService
	Uploads       *services.UploadService
}

var svc Services

// Register wires every route group onto the router.
func Register(router *gin.Engine, s Services) {
	svc = s

	// Public surface
	router.POST("/auth/register", register)
	router.POST("/auth/login", login)
	router.POST("/auth/admin/login", adminLogin)
	router.POST("/payments/callback", paymentCallback)
	router.GET("/payments/debug/:token", redeemDebugPayment)

	// Authenticated surface
	api := router.Group("/api/v1")
	api.Use(middleware.AuthMiddleware())
	{
		api.GET("/me", me)

		jobs := api.Group("/jobs")
		{
			jobs.POST("", createJob)
			jobs.GET("/mine", listMyJobs)
			jobs.GET("/available", middleware.RequireRole(models.RoleProvider), listAvailableJobs)
			jobs.GET("/:id", getJob)
			jobs.PUT("/:id", editJob)
			jobs.PUT("/:id/status", changeJobStatus)
			jobs.GET("/:id/updates", listJobUpdates)
			jobs.POST("/:id/updates", middleware.RequireRole(models.RoleProvider), postJobUpdate)
			jobs.POST("/:id/invoices", middleware.RequireRole(models.RoleProvider), createInvoice)
		}

		invoices := api.Group("/invoices")
		{
			invoices.GET("", listInvoices)
			invoices.POST("/:id/pay", payInvoice)
			invoices.POST("/:id/checkout", createCheckout)
		}

		notifications := api.Group("/notifications")
		{
			notifications.GET("", listNotifications)
			notifications.GET("/unread-count", unreadNotificationCount)
			notifications.PUT("/:id/read", markNotificationRead)
			notifications.PUT("/read-all", markAllNotificationsRead)
		}

		provider := api.Group("/provider", middleware.RequireRole(models.RoleProvider))
		{
			provider.GET("/profile", getProviderProfile)
			provider.PUT("/profile", updateProviderProfile)
			provider.POST("/profile/photo", uploadProviderPhoto)
			provider.GET("/dashboard", providerDashboard)
		}

		customer := api.Group("/customer", middleware.RequireRole(models.RoleCustomer))
		{
			customer.GET("/dashboard", customerDashboard)
		}

		admin := api.Group("/admin", middleware.RequireRole(models.RoleAdmin))
		{
			admin.GET("/summary", adminSummary)
			admin.GET("/requests", adminListRequests)
			admin.GET("/users", adminListUsers)
			admin.PUT("/users/:id/approve", adminApproveProvider)
			admin.POST("/users/:id/suspend", adminSuspendUser)
			admin.POST("/users/:id/ban", adminBanUser)
			admin.POST("/users/:id/activate", adminActivateUser)
			admin.DELETE("/users/:id", adminDeleteUser)
		}
	}
}
