package main

import (
	"log"
	"net/http"
	"os"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"repairconnect-server/config"
	"repairconnect-server/database"
	"repairconnect-server/jobs"
	"repairconnect-server/routes"
	"repairconnect-server/services"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	// Load configuration
	config.Load()

	// Initialize database
	if err := database.Initialize(); err != nil {
		log.Fatal("Failed to initialize database:", err)
	}

	// Start the notification outbox worker
	notifier := services.NewNotifier(database.DB)
	notifier.Start()
	defer notifier.Stop()

	// Wire up services
	jobService := services.NewJobService(database.DB, notifier)
	invoiceService := services.NewInvoiceService(database.DB, notifier)
	updateService := services.NewUpdateService(database.DB, notifier)
	notificationService := services.NewNotificationService(database.DB)

	gateway := services.NewPaymentGateway(config.AppConfig.Payment)
	paymentService := services.NewPaymentService(gateway, invoiceService)

	uploadService, err := services.NewUploadService()
	if err != nil {
		log.Printf("⚠️ Upload service unavailable: %v", err)
		uploadService = &services.UploadService{}
	}

	// Start the archive reclamation sweep
	cleanupJob := jobs.NewCleanupJob(
		database.DB,
		config.AppConfig.Cleanup.RetentionHours,
		config.AppConfig.Cleanup.IncludeCancelled,
	)
	cleanupJob.Start()
	defer cleanupJob.Stop()

	// Set Gin mode
	if os.Getenv("GIN_MODE") == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Create router
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	corsConfig := cors.DefaultConfig()
	if origin := config.AppConfig.CORS.Origin; origin != "" && origin != "*" {
		corsConfig.AllowOrigins = []string{origin}
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowHeaders = append(corsConfig.AllowHeaders, "Authorization")
	router.Use(cors.New(corsConfig))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "RepairConnect server is running",
			"time":    time.Now().UTC(),
		})
	})

	routes.Register(router, routes.Services{
		Jobs:          jobService,
		Invoices:      invoiceService,
		Updates:       updateService,
		Notifications: notificationService,
		Payments:      paymentService,
		Uploads:       uploadService,
	})

	port := config.AppConfig.Server.Port
	log.Printf("Server starting on port %s", port)
	if err := router.Run("0.0.0.0:" + port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
