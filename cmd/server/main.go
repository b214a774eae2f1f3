package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/davidzorentals/booking-backend/internal/config"
	"github.com/davidzorentals/booking-backend/internal/database"
	"github.com/davidzorentals/booking-backend/internal/handlers"
	"github.com/davidzorentals/booking-backend/internal/middleware"
	"github.com/davidzorentals/booking-backend/internal/services"
	"github.com/davidzorentals/booking-backend/pkg/jwt"
	"github.com/davidzorentals/booking-backend/pkg/stripe"
	"github.com/davidzorentals/booking-backend/pkg/validator"
	"github.com/davidzorentals/booking-backend/pkg/whatsapp"
)

var (
	version   = "1.0.0"
	buildTime = "unknown"
)

func main() {
	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	logger.Info("Starting Rentals Booking Backend")
	logger.Infof("Version: %s, Build Time: %s", version, buildTime)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("Failed to load configuration: %v", err)
	}

	// Set log level
	logLevel, err := logrus.ParseLevel(cfg.Server.LogLevel)
	if err != nil {
		logger.Warn("Invalid log level, using INFO")
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	// Set Gin mode
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	// Initialize database connection
	logger.Info("Connecting to database...")
	db, err := database.NewConnection(cfg.Database)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		logger.Fatalf("Failed to ping database: %v", err)
	}
	logger.Info("Database connection established")

	// Initialize repositories
	userRepository := database.NewUserRepository(db)
	sessionRepository := database.NewSessionRepository(db)
	magicLinkRepository := database.NewMagicLinkRepository(db)
	bookingRepository := database.NewBookingRepository(db)
	paymentRepository := database.NewPaymentRepository(db)
	propertyRepository := database.NewPropertyRepository(db)
	vehicleRepository := database.NewVehicleRepository(db)
	notificationRepository := database.NewNotificationRepository(db)
	reportRepository := database.NewReportRepository(db)

	// Initialize provider clients
	stripeClient := stripe.NewClient(stripe.Config{
		SecretKey: cfg.Stripe.SecretKey,
	}, logger)

	messenger := whatsapp.NewClient(whatsapp.Config{
		Mode:       cfg.WhatsApp.Mode,
		AccountSID: cfg.WhatsApp.AccountSID,
		AuthToken:  cfg.WhatsApp.AuthToken,
		FromNumber: cfg.WhatsApp.FromNumber,
	}, logger)
	if cfg.WhatsApp.Mode == "production" {
		logger.Info("WhatsApp messaging in production mode")
	} else {
		logger.Info("WhatsApp messaging in development mode (messages are logged, not sent)")
	}

	// Initialize services
	logger.Info("Initializing services...")
	jwtService := jwt.NewService(
		cfg.JWT.Secret,
		cfg.JWT.RefreshSecret,
		cfg.JWT.AccessTokenExpiry,
		cfg.JWT.RefreshTokenExpiry,
	)
	phoneValidator := validator.NewPhoneValidator(cfg.App.DefaultCountryCode)
	otpService := services.NewOTPService(db)
	rateLimitService := services.NewRateLimitService(db, cfg.RateLimit)
	magicLinkService := services.NewMagicLinkService(userRepository, magicLinkRepository, messenger, cfg, logger)
	availabilityService := services.NewAvailabilityService(bookingRepository, logger)
	bookingService := services.NewBookingService(bookingRepository, availabilityService, logger)
	identityService := services.NewIdentityService(userRepository, logger)
	checkoutService := services.NewCheckoutService(
		propertyRepository,
		vehicleRepository,
		identityService,
		phoneValidator,
		bookingService,
		stripeClient,
		messenger,
		cfg,
		logger,
	)
	reconcilerService := services.NewReconcilerService(
		bookingService,
		paymentRepository,
		userRepository,
		notificationRepository,
		messenger,
		cfg,
		logger,
	)
	logger.Info("Services initialized")

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(
		jwtService,
		otpService,
		magicLinkService,
		rateLimitService,
		phoneValidator,
		userRepository,
		sessionRepository,
		messenger,
		cfg,
		logger,
	)
	bookingHandler := handlers.NewBookingHandler(checkoutService, bookingService, logger)
	webhookHandler := handlers.NewWebhookHandler(reconcilerService, cfg, logger)
	catalogHandler := handlers.NewCatalogHandler(propertyRepository, vehicleRepository)
	notificationHandler := handlers.NewNotificationHandler(notificationRepository)
	reportHandler := handlers.NewReportHandler(reportRepository, bookingRepository, userRepository, notificationRepository, logger)

	// Initialize Gin router
	router := gin.New()

	// Middleware
	router.Use(gin.Recovery())
	if cfg.Security.EnableRequestLog {
		router.Use(requestLogger(logger))
	}

	// CORS configuration
	corsConfig := cors.Config{
		AllowOrigins:     cfg.CORS.AllowedOrigins,
		AllowMethods:     cfg.CORS.AllowedMethods,
		AllowHeaders:     cfg.CORS.AllowedHeaders,
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	router.Use(cors.New(corsConfig))

	// Health check endpoint
	router.GET("/health", healthCheckHandler(db))

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Authentication routes (public)
		auth := v1.Group("/auth")
		{
			auth.POST("/send-otp", authHandler.SendOTP)
			auth.POST("/verify-otp", authHandler.VerifyOTP)
			auth.POST("/request-link", authHandler.RequestLink)
			auth.GET("/magic", authHandler.VerifyMagic)

			authProtected := auth.Group("")
			authProtected.Use(middleware.AuthMiddleware(jwtService))
			{
				authProtected.GET("/session", authHandler.Session)
				authProtected.POST("/logout", authHandler.Logout)
			}
		}

		// Catalog routes (public)
		v1.GET("/properties", catalogHandler.ListProperties)
		v1.GET("/properties/:id", catalogHandler.GetProperty)
		v1.GET("/vehicles", catalogHandler.ListVehicles)
		v1.GET("/vehicles/:id", catalogHandler.GetVehicle)

		// Checkout is open to guests; identity is resolved from contact details
		v1.POST("/bookings/checkout", bookingHandler.CreateCheckout)

		// Booking routes (protected)
		bookings := v1.Group("/bookings")
		bookings.Use(middleware.AuthMiddleware(jwtService))
		{
			bookings.GET("", bookingHandler.ListBookings)
			bookings.GET("/:id", bookingHandler.GetBooking)
		}

		// Damage report routes (protected)
		reports := v1.Group("/reports")
		reports.Use(middleware.AuthMiddleware(jwtService))
		{
			reports.POST("", reportHandler.CreateReport)
			reports.GET("", reportHandler.ListReports)
		}

		// Staff dashboard notifications (protected, staff only)
		notifications := v1.Group("/notifications")
		notifications.Use(middleware.AuthMiddleware(jwtService), middleware.RequireStaff())
		{
			notifications.GET("", notificationHandler.ListNotifications)
			notifications.POST("/:id/read", notificationHandler.MarkRead)
		}

		// Payment provider callbacks (authenticated by signature, not JWT)
		v1.POST("/webhooks/stripe", webhookHandler.HandleStripe)
	}

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Infof("Server starting on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Errorf("Server forced to shutdown: %v", err)
	}

	logger.Info("Server exited successfully")
}

// requestLogger middleware for logging HTTP requests
func requestLogger(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)

		fields := logrus.Fields{
			"status":     c.Writer.Status(),
			"method":     c.Request.Method,
			"path":       path,
			"query":      query,
			"ip":         c.ClientIP(),
			"latency_ms": latency.Milliseconds(),
			"user_agent": c.Request.UserAgent(),
		}

		if userID, exists := c.Get(middleware.ContextUserID); exists {
			fields["user_id"] = userID
		}

		entry := logger.WithFields(fields)

		if len(c.Errors) > 0 {
			for i, err := range c.Errors {
				entry = entry.WithField(fmt.Sprintf("error_%d", i), err.Error())
			}
			entry.Error("Request failed with errors")
		} else {
			status := c.Writer.Status()
			if status >= 500 {
				entry.Error("Request completed with server error")
			} else if status >= 400 {
				entry.Warn("Request completed with client error")
			} else {
				entry.Info("Request completed successfully")
			}
		}
	}
}

// healthCheckHandler returns a health check endpoint
func healthCheckHandler(db database.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unhealthy",
				"database": "unhealthy",
				"error":    err.Error(),
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"database":  "healthy",
			"version":   version,
			"timestamp": time.Now().Unix(),
		})
	}
}
