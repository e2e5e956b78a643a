package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/bahadirhanceylan58/sivaskirala-sub000/internal/api/handlers"
	"github.com/bahadirhanceylan58/sivaskirala-sub000/internal/api/middleware"
	"github.com/bahadirhanceylan58/sivaskirala-sub000/internal/config"
	"github.com/bahadirhanceylan58/sivaskirala-sub000/internal/services"
)

// SetupRouter configures and returns the main Gin engine.
func SetupRouter(cfg *config.Config, db *mongo.Database, rdb *redis.Client, taskClient handlers.IAsynqClient, settingsSvc services.ISettingsService) *gin.Engine {
	// Initialize services needed by API handlers
	userService := services.NewUserService(db)
	listingService := services.NewListingService(db, cfg)
	bookingService := services.NewBookingService(db, cfg, listingService)
	favoriteService := services.NewFavoriteService(db)
	reviewService := services.NewReviewService(db, listingService)
	moderationService := services.NewModerationService(
		db, cfg, listingService, bookingService, userService, reviewService,
		services.NewMongoAuditLogger(db))

	r := gin.Default()

	// Initialize Middleware
	rateLimiter := middleware.NewRateLimiterMiddleware(cfg, settingsSvc)

	// Apply global middleware first (order matters)
	r.Use(middleware.CORSMiddleware())
	r.Use(rateLimiter.Limit())

	// Initialize handlers
	restUserHandler := handlers.NewRestUserHandler(cfg, userService, taskClient)
	restListingHandler := handlers.NewRestListingHandler(listingService)
	restBookingHandler := handlers.NewRestBookingHandler(bookingService)
	restFavoriteHandler := handlers.NewRestFavoriteHandler(favoriteService, listingService)
	restReviewHandler := handlers.NewRestReviewHandler(reviewService)
	restAdminHandler := handlers.NewRestAdminHandler(
		cfg, moderationService, listingService, bookingService, userService, settingsSvc, taskClient)

	v1 := r.Group("/v1")
	{
		// Public Routes (Rate limiting already applied globally)
		v1.POST("/user/register", restUserHandler.Register)
		v1.POST("/user/login", restUserHandler.Login)
		v1.GET("/user/:id", restUserHandler.GetUserByID)

		v1.GET("/listing", restListingHandler.Browse)
		v1.GET("/listing/:id", restListingHandler.GetListingByID)
		v1.GET("/listing/:id/quote", restListingHandler.Quote)
		v1.GET("/listing/:id/review", restReviewHandler.ListByListing)

		v1.GET("/ping", func(c *gin.Context) {
			c.String(http.StatusOK, "pong")
		})

		// Authenticated Routes
		authRequired := v1.Group("/")
		authRequired.Use(middleware.AuthMiddleware(cfg.JwtSecret))
		{
			authRequired.GET("/me", restUserHandler.Me)
			authRequired.POST("/checkout", restBookingHandler.Checkout)
			authRequired.POST("/listing/:id/review", restReviewHandler.Create)

			authRequired.POST("/my/listing", restListingHandler.CreateListing)
			authRequired.GET("/my/listing", restListingHandler.MyListings)
			authRequired.PATCH("/my/listing/:id", restListingHandler.UpdateListing)
			authRequired.DELETE("/my/listing/:id", restListingHandler.DeleteListing)

			authRequired.GET("/my/booking", restBookingHandler.MyBookings)
			authRequired.GET("/my/booking/:id", restBookingHandler.GetBookingByID)
			authRequired.GET("/my/listing-booking", restBookingHandler.OwnerBookings)

			authRequired.POST("/my/favorite/:listing_id", restFavoriteHandler.Toggle)
			authRequired.GET("/my/favorite", restFavoriteHandler.List)
			authRequired.GET("/my/favorite/:listing_id", restFavoriteHandler.Check)
		}

		// Admin Routes
		adminRequired := v1.Group("/admin")
		adminRequired.Use(middleware.AuthMiddleware(cfg.JwtSecret), middleware.AdminMiddleware())
		{
			adminRequired.GET("/listing/pending", restAdminHandler.PendingListings)
			adminRequired.POST("/listing/:id/approve", restAdminHandler.ApproveListing)
			adminRequired.POST("/listing/:id/reject", restAdminHandler.RejectListing)

			adminRequired.GET("/booking", restAdminHandler.BookingsByStatus)
			adminRequired.POST("/booking/:id/approve", restAdminHandler.ApproveBooking)
			adminRequired.POST("/booking/:id/reject", restAdminHandler.RejectBooking)
			adminRequired.POST("/booking/:id/complete", restAdminHandler.CompleteBooking)

			adminRequired.POST("/user/:id/block", restAdminHandler.BlockUser)
			adminRequired.POST("/user/:id/unblock", restAdminHandler.UnblockUser)
			adminRequired.POST("/user/:id/promote", restAdminHandler.PromoteUser)

			adminRequired.DELETE("/review/:id", restAdminHandler.DeleteReview)

			adminRequired.POST("/migration/owner-field", restAdminHandler.RunOwnerFieldMigration)
			adminRequired.PUT("/settings", restAdminHandler.SetSetting)
		}
	}

	return r
}

// SetupServiceRouter configures and returns the service Gin engine used by
// the test harness. It exposes shutdown and captured-email retrieval; captured
// emails are the ones RedisSender stores when MOCK_SERVICES is enabled.
func SetupServiceRouter(cfg *config.Config, rdb *redis.Client, shutdownChan chan<- struct{}) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	r.POST("/api", func(c *gin.Context) {
		var req struct {
			Method    string          `json:"method"`
			Arguments json.RawMessage `json:"arguments"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid request format"})
			return
		}

		switch req.Method {
		case "shutdown":
			log.Println("Received shutdown command via Service API")
			c.JSON(http.StatusOK, gin.H{"success": true, "result": "Shutdown initiated"})
			select {
			case shutdownChan <- struct{}{}:
			default:
				log.Println("Shutdown channel already signaled or blocked.")
			}
		case "getTestEmail":
			var args []string // Expect ["kind", "email"]
			if err := json.Unmarshal(req.Arguments, &args); err != nil || len(args) != 2 {
				c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid arguments: expected JSON array [kind, email]"})
				return
			}
			redisKey := fmt.Sprintf("mockemail:%s:%s", args[1], args[0])

			// Poll Redis briefly for the key
			var emailJsonData string
			found := false
			ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
			defer cancel()
			for i := 0; i < 10; i++ {
				data, getErr := rdb.Get(ctx, redisKey).Result()
				if getErr == nil {
					emailJsonData = data
					found = true
					rdb.Del(ctx, redisKey) // Delete after fetching
					break
				}
				if getErr != redis.Nil {
					log.Printf("Service API: Error getting key %s from Redis: %v", redisKey, getErr)
					c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Redis error"})
					return
				}
				time.Sleep(200 * time.Millisecond)
			}

			if !found {
				c.JSON(http.StatusNotFound, gin.H{"success": false, "error": fmt.Sprintf("Test email not found in Redis for key %s", redisKey)})
				return
			}

			var emailData map[string]interface{}
			if err := json.Unmarshal([]byte(emailJsonData), &emailData); err != nil {
				log.Printf("Service API: Error unmarshalling email data from key %s: %v", redisKey, err)
				c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to parse stored email data"})
				return
			}
			c.JSON(http.StatusOK, gin.H{"success": true, "data": emailData})

		default:
			c.JSON(http.StatusNotFound, gin.H{"success": false, "error": fmt.Sprintf("Unknown service method: %s", req.Method)})
		}
	})
	return r
}
