package handlers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/Kiran6976/Houserent-Frontend-sub000/internal/booking"
	"github.com/Kiran6976/Houserent-Frontend-sub000/internal/config"
	"github.com/Kiran6976/Houserent-Frontend-sub000/internal/guard"
	"github.com/Kiran6976/Houserent-Frontend-sub000/internal/middleware"
	"github.com/Kiran6976/Houserent-Frontend-sub000/internal/models"
)

// Pinger reports whether a dependency is reachable
type Pinger interface {
	PingContext(ctx context.Context) error
}

// RouterDeps wires the router
type RouterDeps struct {
	Sessions   *middleware.SessionManager
	Registry   *booking.Registry
	Workspaces *Workspaces
	Limiter    RateLimiter // optional
	DB         Pinger      // optional, reported by /health
	CORS       config.CORSConfig
	Logger     *logrus.Logger
	Version    string
}

var (
	anyUser          = guard.Requirement{}
	tenantOnly       = guard.Requirement{Role: models.RoleTenant}
	landlordOnly     = guard.Requirement{Role: models.RoleLandlord}
	verifiedLandlord = guard.Requirement{Role: models.RoleLandlord, RequireVerifiedLandlord: true}
	adminOnly        = guard.Requirement{Role: models.RoleAdmin}
)

// NewRouter builds the web front-end's routes. Signing out anywhere closes
// the session's booking flows and drops its view state.
func NewRouter(deps RouterDeps) *gin.Engine {
	deps.Sessions.OnLogout(func(sessionID string) {
		if n := deps.Registry.CloseSession(sessionID); n > 0 {
			deps.Logger.WithFields(logrus.Fields{
				"session_id": sessionID,
				"flows":      n,
			}).Info("Closed booking flows on logout")
		}
		deps.Workspaces.Drop(sessionID)
	})

	authHandler := NewAuthHandler(deps.Sessions, deps.Limiter, deps.Logger)
	houseHandler := NewHouseHandler(deps.Workspaces, deps.Logger)
	bookingHandler := NewBookingHandler(deps.Workspaces, deps.Registry, deps.Logger)
	rentHandler := NewRentHandler(deps.Workspaces, deps.Logger)
	visitHandler := NewVisitHandler(deps.Workspaces, deps.Logger)
	supportHandler := NewSupportHandler(deps.Workspaces, deps.Logger)
	payoutHandler := NewPayoutHandler(deps.Workspaces, deps.Logger)
	adminHandler := NewAdminHandler(deps.Workspaces, deps.Logger)

	router := gin.New()
	router.MaxMultipartMemory = maxUploadMemory

	// Middleware
	router.Use(gin.Recovery())
	router.Use(requestLogger(deps.Logger))

	if len(deps.CORS.AllowedOrigins) > 0 {
		router.Use(cors.New(cors.Config{
			AllowOrigins:     deps.CORS.AllowedOrigins,
			AllowMethods:     deps.CORS.AllowedMethods,
			AllowHeaders:     deps.CORS.AllowedHeaders,
			ExposeHeaders:    []string{"Content-Length"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	// Health check endpoint
	router.GET("/health", healthCheckHandler(deps.DB, deps.Version))

	router.Use(deps.Sessions.Handler())

	// Public routes
	router.GET("/session", authHandler.Session)
	router.GET("/toasts", authHandler.Toasts)
	router.GET("/houses", houseHandler.Browse)
	router.GET("/houses/:id", houseHandler.Detail)

	router.POST("/login", authHandler.Login)
	router.POST("/register", authHandler.Register)
	router.POST("/verify-otp", authHandler.VerifyOTP)
	router.POST("/resend-otp", authHandler.ResendOTP)
	router.POST("/forgot-password", authHandler.ForgotPassword)
	router.POST("/reset-password", authHandler.ResetPassword)
	router.POST("/logout", authHandler.Logout)

	// Any signed-in user
	account := router.Group("", middleware.Require(anyUser))
	{
		account.GET("/me", authHandler.Me)
		account.GET("/account/sessions", authHandler.ListSessions)
		account.DELETE("/account/sessions/:id", authHandler.RevokeSession)
	}

	support := router.Group("/support", middleware.Require(anyUser))
	{
		support.GET("", supportHandler.Load)
		support.GET("/tickets/:id", supportHandler.Select)
		support.POST("/tickets", supportHandler.Create)
		support.POST("/messages", supportHandler.Send)
		support.POST("/attachments", supportHandler.UploadAttachment)
	}

	tenant := router.Group("/tenant", middleware.Require(tenantOnly))
	{
		tenant.GET("/browse", houseHandler.Browse)
		tenant.POST("/houses/:id/book", bookingHandler.Book)
		tenant.GET("/bookings", bookingHandler.MyBookings)

		flows := tenant.Group("/booking-flows")
		flows.GET("", bookingHandler.List)
		flows.GET("/:flowId", bookingHandler.Get)
		flows.GET("/:flowId/events", bookingHandler.Events)
		flows.GET("/:flowId/qr.png", bookingHandler.QRCode)
		flows.POST("/:flowId/mark-paid", bookingHandler.MarkPaid)
		flows.POST("/:flowId/check", bookingHandler.Check)
		flows.POST("/:flowId/cancel", bookingHandler.Cancel)
		flows.DELETE("/:flowId", bookingHandler.Close)

		tenant.GET("/rent", rentHandler.Overview)
		tenant.POST("/rent/initiate", rentHandler.Initiate)
		tenant.POST("/rent/proof", rentHandler.UploadProof)
		tenant.POST("/rent/submit", rentHandler.SubmitProof)
		tenant.DELETE("/rent", rentHandler.Close)

		tenant.GET("/visits", visitHandler.Mine)
		tenant.POST("/visits", visitHandler.Request)
		tenant.POST("/visits/:id/cancel", visitHandler.Cancel)
	}

	landlord := router.Group("/landlord", middleware.Require(landlordOnly))
	{
		landlord.GET("/dashboard", houseHandler.Dashboard)

		// Listing, rent and visit management need an admin-verified account
		verified := landlord.Group("", middleware.Require(verifiedLandlord))
		verified.GET("/houses", houseHandler.Mine)
		verified.POST("/houses", houseHandler.Create)
		verified.PUT("/houses/:id", houseHandler.Update)
		verified.DELETE("/houses/:id", houseHandler.Delete)
		verified.POST("/uploads/images", houseHandler.UploadImages)
		verified.POST("/uploads/electricity-bill", houseHandler.UploadElectricityBill)
		verified.POST("/payout-account", payoutHandler.CreateAccount)

		verified.GET("/rent", rentHandler.Folders)
		verified.GET("/rent/tenants/:tenantId", rentHandler.Tenant)
		verified.POST("/rent/payments/:id/approve", rentHandler.Approve)
		verified.POST("/rent/payments/:id/reject", rentHandler.Reject)

		verified.GET("/visits", visitHandler.ForLandlord)
		verified.POST("/visits/:id/accept", visitHandler.Accept)
		verified.POST("/visits/:id/reject", visitHandler.Reject)
	}

	adminGroup := router.Group("/admin")
	{
		adminGroup.POST("", authHandler.AdminLogin)

		protected := adminGroup.Group("", middleware.Require(adminOnly))
		protected.GET("/dashboard", adminHandler.Dashboard)

		protected.GET("/users", adminHandler.Users)
		protected.POST("/users/:id/verify", adminHandler.VerifyUser)
		protected.POST("/users/:id/unverify", adminHandler.UnverifyUser)
		protected.DELETE("/users/:id", adminHandler.DeleteUser)

		protected.GET("/houses", adminHandler.Houses)
		protected.POST("/houses/:id/approve", adminHandler.ApproveHouse)
		protected.POST("/houses/:id/reject", adminHandler.RejectHouse)
		protected.DELETE("/houses/:id", adminHandler.DeleteHouse)

		protected.GET("/payments", adminHandler.Payments)
		protected.POST("/payments/:id/approve", adminHandler.ApprovePayment)
		protected.POST("/payments/:id/reject", adminHandler.RejectPayment)
		protected.GET("/payments/:id/upi", adminHandler.PayoutLink)
		protected.POST("/payments/:id/transferred", adminHandler.MarkTransferred)

		protected.GET("/support", adminHandler.Tickets)
		protected.POST("/support/:id/reply", adminHandler.ReplyTicket)
		protected.POST("/support/:id/status", adminHandler.SetTicketStatus)
	}

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{
			"view":    "not_found",
			"error":   "not_found",
			"message": "Page not found",
			"code":    "NOT_FOUND",
		})
	})

	return router
}

// requestLogger middleware for logging HTTP requests
func requestLogger(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		fields := logrus.Fields{
			"status":     c.Writer.Status(),
			"method":     c.Request.Method,
			"path":       path,
			"query":      query,
			"ip":         c.ClientIP(),
			"latency_ms": time.Since(start).Milliseconds(),
			"user_agent": c.Request.UserAgent(),
		}

		// Session presence only, never the cookie value
		fields["has_auth"] = false
		if ws, ok := middleware.GetWebSession(c); ok {
			fields["session_id"] = ws.ID
			if u := ws.Store.User(); u != nil && ws.Store.IsAuthenticated() {
				fields["has_auth"] = true
				fields["user_id"] = u.ID
				fields["role"] = u.Role
			}
		}

		entry := logger.WithFields(fields)

		if len(c.Errors) > 0 {
			for i, err := range c.Errors {
				entry = entry.WithField(fmt.Sprintf("error_%d", i), err.Error())
			}
			entry.Error("Request failed with errors")
			return
		}

		status := c.Writer.Status()
		if status >= 500 {
			entry.Error("Request completed with server error")
		} else if status >= 400 {
			entry.Warn("Request completed with client error")
		} else {
			entry.Debug("Request completed successfully")
		}
	}
}

// healthCheckHandler returns a health check endpoint
func healthCheckHandler(db Pinger, version string) gin.HandlerFunc {
	return func(c *gin.Context) {
		dbStatus := "not_configured"
		if db != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			if err := db.PingContext(ctx); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{
					"status":   "unhealthy",
					"database": "unhealthy",
					"error":    err.Error(),
				})
				return
			}
			dbStatus = "healthy"
		}

		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"database":  dbStatus,
			"version":   version,
			"timestamp": time.Now().Unix(),
		})
	}
}
