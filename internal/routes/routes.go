// Package routes wires the handlers, middleware and CORS policy onto the
// gin engine.
package routes

import (
	"net/http"
	"time"

	"civicreport-be/internal/config"
	"civicreport-be/internal/handlers"
	"civicreport-be/internal/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Deps collects everything the router needs.
type Deps struct {
	Config      *config.Config
	Issues      *handlers.IssueHandler
	Auth        *handlers.AuthHandler
	RateLimiter *middleware.IssueRateLimiter
	Log         *zap.Logger
}

// New builds the gin engine with all routes registered.
func New(d Deps) *gin.Engine {
	if d.Config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.RequestLogger(d.Log))

	if len(d.Config.CORSOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     d.Config.CORSOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	secret := d.Config.JWTSecret

	authGroup := r.Group("/api/auth")
	{
		authGroup.POST("/register", d.Auth.Register)
		authGroup.POST("/login", d.Auth.Login)
		authGroup.POST("/logout", d.Auth.Logout)
		authGroup.GET("/me", middleware.RequireAuth(secret), d.Auth.Me)
	}

	users := r.Group("/api/users")
	{
		users.PATCH("/:id/role", middleware.RequireAuth(secret), middleware.RequireAdmin(), d.Auth.SetRole)
	}

	issues := r.Group("/api/issues")
	{
		issues.GET("", middleware.OptionalAuth(secret), d.Issues.List)
		issues.GET("/nearby", middleware.OptionalAuth(secret), d.Issues.Nearby)
		issues.GET("/my", middleware.RequireAuth(secret), d.Issues.Mine)
		issues.GET("/admin/overview", middleware.RequireAuth(secret), middleware.RequireAdmin(), d.Issues.Overview)
		issues.GET("/:id", middleware.OptionalAuth(secret), d.Issues.Get)

		issues.POST("", middleware.RequireAuth(secret), d.RateLimiter.Middleware(), d.Issues.Create)
		issues.PUT("/:id", middleware.RequireAuth(secret), d.Issues.Update)
		issues.DELETE("/:id", middleware.RequireAuth(secret), d.Issues.Delete)
		issues.PATCH("/:id/status", middleware.RequireAuth(secret), middleware.RequireAdmin(), d.Issues.ChangeStatus)
		issues.POST("/:id/vote", middleware.RequireAuth(secret), d.Issues.Vote)
	}

	return r
}
