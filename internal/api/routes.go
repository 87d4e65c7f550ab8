package api

import (
	"log"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/playmatatu/poolsim/internal/achievements"
	"github.com/playmatatu/poolsim/internal/api/handlers"
	"github.com/playmatatu/poolsim/internal/config"
	"github.com/playmatatu/poolsim/internal/game"
	"github.com/playmatatu/poolsim/internal/middleware"
	"github.com/playmatatu/poolsim/internal/ws"
	"github.com/redis/go-redis/v9"
)

// Deps are the services the routes are wired to. DB and Redis may be nil.
type Deps struct {
	DB           *sqlx.DB
	Redis        *redis.Client
	Config       *config.Config
	Manager      *game.GameManager
	Achievements achievements.Store
	WS           *ws.Server
}

// SetupRoutes configures all API routes
func SetupRoutes(router *gin.Engine, d Deps) {
	cfg := d.Config
	router.Use(middleware.CORSMiddleware(cfg))

	if !cfg.IsProduction() {
		router.Use(func(c *gin.Context) {
			c.Header("Cache-Control", "no-store, no-cache, must-revalidate, max-age=0")
			c.Header("Pragma", "no-cache")
			c.Header("Expires", "0")
			c.Next()
		})
		log.Println("[DEV MODE] No-cache headers enabled for all routes")
	}

	var hub *ws.Hub
	if d.WS != nil {
		hub = d.WS.Hub
	}

	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", handlers.HealthCheck(d.DB, d.Redis, d.Manager, hub))
		v1.GET("/config", handlers.GetConfig(cfg, d.Manager))

		sessions := v1.Group("/sessions")
		{
			sessions.POST("", handlers.CreateSession(d.Manager, cfg))
			sessions.GET("/:id", handlers.GetSessionState(d.Manager))
			sessions.DELETE("/:id", handlers.EndSession(d.Manager, cfg))
			if d.WS != nil {
				sessions.GET("/:id/ws", middleware.WebSocketCORSCheck(cfg), handlers.HandleGameWebSocket(d.WS))
			}
		}

		v1.GET("/profiles/:profile/results", handlers.GetProfileResults(d.Manager))
		v1.GET("/achievements/:profile", handlers.GetAchievements(d.Achievements))

		adminGroup := v1.Group("/admin", handlers.AdminAuthMiddleware(d.DB, cfg))
		{
			adminGroup.GET("/sessions", handlers.GetAdminSessions(d.Manager))
			adminGroup.DELETE("/sessions/:id", handlers.EndAdminSession(d.DB, d.Manager))
			adminGroup.DELETE("/achievements/:profile", handlers.ResetAchievements(d.DB, d.Achievements))
			adminGroup.GET("/audit", handlers.GetAdminAuditLogs(d.DB))
			adminGroup.GET("/config", handlers.GetAdminRuntimeConfig(d.DB))
			adminGroup.PUT("/config/:key", handlers.UpdateAdminRuntimeConfig(d.DB, cfg, d.Manager))
		}
	}
}
