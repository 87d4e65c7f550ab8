package middleware

import (
	"log"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/playmatatu/poolsim/internal/config"
)

var devOrigins = []string{
	"http://localhost:5173", // Vite dev server
	"http://127.0.0.1:5173",
	"http://localhost:3000",
}

// allowedOrigins lists the browser origins that may call the API.
func allowedOrigins(cfg *config.Config) []string {
	var origins []string
	if !cfg.IsProduction() {
		origins = append(origins, devOrigins...)
	}
	if cfg.FrontendURL != "" {
		origins = append(origins, strings.TrimRight(cfg.FrontendURL, "/"))
	}
	return origins
}

// CORSMiddleware returns a CORS middleware configured for the environment
func CORSMiddleware(cfg *config.Config) gin.HandlerFunc {
	origins := allowedOrigins(cfg)
	log.Printf("[CORS] Environment: %s, allowed origins: %v", cfg.Environment, origins)

	corsConfig := cors.Config{
		AllowMethods: []string{
			"GET", "POST", "PUT", "DELETE", "OPTIONS",
		},
		AllowHeaders: []string{
			"Origin", "Content-Length", "Content-Type", "Authorization",
			"X-Admin-Name", "X-Admin-Token", "Accept", "Cache-Control",
			"X-Requested-With",
		},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}

	if len(origins) == 0 {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = origins
		corsConfig.AllowCredentials = true
	}

	return cors.New(corsConfig)
}

// WebSocketCORSCheck validates WebSocket upgrade origins. Requests without an
// Origin header come from non-browser clients and are let through; the
// session token still guards them.
func WebSocketCORSCheck(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		if strings.ToLower(c.GetHeader("Upgrade")) != "websocket" {
			c.Next()
			return
		}

		origin := c.GetHeader("Origin")
		if origin == "" {
			c.Next()
			return
		}

		origins := allowedOrigins(cfg)
		allowed := len(origins) == 0
		if !cfg.IsProduction() {
			allowed = allowed || strings.HasPrefix(origin, "http://localhost:") ||
				strings.HasPrefix(origin, "http://127.0.0.1:")
		}
		for _, o := range origins {
			if origin == o {
				allowed = true
				break
			}
		}

		if !allowed {
			c.JSON(403, gin.H{"error": "WebSocket origin not allowed"})
			c.Abort()
			return
		}

		c.Next()
	}
}
