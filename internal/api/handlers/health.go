package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/playmatatu/poolsim/internal/game"
	"github.com/playmatatu/poolsim/internal/ws"
	"github.com/redis/go-redis/v9"
)

var startTime = time.Now()

const version = "1.0.0"

// HealthCheck returns server health status. Missing backends are reported as
// "disabled"; an unreachable one turns the status to "degraded".
func HealthCheck(db *sqlx.DB, rdb *redis.Client, gm *game.GameManager, hub *ws.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		status := "ok"
		dbStatus, redisStatus := "disabled", "disabled"
		if db != nil {
			dbStatus = "ok"
			if err := db.PingContext(ctx); err != nil {
				dbStatus, status = "down", "degraded"
			}
		}
		if rdb != nil {
			redisStatus = "ok"
			if err := rdb.Ping(ctx).Err(); err != nil {
				redisStatus, status = "down", "degraded"
			}
		}

		connections := 0
		if hub != nil {
			connections = hub.Connected()
		}

		c.JSON(http.StatusOK, gin.H{
			"status":          status,
			"service":         "poolsim-api",
			"version":         version,
			"uptime":          time.Since(startTime).String(),
			"database":        dbStatus,
			"redis":           redisStatus,
			"active_sessions": gm.ActiveCount(),
			"connections":     connections,
		})
	}
}
