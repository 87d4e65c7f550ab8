package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/playmatatu/poolsim/internal/admin"
	"github.com/playmatatu/poolsim/internal/config"
	"github.com/playmatatu/poolsim/internal/game"
)

// GetAdminRuntimeConfig returns all runtime config entries
func GetAdminRuntimeConfig(db *sqlx.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if db == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Runtime config requires a database"})
			return
		}
		configs, err := admin.GetAllRuntimeConfig(db)
		if err != nil {
			log.Printf("[ADMIN] Failed to fetch runtime config: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch config"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"configs": configs})
	}
}

// UpdateAdminRuntimeConfig updates a single runtime config value. The session
// limit applies at once; idle timeout and tick rate on the next start.
func UpdateAdminRuntimeConfig(db *sqlx.DB, cfg *config.Config, gm *game.GameManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		if db == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Runtime config requires a database"})
			return
		}
		adminName := c.GetString("admin_name")
		key := c.Param("key")

		var req struct {
			Value string `json:"value" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Value is required"})
			return
		}

		details := map[string]interface{}{"key": key, "value": req.Value}
		if err := admin.UpdateRuntimeConfigValue(db, key, req.Value, adminName); err != nil {
			log.Printf("[ADMIN] Failed to update config %s: %v", key, err)
			admin.LogAdminAction(db, adminName, c.ClientIP(), "/api/v1/admin/config/"+key, "update_config", details, false)
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		// Re-apply runtime config to in-memory config
		if err := admin.ApplyRuntimeConfigToConfig(db, cfg); err != nil {
			log.Printf("[ADMIN] Warning: failed to apply runtime config: %v", err)
		}
		gm.SetMaxSessions(cfg.MaxSessions)

		admin.LogAdminAction(db, adminName, c.ClientIP(), "/api/v1/admin/config/"+key, "update_config", details, true)
		c.JSON(http.StatusOK, gin.H{"ok": true})
	}
}
