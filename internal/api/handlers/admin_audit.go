package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/playmatatu/poolsim/internal/admin"
)

// GetAdminAuditLogs returns paginated audit log entries
func GetAdminAuditLogs(db *sqlx.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if db == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Audit log requires a database"})
			return
		}
		limit := queryInt(c.Query("limit"), 25, 200)
		offset := queryInt(c.Query("offset"), 0, 1<<20)

		logs, err := admin.GetAdminAuditLogs(db, limit, offset)
		if err != nil {
			log.Printf("[ADMIN] Failed to fetch audit logs: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch audit logs"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"logs": logs, "limit": limit, "offset": offset})
	}
}
