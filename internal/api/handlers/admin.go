package handlers

import (
	"log"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/playmatatu/poolsim/internal/achievements"
	"github.com/playmatatu/poolsim/internal/admin"
	"github.com/playmatatu/poolsim/internal/config"
	"github.com/playmatatu/poolsim/internal/game"
)

const (
	adminNameHeader  = "X-Admin-Name"
	adminTokenHeader = "X-Admin-Token"
)

// AdminAuthMiddleware checks the admin name and token headers. Accounts in
// the database are tried first; without a database the single ADMIN_TOKEN_HASH
// from the environment is used.
func AdminAuthMiddleware(db *sqlx.DB, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		name := strings.TrimSpace(c.GetHeader(adminNameHeader))
		token := c.GetHeader(adminTokenHeader)
		if token == "" {
			token = bearerToken(c.GetHeader("Authorization"), "")
		}
		ip := c.ClientIP()

		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
			c.Abort()
			return
		}

		if db != nil && name != "" {
			acc, err := admin.ValidateAdminToken(db, name, token, ip)
			if err != nil {
				admin.LogAdminAction(db, name, ip, c.FullPath(), "auth", nil, false)
				c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
				c.Abort()
				return
			}
			c.Set("admin_name", acc.Name)
			c.Next()
			return
		}

		if !admin.VerifyAdminToken(cfg.AdminTokenHash, token) || !admin.IPAllowed(cfg.AdminAllowedIPs, ip) {
			log.Printf("[ADMIN] Rejected admin request from %s", ip)
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
			c.Abort()
			return
		}
		if name == "" {
			name = "admin"
		}
		c.Set("admin_name", name)
		c.Next()
	}
}

// ResetAchievements clears every unlock a profile has.
func ResetAchievements(db *sqlx.DB, store achievements.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		adminName := c.GetString("admin_name")
		profileID := normalizeProfileID(c.Param("profile"))
		if profileID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid profile id"})
			return
		}
		route := "/api/v1/admin/achievements/" + profileID
		details := map[string]interface{}{"profile_id": profileID}

		if store == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Achievements are not persisted"})
			return
		}
		if err := store.Reset(c.Request.Context(), profileID); err != nil {
			log.Printf("[ADMIN] Failed to reset achievements for %s: %v", profileID, err)
			admin.LogAdminAction(db, adminName, c.ClientIP(), route, "reset_achievements", details, false)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to reset achievements"})
			return
		}

		admin.LogAdminAction(db, adminName, c.ClientIP(), route, "reset_achievements", details, true)
		c.JSON(http.StatusOK, gin.H{"ok": true, "profile_id": profileID})
	}
}

type adminSession struct {
	ID           string          `json:"id"`
	ProfileID    string          `json:"profile_id"`
	Status       game.GameStatus `json:"status"`
	Phase        game.Phase      `json:"phase"`
	Mode         game.PlayerMode `json:"mode"`
	Difficulty   game.Difficulty `json:"difficulty"`
	CreatedAt    string          `json:"created_at"`
	LastActivity string          `json:"last_activity"`
}

// GetAdminSessions lists live sessions, most recently active first.
func GetAdminSessions(gm *game.GameManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessions := gm.Sessions()
		sort.Slice(sessions, func(i, j int) bool {
			return sessions[i].LastActivity().After(sessions[j].LastActivity())
		})

		resp := make([]adminSession, 0, len(sessions))
		for _, s := range sessions {
			snap := s.Snapshot()
			resp = append(resp, adminSession{
				ID:           s.ID,
				ProfileID:    s.ProfileID,
				Status:       snap.Status,
				Phase:        snap.Phase,
				Mode:         snap.Mode,
				Difficulty:   snap.Difficulty,
				CreatedAt:    s.CreatedAt.Format(time.RFC3339),
				LastActivity: s.LastActivity().Format(time.RFC3339),
			})
		}
		c.JSON(http.StatusOK, gin.H{"sessions": resp, "total": len(resp)})
	}
}

// EndAdminSession force-closes a live session.
func EndAdminSession(db *sqlx.DB, gm *game.GameManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		adminName := c.GetString("admin_name")
		id := c.Param("id")
		route := "/api/v1/admin/sessions/" + id

		if err := gm.EndSession(id); err != nil {
			admin.LogAdminAction(db, adminName, c.ClientIP(), route, "end_session", map[string]interface{}{"session_id": id}, false)
			c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
			return
		}
		admin.LogAdminAction(db, adminName, c.ClientIP(), route, "end_session", map[string]interface{}{"session_id": id}, true)
		c.JSON(http.StatusOK, gin.H{"ok": true})
	}
}
