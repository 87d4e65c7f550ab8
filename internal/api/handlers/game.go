package handlers

import (
	"errors"
	"log"
	"net/http"
	"net/url"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/playmatatu/poolsim/internal/auth"
	"github.com/playmatatu/poolsim/internal/config"
	"github.com/playmatatu/poolsim/internal/game"
)

// CreateSession opens a table for a profile and hands back the token its
// websocket must present.
func CreateSession(gm *game.GameManager, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			ProfileID  string          `json:"profile_id"`
			Mode       game.PlayerMode `json:"mode"`
			Difficulty game.Difficulty `json:"difficulty"`
		}
		if c.Request.ContentLength > 0 {
			if err := c.ShouldBindJSON(&req); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
				return
			}
		}

		profileID := generateGuestID()
		if req.ProfileID != "" {
			profileID = normalizeProfileID(req.ProfileID)
			if profileID == "" {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid profile id"})
				return
			}
		}
		if req.Mode == "" {
			req.Mode = game.OnePlayer
		}
		if req.Difficulty == "" {
			req.Difficulty = game.Easy
		}
		if !req.Mode.Valid() || !req.Difficulty.Valid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid mode or difficulty"})
			return
		}

		s, err := gm.CreateSession(profileID, req.Mode, req.Difficulty)
		if err != nil {
			if errors.Is(err, game.ErrTooManySessions) {
				c.JSON(http.StatusServiceUnavailable, gin.H{"error": "No tables available, try again later"})
				return
			}
			log.Printf("[SESSION] Failed to create session for %s: %v", profileID, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create session"})
			return
		}

		ttl := time.Duration(cfg.SessionTokenMin) * time.Minute
		token, err := auth.IssueSessionToken(cfg.JWTSecret, s.ID, profileID, ttl)
		if err != nil {
			log.Printf("[SESSION] Failed to sign token for %s: %v", s.ID, err)
			gm.EndSession(s.ID)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create session"})
			return
		}

		c.JSON(http.StatusCreated, gin.H{
			"session_id": s.ID,
			"profile_id": profileID,
			"token":      token,
			"expires_in": int(ttl.Seconds()),
			"ws_url":     "/api/v1/sessions/" + s.ID + "/ws?token=" + url.QueryEscape(token),
			"state":      s.Snapshot(),
		})
	}
}

// GetSessionState returns the latest frame of a live session, or the cached
// last frame of one that has ended.
func GetSessionState(gm *game.GameManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		snap, err := gm.FindSnapshot(c.Request.Context(), c.Param("id"))
		if err != nil {
			if errors.Is(err, game.ErrSessionNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
				return
			}
			log.Printf("[SESSION] Failed to load state for %s: %v", c.Param("id"), err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load session"})
			return
		}
		c.JSON(http.StatusOK, snap)
	}
}

// EndSession closes a table. The caller must hold the session's token.
func EndSession(gm *game.GameManager, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")
		token := bearerToken(c.GetHeader("Authorization"), c.Query("token"))
		claims, err := auth.ParseSessionToken(cfg.JWTSecret, token)
		if err != nil || claims.SessionID != id {
			c.JSON(http.StatusForbidden, gin.H{"error": "Invalid session token"})
			return
		}

		if err := gm.EndSession(id); err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"ok": true})
	}
}

// GetProfileResults lists a profile's recent finished games.
func GetProfileResults(gm *game.GameManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		profileID := normalizeProfileID(c.Param("profile"))
		if profileID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid profile id"})
			return
		}
		limit := queryInt(c.Query("limit"), 20, 100)

		results, err := gm.RecentResults(c.Request.Context(), profileID, limit)
		if err != nil {
			log.Printf("[DB] Failed to fetch results for %s: %v", profileID, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch results"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"profile_id": profileID, "results": results})
	}
}
