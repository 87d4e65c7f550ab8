package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/playmatatu/poolsim/internal/achievements"
	"github.com/playmatatu/poolsim/internal/config"
	"github.com/playmatatu/poolsim/internal/game"
)

// GetConfig returns the values a client needs to draw and drive a table
func GetConfig(cfg *config.Config, gm *game.GameManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"table":                gm.Tuning(),
			"tick_rate":            cfg.TickRate,
			"session_idle_minutes": cfg.SessionIdleMinutes,
			"modes":                []game.PlayerMode{game.OnePlayer, game.TwoPlayer},
			"difficulties":         []game.Difficulty{game.Easy, game.Hard},
			"achievements":         achievements.Catalogue(),
		})
	}
}
