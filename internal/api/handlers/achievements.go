package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/playmatatu/poolsim/internal/achievements"
)

// GetAchievements returns the full catalogue with a profile's unlock state.
func GetAchievements(store achievements.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		profileID := normalizeProfileID(c.Param("profile"))
		if profileID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid profile id"})
			return
		}

		var saved []achievements.Record
		if store != nil {
			recs, err := store.Load(c.Request.Context(), profileID)
			if err != nil {
				log.Printf("[ACH] Failed to load achievements for %s: %v", profileID, err)
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load achievements"})
				return
			}
			saved = recs
		}

		list := achievements.Merge(saved)
		unlocked := 0
		for _, a := range list {
			if a.Unlocked {
				unlocked++
			}
		}
		c.JSON(http.StatusOK, gin.H{
			"profile_id":   profileID,
			"achievements": list,
			"unlocked":     unlocked,
			"total":        len(list),
		})
	}
}
