package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/playmatatu/nineball/internal/config"
	"github.com/playmatatu/nineball/internal/game"
)

// GetConfig returns the table profile and timing the frontend renders with
func GetConfig(cfg *config.Config, mm *game.MatchManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"tick_rate":  cfg.TickRate,
			"frame_rate": cfg.FrameRate,
			"profile":    mm.Profile(),
			"table":      game.NewNineBallTable(mm.Profile()),
		})
	}
}
