package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/playmatatu/nineball/internal/game"
	"github.com/playmatatu/nineball/internal/middleware"
	"github.com/playmatatu/nineball/internal/models"
)

type liveMatch struct {
	ID            string           `json:"id"`
	Status        game.MatchStatus `json:"status"`
	CurrentPlayer int              `json:"current_player"`
	Turn          int              `json:"turn"`
	Winner        int              `json:"winner,omitempty"`
	CreatedAt     string           `json:"created_at"`
	LastActivity  string           `json:"last_activity"`
}

func adminPhone(c *gin.Context) string {
	if v, ok := c.Get(middleware.AdminContextKey); ok {
		if acc, ok := v.(*models.AdminAccount); ok {
			return acc.Phone
		}
	}
	return ""
}

// AdminListMatches returns every live match, oldest first.
func AdminListMatches(mm *game.MatchManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		rows := []liveMatch{}
		for _, m := range mm.List() {
			snap := m.Snapshot()
			rows = append(rows, liveMatch{
				ID:            m.ID,
				Status:        snap.Status,
				CurrentPlayer: snap.CurrentPlayer,
				Turn:          snap.Turn,
				Winner:        snap.Winner,
				CreatedAt:     m.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
				LastActivity:  m.LastActivity().UTC().Format("2006-01-02T15:04:05Z"),
			})
		}
		c.JSON(http.StatusOK, gin.H{"matches": rows, "total": len(rows)})
	}
}

// AdminMatchAction applies start, pause, resume or restart to a live match.
func AdminMatchAction(mm *game.MatchManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")
		action := strings.ToLower(c.Param("action"))

		m, err := mm.Get(id)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "match not found"})
			return
		}

		var ok bool
		switch action {
		case "start":
			ok = m.Start()
		case "pause":
			ok = m.Pause()
		case "resume":
			ok = m.Resume()
		case "restart":
			m.Restart()
			ok = true
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown action"})
			return
		}
		if !ok {
			c.JSON(http.StatusConflict, gin.H{"error": action + " not allowed while " + string(m.Status())})
			return
		}

		slog.Info("admin match action", "component", "admin", "admin", adminPhone(c), "match_id", id, "action", action)
		mm.TouchActivity(c.Request.Context(), id)
		c.JSON(http.StatusOK, m.Snapshot())
	}
}

// AdminDeleteMatch removes a live match.
func AdminDeleteMatch(mm *game.MatchManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")
		if err := removeMatch(c.Request.Context(), mm, id); err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "match not found"})
			return
		}
		slog.Info("admin removed match", "component", "admin", "admin", adminPhone(c), "match_id", id)
		c.JSON(http.StatusOK, gin.H{"removed": id})
	}
}

// AdminMatchHistory returns stored matches with optional status filter
func AdminMatchHistory(mm *game.MatchManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		status := strings.ToUpper(c.DefaultQuery("status", ""))
		limit := queryInt(c, "limit", 25, 1, 200)
		offset := queryInt(c, "offset", 0, 0, 1<<30)

		records, err := mm.MatchHistory(c.Request.Context(), status, limit, offset)
		if errors.Is(err, game.ErrNoDatabase) {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
			return
		}
		if err != nil {
			slog.Error("failed to list match history", "component", "admin", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list matches"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"matches": records, "limit": limit, "offset": offset})
	}
}

// AdminMatchTurns returns the stored shots of one match.
func AdminMatchTurns(mm *game.MatchManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		turns, err := mm.MatchTurns(c.Request.Context(), c.Param("id"))
		if errors.Is(err, game.ErrNoDatabase) {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
			return
		}
		if err != nil {
			slog.Error("failed to list turns", "component", "admin", "match_id", c.Param("id"), "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list turns"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"turns": turns})
	}
}
