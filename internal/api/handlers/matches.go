package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/playmatatu/nineball/internal/auth"
	"github.com/playmatatu/nineball/internal/config"
	"github.com/playmatatu/nineball/internal/game"
)

func seatTTL(cfg *config.Config) time.Duration {
	if cfg.SeatTokenTTLMinutes <= 0 {
		return 3 * time.Hour
	}
	return time.Duration(cfg.SeatTokenTTLMinutes) * time.Minute
}

// CreateMatch racks a new match and hands out one token per seat.
func CreateMatch(mm *game.MatchManager, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		m := mm.Create()

		tokens := make(map[string]string, 2)
		for seat, key := range map[int]string{1: "player1", 2: "player2"} {
			tok, err := auth.IssueSeatToken(cfg.JWTSecret, m.ID, seat, seatTTL(cfg))
			if err != nil {
				slog.Error("failed to issue seat token", "component", "api", "match_id", m.ID, "error", err)
				mm.Remove(m.ID)
				c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create match"})
				return
			}
			tokens[key] = tok
		}

		ctx := c.Request.Context()
		if err := mm.InsertMatch(ctx, m); err != nil {
			slog.Error("failed to store match", "component", "api", "match_id", m.ID, "error", err)
		}
		snap := m.Snapshot()
		if err := mm.SaveSnapshot(ctx, snap); err != nil {
			slog.Warn("failed to cache snapshot", "component", "api", "match_id", m.ID, "error", err)
		}
		mm.TouchActivity(ctx, m.ID)

		c.Header("X-Match-ID", m.ID)
		c.JSON(http.StatusCreated, gin.H{
			"match_id":    m.ID,
			"seat_tokens": tokens,
			"ws_url":      "/api/v1/matches/" + m.ID + "/ws",
			"state":       snap,
		})
	}
}

// GetMatch returns the live snapshot, falling back to the cached one when the
// match lives on another instance.
func GetMatch(mm *game.MatchManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")
		if m, err := mm.Get(id); err == nil {
			c.JSON(http.StatusOK, m.Snapshot())
			return
		}

		snap, err := mm.CachedSnapshot(c.Request.Context(), id)
		if errors.Is(err, game.ErrMatchNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "match not found"})
			return
		}
		if err != nil {
			slog.Error("failed to read cached snapshot", "component", "api", "match_id", id, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load match"})
			return
		}
		c.JSON(http.StatusOK, snap)
	}
}

// removeMatch drops a match from memory and the snapshot cache.
func removeMatch(ctx context.Context, mm *game.MatchManager, id string) error {
	if err := mm.Remove(id); err != nil {
		return err
	}
	if err := mm.DeleteSnapshot(ctx, id); err != nil {
		slog.Warn("failed to delete cached snapshot", "component", "api", "match_id", id, "error", err)
	}
	return nil
}
