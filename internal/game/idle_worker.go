package game

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// IdlePauseKey is the sorted set of match IDs scored by pause deadline.
	IdlePauseKey = "idle_pause"
	// EventsChannel carries match lifecycle events between server instances.
	EventsChannel = "match_events"
)

// MatchEvent is published on EventsChannel.
type MatchEvent struct {
	Type     string    `json:"type"`
	MatchID  string    `json:"match_id"`
	Reason   string    `json:"reason,omitempty"`
	Snapshot *Snapshot `json:"snapshot,omitempty"`
}

func (mm *MatchManager) idleAfter() time.Duration {
	if mm.config.IdlePauseSeconds <= 0 {
		return 5 * time.Minute
	}
	return time.Duration(mm.config.IdlePauseSeconds) * time.Second
}

// TouchActivity pushes the idle deadline of a match forward.
func (mm *MatchManager) TouchActivity(ctx context.Context, matchID string) {
	if mm.rdb == nil {
		return
	}
	deadline := time.Now().Add(mm.idleAfter()).Unix()
	if err := mm.rdb.ZAdd(ctx, IdlePauseKey, redis.Z{Score: float64(deadline), Member: matchID}).Err(); err != nil {
		slog.Warn("failed to touch idle deadline", "component", "idle", "match_id", matchID, "error", err)
	}
}

// RunIdleWorker pauses matches nobody has touched for the idle period. With
// Redis the deadlines live in a sorted set shared by every instance; without
// it the live matches are scanned directly.
func RunIdleWorker(ctx context.Context, mm *MatchManager, poll time.Duration) error {
	if poll <= 0 {
		poll = 5 * time.Second
	}

	slog.Info("idle worker started", "component", "idle", "after", mm.idleAfter())

	ticker := time.NewTicker(poll)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("idle worker stopping", "component", "idle")
			return nil
		case <-ticker.C:
			if mm.rdb != nil {
				mm.processIdleDeadlines(ctx, time.Now())
			} else {
				mm.pauseIdleMatches(time.Now())
			}
		}
	}
}

func (mm *MatchManager) processIdleDeadlines(ctx context.Context, now time.Time) {
	members, err := mm.rdb.ZRangeByScore(ctx, IdlePauseKey, &redis.ZRangeBy{Min: "-inf", Max: fmt.Sprintf("%d", now.Unix())}).Result()
	if err != nil {
		slog.Error("failed to fetch idle deadlines", "component", "idle", "error", err)
		return
	}

	for _, id := range members {
		// Only the instance that removes the member acts on it.
		if removed, _ := mm.rdb.ZRem(ctx, IdlePauseKey, id).Result(); removed == 0 {
			continue
		}

		m, err := mm.Get(id)
		if err != nil {
			continue
		}

		// Input may have arrived without a touch; re-arm from the real activity.
		if deadline := m.LastActivity().Add(mm.idleAfter()); deadline.After(now) {
			mm.rdb.ZAdd(ctx, IdlePauseKey, redis.Z{Score: float64(deadline.Unix()), Member: id})
			continue
		}

		if mm.pauseIdle(m) {
			mm.publishPaused(ctx, m)
		}
	}
}

// pauseIdleMatches is the in-memory fallback. It returns the matches it paused.
func (mm *MatchManager) pauseIdleMatches(now time.Time) []*Match {
	var paused []*Match
	for _, m := range mm.List() {
		if now.Sub(m.LastActivity()) < mm.idleAfter() {
			continue
		}
		if mm.pauseIdle(m) {
			paused = append(paused, m)
		}
	}
	return paused
}

func (mm *MatchManager) pauseIdle(m *Match) bool {
	if m.Status() != StatusInProgress || !m.Pause() {
		return false
	}
	slog.Info("match paused for inactivity", "component", "idle", "match_id", m.ID)
	return true
}

func (mm *MatchManager) publishPaused(ctx context.Context, m *Match) {
	snap := m.Snapshot()
	b, _ := json.Marshal(MatchEvent{Type: "match_paused", MatchID: m.ID, Reason: "idle", Snapshot: &snap})
	if n, err := mm.rdb.Publish(ctx, EventsChannel, b).Result(); err != nil {
		slog.Warn("publish pause failed", "component", "idle", "match_id", m.ID, "error", err)
	} else {
		slog.Debug("published pause", "component", "idle", "match_id", m.ID, "subscribers", n)
	}
}
