package game

import (
	"context"
	"log/slog"
	"time"
)

// Broadcaster delivers match updates to connected clients.
type Broadcaster interface {
	BroadcastState(matchID string, snap Snapshot)
	BroadcastTurn(matchID string, res TurnResult)
}

// RunFrames drives every live match at frameRate frames per second until ctx
// is cancelled. Each frame feeds the real elapsed time into the match
// accumulators, pushes changed snapshots to out and persists settled turns.
func RunFrames(ctx context.Context, mm *MatchManager, frameRate int, out Broadcaster) error {
	if frameRate <= 0 {
		frameRate = 60
	}

	ticker := time.NewTicker(time.Second / time.Duration(frameRate))
	defer ticker.Stop()

	slog.Info("frame loop started", "component", "runner", "fps", frameRate)

	f := &frameState{
		versions: make(map[string]uint64),
		statuses: make(map[string]MatchStatus),
	}
	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			slog.Info("frame loop stopping", "component", "runner")
			return nil
		case now := <-ticker.C:
			mm.stepFrame(ctx, now.Sub(last), out, f)
			last = now
		}
	}
}

// frameState remembers what the last frame broadcast for each match.
type frameState struct {
	versions map[string]uint64
	statuses map[string]MatchStatus
}

func (mm *MatchManager) stepFrame(ctx context.Context, elapsed time.Duration, out Broadcaster, f *frameState) {
	live := make(map[string]bool)

	for _, m := range mm.List() {
		live[m.ID] = true

		results := m.Advance(elapsed)

		version := m.Version()
		if seen, ok := f.versions[m.ID]; ok && seen == version && len(results) == 0 {
			continue
		}
		f.versions[m.ID] = version

		snap := m.Snapshot()
		if out != nil {
			for _, res := range results {
				out.BroadcastTurn(m.ID, res)
			}
			out.BroadcastState(m.ID, snap)
		}

		statusChanged := f.statuses[m.ID] != snap.Status
		f.statuses[m.ID] = snap.Status
		if len(results) > 0 || statusChanged {
			if statusChanged && len(results) == 0 {
				go mm.logStatus(ctx, m.ID, snap.Status)
			}
			go mm.persist(ctx, m.ID, results, &snap)
		}
	}

	for id := range f.versions {
		if !live[id] {
			delete(f.versions, id)
			delete(f.statuses, id)
		}
	}
}

func (mm *MatchManager) logStatus(ctx context.Context, matchID string, status MatchStatus) {
	if err := mm.UpdateStatus(ctx, matchID, status); err != nil {
		slog.Error("failed to update match status", "component", "runner", "match_id", matchID, "status", status, "error", err)
	}
}
