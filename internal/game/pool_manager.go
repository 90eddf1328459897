package game

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/lib/pq"
	"github.com/playmatatu/nineball/internal/models"
	"github.com/redis/go-redis/v9"
)

// ErrNoDatabase is returned by history queries when Postgres is not configured.
var ErrNoDatabase = errors.New("match history requires a database")

func snapshotKey(matchID string) string {
	return "match:" + matchID + ":snapshot"
}

func (mm *MatchManager) snapshotTTL() time.Duration {
	if mm.config.SnapshotTTLMinutes <= 0 {
		return time.Hour
	}
	return time.Duration(mm.config.SnapshotTTLMinutes) * time.Minute
}

// InsertMatch writes the matches row for a freshly created match.
func (mm *MatchManager) InsertMatch(ctx context.Context, m *Match) error {
	if mm.db == nil {
		return nil
	}

	profile, err := json.Marshal(m.Profile())
	if err != nil {
		return fmt.Errorf("marshal profile: %w", err)
	}

	_, err = mm.db.ExecContext(ctx,
		`INSERT INTO matches (id, status, turns, profile, created_at, updated_at) VALUES ($1,$2,0,$3::jsonb,$4,NOW())`,
		m.ID, string(StatusNotStarted), string(profile), m.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert match %s: %w", m.ID, err)
	}
	return nil
}

// RecordTurn stores one evaluated shot and updates the match row.
func (mm *MatchManager) RecordTurn(ctx context.Context, matchID string, res TurnResult) error {
	if mm.db == nil {
		return nil
	}

	pocketed := make([]int64, len(res.Pocketed))
	for i, n := range res.Pocketed {
		pocketed[i] = int64(n)
	}

	var winner *int
	if res.GameOver {
		winner = &res.Winner
	}
	var reason *string
	if res.FoulReason != "" {
		reason = &res.FoulReason
	}

	tx, err := mm.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin turn tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO match_turns (match_id, turn_number, shooter, required_ball, first_hit, pocketed, scratch, foul, foul_reason, next_player, winner, created_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,NOW())`,
		matchID, res.Turn, res.Shooter, res.Required, res.FirstHit, pq.Array(pocketed),
		res.Scratch, res.Foul, reason, res.NextPlayer, winner,
	)
	if err != nil {
		return fmt.Errorf("insert turn %d for %s: %w", res.Turn, matchID, err)
	}

	status := StatusInProgress
	if res.GameOver {
		status = StatusFinished
	}
	_, err = tx.ExecContext(ctx,
		`UPDATE matches SET status=$2, turns=$3, winner=$4, updated_at=NOW(),
		 finished_at = CASE WHEN $2 = 'FINISHED' THEN NOW() ELSE finished_at END
		 WHERE id=$1`,
		matchID, string(status), res.Turn, winner,
	)
	if err != nil {
		return fmt.Errorf("update match %s: %w", matchID, err)
	}

	return tx.Commit()
}

// UpdateStatus records a status change that did not come from a shot, such
// as a pause or a restart.
func (mm *MatchManager) UpdateStatus(ctx context.Context, matchID string, status MatchStatus) error {
	if mm.db == nil {
		return nil
	}
	query := `UPDATE matches SET status=$2, updated_at=NOW() WHERE id=$1`
	if status == StatusNotStarted {
		query = `UPDATE matches SET status=$2, turns=0, winner=NULL, finished_at=NULL, updated_at=NOW() WHERE id=$1`
	}
	if _, err := mm.db.ExecContext(ctx, query, matchID, string(status)); err != nil {
		return fmt.Errorf("update status of %s: %w", matchID, err)
	}
	return nil
}

// SaveSnapshot caches the latest snapshot in Redis.
func (mm *MatchManager) SaveSnapshot(ctx context.Context, s Snapshot) error {
	if mm.rdb == nil {
		return nil
	}

	data, err := json.Marshal(s)
	if err != nil {
		return err
	}

	return mm.rdb.SetEx(ctx, snapshotKey(s.MatchID), data, mm.snapshotTTL()).Err()
}

// CachedSnapshot reads a snapshot saved by any server instance.
func (mm *MatchManager) CachedSnapshot(ctx context.Context, matchID string) (Snapshot, error) {
	var s Snapshot
	if mm.rdb == nil {
		return s, ErrMatchNotFound
	}

	data, err := mm.rdb.Get(ctx, snapshotKey(matchID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return s, ErrMatchNotFound
	}
	if err != nil {
		return s, fmt.Errorf("get snapshot %s: %w", matchID, err)
	}
	if err := json.Unmarshal(data, &s); err != nil {
		return s, fmt.Errorf("decode snapshot %s: %w", matchID, err)
	}
	return s, nil
}

// DeleteSnapshot removes the cached snapshot and idle entry of a match.
func (mm *MatchManager) DeleteSnapshot(ctx context.Context, matchID string) error {
	if mm.rdb == nil {
		return nil
	}
	pipe := mm.rdb.TxPipeline()
	pipe.Del(ctx, snapshotKey(matchID))
	pipe.ZRem(ctx, IdlePauseKey, matchID)
	_, err := pipe.Exec(ctx)
	return err
}

// persist saves a turn and the snapshot that follows it. Failures are logged
// and never reach the simulation.
func (mm *MatchManager) persist(ctx context.Context, matchID string, results []TurnResult, snap *Snapshot) {
	for _, res := range results {
		if err := mm.RecordTurn(ctx, matchID, res); err != nil {
			slog.Error("failed to record turn", "component", "manager", "match_id", matchID, "turn", res.Turn, "error", err)
		}
	}
	if snap != nil {
		if err := mm.SaveSnapshot(ctx, *snap); err != nil {
			slog.Error("failed to cache snapshot", "component", "manager", "match_id", matchID, "error", err)
		}
	}
}

// MatchHistory lists stored matches, newest first.
func (mm *MatchManager) MatchHistory(ctx context.Context, status string, limit, offset int) ([]models.MatchRecord, error) {
	if mm.db == nil {
		return nil, ErrNoDatabase
	}
	records := []models.MatchRecord{}
	err := mm.db.SelectContext(ctx, &records, `
		SELECT id, status, winner, turns, profile::text AS profile, created_at, updated_at, finished_at
		FROM matches
		WHERE ($1 = '' OR status = $1)
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`,
		status, limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("list matches: %w", err)
	}
	return records, nil
}

// MatchTurns returns the stored shots of one match in order.
func (mm *MatchManager) MatchTurns(ctx context.Context, matchID string) ([]models.MatchTurn, error) {
	if mm.db == nil {
		return nil, ErrNoDatabase
	}
	turns := []models.MatchTurn{}
	err := mm.db.SelectContext(ctx, &turns, `
		SELECT id, match_id, turn_number, shooter, required_ball, first_hit, pocketed, scratch, foul, foul_reason, next_player, winner, created_at
		FROM match_turns
		WHERE match_id = $1
		ORDER BY turn_number`,
		matchID,
	)
	if err != nil {
		return nil, fmt.Errorf("list turns of %s: %w", matchID, err)
	}
	return turns, nil
}
