package game

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupMatch builds a match with only the listed balls on the table. Removed
// object balls are reported to the rules so the required ball follows.
func setupMatch(t *testing.T, placed map[int]mgl64.Vec3) *Match {
	t.Helper()
	require.Contains(t, placed, CueBall)

	m := NewMatch("match_test", MatchOptions{})
	for i := range m.balls {
		if pos, ok := placed[i]; ok {
			m.balls[i].Place(pos)
			continue
		}
		m.balls[i].drop()
		m.rules.BallPocketed(i)
	}
	return m
}

// settle ticks until a shot is evaluated.
func settle(t *testing.T, m *Match) TurnResult {
	t.Helper()
	for i := 0; i < 20000; i++ {
		if res, ok := m.Tick(); ok {
			return res
		}
	}
	t.Fatal("shot was never evaluated")
	return TurnResult{}
}

func shoot(t *testing.T, m *Match, angle, power float64) {
	t.Helper()
	m.SetAimAngle(angle)
	m.SetShotPower(power)
	require.True(t, m.ExecuteShot())
}

func TestLegalMissSwitchesPlayer(t *testing.T) {
	m := setupMatch(t, map[int]mgl64.Vec3{
		CueBall: onTable(-1, 0),
		1:       onTable(0, 0),
		2:       onTable(0.5, 0.6),
	})

	shoot(t, m, math.Pi/2, 2)
	res := settle(t, m)

	assert.Equal(t, 1, res.FirstHit)
	assert.False(t, res.Foul)
	assert.Empty(t, res.Pocketed)
	assert.Equal(t, 2, m.CurrentPlayer())
	assert.Equal(t, StatusInProgress, m.Status())
	assert.True(t, m.CanShoot())
}

func TestWrongBallFirstIsFoul(t *testing.T) {
	m := setupMatch(t, map[int]mgl64.Vec3{
		CueBall: onTable(-1, 0),
		1:       onTable(0.5, 0.6),
		2:       onTable(0, 0),
	})

	shoot(t, m, math.Pi/2, 2)
	res := settle(t, m)

	assert.Equal(t, 2, res.FirstHit)
	assert.True(t, res.Foul)
	assert.Equal(t, FoulWrongFirstHit, res.FoulReason)
	assert.Equal(t, 2, m.CurrentPlayer())

	snap := m.Snapshot()
	assert.Equal(t, onTable(CueSpot[0], CueSpot[1]), snap.Balls[CueBall].Position)
	require.NotNil(t, snap.LastTurn)
	assert.True(t, snap.LastTurn.Foul)
}

func TestScratchRespotsCue(t *testing.T) {
	m := setupMatch(t, map[int]mgl64.Vec3{
		CueBall: onTable(0, 0.6),
		1:       onTable(1, -0.5),
	})

	shoot(t, m, 0, 2)
	res := settle(t, m)

	assert.True(t, res.Scratch)
	assert.True(t, res.Foul)
	assert.Equal(t, 2, res.NextPlayer)
	assert.Equal(t, 2, m.CurrentPlayer())

	snap := m.Snapshot()
	cue := snap.Balls[CueBall]
	assert.False(t, cue.Pocketed)
	assert.Equal(t, onTable(-1, 0), cue.Position)
	assert.Equal(t, mgl64.Vec3{}, cue.Velocity)
	assert.Equal(t, StartAngle, snap.AimAngle)
	assert.True(t, snap.CanShoot)
}

func TestPocketingGameBallLegallyWins(t *testing.T) {
	m := setupMatch(t, map[int]mgl64.Vec3{
		CueBall:  onTable(0, 0),
		GameBall: onTable(0, 0.5),
	})
	require.Equal(t, GameBall, m.Snapshot().LowestRemaining)

	shoot(t, m, 0, 2)
	res := settle(t, m)

	assert.Equal(t, []int{GameBall}, res.Pocketed)
	assert.False(t, res.Foul)
	assert.True(t, res.GameOver)
	assert.Equal(t, 1, res.Winner)
	assert.Equal(t, StatusFinished, m.Status())
	assert.False(t, m.CanShoot())
	assert.False(t, m.ExecuteShot())
}

func TestPocketingGameBallOnFoulLoses(t *testing.T) {
	m := setupMatch(t, map[int]mgl64.Vec3{
		CueBall:  onTable(0, 0),
		1:        onTable(1, -0.5),
		GameBall: onTable(0, 0.5),
	})

	shoot(t, m, 0, 2)
	res := settle(t, m)

	assert.Equal(t, GameBall, res.FirstHit)
	assert.True(t, res.Foul)
	assert.Equal(t, 2, res.Winner)
	assert.Equal(t, StatusFinished, m.Status())
}

func TestShotIsEvaluatedExactlyOnce(t *testing.T) {
	m := setupMatch(t, map[int]mgl64.Vec3{
		CueBall: onTable(-1, 0),
		1:       onTable(0, 0),
	})

	shoot(t, m, math.Pi/2, 2)
	settle(t, m)

	for i := 0; i < 600; i++ {
		_, ok := m.Tick()
		require.False(t, ok, "tick %d evaluated again", i)
	}
	assert.Equal(t, 1, m.Snapshot().Turn)
}

func TestIdleTicksNeverEvaluate(t *testing.T) {
	m := NewMatch("idle", MatchOptions{})
	for i := 0; i < 240; i++ {
		_, ok := m.Tick()
		require.False(t, ok)
	}
	assert.Equal(t, StatusNotStarted, m.Status())
}

func TestGateClosedWhileBallsMove(t *testing.T) {
	m := NewMatch("gate", MatchOptions{})
	shoot(t, m, StartAngle, MaxPower)

	assert.False(t, m.CanShoot())
	assert.False(t, m.ExecuteShot())
	assert.Equal(t, StatusInProgress, m.Status(), "first shot starts the match")
	assert.Equal(t, MinPower, m.Snapshot().Power)
}

func TestAdvanceRunsWholeTicks(t *testing.T) {
	a := NewMatch("a", MatchOptions{})
	b := NewMatch("b", MatchOptions{})
	shoot(t, a, 1.3, 7)
	shoot(t, b, 1.3, 7)

	a.Advance(500 * time.Millisecond)
	for i := 0; i < DefaultTickRate/2; i++ {
		b.Tick()
	}

	assert.Equal(t, b.Snapshot().Balls, a.Snapshot().Balls)
}

func TestAdvanceCarriesRemainder(t *testing.T) {
	a := NewMatch("a", MatchOptions{})
	b := NewMatch("b", MatchOptions{})
	shoot(t, a, 1.3, 7)
	shoot(t, b, 1.3, 7)

	tick := time.Second / DefaultTickRate
	a.Advance(tick / 2)
	a.Advance(tick / 2)
	a.Advance(tick / 2)
	b.Tick()

	assert.Equal(t, b.Snapshot().Balls, a.Snapshot().Balls)
}

func TestAdvanceCapsTicksPerCall(t *testing.T) {
	a := NewMatch("a", MatchOptions{MaxTicks: 10})
	b := NewMatch("b", MatchOptions{})
	shoot(t, a, 1.3, 7)
	shoot(t, b, 1.3, 7)

	a.Advance(time.Second)
	for i := 0; i < 10; i++ {
		b.Tick()
	}
	assert.Equal(t, b.Snapshot().Balls, a.Snapshot().Balls)

	// The dropped backlog does not come back on the next call.
	a.Advance(0)
	assert.Equal(t, b.Snapshot().Balls, a.Snapshot().Balls)
}

func TestPauseFreezesTable(t *testing.T) {
	m := NewMatch("pause", MatchOptions{})
	shoot(t, m, StartAngle, MaxPower)
	m.Advance(100 * time.Millisecond)

	require.True(t, m.Pause())
	before := m.Snapshot().Balls

	assert.Nil(t, m.Advance(time.Second))
	_, ok := m.Tick()
	assert.False(t, ok)
	assert.Equal(t, before, m.Snapshot().Balls)
	assert.False(t, m.CanShoot())

	require.True(t, m.Resume())
	m.Advance(100 * time.Millisecond)
	assert.NotEqual(t, before, m.Snapshot().Balls)
}

func TestPauseBeforeFirstShot(t *testing.T) {
	m := NewMatch("pause", MatchOptions{})
	require.True(t, m.Pause())
	assert.False(t, m.ExecuteShot())

	require.True(t, m.Resume())
	assert.Equal(t, StatusNotStarted, m.Status())
	assert.True(t, m.ExecuteShot())
}

func TestRestartReracks(t *testing.T) {
	m := NewMatch("restart", MatchOptions{})
	shoot(t, m, StartAngle, MaxPower)
	m.Advance(200 * time.Millisecond)

	m.Restart()

	snap := m.Snapshot()
	rack := NineBallRack(DefaultProfile())
	for n, b := range snap.Balls {
		assert.Equal(t, rack[n], b.Position, "ball %d", n)
		assert.Equal(t, mgl64.Vec3{}, b.Velocity)
		assert.False(t, b.Pocketed)
	}
	assert.Equal(t, StatusNotStarted, snap.Status)
	assert.Equal(t, 1, snap.CurrentPlayer)
	assert.True(t, snap.CanShoot)
	assert.Equal(t, 0, snap.Turn)
	assert.Nil(t, snap.LastTurn)
}

func TestRestartAfterFinish(t *testing.T) {
	m := setupMatch(t, map[int]mgl64.Vec3{
		CueBall:  onTable(0, 0),
		GameBall: onTable(0, 0.5),
	})
	shoot(t, m, 0, 2)
	settle(t, m)
	require.Equal(t, StatusFinished, m.Status())

	m.Restart()
	assert.Equal(t, StatusNotStarted, m.Status())
	assert.Equal(t, 1, m.Snapshot().LowestRemaining)
	assert.True(t, m.ExecuteShot())
}

func TestVersionMovesWithState(t *testing.T) {
	m := NewMatch("version", MatchOptions{})
	v0 := m.Version()

	m.Tick() // nothing moving
	assert.Equal(t, v0, m.Version())

	m.SetAimAngle(1)
	v1 := m.Version()
	assert.Greater(t, v1, v0)

	require.True(t, m.ExecuteShot())
	m.Tick()
	assert.Greater(t, m.Version(), v1)
}

func TestSnapshotJSON(t *testing.T) {
	m := NewMatch("json", MatchOptions{})
	data, err := json.Marshal(m.Snapshot())
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "json", decoded["match_id"])
	assert.Equal(t, string(StatusNotStarted), decoded["status"])
	assert.Len(t, decoded["balls"], NumBalls)
	assert.NotContains(t, decoded, "last_turn")
}

func TestSnapshotCarriesFrameEvents(t *testing.T) {
	m := setupMatch(t, map[int]mgl64.Vec3{CueBall: onTable(0, 0.6), 1: onTable(1, -0.5)})
	shoot(t, m, 0, 2)

	var pocket bool
	for i := 0; i < 240 && !pocket; i++ {
		m.Advance(time.Second / DefaultTickRate)
		for _, ev := range m.Snapshot().Events {
			if ev.Type == EventPocket && ev.BallID == CueBall {
				pocket = true
			}
		}
	}
	assert.True(t, pocket)
}
