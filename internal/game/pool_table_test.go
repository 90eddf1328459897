package game

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRackHasNoOverlaps(t *testing.T) {
	rack := NineBallRack(DefaultProfile())
	for i := 0; i < NumBalls; i++ {
		for j := i + 1; j < NumBalls; j++ {
			d := rack[i].Sub(rack[j]).Len()
			assert.Greater(t, d, 2*BallRadius, "balls %d and %d overlap", i, j)
		}
	}
}

func TestRackLayout(t *testing.T) {
	rack := NineBallRack(DefaultProfile())

	assert.Equal(t, onTable(-1, 0), rack[CueBall])
	assert.InDelta(t, 0, rack[1].Z(), 1e-12, "1 ball on the apex")
	assert.InDelta(t, 0, rack[GameBall].Z(), 1e-12, "9 ball in the middle")
	assert.InDelta(t, 1.0, rack[GameBall].X(), 1e-12)
	assert.Less(t, rack[1].X(), rack[GameBall].X())
	assert.Greater(t, rack[8].X(), rack[GameBall].X())

	for _, p := range rack {
		assert.Equal(t, TableHeight, p.Y())
	}
}

func TestTablePocketsAndCushions(t *testing.T) {
	table := NewNineBallTable(DefaultProfile())

	require.Len(t, table.Pockets, 6)
	want := []mgl64.Vec2{{-2, 1}, {0, 1}, {2, 1}, {-2, -1}, {0, -1}, {2, -1}}
	for i, p := range table.Pockets {
		assert.Equal(t, i, p.ID)
		assert.Equal(t, want[i], p.Center)
	}
	assert.Equal(t, PocketRadius, table.PocketRadius)

	require.Len(t, table.Cushions, 6)
	off := 0.1 - PocketRadius*math.Sqrt2
	for _, c := range table.Cushions {
		assert.Equal(t, CushionWidth, c.Width)
		assert.InDelta(t, 1, c.Normal.Len(), 1e-12)
		assert.Equal(t, 0.0, c.Start.Y())
	}
	assert.InDelta(t, TableHalfZ-off, table.Cushions[0].Start.Z(), 1e-12)
	assert.InDelta(t, -TableHalfX+off, table.Cushions[4].Start.X(), 1e-12)
}

func TestBallsCannotLeaveTheTable(t *testing.T) {
	// Sweep shots in every direction; a ball either drops or stays inside.
	for a := 0.0; a < 2*math.Pi; a += math.Pi / 9 {
		balls := newTestArena(map[int]mgl64.Vec3{CueBall: onTable(0.3, 0.2)})
		balls[CueBall].Velocity = Direction(a).Mul(MaxPower)
		in, _ := newTestIntegrator(balls)
		in.Simulate(12000)

		cue := balls[CueBall]
		if cue.Pocketed {
			continue
		}
		assert.LessOrEqual(t, math.Abs(cue.Position.X()), TableHalfX, "angle %v", a)
		assert.LessOrEqual(t, math.Abs(cue.Position.Z()), TableHalfZ, "angle %v", a)
	}
}

func TestLoadProfileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "table.yaml")
	require.NoError(t, os.WriteFile(path, []byte("ball_friction: 0.4\nmax_power: 8\n"), 0o644))

	p, err := LoadProfile(path)
	require.NoError(t, err)

	assert.Equal(t, 0.4, p.BallFriction)
	assert.Equal(t, 8.0, p.MaxPower)
	assert.Equal(t, BallRadius, p.BallRadius, "unset keys keep defaults")
	assert.Equal(t, MinPower, p.MinPower)
}

func TestLoadProfileRejectsInvalid(t *testing.T) {
	tests := map[string]string{
		"negative radius":   "ball_radius: -1\n",
		"zero mass":         "ball_mass: 0\n",
		"bouncy":            "ball_restitution: 1.5\n",
		"inverted power":    "min_power: 5\nmax_power: 3\n",
		"not yaml":          "ball_radius: [1, 2\n",
		"negative friction": "ball_friction: -0.1\n",
	}

	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "table.yaml")
			require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

			_, err := LoadProfile(path)
			assert.Error(t, err)
		})
	}
}

func TestLoadProfileMissingFile(t *testing.T) {
	_, err := LoadProfile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestDefaultProfileIsValid(t *testing.T) {
	assert.NoError(t, DefaultProfile().Validate())
}

func TestClosestPointOnSegment(t *testing.T) {
	a := mgl64.Vec3{0, 0, 0}
	b := mgl64.Vec3{2, 0, 0}

	p, ok := closestPointOnSegment(mgl64.Vec3{1, 5, 1}, a, b)
	require.True(t, ok)
	assert.Equal(t, mgl64.Vec3{1, 0, 0}, p, "height is ignored")

	p, _ = closestPointOnSegment(mgl64.Vec3{-3, 0, 1}, a, b)
	assert.Equal(t, a, p)

	p, _ = closestPointOnSegment(mgl64.Vec3{9, 0, 1}, a, b)
	assert.Equal(t, b, p)

	_, ok = closestPointOnSegment(mgl64.Vec3{1, 0, 1}, a, a)
	assert.False(t, ok)
}
