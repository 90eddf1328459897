package game

import (
	"time"

	"github.com/go-gl/mathgl/mgl64"
)

// BallSnapshot is the presentation view of one ball.
type BallSnapshot struct {
	Number   int        `json:"number"`
	Position mgl64.Vec3 `json:"position"`
	Velocity mgl64.Vec3 `json:"velocity"`
	Pocketed bool       `json:"pocketed"`
}

// Snapshot is a consistent read of a match between ticks.
type Snapshot struct {
	MatchID         string           `json:"match_id"`
	Status          MatchStatus      `json:"status"`
	CurrentPlayer   int              `json:"current_player"`
	LowestRemaining int              `json:"lowest_remaining"`
	Winner          int              `json:"winner,omitempty"`
	Turn            int              `json:"turn"`
	AllStopped      bool             `json:"all_stopped"`
	CanShoot        bool             `json:"can_shoot"`
	AimAngle        float64          `json:"aim_angle"`
	Power           float64          `json:"power"`
	FoulThisTurn    bool             `json:"foul_this_turn"`
	LastTurn        *TurnResult      `json:"last_turn,omitempty"`
	Balls           []BallSnapshot   `json:"balls"`
	Events          []CollisionEvent `json:"events,omitempty"`
	Version         uint64           `json:"version"`
	TakenAt         time.Time        `json:"taken_at"`
}

// Snapshot returns the current state. Events are those of the last frame.
func (m *Match) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := Snapshot{
		MatchID:         m.ID,
		Status:          m.rules.Status(),
		CurrentPlayer:   m.rules.CurrentPlayer(),
		LowestRemaining: m.rules.LowestRemaining(),
		Winner:          m.rules.Winner(),
		Turn:            m.rules.Turns(),
		AllStopped:      m.physics.AllStopped(),
		CanShoot:        m.canShootLocked(),
		AimAngle:        m.shot.Angle(),
		Power:           m.shot.Power(),
		FoulThisTurn:    m.rules.Outcome().Foul,
		Balls:           make([]BallSnapshot, 0, NumBalls),
		Version:         m.version,
		TakenAt:         time.Now(),
	}
	if last, ok := m.rules.LastTurn(); ok {
		s.LastTurn = &last
	}
	for _, b := range m.balls {
		s.Balls = append(s.Balls, BallSnapshot{
			Number:   b.Number,
			Position: b.Position,
			Velocity: b.Velocity,
			Pocketed: b.Pocketed,
		})
	}
	if len(m.frameEvents) > 0 {
		s.Events = append([]CollisionEvent(nil), m.frameEvents...)
	}
	return s
}

// Ball returns the snapshot of ball n, or false when n is out of range.
func (s Snapshot) Ball(n int) (BallSnapshot, bool) {
	if n < 0 || n >= len(s.Balls) {
		return BallSnapshot{}, false
	}
	return s.Balls[n], true
}
