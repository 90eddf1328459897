package game

import "github.com/go-gl/mathgl/mgl64"

// Ball represents a single ball's physics state. Number 0 is the cue ball.
type Ball struct {
	Number      int        `json:"number"`
	Position    mgl64.Vec3 `json:"position"`
	Velocity    mgl64.Vec3 `json:"velocity"`
	Radius      float64    `json:"radius"`
	Mass        float64    `json:"mass"`
	Restitution float64    `json:"restitution"`
	Friction    float64    `json:"friction"`
	Pocketed    bool       `json:"pocketed"`
}

// Speed returns the magnitude of the ball's velocity.
func (b *Ball) Speed() float64 {
	return b.Velocity.Len()
}

// Place returns the ball to play at pos, at rest.
func (b *Ball) Place(pos mgl64.Vec3) {
	b.Position = pos
	b.Velocity = mgl64.Vec3{}
	b.Pocketed = false
}

// drop takes the ball out of play below the table.
func (b *Ball) drop() {
	b.Pocketed = true
	b.Velocity = mgl64.Vec3{}
	b.Position = mgl64.Vec3{b.Position.X(), PocketDropY, b.Position.Z()}
}

// Balls is the arena of every ball on the table, indexed by ball number.
type Balls [NumBalls]Ball

// NewRackedBalls creates all balls at their rack positions for a profile.
func NewRackedBalls(p Profile) Balls {
	var balls Balls
	rack := NineBallRack(p)
	for i := range balls {
		balls[i] = Ball{
			Number:      i,
			Position:    rack[i],
			Radius:      p.BallRadius,
			Mass:        p.BallMass,
			Restitution: p.BallRestitution,
			Friction:    p.BallFriction,
		}
	}
	return balls
}
