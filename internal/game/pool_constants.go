package game

import "math"

// Physics and table constants for nine-ball.
// Units are table units (the table is 4 x 2 between pocket centres) and seconds.

const (
	NumBalls = 10 // 0=cue, 1-8=object balls, 9=game ball
	CueBall  = 0
	GameBall = NumBalls - 1
	NoBall   = -1

	BallRadius      = 0.08
	BallMass        = 1.5
	BallRestitution = 0.8
	BallFriction    = 0.25 // linear deceleration, units/s^2
	StopEpsilon     = 0.01 // speeds below this snap to zero

	TableHeight  = 0.057 // y of a ball centre while in play
	PocketDropY  = -1.0  // y of a pocketed ball
	PocketRadius = 0.15
	CushionWidth = 0.125
	TableHalfX   = 2.0
	TableHalfZ   = 1.0

	MinPower   = 2.0
	MaxPower   = 10.0
	StartAngle = math.Pi / 2 // aims the cue ball down +x, towards the rack

	DefaultTickRate    = 120
	MaxTicksPerAdvance = 240
)

// CueSpot is where the cue ball is placed at rack time and after a foul.
var CueSpot = [2]float64{-1.0, 0.0}
