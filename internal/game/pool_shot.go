package game

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// ShotController holds the aim and power the shooter is preparing, and the
// gate that says whether a shot may be taken right now.
type ShotController struct {
	angle    float64
	power    float64
	minPower float64
	maxPower float64
	canShoot bool
}

// NewShotController returns an open controller aimed at the start angle with
// the minimum power.
func NewShotController(minPower, maxPower float64) *ShotController {
	if minPower <= 0 || maxPower < minPower {
		minPower, maxPower = MinPower, MaxPower
	}
	return &ShotController{
		angle:    StartAngle,
		power:    minPower,
		minPower: minPower,
		maxPower: maxPower,
		canShoot: true,
	}
}

// SetAimAngle sets the aim, wrapping it into [0, 2pi).
func (s *ShotController) SetAimAngle(rad float64) {
	s.angle = wrapAngle(rad)
}

// SetShotPower sets the power, clamped to the controller's range.
func (s *ShotController) SetShotPower(p float64) {
	s.power = clamp(p, s.minPower, s.maxPower)
}

// Take launches the cue ball along the aim. It does nothing and returns false
// while the gate is closed or the cue ball is off the table. A taken shot
// closes the gate and drops the power back to the minimum.
func (s *ShotController) Take(cue *Ball) bool {
	if !s.canShoot || cue == nil || cue.Pocketed {
		return false
	}
	cue.Velocity = Direction(s.angle).Mul(s.power)
	s.canShoot = false
	s.power = s.minPower
	return true
}

// Open re-enables shooting once the table has settled.
func (s *ShotController) Open() {
	s.canShoot = true
}

// ResetAim points the cue back at the start angle.
func (s *ShotController) ResetAim() {
	s.angle = StartAngle
}

// Reset restores the initial aim, power and an open gate.
func (s *ShotController) Reset() {
	s.angle = StartAngle
	s.power = s.minPower
	s.canShoot = true
}

// CanShoot reports whether the gate is open.
func (s *ShotController) CanShoot() bool { return s.canShoot }

// Angle returns the aim in radians.
func (s *ShotController) Angle() float64 { return s.angle }

// Power returns the prepared power.
func (s *ShotController) Power() float64 { return s.power }

// Direction returns the unit horizontal vector for an aim angle.
// Angle 0 points along +z and pi/2 along +x.
func Direction(angle float64) mgl64.Vec3 {
	return mgl64.Vec3{math.Sin(angle), 0, math.Cos(angle)}
}
