package game

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// The table lies in the XZ plane; Y is up. These helpers keep the planar
// math in one place so the passes never touch the vertical component by accident.

// onTable returns the 3D point at table height for planar coordinates (x, z).
func onTable(x, z float64) mgl64.Vec3 {
	return mgl64.Vec3{x, TableHeight, z}
}

// horizontal drops the vertical component.
func horizontal(v mgl64.Vec3) mgl64.Vec3 {
	return mgl64.Vec3{v.X(), 0, v.Z()}
}

// planar projects v onto the table plane as a 2D (x, z) vector.
func planar(v mgl64.Vec3) mgl64.Vec2 {
	return mgl64.Vec2{v.X(), v.Z()}
}

// closestPointOnSegment returns the point of segment a-b nearest to p, measured in
// the horizontal plane. ok is false for a zero-length segment.
func closestPointOnSegment(p, a, b mgl64.Vec3) (closest mgl64.Vec3, ok bool) {
	ab := horizontal(b.Sub(a))
	length := ab.Len()
	if length == 0 {
		return mgl64.Vec3{}, false
	}
	dir := ab.Mul(1 / length)
	t := horizontal(p.Sub(a)).Dot(dir)
	switch {
	case t < 0:
		return a, true
	case t > length:
		return b, true
	default:
		return a.Add(dir.Mul(t)), true
	}
}

// wrapAngle maps any angle into [0, 2pi).
func wrapAngle(a float64) float64 {
	if math.IsNaN(a) || math.IsInf(a, 0) {
		return 0
	}
	a = math.Mod(a, 2*math.Pi)
	if a < 0 {
		a += 2 * math.Pi
	}
	return a
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	return math.Max(lo, math.Min(hi, v))
}
