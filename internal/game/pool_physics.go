package game

import "github.com/go-gl/mathgl/mgl64"

// FactSink receives the physical facts the rules care about. The integrator
// never reads anything back from it.
type FactSink interface {
	// FirstContact is called for every cue-ball contact with an object ball;
	// the receiver keeps the first one per turn.
	FirstContact(number int)
	// BallPocketed is called once when a ball drops.
	BallPocketed(number int)
}

// EventType classifies a contact event.
type EventType string

const (
	EventBall    EventType = "ball"
	EventCushion EventType = "cushion"
	EventPocket  EventType = "pocket"
)

// CollisionEvent records a contact for presentation (sound, flashes).
type CollisionEvent struct {
	Type     EventType `json:"type"`
	BallID   int       `json:"ball_id"`
	TargetID int       `json:"target_id"` // ball number, cushion index or pocket ID
	Speed    float64   `json:"speed"`     // impact speed
}

// Integrator advances the ball arena by fixed ticks.
type Integrator struct {
	balls  *Balls
	table  *Table
	dt     float64
	sink   FactSink
	events []CollisionEvent
}

// NewIntegrator creates an integrator stepping at tickRate ticks per second.
// sink may be nil.
func NewIntegrator(balls *Balls, table *Table, tickRate int, sink FactSink) *Integrator {
	if tickRate <= 0 {
		tickRate = DefaultTickRate
	}
	return &Integrator{
		balls:  balls,
		table:  table,
		dt:     1 / float64(tickRate),
		sink:   sink,
		events: make([]CollisionEvent, 0, 8),
	}
}

// Dt returns the tick length in seconds.
func (in *Integrator) Dt() float64 {
	return in.dt
}

// Step advances the simulation by one tick. The pass order is fixed: integrate,
// pockets, cue ball against each object ball, object ball pairs, cushions.
func (in *Integrator) Step() {
	in.events = in.events[:0]

	for i := range in.balls {
		in.integrate(&in.balls[i])
	}

	for i := range in.balls {
		in.checkPocket(&in.balls[i])
	}

	// i < j with the cue ball at index 0 gives cue pairs first.
	for i := 0; i < NumBalls; i++ {
		for j := i + 1; j < NumBalls; j++ {
			in.collideBalls(i, j)
		}
	}

	for i := range in.balls {
		for c := range in.table.Cushions {
			in.collideCushion(&in.balls[i], c)
		}
	}

	for i := range in.balls {
		b := &in.balls[i]
		if s := b.Speed(); s > 0 && s < StopEpsilon {
			b.Velocity = mgl64.Vec3{}
		}
	}
}

// AllStopped reports whether every ball still in play is at rest.
func (in *Integrator) AllStopped() bool {
	for i := range in.balls {
		b := &in.balls[i]
		if !b.Pocketed && b.Speed() >= StopEpsilon {
			return false
		}
	}
	return true
}

// Simulate steps until all balls stop or maxTicks elapse. Returns the ticks run.
func (in *Integrator) Simulate(maxTicks int) int {
	ticks := 0
	for ticks < maxTicks && !in.AllStopped() {
		in.Step()
		ticks++
	}
	return ticks
}

// Events returns the contacts of the last tick. The slice is reused by Step.
func (in *Integrator) Events() []CollisionEvent {
	return in.events
}

func (in *Integrator) integrate(b *Ball) {
	if b.Pocketed {
		return
	}

	b.Position = b.Position.Add(b.Velocity.Mul(in.dt))

	speed := b.Speed()
	if speed == 0 {
		return
	}

	// Linear friction: constant deceleration against the direction of travel.
	decel := b.Friction * in.dt
	if speed-decel < StopEpsilon {
		b.Velocity = mgl64.Vec3{}
		return
	}
	b.Velocity = b.Velocity.Add(b.Velocity.Mul(-decel / speed))
}

func (in *Integrator) checkPocket(b *Ball) {
	if b.Pocketed {
		return
	}

	p := planar(b.Position)
	for _, pocket := range in.table.Pockets {
		if p.Sub(pocket.Center).Len() >= in.table.PocketRadius {
			continue
		}
		speed := b.Speed()
		b.drop()
		in.events = append(in.events, CollisionEvent{
			Type:     EventPocket,
			BallID:   b.Number,
			TargetID: pocket.ID,
			Speed:    speed,
		})
		if in.sink != nil {
			in.sink.BallPocketed(b.Number)
		}
		return
	}
}

// ballsTouching returns the unit normal from a to b when the two overlap.
// Coincident centres have no defined normal and count as no contact.
func ballsTouching(a, b *Ball) (normal mgl64.Vec3, dist float64, ok bool) {
	if a.Pocketed || b.Pocketed {
		return mgl64.Vec3{}, 0, false
	}
	delta := b.Position.Sub(a.Position)
	dist = delta.Len()
	if dist == 0 || dist >= a.Radius+b.Radius {
		return mgl64.Vec3{}, 0, false
	}
	return delta.Mul(1 / dist), dist, true
}

func (in *Integrator) collideBalls(i, j int) {
	a, b := &in.balls[i], &in.balls[j]
	if !resolveBallPair(a, b) {
		return
	}

	if in.sink != nil && a.Number == CueBall {
		in.sink.FirstContact(b.Number)
	}

	in.events = append(in.events, CollisionEvent{
		Type:     EventBall,
		BallID:   a.Number,
		TargetID: b.Number,
		Speed:    b.Velocity.Sub(a.Velocity).Len(),
	})
}

// resolveBallPair applies the restitution impulse to an approaching pair and
// separates them. It returns false when the pair is apart or already separating.
func resolveBallPair(a, b *Ball) bool {
	normal, dist, ok := ballsTouching(a, b)
	if !ok {
		return false
	}

	vn := b.Velocity.Sub(a.Velocity).Dot(normal)
	if vn >= 0 {
		return false
	}

	e := (a.Restitution + b.Restitution) * 0.5
	j := -(1 + e) * vn / (1/a.Mass + 1/b.Mass)

	impulse := normal.Mul(j)
	a.Velocity = a.Velocity.Sub(impulse.Mul(1 / a.Mass))
	b.Velocity = b.Velocity.Add(impulse.Mul(1 / b.Mass))

	// Push each ball back by half the overlap.
	sep := normal.Mul((a.Radius + b.Radius - dist) * 0.5)
	a.Position = a.Position.Sub(sep)
	b.Position = b.Position.Add(sep)
	return true
}

func (in *Integrator) collideCushion(b *Ball, index int) {
	c := &in.table.Cushions[index]
	speed, ok := resolveCushion(b, c)
	if !ok {
		return
	}
	in.events = append(in.events, CollisionEvent{
		Type:     EventCushion,
		BallID:   b.Number,
		TargetID: index,
		Speed:    speed,
	})
}

// resolveCushion bounces b off c in the horizontal plane. The vertical
// velocity is left alone. Returns the normal impact speed.
func resolveCushion(b *Ball, c *Cushion) (float64, bool) {
	if b.Pocketed {
		return 0, false
	}

	closest, ok := closestPointOnSegment(b.Position, c.Start, c.End)
	if !ok {
		return 0, false
	}

	offset := horizontal(b.Position.Sub(closest))
	dist := offset.Len()
	reach := b.Radius + c.Width
	if dist == 0 || dist >= reach {
		return 0, false
	}

	n := offset.Mul(1 / dist)
	vn := horizontal(b.Velocity).Dot(n)
	if vn >= 0 {
		return 0, false
	}

	// n has no vertical component, so Velocity.Y passes through unchanged.
	b.Velocity = b.Velocity.Sub(n.Mul((1 + b.Restitution) * vn))
	b.Position = b.Position.Add(n.Mul(reach - dist))
	return -vn, true
}
