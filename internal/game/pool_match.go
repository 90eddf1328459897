package game

import (
	"log/slog"
	"sync"
	"time"
)

// MatchOptions tunes a match. Zero fields fall back to defaults.
type MatchOptions struct {
	Profile  *Profile
	TickRate int
	MaxTicks int // cap on ticks drained by one Advance
}

// Match wires the integrator, rule engine and shot controller for one table.
// All methods are safe for concurrent use.
type Match struct {
	ID        string
	CreatedAt time.Time

	profile  Profile
	table    *Table
	balls    Balls
	physics  *Integrator
	rules    *TurnEngine
	shot     *ShotController
	tick     time.Duration
	maxTicks int

	accumulator  time.Duration
	shotInFlight bool
	frameEvents  []CollisionEvent
	version      uint64
	lastActivity time.Time

	mu sync.Mutex
}

// NewMatch racks a fresh match.
func NewMatch(id string, opts MatchOptions) *Match {
	p := DefaultProfile()
	if opts.Profile != nil {
		p = *opts.Profile
	}
	rate := opts.TickRate
	if rate <= 0 {
		rate = DefaultTickRate
	}
	maxTicks := opts.MaxTicks
	if maxTicks <= 0 {
		maxTicks = MaxTicksPerAdvance
	}

	now := time.Now()
	m := &Match{
		ID:           id,
		CreatedAt:    now,
		profile:      p,
		table:        NewNineBallTable(p),
		balls:        NewRackedBalls(p),
		rules:        NewTurnEngine(),
		shot:         NewShotController(p.MinPower, p.MaxPower),
		tick:         time.Second / time.Duration(rate),
		maxTicks:     maxTicks,
		lastActivity: now,
	}
	m.physics = NewIntegrator(&m.balls, m.table, rate, m.rules)
	return m
}

// Tick advances exactly one physics step, ignoring the accumulator.
// It returns the turn verdict when this step settled a shot.
func (m *Match) Tick() (TurnResult, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.frameEvents = m.frameEvents[:0]
	return m.tickLocked()
}

// Advance feeds wall-clock time into the fixed-step accumulator and runs
// every whole tick it holds. Time spent paused is discarded, and a backlog
// beyond the tick cap is dropped.
func (m *Match) Advance(elapsed time.Duration) []TurnResult {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.rules.Status() == StatusPaused {
		m.accumulator = 0
		return nil
	}

	m.accumulator += elapsed
	m.frameEvents = m.frameEvents[:0]

	var results []TurnResult
	ticks := 0
	for m.accumulator >= m.tick && ticks < m.maxTicks {
		m.accumulator -= m.tick
		ticks++
		if res, ok := m.tickLocked(); ok {
			results = append(results, res)
		}
	}
	if m.accumulator >= m.tick {
		slog.Warn("match falling behind, dropping backlog", "match_id", m.ID, "backlog", m.accumulator)
		m.accumulator = 0
	}
	return results
}

func (m *Match) tickLocked() (TurnResult, bool) {
	if m.rules.Status() == StatusPaused {
		return TurnResult{}, false
	}

	moving := !m.physics.AllStopped()
	m.physics.Step()
	m.frameEvents = append(m.frameEvents, m.physics.Events()...)
	if moving {
		m.version++
	}

	if !m.shotInFlight || !m.physics.AllStopped() {
		return TurnResult{}, false
	}

	// Balls have just come to rest after a shot: judge it once.
	m.shotInFlight = false
	res := m.rules.Evaluate()
	if res.RespotCue || m.balls[CueBall].Pocketed {
		m.balls[CueBall].Place(onTable(m.profile.CueSpotX, m.profile.CueSpotZ))
		m.shot.ResetAim()
	}
	m.shot.Open()
	m.version++

	slog.Info("turn evaluated",
		"match_id", m.ID,
		"turn", res.Turn,
		"shooter", res.Shooter,
		"first_hit", res.FirstHit,
		"pocketed", res.Pocketed,
		"foul", res.Foul,
		"reason", res.FoulReason,
		"next", res.NextPlayer,
		"winner", res.Winner,
	)
	return res, true
}

// SetAimAngle updates the aim in radians.
func (m *Match) SetAimAngle(rad float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.shot.SetAimAngle(rad)
	m.touchLocked()
}

// SetShotPower updates the prepared power.
func (m *Match) SetShotPower(p float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.shot.SetShotPower(p)
	m.touchLocked()
}

// ExecuteShot takes the prepared shot. It returns false when shooting is not
// allowed: the gate is closed, the cue ball is down, or the match is paused
// or finished.
func (m *Match) ExecuteShot() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.canShootLocked() {
		return false
	}
	power := m.shot.Power()
	if !m.shot.Take(&m.balls[CueBall]) {
		return false
	}
	m.rules.BeginShot()
	m.shotInFlight = true
	m.touchLocked()

	slog.Debug("shot taken", "match_id", m.ID, "player", m.rules.CurrentPlayer(), "angle", m.shot.Angle(), "power", power)
	return true
}

// Start begins a match that has not started.
func (m *Match) Start() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.changed(m.rules.Start())
}

// Pause freezes the table.
func (m *Match) Pause() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.rules.Pause() {
		return false
	}
	m.accumulator = 0
	return m.changed(true)
}

// Resume continues a paused match.
func (m *Match) Resume() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.changed(m.rules.Resume())
}

// Restart re-racks the balls and resets the rules and shot state.
func (m *Match) Restart() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.balls = NewRackedBalls(m.profile)
	m.rules.Restart()
	m.shot.Reset()
	m.shotInFlight = false
	m.accumulator = 0
	m.frameEvents = m.frameEvents[:0]
	m.changed(true)

	slog.Info("match restarted", "match_id", m.ID)
}

// Status returns the current match status.
func (m *Match) Status() MatchStatus {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.rules.Status()
}

// CurrentPlayer returns the player to shoot, 1 or 2.
func (m *Match) CurrentPlayer() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.rules.CurrentPlayer()
}

// CanShoot reports whether ExecuteShot would currently be accepted.
func (m *Match) CanShoot() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.canShootLocked()
}

// Version increases every time the observable state changes.
func (m *Match) Version() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.version
}

// LastActivity returns when a player last sent input.
func (m *Match) LastActivity() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastActivity
}

// Profile returns the table profile the match was racked with.
func (m *Match) Profile() Profile {
	return m.profile
}

// Table returns the immutable table geometry.
func (m *Match) Table() *Table {
	return m.table
}

func (m *Match) canShootLocked() bool {
	switch m.rules.Status() {
	case StatusPaused, StatusFinished:
		return false
	}
	return m.shot.CanShoot() && !m.balls[CueBall].Pocketed
}

func (m *Match) touchLocked() {
	m.lastActivity = time.Now()
	m.version++
}

func (m *Match) changed(ok bool) bool {
	if ok {
		m.version++
	}
	return ok
}
