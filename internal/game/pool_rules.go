package game

// TurnOutcome accumulates the facts of a single shot until it is evaluated.
type TurnOutcome struct {
	Shooter         int   `json:"shooter"`
	Required        int   `json:"required"`
	FirstHit        int   `json:"first_hit"` // NoBall until the cue ball touches something
	FirstHitCorrect bool  `json:"first_hit_correct"`
	Pocketed        []int `json:"pocketed"` // object balls only
	Scratch         bool  `json:"scratch"`
	Foul            bool  `json:"foul"`
	Switched        bool  `json:"switched"`
}

func newTurnOutcome(shooter, required int) TurnOutcome {
	return TurnOutcome{
		Shooter:  shooter,
		Required: required,
		FirstHit: NoBall,
		Pocketed: []int{},
	}
}

func (t *TurnOutcome) pocketedGameBall() bool {
	for _, n := range t.Pocketed {
		if n == GameBall {
			return true
		}
	}
	return false
}

// TurnResult is the verdict for one evaluated shot.
type TurnResult struct {
	Turn            int    `json:"turn"`
	Shooter         int    `json:"shooter"`
	Required        int    `json:"required"`
	FirstHit        int    `json:"first_hit"`
	Pocketed        []int  `json:"pocketed"`
	Scratch         bool   `json:"scratch"`
	Foul            bool   `json:"foul"`
	FoulReason      string `json:"foul_reason,omitempty"`
	Switched        bool   `json:"switched"`
	RespotCue       bool   `json:"respot_cue"`
	NextPlayer      int    `json:"next_player"`
	GameOver        bool   `json:"game_over"`
	Winner          int    `json:"winner,omitempty"`
	LowestRemaining int    `json:"lowest_remaining"`
}

// TurnEngine is the nine-ball rule state machine. It only sees facts
// (contacts, pocketings, evaluation requests) and never touches ball state.
type TurnEngine struct {
	status     MatchStatus
	pausedFrom MatchStatus
	current    int
	winner     int
	lowest     int
	pocketed   [NumBalls]bool
	outcome    TurnOutcome
	turns      int
	last       *TurnResult
}

// NewTurnEngine returns an engine for a fresh rack with player 1 to break.
func NewTurnEngine() *TurnEngine {
	e := &TurnEngine{}
	e.Restart()
	return e
}

// Restart clears every counter and returns to NotStarted. Valid from any status.
func (e *TurnEngine) Restart() {
	e.status = StatusNotStarted
	e.pausedFrom = ""
	e.current = 1
	e.winner = 0
	e.pocketed = [NumBalls]bool{}
	e.lowest = e.lowestRemaining()
	e.turns = 0
	e.last = nil
	e.outcome = newTurnOutcome(e.current, e.lowest)
}

// Start moves a fresh match into play.
func (e *TurnEngine) Start() bool {
	if e.status != StatusNotStarted {
		return false
	}
	e.status = StatusInProgress
	return true
}

// Pause suspends a match that is running or has not started yet.
func (e *TurnEngine) Pause() bool {
	if e.status != StatusInProgress && e.status != StatusNotStarted {
		return false
	}
	e.pausedFrom = e.status
	e.status = StatusPaused
	return true
}

// Resume returns to the status held before Pause.
func (e *TurnEngine) Resume() bool {
	if e.status != StatusPaused {
		return false
	}
	e.status = e.pausedFrom
	if e.status == "" {
		e.status = StatusInProgress
	}
	e.pausedFrom = ""
	return true
}

// BeginShot opens a new accumulator for the current player. The first shot
// of a match also starts it.
func (e *TurnEngine) BeginShot() {
	if e.status == StatusNotStarted {
		e.status = StatusInProgress
	}
	e.outcome = newTurnOutcome(e.current, e.lowest)
}

// FirstContact records the object ball the cue ball touched. Only the first
// call per turn counts.
func (e *TurnEngine) FirstContact(number int) {
	if e.outcome.FirstHit != NoBall || number <= CueBall || number >= NumBalls {
		return
	}
	e.outcome.FirstHit = number
	e.outcome.FirstHitCorrect = number == e.outcome.Required
}

// BallPocketed records a pocketing. The cue ball is a scratch: a foul with
// possession handed over straight away.
func (e *TurnEngine) BallPocketed(number int) {
	if number < CueBall || number >= NumBalls {
		return
	}
	if number == CueBall {
		e.outcome.Scratch = true
		e.outcome.Foul = true
		e.switchOnce()
		return
	}
	if e.pocketed[number] {
		return
	}
	e.pocketed[number] = true
	e.outcome.Pocketed = append(e.outcome.Pocketed, number)
	e.lowest = e.lowestRemaining()
}

// Evaluate judges the accumulated turn, then starts a fresh accumulator.
// A foul always hands over possession, and possession changes at most once.
func (e *TurnEngine) Evaluate() TurnResult {
	t := &e.outcome

	reason := ""
	if t.Scratch {
		reason = FoulScratch
	}
	if !t.FirstHitCorrect {
		t.Foul = true
		if reason == "" {
			if t.FirstHit == NoBall {
				reason = FoulNoContact
			} else {
				reason = FoulWrongFirstHit
			}
		}
	}

	if len(t.Pocketed) == 0 && t.FirstHitCorrect {
		e.switchOnce()
	}
	if t.Foul {
		e.switchOnce()
	}

	if t.pocketedGameBall() {
		e.status = StatusFinished
		e.pausedFrom = ""
		if t.Foul {
			e.winner = otherPlayer(t.Shooter)
		} else {
			e.winner = t.Shooter
		}
	}

	e.lowest = e.lowestRemaining()
	e.turns++

	result := TurnResult{
		Turn:            e.turns,
		Shooter:         t.Shooter,
		Required:        t.Required,
		FirstHit:        t.FirstHit,
		Pocketed:        append([]int(nil), t.Pocketed...),
		Scratch:         t.Scratch,
		Foul:            t.Foul,
		FoulReason:      reason,
		Switched:        t.Switched,
		RespotCue:       t.Foul,
		NextPlayer:      e.current,
		GameOver:        e.status == StatusFinished,
		Winner:          e.winner,
		LowestRemaining: e.lowest,
	}
	if result.Pocketed == nil {
		result.Pocketed = []int{}
	}
	e.last = &result
	e.outcome = newTurnOutcome(e.current, e.lowest)
	return result
}

func (e *TurnEngine) switchOnce() {
	if e.outcome.Switched {
		return
	}
	e.outcome.Switched = true
	e.current = otherPlayer(e.current)
}

func (e *TurnEngine) lowestRemaining() int {
	for n := 1; n < NumBalls; n++ {
		if !e.pocketed[n] {
			return n
		}
	}
	return GameBall
}

// Status returns the match status.
func (e *TurnEngine) Status() MatchStatus { return e.status }

// CurrentPlayer returns 1 or 2.
func (e *TurnEngine) CurrentPlayer() int { return e.current }

// Winner returns the winning player, or 0 while the match is undecided.
func (e *TurnEngine) Winner() int { return e.winner }

// LowestRemaining returns the ball the next shot must hit first.
func (e *TurnEngine) LowestRemaining() int { return e.lowest }

// Turns returns how many shots have been evaluated since the last restart.
func (e *TurnEngine) Turns() int { return e.turns }

// IsPocketed reports whether the engine has seen ball n drop.
func (e *TurnEngine) IsPocketed(n int) bool {
	if n <= CueBall || n >= NumBalls {
		return false
	}
	return e.pocketed[n]
}

// Outcome returns a copy of the in-flight accumulator.
func (e *TurnEngine) Outcome() TurnOutcome {
	o := e.outcome
	o.Pocketed = append([]int{}, e.outcome.Pocketed...)
	return o
}

// LastTurn returns the most recent verdict, if any.
func (e *TurnEngine) LastTurn() (TurnResult, bool) {
	if e.last == nil {
		return TurnResult{}, false
	}
	r := *e.last
	r.Pocketed = append([]int{}, e.last.Pocketed...)
	return r, true
}
