package game

// MatchStatus represents the current state of a match.
type MatchStatus string

const (
	StatusNotStarted MatchStatus = "NOT_STARTED"
	StatusInProgress MatchStatus = "IN_PROGRESS"
	StatusPaused     MatchStatus = "PAUSED"
	StatusFinished   MatchStatus = "FINISHED"
)

// Foul reasons reported in a TurnResult.
const (
	FoulScratch       = "scratch"
	FoulNoContact     = "no_contact"
	FoulWrongFirstHit = "wrong_first_contact"
)

// otherPlayer returns the opponent of player 1 or 2.
func otherPlayer(p int) int {
	if p == 1 {
		return 2
	}
	return 1
}
