package models

import (
	"database/sql"
	"time"

	"github.com/lib/pq"
)

// MatchRecord is one row of the matches table.
type MatchRecord struct {
	ID         string         `db:"id" json:"id"`
	Status     string         `db:"status" json:"status"`
	Winner     sql.NullInt64  `db:"winner" json:"winner,omitempty"`
	Turns      int            `db:"turns" json:"turns"`
	Profile    sql.NullString `db:"profile" json:"profile,omitempty"`
	CreatedAt  time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time      `db:"updated_at" json:"updated_at"`
	FinishedAt sql.NullTime   `db:"finished_at" json:"finished_at,omitempty"`
}

// MatchTurn is one evaluated shot in match_turns.
type MatchTurn struct {
	ID           int            `db:"id" json:"id"`
	MatchID      string         `db:"match_id" json:"match_id"`
	TurnNumber   int            `db:"turn_number" json:"turn_number"`
	Shooter      int            `db:"shooter" json:"shooter"`
	RequiredBall int            `db:"required_ball" json:"required_ball"`
	FirstHit     int            `db:"first_hit" json:"first_hit"`
	Pocketed     pq.Int64Array  `db:"pocketed" json:"pocketed"`
	Scratch      bool           `db:"scratch" json:"scratch"`
	Foul         bool           `db:"foul" json:"foul"`
	FoulReason   sql.NullString `db:"foul_reason" json:"foul_reason,omitempty"`
	NextPlayer   int            `db:"next_player" json:"next_player"`
	Winner       sql.NullInt64  `db:"winner" json:"winner,omitempty"`
	CreatedAt    time.Time      `db:"created_at" json:"created_at"`
}

// AdminAccount is an operator allowed to manage matches.
type AdminAccount struct {
	Phone       string         `db:"phone" json:"phone"`
	DisplayName sql.NullString `db:"display_name" json:"display_name,omitempty"`
	TokenHash   string         `db:"token_hash" json:"-"`
	Roles       pq.StringArray `db:"roles" json:"roles"`
	CreatedAt   time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at" json:"updated_at"`
}
