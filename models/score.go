package models

import (
	"fmt"
	"time"
)

// Score is a player's result in one match.
type Score struct {
	ID        int       `json:"id" db:"id"`
	PlayerID  int       `json:"player_id" db:"player_id"`
	MatchID   int       `json:"match_id" db:"match_id"`
	Score     int       `json:"score" db:"score"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`

	PlayerName string `json:"player_name,omitempty" db:"player_name"`
}

func (s Score) String() string {
	return fmt.Sprintf("%s - %d", s.PlayerName, s.Score)
}
