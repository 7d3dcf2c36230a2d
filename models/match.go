package models

import (
	"fmt"
	"time"
)

type Match struct {
	ID           int       `json:"id" db:"id"`
	TournamentID int       `json:"tournament_id" db:"tournament_id"`
	Date         time.Time `json:"date" db:"date"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`

	// TournamentName is filled by list/get queries that join the parent tournament.
	TournamentName string  `json:"tournament_name,omitempty" db:"tournament_name"`
	Scores         []Score `json:"scores,omitempty" db:"-"`
}

func (m Match) String() string {
	return fmt.Sprintf("Match %d - %s", m.ID, m.TournamentName)
}
