package models

import (
	"fmt"
	"time"
)

// Tournament представляет турнир.
type Tournament struct {
	ID        int       `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Date      time.Time `json:"date" db:"date"`
	Winner    *string   `json:"winner,omitempty" db:"winner"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`

	// Optional linked data, populated by services when needed
	Players []Player `json:"players,omitempty" db:"-"`
	Matches []Match  `json:"matches,omitempty" db:"-"`
}

// DefaultTournamentName is the name given to a tournament created without one.
func DefaultTournamentName(existing int) string {
	return fmt.Sprintf("Tournament %d", existing+1)
}

func (t Tournament) HasWinner() bool {
	return t.Winner != nil && *t.Winner != ""
}

func (t Tournament) String() string {
	return t.Name
}
