package models

import "time"

// Player is a single competitor. Names are unique across the system.
type Player struct {
	ID        int       `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	AvatarKey *string `json:"-" db:"avatar_key"`
	AvatarURL *string `json:"avatar_url,omitempty" db:"-"`

	Tournaments []Tournament `json:"tournaments,omitempty" db:"-"`
}

func (p Player) String() string {
	return p.Name
}
