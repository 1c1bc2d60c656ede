package models

import "time"

type Team struct {
	ID        int       `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	// Strength is the mean level of the members, computed by the query.
	Strength float64  `json:"strength" db:"-"`
	Members  []Player `json:"members,omitempty" db:"-"`
}

// Player is a profile from the player pool used by the team generator.
type Player struct {
	ID       int    `json:"id" db:"id"`
	Username string `json:"username" db:"username"`
	Level    int    `json:"level" db:"level"`
}
