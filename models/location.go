package models

import "time"

// Location is a venue where tournaments are hosted.
type Location struct {
	ID        int       `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Address   string    `json:"address" db:"address"`
	Courts    int       `json:"courts" db:"courts"`
	Capacity  string    `json:"capacity" db:"capacity"`
	Features  []string  `json:"features" db:"features"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
