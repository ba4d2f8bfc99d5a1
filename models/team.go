package models

import "time"

// Team belongs to exactly one tournament. Players is an ordered roster of
// player names.
type Team struct {
	ID           int       `json:"id" db:"id"`
	Name         string    `json:"name" db:"name"`
	TournamentID int       `json:"tournament_id" db:"tournament_id"`
	Players      []string  `json:"players" db:"players"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}
