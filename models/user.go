package models

import (
	"time"
)

// User represents a Discord user's coin account and game counters
type User struct {
	DiscordID   int64     `db:"discord_id"`
	Username    string    `db:"username"`
	Balance     int64     `db:"balance"`
	GamesPlayed int       `db:"games_played"`
	GamesWon    int       `db:"games_won"`
	GamesLost   int       `db:"games_lost"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}
