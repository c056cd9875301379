package roster

import (
	"database/sql"
	"sync"
	"time"
)

// TeamSize is the number of distinct players a team is formed with.
const TeamSize = 5

// store handles all database operations for players and teams.
type store struct {
	db *sql.DB
	mu sync.RWMutex
}

// Player represents a player in the store.
type Player struct {
	ID               string    `json:"id"`
	Nickname         string    `json:"nickname"`
	Wins             int       `json:"wins"`
	Losses           int       `json:"losses"`
	Elo              float64   `json:"elo"`
	HoursPlayed      int       `json:"hoursPlayed"`
	TeamID           *string   `json:"teamId"`
	RatingAdjustment *int      `json:"ratingAdjustment"`
	CreatedAt        time.Time `json:"createdAt"`
}

// Team is a named group of TeamSize players.
type Team struct {
	ID        string    `json:"id"`
	TeamName  string    `json:"teamName"`
	Players   []Player  `json:"players"`
	CreatedAt time.Time `json:"createdAt"`
}

// PlayerUpdate carries the settled counters and rating for one player.
type PlayerUpdate struct {
	PlayerID    string
	Wins        int
	Losses      int
	HoursPlayed int
	Elo         float64
}
