package leaderboard

import (
	"context"

	"github.com/mauv0809/team-ladder/internal/roster"
	"github.com/redis/go-redis/v9"
)

type Standing struct {
	Rank     int     `json:"rank"`
	PlayerID string  `json:"playerId"`
	Nickname string  `json:"nickname"`
	Elo      float64 `json:"elo"`
}

const (
	defaultKeyPrefix = "ladder"
	ratingsKey       = "leaderboard:elo"
	nicknamesKey     = "leaderboard:nicknames"
)

// Redis keeps the board in a sorted set of elo scores plus a hash of nicknames.
type Redis struct {
	client *redis.Client
	prefix string
}

// playerLister is the slice of roster.RosterStore the store-backed board reads from.
type playerLister interface {
	ListPlayersByElo(ctx context.Context, limit int) ([]roster.Player, error)
}

type storeBoard struct {
	players playerLister
}
