package leaderboard

import "context"

// Leaderboard ranks players by elo.
type Leaderboard interface {
	// Record upserts the latest elo of each standing.
	Record(ctx context.Context, standings []Standing) error
	// Top returns the n highest rated players. n <= 0 returns everyone.
	Top(ctx context.Context, n int) ([]Standing, error)
}
