package roster

import "context"

// RosterStore defines the interface for interacting with players and teams.
type RosterStore interface {
	CreatePlayer(ctx context.Context, nickname string, initialElo float64) (*Player, error)
	GetPlayer(ctx context.Context, playerID string) (*Player, error)
	ListPlayers(ctx context.Context) ([]Player, error)
	ListPlayersByElo(ctx context.Context, limit int) ([]Player, error)
	SetRatingAdjustment(ctx context.Context, playerID string, adjustment *int) (*Player, error)
	CreateTeam(ctx context.Context, teamName string, playerIDs []string) (*Team, error)
	GetTeam(ctx context.Context, teamID string) (*Team, error)
	ListTeams(ctx context.Context) ([]Team, error)

	// WithinTx runs fn in a single transaction. The transaction is committed
	// when fn returns nil and rolled back otherwise.
	WithinTx(ctx context.Context, fn func(tx Tx) error) error
}

// Tx is the unit of work handed to WithinTx callbacks.
type Tx interface {
	// ResolveRosterWithPlayers reports whether the team exists and returns its current players.
	ResolveRosterWithPlayers(ctx context.Context, teamID string) (bool, []Player, error)
	// ApplyPlayerUpdates writes every update or fails; each update must match exactly one player.
	ApplyPlayerUpdates(ctx context.Context, updates []PlayerUpdate) error
}
