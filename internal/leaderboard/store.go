package leaderboard

import (
	"context"
	"fmt"
)

// NewStoreBacked ranks straight from the players table. Record is a no-op
// because settlement already persisted the new ratings.
func NewStoreBacked(players playerLister) Leaderboard {
	return &storeBoard{players: players}
}

func (b *storeBoard) Record(context.Context, []Standing) error {
	return nil
}

func (b *storeBoard) Top(ctx context.Context, n int) ([]Standing, error) {
	players, err := b.players.ListPlayersByElo(ctx, n)
	if err != nil {
		return nil, fmt.Errorf("failed to list players by elo: %w", err)
	}
	standings := make([]Standing, len(players))
	for i, p := range players {
		standings[i] = Standing{Rank: i + 1, PlayerID: p.ID, Nickname: p.Nickname, Elo: p.Elo}
	}
	return standings, nil
}
