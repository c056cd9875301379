package settlement

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/team-ladder/internal/leaderboard"
	"github.com/mauv0809/team-ladder/internal/metrics"
	"github.com/mauv0809/team-ladder/internal/pubsub"
	"github.com/mauv0809/team-ladder/internal/roster"
)

// errDryRun aborts the transaction of a dry run after the writes went through.
var errDryRun = errors.New("dry run")

// NewEngine creates a settlement engine. store is usually a roster.RosterStore.
func NewEngine(store txRunner, metrics metrics.Metrics, publisher pubsub.PubSubClient, board leaderboard.Leaderboard) *Engine {
	return &Engine{
		store:     store,
		metrics:   metrics,
		publisher: publisher,
		board:     board,
		now:       time.Now,
	}
}

// AnnounceWith hands every committed settlement to a, for deployments where
// nothing consumes the match-settled topic.
func (e *Engine) AnnounceWith(a Announcer) *Engine {
	e.announcer = a
	return e
}

// Settle applies m to all ten players in one transaction. With dryRun the
// result is computed against the live rosters and the transaction is rolled back.
func (e *Engine) Settle(ctx context.Context, m Match, dryRun bool) (*Result, error) {
	start := time.Now()
	fields := []any{"team1", m.Team1ID, "team2", m.Team2ID, "winner", m.WinningTeamID, "duration", m.Duration, "dryRun", dryRun}

	result, err := e.settle(ctx, m, dryRun)
	if err != nil {
		class := ClassOf(err)
		e.metrics.IncSettlementFailures(string(class))
		if class == ClassPersistence {
			log.Error("Settlement failed", append(fields, "class", class, "error", err)...)
		} else {
			log.Warn("Settlement rejected", append(fields, "class", class, "error", err)...)
		}
		return nil, err
	}
	e.metrics.ObserveSettlementDuration(time.Since(start).Seconds())

	if dryRun {
		log.Info("Dry run settlement computed", append(fields, "outcome", result.Outcome)...)
		return result, nil
	}

	log.Info("Match settled", append(fields, "outcome", result.Outcome)...)
	e.afterCommit(ctx, result)
	return result, nil
}

func (e *Engine) settle(ctx context.Context, m Match, dryRun bool) (*Result, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}

	var result *Result
	err := e.store.WithinTx(ctx, func(tx roster.Tx) error {
		exists1, team1, err := tx.ResolveRosterWithPlayers(ctx, m.Team1ID)
		if err != nil {
			return persistenceError(fmt.Errorf("resolve team %s: %w", m.Team1ID, err))
		}
		exists2, team2, err := tx.ResolveRosterWithPlayers(ctx, m.Team2ID)
		if err != nil {
			return persistenceError(fmt.Errorf("resolve team %s: %w", m.Team2ID, err))
		}
		if !exists1 {
			return newError(ClassLookup, fmt.Errorf("team %s: %w", m.Team1ID, ErrTeamNotFound))
		}
		if !exists2 {
			return newError(ClassLookup, fmt.Errorf("team %s: %w", m.Team2ID, ErrTeamNotFound))
		}

		result, err = Compute(m, team1, team2)
		if err != nil {
			return err
		}
		log.Debug("Computed settlement", "changes", len(result.Changes))

		if err := tx.ApplyPlayerUpdates(ctx, result.Updates()); err != nil {
			return persistenceError(err)
		}
		if dryRun {
			return errDryRun
		}
		return nil
	})
	switch {
	case dryRun && errors.Is(err, errDryRun):
	case err != nil:
		var se *Error
		if !errors.As(err, &se) {
			// begin or commit failed outside the callback
			err = persistenceError(err)
		}
		return nil, err
	}

	result.DryRun = dryRun
	result.SettledAt = e.now().UTC()
	return result, nil
}

// afterCommit runs the best-effort side effects of a committed settlement.
func (e *Engine) afterCommit(ctx context.Context, result *Result) {
	e.metrics.IncSettlements(string(result.Outcome))
	standings := make([]leaderboard.Standing, 0, len(result.Changes))
	for _, c := range result.Changes {
		e.metrics.ObserveEloDelta(c.EloAfter - c.EloBefore)
		standings = append(standings, leaderboard.Standing{PlayerID: c.PlayerID, Nickname: c.Nickname, Elo: c.EloAfter})
	}

	if err := e.board.Record(ctx, standings); err != nil {
		log.Error("Failed to update leaderboard", "error", err)
	}
	if err := e.publisher.SendMessage(pubsub.EventMatchSettled, result); err != nil {
		log.Error("Failed to publish settlement", "error", err)
	}
	if e.announcer != nil {
		if err := e.announcer.AnnounceSettlement(ctx, result); err != nil {
			log.Error("Failed to announce settlement", "error", err)
		}
	}
}
