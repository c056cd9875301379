package roster

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/charmbracelet/log"
)

// txStore implements Tx on top of an open *sql.Tx.
type txStore struct {
	tx *sql.Tx
}

// WithinTx acquires the store's write lock for the lifetime of the transaction so
// that concurrent units of work in this process never interleave.
func (s *store) WithinTx(ctx context.Context, fn func(tx Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err := fn(&txStore{tx: tx}); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			log.Error("Failed to roll back transaction", "error", rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (t *txStore) ResolveRosterWithPlayers(ctx context.Context, teamID string) (bool, []Player, error) {
	var exists bool
	if err := t.tx.QueryRowContext(ctx, "SELECT EXISTS(SELECT 1 FROM teams WHERE id = ?)", teamID).Scan(&exists); err != nil {
		return false, nil, fmt.Errorf("failed to check team %s: %w", teamID, err)
	}
	if !exists {
		return false, nil, nil
	}
	players, err := teamPlayers(ctx, t.tx, teamID)
	if err != nil {
		return true, nil, err
	}
	return true, players, nil
}

func (t *txStore) ApplyPlayerUpdates(ctx context.Context, updates []PlayerUpdate) error {
	stmt, err := t.tx.PrepareContext(ctx, `
		UPDATE players
		SET wins = ?, losses = ?, hours_played = ?, elo = ?
		WHERE id = ?
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare player update: %w", err)
	}
	defer stmt.Close()

	for _, u := range updates {
		result, err := stmt.ExecContext(ctx, u.Wins, u.Losses, u.HoursPlayed, u.Elo, u.PlayerID)
		if err != nil {
			return fmt.Errorf("failed to update player %s: %w", u.PlayerID, err)
		}
		if err := checkAffectedRows(result, fmt.Errorf("update player %s: %w", u.PlayerID, ErrPlayerNotFound)); err != nil {
			return err
		}
		log.Debug("Applied player update", "playerID", u.PlayerID, "elo", u.Elo, "hoursPlayed", u.HoursPlayed)
	}
	return nil
}
