package roster

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

// New creates a new RosterStore.
func New(db *sql.DB) RosterStore {
	return &store{
		db: db,
	}
}

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

const playerColumns = `id, nickname, wins, losses, elo, hours_played, team_id, rating_adjustment, created_at`

// CreatePlayer registers a new player with zeroed counters.
func (s *store) CreatePlayer(ctx context.Context, nickname string, initialElo float64) (*Player, error) {
	nickname = strings.TrimSpace(nickname)
	if nickname == "" {
		return nil, ErrNicknameRequired
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var exists bool
	err := s.db.QueryRowContext(ctx, "SELECT EXISTS(SELECT 1 FROM players WHERE nickname = ?)", nickname).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("failed to check nickname: %w", err)
	}
	if exists {
		return nil, ErrNicknameTaken
	}

	player := &Player{
		ID:        uuid.NewString(),
		Nickname:  nickname,
		Elo:       initialElo,
		CreatedAt: time.Now().UTC().Truncate(time.Second),
	}
	_, err = s.db.ExecContext(ctx,
		"INSERT INTO players (id, nickname, elo, created_at) VALUES (?, ?, ?, ?)",
		player.ID, player.Nickname, player.Elo, player.CreatedAt.Unix(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create player: %w", err)
	}

	log.Info("Created player", "playerID", player.ID, "nickname", nickname)
	return player, nil
}

// GetPlayer retrieves a single player by id.
func (s *store) GetPlayer(ctx context.Context, playerID string) (*Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return getPlayer(ctx, s.db, playerID)
}

func getPlayer(ctx context.Context, q querier, playerID string) (*Player, error) {
	row := q.QueryRowContext(ctx, "SELECT "+playerColumns+" FROM players WHERE id = ?", playerID)
	player, err := scanPlayer(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPlayerNotFound
		}
		return nil, fmt.Errorf("failed to get player: %w", err)
	}
	return player, nil
}

// ListPlayers returns every player ordered by nickname.
func (s *store) ListPlayers(ctx context.Context) ([]Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return queryPlayers(ctx, s.db, "SELECT "+playerColumns+" FROM players ORDER BY nickname")
}

// ListPlayersByElo returns the highest rated players first. A limit <= 0 returns everyone.
func (s *store) ListPlayersByElo(ctx context.Context, limit int) ([]Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if limit <= 0 {
		limit = -1
	}
	return queryPlayers(ctx, s.db, "SELECT "+playerColumns+" FROM players ORDER BY elo DESC, nickname LIMIT ?", limit)
}

// SetRatingAdjustment stores the manual override; nil clears it.
func (s *store) SetRatingAdjustment(ctx context.Context, playerID string, adjustment *int) (*Player, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var value sql.NullInt64
	if adjustment != nil {
		value = sql.NullInt64{Int64: int64(*adjustment), Valid: true}
	}
	result, err := s.db.ExecContext(ctx, "UPDATE players SET rating_adjustment = ? WHERE id = ?", value, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to set rating adjustment: %w", err)
	}
	if err := checkAffectedRows(result, ErrPlayerNotFound); err != nil {
		return nil, err
	}
	return getPlayer(ctx, s.db, playerID)
}

// CreateTeam forms a team from exactly TeamSize distinct players that are not on a team yet.
func (s *store) CreateTeam(ctx context.Context, teamName string, playerIDs []string) (*Team, error) {
	teamName = strings.TrimSpace(teamName)
	if teamName == "" {
		return nil, ErrTeamNameRequired
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var exists bool
	if err := tx.QueryRowContext(ctx, "SELECT EXISTS(SELECT 1 FROM teams WHERE team_name = ?)", teamName).Scan(&exists); err != nil {
		return nil, fmt.Errorf("failed to check team name: %w", err)
	}
	if exists {
		return nil, ErrTeamNameTaken
	}

	if len(playerIDs) != TeamSize {
		return nil, ErrTeamSize
	}
	seen := make(map[string]struct{}, len(playerIDs))
	for _, id := range playerIDs {
		if _, dup := seen[id]; dup {
			return nil, ErrDuplicatePlayers
		}
		seen[id] = struct{}{}
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(playerIDs)), ",")
	players, err := queryPlayers(ctx, tx,
		"SELECT "+playerColumns+" FROM players WHERE id IN ("+placeholders+") ORDER BY nickname",
		ToAnySlice(playerIDs)...,
	)
	if err != nil {
		return nil, err
	}
	if len(players) != TeamSize {
		return nil, ErrUnknownPlayers
	}
	for _, p := range players {
		if p.TeamID != nil {
			return nil, &AlreadyOnTeamError{PlayerID: p.ID}
		}
	}

	team := &Team{
		ID:        uuid.NewString(),
		TeamName:  teamName,
		CreatedAt: time.Now().UTC().Truncate(time.Second),
	}
	if _, err := tx.ExecContext(ctx, "INSERT INTO teams (id, team_name, created_at) VALUES (?, ?, ?)", team.ID, team.TeamName, team.CreatedAt.Unix()); err != nil {
		return nil, fmt.Errorf("failed to insert team: %w", err)
	}

	args := append([]any{team.ID}, ToAnySlice(playerIDs)...)
	result, err := tx.ExecContext(ctx, "UPDATE players SET team_id = ? WHERE team_id IS NULL AND id IN ("+placeholders+")", args...)
	if err != nil {
		return nil, fmt.Errorf("failed to assign players: %w", err)
	}
	if n, err := result.RowsAffected(); err != nil {
		return nil, fmt.Errorf("failed to check affected rows: %w", err)
	} else if n != TeamSize {
		return nil, fmt.Errorf("assigned %d of %d players: %w", n, TeamSize, ErrUnknownPlayers)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit team: %w", err)
	}

	for i := range players {
		players[i].TeamID = &team.ID
	}
	team.Players = players
	log.Info("Created team", "teamID", team.ID, "name", team.TeamName)
	return team, nil
}

// GetTeam retrieves a team and its current players.
func (s *store) GetTeam(ctx context.Context, teamID string) (*Team, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var team Team
	var createdAt int64
	err := s.db.QueryRowContext(ctx, "SELECT id, team_name, created_at FROM teams WHERE id = ?", teamID).Scan(&team.ID, &team.TeamName, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("failed to get team: %w", err)
	}
	team.CreatedAt = time.Unix(createdAt, 0).UTC()

	team.Players, err = teamPlayers(ctx, s.db, teamID)
	if err != nil {
		return nil, err
	}
	return &team, nil
}

// ListTeams returns every team with its players, ordered by name.
func (s *store) ListTeams(ctx context.Context) ([]Team, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, "SELECT id, team_name, created_at FROM teams ORDER BY team_name")
	if err != nil {
		return nil, fmt.Errorf("failed to query teams: %w", err)
	}
	defer rows.Close()

	teams := []Team{}
	for rows.Next() {
		var team Team
		var createdAt int64
		if err := rows.Scan(&team.ID, &team.TeamName, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan team row: %w", err)
		}
		team.CreatedAt = time.Unix(createdAt, 0).UTC()
		teams = append(teams, team)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	rows.Close()

	for i := range teams {
		teams[i].Players, err = teamPlayers(ctx, s.db, teams[i].ID)
		if err != nil {
			return nil, err
		}
	}
	return teams, nil
}

func teamPlayers(ctx context.Context, q querier, teamID string) ([]Player, error) {
	return queryPlayers(ctx, q, "SELECT "+playerColumns+" FROM players WHERE team_id = ? ORDER BY nickname", teamID)
}

func queryPlayers(ctx context.Context, q querier, query string, args ...any) ([]Player, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query players: %w", err)
	}
	defer rows.Close()

	players := []Player{}
	for rows.Next() {
		p, err := scanPlayer(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan player row: %w", err)
		}
		players = append(players, *p)
	}
	return players, rows.Err()
}

// scanPlayer is a helper function to scan a single player row.
func scanPlayer(scanner interface{ Scan(...any) error }) (*Player, error) {
	var p Player
	var teamID sql.NullString
	var adjustment sql.NullInt64
	var createdAt int64
	err := scanner.Scan(&p.ID, &p.Nickname, &p.Wins, &p.Losses, &p.Elo, &p.HoursPlayed, &teamID, &adjustment, &createdAt)
	if err != nil {
		return nil, err
	}
	if teamID.Valid {
		p.TeamID = &teamID.String
	}
	if adjustment.Valid {
		v := int(adjustment.Int64)
		p.RatingAdjustment = &v
	}
	p.CreatedAt = time.Unix(createdAt, 0).UTC()
	return &p, nil
}

func checkAffectedRows(result sql.Result, notFoundError error) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows: %w", err)
	}
	if rowsAffected == 0 {
		return notFoundError
	}
	return nil
}

func ToAnySlice[T any](s []T) []any {
	a := make([]any, len(s))
	for i, v := range s {
		a[i] = v
	}
	return a
}
