package roster

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MockStore is an in-memory implementation of the RosterStore interface for testing.
// Transactions work on a copy of the players that only replaces the live state on commit.
// It is safe for concurrent use.
type MockStore struct {
	mu      sync.Mutex
	players map[string]Player
	teams   map[string]Team

	// Failure injection
	BeginTxFunc            func() error
	CommitFunc             func() error
	ResolveRosterFunc      func(teamID string) (bool, []Player, error)
	ApplyPlayerUpdatesFunc func(updates []PlayerUpdate) error
	// FailOnUpdate is consulted before each individual write inside ApplyPlayerUpdates.
	FailOnUpdate func(index int, update PlayerUpdate) error

	// Call records
	WithinTxCalls           int
	ResolveRosterCalls      []string
	ApplyPlayerUpdatesCalls [][]PlayerUpdate
	Commits                 int
	Rollbacks               int
}

var _ RosterStore = (*MockStore)(nil)

// NewMock creates a new, empty mock store.
func NewMock() *MockStore {
	return &MockStore{
		players: make(map[string]Player),
		teams:   make(map[string]Team),
	}
}

// Reset clears all call records.
func (m *MockStore) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.WithinTxCalls = 0
	m.ResolveRosterCalls = nil
	m.ApplyPlayerUpdatesCalls = nil
	m.Commits = 0
	m.Rollbacks = 0
}

// AddPlayer seeds a player directly, bypassing validation.
func (m *MockStore) AddPlayer(p Player) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.players[p.ID] = p
}

// AddTeam seeds a team and assigns the given players to it.
func (m *MockStore) AddTeam(teamID, teamName string, players ...Player) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.teams[teamID] = Team{ID: teamID, TeamName: teamName}
	for _, p := range players {
		id := teamID
		p.TeamID = &id
		m.players[p.ID] = p
	}
}

// Player returns the committed state of a player.
func (m *MockStore) Player(playerID string) (Player, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.players[playerID]
	return p, ok
}

func (m *MockStore) CreatePlayer(_ context.Context, nickname string, initialElo float64) (*Player, error) {
	nickname = strings.TrimSpace(nickname)
	if nickname == "" {
		return nil, ErrNicknameRequired
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.players {
		if p.Nickname == nickname {
			return nil, ErrNicknameTaken
		}
	}
	p := Player{ID: uuid.NewString(), Nickname: nickname, Elo: initialElo, CreatedAt: time.Now().UTC()}
	m.players[p.ID] = p
	return &p, nil
}

func (m *MockStore) GetPlayer(_ context.Context, playerID string) (*Player, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.players[playerID]
	if !ok {
		return nil, ErrPlayerNotFound
	}
	return &p, nil
}

func (m *MockStore) ListPlayers(_ context.Context) ([]Player, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return sortedPlayers(m.players, func(a, b Player) bool { return a.Nickname < b.Nickname }), nil
}

func (m *MockStore) ListPlayersByElo(_ context.Context, limit int) ([]Player, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	players := sortedPlayers(m.players, func(a, b Player) bool {
		if a.Elo != b.Elo {
			return a.Elo > b.Elo
		}
		return a.Nickname < b.Nickname
	})
	if limit > 0 && len(players) > limit {
		players = players[:limit]
	}
	return players, nil
}

func (m *MockStore) SetRatingAdjustment(_ context.Context, playerID string, adjustment *int) (*Player, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.players[playerID]
	if !ok {
		return nil, ErrPlayerNotFound
	}
	p.RatingAdjustment = adjustment
	m.players[playerID] = p
	return &p, nil
}

func (m *MockStore) CreateTeam(_ context.Context, teamName string, playerIDs []string) (*Team, error) {
	teamName = strings.TrimSpace(teamName)
	if teamName == "" {
		return nil, ErrTeamNameRequired
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.teams {
		if t.TeamName == teamName {
			return nil, ErrTeamNameTaken
		}
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
	for _, id := range playerIDs {
		p, ok := m.players[id]
		if !ok {
			return nil, ErrUnknownPlayers
		}
		if p.TeamID != nil {
			return nil, &AlreadyOnTeamError{PlayerID: id}
		}
	}

	team := Team{ID: uuid.NewString(), TeamName: teamName, CreatedAt: time.Now().UTC()}
	m.teams[team.ID] = team
	for _, id := range playerIDs {
		p := m.players[id]
		p.TeamID = &team.ID
		m.players[id] = p
	}
	team.Players = m.membersOf(m.players, team.ID)
	return &team, nil
}

func (m *MockStore) GetTeam(_ context.Context, teamID string) (*Team, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.teams[teamID]
	if !ok {
		return nil, ErrTeamNotFound
	}
	t.Players = m.membersOf(m.players, teamID)
	return &t, nil
}

func (m *MockStore) ListTeams(_ context.Context) ([]Team, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	teams := make([]Team, 0, len(m.teams))
	for _, t := range m.teams {
		t.Players = m.membersOf(m.players, t.ID)
		teams = append(teams, t)
	}
	sort.Slice(teams, func(i, j int) bool { return teams[i].TeamName < teams[j].TeamName })
	return teams, nil
}

// WithinTx holds the mock lock for the whole unit of work, mirroring the SQL store.
func (m *MockStore) WithinTx(_ context.Context, fn func(tx Tx) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.WithinTxCalls++

	if m.BeginTxFunc != nil {
		if err := m.BeginTxFunc(); err != nil {
			return fmt.Errorf("failed to begin transaction: %w", err)
		}
	}

	working := make(map[string]Player, len(m.players))
	for id, p := range m.players {
		working[id] = p
	}

	if err := fn(&mockTx{m: m, players: working}); err != nil {
		m.Rollbacks++
		return err
	}
	if m.CommitFunc != nil {
		if err := m.CommitFunc(); err != nil {
			m.Rollbacks++
			return fmt.Errorf("failed to commit transaction: %w", err)
		}
	}
	m.players = working
	m.Commits++
	return nil
}

// mockTx is only used while the owning MockStore's lock is held.
type mockTx struct {
	m       *MockStore
	players map[string]Player
}

func (t *mockTx) ResolveRosterWithPlayers(_ context.Context, teamID string) (bool, []Player, error) {
	t.m.ResolveRosterCalls = append(t.m.ResolveRosterCalls, teamID)
	if t.m.ResolveRosterFunc != nil {
		return t.m.ResolveRosterFunc(teamID)
	}
	if _, ok := t.m.teams[teamID]; !ok {
		return false, nil, nil
	}
	return true, t.m.membersOf(t.players, teamID), nil
}

func (t *mockTx) ApplyPlayerUpdates(_ context.Context, updates []PlayerUpdate) error {
	t.m.ApplyPlayerUpdatesCalls = append(t.m.ApplyPlayerUpdatesCalls, updates)
	if t.m.ApplyPlayerUpdatesFunc != nil {
		if err := t.m.ApplyPlayerUpdatesFunc(updates); err != nil {
			return err
		}
	}
	for i, u := range updates {
		if t.m.FailOnUpdate != nil {
			if err := t.m.FailOnUpdate(i, u); err != nil {
				return fmt.Errorf("failed to update player %s: %w", u.PlayerID, err)
			}
		}
		p, ok := t.players[u.PlayerID]
		if !ok {
			return fmt.Errorf("update player %s: %w", u.PlayerID, ErrPlayerNotFound)
		}
		p.Wins = u.Wins
		p.Losses = u.Losses
		p.HoursPlayed = u.HoursPlayed
		p.Elo = u.Elo
		t.players[u.PlayerID] = p
	}
	return nil
}

func (m *MockStore) membersOf(players map[string]Player, teamID string) []Player {
	members := []Player{}
	for _, p := range players {
		if p.TeamID != nil && *p.TeamID == teamID {
			members = append(members, p)
		}
	}
	sort.Slice(members, func(i, j int) bool { return members[i].Nickname < members[j].Nickname })
	return members
}

func sortedPlayers(players map[string]Player, less func(a, b Player) bool) []Player {
	out := make([]Player, 0, len(players))
	for _, p := range players {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out
}
