package notifier

import (
	"sync"

	"github.com/mauv0809/team-ladder/internal/leaderboard"
	"github.com/mauv0809/team-ladder/internal/roster"
)

var _ Notifier = (*Mock)(nil)

// Mock is a mock implementation of the Notifier interface for testing.
// It is safe for concurrent use.
type Mock struct {
	mu sync.Mutex

	// Spies
	SendSettlementNotificationFunc  func(settled Settlement, dryRun bool) error
	SendTeamCreatedNotificationFunc func(team *roster.Team, dryRun bool) error
	FormatLeaderboardResponseFunc   func(standings []leaderboard.Standing) (any, error)

	// Call records
	SendSettlementNotificationCalls  []Settlement
	SendTeamCreatedNotificationCalls []*roster.Team
	SendLeaderboardCalls             [][]leaderboard.Standing
	LastLeaderboardResponse          any
	DryRuns                          []bool
}

// NewMock creates a new mock instance.
func NewMock() *Mock {
	return &Mock{}
}

// Reset clears all call records.
func (m *Mock) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendSettlementNotificationCalls = nil
	m.SendTeamCreatedNotificationCalls = nil
	m.SendLeaderboardCalls = nil
	m.LastLeaderboardResponse = nil
	m.DryRuns = nil
}

func (m *Mock) SendSettlementNotification(settled Settlement, dryRun bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendSettlementNotificationCalls = append(m.SendSettlementNotificationCalls, settled)
	m.DryRuns = append(m.DryRuns, dryRun)
	if m.SendSettlementNotificationFunc != nil {
		return m.SendSettlementNotificationFunc(settled, dryRun)
	}
	return nil
}

func (m *Mock) SendTeamCreatedNotification(team *roster.Team, dryRun bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendTeamCreatedNotificationCalls = append(m.SendTeamCreatedNotificationCalls, team)
	m.DryRuns = append(m.DryRuns, dryRun)
	if m.SendTeamCreatedNotificationFunc != nil {
		return m.SendTeamCreatedNotificationFunc(team, dryRun)
	}
	return nil
}

func (m *Mock) SendLeaderboard(standings []leaderboard.Standing, dryRun bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendLeaderboardCalls = append(m.SendLeaderboardCalls, standings)
	m.DryRuns = append(m.DryRuns, dryRun)
	return nil
}

func (m *Mock) FormatLeaderboardResponse(standings []leaderboard.Standing) (any, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FormatLeaderboardResponseFunc != nil {
		resp, err := m.FormatLeaderboardResponseFunc(standings)
		m.LastLeaderboardResponse = resp
		return resp, err
	}
	resp := map[string]any{"standings": standings}
	m.LastLeaderboardResponse = resp
	return resp, nil
}
