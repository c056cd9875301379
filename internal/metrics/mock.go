package metrics

import "sync"

// Mock is a mock implementation of the Metrics interface for testing.
// It is safe for concurrent use.
type Mock struct {
	mu                  sync.Mutex
	settlements         map[string]int
	settlementFailures  map[string]int
	settlementDurations []float64
	eloDeltas           []float64
	playersCreated      int
	teamsCreated        int
	slackNotifSent      int
	slackNotifFailed    int
	startupTime         float64
}

var _ Metrics = (*Mock)(nil)

// NewMock creates a new mock instance.
func NewMock() *Mock {
	return &Mock{
		settlements:        make(map[string]int),
		settlementFailures: make(map[string]int),
	}
}

func (m *Mock) IncSettlements(outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.settlements[outcome]++
}

func (m *Mock) IncSettlementFailures(class string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.settlementFailures[class]++
}

func (m *Mock) ObserveSettlementDuration(seconds float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.settlementDurations = append(m.settlementDurations, seconds)
}

func (m *Mock) ObserveEloDelta(delta float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.eloDeltas = append(m.eloDeltas, delta)
}

func (m *Mock) IncPlayersCreated() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.playersCreated++
}

func (m *Mock) IncTeamsCreated() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.teamsCreated++
}

func (m *Mock) IncSlackNotifSent() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.slackNotifSent++
}

func (m *Mock) IncSlackNotifFailed() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.slackNotifFailed++
}

func (m *Mock) SetStartupTime(duration float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.startupTime = duration
}

// Settlements returns how many settlements were recorded for the outcome.
func (m *Mock) Settlements(outcome string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.settlements[outcome]
}

// SettlementFailures returns how many failures were recorded for the class.
func (m *Mock) SettlementFailures(class string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.settlementFailures[class]
}

// EloDeltas returns a copy of every observed rating change.
func (m *Mock) EloDeltas() []float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]float64(nil), m.eloDeltas...)
}

// PlayersCreated returns the number of times IncPlayersCreated was called.
func (m *Mock) PlayersCreated() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.playersCreated
}

// TeamsCreated returns the number of times IncTeamsCreated was called.
func (m *Mock) TeamsCreated() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.teamsCreated
}

// SlackNotifSent returns the number of times IncSlackNotifSent was called.
func (m *Mock) SlackNotifSent() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.slackNotifSent
}

// SlackNotifFailed returns the number of times IncSlackNotifFailed was called.
func (m *Mock) SlackNotifFailed() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.slackNotifFailed
}
