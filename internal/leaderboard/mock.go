package leaderboard

import (
	"context"
	"sort"
	"sync"
)

var _ Leaderboard = (*Mock)(nil)

// Mock is an in-memory Leaderboard with call records.
type Mock struct {
	mu     sync.Mutex
	scores map[string]Standing

	RecordFunc func(standings []Standing) error

	RecordCalls [][]Standing
	TopCalls    []int
}

func NewMock() *Mock {
	return &Mock{scores: make(map[string]Standing)}
}

func (m *Mock) Record(_ context.Context, standings []Standing) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RecordCalls = append(m.RecordCalls, standings)
	if m.RecordFunc != nil {
		if err := m.RecordFunc(standings); err != nil {
			return err
		}
	}
	for _, s := range standings {
		m.scores[s.PlayerID] = s
	}
	return nil
}

func (m *Mock) Top(_ context.Context, n int) ([]Standing, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.TopCalls = append(m.TopCalls, n)
	out := make([]Standing, 0, len(m.scores))
	for _, s := range m.scores {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Elo != out[j].Elo {
			return out[i].Elo > out[j].Elo
		}
		return out[i].PlayerID > out[j].PlayerID
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	for i := range out {
		out[i].Rank = i + 1
	}
	return out, nil
}
