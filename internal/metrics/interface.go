package metrics

// Metrics defines the interface for collecting application metrics.
// This decouples the application from the specific metrics implementation (e.g., Prometheus).
type Metrics interface {
	IncSettlements(outcome string)
	IncSettlementFailures(class string)
	ObserveSettlementDuration(seconds float64)
	ObserveEloDelta(delta float64)
	IncPlayersCreated()
	IncTeamsCreated()
	IncSlackNotifSent()
	IncSlackNotifFailed()
	SetStartupTime(duration float64)
}
