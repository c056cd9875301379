package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/team-ladder/internal/pubsub"
	"github.com/mauv0809/team-ladder/internal/settlement"
)

// Settler is implemented by *settlement.Engine.
type Settler interface {
	Settle(ctx context.Context, m settlement.Match, dryRun bool) (*settlement.Result, error)
}

type messageResponse struct {
	Message string `json:"message"`
}

// parseMatchRequest reads a settlement request body. duration has to be a JSON
// integer literal: strings, decimals and exponents are rejected.
func parseMatchRequest(body []byte) (settlement.Match, error) {
	var m settlement.Match
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return m, fmt.Errorf("invalid JSON: %w", err)
	}

	str := func(key string) (string, bool) {
		raw, ok := fields[key]
		if !ok || isNull(raw) {
			return "", true
		}
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", false
		}
		return s, true
	}

	var ok bool
	if m.Team1ID, ok = str("team1Id"); !ok {
		return m, settlement.NewValidationError(settlement.ErrMissingFields)
	}
	if m.Team2ID, ok = str("team2Id"); !ok {
		return m, settlement.NewValidationError(settlement.ErrMissingFields)
	}
	rawDuration, hasDuration := fields["duration"]
	if m.Team1ID == "" || m.Team2ID == "" || !hasDuration || isNull(rawDuration) {
		return m, settlement.NewValidationError(settlement.ErrMissingFields)
	}
	duration, err := strconv.ParseInt(string(bytes.TrimSpace(rawDuration)), 10, strconv.IntSize)
	if err != nil || duration <= 0 {
		return m, settlement.NewValidationError(settlement.ErrInvalidDuration)
	}
	m.Duration = int(duration)
	if m.WinningTeamID, ok = str("winningTeamId"); !ok {
		return m, settlement.NewValidationError(settlement.ErrInvalidWinner)
	}
	return m, m.Validate()
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

// SettleMatchHandler settles a match synchronously, or with ?async=true validates
// it and queues it on the settle-match topic. Without Pub/Sub an async request is
// settled synchronously and answered like one.
func SettleMatchHandler(engine Settler, publisher pubsub.PubSubClient) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := readBody(r)
		if err != nil {
			writeError(w, http.StatusBadRequest, codeBadRequest, "Failed to read request body")
			return
		}
		match, err := parseMatchRequest(body)
		if err != nil {
			if settlement.ClassOf(err) == settlement.ClassValidation {
				writeSettlementError(w, err)
				return
			}
			writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid JSON")
			return
		}

		async := r.URL.Query().Get("async") == "true"
		if async && !pubsub.Enabled(publisher) {
			log.Warn("Pub/Sub disabled, settling async match inline", "team1", match.Team1ID, "team2", match.Team2ID)
			async = false
		}
		if async {
			if err := publisher.SendMessage(pubsub.EventSettleMatch, match); err != nil {
				log.Error("Failed to queue match", "error", err)
				writeError(w, http.StatusInternalServerError, codeInternal, "Failed to queue match")
				return
			}
			writeJSON(w, http.StatusAccepted, messageResponse{Message: "Match queued for processing"})
			return
		}

		if _, err := engine.Settle(r.Context(), match, IsDryRunFromContext(r)); err != nil {
			writeSettlementError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, messageResponse{Message: "Match processed successfully"})
	}
}
