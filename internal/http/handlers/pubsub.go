package handlers

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/team-ladder/internal/notifier"
	"github.com/mauv0809/team-ladder/internal/pubsub"
	"github.com/mauv0809/team-ladder/internal/roster"
	"github.com/mauv0809/team-ladder/internal/settlement"
)

func readBody(r *http.Request) ([]byte, error) {
	bodyBytes, err := io.ReadAll(r.Body)
	if err != nil {
		log.Error("Failed to read request body", "error", err)
		return nil, err
	}
	return bodyBytes, nil
}

// decodePushMessage unwraps a Pub/Sub push envelope and decodes its payload into out.
func decodePushMessage(r *http.Request, client pubsub.PubSubClient, out any) (int, error) {
	bodyBytes, err := readBody(r)
	if err != nil {
		return http.StatusInternalServerError, fmt.Errorf("failed to read request body: %w", err)
	}
	log.Debug("Received push message", "path", r.URL.Path, "body", string(bodyBytes))

	var msg pubsub.PushMessage
	if err := json.Unmarshal(bodyBytes, &msg); err != nil {
		return http.StatusBadRequest, fmt.Errorf("invalid JSON: %w", err)
	}
	rawData, err := base64.StdEncoding.DecodeString(msg.Message.Data)
	if err != nil {
		return http.StatusBadRequest, fmt.Errorf("invalid base64 data: %w", err)
	}
	if err := client.ProcessMessage(rawData, out); err != nil {
		return http.StatusBadRequest, fmt.Errorf("invalid payload: %w", err)
	}
	return http.StatusOK, nil
}

// SettleMatchPushHandler settles matches queued on the settle-match topic. Requests
// that can never succeed are acknowledged so Pub/Sub stops redelivering them;
// persistence failures return 500 so the message is retried.
func SettleMatchPushHandler(engine Settler, client pubsub.PubSubClient) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var match settlement.Match
		if status, err := decodePushMessage(r, client, &match); err != nil {
			log.Error("Failed to decode settle-match message", "error", err)
			http.Error(w, err.Error(), status)
			return
		}

		_, err := engine.Settle(r.Context(), match, IsDryRunFromContext(r))
		if err != nil {
			if settlement.ClassOf(err) == settlement.ClassPersistence {
				http.Error(w, "Failed to settle match", http.StatusInternalServerError)
				return
			}
			log.Warn("Dropping unsettleable match", "error", err)
		}
		w.Write([]byte("OK"))
	}
}

// MatchSettledPushHandler announces settled matches.
func MatchSettledPushHandler(store roster.RosterStore, n notifier.Notifier, client pubsub.PubSubClient) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var result settlement.Result
		if status, err := decodePushMessage(r, client, &result); err != nil {
			log.Error("Failed to decode match-settled message", "error", err)
			http.Error(w, err.Error(), status)
			return
		}

		if err := notifier.AnnounceSettlement(r.Context(), store, n, &result, IsDryRunFromContext(r)); err != nil {
			log.Error("Failed to notify settlement", "error", err)
			http.Error(w, "Failed to notify settlement", http.StatusInternalServerError)
			return
		}
		w.Write([]byte("OK"))
	}
}
