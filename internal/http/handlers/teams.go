package handlers

import (
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/team-ladder/internal/metrics"
	"github.com/mauv0809/team-ladder/internal/notifier"
	"github.com/mauv0809/team-ladder/internal/roster"
)

type createTeamRequest struct {
	TeamName string   `json:"teamName"`
	Players  []string `json:"players"`
}

func CreateTeamHandler(store roster.RosterStore, metrics metrics.Metrics, notifier notifier.Notifier) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createTeamRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid JSON")
			return
		}

		team, err := store.CreateTeam(r.Context(), req.TeamName, req.Players)
		if err != nil {
			writeRosterError(w, err, "Failed to create team")
			return
		}
		metrics.IncTeamsCreated()
		if err := notifier.SendTeamCreatedNotification(team, IsDryRunFromContext(r)); err != nil {
			log.Warn("Failed to announce team", "teamID", team.ID, "error", err)
		}
		writeJSON(w, http.StatusOK, team)
	}
}

func ListTeamsHandler(store roster.RosterStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		teams, err := store.ListTeams(r.Context())
		if err != nil {
			writeRosterError(w, err, "Failed to retrieve teams")
			return
		}
		writeJSON(w, http.StatusOK, teams)
	}
}

func GetTeamHandler(store roster.RosterStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		team, err := store.GetTeam(r.Context(), r.PathValue("id"))
		if err != nil {
			writeRosterError(w, err, "Failed to retrieve team")
			return
		}
		writeJSON(w, http.StatusOK, team)
	}
}
