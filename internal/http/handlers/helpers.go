package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/team-ladder/internal/roster"
	"github.com/mauv0809/team-ladder/internal/settlement"
)

// ContextKey is a custom type to avoid key collisions in context.
type ContextKey string

const (
	DryRunKey ContextKey = "dryRun"
)

// IsDryRunFromContext is a helper to safely retrieve the dry_run flag from the request context.
func IsDryRunFromContext(r *http.Request) bool {
	dryRun, ok := r.Context().Value(DryRunKey).(bool)
	return ok && dryRun
}

// ErrorResponse is the body of every failed API call.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

const (
	codeBadRequest = "bad_request"
	codeInternal   = "internal"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error("Failed to write response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{Error: message, Code: code})
}

// statusForClass maps a settlement failure class to its HTTP status.
func statusForClass(class settlement.Class) int {
	switch class {
	case settlement.ClassValidation:
		return http.StatusBadRequest
	case settlement.ClassLookup:
		return http.StatusNotFound
	case settlement.ClassIntegrity:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func writeSettlementError(w http.ResponseWriter, err error) {
	class := settlement.ClassOf(err)
	message := err.Error()
	if class == settlement.ClassPersistence {
		message = settlement.ErrPersistence.Error()
	}
	writeError(w, statusForClass(class), string(class), message)
}

// writeRosterError maps roster store failures the same way the player and team routes always have:
// bad input is a 400, a missing entity a 404 and anything else a 500.
func writeRosterError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case roster.IsValidationError(err):
		writeError(w, http.StatusBadRequest, string(settlement.ClassValidation), err.Error())
	case errors.Is(err, roster.ErrPlayerNotFound), errors.Is(err, roster.ErrTeamNotFound):
		writeError(w, http.StatusNotFound, string(settlement.ClassLookup), err.Error())
	default:
		log.Error(fallback, "error", err)
		writeError(w, http.StatusInternalServerError, codeInternal, fallback)
	}
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	return dec.Decode(v)
}
