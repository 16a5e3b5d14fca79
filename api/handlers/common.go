package handlers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"

	"mdip/config"
	"mdip/core/assistant"
	"mdip/core/auth"
	"mdip/core/rbac"
	"mdip/core/store"
	"mdip/core/utils"
)

// Handlers carries everything the HTTP layer needs. The router wires the
// session and permission middleware; handlers only do request/response work.
type Handlers struct {
	Cfg       *config.AppConfig
	DB        *sql.DB
	Logger    *utils.Logger
	Auth      *auth.Service
	Sessions  *auth.SessionManager
	Gate      *rbac.Gate
	Audits    store.AuditStore
	Incidents store.IncidentsStore
	Datasets  store.DatasetsStore
	Tickets   store.TicketsStore
	Assistant *assistant.Service
	// AssistantUsage records each assistant turn's outcome for metrics.
	AssistantUsage func(domain, outcome string)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps the service error taxonomy onto HTTP statuses. Anything
// unrecognized is a 500 with a generic body; the detail goes to the log, not
// the client.
func (h *Handlers) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrValidation):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	case errors.Is(err, auth.ErrInvalidCredentials):
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid credentials"})
	case errors.Is(err, rbac.ErrForbidden):
		writeJSON(w, http.StatusForbidden, map[string]string{"error": "forbidden"})
	case errors.Is(err, store.ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
	case errors.Is(err, auth.ErrDuplicateUser):
		writeJSON(w, http.StatusConflict, map[string]string{"error": "username already taken"})
	case errors.Is(err, assistant.ErrUnavailable):
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "assistant unavailable"})
	default:
		h.Logger.Errorf("internal error: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
}

// decode parses a JSON body strictly: unknown fields are a client error.
func (h *Handlers) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "malformed request body: " + err.Error()})
		return false
	}
	return true
}
