package handlers

import (
	"net/http"
	"strconv"

	"mdip/core/auth"
	"mdip/core/seed"
)

type createUserRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

func (h *Handlers) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if !h.decode(w, r, &req) {
		return
	}
	user, err := h.Auth.Register(r.Context(), req.Username, req.Password, req.Role)
	if err != nil {
		h.writeError(w, err)
		return
	}
	sess := auth.FromContext(r.Context())
	h.Audits.Log(r.Context(), sess.Username, "admin.user_create", user.Username+":"+user.Role)
	writeJSON(w, http.StatusCreated, user)
}

func (h *Handlers) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.Auth.List(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

func (h *Handlers) RecentAudit(w http.ResponseWriter, r *http.Request) {
	limit := 100
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 1000 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "limit must be 1..1000"})
			return
		}
		limit = n
	}
	entries, err := h.Audits.Recent(r.Context(), limit)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

// Overview aggregates every collection's statistics for the admin dashboard.
func (h *Handlers) Overview(w http.ResponseWriter, r *http.Request) {
	incidentStats, err := h.Incidents.Stats(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	datasetStats, err := h.Datasets.Stats(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	ticketStats, err := h.Tickets.Stats(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"incidents": incidentStats,
		"datasets":  datasetStats,
		"tickets":   ticketStats,
	})
}

// ReloadData force-reloads every collection from the sample CSVs.
func (h *Handlers) ReloadData(w http.ResponseWriter, r *http.Request) {
	if h.Cfg.Seed.DataDir == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "no seed data directory configured"})
		return
	}
	counts, err := seed.ReloadSampleData(r.Context(), h.DB, h.Cfg, h.Logger)
	if err != nil {
		h.writeError(w, err)
		return
	}
	sess := auth.FromContext(r.Context())
	h.Audits.Log(r.Context(), sess.Username, "admin.reload_data", "")
	writeJSON(w, http.StatusOK, counts)
}
