package handlers

import (
	"net/http"

	"mdip/core/auth"
	"mdip/core/store"

	"github.com/go-chi/chi/v5"
)

func (h *Handlers) ListIncidents(w http.ResponseWriter, r *http.Request) {
	incidents, err := h.Incidents.List(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	if incidents == nil {
		incidents = []store.Incident{}
	}
	writeJSON(w, http.StatusOK, incidents)
}

func (h *Handlers) CreateIncident(w http.ResponseWriter, r *http.Request) {
	var in store.Incident
	if !h.decode(w, r, &in) {
		return
	}
	if err := h.Incidents.Create(r.Context(), &in); err != nil {
		h.writeError(w, err)
		return
	}
	sess := auth.FromContext(r.Context())
	h.Audits.Log(r.Context(), sess.Username, "incident.create", in.ID)
	writeJSON(w, http.StatusCreated, in)
}

func (h *Handlers) GetIncident(w http.ResponseWriter, r *http.Request) {
	in, err := h.Incidents.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, in)
}

func (h *Handlers) UpdateIncident(w http.ResponseWriter, r *http.Request) {
	var patch store.IncidentPatch
	if !h.decode(w, r, &patch) {
		return
	}
	id := chi.URLParam(r, "id")
	in, err := h.Incidents.Update(r.Context(), id, patch)
	if err != nil {
		h.writeError(w, err)
		return
	}
	sess := auth.FromContext(r.Context())
	h.Audits.Log(r.Context(), sess.Username, "incident.update", id)
	writeJSON(w, http.StatusOK, in)
}

func (h *Handlers) DeleteIncident(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.Incidents.Delete(r.Context(), id); err != nil {
		h.writeError(w, err)
		return
	}
	sess := auth.FromContext(r.Context())
	h.Audits.Log(r.Context(), sess.Username, "incident.delete", id)
	writeJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}

func (h *Handlers) IncidentStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Incidents.Stats(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
