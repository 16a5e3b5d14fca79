package handlers

import (
	"net/http"

	"mdip/core/auth"
	"mdip/core/store"

	"github.com/go-chi/chi/v5"
)

func (h *Handlers) ListTickets(w http.ResponseWriter, r *http.Request) {
	tickets, err := h.Tickets.List(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	if tickets == nil {
		tickets = []store.Ticket{}
	}
	writeJSON(w, http.StatusOK, tickets)
}

func (h *Handlers) CreateTicket(w http.ResponseWriter, r *http.Request) {
	var t store.Ticket
	if !h.decode(w, r, &t) {
		return
	}
	if err := h.Tickets.Create(r.Context(), &t); err != nil {
		h.writeError(w, err)
		return
	}
	sess := auth.FromContext(r.Context())
	h.Audits.Log(r.Context(), sess.Username, "ticket.create", t.ID)
	writeJSON(w, http.StatusCreated, t)
}

func (h *Handlers) GetTicket(w http.ResponseWriter, r *http.Request) {
	t, err := h.Tickets.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (h *Handlers) UpdateTicket(w http.ResponseWriter, r *http.Request) {
	var patch store.TicketPatch
	if !h.decode(w, r, &patch) {
		return
	}
	id := chi.URLParam(r, "id")
	t, err := h.Tickets.Update(r.Context(), id, patch)
	if err != nil {
		h.writeError(w, err)
		return
	}
	sess := auth.FromContext(r.Context())
	h.Audits.Log(r.Context(), sess.Username, "ticket.update", id)
	writeJSON(w, http.StatusOK, t)
}

func (h *Handlers) DeleteTicket(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.Tickets.Delete(r.Context(), id); err != nil {
		h.writeError(w, err)
		return
	}
	sess := auth.FromContext(r.Context())
	h.Audits.Log(r.Context(), sess.Username, "ticket.delete", id)
	writeJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}

func (h *Handlers) TicketStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Tickets.Stats(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
