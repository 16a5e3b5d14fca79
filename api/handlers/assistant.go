package handlers

import (
	"net/http"

	"mdip/core/auth"

	"github.com/go-chi/chi/v5"
)

type chatRequest struct {
	Question string `json:"question"`
}

func (h *Handlers) AssistantChat(w http.ResponseWriter, r *http.Request) {
	domain := chi.URLParam(r, "domain")
	var req chatRequest
	if !h.decode(w, r, &req) {
		return
	}
	reply, err := h.Assistant.Chat(r.Context(), domain, req.Question)
	if err != nil {
		h.writeError(w, err)
		return
	}
	if h.AssistantUsage != nil {
		h.AssistantUsage(domain, reply.Outcome)
	}
	sess := auth.FromContext(r.Context())
	h.Audits.Log(r.Context(), sess.Username, "assistant.chat", domain+":"+reply.Outcome)
	writeJSON(w, http.StatusOK, reply)
}

func (h *Handlers) AssistantAnalyze(w http.ResponseWriter, r *http.Request) {
	domain := chi.URLParam(r, "domain")
	reply, err := h.Assistant.Analyze(r.Context(), domain)
	if err != nil {
		h.writeError(w, err)
		return
	}
	if h.AssistantUsage != nil {
		h.AssistantUsage(domain, reply.Outcome)
	}
	sess := auth.FromContext(r.Context())
	h.Audits.Log(r.Context(), sess.Username, "assistant.analyze", domain+":"+reply.Outcome)
	writeJSON(w, http.StatusOK, reply)
}
