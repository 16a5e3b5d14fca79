package handlers

import (
	"net/http"

	"mdip/core/auth"
	"mdip/core/store"

	"github.com/go-chi/chi/v5"
)

func (h *Handlers) ListDatasets(w http.ResponseWriter, r *http.Request) {
	datasets, err := h.Datasets.List(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	if datasets == nil {
		datasets = []store.Dataset{}
	}
	writeJSON(w, http.StatusOK, datasets)
}

func (h *Handlers) CreateDataset(w http.ResponseWriter, r *http.Request) {
	var d store.Dataset
	if !h.decode(w, r, &d) {
		return
	}
	if err := h.Datasets.Create(r.Context(), &d); err != nil {
		h.writeError(w, err)
		return
	}
	sess := auth.FromContext(r.Context())
	h.Audits.Log(r.Context(), sess.Username, "dataset.create", d.ID)
	writeJSON(w, http.StatusCreated, d)
}

func (h *Handlers) GetDataset(w http.ResponseWriter, r *http.Request) {
	d, err := h.Datasets.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (h *Handlers) UpdateDataset(w http.ResponseWriter, r *http.Request) {
	var patch store.DatasetPatch
	if !h.decode(w, r, &patch) {
		return
	}
	id := chi.URLParam(r, "id")
	d, err := h.Datasets.Update(r.Context(), id, patch)
	if err != nil {
		h.writeError(w, err)
		return
	}
	sess := auth.FromContext(r.Context())
	h.Audits.Log(r.Context(), sess.Username, "dataset.update", id)
	writeJSON(w, http.StatusOK, d)
}

func (h *Handlers) DeleteDataset(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.Datasets.Delete(r.Context(), id); err != nil {
		h.writeError(w, err)
		return
	}
	sess := auth.FromContext(r.Context())
	h.Audits.Log(r.Context(), sess.Username, "dataset.delete", id)
	writeJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}

func (h *Handlers) DatasetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Datasets.Stats(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
