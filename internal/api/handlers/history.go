package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/digicitizen/detector/internal/history"
	"github.com/digicitizen/detector/internal/vectorstore"
)

type HistoryHandler struct {
	svc     *history.Service
	vectors *vectorstore.Store
}

func NewHistoryHandler(svc *history.Service, vs *vectorstore.Store) *HistoryHandler {
	return &HistoryHandler{svc: svc, vectors: vs}
}

func (h *HistoryHandler) List(w http.ResponseWriter, r *http.Request) {
	if h.svc == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "history storage unavailable"})
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	subs, err := h.svc.List(r.Context(), limit, offset)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"submissions": subs})
}

func (h *HistoryHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h.svc == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "history storage unavailable"})
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid submission ID"})
		return
	}

	sub, err := h.svc.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, history.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "submission not found"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, sub)
}

func (h *HistoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if h.svc == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "history storage unavailable"})
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid submission ID"})
		return
	}

	if h.vectors != nil {
		// Best effort; a dangling embedding row is harmless.
		_ = h.vectors.Delete(r.Context(), id)
	}

	if err := h.svc.Delete(r.Context(), id); err != nil {
		if errors.Is(err, history.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "submission not found"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *HistoryHandler) Similar(w http.ResponseWriter, r *http.Request) {
	if h.vectors == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "similarity search unavailable"})
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid submission ID"})
		return
	}

	topK, _ := strconv.Atoi(r.URL.Query().Get("top_k"))

	results, err := h.vectors.Similar(r.Context(), id, topK)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"similar": results})
}
