package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/digicitizen/detector/internal/classify"
	"github.com/digicitizen/detector/internal/history"
	"github.com/digicitizen/detector/internal/rules"
)

// ClassifyHandler serves the hosted-classification endpoint. The analyzer
// is used to attach a rule-scorer result to the persisted submission so
// both views of the text land in history.
type ClassifyHandler struct {
	svc        *classify.Service
	analyzer   *rules.Analyzer
	historySvc *history.Service
}

func NewClassifyHandler(svc *classify.Service, a *rules.Analyzer, hs *history.Service) *ClassifyHandler {
	return &ClassifyHandler{svc: svc, analyzer: a, historySvc: hs}
}

func (h *ClassifyHandler) Classify(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.Text == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "text required"})
		return
	}

	result, err := h.svc.Classify(r.Context(), req.Text)
	if err != nil {
		writeClassifyError(w, err)
		return
	}

	var id *uuid.UUID
	if h.historySvc != nil {
		sub, herr := h.historySvc.Create(r.Context(), "classify", h.analyzer.Analyze(req.Text))
		if herr != nil {
			slog.Warn("failed to persist classification", "error", herr)
		} else {
			id = &sub.ID
			if herr := h.historySvc.SetClassification(r.Context(), sub.ID, result); herr != nil {
				slog.Warn("failed to store classification result", "error", herr)
			}
		}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"id":             id,
		"classification": result,
	})
}

// writeClassifyError maps backend failures to responses. Credential
// problems get an actionable hint; everything else reads as an upstream
// failure.
func writeClassifyError(w http.ResponseWriter, err error) {
	var be *classify.BackendError
	if errors.As(err, &be) {
		switch be.Kind {
		case classify.KindAuth, classify.KindPermission:
			writeJSON(w, http.StatusBadGateway, map[string]string{
				"error": be.Error(),
				"hint":  be.Hint(),
			})
			return
		}
	}
	writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": err.Error()})
}
