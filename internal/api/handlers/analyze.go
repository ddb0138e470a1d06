package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/digicitizen/detector/internal/history"
	"github.com/digicitizen/detector/internal/queue"
	"github.com/digicitizen/detector/internal/rules"
	"github.com/digicitizen/detector/pkg/textextract"
)

const (
	maxBatchSize       = 50
	maxTranscriptLines = 500
	maxUploadBytes     = 10 << 20
)

// AnalyzeHandler serves the rule-scorer endpoints. History and queue are
// optional; without them analysis still works, it just isn't persisted or
// classified asynchronously.
type AnalyzeHandler struct {
	analyzer    *rules.Analyzer
	historySvc  *history.Service
	queueClient *queue.Client
}

func NewAnalyzeHandler(a *rules.Analyzer, hs *history.Service, qc *queue.Client) *AnalyzeHandler {
	return &AnalyzeHandler{
		analyzer:    a,
		historySvc:  hs,
		queueClient: qc,
	}
}

type analyzeResponse struct {
	ID *uuid.UUID `json:"id,omitempty"`
	rules.AnalysisResult
}

// Analyze scores a single text. The scorer is total over strings, so an
// empty text is accepted and yields a zero score.
func (h *AnalyzeHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	res := h.analyzer.Analyze(req.Text)
	resp := analyzeResponse{AnalysisResult: res}

	if h.historySvc != nil {
		sub, err := h.historySvc.Create(r.Context(), "api", res)
		if err != nil {
			slog.Warn("failed to persist analysis", "error", err)
		} else {
			resp.ID = &sub.ID
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

// Batch scores up to maxBatchSize texts and, when storage and the queue
// are available, schedules hosted classification for each.
func (h *AnalyzeHandler) Batch(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Texts []string `json:"texts"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if len(req.Texts) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "texts required"})
		return
	}
	if len(req.Texts) > maxBatchSize {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "too many texts, max 50"})
		return
	}

	items := make([]analyzeResponse, 0, len(req.Texts))
	for _, text := range req.Texts {
		res := h.analyzer.Analyze(text)
		item := analyzeResponse{AnalysisResult: res}

		if h.historySvc != nil {
			sub, err := h.historySvc.Create(r.Context(), "batch", res)
			if err != nil {
				slog.Warn("failed to persist batch item", "error", err)
			} else {
				item.ID = &sub.ID
				if h.queueClient != nil {
					err := h.queueClient.EnqueueClassifySubmission(queue.ClassifySubmissionPayload{
						SubmissionID: sub.ID.String(),
					})
					if err != nil {
						slog.Warn("failed to enqueue classification", "submission_id", sub.ID, "error", err)
					}
				}
			}
		}

		items = append(items, item)
	}

	status := http.StatusOK
	if h.queueClient != nil && h.historySvc != nil {
		status = http.StatusAccepted
	}
	writeJSON(w, status, map[string]interface{}{"items": items})
}

// Transcript accepts an uploaded chat transcript (pdf, docx, or txt) and
// scores each non-empty line.
func (h *AnalyzeHandler) Transcript(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid multipart form"})
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "file required"})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxUploadBytes))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "read upload: " + err.Error()})
		return
	}

	ext := filepath.Ext(header.Filename)
	transcript, err := textextract.Extract(bytes.NewReader(data), int64(len(data)), ext)
	if err != nil {
		writeJSON(w, http.StatusUnsupportedMediaType, map[string]string{"error": err.Error()})
		return
	}

	lines := transcript.Lines()
	if len(lines) > maxTranscriptLines {
		lines = lines[:maxTranscriptLines]
	}

	type lineResult struct {
		Line string `json:"line"`
		analyzeResponse
	}
	results := make([]lineResult, 0, len(lines))
	for _, line := range lines {
		res := h.analyzer.Analyze(line)
		lr := lineResult{Line: line, analyzeResponse: analyzeResponse{AnalysisResult: res}}

		if h.historySvc != nil {
			sub, err := h.historySvc.Create(r.Context(), "transcript", res)
			if err != nil {
				slog.Warn("failed to persist transcript line", "error", err)
			} else {
				lr.ID = &sub.ID
			}
		}
		results = append(results, lr)
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"pages": transcript.Pages,
		"lines": results,
	})
}

// Preset is one of the demo texts from the original UI.
type Preset struct {
	Name string `json:"name"`
	Text string `json:"text"`
}

var presets = []Preset{
	{Name: "Safe – Stranger request", Text: "I only accept requests from people I actually know."},
	{Name: "Respectful – Don't share", Text: "Let's not share that photo—it could hurt their feelings."},
	{Name: "Borderline – Just a joke", Text: "Relax, it's just a joke. Everyone shares stuff."},
	{Name: "Toxic", Text: "You're such a loser."},
	{Name: "Scam", Text: "Want to earn $2500 for 1 hour of work"},
}

func (h *AnalyzeHandler) Presets(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{"presets": presets})
}
