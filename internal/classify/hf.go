package classify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

const defaultHFBaseURL = "https://api-inference.huggingface.co"

// Fallback model lists, tried in order. The first entries match the models
// the original demo shipped with.
var (
	defaultZeroShotModels = []string{
		"facebook/bart-large-mnli",
		"valhalla/distilbart-mnli-12-1",
		"MoritzLaurer/deberta-v3-base-zeroshot-v1",
	}
	defaultToxicityModels = []string{
		"unitary/toxic-bert",
		"martin-ha/toxic-comment-model",
	}
)

// HFBackend calls the hosted inference API over plain HTTP, retrying
// across a fixed ordered list of model names per task.
type HFBackend struct {
	token          string
	baseURL        string
	httpClient     *http.Client
	zeroShotModels []string
	toxicityModels []string
}

func NewHFBackend(token, baseURL string) *HFBackend {
	if baseURL == "" {
		baseURL = defaultHFBaseURL
	}
	return &HFBackend{
		token:   token,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
		zeroShotModels: defaultZeroShotModels,
		toxicityModels: defaultToxicityModels,
	}
}

func (b *HFBackend) Name() string { return "huggingface" }

type hfZeroShotReq struct {
	Inputs     string           `json:"inputs"`
	Parameters hfZeroShotParams `json:"parameters"`
}

type hfZeroShotParams struct {
	CandidateLabels []string `json:"candidate_labels"`
	MultiLabel      bool     `json:"multi_label"`
}

// hfZeroShotResp is the {sequence, labels, scores} shape.
type hfZeroShotResp struct {
	Sequence string    `json:"sequence"`
	Labels   []string  `json:"labels"`
	Scores   []float64 `json:"scores"`
}

// hfLabelScore is one entry of the text-classification shapes (either a
// flat list or a list nested one level deep).
type hfLabelScore struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

func (b *HFBackend) ZeroShot(ctx context.Context, text string, labels []string, multiLabel bool) (LabelScores, error) {
	payload := hfZeroShotReq{
		Inputs: text,
		Parameters: hfZeroShotParams{
			CandidateLabels: labels,
			MultiLabel:      multiLabel,
		},
	}

	var lastErr error
	for _, model := range b.zeroShotModels {
		body, err := b.post(ctx, model, payload)
		if err != nil {
			if !Retryable(err) {
				return nil, err
			}
			slog.Warn("zero-shot model failed, trying next", "model", model, "error", err)
			lastErr = err
			continue
		}

		scores, err := parseZeroShot(model, body)
		if err != nil {
			slog.Warn("zero-shot response unparseable, trying next", "model", model, "error", err)
			lastErr = err
			continue
		}
		return scores, nil
	}
	return nil, fmt.Errorf("all zero-shot models failed: %w", lastErr)
}

func (b *HFBackend) Toxicity(ctx context.Context, text string) (float64, error) {
	payload := map[string]string{"inputs": text}

	var lastErr error
	for _, model := range b.toxicityModels {
		body, err := b.post(ctx, model, payload)
		if err != nil {
			if !Retryable(err) {
				return 0, err
			}
			slog.Warn("toxicity model failed, trying next", "model", model, "error", err)
			lastErr = err
			continue
		}

		score, err := parseToxicity(model, body)
		if err != nil {
			slog.Warn("toxicity response unparseable, trying next", "model", model, "error", err)
			lastErr = err
			continue
		}
		return score, nil
	}
	return 0, fmt.Errorf("all toxicity models failed: %w", lastErr)
}

// post sends one inference request and returns the raw response body, or a
// *BackendError classified from the HTTP status.
func (b *HFBackend) post(ctx context.Context, model string, payload any) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal inference request: %w", err)
	}

	url := b.baseURL + "/models/" + model
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("inference request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if b.token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+b.token)
	}

	resp, err := b.httpClient.Do(httpReq)
	if err != nil {
		return nil, &BackendError{
			Backend: b.Name(), Model: model,
			Kind: KindUnavailable, Detail: err.Error(),
		}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &BackendError{
			Backend: b.Name(), Model: model,
			Kind: KindUnavailable, Detail: "read response: " + err.Error(),
		}
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &BackendError{
			Backend: b.Name(), Model: model,
			Kind:   kindFromStatus(resp.StatusCode),
			Status: resp.StatusCode,
			Detail: errorDetail(body),
		}
	}
	return body, nil
}

// errorDetail pulls the API's error message out of the body when present.
// Warming backends report {"error": "... loading", "estimated_time": n}.
func errorDetail(body []byte) string {
	var e struct {
		Error         string  `json:"error"`
		EstimatedTime float64 `json:"estimated_time"`
	}
	if err := json.Unmarshal(body, &e); err == nil && e.Error != "" {
		if e.EstimatedTime > 0 {
			return fmt.Sprintf("%s (estimated %.0fs)", e.Error, e.EstimatedTime)
		}
		return e.Error
	}
	detail := strings.TrimSpace(string(body))
	if len(detail) > 200 {
		detail = detail[:200]
	}
	return detail
}

// parseZeroShot expects the {sequence, labels, scores} object. Any other
// shape is a malformed-response error rather than a silent default, so
// backend contract changes surface instead of being masked.
func parseZeroShot(model string, body []byte) (LabelScores, error) {
	var r hfZeroShotResp
	if err := json.Unmarshal(body, &r); err != nil || len(r.Labels) == 0 || len(r.Labels) != len(r.Scores) {
		return nil, &BackendError{
			Backend: "huggingface", Model: model,
			Kind:   KindMalformed,
			Detail: "expected {sequence, labels, scores}, got: " + errorDetail(body),
		}
	}

	scores := make(LabelScores, len(r.Labels))
	for i, l := range r.Labels {
		scores[l] = r.Scores[i]
	}
	return scores, nil
}

// parseToxicity accepts either the nested list-of-dicts shape or the flat
// one, returning the "toxic" label's score, else the maximum.
func parseToxicity(model string, body []byte) (float64, error) {
	var entries []hfLabelScore

	var nested [][]hfLabelScore
	if err := json.Unmarshal(body, &nested); err == nil && len(nested) > 0 {
		entries = nested[0]
	} else {
		var flat []hfLabelScore
		if err := json.Unmarshal(body, &flat); err == nil {
			entries = flat
		}
	}

	if len(entries) == 0 {
		return 0, &BackendError{
			Backend: "huggingface", Model: model,
			Kind:   KindMalformed,
			Detail: "expected label/score list, got: " + errorDetail(body),
		}
	}

	maxScore := 0.0
	for _, e := range entries {
		if strings.EqualFold(e.Label, "toxic") {
			return e.Score, nil
		}
		if e.Score > maxScore {
			maxScore = e.Score
		}
	}
	return maxScore, nil
}
