package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/digicitizen/detector/internal/classify"
	"github.com/digicitizen/detector/internal/rules"
)

type fakeBackend struct {
	scores classify.LabelScores
	err    error
}

func (f *fakeBackend) Name() string { return "fake" }

func (f *fakeBackend) ZeroShot(_ context.Context, _ string, labels []string, _ bool) (classify.LabelScores, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make(classify.LabelScores, len(labels))
	for _, l := range labels {
		out[l] = f.scores[l]
	}
	return out, nil
}

func (f *fakeBackend) Toxicity(context.Context, string) (float64, error) {
	if f.err != nil {
		return 0, f.err
	}
	return 0.1, nil
}

func newClassifyHandler(b classify.Backend) *ClassifyHandler {
	svc := classify.NewService(classify.NewGateway(b), nil, 0)
	return NewClassifyHandler(svc, rules.NewAnalyzer(rules.DefaultRuleSet()), nil)
}

func TestClassifyEndpoint(t *testing.T) {
	h := newClassifyHandler(&fakeBackend{scores: classify.LabelScores{
		"Safe behavior": 0.8,
		"Likely scam":   0.05,
	}})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/classify",
		strings.NewReader(`{"text":"I only connect with people I know."}`))
	rec := httptest.NewRecorder()
	h.Classify(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Classification struct {
			Labels   map[string]float64 `json:"labels"`
			Toxicity float64            `json:"toxicity"`
			Scam     float64            `json:"scam"`
			Feedback string             `json:"feedback"`
		} `json:"classification"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 0.8, resp.Classification.Labels["Safe behavior"])
	assert.Equal(t, 0.1, resp.Classification.Toxicity)
	assert.Equal(t, 0.05, resp.Classification.Scam)
	assert.NotEmpty(t, resp.Classification.Feedback)
}

func TestClassifyEndpointRequiresText(t *testing.T) {
	h := newClassifyHandler(&fakeBackend{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/classify", strings.NewReader(`{"text":""}`))
	rec := httptest.NewRecorder()
	h.Classify(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestClassifyEndpointAuthFailure(t *testing.T) {
	h := newClassifyHandler(&fakeBackend{err: &classify.BackendError{
		Backend: "fake", Kind: classify.KindAuth, Status: 401, Detail: "bad credentials",
	}})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/classify", strings.NewReader(`{"text":"hello"}`))
	rec := httptest.NewRecorder()
	h.Classify(rec, req)

	require.Equal(t, http.StatusBadGateway, rec.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp["hint"], "token")
}

func TestClassifyEndpointAllBackendsDown(t *testing.T) {
	h := newClassifyHandler(&fakeBackend{err: &classify.BackendError{
		Backend: "fake", Kind: classify.KindUnavailable, Status: 503, Detail: "warming up",
	}})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/classify", strings.NewReader(`{"text":"hello"}`))
	rec := httptest.NewRecorder()
	h.Classify(rec, req)

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp["error"], "warming up")
}
