package handlers

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/digicitizen/detector/internal/rules"
)

func newAnalyzeHandler() *AnalyzeHandler {
	return NewAnalyzeHandler(rules.NewAnalyzer(rules.DefaultRuleSet()), nil, nil)
}

func TestAnalyzeEndpoint(t *testing.T) {
	h := newAnalyzeHandler()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/analyze",
		strings.NewReader(`{"text":"You're so dumb, nobody likes you!"}`))
	rec := httptest.NewRecorder()
	h.Analyze(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Label     string   `json:"label"`
		RiskScore float64  `json:"risk_score_0_10"`
		Matches   []string `json:"matches"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Medium Risk", resp.Label)
	assert.Equal(t, 4.12, resp.RiskScore)
	assert.Len(t, resp.Matches, 2)
}

func TestAnalyzeEndpointEmptyTextAllowed(t *testing.T) {
	h := newAnalyzeHandler()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/analyze", strings.NewReader(`{"text":""}`))
	rec := httptest.NewRecorder()
	h.Analyze(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		RiskScore float64 `json:"risk_score_0_10"`
		Label     string  `json:"label"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 0.0, resp.RiskScore)
	assert.Equal(t, "Low Risk", resp.Label)
}

func TestAnalyzeEndpointInvalidBody(t *testing.T) {
	h := newAnalyzeHandler()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/analyze", strings.NewReader(`not json`))
	rec := httptest.NewRecorder()
	h.Analyze(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestBatchEndpoint(t *testing.T) {
	h := newAnalyzeHandler()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/analyze/batch",
		strings.NewReader(`{"texts":["you are stupid","have a nice day"]}`))
	rec := httptest.NewRecorder()
	h.Batch(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Items []struct {
			Label string `json:"label"`
		} `json:"items"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Items, 2)
}

func TestBatchEndpointRejectsEmptyAndOversized(t *testing.T) {
	h := newAnalyzeHandler()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/analyze/batch", strings.NewReader(`{"texts":[]}`))
	rec := httptest.NewRecorder()
	h.Batch(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	texts := make([]string, maxBatchSize+1)
	body, _ := json.Marshal(map[string]interface{}{"texts": texts})
	req = httptest.NewRequest(http.MethodPost, "/api/v1/analyze/batch", bytes.NewReader(body))
	rec = httptest.NewRecorder()
	h.Batch(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTranscriptEndpoint(t *testing.T) {
	h := newAnalyzeHandler()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "chat.txt")
	require.NoError(t, err)
	fw.Write([]byte("hello everyone\nyou are such a loser\n"))
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/analyze/transcript", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	h.Transcript(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Lines []struct {
			Line  string `json:"line"`
			Label string `json:"label"`
		} `json:"lines"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Lines, 2)
	assert.Equal(t, "hello everyone", resp.Lines[0].Line)
	assert.Equal(t, "Low Risk", resp.Lines[0].Label)
	assert.Equal(t, "Low Risk", resp.Lines[1].Label)
}

func TestPresetsEndpoint(t *testing.T) {
	h := newAnalyzeHandler()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/presets", nil)
	rec := httptest.NewRecorder()
	h.Presets(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Presets []Preset `json:"presets"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Presets, 5)
	assert.Equal(t, "Toxic", resp.Presets[3].Name)
}
