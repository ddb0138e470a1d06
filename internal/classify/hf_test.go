package classify

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHFZeroShot(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		assert.True(t, strings.HasPrefix(r.URL.Path, "/models/"))
		w.Write([]byte(`{"sequence":"you are great","labels":["Respectful","Safe behavior"],"scores":[0.91,0.42]}`))
	}))
	defer srv.Close()

	b := NewHFBackend("test-token", srv.URL)
	scores, err := b.ZeroShot(context.Background(), "you are great", []string{"Respectful", "Safe behavior"}, true)
	require.NoError(t, err)
	assert.Equal(t, LabelScores{"Respectful": 0.91, "Safe behavior": 0.42}, scores)
}

func TestHFZeroShotFallsBackWhileModelWarmsUp(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if strings.Contains(r.URL.Path, "bart-large-mnli") {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"error":"Model facebook/bart-large-mnli is currently loading","estimated_time":20.0}`))
			return
		}
		w.Write([]byte(`{"sequence":"x","labels":["A"],"scores":[0.5]}`))
	}))
	defer srv.Close()

	b := NewHFBackend("", srv.URL)
	scores, err := b.ZeroShot(context.Background(), "x", []string{"A"}, false)
	require.NoError(t, err)
	assert.Equal(t, 0.5, scores["A"])
	assert.Equal(t, int32(2), calls.Load())
}

func TestHFZeroShotAuthFailureIsTerminal(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":"Invalid credentials"}`))
	}))
	defer srv.Close()

	b := NewHFBackend("bad-token", srv.URL)
	_, err := b.ZeroShot(context.Background(), "x", []string{"A"}, false)
	require.Error(t, err)

	var be *BackendError
	require.True(t, errors.As(err, &be))
	assert.Equal(t, KindAuth, be.Kind)
	assert.NotEmpty(t, be.Hint())
	// No further models tried after an auth failure.
	assert.Equal(t, int32(1), calls.Load())
}

func TestHFZeroShotMalformedResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"totally":"unexpected"}`))
	}))
	defer srv.Close()

	b := NewHFBackend("", srv.URL)
	_, err := b.ZeroShot(context.Background(), "x", []string{"A"}, false)
	require.Error(t, err)

	var be *BackendError
	require.True(t, errors.As(err, &be))
	assert.Equal(t, KindMalformed, be.Kind)
}

func TestHFToxicityNestedShape(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[[{"label":"toxic","score":0.87},{"label":"severe_toxic","score":0.12}]]`))
	}))
	defer srv.Close()

	b := NewHFBackend("", srv.URL)
	score, err := b.Toxicity(context.Background(), "you are awful")
	require.NoError(t, err)
	assert.Equal(t, 0.87, score)
}

func TestHFToxicityFlatShape(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"label":"TOXIC","score":0.73},{"label":"clean","score":0.27}]`))
	}))
	defer srv.Close()

	b := NewHFBackend("", srv.URL)
	score, err := b.Toxicity(context.Background(), "x")
	require.NoError(t, err)
	assert.Equal(t, 0.73, score)
}

func TestHFToxicityFallsBackToMaxScore(t *testing.T) {
	// No "toxic" label in the output: the highest score wins.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[[{"label":"offensive","score":0.41},{"label":"neutral","score":0.59}]]`))
	}))
	defer srv.Close()

	b := NewHFBackend("", srv.URL)
	score, err := b.Toxicity(context.Background(), "x")
	require.NoError(t, err)
	assert.Equal(t, 0.59, score)
}

func TestHFToxicityMalformedResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`"just a string"`))
	}))
	defer srv.Close()

	b := NewHFBackend("", srv.URL)
	_, err := b.Toxicity(context.Background(), "x")
	require.Error(t, err)

	var be *BackendError
	require.True(t, errors.As(err, &be))
	assert.Equal(t, KindMalformed, be.Kind)
}
