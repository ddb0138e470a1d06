package classify

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubBackend struct {
	name     string
	zeroShot func(text string, labels []string) (LabelScores, error)
	toxicity func(text string) (float64, error)
	calls    int
}

func (s *stubBackend) Name() string { return s.name }

func (s *stubBackend) ZeroShot(_ context.Context, text string, labels []string, _ bool) (LabelScores, error) {
	s.calls++
	return s.zeroShot(text, labels)
}

func (s *stubBackend) Toxicity(_ context.Context, text string) (float64, error) {
	s.calls++
	if s.toxicity != nil {
		return s.toxicity(text)
	}
	return 0, nil
}

func failing(name string, kind ErrorKind) *stubBackend {
	return &stubBackend{
		name: name,
		zeroShot: func(string, []string) (LabelScores, error) {
			return nil, &BackendError{Backend: name, Kind: kind, Detail: name + " broke"}
		},
		toxicity: func(string) (float64, error) {
			return 0, &BackendError{Backend: name, Kind: kind, Detail: name + " broke"}
		},
	}
}

func succeeding(name string, scores LabelScores) *stubBackend {
	return &stubBackend{
		name:     name,
		zeroShot: func(string, []string) (LabelScores, error) { return scores, nil },
		toxicity: func(string) (float64, error) { return 0.2, nil },
	}
}

func TestGatewayFallsBackInOrder(t *testing.T) {
	first := failing("first", KindUnavailable)
	second := succeeding("second", LabelScores{"A": 0.9})

	gw := NewGateway(first, second)
	scores, err := gw.ZeroShot(context.Background(), "x", []string{"A"}, false)
	require.NoError(t, err)
	assert.Equal(t, 0.9, scores["A"])
	assert.Equal(t, 1, first.calls)
	assert.Equal(t, 1, second.calls)
}

func TestGatewayStopsOnAuthFailure(t *testing.T) {
	first := failing("first", KindAuth)
	second := succeeding("second", LabelScores{"A": 0.9})

	gw := NewGateway(first, second)
	_, err := gw.ZeroShot(context.Background(), "x", []string{"A"}, false)
	require.Error(t, err)
	assert.Equal(t, 0, second.calls)
}

func TestGatewayAggregateErrorKeepsLastDetail(t *testing.T) {
	gw := NewGateway(
		failing("first", KindUnavailable),
		failing("second", KindMalformed),
	)
	_, err := gw.ZeroShot(context.Background(), "x", []string{"A"}, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "all classification backends failed")
	assert.Contains(t, err.Error(), "second broke")
}

func TestGatewayNotFoundAdvances(t *testing.T) {
	first := failing("first", KindNotFound)
	second := succeeding("second", LabelScores{"A": 0.5})

	gw := NewGateway(first, second)
	_, err := gw.ZeroShot(context.Background(), "x", []string{"A"}, false)
	require.NoError(t, err)
	assert.Equal(t, 1, second.calls)
}

func TestGatewayToxicityFallback(t *testing.T) {
	first := failing("first", KindUnavailable)
	second := succeeding("second", nil)

	gw := NewGateway(first, second)
	score, err := gw.Toxicity(context.Background(), "x")
	require.NoError(t, err)
	assert.Equal(t, 0.2, score)
}

func TestGatewayNoBackends(t *testing.T) {
	gw := NewGateway()
	_, err := gw.ZeroShot(context.Background(), "x", []string{"A"}, false)
	assert.Error(t, err)
}

func TestRetryable(t *testing.T) {
	assert.False(t, Retryable(&BackendError{Kind: KindAuth}))
	assert.False(t, Retryable(&BackendError{Kind: KindPermission}))
	assert.True(t, Retryable(&BackendError{Kind: KindNotFound}))
	assert.True(t, Retryable(&BackendError{Kind: KindUnavailable}))
	assert.True(t, Retryable(&BackendError{Kind: KindMalformed}))
	assert.True(t, Retryable(assert.AnError))
}
