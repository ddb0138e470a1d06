package classify

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/digicitizen/detector/internal/cache"
	"github.com/digicitizen/detector/internal/feedback"
)

// Scam likelihood is a two-label zero-shot over these.
const (
	labelScam       = "Likely scam"
	labelLegitimate = "Likely legitimate"
)

// Classification is the full hosted-model result for one text.
type Classification struct {
	Text     string      `json:"text"`
	Labels   LabelScores `json:"labels"`
	Toxicity float64     `json:"toxicity"`
	Scam     float64     `json:"scam"`
	Feedback string      `json:"feedback"`
}

// Service composes behavior labels, toxicity, and scam likelihood into one
// Classification, caching results since hosted inference is slow.
type Service struct {
	gateway *Gateway
	cache   *cache.Cache
	ttl     time.Duration
}

func NewService(gw *Gateway, c *cache.Cache, ttl time.Duration) *Service {
	return &Service{gateway: gw, cache: c, ttl: ttl}
}

func (s *Service) Classify(ctx context.Context, text string) (*Classification, error) {
	key := cacheKey(text)
	if s.cache != nil {
		var cached Classification
		if err := s.cache.Get(ctx, key, &cached); err == nil {
			return &cached, nil
		}
	}

	labels, err := s.gateway.ZeroShot(ctx, text, feedback.Labels(), true)
	if err != nil {
		return nil, fmt.Errorf("behavior labels: %w", err)
	}

	toxicity, err := s.gateway.Toxicity(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("toxicity: %w", err)
	}

	scamScores, err := s.gateway.ZeroShot(ctx, text, []string{labelScam, labelLegitimate}, false)
	if err != nil {
		return nil, fmt.Errorf("scam likelihood: %w", err)
	}

	result := &Classification{
		Text:     text,
		Labels:   round3All(labels),
		Toxicity: round3(toxicity),
		Scam:     round3(scamScores[labelScam]),
		Feedback: feedback.ForLabelScores(labels),
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, result, s.ttl); err != nil {
			slog.Warn("failed to cache classification", "error", err)
		}
	}
	return result, nil
}

func cacheKey(text string) string {
	sum := sha256.Sum256([]byte(text))
	return "classify:" + hex.EncodeToString(sum[:])
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}

func round3All(scores LabelScores) LabelScores {
	out := make(LabelScores, len(scores))
	for k, v := range scores {
		out[k] = round3(v)
	}
	return out
}
