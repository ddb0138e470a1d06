package classify

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/digicitizen/detector/internal/config"
)

// Gateway tries an ordered list of backends until one succeeds. Terminal
// failures (auth, permission) stop the chain immediately; anything else
// advances to the next backend, and the aggregate error carries the last
// failure's detail.
type Gateway struct {
	backends []Backend
}

func NewGateway(backends ...Backend) *Gateway {
	return &Gateway{backends: backends}
}

// FromConfig builds a gateway from the configured backend order, skipping
// backends whose credentials are absent.
func FromConfig(cfg config.InferenceConfig) *Gateway {
	var backends []Backend
	for _, name := range cfg.Backends {
		switch name {
		case "huggingface":
			// The hosted inference API accepts anonymous requests at a
			// reduced rate limit, so no token is still usable.
			backends = append(backends, NewHFBackend(cfg.HFToken, cfg.HFBaseURL))
		case "openai":
			if cfg.OpenAIKey != "" {
				backends = append(backends, NewOpenAIBackend(cfg.OpenAIKey, ""))
			}
		case "anthropic":
			if cfg.AnthropicKey != "" {
				backends = append(backends, NewAnthropicBackend(cfg.AnthropicKey, ""))
			}
		default:
			slog.Warn("unknown classification backend in config", "backend", name)
		}
	}
	return NewGateway(backends...)
}

func (g *Gateway) Backends() []string {
	names := make([]string, len(g.backends))
	for i, b := range g.backends {
		names[i] = b.Name()
	}
	return names
}

func (g *Gateway) ZeroShot(ctx context.Context, text string, labels []string, multiLabel bool) (LabelScores, error) {
	if len(g.backends) == 0 {
		return nil, fmt.Errorf("no classification backends configured")
	}

	var lastErr error
	for _, b := range g.backends {
		scores, err := b.ZeroShot(ctx, text, labels, multiLabel)
		if err == nil {
			return scores, nil
		}
		if !Retryable(err) {
			return nil, err
		}
		slog.Warn("classification backend failed, trying next", "backend", b.Name(), "error", err)
		lastErr = err
	}
	return nil, fmt.Errorf("all classification backends failed: %w", lastErr)
}

func (g *Gateway) Toxicity(ctx context.Context, text string) (float64, error) {
	if len(g.backends) == 0 {
		return 0, fmt.Errorf("no classification backends configured")
	}

	var lastErr error
	for _, b := range g.backends {
		score, err := b.Toxicity(ctx, text)
		if err == nil {
			return score, nil
		}
		if !Retryable(err) {
			return 0, err
		}
		slog.Warn("toxicity backend failed, trying next", "backend", b.Name(), "error", err)
		lastErr = err
	}
	return 0, fmt.Errorf("all toxicity backends failed: %w", lastErr)
}
