// Package classify scores text against candidate labels using hosted
// model-inference backends, falling back across an ordered list of
// backends and model names when one fails.
package classify

import "context"

// LabelScores maps a candidate label to a confidence in [0,1].
type LabelScores map[string]float64

// Backend is a single hosted classification provider.
type Backend interface {
	Name() string

	// ZeroShot scores the text against arbitrary candidate labels.
	ZeroShot(ctx context.Context, text string, labels []string, multiLabel bool) (LabelScores, error)

	// Toxicity returns a toxicity confidence in [0,1].
	Toxicity(ctx context.Context, text string) (float64, error)
}
