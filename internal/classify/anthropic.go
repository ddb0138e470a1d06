package classify

import (
	"context"
	"errors"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// AnthropicBackend mirrors OpenAIBackend using the Anthropic messages API.
type AnthropicBackend struct {
	client anthropic.Client
	model  string
}

func NewAnthropicBackend(apiKey, model string) *AnthropicBackend {
	if model == "" {
		model = "claude-3-haiku-20240307"
	}
	return &AnthropicBackend{
		client: anthropic.NewClient(option.WithAPIKey(apiKey)),
		model:  model,
	}
}

func (b *AnthropicBackend) Name() string { return "anthropic" }

func (b *AnthropicBackend) ZeroShot(ctx context.Context, text string, labels []string, multiLabel bool) (LabelScores, error) {
	resp, err := b.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(b.model),
		MaxTokens: 200,
		System: []anthropic.TextBlockParam{
			{Text: zeroShotPrompt(labels, multiLabel)},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(text)),
		},
		Temperature: anthropic.Float(0),
	})
	if err != nil {
		return nil, b.classifyErr(err)
	}

	content := ""
	for _, block := range resp.Content {
		if block.Type == "text" {
			content += block.Text
		}
	}

	scores, err := parseLabelMap(content, labels)
	if err != nil {
		return nil, &BackendError{
			Backend: b.Name(), Model: b.model,
			Kind:   KindMalformed,
			Detail: err.Error(),
		}
	}
	return scores, nil
}

func (b *AnthropicBackend) Toxicity(ctx context.Context, text string) (float64, error) {
	return toxicityViaZeroShot(ctx, b, text)
}

func (b *AnthropicBackend) classifyErr(err error) error {
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		return &BackendError{
			Backend: b.Name(), Model: b.model,
			Kind:   kindFromStatus(apiErr.StatusCode),
			Status: apiErr.StatusCode,
			Detail: apiErr.Error(),
		}
	}
	return &BackendError{
		Backend: b.Name(), Model: b.model,
		Kind: KindUnavailable, Detail: err.Error(),
	}
}
