package classify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIBackend does zero-shot classification through a chat model that is
// prompted to return a JSON label→score map.
type OpenAIBackend struct {
	client *openai.Client
	model  string
}

func NewOpenAIBackend(apiKey, model string) *OpenAIBackend {
	if model == "" {
		model = "gpt-4o-mini"
	}
	return &OpenAIBackend{
		client: openai.NewClient(apiKey),
		model:  model,
	}
}

func (b *OpenAIBackend) Name() string { return "openai" }

func (b *OpenAIBackend) ZeroShot(ctx context.Context, text string, labels []string, multiLabel bool) (LabelScores, error) {
	resp, err := b.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: b.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: zeroShotPrompt(labels, multiLabel)},
			{Role: openai.ChatMessageRoleUser, Content: text},
		},
		Temperature: 0,
		MaxTokens:   200,
	})
	if err != nil {
		return nil, b.classifyErr(err)
	}

	content := ""
	if len(resp.Choices) > 0 {
		content = resp.Choices[0].Message.Content
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

func (b *OpenAIBackend) Toxicity(ctx context.Context, text string) (float64, error) {
	return toxicityViaZeroShot(ctx, b, text)
}

func (b *OpenAIBackend) classifyErr(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return &BackendError{
			Backend: b.Name(), Model: b.model,
			Kind:   kindFromStatus(apiErr.HTTPStatusCode),
			Status: apiErr.HTTPStatusCode,
			Detail: apiErr.Message,
		}
	}
	return &BackendError{
		Backend: b.Name(), Model: b.model,
		Kind: KindUnavailable, Detail: err.Error(),
	}
}

// zeroShotPrompt asks the chat model to behave like a zero-shot classifier.
func zeroShotPrompt(labels []string, multiLabel bool) string {
	mode := "Scores must sum to 1 across labels."
	if multiLabel {
		mode = "Score each label independently."
	}
	return fmt.Sprintf(`You are a zero-shot text classifier. Score the user's text against each of these candidate labels with a confidence between 0 and 1. %s
Labels: %s
Reply with ONLY a JSON object mapping every label to its score.`, mode, strings.Join(labels, "; "))
}

// parseLabelMap decodes the model's JSON reply, tolerating markdown fences
// but nothing else.
func parseLabelMap(content string, labels []string) (LabelScores, error) {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	content = strings.TrimSpace(content)

	var scores LabelScores
	if err := json.Unmarshal([]byte(content), &scores); err != nil {
		return nil, fmt.Errorf("expected JSON label map, got %q", truncate(content, 120))
	}
	for _, l := range labels {
		if _, ok := scores[l]; !ok {
			return nil, fmt.Errorf("label %q missing from response", l)
		}
	}
	return scores, nil
}

// toxicityViaZeroShot reduces toxicity scoring to a two-label zero-shot
// call for backends without a dedicated toxicity model.
func toxicityViaZeroShot(ctx context.Context, b Backend, text string) (float64, error) {
	scores, err := b.ZeroShot(ctx, text, []string{"toxic", "not toxic"}, false)
	if err != nil {
		return 0, err
	}
	return scores["toxic"], nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
