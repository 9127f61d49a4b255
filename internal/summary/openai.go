package summary

import (
	"context"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"
	"golang.org/x/time/rate"
)

const defaultOpenAIModel = "gpt-4o-mini"

// OpenAISummarizer calls any OpenAI-compatible chat completions endpoint.
type OpenAISummarizer struct {
	client  *openai.Client
	model   string
	limiter *rate.Limiter
}

// NewOpenAISummarizer builds a client; baseURL may be empty for the public API.
func NewOpenAISummarizer(apiKey, baseURL, modelName string) *OpenAISummarizer {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = strings.TrimRight(baseURL, "/")
	}
	if modelName == "" {
		modelName = defaultOpenAIModel
	}
	return &OpenAISummarizer{
		client:  openai.NewClientWithConfig(cfg),
		model:   modelName,
		limiter: rate.NewLimiter(rate.Limit(3), 5),
	}
}

// Summarize sends a single completion request and never retries.
func (s *OpenAISummarizer) Summarize(ctx context.Context, input Input) (string, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("quote summary: rate limiter: %w", err)
	}

	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: s.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: systemPrompt(),
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: BuildPrompt(input),
			},
		},
		Temperature: 0.2,
	})
	if err != nil {
		return "", fmt.Errorf("quote summary: completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("quote summary: empty choices")
	}

	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return "", fmt.Errorf("quote summary: empty response")
	}
	return text, nil
}
