package summary

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"google.golang.org/adk/agent"
	"google.golang.org/adk/agent/llmagent"
	"google.golang.org/adk/runner"
	"google.golang.org/adk/session"
	"google.golang.org/genai"

	"rental_quote_backend/platform/ai/moonshot"
)

const agentAppName = "quote-summary-generator"

// AgentSummarizer runs a tool-less ADK agent on the Moonshot model.
type AgentSummarizer struct {
	agent          agent.Agent
	runner         *runner.Runner
	sessionService session.Service
	runMu          sync.Mutex
}

// NewAgentSummarizer creates the summary agent. An empty modelName uses the adapter default.
func NewAgentSummarizer(apiKey, modelName string) (*AgentSummarizer, error) {
	kimi := moonshot.NewModel(moonshot.Config{
		APIKey:          apiKey,
		Model:           modelName,
		DisableThinking: true,
	})

	adkAgent, err := llmagent.New(llmagent.Config{
		Name:        "QuoteSummaryGenerator",
		Model:       kimi,
		Description: "Writes short customer notes for rental quotes.",
		Instruction: systemPrompt(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create quote summary agent: %w", err)
	}

	sessionService := session.InMemoryService()
	r, err := runner.New(runner.Config{
		AppName:        agentAppName,
		Agent:          adkAgent,
		SessionService: sessionService,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create quote summary runner: %w", err)
	}

	return &AgentSummarizer{
		agent:          adkAgent,
		runner:         r,
		sessionService: sessionService,
	}, nil
}

// Summarize runs one throwaway session per call.
func (s *AgentSummarizer) Summarize(ctx context.Context, input Input) (string, error) {
	s.runMu.Lock()
	defer s.runMu.Unlock()

	sessionID := uuid.New().String()
	userID := "quote-summary"

	_, err := s.sessionService.Create(ctx, &session.CreateRequest{
		AppName:   agentAppName,
		UserID:    userID,
		SessionID: sessionID,
	})
	if err != nil {
		return "", fmt.Errorf("quote summary: create session: %w", err)
	}
	defer func() {
		_ = s.sessionService.Delete(context.WithoutCancel(ctx), &session.DeleteRequest{
			AppName:   agentAppName,
			UserID:    userID,
			SessionID: sessionID,
		})
	}()

	userMessage := &genai.Content{
		Role: "user",
		Parts: []*genai.Part{{
			Text: BuildPrompt(input),
		}},
	}

	runConfig := agent.RunConfig{StreamingMode: agent.StreamingModeNone}

	var outputText strings.Builder
	for event, err := range s.runner.Run(ctx, userID, sessionID, userMessage, runConfig) {
		if err != nil {
			return "", fmt.Errorf("quote summary: run failed: %w", err)
		}
		if event.Content == nil {
			continue
		}
		for _, part := range event.Content.Parts {
			outputText.WriteString(part.Text)
		}
	}

	text := strings.TrimSpace(outputText.String())
	if text == "" {
		return "", fmt.Errorf("quote summary: empty response")
	}
	return text, nil
}
