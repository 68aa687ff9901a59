package llm

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
)

// OpenAIAdapter implements Adapter using an OpenAI-compatible chat
// completions API.
type OpenAIAdapter struct {
	client *openai.Client
	config Config
}

func NewOpenAIAdapter(cfg Config) *OpenAIAdapter {
	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}
	return &OpenAIAdapter{
		client: openai.NewClientWithConfig(clientConfig),
		config: cfg,
	}
}

func (a *OpenAIAdapter) Process(ctx context.Context, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return text, nil
	}

	opts := Options{
		RemoveFillerWords: a.config.RemoveFillerWords,
		AddPunctuation:    a.config.AddPunctuation,
		FixGrammar:        a.config.FixGrammar,
		Simplify:          a.config.Simplify,
	}

	model := a.config.Model
	if model == "" {
		model = "gpt-4o-mini"
	}

	req := openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: BuildSystemPrompt(opts)},
			{Role: openai.ChatMessageRoleUser, Content: BuildUserPrompt(text, a.config.CustomPrompt)},
		},
		Temperature: 0.2,
	}

	start := time.Now()
	resp, err := a.client.CreateChatCompletion(ctx, req)
	duration := time.Since(start)

	if err != nil {
		log.Printf("llm-adapter: API call failed after %v: %v", duration, err)
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion: no response choices")
	}

	result := strings.TrimSpace(resp.Choices[0].Message.Content)
	log.Printf("llm-adapter: processed in %v: %q -> %q", duration, text, result)
	return result, nil
}
