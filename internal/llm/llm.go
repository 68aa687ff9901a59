package llm

import (
	"context"
	"fmt"
)

// Adapter rewrites a transcript before it is sent for sign translation.
type Adapter interface {
	Process(ctx context.Context, text string) (string, error)
}

type Config struct {
	Provider          string
	APIKey            string
	Model             string
	BaseURL           string
	RemoveFillerWords bool
	AddPunctuation    bool
	FixGrammar        bool
	Simplify          bool
	CustomPrompt      string
}

const groqBaseURL = "https://api.groq.com/openai/v1"

// NewAdapter creates an LLM adapter based on the provider
func NewAdapter(cfg Config) (Adapter, error) {
	switch cfg.Provider {
	case "openai":
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("OpenAI API key required")
		}
		return NewOpenAIAdapter(cfg), nil
	case "groq":
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("Groq API key required")
		}
		if cfg.BaseURL == "" {
			cfg.BaseURL = groqBaseURL
		}
		if cfg.Model == "" {
			cfg.Model = "llama-3.3-70b-versatile"
		}
		return NewOpenAIAdapter(cfg), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.Provider)
	}
}
