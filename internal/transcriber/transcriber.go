package transcriber

import (
	"context"
	"fmt"
	"time"
)

// Adapter turns a WAV file into text.
type Adapter interface {
	Transcribe(ctx context.Context, wavData []byte) (string, error)
}

// Configuration for the transcriber
type Config struct {
	Provider   string
	URL        string
	APIKey     string
	Language   string
	Model      string
	Timeout    time.Duration
	MaxRetries int
}

const DefaultURL = "https://flaskapispeech2text.onrender.com/transcribe"

func DefaultConfig() Config {
	return Config{
		Provider:   "remote",
		URL:        DefaultURL,
		Model:      "whisper-1",
		Timeout:    60 * time.Second,
		MaxRetries: 2,
	}
}

// New creates the adapter for config.Provider.
func New(config Config) (Adapter, error) {
	switch config.Provider {
	case "remote":
		if config.URL == "" {
			return nil, fmt.Errorf("transcription URL required")
		}
		return NewHTTPAdapter(config), nil

	case "openai":
		if config.APIKey == "" {
			return nil, fmt.Errorf("OpenAI API key required")
		}
		return NewOpenAIAdapter(config), nil

	default:
		return nil, fmt.Errorf("unsupported provider: %s", config.Provider)
	}
}
