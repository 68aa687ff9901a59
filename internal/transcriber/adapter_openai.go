package transcriber

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"time"

	"github.com/leonardotrapani/aslbridge/internal/wav"
	"github.com/sashabaranov/go-openai"
)

// OpenAIAdapter implements Adapter for the OpenAI Whisper API
type OpenAIAdapter struct {
	client *openai.Client
	config Config
}

func NewOpenAIAdapter(config Config) *OpenAIAdapter {
	return &OpenAIAdapter{
		client: openai.NewClient(config.APIKey),
		config: config,
	}
}

func (a *OpenAIAdapter) Transcribe(ctx context.Context, wavData []byte) (string, error) {
	if len(wavData) <= wav.HeaderSize {
		return "", nil
	}

	req := openai.AudioRequest{
		Model:    a.config.Model,
		Reader:   bytes.NewReader(wavData),
		FilePath: "audio.wav",
		Language: a.config.Language,
	}

	start := time.Now()
	resp, err := a.client.CreateTranscription(ctx, req)
	duration := time.Since(start)

	if err != nil {
		log.Printf("openai-adapter: API call failed after %v: %v", duration, err)
		return "", fmt.Errorf("openai transcription: %w", err)
	}

	log.Printf("openai-adapter: transcribed %d bytes in %v: %q", len(wavData), duration, resp.Text)
	return resp.Text, nil
}
