package transcriber

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/leonardotrapani/aslbridge/internal/wav"
)

// HTTPAdapter uploads the WAV as multipart form data to a speech-to-text
// endpoint that answers with {"transcription": "..."}.
type HTTPAdapter struct {
	client     *http.Client
	url        string
	maxRetries int
	backoff    time.Duration
}

type httpResponse struct {
	Transcription string `json:"transcription"`
}

func NewHTTPAdapter(config Config) *HTTPAdapter {
	timeout := config.Timeout
	if timeout <= 0 {
		timeout = DefaultConfig().Timeout
	}
	return &HTTPAdapter{
		client:     &http.Client{Timeout: timeout},
		url:        config.URL,
		maxRetries: config.MaxRetries,
		backoff:    500 * time.Millisecond,
	}
}

func (a *HTTPAdapter) Transcribe(ctx context.Context, wavData []byte) (string, error) {
	if len(wavData) <= wav.HeaderSize {
		return "", nil
	}

	var lastErr error
	for attempt := 0; attempt <= a.maxRetries; attempt++ {
		if attempt > 0 {
			delay := a.backoff << (attempt - 1)
			log.Printf("http-adapter: retrying in %v (attempt %d/%d): %v", delay, attempt, a.maxRetries, lastErr)
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return "", ctx.Err()
			}
		}

		text, err := a.transcribeOnce(ctx, wavData)
		if err == nil {
			return text, nil
		}
		if IsFatalTranscriptionError(err) || ctx.Err() != nil {
			return "", err
		}
		lastErr = err
	}
	return "", fmt.Errorf("transcription failed after %d attempts: %w", a.maxRetries+1, lastErr)
}

func (a *HTTPAdapter) transcribeOnce(ctx context.Context, wavData []byte) (string, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("file", "audio.wav")
	if err != nil {
		return "", NewFatalTranscriptionError(fmt.Errorf("create form file: %w", err))
	}
	if _, err := part.Write(wavData); err != nil {
		return "", NewFatalTranscriptionError(fmt.Errorf("copy audio data: %w", err))
	}
	if err := writer.Close(); err != nil {
		return "", NewFatalTranscriptionError(fmt.Errorf("close writer: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.url, &body)
	if err != nil {
		return "", NewFatalTranscriptionError(fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	start := time.Now()
	resp, err := a.client.Do(req)
	duration := time.Since(start)
	if err != nil {
		log.Printf("http-adapter: request failed after %v: %v", duration, err)
		return "", fmt.Errorf("transcription request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		log.Printf("http-adapter: server returned status %d: %s", resp.StatusCode, string(bodyBytes))
		return "", statusError(resp.StatusCode, string(bodyBytes))
	}

	var result httpResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", NewFatalTranscriptionError(fmt.Errorf("decode response: %w", err))
	}

	log.Printf("http-adapter: transcribed %d bytes in %v: %q", len(wavData), duration, result.Transcription)
	return result.Transcription, nil
}
