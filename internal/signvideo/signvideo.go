// Package signvideo talks to the text-to-sign-language video service and
// stores the videos it returns.
package signvideo

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"mime"
	"net/http"
	"strings"
	"time"
)

const DefaultURL = "https://flaskapitext2video.onrender.com/translate"

var ErrEmptyText = errors.New("nothing to translate")

type Config struct {
	URL     string
	Timeout time.Duration
}

func DefaultConfig() Config {
	return Config{
		URL:     DefaultURL,
		Timeout: 2 * time.Minute,
	}
}

// Video is a rendered sign-language clip.
type Video struct {
	Data        []byte
	ContentType string
}

// Extension returns a file extension matching the content type.
func (v *Video) Extension() string {
	mediaType, _, err := mime.ParseMediaType(v.ContentType)
	if err != nil {
		return ".bin"
	}
	switch mediaType {
	case "video/mp4":
		return ".mp4"
	case "video/webm":
		return ".webm"
	case "video/ogg":
		return ".ogv"
	case "image/gif":
		return ".gif"
	default:
		return ".bin"
	}
}

// APIError is a non-2xx answer from the video service.
type APIError struct {
	Code    int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("failed to fetch video: %d", e.Code)
	}
	return fmt.Sprintf("failed to fetch video: %d: %s", e.Code, e.Message)
}

type Client struct {
	http *http.Client
	url  string
}

func NewClient(config Config) *Client {
	timeout := config.Timeout
	if timeout <= 0 {
		timeout = DefaultConfig().Timeout
	}
	return &Client{
		http: &http.Client{Timeout: timeout},
		url:  config.URL,
	}
}

type translateRequest struct {
	Text string `json:"text"`
}

// Translate asks the service to render text as a sign-language video.
func (c *Client) Translate(ctx context.Context, text string) (*Video, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyText
	}

	payload, err := json.Marshal(translateRequest{Text: text})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	log.Printf("signvideo: sending text to %s: %q", c.url, text)
	start := time.Now()
	resp, err := c.http.Do(req)
	duration := time.Since(start)
	if err != nil {
		log.Printf("signvideo: request failed after %v: %v", duration, err)
		return nil, fmt.Errorf("translate request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		apiErr := &APIError{Code: resp.StatusCode, Message: errorMessage(body)}
		log.Printf("signvideo: %v", apiErr)
		return nil, apiErr
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read video: %w", err)
	}

	video := &Video{Data: data, ContentType: resp.Header.Get("Content-Type")}
	log.Printf("signvideo: received %d bytes (%s) in %v", len(data), video.ContentType, duration)
	return video, nil
}

// errorMessage pulls "error" or "message" out of a JSON error body, falling
// back to the raw text.
func errorMessage(body []byte) string {
	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		if payload.Error != "" {
			return payload.Error
		}
		if payload.Message != "" {
			return payload.Message
		}
	}
	return strings.TrimSpace(string(body))
}
