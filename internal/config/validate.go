package config

import (
	"fmt"
	"net"
	"net/url"
)

func (c *Config) Validate() error {
	if c.Recording.SampleRate <= 0 {
		return fmt.Errorf("invalid recording.sample_rate: %d", c.Recording.SampleRate)
	}
	if c.Recording.BlockSize <= 0 {
		return fmt.Errorf("invalid recording.block_size: %d", c.Recording.BlockSize)
	}
	if c.Recording.Timeout <= 0 {
		return fmt.Errorf("invalid recording.timeout: %v", c.Recording.Timeout)
	}
	if c.Media.Window <= 0 {
		return fmt.Errorf("invalid media.window: %v", c.Media.Window)
	}

	switch c.Transcription.Provider {
	case "remote":
		if err := validateURL("transcription.url", c.Transcription.URL); err != nil {
			return err
		}
	case "openai":
		if c.resolveAPIKey(c.Transcription.APIKey, "openai") == "" {
			return fmt.Errorf("OpenAI API key required: not found in config (transcription.api_key) or environment variable (OPENAI_API_KEY)")
		}
		if c.Transcription.Model == "" {
			return fmt.Errorf("invalid transcription.model: empty")
		}
	case "":
		return fmt.Errorf("invalid transcription.provider: empty")
	default:
		return fmt.Errorf("unsupported transcription.provider: %s (must be remote or openai)", c.Transcription.Provider)
	}
	if c.Transcription.Timeout <= 0 {
		return fmt.Errorf("invalid transcription.timeout: %v", c.Transcription.Timeout)
	}
	if c.Transcription.MaxRetries < 0 {
		return fmt.Errorf("invalid transcription.max_retries: %d", c.Transcription.MaxRetries)
	}

	if err := validateURL("sign.url", c.Sign.URL); err != nil {
		return err
	}
	if c.Sign.Timeout <= 0 {
		return fmt.Errorf("invalid sign.timeout: %v", c.Sign.Timeout)
	}

	if c.LLM.Enabled {
		if c.LLM.Provider == "" {
			return fmt.Errorf("llm.provider required when llm.enabled = true")
		}
		validLLMProviders := map[string]bool{"openai": true, "groq": true}
		if !validLLMProviders[c.LLM.Provider] {
			return fmt.Errorf("invalid llm.provider: %s (must be openai or groq)", c.LLM.Provider)
		}
		if c.resolveAPIKey(c.LLM.APIKey, c.LLM.Provider) == "" {
			return fmt.Errorf("API key required for LLM: not found in config (llm.api_key) or environment variable (%s)", envVarForProvider(c.LLM.Provider))
		}
	}

	validTypes := map[string]bool{"desktop": true, "log": true, "none": true}
	if !validTypes[c.Notifications.Type] {
		return fmt.Errorf("invalid notifications.type: %s (must be desktop, log, or none)", c.Notifications.Type)
	}

	if c.Metrics.Addr != "" {
		if _, _, err := net.SplitHostPort(c.Metrics.Addr); err != nil {
			return fmt.Errorf("invalid metrics.addr: %s: %w", c.Metrics.Addr, err)
		}
	}

	return nil
}

func validateURL(key, raw string) error {
	if raw == "" {
		return fmt.Errorf("invalid %s: empty", key)
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid %s: %s (must be an http or https URL)", key, raw)
	}
	return nil
}
