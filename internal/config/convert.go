package config

import (
	"os"

	"github.com/leonardotrapani/aslbridge/internal/llm"
	"github.com/leonardotrapani/aslbridge/internal/recording"
	"github.com/leonardotrapani/aslbridge/internal/signvideo"
	"github.com/leonardotrapani/aslbridge/internal/transcriber"
)

func (c *Config) ToRecordingConfig() recording.Config {
	return recording.Config{
		SampleRate:    c.Recording.SampleRate,
		BlockSize:     c.Recording.BlockSize,
		Device:        c.Recording.Device,
		Timeout:       c.Recording.Timeout,
		MediaWindow:   c.Media.Window,
		MediaRealtime: c.Media.Realtime,
	}
}

func (c *Config) ToTranscriberConfig() transcriber.Config {
	return transcriber.Config{
		Provider:   c.Transcription.Provider,
		URL:        c.Transcription.URL,
		APIKey:     c.resolveAPIKey(c.Transcription.APIKey, "openai"),
		Language:   c.Transcription.Language,
		Model:      c.Transcription.Model,
		Timeout:    c.Transcription.Timeout,
		MaxRetries: c.Transcription.MaxRetries,
	}
}

func (c *Config) ToSignConfig() signvideo.Config {
	return signvideo.Config{
		URL:     c.Sign.URL,
		Timeout: c.Sign.Timeout,
	}
}

// VideoDir returns the configured output directory or the default cache dir.
func (c *Config) VideoDir() (string, error) {
	if c.Sign.OutputDir != "" {
		return c.Sign.OutputDir, nil
	}
	return signvideo.DefaultDir()
}

// EmptyText returns the placeholder shown when nothing was recognised.
func (c *Config) EmptyText() string {
	if c.Transcription.EmptyText == "" {
		return DefaultEmptyText
	}
	return c.Transcription.EmptyText
}

// ToLLMConfig returns the LLM adapter configuration
func (c *Config) ToLLMConfig() llm.Config {
	pp := c.LLM.PostProcessing
	return llm.Config{
		Provider:          c.LLM.Provider,
		APIKey:            c.resolveAPIKey(c.LLM.APIKey, c.LLM.Provider),
		Model:             c.LLM.Model,
		RemoveFillerWords: pp.RemoveFillerWords,
		AddPunctuation:    pp.AddPunctuation,
		FixGrammar:        pp.FixGrammar,
		Simplify:          pp.Simplify,
		CustomPrompt:      c.LLM.CustomPrompt,
	}
}

// IsLLMEnabled returns true if LLM post-processing is enabled and configured
func (c *Config) IsLLMEnabled() bool {
	return c.LLM.Enabled && c.LLM.Provider != ""
}

// resolveAPIKey prefers the key from the config file and falls back to the
// provider's environment variable.
func (c *Config) resolveAPIKey(configured, provider string) string {
	if configured != "" {
		return configured
	}
	if envVar := envVarForProvider(provider); envVar != "" {
		return os.Getenv(envVar)
	}
	return ""
}

func envVarForProvider(provider string) string {
	switch provider {
	case "openai":
		return "OPENAI_API_KEY"
	case "groq":
		return "GROQ_API_KEY"
	default:
		return ""
	}
}
