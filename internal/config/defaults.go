package config

import (
	"time"

	"github.com/leonardotrapani/aslbridge/internal/signvideo"
	"github.com/leonardotrapani/aslbridge/internal/transcriber"
)

const DefaultEmptyText = "No speech detected."

// DefaultConfig returns the configuration written on first run.
func DefaultConfig() *Config {
	return &Config{
		Recording: RecordingConfig{
			SampleRate: 44100,
			BlockSize:  4096,
			Device:     "",
			Timeout:    time.Minute,
		},
		Media: MediaConfig{
			Window:   10 * time.Second,
			Realtime: true,
		},
		Transcription: TranscriptionConfig{
			Provider:   "remote",
			URL:        transcriber.DefaultURL,
			Model:      "whisper-1",
			Timeout:    60 * time.Second,
			MaxRetries: 2,
			EmptyText:  DefaultEmptyText,
		},
		Sign: SignConfig{
			URL:     signvideo.DefaultURL,
			Timeout: 2 * time.Minute,
			Player:  "xdg-open",
		},
		LLM: LLMConfig{
			Enabled:  false,
			Provider: "openai",
			Model:    "gpt-4o-mini",
			PostProcessing: LLMPostProcessingConfig{
				RemoveFillerWords: true,
				AddPunctuation:    true,
				FixGrammar:        true,
			},
		},
		Notifications: NotificationsConfig{
			Enabled: true,
			Type:    "desktop",
		},
	}
}
