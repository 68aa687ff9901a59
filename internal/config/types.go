package config

import "time"

type Config struct {
	Recording     RecordingConfig     `toml:"recording"`
	Media         MediaConfig         `toml:"media"`
	Transcription TranscriptionConfig `toml:"transcription"`
	Sign          SignConfig          `toml:"sign"`
	LLM           LLMConfig           `toml:"llm"`
	Notifications NotificationsConfig `toml:"notifications"`
	Metrics       MetricsConfig       `toml:"metrics"`
}

// RecordingConfig configures microphone capture.
type RecordingConfig struct {
	SampleRate int           `toml:"sample_rate"`
	BlockSize  int           `toml:"block_size"`
	Device     string        `toml:"device"`
	Timeout    time.Duration `toml:"timeout"`
}

// MediaConfig configures capture from a media file.
type MediaConfig struct {
	Window   time.Duration `toml:"window"`
	Realtime bool          `toml:"realtime"`
}

type TranscriptionConfig struct {
	Provider   string        `toml:"provider"` // "remote" or "openai"
	URL        string        `toml:"url"`
	APIKey     string        `toml:"api_key"`
	Language   string        `toml:"language"`
	Model      string        `toml:"model"`
	Timeout    time.Duration `toml:"timeout"`
	MaxRetries int           `toml:"max_retries"`
	EmptyText  string        `toml:"empty_text"` // shown when nothing was recognised
}

type SignConfig struct {
	URL       string        `toml:"url"`
	Timeout   time.Duration `toml:"timeout"`
	OutputDir string        `toml:"output_dir"` // empty = ~/.cache/aslbridge/videos
	Player    string        `toml:"player"`     // empty disables playback
}

// LLMConfig configures the optional transcript cleanup before translation.
type LLMConfig struct {
	Enabled        bool                    `toml:"enabled"`
	Provider       string                  `toml:"provider"`
	APIKey         string                  `toml:"api_key"`
	Model          string                  `toml:"model"`
	PostProcessing LLMPostProcessingConfig `toml:"post_processing"`
	CustomPrompt   string                  `toml:"custom_prompt"`
}

type LLMPostProcessingConfig struct {
	RemoveFillerWords bool `toml:"remove_filler_words"`
	AddPunctuation    bool `toml:"add_punctuation"`
	FixGrammar        bool `toml:"fix_grammar"`
	Simplify          bool `toml:"simplify"`
}

type NotificationsConfig struct {
	Enabled bool   `toml:"enabled"`
	Type    string `toml:"type"` // "desktop", "log", "none"
}

type MetricsConfig struct {
	Addr string `toml:"addr"` // e.g. "127.0.0.1:9464"; empty disables the endpoint
}
