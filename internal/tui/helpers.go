package tui

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/leonardotrapani/aslbridge/internal/config"
)

func validateURL(s string) error {
	u, err := url.Parse(strings.TrimSpace(s))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return errors.New("enter an http(s) URL")
	}
	return nil
}

func validateDuration(s string) error {
	d, err := time.ParseDuration(strings.TrimSpace(s))
	if err != nil {
		return errors.New(`use a duration like "30s" or "2m"`)
	}
	if d <= 0 {
		return errors.New("duration must be positive")
	}
	return nil
}

func validateNonNegativeInt(s string) error {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 0 {
		return errors.New("enter a whole number, 0 or more")
	}
	return nil
}

func validateAddr(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if _, _, err := net.SplitHostPort(s); err != nil {
		return errors.New(`use host:port, e.g. "127.0.0.1:9464"`)
	}
	return nil
}

func formatDuration(d time.Duration) string {
	s := d.String()
	if strings.HasSuffix(s, "m0s") {
		s = strings.TrimSuffix(s, "0s")
	}
	if strings.HasSuffix(s, "h0m") {
		s = strings.TrimSuffix(s, "0m")
	}
	return s
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

func notificationsLabel(cfg *config.Config) string {
	if !cfg.Notifications.Enabled {
		return "off"
	}
	return cfg.Notifications.Type
}

func metricsLabel(cfg *config.Config) string {
	if cfg.Metrics.Addr == "" {
		return "off"
	}
	return cfg.Metrics.Addr
}

func maskAPIKey(key string) string {
	if key == "" {
		return "(from environment)"
	}
	if len(key) <= 8 {
		return "***"
	}
	return key[:3] + "..." + key[len(key)-4:]
}

func applyCapture(cfg *config.Config, micTimeout, mediaWindow, device string, realtime bool) error {
	mic, err := time.ParseDuration(strings.TrimSpace(micTimeout))
	if err != nil {
		return fmt.Errorf("microphone limit: %w", err)
	}
	media, err := time.ParseDuration(strings.TrimSpace(mediaWindow))
	if err != nil {
		return fmt.Errorf("media window: %w", err)
	}
	cfg.Recording.Timeout = mic
	cfg.Media.Window = media
	cfg.Recording.Device = strings.TrimSpace(device)
	cfg.Media.Realtime = realtime
	return nil
}

func applyCleanupSteps(cfg *config.Config, steps []string) {
	set := make(map[string]bool, len(steps))
	for _, s := range steps {
		set[s] = true
	}
	cfg.LLM.PostProcessing = config.LLMPostProcessingConfig{
		RemoveFillerWords: set["fillers"],
		AddPunctuation:    set["punctuation"],
		FixGrammar:        set["grammar"],
		Simplify:          set["simplify"],
	}
}

func summaryLines(cfg *config.Config) []string {
	label := func(s string) string { return StyleLabel.Render(s) }
	var lines []string

	switch cfg.Transcription.Provider {
	case "openai":
		lines = append(lines, fmt.Sprintf("%s OpenAI %s, key %s", label("Transcription:"), cfg.Transcription.Model, maskAPIKey(cfg.Transcription.APIKey)))
	default:
		lines = append(lines, fmt.Sprintf("%s %s", label("Transcription:"), cfg.Transcription.URL))
	}
	lines = append(lines, fmt.Sprintf("%s %s", label("Sign video:"), cfg.Sign.URL))

	player := cfg.Sign.Player
	if player == "" {
		player = "none"
	}
	lines = append(lines, fmt.Sprintf("%s %s", label("Player:"), player))
	lines = append(lines, fmt.Sprintf("%s mic %s, media %s", label("Capture:"),
		formatDuration(cfg.Recording.Timeout), formatDuration(cfg.Media.Window)))

	if cfg.LLM.Enabled {
		var steps []string
		pp := cfg.LLM.PostProcessing
		for name, on := range map[string]bool{
			"remove fillers": pp.RemoveFillerWords, "add punctuation": pp.AddPunctuation,
			"fix grammar": pp.FixGrammar, "simplify": pp.Simplify,
		} {
			if on {
				steps = append(steps, name)
			}
		}
		sort.Strings(steps)
		lines = append(lines, fmt.Sprintf("%s %s (%s): %s", label("Cleanup:"), cfg.LLM.Provider, cfg.LLM.Model, strings.Join(steps, ", ")))
	} else {
		lines = append(lines, fmt.Sprintf("%s off", label("Cleanup:")))
	}

	lines = append(lines, fmt.Sprintf("%s %s", label("Notifications:"), notificationsLabel(cfg)))
	lines = append(lines, fmt.Sprintf("%s %s", label("Metrics:"), metricsLabel(cfg)))
	return lines
}
