package tui

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/leonardotrapani/aslbridge/internal/config"
	"github.com/muesli/termenv"
)

// ConfigureResult holds the configuration result from the TUI
type ConfigureResult struct {
	Config    *config.Config
	Cancelled bool
}

// ConfigSection represents a configuration section
type ConfigSection string

const (
	SectionServices      ConfigSection = "services"
	SectionCapture       ConfigSection = "capture"
	SectionLLM           ConfigSection = "llm"
	SectionNotifications ConfigSection = "notifications"
	SectionMetrics       ConfigSection = "metrics"
	SectionSaveExit      ConfigSection = "save_exit"
	SectionDiscardExit   ConfigSection = "discard_exit"
)

// Run starts the menu-driven configuration wizard on a copy of cfg.
func Run(existing *config.Config) (*ConfigureResult, error) {
	cfg := config.DefaultConfig()
	if existing != nil {
		copied := *existing
		cfg = &copied
	}

	for {
		clearScreen()
		fmt.Println(Logo())
		fmt.Println()

		section, err := selectSection(cfg)
		if err != nil {
			return &ConfigureResult{Cancelled: true}, nil
		}

		var editErr error
		switch section {
		case SectionSaveExit:
			confirmed, err := showSummary(cfg)
			if err != nil {
				return &ConfigureResult{Cancelled: true}, nil
			}
			if confirmed {
				return &ConfigureResult{Config: cfg}, nil
			}
		case SectionDiscardExit:
			return &ConfigureResult{Cancelled: true}, nil
		case SectionServices:
			editErr = editServices(cfg)
		case SectionCapture:
			editErr = editCapture(cfg)
		case SectionLLM:
			editErr = editLLM(cfg)
		case SectionNotifications:
			editErr = editNotifications(cfg)
		case SectionMetrics:
			editErr = editMetrics(cfg)
		}
		if editErr != nil && !errors.Is(editErr, huh.ErrUserAborted) {
			return nil, editErr
		}
	}
}

func selectSection(cfg *config.Config) (ConfigSection, error) {
	options := []huh.Option[ConfigSection]{
		huh.NewOption(fmt.Sprintf("Services (%s)", cfg.Transcription.Provider), SectionServices),
		huh.NewOption(fmt.Sprintf("Capture (mic %s, media %s)", formatDuration(cfg.Recording.Timeout), formatDuration(cfg.Media.Window)), SectionCapture),
		huh.NewOption(fmt.Sprintf("Transcript cleanup (%s)", onOff(cfg.LLM.Enabled)), SectionLLM),
		huh.NewOption(fmt.Sprintf("Notifications (%s)", notificationsLabel(cfg)), SectionNotifications),
		huh.NewOption(fmt.Sprintf("Metrics (%s)", metricsLabel(cfg)), SectionMetrics),
		huh.NewOption("Save & Exit", SectionSaveExit),
		huh.NewOption("Discard & Exit", SectionDiscardExit),
	}

	var selected ConfigSection
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[ConfigSection]().
				Title("Configuration Menu").
				Description("↑/↓ navigate • enter select • esc cancel").
				Options(options...).
				Value(&selected),
		),
	).WithTheme(getTheme())

	if err := form.Run(); err != nil {
		return "", err
	}
	return selected, nil
}

func editServices(cfg *config.Config) error {
	provider := cfg.Transcription.Provider
	transcribeURL := cfg.Transcription.URL
	apiKey := cfg.Transcription.APIKey
	signURL := cfg.Sign.URL
	player := cfg.Sign.Player
	retries := strconv.Itoa(cfg.Transcription.MaxRetries)

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Transcription service").
				Options(
					huh.NewOption("Remote speech-to-text endpoint", "remote"),
					huh.NewOption("OpenAI Whisper", "openai"),
				).
				Value(&provider),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Speech-to-text URL").
				Validate(validateURL).
				Value(&transcribeURL),
		).WithHideFunc(func() bool { return provider != "remote" }),
		huh.NewGroup(
			huh.NewInput().
				Title("OpenAI API key").
				Description("Leave empty to use OPENAI_API_KEY").
				EchoMode(huh.EchoModePassword).
				Value(&apiKey),
		).WithHideFunc(func() bool { return provider != "openai" }),
		huh.NewGroup(
			huh.NewInput().
				Title("Transcription retries").
				Validate(validateNonNegativeInt).
				Value(&retries),
			huh.NewInput().
				Title("Text-to-sign video URL").
				Validate(validateURL).
				Value(&signURL),
			huh.NewInput().
				Title("Video player command").
				Description("Leave empty to only save videos").
				Value(&player),
		),
	).WithTheme(getTheme())

	if err := form.Run(); err != nil {
		return err
	}

	cfg.Transcription.Provider = provider
	cfg.Transcription.URL = strings.TrimSpace(transcribeURL)
	cfg.Transcription.APIKey = strings.TrimSpace(apiKey)
	cfg.Transcription.MaxRetries, _ = strconv.Atoi(retries)
	cfg.Sign.URL = strings.TrimSpace(signURL)
	cfg.Sign.Player = strings.TrimSpace(player)
	return nil
}

func editCapture(cfg *config.Config) error {
	micTimeout := formatDuration(cfg.Recording.Timeout)
	mediaWindow := formatDuration(cfg.Media.Window)
	device := cfg.Recording.Device
	realtime := cfg.Media.Realtime

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Microphone capture limit").
				Description(`e.g. "30s", "1m"`).
				Validate(validateDuration).
				Value(&micTimeout),
			huh.NewInput().
				Title("Media capture window").
				Validate(validateDuration).
				Value(&mediaWindow),
			huh.NewInput().
				Title("PulseAudio source").
				Description("Leave empty for the default microphone").
				Value(&device),
			huh.NewConfirm().
				Title("Play media files in real time?").
				Value(&realtime),
		),
	).WithTheme(getTheme())

	if err := form.Run(); err != nil {
		return err
	}

	return applyCapture(cfg, micTimeout, mediaWindow, device, realtime)
}

func editLLM(cfg *config.Config) error {
	enabled := cfg.LLM.Enabled
	provider := cfg.LLM.Provider
	if provider == "" {
		provider = "openai"
	}
	model := cfg.LLM.Model
	var steps []string
	pp := cfg.LLM.PostProcessing
	for step, on := range map[string]bool{
		"fillers": pp.RemoveFillerWords, "punctuation": pp.AddPunctuation,
		"grammar": pp.FixGrammar, "simplify": pp.Simplify,
	} {
		if on {
			steps = append(steps, step)
		}
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Clean up transcripts before translating?").
				Description("Uses an LLM to tidy the text sent to the sign video service").
				Value(&enabled),
		),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("LLM provider").
				Options(huh.NewOption("OpenAI", "openai"), huh.NewOption("Groq", "groq")).
				Value(&provider),
			huh.NewInput().
				Title("Model").
				Value(&model),
			huh.NewMultiSelect[string]().
				Title("Cleanup steps").
				Options(
					huh.NewOption("Remove filler words", "fillers"),
					huh.NewOption("Add punctuation", "punctuation"),
					huh.NewOption("Fix grammar", "grammar"),
					huh.NewOption("Simplify sentences", "simplify"),
				).
				Value(&steps),
		).WithHideFunc(func() bool { return !enabled }),
	).WithTheme(getTheme())

	if err := form.Run(); err != nil {
		return err
	}

	cfg.LLM.Enabled = enabled
	cfg.LLM.Provider = provider
	cfg.LLM.Model = strings.TrimSpace(model)
	applyCleanupSteps(cfg, steps)
	return nil
}

func editNotifications(cfg *config.Config) error {
	enabled := cfg.Notifications.Enabled
	notifType := cfg.Notifications.Type
	if notifType == "" {
		notifType = "desktop"
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Enable notifications?").
				Value(&enabled),
		),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Notification Type").
				Options(
					huh.NewOption("Desktop notifications (notify-send)", "desktop"),
					huh.NewOption("Log to console only", "log"),
					huh.NewOption("None (silent)", "none"),
				).
				Value(&notifType),
		).WithHideFunc(func() bool { return !enabled }),
	).WithTheme(getTheme())

	if err := form.Run(); err != nil {
		return err
	}

	cfg.Notifications.Enabled = enabled
	cfg.Notifications.Type = notifType
	return nil
}

func editMetrics(cfg *config.Config) error {
	addr := cfg.Metrics.Addr

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Prometheus listen address").
				Description(`e.g. "127.0.0.1:9464"; leave empty to disable`).
				Validate(validateAddr).
				Value(&addr),
		),
	).WithTheme(getTheme())

	if err := form.Run(); err != nil {
		return err
	}

	cfg.Metrics.Addr = strings.TrimSpace(addr)
	return nil
}

func showSummary(cfg *config.Config) (bool, error) {
	fmt.Println()
	fmt.Println(StyleHeader.Render("Configuration Summary"))
	fmt.Println(StyleBox.Render(strings.Join(summaryLines(cfg), "\n")))

	if err := cfg.Validate(); err != nil {
		fmt.Println(StyleError.Render("Invalid: " + err.Error()))
	}
	fmt.Println()

	var confirmed bool
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Save this configuration?").
				Affirmative("Save").
				Negative("Cancel").
				Value(&confirmed),
		),
	).WithTheme(getTheme())

	if err := form.Run(); err != nil {
		return false, err
	}
	return confirmed, nil
}

// clearScreen clears the terminal screen
func clearScreen() {
	output := termenv.NewOutput(os.Stdout)
	output.ClearScreen()
}
