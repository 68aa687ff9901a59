package main

import (
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/leonardotrapani/aslbridge/internal/bus"
	"github.com/leonardotrapani/aslbridge/internal/config"
	"github.com/leonardotrapani/aslbridge/internal/daemon"
	"github.com/leonardotrapani/aslbridge/internal/deps"
	"github.com/leonardotrapani/aslbridge/internal/metrics"
	"github.com/leonardotrapani/aslbridge/internal/notify"
	"github.com/leonardotrapani/aslbridge/internal/tui"
	"github.com/leonardotrapani/aslbridge/internal/wav"
	"github.com/spf13/cobra"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "aslbridge",
	Short: "Turn speech into sign-language videos",
}

func init() {
	rootCmd.AddCommand(
		serveCmd(),
		toggleCmd(),
		captureCmd(),
		cancelCmd(),
		statusCmd(),
		resultCmd(),
		versionCmd(),
		stopCmd(),
		logCmd(),
		configureCmd(),
		encodeCmd(),
		inspectCmd(),
		doctorCmd(),
	)
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, err := config.NewManager()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			cfg := mgr.GetConfig()

			var n notify.Notifier = notify.Nop{}
			if cfg.Notifications.Enabled {
				n = notify.New(cfg.Notifications.Type)
			}

			warnMissingTools(cfg)

			return daemon.New(mgr, n, metrics.New()).Run()
		},
	}
}

// sendCommand forwards a single bus command and prints the daemon's answer.
func sendCommand(cmd byte, what string) error {
	resp, err := bus.SendCommand(cmd)
	if err != nil {
		return fmt.Errorf("failed to %s: %w", what, err)
	}
	fmt.Print(resp)
	return nil
}

func toggleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "toggle",
		Short: "Start or finish a microphone capture",
		RunE: func(cmd *cobra.Command, args []string) error {
			return sendCommand(bus.CmdToggle, "toggle capture")
		},
	}
}

func captureCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "capture <file.wav>",
		Short: "Capture audio from a media file instead of the microphone",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := filepath.Abs(args[0])
			if err != nil {
				return fmt.Errorf("failed to resolve %s: %w", args[0], err)
			}
			if _, err := os.Stat(path); err != nil {
				return fmt.Errorf("media file: %w", err)
			}
			resp, err := bus.SendLine(bus.CmdMedia, path)
			if err != nil {
				return fmt.Errorf("failed to start media capture: %w", err)
			}
			fmt.Print(resp)
			return nil
		},
	}
}

func statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Get current pipeline status",
		RunE: func(cmd *cobra.Command, args []string) error {
			return sendCommand(bus.CmdStatus, "get status")
		},
	}
}

func resultCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "result",
		Short: "Show transcript and video of the last session",
		RunE: func(cmd *cobra.Command, args []string) error {
			return sendCommand(bus.CmdResult, "get result")
		},
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Get protocol version",
		RunE: func(cmd *cobra.Command, args []string) error {
			return sendCommand(bus.CmdVersion, "get version")
		},
	}
}

func stopCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stop",
		Short: "Stop the daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			return sendCommand(bus.CmdQuit, "stop daemon")
		},
	}
}

func cancelCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cancel",
		Short: "Cancel the current session",
		RunE: func(cmd *cobra.Command, args []string) error {
			return sendCommand(bus.CmdCancel, "cancel session")
		},
	}
}

func logCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "log <message...>",
		Short: "Write a message into the daemon log",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := bus.SendLine(bus.CmdLog, strings.Join(args, " "))
			if err != nil {
				return fmt.Errorf("failed to send log message: %w", err)
			}
			fmt.Print(resp)
			return nil
		},
	}
}

func configureCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "configure",
		Short: "Interactive configuration setup",
		Long: `Interactive configuration wizard for aslbridge.
This will guide you through setting up:
- Transcription and sign-video endpoints
- Microphone and media capture limits
- LLM transcript cleanup
- Notifications and the metrics endpoint`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigure()
		},
	}
}

func runConfigure() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	result, err := tui.Run(cfg)
	if err != nil {
		return fmt.Errorf("configuration wizard error: %w", err)
	}

	if result.Cancelled {
		fmt.Println("Configuration cancelled.")
		return nil
	}

	if err := result.Config.Validate(); err != nil {
		fmt.Printf("Configuration validation failed: %v\n", err)
		return err
	}

	if err := config.Save(result.Config); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	fmt.Println()
	fmt.Println("Configuration saved successfully!")
	fmt.Println()

	showNextSteps()

	return nil
}

func showNextSteps() {
	serviceRunning := false
	if err := exec.Command("systemctl", "--user", "is-active", "--quiet", "aslbridge.service").Run(); err == nil {
		serviceRunning = true
	}

	fmt.Println("Next Steps:")
	if !serviceRunning {
		fmt.Println("1. Start the daemon: aslbridge serve (or systemctl --user start aslbridge.service)")
	} else {
		fmt.Println("1. The running daemon picks up config changes automatically")
	}
	fmt.Println("2. Try it: aslbridge toggle, speak, then aslbridge toggle again")
	fmt.Println("3. Check the outcome: aslbridge result")
	fmt.Println()

	configPath, _ := config.GetConfigPath()
	fmt.Printf("Config file location: %s\n", configPath)
}

func encodeCmd() *cobra.Command {
	var rate uint32

	cmd := &cobra.Command{
		Use:   "encode <in.f32> <out.wav>",
		Short: "Encode raw little-endian float32 samples as a 16-bit WAV",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if rate == 0 {
				return fmt.Errorf("--rate must be positive")
			}
			raw, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read samples: %w", err)
			}
			samples, err := decodeFloat32(raw)
			if err != nil {
				return err
			}
			if err := os.WriteFile(args[1], wav.Encode(samples, rate), 0o644); err != nil {
				return fmt.Errorf("failed to write wav: %w", err)
			}
			fmt.Printf("Wrote %d samples at %d Hz to %s\n", len(samples), rate, args[1])
			return nil
		},
	}

	cmd.Flags().Uint32Var(&rate, "rate", 44100, "Sample rate in Hz")

	return cmd
}

// decodeFloat32 reads packed little-endian IEEE-754 float32 samples.
func decodeFloat32(raw []byte) ([]float32, error) {
	if len(raw)%4 != 0 {
		return nil, fmt.Errorf("input size %d is not a multiple of 4 bytes", len(raw))
	}
	samples := make([]float32, len(raw)/4)
	for i := range samples {
		samples[i] = math.Float32frombits(binary.LittleEndian.Uint32(raw[i*4:]))
	}
	return samples, nil
}

func inspectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <file.wav>",
		Short: "Print the format of a WAV file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read wav: %w", err)
			}
			info, err := wav.Inspect(data)
			if err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}
			fmt.Print(formatInfo(info))
			return nil
		},
	}
}

func formatInfo(info wav.Info) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Format:      %d\n", info.Format)
	fmt.Fprintf(&b, "Channels:    %d\n", info.Channels)
	fmt.Fprintf(&b, "Sample rate: %d Hz\n", info.SampleRate)
	fmt.Fprintf(&b, "Bit depth:   %d\n", info.BitsPerSample)
	fmt.Fprintf(&b, "Data size:   %d bytes\n", info.DataSize)
	fmt.Fprintf(&b, "Duration:    %v\n", info.Duration)
	return b.String()
}

func doctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check the external programs aslbridge uses",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			for _, s := range deps.CheckAll(deps.Tools(cfg.Sign.Player)) {
				fmt.Println(formatStatus(s))
			}
			if err := cfg.Validate(); err != nil {
				fmt.Printf("\nConfig: %v\n", err)
			} else {
				fmt.Println("\nConfig: ok")
			}
			return nil
		},
	}
}

func formatStatus(s deps.Status) string {
	if !s.Installed {
		return fmt.Sprintf("✗ %-12s not found (%s)", s.Name, s.Purpose)
	}
	line := fmt.Sprintf("✓ %-12s %s", s.Name, s.Path)
	if s.Version != "" {
		line += " (" + s.Version + ")"
	}
	return line
}

func warnMissingTools(cfg *config.Config) {
	player := cfg.Sign.Player
	tools := deps.Tools(player)
	for _, s := range deps.CheckAll(tools) {
		if s.Installed {
			continue
		}
		switch {
		case s.Name == "notify-send" && cfg.Notifications.Enabled && cfg.Notifications.Type == "desktop":
			fmt.Fprintf(os.Stderr, "warning: notify-send not found, desktop notifications will fail\n")
		case s.Name == player:
			fmt.Fprintf(os.Stderr, "warning: player %q not found, videos will only be saved\n", player)
		}
	}
}
