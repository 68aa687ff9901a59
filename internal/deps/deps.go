// Package deps reports which external programs aslbridge can use.
package deps

import (
	"os/exec"
	"strings"
)

// Status represents the installation status of a dependency
type Status struct {
	Name      string
	Purpose   string
	Installed bool
	Path      string
	Version   string
}

// Tool is an external program and the flag that prints its version.
type Tool struct {
	Name        string
	Purpose     string
	VersionFlag string
}

// Tools lists the programs used for notifications, playback and capture.
// An empty player disables the player entry.
func Tools(player string) []Tool {
	tools := []Tool{
		{Name: "notify-send", Purpose: "desktop notifications", VersionFlag: "--version"},
		{Name: "pactl", Purpose: "list PulseAudio/PipeWire sources", VersionFlag: "--version"},
	}
	if player != "" {
		tools = append(tools, Tool{Name: player, Purpose: "play sign videos", VersionFlag: "--version"})
	}
	return tools
}

// Check looks tool up in PATH and reads the first line of its version output.
func Check(tool Tool) Status {
	status := Status{Name: tool.Name, Purpose: tool.Purpose}

	path, err := exec.LookPath(tool.Name)
	if err != nil {
		return status
	}
	status.Installed = true
	status.Path = path

	if tool.VersionFlag == "" {
		return status
	}
	output, err := exec.Command(path, tool.VersionFlag).Output()
	if err == nil {
		lines := strings.Split(string(output), "\n")
		if len(lines) > 0 {
			status.Version = strings.TrimSpace(lines[0])
		}
	}
	return status
}

// CheckAll checks every tool in order.
func CheckAll(tools []Tool) []Status {
	statuses := make([]Status, 0, len(tools))
	for _, tool := range tools {
		statuses = append(statuses, Check(tool))
	}
	return statuses
}
