package notify

import (
	"fmt"
	"log"
	"os/exec"
)

const appName = "ASL Bridge"

// Notifier reports session progress to the user.
type Notifier interface {
	CaptureStarted(source string)
	CaptureEnded(reason string)
	Transcribing()
	Translating(text string)
	VideoReady(path string)
	Cancelled()
	Error(msg string)
	Notify(title, message string)
}

// New returns the notifier for the configured type: desktop, log or none.
func New(kind string) Notifier {
	switch kind {
	case "log":
		return Log{}
	case "none":
		return Nop{}
	default:
		return Desktop{}
	}
}

// Desktop sends notifications through notify-send.
type Desktop struct{}

func (d Desktop) CaptureStarted(source string) {
	d.Notify(appName, fmt.Sprintf("Capturing %s", source))
}

func (d Desktop) CaptureEnded(reason string) {
	d.Notify(appName, fmt.Sprintf("Capture ended (%s)", reason))
}

func (d Desktop) Transcribing() {
	d.Notify(appName, "Transcribing audio...")
}

func (d Desktop) Translating(text string) {
	d.Notify(appName, fmt.Sprintf("Translating: %s", text))
}

func (d Desktop) VideoReady(path string) {
	d.Notify(appName, fmt.Sprintf("Sign video ready: %s", path))
}

func (d Desktop) Cancelled() {
	d.Notify(appName, "Cancelled")
}

func (Desktop) Error(msg string) {
	cmd := exec.Command("notify-send", "-a", appName, "-u", "critical", appName+" Error", msg)
	if err := cmd.Run(); err != nil {
		log.Printf("Failed to send error notification: %v", err)
	}
}

func (Desktop) Notify(title, message string) {
	cmd := exec.Command("notify-send", "-a", appName, title, message)
	if err := cmd.Run(); err != nil {
		log.Printf("Failed to send notification: %v", err)
	}
}

// Log writes notifications to the standard logger.
type Log struct{}

func (l Log) CaptureStarted(source string) {
	l.Notify(appName, fmt.Sprintf("Capturing %s", source))
}

func (l Log) CaptureEnded(reason string) {
	l.Notify(appName, fmt.Sprintf("Capture ended (%s)", reason))
}

func (l Log) Transcribing() {
	l.Notify(appName, "Transcribing audio...")
}

func (l Log) Translating(text string) {
	l.Notify(appName, fmt.Sprintf("Translating: %s", text))
}

func (l Log) VideoReady(path string) {
	l.Notify(appName, fmt.Sprintf("Sign video ready: %s", path))
}

func (l Log) Cancelled() {
	l.Notify(appName, "Cancelled")
}

func (Log) Error(msg string) {
	log.Printf("Notification: %s Error: %s", appName, msg)
}

func (Log) Notify(title, message string) {
	log.Printf("Notification: %s: %s", title, message)
}

// Nop is a Notifier that does absolutely nothing.
// Useful in unit tests or headless runs.
type Nop struct{}

func (Nop) CaptureStarted(string) {}
func (Nop) CaptureEnded(string)   {}
func (Nop) Transcribing()         {}
func (Nop) Translating(string)    {}
func (Nop) VideoReady(string)     {}
func (Nop) Cancelled()            {}
func (Nop) Error(string)          {}
func (Nop) Notify(string, string) {}
