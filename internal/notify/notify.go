// Package notify emits advisory messages to the user.
package notify

import (
	"log"
	"os/exec"
)

type Notifier interface {
	Info(title, body string)
	Warn(title, body string)
	Error(title, body string)
}

// New returns the notifier for the configured type: "desktop", "log", or
// "none". Unknown values fall back to log so advisories are never lost.
func New(kind string) Notifier {
	switch kind {
	case "desktop":
		return Desktop{}
	case "none":
		return Nop{}
	default:
		return Log{}
	}
}

// Desktop sends notifications via notify-send.
type Desktop struct{}

func (Desktop) Info(title, body string) {
	send(title, body, "normal")
}

func (Desktop) Warn(title, body string) {
	send(title, body, "normal")
}

func (Desktop) Error(title, body string) {
	send(title, body, "critical")
}

func send(title, body, urgency string) {
	cmd := exec.Command("notify-send", "-a", "voxpaste", "-u", urgency, title, body)
	if err := cmd.Run(); err != nil {
		// The advisory still matters; fall back to the log.
		log.Printf("Notify: notify-send failed (%v): %s: %s", err, title, body)
	}
}

// Log writes advisories to the process log.
type Log struct{}

func (Log) Info(title, body string)  { log.Printf("Notify: %s: %s", title, body) }
func (Log) Warn(title, body string)  { log.Printf("Notify: warning: %s: %s", title, body) }
func (Log) Error(title, body string) { log.Printf("Notify: error: %s: %s", title, body) }

// Nop discards everything. Used in tests and when notifications are off.
type Nop struct{}

func (Nop) Info(title, body string)  {}
func (Nop) Warn(title, body string)  {}
func (Nop) Error(title, body string) {}
