// Package doctor inspects the host for the external tools voxpaste relies
// on and reports what a session would use.
package doctor

import (
	"context"
	"os/exec"
	"strings"
	"time"

	"github.com/jwhitfield/voxpaste/internal/backend"
	"github.com/jwhitfield/voxpaste/internal/credential"
)

// Status is the result of one tool/daemon probe.
type Status struct {
	Name     string
	OK       bool
	Optional bool
	Detail   string
}

// ToolStatus reports whether a tool is installed and where.
type ToolStatus struct {
	Installed bool
	Path      string
}

func CheckTool(name string) ToolStatus {
	path, err := exec.LookPath(name)
	if err != nil {
		return ToolStatus{}
	}
	return ToolStatus{Installed: true, Path: path}
}

func probe(ctx context.Context, name string, args ...string) bool {
	probeCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return exec.CommandContext(probeCtx, name, args...).Run() == nil
}

// Run executes every probe and returns the findings in report order.
func Run(ctx context.Context) []Status {
	var out []Status

	out = append(out, recordingChecks(ctx)...)
	out = append(out, deliveryChecks()...)
	out = append(out, advisoryChecks()...)
	out = append(out, credentialCheck())
	return out
}

func recordingChecks(ctx context.Context) []Status {
	checks := []Status{}

	pw := CheckTool("pw-record")
	switch {
	case pw.Installed && probe(ctx, "pw-cli", "info"):
		checks = append(checks, Status{Name: "pipewire", OK: true, Detail: pw.Path})
	case pw.Installed:
		checks = append(checks, Status{Name: "pipewire", Detail: "pw-record installed but the daemon is not running"})
	default:
		checks = append(checks, Status{Name: "pipewire", Detail: "pw-record not found"})
	}

	pa := CheckTool("parecord")
	switch {
	case pa.Installed && probe(ctx, "pactl", "info"):
		checks = append(checks, Status{Name: "pulseaudio", OK: true, Detail: pa.Path})
	case pa.Installed:
		checks = append(checks, Status{Name: "pulseaudio", Detail: "parecord installed but the daemon is not running"})
	default:
		checks = append(checks, Status{Name: "pulseaudio", Detail: "parecord not found"})
	}

	for _, tool := range []struct{ name, bin string }{
		{"alsa", "arecord"},
		{"sox", "rec"},
	} {
		ts := CheckTool(tool.bin)
		s := Status{Name: tool.name, OK: ts.Installed, Detail: ts.Path}
		if !ts.Installed {
			s.Detail = tool.bin + " not found"
		}
		checks = append(checks, s)
	}

	// Summarize what a real session would pick.
	if cap, err := backend.NewSelector().Select(ctx); err == nil {
		checks = append(checks, Status{Name: "selected backend", OK: true, Detail: cap.Name})
	} else {
		checks = append(checks, Status{Name: "selected backend", Detail: err.Error()})
	}
	return checks
}

func deliveryChecks() []Status {
	var checks []Status

	clipboardTools := []string{"wl-copy", "xclip", "xsel"}
	found := ""
	for _, tool := range clipboardTools {
		if ts := CheckTool(tool); ts.Installed {
			found = ts.Path
			break
		}
	}
	if found != "" {
		checks = append(checks, Status{Name: "clipboard", OK: true, Detail: found})
	} else {
		checks = append(checks, Status{Name: "clipboard", Detail: "none of " + strings.Join(clipboardTools, ", ") + " found"})
	}

	pasteOK := false
	pasteDetail := "no focus/paste tool (hyprctl+wtype or xdotool)"
	if CheckTool("hyprctl").Installed && CheckTool("wtype").Installed {
		pasteOK, pasteDetail = true, "hyprctl + wtype"
	} else if CheckTool("xdotool").Installed {
		pasteOK, pasteDetail = true, "xdotool"
	}
	checks = append(checks, Status{Name: "auto-paste", OK: pasteOK, Optional: true, Detail: pasteDetail})

	return checks
}

func advisoryChecks() []Status {
	var checks []Status

	ns := CheckTool("notify-send")
	s := Status{Name: "notifications", OK: ns.Installed, Optional: true, Detail: ns.Path}
	if !ns.Installed {
		s.Detail = "notify-send not found, advisories go to the log"
	}
	checks = append(checks, s)

	ind := Status{Name: "stop indicator", Optional: true, Detail: "zenity or yad not found"}
	for _, tool := range []string{"zenity", "yad"} {
		if ts := CheckTool(tool); ts.Installed {
			ind.OK, ind.Detail = true, ts.Path
			break
		}
	}
	checks = append(checks, ind)

	return checks
}

func credentialCheck() Status {
	key, err := credential.Load()
	if err != nil {
		return Status{Name: "credential", Detail: "GROQ_API_KEY not configured"}
	}
	if err := credential.ValidateFormat(key); err != nil {
		return Status{Name: "credential", OK: true, Detail: "key found but does not match the expected gsk_ format"}
	}
	return Status{Name: "credential", OK: true, Detail: "key found"}
}
