package supervise

import (
	"os/exec"
	"syscall"
	"time"
)

// indicator dialog candidates, in preference order. Each blocks until the
// user dismisses it, which Link translates into stopping the recorder.
var indicatorCandidates = [][]string{
	{"zenity", "--info", "--title", "voxpaste", "--text", "Recording… press OK to stop", "--icon", "audio-input-microphone"},
	{"yad", "--title", "voxpaste", "--text", "Recording… press OK to stop", "--button", "Stop recording"},
}

// StartIndicator launches the first available stop-recording dialog.
// The indicator is an affordance, not a requirement: when no dialog tool is
// installed it returns (nil, false) and the session proceeds without one.
func StartIndicator(lookPath func(string) (string, error), maxDuration time.Duration) (*Handle, bool) {
	if lookPath == nil {
		lookPath = exec.LookPath
	}
	for _, cmdline := range indicatorCandidates {
		if _, err := lookPath(cmdline[0]); err != nil {
			continue
		}
		// Outlive the recorder's cap slightly; Link tears it down anyway.
		h, err := Run(cmdline[0], cmdline[1:], syscall.SIGTERM, maxDuration+10*time.Second)
		if err != nil {
			continue
		}
		return h, true
	}
	return nil, false
}
