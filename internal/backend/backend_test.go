package backend

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
)

// fakeSelector builds a Selector where only the listed tools are installed
// and only the listed probe commands succeed.
func fakeSelector(installed []string, liveProbes []string) *Selector {
	return &Selector{
		LookPath: func(tool string) (string, error) {
			for _, t := range installed {
				if t == tool {
					return "/usr/bin/" + tool, nil
				}
			}
			return "", errors.New("not found")
		},
		Probe: func(ctx context.Context, name string, args ...string) error {
			for _, p := range liveProbes {
				if p == name {
					return nil
				}
			}
			return errors.New("daemon not running")
		},
	}
}

func TestSelect(t *testing.T) {
	tests := []struct {
		name       string
		installed  []string
		liveProbes []string
		want       string
		wantErr    error
	}{
		{
			name:       "pipewire preferred when live",
			installed:  []string{"pw-record", "parecord", "arecord"},
			liveProbes: []string{"pw-cli", "pactl"},
			want:       "pipewire",
		},
		{
			name:       "dead pipewire falls through to live pulseaudio",
			installed:  []string{"pw-record", "parecord"},
			liveProbes: []string{"pactl"},
			want:       "pulseaudio",
		},
		{
			name:       "dead servers fall through to alsa",
			installed:  []string{"pw-record", "parecord", "arecord"},
			liveProbes: nil,
			want:       "alsa",
		},
		{
			name:      "only sox installed",
			installed: []string{"rec"},
			want:      "sox",
		},
		{
			name:      "lower preference tool wins when higher daemon is down",
			installed: []string{"pw-record", "rec"},
			want:      "sox",
		},
		{
			name:    "nothing installed",
			wantErr: ErrNoBackend,
		},
		{
			name:      "only dead server tools installed",
			installed: []string{"pw-record", "parecord"},
			wantErr:   ErrNoBackend,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := fakeSelector(tt.installed, tt.liveProbes)
			cap, err := s.Select(context.Background())

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Select() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Select() error = %v", err)
			}
			if cap.Name != tt.want {
				t.Errorf("Select() = %s, want %s", cap.Name, tt.want)
			}
		})
	}
}

func TestCapabilityCommands(t *testing.T) {
	f := DefaultFormat()
	out := "/tmp/voxpaste-test.wav"

	for _, c := range candidates() {
		t.Run(c.cap.Name, func(t *testing.T) {
			tool, args := c.cap.Invocation(out, f)

			joined := tool + " " + strings.Join(args, " ")
			if !strings.Contains(joined, out) {
				t.Errorf("command %q does not reference output path", joined)
			}
			if !strings.Contains(joined, fmt.Sprint(f.SampleRate)) {
				t.Errorf("command %q does not set the sample rate", joined)
			}
			if c.cap.StopSignal == nil {
				t.Error("capability has no stop signal")
			}
		})
	}
}

func TestDefaultFormat(t *testing.T) {
	f := DefaultFormat()
	if f.SampleRate != 16000 || f.Channels != 1 || f.BitDepth != 16 {
		t.Errorf("DefaultFormat() = %+v, want 16kHz mono 16-bit", f)
	}
}
