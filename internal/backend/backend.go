// Package backend probes the host for a usable audio capture mechanism.
//
// Selection happens once per session. A backend is eligible when its
// command-line tool is installed and, for server-based backends, its daemon
// is actually running: an installed-but-inactive sound server tends to block
// or fail silently, so liveness gates selection rather than mere presence.
package backend

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/exec"
	"strconv"
	"syscall"
	"time"
)

var ErrNoBackend = errors.New("no audio recording tool found: install pipewire, pulseaudio, alsa-utils, or sox")

// Format describes the sample format every capability must produce.
type Format struct {
	SampleRate int
	Channels   int
	BitDepth   int
}

// DefaultFormat is 16-bit signed PCM, 16 kHz, mono, which is what the
// transcription API expects.
func DefaultFormat() Format {
	return Format{SampleRate: 16000, Channels: 1, BitDepth: 16}
}

// Capability is a selected recording backend: how to start it and how to
// ask it to stop so it can flush a valid WAV file.
type Capability struct {
	Name string
	Tool string
	// StopSignal is the graceful terminate signal. arecord and rec finalize
	// their WAV header on SIGINT; the server recorders handle SIGTERM.
	StopSignal os.Signal

	args func(outputPath string, f Format) []string
}

// Invocation returns the recorder command line writing WAV to outputPath.
// The supervisor owns the resulting process, so this hands back tool and
// arguments rather than a pre-built exec.Cmd.
func (c Capability) Invocation(outputPath string, f Format) (string, []string) {
	return c.Tool, c.args(outputPath, f)
}

// Selector finds the highest-preference live backend. The probe functions
// default to the real host checks and exist so tests can fake them.
type Selector struct {
	LookPath func(tool string) (string, error)
	Probe    func(ctx context.Context, name string, args ...string) error
}

func NewSelector() *Selector {
	return &Selector{
		LookPath: exec.LookPath,
		Probe:    runProbe,
	}
}

func runProbe(ctx context.Context, name string, args ...string) error {
	// Short timeout: a wedged sound server must not stall selection.
	probeCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return exec.CommandContext(probeCtx, name, args...).Run()
}

// candidate pairs a capability with its daemon liveness check. A nil check
// means the backend needs no running daemon (kernel driver, portable tool).
type candidate struct {
	cap   Capability
	alive func(ctx context.Context, s *Selector) error
}

func candidates() []candidate {
	return []candidate{
		{
			cap: Capability{
				Name:       "pipewire",
				Tool:       "pw-record",
				StopSignal: syscall.SIGTERM,
				args: func(out string, f Format) []string {
					return []string{
						"--format", "s16",
						"--rate", strconv.Itoa(f.SampleRate),
						"--channels", strconv.Itoa(f.Channels),
						out,
					}
				},
			},
			alive: func(ctx context.Context, s *Selector) error {
				return s.Probe(ctx, "pw-cli", "info")
			},
		},
		{
			cap: Capability{
				Name:       "pulseaudio",
				Tool:       "parecord",
				StopSignal: syscall.SIGTERM,
				args: func(out string, f Format) []string {
					return []string{
						"--format=s16le",
						"--rate=" + strconv.Itoa(f.SampleRate),
						"--channels=" + strconv.Itoa(f.Channels),
						"--file-format=wav",
						out,
					}
				},
			},
			alive: func(ctx context.Context, s *Selector) error {
				return s.Probe(ctx, "pactl", "info")
			},
		},
		{
			cap: Capability{
				Name:       "alsa",
				Tool:       "arecord",
				StopSignal: os.Interrupt,
				args: func(out string, f Format) []string {
					return []string{
						"-q",
						"-f", "S16_LE",
						"-r", strconv.Itoa(f.SampleRate),
						"-c", strconv.Itoa(f.Channels),
						"-t", "wav",
						out,
					}
				},
			},
		},
		{
			cap: Capability{
				Name:       "sox",
				Tool:       "rec",
				StopSignal: os.Interrupt,
				args: func(out string, f Format) []string {
					return []string{
						"-q",
						"-r", strconv.Itoa(f.SampleRate),
						"-c", strconv.Itoa(f.Channels),
						"-b", strconv.Itoa(f.BitDepth),
						out,
					}
				},
			},
		},
	}
}

// Select returns the first candidate whose tool is installed and whose
// daemon (if any) responds. Installed tools with a dead daemon are skipped
// in favor of lower-preference backends.
func (s *Selector) Select(ctx context.Context) (Capability, error) {
	found := false
	for _, c := range candidates() {
		if _, err := s.LookPath(c.cap.Tool); err != nil {
			continue
		}
		found = true
		if c.alive != nil {
			if err := c.alive(ctx, s); err != nil {
				log.Printf("Backend: %s installed but not running, skipping: %v", c.cap.Name, err)
				continue
			}
		}
		log.Printf("Backend: selected %s (%s)", c.cap.Name, c.cap.Tool)
		return c.cap, nil
	}

	if found {
		return Capability{}, fmt.Errorf("%w (tools present but no sound server responding)", ErrNoBackend)
	}
	return Capability{}, ErrNoBackend
}
