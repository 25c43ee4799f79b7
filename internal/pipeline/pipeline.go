// Package pipeline sequences one transcription attempt: select an audio
// backend, record under supervision, validate the artifact, transcribe it,
// and deliver the text. Every exit path releases the session's resources
// exactly once.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/jwhitfield/voxpaste/internal/backend"
	"github.com/jwhitfield/voxpaste/internal/config"
	"github.com/jwhitfield/voxpaste/internal/inject"
	"github.com/jwhitfield/voxpaste/internal/notify"
	"github.com/jwhitfield/voxpaste/internal/session"
	"github.com/jwhitfield/voxpaste/internal/supervise"
	"github.com/jwhitfield/voxpaste/internal/transcribe"
)

type Status string

const (
	Idle         Status = "idle"
	Selecting    Status = "selecting"
	Recording    Status = "recording"
	Validating   Status = "validating"
	Transcribing Status = "transcribing"
	Dispatching  Status = "dispatching"
	Done         Status = "done"
	Aborted      Status = "aborted"
)

// Options tweak one invocation without touching the config file.
type Options struct {
	// Long switches to the long-form recording cap.
	Long bool
	// NoPaste disables the paste step, clipboard only.
	NoPaste bool
}

// handle is the slice of supervise.Handle the pipeline needs; tests swap in
// fakes.
type handle interface {
	Wait(ctx context.Context) (supervise.Outcome, error)
	Stop()
	Alive() bool
	Done() <-chan struct{}
}

type Pipeline struct {
	cfg      *config.Config
	opts     Options
	notifier notify.Notifier

	status Status

	// Component seams. Production wiring happens in New; tests replace them.
	selectBackend  func(ctx context.Context) (backend.Capability, error)
	startRecorder  func(cap backend.Capability, outputPath string, f backend.Format, maxDuration time.Duration) (handle, error)
	startIndicator func(maxDuration time.Duration) (handle, bool)
	link           func(recorder, indicator handle)
	waitForOutput  func(ctx context.Context, path string, grace time.Duration) error
	transcribe     func(ctx context.Context, audioPath string) (string, error)
	captureFocus   func(ctx context.Context) string
	deliver        func(ctx context.Context, text, focusToken string) (inject.Outcome, error)
}

// New wires a production pipeline. apiKey has already been loaded and
// format-checked by the caller.
func New(cfg *config.Config, apiKey string, opts Options, notifier notify.Notifier) *Pipeline {
	if notifier == nil {
		notifier = notify.Nop{}
	}

	injectCfg := inject.Config{
		ClipboardTimeout: cfg.Injection.ClipboardTimeout,
		PasteTimeout:     cfg.Injection.PasteTimeout,
		SettleDelay:      cfg.Injection.SettleDelay,
		Paste:            cfg.Injection.Paste && !opts.NoPaste,
	}
	dispatcher := inject.NewDispatcher(injectCfg)

	client := transcribe.NewClient(transcribe.Config{
		APIKey:   apiKey,
		Model:    cfg.Transcription.Model,
		Language: cfg.Transcription.Language,
		Timeout:  cfg.Transcription.Timeout,
	})

	selector := backend.NewSelector()

	p := &Pipeline{
		cfg:      cfg,
		opts:     opts,
		notifier: notifier,
		status:   Idle,

		selectBackend: selector.Select,
		startRecorder: func(cap backend.Capability, out string, f backend.Format, max time.Duration) (handle, error) {
			return supervise.StartRecorder(cap, out, f, max)
		},
		startIndicator: func(max time.Duration) (handle, bool) {
			if !cfg.Indicator.Enabled {
				return nil, false
			}
			return supervise.StartIndicator(nil, max)
		},
		link: func(rec, ind handle) {
			supervise.Link(rec.(*supervise.Handle), ind.(*supervise.Handle))
		},
		waitForOutput: supervise.WaitForOutput,
		transcribe:    client.Transcribe,
		captureFocus:  dispatcher.CaptureFocus,
		deliver:       dispatcher.Deliver,
	}
	return p
}

func (p *Pipeline) Status() Status {
	return p.status
}

// Run drives one session to Done or Aborted. Cancellation of ctx is
// observed at the recording wait and at the HTTP call, and funnels into the
// same teardown path as every other exit.
func (p *Pipeline) Run(ctx context.Context) (err error) {
	sess, err := session.New()
	if err != nil {
		return err
	}
	defer sess.ReleaseAll()

	defer func() {
		switch {
		case err == nil:
			p.status = Done
		case errors.Is(err, ErrCancelled):
			p.status = Aborted
			p.notifier.Info("Cancelled", "Recording cancelled, nothing transcribed")
		default:
			p.status = Aborted
			p.notifier.Error("voxpaste failed", err.Error())
		}
	}()

	log.Printf("Pipeline: session %s starting", sess.ID)

	p.status = Selecting
	cap, err := p.selectBackend(ctx)
	if err != nil {
		return err
	}

	// Capture the focused window before recording steals focus.
	focusToken := p.captureFocus(ctx)

	audioPath := sess.AcquireAudioFile()
	maxDuration := p.cfg.Recording.Timeout
	if p.opts.Long {
		maxDuration = p.cfg.Recording.LongTimeout
	}

	format := backend.Format{
		SampleRate: p.cfg.Recording.SampleRate,
		Channels:   p.cfg.Recording.Channels,
		BitDepth:   16,
	}
	recorder, err := p.startRecorder(cap, audioPath, format, maxDuration)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRecordingFailed, err)
	}
	sess.Track(recorder)

	if indicator, ok := p.startIndicator(maxDuration); ok {
		sess.Track(indicator)
		p.link(recorder, indicator)
	}

	p.status = Recording
	p.notifier.Info("Recording", "Speak now, stop with the dialog or Ctrl+C")

	if err := p.waitForOutput(ctx, audioPath, p.cfg.Recording.OutputGrace); err != nil {
		recorder.Stop()
		if cancelled := asCancelled(err); errors.Is(cancelled, ErrCancelled) {
			return cancelled
		}
		return fmt.Errorf("%w: %v", ErrRecordingFailed, err)
	}

	outcome, err := recorder.Wait(ctx)
	if err != nil {
		return asCancelled(err)
	}
	if outcome.Failed() {
		return fmt.Errorf("%w: recorder exited with status %d", ErrRecordingFailed, outcome.ExitCode)
	}
	if outcome.TimedOut {
		// The artifact up to the cap is still worth transcribing.
		p.notifier.Warn("Recording cap reached", "Transcribing the partial recording")
	}

	p.status = Validating
	if err := validateAudio(audioPath); err != nil {
		return err
	}

	p.status = Transcribing
	p.notifier.Info("Transcribing", "Uploading recording")
	text, err := p.transcribe(ctx, audioPath)
	if err != nil {
		return asCancelled(err)
	}

	p.status = Dispatching
	out, err := p.deliver(ctx, text, focusToken)
	if err != nil {
		return err
	}
	if out.Degraded {
		// Delivery degradation is an advisory, never a pipeline failure.
		p.notifier.Warn("Transcribed", out.Reason)
		if !out.Copied {
			log.Printf("Pipeline: transcribed text: %s", text)
		}
	} else {
		p.notifier.Info("Transcribed", text)
	}

	log.Printf("Pipeline: session %s done", sess.ID)
	return nil
}

// Audio with at most a WAV header means no samples were captured.
func validateAudio(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("%w: %v", transcribe.ErrEmptyAudio, err)
	}
	if info.Size() <= 44 {
		return fmt.Errorf("%w (%d bytes)", transcribe.ErrEmptyAudio, info.Size())
	}
	return nil
}
