package pipeline

import (
	"context"
	"errors"

	"github.com/jwhitfield/voxpaste/internal/backend"
	"github.com/jwhitfield/voxpaste/internal/credential"
	"github.com/jwhitfield/voxpaste/internal/transcribe"
)

var (
	// ErrCancelled is a user interrupt, not a failure. It is surfaced as an
	// informational notification and exit code 130.
	ErrCancelled = errors.New("cancelled")

	// ErrRecordingFailed is an unprompted non-zero exit from the recorder.
	ErrRecordingFailed = errors.New("recording failed")
)

// Exit codes by failing stage. 130 follows the shell convention for SIGINT.
const (
	ExitOK                = 0
	ExitFailure           = 1
	ExitNoBackend         = 2
	ExitRecordingFailed   = 3
	ExitEmptyAudio        = 4
	ExitNetworkFailure    = 5
	ExitAPIError          = 6
	ExitNoText            = 7
	ExitCredentialMissing = 8
	ExitCancelled         = 130
)

// ExitCode maps a pipeline error onto the process exit code.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, ErrCancelled):
		return ExitCancelled
	case errors.Is(err, backend.ErrNoBackend):
		return ExitNoBackend
	case errors.Is(err, ErrRecordingFailed):
		return ExitRecordingFailed
	case errors.Is(err, transcribe.ErrEmptyAudio):
		return ExitEmptyAudio
	case errors.Is(err, transcribe.ErrNetwork):
		return ExitNetworkFailure
	case errors.Is(err, transcribe.ErrNoText):
		return ExitNoText
	case errors.Is(err, credential.ErrMissing):
		return ExitCredentialMissing
	default:
		var apiErr *transcribe.APIError
		if errors.As(err, &apiErr) {
			return ExitAPIError
		}
		return ExitFailure
	}
}

// asCancelled folds context cancellation from any suspension point into the
// single cancellation path.
func asCancelled(err error) error {
	if errors.Is(err, context.Canceled) {
		return ErrCancelled
	}
	return err
}
