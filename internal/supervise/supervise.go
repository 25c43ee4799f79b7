// Package supervise runs and tears down the session's child processes:
// the audio recorder and the optional on-screen stop indicator.
package supervise

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/exec"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/jwhitfield/voxpaste/internal/backend"
)

// Outcome describes how a supervised process exited.
type Outcome struct {
	ExitCode int
	// TimedOut means the max duration expired and the process was asked to
	// stop. The artifact written up to that point is still usable, so a
	// timeout is a partial success, not a failure.
	TimedOut bool
	// Stopped means Stop was called (indicator click, linked teardown, or
	// cancellation), so a signal-induced non-zero exit is expected.
	Stopped bool
}

// Failed reports whether the exit should be treated as a recording failure.
func (o Outcome) Failed() bool {
	return o.ExitCode != 0 && !o.TimedOut && !o.Stopped
}

// Handle is one supervised child process.
type Handle struct {
	name string
	cmd  *exec.Cmd
	stop os.Signal

	done     chan struct{}
	timedOut atomic.Bool
	stopped  atomic.Bool
	timer    *time.Timer
}

// Run starts name with args as a detached child (own process group, so a
// terminal interrupt reaches the supervisor, not the child directly) and
// begins the maxDuration countdown. A zero maxDuration disables the timeout.
func Run(name string, args []string, stopSig os.Signal, maxDuration time.Duration) (*Handle, error) {
	cmd := exec.Command(name, args...)
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	h := &Handle{
		name: name,
		cmd:  cmd,
		stop: stopSig,
		done: make(chan struct{}),
	}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start %s: %w", name, err)
	}
	log.Printf("Supervise: started %s (pid %d)", name, cmd.Process.Pid)

	go func() {
		// Exit status is read from ProcessState after the reap.
		_ = cmd.Wait()
		close(h.done)
	}()

	if maxDuration > 0 {
		h.timer = time.AfterFunc(maxDuration, func() {
			select {
			case <-h.done:
				// Exited on its own first; not a timeout.
				return
			default:
			}
			h.timedOut.Store(true)
			log.Printf("Supervise: %s hit the %v cap, asking it to stop", name, maxDuration)
			h.signal()
		})
	}

	return h, nil
}

// StartRecorder launches the selected capability writing to outputPath.
func StartRecorder(cap backend.Capability, outputPath string, f backend.Format, maxDuration time.Duration) (*Handle, error) {
	tool, args := cap.Invocation(outputPath, f)
	return Run(tool, args, cap.StopSignal, maxDuration)
}

// Pid returns the child's process id.
func (h *Handle) Pid() int {
	return h.cmd.Process.Pid
}

// Alive reports whether the child is still running.
func (h *Handle) Alive() bool {
	select {
	case <-h.done:
		return false
	default:
	}
	return h.cmd.Process.Signal(syscall.Signal(0)) == nil
}

// Stop asks the child to terminate gracefully. It is idempotent: calls on
// an already-dead handle are no-ops, checked via a liveness probe.
func (h *Handle) Stop() {
	if !h.Alive() {
		return
	}
	h.stopped.Store(true)
	h.signal()
}

func (h *Handle) signal() {
	sig := h.stop
	if sig == nil {
		sig = syscall.SIGTERM
	}
	if err := h.cmd.Process.Signal(sig); err != nil && !errors.Is(err, os.ErrProcessDone) {
		log.Printf("Supervise: signal %s to %s: %v", sig, h.name, err)
	}
}

// Done is closed once the child has exited and been reaped.
func (h *Handle) Done() <-chan struct{} {
	return h.done
}

// Wait blocks until the child exits or ctx is cancelled. Cancellation stops
// the child gracefully and still waits for it to be reaped, so the output
// file is flushed before teardown proceeds.
func (h *Handle) Wait(ctx context.Context) (Outcome, error) {
	select {
	case <-h.done:
	case <-ctx.Done():
		h.Stop()
		<-h.done
		h.stopTimer()
		return Outcome{Stopped: true}, ctx.Err()
	}
	h.stopTimer()

	out := Outcome{
		TimedOut: h.timedOut.Load(),
		Stopped:  h.stopped.Load(),
	}
	if h.cmd.ProcessState != nil {
		out.ExitCode = h.cmd.ProcessState.ExitCode()
	}
	return out, nil
}

func (h *Handle) stopTimer() {
	if h.timer != nil {
		h.timer.Stop()
	}
}

// Link wires the recorder and the stop indicator together: the indicator
// exiting (user clicked stop) stops the recorder, and the recorder exiting
// tears the indicator down afterwards. Indicator teardown always follows
// the recorder's observed exit, never precedes it, so the UI cannot claim
// "still recording" after the recorder is gone.
func Link(recorder, indicator *Handle) {
	go func() {
		<-recorder.done
		indicator.Stop()
	}()
	go func() {
		select {
		case <-indicator.done:
			recorder.Stop()
		case <-recorder.done:
		}
	}()
}
