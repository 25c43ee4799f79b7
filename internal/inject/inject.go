// Package inject delivers transcribed text to the user: clipboard first,
// then a best-effort paste keystroke into the previously focused window.
//
// Each capability (clipboard, paste) has an ordered list of candidate
// backends. Selection happens once when the dispatcher is built and is
// cached for the session, not re-probed per call.
package inject

import (
	"context"
	"fmt"
	"log"
	"os/exec"
	"time"
)

type Config struct {
	ClipboardTimeout time.Duration
	PasteTimeout     time.Duration
	// SettleDelay is the pause between restoring focus and injecting the
	// paste keystroke. Compositors need on the order of 100ms before the
	// refocused window actually receives input.
	SettleDelay time.Duration
	Paste       bool
}

func DefaultConfig() Config {
	return Config{
		ClipboardTimeout: 3 * time.Second,
		PasteTimeout:     5 * time.Second,
		SettleDelay:      150 * time.Millisecond,
		Paste:            true,
	}
}

// Outcome reports what delivery achieved. Degraded means the text is on the
// clipboard (or logged) but the paste step did not happen.
type Outcome struct {
	Copied   bool
	Pasted   bool
	Degraded bool
	Reason   string
}

type clipboardBackend interface {
	Name() string
	Available() error
	Set(ctx context.Context, text string) error
}

type pasteBackend interface {
	Name() string
	Available() error
	CaptureFocus(ctx context.Context) (string, error)
	Paste(ctx context.Context, focusToken string, settle time.Duration) error
}

type Dispatcher struct {
	cfg   Config
	clip  clipboardBackend
	paste pasteBackend
}

// NewDispatcher probes the candidate backends once and caches the winners.
// A missing clipboard or paste mechanism is not an error here: delivery
// degrades at Deliver time instead.
func NewDispatcher(cfg Config) *Dispatcher {
	d := &Dispatcher{cfg: cfg}

	d.clip = selectClipboard(exec.LookPath)
	if d.clip != nil {
		log.Printf("Inject: clipboard via %s", d.clip.Name())
	} else {
		log.Printf("Inject: no clipboard mechanism found")
	}

	if cfg.Paste {
		d.paste = selectPaste(exec.LookPath)
		if d.paste != nil {
			log.Printf("Inject: paste via %s", d.paste.Name())
		} else {
			log.Printf("Inject: no paste mechanism found, clipboard only")
		}
	}

	return d
}

// CaptureFocus records the currently focused window before recording
// starts, so Deliver can paste into it afterwards. Best-effort: an empty
// token disables the paste step.
func (d *Dispatcher) CaptureFocus(ctx context.Context) string {
	if d.paste == nil {
		return ""
	}
	ctx, cancel := context.WithTimeout(ctx, d.cfg.PasteTimeout)
	defer cancel()

	token, err := d.paste.CaptureFocus(ctx)
	if err != nil {
		log.Printf("Inject: capture focused window: %v", err)
		return ""
	}
	return token
}

// Deliver puts text on the clipboard and, when possible, replays a paste
// keystroke into the window identified by focusToken. Paste problems never
// escalate past a degraded outcome.
func (d *Dispatcher) Deliver(ctx context.Context, text, focusToken string) (Outcome, error) {
	if text == "" {
		return Outcome{}, fmt.Errorf("cannot deliver empty text")
	}

	out := Outcome{}

	if d.clip == nil {
		out.Degraded = true
		out.Reason = "no clipboard tool found (install wl-clipboard, xclip, or xsel)"
	} else {
		clipCtx, cancel := context.WithTimeout(ctx, d.cfg.ClipboardTimeout)
		err := d.clip.Set(clipCtx, text)
		cancel()
		if err != nil {
			out.Degraded = true
			out.Reason = fmt.Sprintf("clipboard copy failed: %v", err)
		} else {
			out.Copied = true
		}
	}

	if !d.cfg.Paste {
		return out, nil
	}
	if d.paste == nil || focusToken == "" {
		if !out.Degraded {
			out.Degraded = true
			out.Reason = "paste unavailable, text left on clipboard"
		}
		return out, nil
	}

	pasteCtx, cancel := context.WithTimeout(ctx, d.cfg.PasteTimeout)
	defer cancel()
	if err := d.paste.Paste(pasteCtx, focusToken, d.cfg.SettleDelay); err != nil {
		log.Printf("Inject: paste failed, falling back to clipboard only: %v", err)
		out.Degraded = true
		out.Reason = "paste failed, text left on clipboard"
		return out, nil
	}

	out.Pasted = true
	return out, nil
}
