package inject

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/atotto/clipboard"
)

// execClipboard covers the tool-based clipboard candidates: wl-copy on
// Wayland, xclip/xsel on X11. Text goes in via stdin.
type execClipboard struct {
	name string
	tool string
	args []string
	look func(string) (string, error)
}

func (c *execClipboard) Name() string { return c.name }

func (c *execClipboard) Available() error {
	if _, err := c.look(c.tool); err != nil {
		return fmt.Errorf("%s not found: %w", c.tool, err)
	}
	return nil
}

func (c *execClipboard) Set(ctx context.Context, text string) error {
	cmd := exec.CommandContext(ctx, c.tool, c.args...)
	cmd.Stdin = strings.NewReader(text)
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s failed: %w", c.tool, err)
	}
	return nil
}

// nativeClipboard is the last resort when no clipboard binary is installed.
type nativeClipboard struct{}

func (nativeClipboard) Name() string { return "native" }

func (nativeClipboard) Available() error {
	if clipboard.Unsupported {
		return fmt.Errorf("no supported clipboard mechanism on this host")
	}
	return nil
}

func (nativeClipboard) Set(_ context.Context, text string) error {
	return clipboard.WriteAll(text)
}

func clipboardCandidates(look func(string) (string, error)) []clipboardBackend {
	return []clipboardBackend{
		&execClipboard{name: "wl-clipboard", tool: "wl-copy", look: look},
		&execClipboard{name: "xclip", tool: "xclip", args: []string{"-selection", "clipboard"}, look: look},
		&execClipboard{name: "xsel", tool: "xsel", args: []string{"--clipboard", "--input"}, look: look},
		nativeClipboard{},
	}
}

func selectClipboard(look func(string) (string, error)) clipboardBackend {
	for _, c := range clipboardCandidates(look) {
		if err := c.Available(); err == nil {
			return c
		}
	}
	return nil
}
