package inject

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"
)

// hyprlandPaste restores focus with hyprctl and types ctrl+v with wtype.
type hyprlandPaste struct {
	look func(string) (string, error)
}

func (p *hyprlandPaste) Name() string { return "hyprland" }

func (p *hyprlandPaste) Available() error {
	if os.Getenv("HYPRLAND_INSTANCE_SIGNATURE") == "" {
		return fmt.Errorf("not running under Hyprland")
	}
	for _, tool := range []string{"hyprctl", "wtype"} {
		if _, err := p.look(tool); err != nil {
			return fmt.Errorf("%s not found: %w", tool, err)
		}
	}
	return nil
}

func (p *hyprlandPaste) CaptureFocus(ctx context.Context) (string, error) {
	out, err := exec.CommandContext(ctx, "hyprctl", "activewindow", "-j").Output()
	if err != nil {
		return "", fmt.Errorf("hyprctl activewindow: %w", err)
	}
	var win struct {
		Address string `json:"address"`
	}
	if err := json.Unmarshal(out, &win); err != nil {
		return "", fmt.Errorf("parse activewindow output: %w", err)
	}
	if win.Address == "" {
		return "", fmt.Errorf("no focused window")
	}
	return win.Address, nil
}

func (p *hyprlandPaste) Paste(ctx context.Context, focusToken string, settle time.Duration) error {
	focus := exec.CommandContext(ctx, "hyprctl", "dispatch", "focuswindow", "address:"+focusToken)
	if err := focus.Run(); err != nil {
		return fmt.Errorf("restore focus: %w", err)
	}
	time.Sleep(settle)

	paste := exec.CommandContext(ctx, "wtype", "-M", "ctrl", "v", "-m", "ctrl")
	if err := paste.Run(); err != nil {
		return fmt.Errorf("wtype paste: %w", err)
	}
	return nil
}

// xdotoolPaste is the X11 variant: window id capture, windowactivate, key.
type xdotoolPaste struct {
	look func(string) (string, error)
}

func (p *xdotoolPaste) Name() string { return "xdotool" }

func (p *xdotoolPaste) Available() error {
	if os.Getenv("DISPLAY") == "" {
		return fmt.Errorf("no X11 display")
	}
	if _, err := p.look("xdotool"); err != nil {
		return fmt.Errorf("xdotool not found: %w", err)
	}
	return nil
}

func (p *xdotoolPaste) CaptureFocus(ctx context.Context) (string, error) {
	out, err := exec.CommandContext(ctx, "xdotool", "getactivewindow").Output()
	if err != nil {
		return "", fmt.Errorf("xdotool getactivewindow: %w", err)
	}
	id := strings.TrimSpace(string(out))
	if id == "" {
		return "", fmt.Errorf("no focused window")
	}
	return id, nil
}

func (p *xdotoolPaste) Paste(ctx context.Context, focusToken string, settle time.Duration) error {
	activate := exec.CommandContext(ctx, "xdotool", "windowactivate", "--sync", focusToken)
	if err := activate.Run(); err != nil {
		return fmt.Errorf("restore focus: %w", err)
	}
	time.Sleep(settle)

	key := exec.CommandContext(ctx, "xdotool", "key", "--clearmodifiers", "ctrl+v")
	if err := key.Run(); err != nil {
		return fmt.Errorf("xdotool paste: %w", err)
	}
	return nil
}

func pasteCandidates(look func(string) (string, error)) []pasteBackend {
	return []pasteBackend{
		&hyprlandPaste{look: look},
		&xdotoolPaste{look: look},
	}
}

func selectPaste(look func(string) (string, error)) pasteBackend {
	for _, p := range pasteCandidates(look) {
		if err := p.Available(); err == nil {
			return p
		}
	}
	return nil
}
