// Package tui implements the interactive `voxpaste configure` wizard.
package tui

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/jwhitfield/voxpaste/internal/config"
	"github.com/jwhitfield/voxpaste/internal/credential"
)

var titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("6"))

// Result carries the wizard output back to the command layer.
type Result struct {
	Config    *config.Config
	APIKey    string
	Cancelled bool
}

// Run walks the user through the settings. An empty API key answer keeps
// whatever is currently configured.
func Run(cfg *config.Config, haveKey bool) (Result, error) {
	apiKey := ""
	model := cfg.Transcription.Model
	language := cfg.Transcription.Language
	paste := cfg.Injection.Paste
	indicator := cfg.Indicator.Enabled
	notifyType := cfg.Notifications.Type

	keyDescription := "Get one at console.groq.com. Stored owner-only in credentials.env."
	if haveKey {
		keyDescription = "A key is already configured; leave empty to keep it."
	}

	fmt.Println(titleStyle.Render("voxpaste configuration"))

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Groq API key").
				Description(keyDescription).
				EchoMode(huh.EchoModePassword).
				Validate(func(s string) error {
					if s == "" && !haveKey {
						return fmt.Errorf("an API key is required")
					}
					return nil
				}).
				Value(&apiKey),
			huh.NewSelect[string]().
				Title("Transcription model").
				Options(
					huh.NewOption("whisper-large-v3 (accurate)", "whisper-large-v3"),
					huh.NewOption("whisper-large-v3-turbo (faster)", "whisper-large-v3-turbo"),
				).
				Value(&model),
			huh.NewInput().
				Title("Language hint").
				Description("ISO-639-1 code, e.g. en. Empty for auto-detect.").
				Value(&language),
		),
		huh.NewGroup(
			huh.NewConfirm().
				Title("Paste into the previously focused window?").
				Description("Falls back to clipboard-only when no paste tool is found.").
				Value(&paste),
			huh.NewConfirm().
				Title("Show a stop-recording dialog while recording?").
				Value(&indicator),
			huh.NewSelect[string]().
				Title("Notifications").
				Options(
					huh.NewOption("Desktop (notify-send)", "desktop"),
					huh.NewOption("Log only", "log"),
					huh.NewOption("None", "none"),
				).
				Value(&notifyType),
		),
	)

	if err := form.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return Result{Cancelled: true}, nil
		}
		return Result{}, fmt.Errorf("configuration wizard error: %w", err)
	}

	if apiKey != "" {
		if ferr := credential.ValidateFormat(apiKey); errors.Is(ferr, credential.ErrFormat) {
			// Advisory only: the provider may rotate key formats.
			fmt.Println("warning: the key does not look like a Groq key (gsk_ + 52 characters); saving it anyway")
		}
	}

	cfg.Transcription.Model = model
	cfg.Transcription.Language = language
	cfg.Injection.Paste = paste
	cfg.Indicator.Enabled = indicator
	cfg.Notifications.Type = notifyType
	cfg.Notifications.Enabled = notifyType != "none"

	return Result{Config: cfg, APIKey: apiKey}, nil
}
