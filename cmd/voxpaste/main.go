package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jwhitfield/voxpaste/internal/config"
	"github.com/jwhitfield/voxpaste/internal/credential"
	"github.com/jwhitfield/voxpaste/internal/doctor"
	"github.com/jwhitfield/voxpaste/internal/notify"
	"github.com/jwhitfield/voxpaste/internal/pipeline"
	"github.com/jwhitfield/voxpaste/internal/tui"
)

var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd := newRootCmd()
	err := rootCmd.ExecuteContext(ctx)

	code := pipeline.ExitCode(err)
	if err != nil && !errors.Is(err, pipeline.ErrCancelled) {
		fmt.Fprintln(os.Stderr, "voxpaste:", err)
	}
	os.Exit(code)
}

func newRootCmd() *cobra.Command {
	var (
		long     bool
		noPaste  bool
		language string
		model    string
	)

	cmd := &cobra.Command{
		Use:   "voxpaste",
		Short: "Voice to text: record, transcribe with Groq whisper, paste",
		Long: `voxpaste records from the microphone as soon as it starts, stops on the
dialog button, Ctrl+C, or the recording cap, transcribes the audio with the
Groq API, copies the text to the clipboard and pastes it into the window
that was focused before recording began.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if language != "" {
				cfg.Transcription.Language = language
			}
			if model != "" {
				cfg.Transcription.Model = model
			}

			var notifier notify.Notifier = notify.Nop{}
			if cfg.Notifications.Enabled {
				notifier = notify.New(cfg.Notifications.Type)
			}

			key, err := credential.Load()
			if err != nil {
				notifier.Error("voxpaste", "No Groq API key configured, run: voxpaste configure")
				return err
			}
			if ferr := credential.ValidateFormat(key); errors.Is(ferr, credential.ErrFormat) {
				// Warning only: the call is still attempted.
				notifier.Warn("voxpaste", "API key does not match the expected gsk_ format")
			}

			opts := pipeline.Options{Long: long, NoPaste: noPaste}
			p := pipeline.New(cfg, key, opts, notifier)
			return p.Run(cmd.Context())
		},
	}

	cmd.Flags().BoolVar(&long, "long", false, "raise the recording cap for long-form dictation")
	cmd.Flags().BoolVar(&noPaste, "no-paste", false, "copy to clipboard only, never synthesize a paste keystroke")
	cmd.Flags().StringVar(&language, "language", "", "language hint override (ISO-639-1)")
	cmd.Flags().StringVar(&model, "model", "", "transcription model override")

	cmd.AddCommand(
		versionCmd(),
		doctorCmd(),
		configureCmd(),
	)
	return cmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the voxpaste version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("voxpaste", version)
		},
	}
}

func doctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check the host for recording, clipboard, and paste tools",
		RunE: func(cmd *cobra.Command, args []string) error {
			statuses := doctor.Run(cmd.Context())
			fmt.Print(doctor.Render(statuses))
			return nil
		},
	}
}

func configureCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "configure",
		Short: "Interactive configuration setup",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigure()
		},
	}
}

func runConfigure() error {
	cfg, err := config.Load()
	if err != nil {
		// A broken settings file should not lock the user out of the wizard
		// that fixes it.
		fmt.Printf("ignoring unreadable config: %v\n", err)
		cfg = config.DefaultConfig()
	}

	_, keyErr := credential.Load()
	result, err := tui.Run(cfg, keyErr == nil)
	if err != nil {
		return err
	}
	if result.Cancelled {
		fmt.Println("Configuration cancelled.")
		return nil
	}

	if err := result.Config.Validate(); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}
	if err := config.Save(result.Config); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	if result.APIKey != "" {
		path, err := credential.Save(result.APIKey)
		if err != nil {
			return err
		}
		fmt.Printf("API key saved to %s\n", path)
	}

	configPath, _ := config.GetConfigPath()
	fmt.Println()
	fmt.Println("Configuration saved successfully!")
	fmt.Printf("Config file location: %s\n", configPath)
	fmt.Println()
	fmt.Println("Next steps:")
	fmt.Println("1. Check the host tooling: voxpaste doctor")
	fmt.Println("2. Try it: voxpaste")
	return nil
}
