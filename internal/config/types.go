package config

import "time"

type Config struct {
	Recording     RecordingConfig     `toml:"recording"`
	Transcription TranscriptionConfig `toml:"transcription"`
	Injection     InjectionConfig     `toml:"injection"`
	Notifications NotificationsConfig `toml:"notifications"`
	Indicator     IndicatorConfig     `toml:"indicator"`
}

type RecordingConfig struct {
	SampleRate int           `toml:"sample_rate"`
	Channels   int           `toml:"channels"`
	Timeout    time.Duration `toml:"timeout"`
	// LongTimeout applies when voxpaste runs with --long.
	LongTimeout time.Duration `toml:"long_timeout"`
	// OutputGrace is how long the recorder gets to produce its first bytes
	// before the session is declared failed.
	OutputGrace time.Duration `toml:"output_grace"`
}

type TranscriptionConfig struct {
	Model    string        `toml:"model"`
	Language string        `toml:"language"`
	Timeout  time.Duration `toml:"timeout"`
}

type InjectionConfig struct {
	Paste            bool          `toml:"paste"`
	ClipboardTimeout time.Duration `toml:"clipboard_timeout"`
	PasteTimeout     time.Duration `toml:"paste_timeout"`
	SettleDelay      time.Duration `toml:"settle_delay"`
}

type NotificationsConfig struct {
	Enabled bool   `toml:"enabled"`
	Type    string `toml:"type"` // "desktop", "log", "none"
}

type IndicatorConfig struct {
	Enabled bool `toml:"enabled"`
}
