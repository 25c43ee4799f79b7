package config

import "time"

// DefaultConfig covers normal operation without any config file present.
func DefaultConfig() *Config {
	return &Config{
		Recording: RecordingConfig{
			SampleRate:  16000,
			Channels:    1,
			Timeout:     120 * time.Second,
			LongTimeout: 300 * time.Second,
			OutputGrace: 3 * time.Second,
		},
		Transcription: TranscriptionConfig{
			Model:    "whisper-large-v3",
			Language: "en",
			Timeout:  30 * time.Second,
		},
		Injection: InjectionConfig{
			Paste:            true,
			ClipboardTimeout: 3 * time.Second,
			PasteTimeout:     5 * time.Second,
			SettleDelay:      150 * time.Millisecond,
		},
		Notifications: NotificationsConfig{
			Enabled: true,
			Type:    "desktop",
		},
		Indicator: IndicatorConfig{
			Enabled: true,
		},
	}
}
