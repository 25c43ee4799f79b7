package config

import "fmt"

func (c *Config) Validate() error {
	if c.Recording.SampleRate <= 0 {
		return fmt.Errorf("invalid recording.sample_rate: %d", c.Recording.SampleRate)
	}
	if c.Recording.Channels <= 0 {
		return fmt.Errorf("invalid recording.channels: %d", c.Recording.Channels)
	}
	if c.Recording.Timeout <= 0 {
		return fmt.Errorf("invalid recording.timeout: %v", c.Recording.Timeout)
	}
	if c.Recording.LongTimeout < c.Recording.Timeout {
		return fmt.Errorf("invalid recording.long_timeout: %v (must be at least recording.timeout)", c.Recording.LongTimeout)
	}
	if c.Recording.OutputGrace <= 0 {
		return fmt.Errorf("invalid recording.output_grace: %v", c.Recording.OutputGrace)
	}

	if c.Transcription.Model == "" {
		return fmt.Errorf("invalid transcription.model: empty")
	}
	if c.Transcription.Timeout <= 0 {
		return fmt.Errorf("invalid transcription.timeout: %v", c.Transcription.Timeout)
	}

	if c.Injection.ClipboardTimeout <= 0 {
		return fmt.Errorf("invalid injection.clipboard_timeout: %v", c.Injection.ClipboardTimeout)
	}
	if c.Injection.PasteTimeout <= 0 {
		return fmt.Errorf("invalid injection.paste_timeout: %v", c.Injection.PasteTimeout)
	}
	if c.Injection.SettleDelay < 0 {
		return fmt.Errorf("invalid injection.settle_delay: %v", c.Injection.SettleDelay)
	}

	validTypes := map[string]bool{"desktop": true, "log": true, "none": true}
	if !validTypes[c.Notifications.Type] {
		return fmt.Errorf("invalid notifications.type: %s (must be desktop, log, or none)", c.Notifications.Type)
	}

	return nil
}
