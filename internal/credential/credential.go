// Package credential loads and validates the Groq API key.
//
// The key lives either in the GROQ_API_KEY environment variable or in an
// env-format credentials file. The environment always wins; files are
// searched in a fixed order and the first one that exists is used.
package credential

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/joho/godotenv"
)

const EnvKey = "GROQ_API_KEY"

// Placeholder is the value written by `voxpaste configure` before the user
// supplies a real key. It is treated the same as a missing key.
const Placeholder = "your_api_key_here"

var (
	ErrMissing = errors.New("Groq API key not found: set GROQ_API_KEY or run voxpaste configure")
	ErrFormat  = errors.New("API key does not match the expected gsk_ format")
)

// Groq keys are "gsk_" followed by 52 alphanumeric characters. The provider
// may rotate formats, so a mismatch is reported but never blocks the call.
var keyPattern = regexp.MustCompile(`^gsk_[A-Za-z0-9]{52}$`)

// CandidatePaths returns the credential file locations in search order.
func CandidatePaths() []string {
	var paths []string

	if p := os.Getenv("VOXPASTE_CREDENTIALS"); p != "" {
		paths = append(paths, p)
	}
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		paths = append(paths, filepath.Join(xdg, "voxpaste", "credentials.env"))
	}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths,
			filepath.Join(home, ".config", "voxpaste", "credentials.env"),
			filepath.Join(home, ".voxpaste.env"),
		)
	}
	return paths
}

// Load resolves the API key, preferring the environment over files.
// It returns ErrMissing when no usable key is found anywhere.
func Load() (string, error) {
	if key := strings.TrimSpace(os.Getenv(EnvKey)); key != "" && key != Placeholder {
		return key, nil
	}

	for _, path := range CandidatePaths() {
		key, err := loadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return "", fmt.Errorf("read credentials file %s: %w", path, err)
		}
		if key == "" || key == Placeholder {
			continue
		}
		return key, nil
	}

	return "", ErrMissing
}

func loadFile(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", err
	}
	if info.Mode().Perm()&0o077 != 0 {
		log.Printf("Credential: %s is readable by other users, tighten with chmod 600", path)
	}

	values, err := godotenv.Read(path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(values[EnvKey]), nil
}

// ValidateFormat checks the key against the known Groq key shape.
// ErrFormat is advisory: callers log it and attempt the request anyway.
func ValidateFormat(key string) error {
	if key == "" || key == Placeholder {
		return ErrMissing
	}
	if !keyPattern.MatchString(key) {
		return ErrFormat
	}
	return nil
}

// Save writes the key to the default credentials file with owner-only
// permissions, creating parent directories as needed.
func Save(key string) (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve user config directory: %w", err)
	}
	path := filepath.Join(dir, "voxpaste", "credentials.env")
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return "", fmt.Errorf("create credentials directory: %w", err)
	}
	content := fmt.Sprintf("%s=%s\n", EnvKey, key)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		return "", fmt.Errorf("write credentials file: %w", err)
	}
	return path, nil
}
